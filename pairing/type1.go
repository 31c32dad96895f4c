package pairing

import (
	"fmt"
	"io"
	"math/big"

	"github.com/Iscaraca/cryptid"
	"github.com/Iscaraca/cryptid/curve"
	"github.com/Iscaraca/cryptid/field"
	"github.com/Iscaraca/cryptid/hashing"
)

// Type1 is the symmetric group G1 = G2 = E(F_p)[q] on y² = x³ + 1 with the
// modified Tate pairing into the order-q subgroup of F_p²*.
type Type1 struct {
	params   Type1Params
	field    *field.Field
	curve    *curve.Curve
	hf       cryptid.HashFunction
	zeta     field.Element
	finalExp *big.Int
	gen      *type1Point
}

var _ Group = (*Type1)(nil)

// NewType1 builds the group for params. hf is the digest of HashToPoint.
func NewType1(params *Type1Params, hf cryptid.HashFunction) (*Type1, error) {
	if params == nil {
		return nil, fmt.Errorf("pairing: %w: nil parameters", cryptid.ErrInvalidPublicParameters)
	}
	if !hf.IsValid().OK() {
		return nil, fmt.Errorf("pairing: %w", cryptid.ErrUnknownDigest)
	}
	c, err := params.Curve()
	if err != nil {
		return nil, fmt.Errorf("pairing: %w: %v", cryptid.ErrInvalidPublicParameters, err)
	}
	if params.Generator.Infinity || !c.IsOnCurve(params.Generator).OK() {
		return nil, fmt.Errorf("pairing: generator: %w", ErrPointNotOnCurve)
	}
	zeta, err := distortionZeta(c.Field())
	if err != nil {
		return nil, fmt.Errorf("pairing: distortion map: %w", err)
	}

	// (p + 1)/q
	finalExp := new(big.Int).Add(params.P, bigOne)
	finalExp.Div(finalExp, params.Q)

	g := &Type1{
		params: Type1Params{
			Level:     params.Level,
			P:         new(big.Int).Set(params.P),
			Q:         new(big.Int).Set(params.Q),
			Generator: params.Generator.Clone(),
		},
		field:    c.Field(),
		curve:    c,
		hf:       hf,
		zeta:     zeta,
		finalExp: finalExp,
	}
	if params.R != nil {
		g.params.R = new(big.Int).Set(params.R)
	}
	g.gen = &type1Point{g: g, p: params.Generator.Clone()}
	return g, nil
}

// GenerateType1 draws fresh parameters for level and returns the group with
// the level's digest.
func GenerateType1(r io.Reader, level cryptid.SecurityLevel) (*Type1, error) {
	params, err := GenerateType1Params(r, level)
	if err != nil {
		return nil, err
	}
	return NewType1(params, cryptid.HashFunctionForSecurityLevel(level))
}

func (g *Type1) Name() string {
	return fmt.Sprintf("type1-%s/%d", g.params.Level, g.params.P.BitLen())
}

func (g *Type1) Order() *big.Int { return new(big.Int).Set(g.params.Q) }

// Params returns a copy of the public parameters.
func (g *Type1) Params() Type1Params {
	out := g.params
	out.P = new(big.Int).Set(g.params.P)
	out.Q = new(big.Int).Set(g.params.Q)
	if g.params.R != nil {
		out.R = new(big.Int).Set(g.params.R)
	}
	out.Generator = g.params.Generator.Clone()
	return out
}

// Curve exposes the underlying curve for callers that need raw coordinates.
func (g *Type1) Curve() *curve.Curve { return g.curve }

// HashFunction returns the digest used by HashToG1.
func (g *Type1) HashFunction() cryptid.HashFunction { return g.hf }

func (g *Type1) Generator1() Point { return g.gen }

func (g *Type1) Generator2() Point { return g.gen }

// HashToG1 is HashToPoint1 of RFC 5091.
func (g *Type1) HashToG1(msg []byte) (Point, error) {
	p, err := hashing.HashToPoint(g.curve, g.params.Q, msg, g.hf)
	if err != nil {
		return nil, err
	}
	return &type1Point{g: g, p: p}, nil
}

func (g *Type1) HashToG2(msg []byte) (Point, error) { return g.HashToG1(msg) }

// Pair returns ê(a, b). Off-curve inputs are rejected; the identity pairs to 1.
func (g *Type1) Pair(a, b Point) (Target, error) {
	pa, ok := a.(*type1Point)
	if !ok || pa.g != g {
		return nil, ErrGroupMismatch
	}
	pb, ok := b.(*type1Point)
	if !ok || pb.g != g {
		return nil, ErrGroupMismatch
	}
	if !g.curve.IsOnCurve(pa.p).OK() || !g.curve.IsOnCurve(pb.p).OK() {
		return nil, ErrPointNotOnCurve
	}
	v, err := g.tate(pa.p, pb.p)
	if err != nil {
		return nil, fmt.Errorf("pairing: tate: %w", err)
	}
	return &type1Target{g: g, v: v}, nil
}

func (g *Type1) Identity() Target {
	return &type1Target{g: g, v: g.field.One()}
}

func (g *Type1) Validate(p Point) error {
	tp, ok := p.(*type1Point)
	if !ok || tp.g != g {
		return ErrGroupMismatch
	}
	if !g.curve.IsOnCurve(tp.p).OK() {
		return ErrPointNotOnCurve
	}
	if !tp.p.Infinity && !g.curve.InSubgroup(tp.p) {
		return ErrNotInSubgroup
	}
	return nil
}

// NewPoint wraps raw coordinates after checking they lie on the curve.
func (g *Type1) NewPoint(x, y *big.Int) (Point, error) {
	p, err := g.curve.NewPoint(x, y)
	if err != nil {
		return nil, ErrPointNotOnCurve
	}
	return &type1Point{g: g, p: p}, nil
}

// Affine returns the coordinates of a Type1 point.
func Affine(p Point) (curve.AffinePoint, bool) {
	tp, ok := p.(*type1Point)
	if !ok {
		return curve.AffinePoint{}, false
	}
	return tp.p.Clone(), true
}

type type1Point struct {
	g *Type1
	p curve.AffinePoint
}

func (a *type1Point) other(b Point) *type1Point {
	pb, ok := b.(*type1Point)
	if !ok || pb.g != a.g {
		panic(ErrGroupMismatch)
	}
	return pb
}

func (a *type1Point) Add(b Point) Point {
	return &type1Point{g: a.g, p: a.g.curve.Add(a.p, a.other(b).p)}
}

func (a *type1Point) Neg() Point {
	return &type1Point{g: a.g, p: a.g.curve.Negate(a.p)}
}

func (a *type1Point) ScalarMul(k *big.Int) Point {
	return &type1Point{g: a.g, p: a.g.curve.ScalarMultiply(a.p, k)}
}

func (a *type1Point) Equal(b Point) bool {
	pb, ok := b.(*type1Point)
	return ok && pb.g == a.g && a.g.curve.Equal(a.p, pb.p)
}

func (a *type1Point) IsIdentity() bool { return a.p.Infinity }

func (a *type1Point) Bytes() []byte { return a.g.curve.Encode(a.p) }

func (a *type1Point) Zeroize() { a.p.Zeroize() }

func (a *type1Point) String() string { return a.p.String() }

type type1Target struct {
	g *Type1
	v field.Element
}

func (x *type1Target) other(y Target) *type1Target {
	ty, ok := y.(*type1Target)
	if !ok || ty.g != x.g {
		panic(ErrGroupMismatch)
	}
	return ty
}

func (x *type1Target) Mul(y Target) Target {
	return &type1Target{g: x.g, v: x.v.Mul(x.other(y).v)}
}

// Inverse of a unitary element is its conjugate; GT lies in the norm-one
// subgroup of F_p².
func (x *type1Target) Inverse() Target {
	return &type1Target{g: x.g, v: x.v.Conjugate()}
}

func (x *type1Target) Exp(k *big.Int) Target {
	e := new(big.Int).Mod(k, x.g.params.Q)
	v, err := x.v.Exp(e)
	if err != nil {
		// Unreachable: e is non-negative.
		panic(err)
	}
	return &type1Target{g: x.g, v: v}
}

func (x *type1Target) Equal(y Target) bool {
	ty, ok := y.(*type1Target)
	return ok && ty.g == x.g && x.v.Equal(ty.v)
}

func (x *type1Target) IsOne() bool { return x.v.IsOne() }

// Bytes is Canonical(p, v, 1) of RFC 5091.
func (x *type1Target) Bytes() []byte {
	return hashing.Canonical(x.g.params.P, x.v, hashing.OrderImaginaryFirst)
}

// Element exposes the F_p² value of a Type1 target.
func Element(t Target) (field.Element, bool) {
	tt, ok := t.(*type1Target)
	if !ok {
		return field.Element{}, false
	}
	return tt.v, true
}
