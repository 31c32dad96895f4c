// Package curve implements affine arithmetic on short Weierstrass curves
// y² = x³ + ax + b over a prime field.
//
// The point at infinity is a flag on AffinePoint and is handled by explicit
// branches; the affine formulas are never evaluated at it.
package curve

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Iscaraca/cryptid"
	"github.com/Iscaraca/cryptid/field"
	"github.com/Iscaraca/cryptid/internal/cast"
)

// ErrNotOnCurve is returned when coordinates do not satisfy the curve equation.
var ErrNotOnCurve = errors.New("curve: point is not on the curve")

var (
	bigZero  = big.NewInt(0)
	bigOne   = big.NewInt(1)
	bigThree = big.NewInt(3)
)

// Curve is y² = x³ + ax + b over F_p together with the order q of the
// subgroup used by the schemes and its cofactor. q and the cofactor may be nil
// while parameters are still being generated.
type Curve struct {
	f        *field.Field
	a, b     *big.Int
	order    *big.Int
	cofactor *big.Int
}

// New builds a curve and rejects singular coefficients (4a³ + 27b² ≡ 0).
func New(f *field.Field, a, b, order, cofactor *big.Int) (*Curve, error) {
	if f == nil {
		return nil, errors.New("curve: nil field")
	}
	c := &Curve{f: f, a: f.Reduce(a), b: f.Reduce(b)}
	if order != nil {
		c.order = new(big.Int).Set(order)
	}
	if cofactor != nil {
		c.cofactor = new(big.Int).Set(cofactor)
	}

	disc := f.Add(
		f.Mul(big.NewInt(4), f.Mul(c.a, f.Square(c.a))),
		f.Mul(big.NewInt(27), f.Square(c.b)),
	)
	if disc.Sign() == 0 {
		return nil, fmt.Errorf("curve: singular curve (a=%s, b=%s)", c.a, c.b)
	}
	return c, nil
}

// NewType1 returns the supersingular curve y² = x³ + 1.
func NewType1(f *field.Field, order, cofactor *big.Int) (*Curve, error) {
	return New(f, bigZero, bigOne, order, cofactor)
}

func (c *Curve) Field() *field.Field { return c.f }

// A returns a copy of the coefficient a.
func (c *Curve) A() *big.Int { return new(big.Int).Set(c.a) }

// B returns a copy of the coefficient b.
func (c *Curve) B() *big.Int { return new(big.Int).Set(c.b) }

// Order returns a copy of the subgroup order q, or nil if unset.
func (c *Curve) Order() *big.Int {
	if c.order == nil {
		return nil
	}
	return new(big.Int).Set(c.order)
}

// Cofactor returns a copy of the cofactor, or nil if unset.
func (c *Curve) Cofactor() *big.Int {
	if c.cofactor == nil {
		return nil
	}
	return new(big.Int).Set(c.cofactor)
}

// Infinity returns the identity element.
func (c *Curve) Infinity() AffinePoint {
	return AffinePoint{Infinity: true}
}

// NewPoint validates (x, y) and returns it as a point.
func (c *Curve) NewPoint(x, y *big.Int) (AffinePoint, error) {
	p := AffinePoint{X: new(big.Int).Set(x), Y: new(big.Int).Set(y)}
	if !c.IsOnCurve(p).OK() {
		return AffinePoint{}, ErrNotOnCurve
	}
	return p, nil
}

// IsOnCurve checks the curve equation for canonical coordinates. Infinity is
// on every curve.
func (c *Curve) IsOnCurve(p AffinePoint) cryptid.ValidationResult {
	if p.Infinity {
		return cryptid.ValidationSuccess
	}
	if !c.f.IsCanonical(p.X) || !c.f.IsCanonical(p.Y) {
		return cryptid.ValidationFailure
	}
	return cryptid.ValidationFrom(c.f.Square(p.Y).Cmp(c.rhs(p.X)) == 0)
}

// rhs returns x³ + ax + b.
func (c *Curve) rhs(x *big.Int) *big.Int {
	f := c.f
	x3 := f.Mul(f.Square(x), x)
	return f.Add(f.Add(x3, f.Mul(c.a, x)), c.b)
}

func (c *Curve) IsInfinity(p AffinePoint) bool { return p.Infinity }

// Equal compares two points, treating all infinity values as equal.
func (c *Curve) Equal(p, q AffinePoint) bool {
	if p.Infinity || q.Infinity {
		return p.Infinity == q.Infinity
	}
	return c.f.Equal(p.X, q.X) && c.f.Equal(p.Y, q.Y)
}

// Negate returns (x, −y).
func (c *Curve) Negate(p AffinePoint) AffinePoint {
	if p.Infinity {
		return c.Infinity()
	}
	return AffinePoint{X: new(big.Int).Set(p.X), Y: c.f.Neg(p.Y)}
}

// Add returns p + q.
func (c *Curve) Add(p, q AffinePoint) AffinePoint {
	switch {
	case p.Infinity:
		return q.Clone()
	case q.Infinity:
		return p.Clone()
	}

	f := c.f
	if f.Equal(p.X, q.X) {
		if f.Equal(p.Y, f.Neg(q.Y)) {
			return c.Infinity()
		}
		return c.Double(p)
	}

	// λ = (y2 − y1)/(x2 − x1)
	lambda := c.mustDiv(f.Sub(q.Y, p.Y), f.Sub(q.X, p.X))
	return c.chord(lambda, p, q.X)
}

// Double returns 2p.
func (c *Curve) Double(p AffinePoint) AffinePoint {
	if p.Infinity || p.Y.Sign() == 0 {
		return c.Infinity()
	}
	f := c.f
	// λ = (3x² + a)/(2y)
	num := f.Add(f.Mul(bigThree, f.Square(p.X)), c.a)
	lambda := c.mustDiv(num, f.Add(p.Y, p.Y))
	return c.chord(lambda, p, p.X)
}

// chord completes an addition with slope lambda through p and a second point
// with abscissa x2.
func (c *Curve) chord(lambda *big.Int, p AffinePoint, x2 *big.Int) AffinePoint {
	f := c.f
	x3 := f.Sub(f.Sub(f.Square(lambda), p.X), x2)
	y3 := f.Sub(f.Mul(lambda, f.Sub(p.X, x3)), p.Y)
	return AffinePoint{X: x3, Y: y3}
}

// mustDiv is used only where the denominator is non-zero by construction.
func (c *Curve) mustDiv(a, b *big.Int) *big.Int {
	z, err := c.f.Div(a, b)
	if err != nil {
		panic(fmt.Sprintf("curve: unexpected zero denominator: %v", err))
	}
	return z
}

// ScalarMultiply returns [k]p by double-and-add over the bits of k, most
// significant first. k is reduced modulo the subgroup order when the curve
// has one, so negative scalars are accepted.
func (c *Curve) ScalarMultiply(p AffinePoint, k *big.Int) AffinePoint {
	n := new(big.Int).Set(k)
	if c.order != nil {
		n.Mod(n, c.order)
	} else if n.Sign() < 0 {
		p = c.Negate(p)
		n.Neg(n)
	}
	return c.MultiplyUnreduced(p, n)
}

// ClearCofactor returns [cofactor]p. Without a cofactor it returns p.
func (c *Curve) ClearCofactor(p AffinePoint) AffinePoint {
	if c.cofactor == nil {
		return p.Clone()
	}
	return c.MultiplyUnreduced(p, c.cofactor)
}

// MultiplyUnreduced returns [k]p for non-negative k without reducing k
// modulo the order, as needed for cofactors and order checks.
func (c *Curve) MultiplyUnreduced(p AffinePoint, k *big.Int) AffinePoint {
	acc := c.Infinity()
	if p.Infinity {
		return acc
	}
	for _, bit := range cast.Bits(k) {
		acc = c.Double(acc)
		if bit {
			acc = c.Add(acc, p)
		}
	}
	return acc
}

// InSubgroup reports whether [q]p is infinity.
func (c *Curve) InSubgroup(p AffinePoint) bool {
	if c.order == nil {
		return false
	}
	return c.MultiplyUnreduced(p, c.order).Infinity
}

// Encode returns 0x04‖x‖y with fixed-width coordinates, or a single 0x00
// octet for infinity.
func (c *Curve) Encode(p AffinePoint) []byte {
	if p.Infinity {
		return []byte{0x00}
	}
	out := make([]byte, 0, 1+2*c.f.ByteLen())
	out = append(out, 0x04)
	out = append(out, c.f.Bytes(p.X)...)
	return append(out, c.f.Bytes(p.Y)...)
}

// Decode parses the output of Encode and checks the point is on the curve.
func (c *Curve) Decode(b []byte) (AffinePoint, error) {
	if len(b) == 1 && b[0] == 0x00 {
		return c.Infinity(), nil
	}
	n := c.f.ByteLen()
	if len(b) != 1+2*n || b[0] != 0x04 {
		return AffinePoint{}, fmt.Errorf("curve: decode: bad encoding length %d", len(b))
	}
	x := new(big.Int).SetBytes(b[1 : 1+n])
	y := new(big.Int).SetBytes(b[1+n:])
	return c.NewPoint(x, y)
}
