package pairing

import (
	"errors"
	"math/big"
)

// affinePtr is satisfied by *G1Affine and *G2Affine of a gnark-crypto curve
// package, with J its Jacobian counterpart.
type affinePtr[A, J any] interface {
	*A
	Neg(*A) *A
	Equal(*A) bool
	IsInfinity() bool
	IsOnCurve() bool
	IsInSubGroup() bool
	FromJacobian(*J) *A
	String() string
}

type jacobianPtr[A, J any] interface {
	*J
	FromAffine(*A) *J
	AddAssign(*J) *J
	ScalarMultiplication(*J, *big.Int) *J
}

// targetPtr is satisfied by *GT of a gnark-crypto curve package.
type targetPtr[T any] interface {
	*T
	Mul(x, y *T) *T
	Inverse(x *T) *T
	Exp(x T, k *big.Int) *T
	Equal(x *T) bool
	IsOne() bool
	SetOne() *T
}

// subgroup is G1 or G2 of a gnark-crypto curve. Points compare their
// subgroup by pointer, so each curve owns exactly one value per subgroup.
type subgroup[A, J any, PA affinePtr[A, J], PJ jacobianPtr[A, J]] struct {
	name  string
	order *big.Int
	gen   A
	bytes func(*A) []byte
	hash  func(msg []byte) (A, error)
}

func (sg *subgroup[A, J, PA, PJ]) point(p A) *gnarkPoint[A, J, PA, PJ] {
	return &gnarkPoint[A, J, PA, PJ]{sg: sg, p: p}
}

func (sg *subgroup[A, J, PA, PJ]) hashTo(msg []byte) (Point, error) {
	p, err := sg.hash(msg)
	if err != nil {
		return nil, err
	}
	if PA(&p).IsInfinity() {
		return nil, errors.New("pairing: hash to " + sg.name + " produced the identity")
	}
	return sg.point(p), nil
}

type targetGroup[T any, PT targetPtr[T]] struct {
	order *big.Int
	bytes func(*T) []byte
}

// gnarkGroup adapts one gnark-crypto curve package to Group.
type gnarkGroup[
	G1A, G1J, G2A, G2J, GT any,
	P1 affinePtr[G1A, G1J], J1 jacobianPtr[G1A, G1J],
	P2 affinePtr[G2A, G2J], J2 jacobianPtr[G2A, G2J],
	PT targetPtr[GT],
] struct {
	name  string
	order *big.Int
	g1    *subgroup[G1A, G1J, P1, J1]
	g2    *subgroup[G2A, G2J, P2, J2]
	gt    *targetGroup[GT, PT]
	pair  func(G1A, G2A) (GT, error)
}

func (g *gnarkGroup[G1A, G1J, G2A, G2J, GT, P1, J1, P2, J2, PT]) Name() string { return g.name }

func (g *gnarkGroup[G1A, G1J, G2A, G2J, GT, P1, J1, P2, J2, PT]) Order() *big.Int {
	return new(big.Int).Set(g.order)
}

func (g *gnarkGroup[G1A, G1J, G2A, G2J, GT, P1, J1, P2, J2, PT]) Generator1() Point {
	return g.g1.point(g.g1.gen)
}

func (g *gnarkGroup[G1A, G1J, G2A, G2J, GT, P1, J1, P2, J2, PT]) Generator2() Point {
	return g.g2.point(g.g2.gen)
}

func (g *gnarkGroup[G1A, G1J, G2A, G2J, GT, P1, J1, P2, J2, PT]) HashToG1(msg []byte) (Point, error) {
	return g.g1.hashTo(msg)
}

func (g *gnarkGroup[G1A, G1J, G2A, G2J, GT, P1, J1, P2, J2, PT]) HashToG2(msg []byte) (Point, error) {
	return g.g2.hashTo(msg)
}

func (g *gnarkGroup[G1A, G1J, G2A, G2J, GT, P1, J1, P2, J2, PT]) Pair(a, b Point) (Target, error) {
	pa, ok := a.(*gnarkPoint[G1A, G1J, P1, J1])
	if !ok || pa.sg != g.g1 {
		return nil, ErrGroupMismatch
	}
	pb, ok := b.(*gnarkPoint[G2A, G2J, P2, J2])
	if !ok || pb.sg != g.g2 {
		return nil, ErrGroupMismatch
	}
	if !P1(&pa.p).IsOnCurve() || !P2(&pb.p).IsOnCurve() {
		return nil, ErrPointNotOnCurve
	}
	if P1(&pa.p).IsInfinity() || P2(&pb.p).IsInfinity() {
		return g.Identity(), nil
	}
	v, err := g.pair(pa.p, pb.p)
	if err != nil {
		return nil, err
	}
	return &gnarkTarget[GT, PT]{tg: g.gt, v: v}, nil
}

func (g *gnarkGroup[G1A, G1J, G2A, G2J, GT, P1, J1, P2, J2, PT]) Identity() Target {
	out := &gnarkTarget[GT, PT]{tg: g.gt}
	PT(&out.v).SetOne()
	return out
}

func (g *gnarkGroup[G1A, G1J, G2A, G2J, GT, P1, J1, P2, J2, PT]) Validate(p Point) error {
	if tp, ok := p.(*gnarkPoint[G1A, G1J, P1, J1]); ok && tp.sg == g.g1 {
		return tp.validate()
	}
	if tp, ok := p.(*gnarkPoint[G2A, G2J, P2, J2]); ok && tp.sg == g.g2 {
		return tp.validate()
	}
	return ErrGroupMismatch
}

type gnarkPoint[A, J any, PA affinePtr[A, J], PJ jacobianPtr[A, J]] struct {
	sg *subgroup[A, J, PA, PJ]
	p  A
}

func (a *gnarkPoint[A, J, PA, PJ]) other(b Point) *gnarkPoint[A, J, PA, PJ] {
	pb, ok := b.(*gnarkPoint[A, J, PA, PJ])
	if !ok || pb.sg != a.sg {
		panic(ErrGroupMismatch)
	}
	return pb
}

func (a *gnarkPoint[A, J, PA, PJ]) validate() error {
	if !PA(&a.p).IsOnCurve() {
		return ErrPointNotOnCurve
	}
	if !PA(&a.p).IsInSubGroup() {
		return ErrNotInSubgroup
	}
	return nil
}

func (a *gnarkPoint[A, J, PA, PJ]) Add(b Point) Point {
	var acc, tmp J
	PJ(&acc).FromAffine(&a.p)
	PJ(&tmp).FromAffine(&a.other(b).p)
	PJ(&acc).AddAssign(&tmp)

	out := &gnarkPoint[A, J, PA, PJ]{sg: a.sg}
	PA(&out.p).FromJacobian(&acc)
	return out
}

func (a *gnarkPoint[A, J, PA, PJ]) Neg() Point {
	out := &gnarkPoint[A, J, PA, PJ]{sg: a.sg}
	PA(&out.p).Neg(&a.p)
	return out
}

func (a *gnarkPoint[A, J, PA, PJ]) ScalarMul(k *big.Int) Point {
	var jac J
	PJ(&jac).FromAffine(&a.p)
	PJ(&jac).ScalarMultiplication(&jac, new(big.Int).Mod(k, a.sg.order))

	out := &gnarkPoint[A, J, PA, PJ]{sg: a.sg}
	PA(&out.p).FromJacobian(&jac)
	return out
}

func (a *gnarkPoint[A, J, PA, PJ]) Equal(b Point) bool {
	pb, ok := b.(*gnarkPoint[A, J, PA, PJ])
	return ok && pb.sg == a.sg && PA(&a.p).Equal(&pb.p)
}

func (a *gnarkPoint[A, J, PA, PJ]) IsIdentity() bool { return PA(&a.p).IsInfinity() }

func (a *gnarkPoint[A, J, PA, PJ]) Bytes() []byte { return a.sg.bytes(&a.p) }

// Zeroize overwrites the coordinates with zeros; gnark-crypto reads (0, 0)
// as the point at infinity.
func (a *gnarkPoint[A, J, PA, PJ]) Zeroize() {
	var zero A
	a.p = zero
}

func (a *gnarkPoint[A, J, PA, PJ]) String() string { return PA(&a.p).String() }

type gnarkTarget[T any, PT targetPtr[T]] struct {
	tg *targetGroup[T, PT]
	v  T
}

func (x *gnarkTarget[T, PT]) other(y Target) *gnarkTarget[T, PT] {
	ty, ok := y.(*gnarkTarget[T, PT])
	if !ok || ty.tg != x.tg {
		panic(ErrGroupMismatch)
	}
	return ty
}

func (x *gnarkTarget[T, PT]) Mul(y Target) Target {
	out := &gnarkTarget[T, PT]{tg: x.tg}
	PT(&out.v).Mul(&x.v, &x.other(y).v)
	return out
}

func (x *gnarkTarget[T, PT]) Inverse() Target {
	out := &gnarkTarget[T, PT]{tg: x.tg}
	PT(&out.v).Inverse(&x.v)
	return out
}

func (x *gnarkTarget[T, PT]) Exp(k *big.Int) Target {
	out := &gnarkTarget[T, PT]{tg: x.tg}
	PT(&out.v).Exp(x.v, new(big.Int).Mod(k, x.tg.order))
	return out
}

func (x *gnarkTarget[T, PT]) Equal(y Target) bool {
	ty, ok := y.(*gnarkTarget[T, PT])
	return ok && ty.tg == x.tg && PT(&x.v).Equal(&ty.v)
}

func (x *gnarkTarget[T, PT]) IsOne() bool { return PT(&x.v).IsOne() }

func (x *gnarkTarget[T, PT]) Bytes() []byte { return x.tg.bytes(&x.v) }
