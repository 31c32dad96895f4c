package pairing

import (
	"math/big"

	"github.com/Iscaraca/cryptid/curve"
	"github.com/Iscaraca/cryptid/field"
	"github.com/Iscaraca/cryptid/internal/cast"
)

// distortedPoint is φ(Q) = (ζ·x, y) ∈ E(F_p²).
type distortedPoint struct {
	x, y field.Element
}

// distortionZeta returns ζ = (p − 1)/2 · (1 + 3^((p + 1)/4)·i), a primitive
// cube root of unity in F_p² for p ≡ 11 mod 12.
func distortionZeta(f *field.Field) (field.Element, error) {
	p := f.Modulus()
	half := new(big.Int).Sub(p, bigOne)
	half.Rsh(half, 1)

	quarter := new(big.Int).Add(p, bigOne)
	quarter.Rsh(quarter, 2)
	im, err := f.Exp(big.NewInt(3), quarter)
	if err != nil {
		return field.Element{}, err
	}
	return f.NewElement(bigOne, im).MulScalar(half), nil
}

// tate evaluates the modified Tate pairing ê(a, b) = e(a, φ(b)) with
// Miller's algorithm over the bits of q followed by the final exponentiation
// to the power (p² − 1)/q.
//
// The Miller value is kept as a numerator and a denominator so that only one
// inversion is needed.
func (g *Type1) tate(a, b curve.AffinePoint) (field.Element, error) {
	f := g.field
	if a.Infinity || b.Infinity {
		return f.One(), nil
	}

	q := distortedPoint{x: g.zeta.MulScalar(b.X), y: f.Embed(b.Y)}
	num, den := f.One(), f.One()
	v := a.Clone()

	bits := cast.Bits(g.params.Q)
	for _, bit := range bits[1:] {
		// Doubling step: f = f² · g_{v,v}(Q) / g_{2v,−2v}(Q)
		doubled := g.curve.Double(v)
		num = num.Square().Mul(g.tangent(v, q))
		den = den.Square().Mul(g.vertical(doubled, q))
		v = doubled

		if bit {
			// Addition step: f = f · g_{v,a}(Q) / g_{v+a,−(v+a)}(Q)
			sum := g.curve.Add(v, a)
			num = num.Mul(g.line(v, a, q))
			den = den.Mul(g.vertical(sum, q))
			v = sum
		}
	}

	miller, err := num.Div(den)
	if err != nil {
		return field.Element{}, err
	}
	return g.finalExponentiation(miller)
}

// finalExponentiation raises m to (p² − 1)/q = (p − 1)·(p + 1)/q, using
// m^(p − 1) = conj(m)/m.
func (g *Type1) finalExponentiation(m field.Element) (field.Element, error) {
	easy, err := m.Conjugate().Div(m)
	if err != nil {
		return field.Element{}, err
	}
	return easy.Exp(g.finalExp)
}

// vertical evaluates x_Q − x_v, or 1 when v is infinity.
func (g *Type1) vertical(v curve.AffinePoint, q distortedPoint) field.Element {
	if v.Infinity {
		return g.field.One()
	}
	return q.x.Sub(g.field.Embed(v.X))
}

// tangent evaluates the tangent at v, a'·x_Q + b'·y_Q + c with
// a' = −(3x_v² + A), b' = 2y_v and c = −b'·y_v − a'·x_v.
func (g *Type1) tangent(v curve.AffinePoint, q distortedPoint) field.Element {
	f := g.field
	if v.Infinity {
		return f.One()
	}
	if v.Y.Sign() == 0 {
		return g.vertical(v, q)
	}
	la := f.Neg(f.Add(f.Mul(big.NewInt(3), f.Square(v.X)), g.curve.A()))
	lb := f.Add(v.Y, v.Y)
	lc := f.Neg(f.Add(f.Mul(lb, v.Y), f.Mul(la, v.X)))
	return q.x.MulScalar(la).Add(q.y.MulScalar(lb)).Add(f.Embed(lc))
}

// line evaluates the chord through v and a, a'·x_Q + b'·y_Q + c with
// a' = y_v − y_a, b' = x_a − x_v and c = −b'·y_v − a'·x_v. Degenerate chords
// become the tangent or the vertical through the finite point.
func (g *Type1) line(v, a curve.AffinePoint, q distortedPoint) field.Element {
	f := g.field
	switch {
	case v.Infinity:
		return g.vertical(a, q)
	case a.Infinity:
		return g.vertical(v, q)
	case g.curve.Equal(v, a):
		return g.tangent(v, q)
	case f.Equal(v.X, a.X):
		// v = −a
		return g.vertical(a, q)
	}
	la := f.Sub(v.Y, a.Y)
	lb := f.Sub(a.X, v.X)
	lc := f.Neg(f.Add(f.Mul(lb, v.Y), f.Mul(la, v.X)))
	return q.x.MulScalar(la).Add(q.y.MulScalar(lb)).Add(f.Embed(lc))
}
