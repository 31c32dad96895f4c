package field

import (
	"math/big"

	"github.com/Iscaraca/cryptid/internal/cast"
	"github.com/Iscaraca/cryptid/internal/zeroize"
)

// Element is a + b·i in F_p² with i² = −1. The extension is a field when
// p ≡ 3 mod 4, which holds for every type-1 parameter set.
//
// Elements are values; operations on elements of different fields panic.
type Element struct {
	a, b *big.Int
	f    *Field
}

// NewElement reduces a and b into F_p and returns a + b·i.
func (f *Field) NewElement(a, b *big.Int) Element {
	return Element{a: f.Reduce(a), b: f.Reduce(b), f: f}
}

// Zero returns the additive identity of F_p².
func (f *Field) Zero() Element {
	return Element{a: new(big.Int), b: new(big.Int), f: f}
}

// One returns the multiplicative identity of F_p².
func (f *Field) One() Element {
	return Element{a: big.NewInt(1), b: new(big.Int), f: f}
}

// Embed returns a + 0·i.
func (f *Field) Embed(a *big.Int) Element {
	return Element{a: f.Reduce(a), b: new(big.Int), f: f}
}

// Real returns a copy of the real part a.
func (x Element) Real() *big.Int { return new(big.Int).Set(x.a) }

// Imag returns a copy of the imaginary part b.
func (x Element) Imag() *big.Int { return new(big.Int).Set(x.b) }

// Field returns the base field.
func (x Element) Field() *Field { return x.f }

func (x Element) mustMatch(y Element) {
	if x.f == nil || y.f == nil {
		panic("field: uninitialized element")
	}
	if x.f != y.f && x.f.p.Cmp(y.f.p) != 0 {
		panic("field: elements of different fields")
	}
}

func (x Element) Add(y Element) Element {
	x.mustMatch(y)
	return Element{a: x.f.Add(x.a, y.a), b: x.f.Add(x.b, y.b), f: x.f}
}

func (x Element) Sub(y Element) Element {
	x.mustMatch(y)
	return Element{a: x.f.Sub(x.a, y.a), b: x.f.Sub(x.b, y.b), f: x.f}
}

func (x Element) Neg() Element {
	return Element{a: x.f.Neg(x.a), b: x.f.Neg(x.b), f: x.f}
}

// Mul computes (a + bi)(c + di) = (ac − bd) + ((a + b)(c + d) − ac − bd)i.
func (x Element) Mul(y Element) Element {
	x.mustMatch(y)
	f := x.f
	ac := new(big.Int).Mul(x.a, y.a)
	bd := new(big.Int).Mul(x.b, y.b)
	cross := new(big.Int).Mul(
		new(big.Int).Add(x.a, x.b),
		new(big.Int).Add(y.a, y.b),
	)
	cross.Sub(cross, ac).Sub(cross, bd)
	return Element{
		a: f.Reduce(ac.Sub(ac, bd)),
		b: f.Reduce(cross),
		f: f,
	}
}

// Square computes (a + b)(a − b) + 2ab·i.
func (x Element) Square() Element {
	f := x.f
	re := new(big.Int).Mul(new(big.Int).Add(x.a, x.b), new(big.Int).Sub(x.a, x.b))
	im := new(big.Int).Mul(x.a, x.b)
	im.Lsh(im, 1)
	return Element{a: f.Reduce(re), b: f.Reduce(im), f: f}
}

// MulScalar multiplies both coordinates by s ∈ F_p.
func (x Element) MulScalar(s *big.Int) Element {
	return Element{a: x.f.Mul(x.a, s), b: x.f.Mul(x.b, s), f: x.f}
}

// Conjugate returns a − b·i, which equals x^p in F_p².
func (x Element) Conjugate() Element {
	return Element{a: new(big.Int).Set(x.a), b: x.f.Neg(x.b), f: x.f}
}

// Inverse returns (a − bi)/(a² + b²).
func (x Element) Inverse() (Element, error) {
	f := x.f
	norm := new(big.Int).Mul(x.a, x.a)
	norm.Add(norm, new(big.Int).Mul(x.b, x.b))
	inv, err := f.Inverse(norm)
	if err != nil {
		return Element{}, ErrNonInvertible
	}
	return Element{a: f.Mul(x.a, inv), b: f.Mul(f.Neg(x.b), inv), f: f}, nil
}

// Div returns x·y⁻¹.
func (x Element) Div(y Element) (Element, error) {
	inv, err := y.Inverse()
	if err != nil {
		return Element{}, err
	}
	return x.Mul(inv), nil
}

// Exp returns x^k by square-and-multiply over the bits of k, most significant
// first. x^0 is one; negative k inverts first.
func (x Element) Exp(k *big.Int) (Element, error) {
	base := x
	if k.Sign() < 0 {
		inv, err := x.Inverse()
		if err != nil {
			return Element{}, err
		}
		base = inv
		k = new(big.Int).Neg(k)
	}
	acc := x.f.One()
	for _, bit := range cast.Bits(k) {
		acc = acc.Square()
		if bit {
			acc = acc.Mul(base)
		}
	}
	return acc, nil
}

func (x Element) Equal(y Element) bool {
	x.mustMatch(y)
	return x.a.Cmp(y.a) == 0 && x.b.Cmp(y.b) == 0
}

func (x Element) IsZero() bool {
	return x.a.Sign() == 0 && x.b.Sign() == 0
}

func (x Element) IsOne() bool {
	return x.a.Cmp(bigOne) == 0 && x.b.Sign() == 0
}

// Zeroize clears both coordinates in place.
func (x Element) Zeroize() {
	zeroize.BigInts(x.a, x.b)
}

func (x Element) String() string {
	return "(" + x.a.Text(16) + " + " + x.b.Text(16) + "i)"
}
