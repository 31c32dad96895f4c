// Package field implements arithmetic in a prime field F_p and in its
// quadratic extension F_p² = F_p[i]/(i² + 1).
//
// Moduli are chosen at run time, so values are math/big integers. Every
// operation returns a freshly allocated, canonically reduced result and never
// aliases its inputs.
package field

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

var (
	// ErrNonInvertible is returned when asked to invert a value that shares a
	// factor with the modulus.
	ErrNonInvertible = errors.New("field: element is not invertible")
	// ErrInvalidModulus is returned for moduli that cannot define a field.
	ErrInvalidModulus = errors.New("field: modulus must be an odd integer greater than 2")
)

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
)

// Field is the prime field F_p. It is immutable once built.
type Field struct {
	p       *big.Int
	byteLen int
}

// New returns the field of integers modulo p. Primality is not checked here;
// parameter validation does that once for the whole parameter set.
func New(p *big.Int) (*Field, error) {
	if p == nil || p.Cmp(bigTwo) <= 0 || p.Bit(0) == 0 {
		return nil, ErrInvalidModulus
	}
	return &Field{
		p:       new(big.Int).Set(p),
		byteLen: (p.BitLen() + 7) / 8,
	}, nil
}

// Modulus returns a copy of p.
func (f *Field) Modulus() *big.Int { return new(big.Int).Set(f.p) }

// ByteLen is the length of p in octets.
func (f *Field) ByteLen() int { return f.byteLen }

// Reduce returns a mod p in [0, p).
func (f *Field) Reduce(a *big.Int) *big.Int {
	return new(big.Int).Mod(a, f.p)
}

// IsCanonical reports whether a already lies in [0, p).
func (f *Field) IsCanonical(a *big.Int) bool {
	return a != nil && a.Sign() >= 0 && a.Cmp(f.p) < 0
}

func (f *Field) Add(a, b *big.Int) *big.Int {
	z := new(big.Int).Add(a, b)
	return z.Mod(z, f.p)
}

func (f *Field) Sub(a, b *big.Int) *big.Int {
	z := new(big.Int).Sub(a, b)
	return z.Mod(z, f.p)
}

func (f *Field) Neg(a *big.Int) *big.Int {
	z := new(big.Int).Neg(a)
	return z.Mod(z, f.p)
}

func (f *Field) Mul(a, b *big.Int) *big.Int {
	z := new(big.Int).Mul(a, b)
	return z.Mod(z, f.p)
}

func (f *Field) Square(a *big.Int) *big.Int {
	return f.Mul(a, a)
}

// Inverse returns a⁻¹ mod p.
func (f *Field) Inverse(a *big.Int) (*big.Int, error) {
	r := f.Reduce(a)
	if r.Sign() == 0 {
		return nil, ErrNonInvertible
	}
	if r.ModInverse(r, f.p) == nil {
		return nil, ErrNonInvertible
	}
	return r, nil
}

// Div returns a·b⁻¹ mod p.
func (f *Field) Div(a, b *big.Int) (*big.Int, error) {
	inv, err := f.Inverse(b)
	if err != nil {
		return nil, err
	}
	return f.Mul(a, inv), nil
}

// Exp returns a^k mod p. Negative exponents invert first.
func (f *Field) Exp(a, k *big.Int) (*big.Int, error) {
	base := f.Reduce(a)
	if k.Sign() < 0 {
		inv, err := f.Inverse(base)
		if err != nil {
			return nil, err
		}
		return inv.Exp(inv, new(big.Int).Neg(k), f.p), nil
	}
	return base.Exp(base, k, f.p), nil
}

// Equal compares a and b modulo p.
func (f *Field) Equal(a, b *big.Int) bool {
	return f.Reduce(a).Cmp(f.Reduce(b)) == 0
}

// Random returns a uniform value in [0, p) read from r, or crypto/rand when r
// is nil.
func (f *Field) Random(r io.Reader) (*big.Int, error) {
	if r == nil {
		r = rand.Reader
	}
	v, err := rand.Int(r, f.p)
	if err != nil {
		return nil, fmt.Errorf("field: random: %w", err)
	}
	return v, nil
}

// RandomNonZero returns a uniform value in [1, p).
func (f *Field) RandomNonZero(r io.Reader) (*big.Int, error) {
	if r == nil {
		r = rand.Reader
	}
	bound := new(big.Int).Sub(f.p, bigOne)
	v, err := rand.Int(r, bound)
	if err != nil {
		return nil, fmt.Errorf("field: random: %w", err)
	}
	return v.Add(v, bigOne), nil
}

// Bytes encodes a mod p as a big-endian string of exactly ByteLen octets.
func (f *Field) Bytes(a *big.Int) []byte {
	return f.Reduce(a).FillBytes(make([]byte, f.byteLen))
}
