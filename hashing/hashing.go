// Package hashing implements the hash-to-domain procedures of RFC 5091:
// HashToRange, HashBytes, Canonical and HashToPoint1.
package hashing

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Iscaraca/cryptid"
	"github.com/Iscaraca/cryptid/curve"
	"github.com/Iscaraca/cryptid/field"
)

// ErrHashToInfinity is returned when HashToPoint lands on the point at
// infinity. It indicates broken curve parameters, not a bad input.
var ErrHashToInfinity = errors.New("hashing: identity hashed to the point at infinity")

// Canonical element ordering, RFC 5091 §4.3.
const (
	OrderRealFirst      = 0
	OrderImaginaryFirst = 1
)

var (
	bigOne   = big.NewInt(1)
	bigThree = big.NewInt(3)
)

// HashToRange hashes s to an integer in [0, n), RFC 5091 §4.1.1. An invalid
// hf is cryptid.ErrUnknownDigest.
//
// Inputs:
// - s, the octet string to hash
// - n, a positive integer
// - hf, the hash function
//
// Procedure:
//  1. v_0 = 0, h_0 = 0x00 repeated hashlen times
//  2. for i in 1, 2: t_i = h_{i-1} || s; h_i = hf(t_i); v_i = 256^hashlen · v_{i-1} + a_i
//  3. return v_2 mod n
func HashToRange(s []byte, n *big.Int, hf cryptid.HashFunction) (*big.Int, error) {
	if !hf.IsValid().OK() {
		return nil, cryptid.ErrUnknownDigest
	}
	if n == nil || n.Sign() <= 0 {
		return nil, errors.New("hashing: range must be positive")
	}
	hashLen := hf.Size()
	h := make([]byte, hashLen)
	v := new(big.Int)
	shift := uint(8 * hashLen)

	for i := 1; i <= 2; i++ {
		h = hf.Sum(h, s)
		a := new(big.Int).SetBytes(h)
		v.Lsh(v, shift).Add(v, a)
	}

	return v.Mod(v, n), nil
}

// HashBytes expands p into b pseudo-random octets, RFC 5091 §4.2.1. An
// invalid hf is cryptid.ErrUnknownDigest.
//
// Procedure:
//  1. k = hf(p), h_0 = 0x00 repeated hashlen times
//  2. for i in 1..ceil(b/hashlen): h_i = hf(h_{i-1}); r_i = hf(h_i || k)
//  3. return the leftmost b octets of r_1 || ... || r_l
func HashBytes(b int, p []byte, hf cryptid.HashFunction) ([]byte, error) {
	if !hf.IsValid().OK() {
		return nil, cryptid.ErrUnknownDigest
	}
	if b <= 0 {
		return []byte{}, nil
	}
	hashLen := hf.Size()
	k := hf.Sum(p)
	h := make([]byte, hashLen)

	out := make([]byte, 0, b+hashLen)
	for len(out) < b {
		h = hf.Sum(h)
		out = append(out, hf.Sum(h, k)...)
	}
	return out[:b], nil
}

// Canonical encodes v = a + b·i ∈ F_p², RFC 5091 §4.3.2. Each coordinate is
// written big-endian in exactly ceil(lg(p)/8) octets; order 0 emits a then b,
// order 1 emits b then a.
func Canonical(p *big.Int, v field.Element, order int) []byte {
	l := (p.BitLen() + 7) / 8
	re := v.Real().FillBytes(make([]byte, l))
	im := v.Imag().FillBytes(make([]byte, l))

	out := make([]byte, 0, 2*l)
	if order == OrderRealFirst {
		out = append(out, re...)
		return append(out, im...)
	}
	out = append(out, im...)
	return append(out, re...)
}

// HashToPoint maps id to a point of order q on the type-1 curve
// y² = x³ + 1 over F_p, RFC 5091 §4.4.2 (HashToPoint1). An invalid hf is
// cryptid.ErrUnknownDigest.
//
// Procedure:
//  1. y = HashToRange(id, p)
//  2. x = (y² − 1)^((2p − 1)/3) mod p
//  3. Q' = (x, y)
//  4. return Q = [(p + 1)/q]Q'
func HashToPoint(c *curve.Curve, q *big.Int, id []byte, hf cryptid.HashFunction) (curve.AffinePoint, error) {
	if c.A().Sign() != 0 {
		return curve.AffinePoint{}, errors.New("hashing: HashToPoint requires a curve with a = 0")
	}
	f := c.Field()
	p := f.Modulus()

	// 1. y = HashToRange(id, p)
	y, err := HashToRange(id, p, hf)
	if err != nil {
		return curve.AffinePoint{}, err
	}

	// 2. x = (y² − b)^((2p − 1)/3)
	exp := new(big.Int).Lsh(p, 1)
	exp.Sub(exp, bigOne).Div(exp, bigThree)
	x, err := f.Exp(f.Sub(f.Square(y), c.B()), exp)
	if err != nil {
		return curve.AffinePoint{}, fmt.Errorf("hashing: %w", err)
	}

	// 3-4. Q = [(p + 1)/q]Q'
	l := new(big.Int).Add(p, bigOne)
	l.Div(l, q)
	result := c.MultiplyUnreduced(curve.AffinePoint{X: x, Y: y}, l)
	if result.Infinity {
		return curve.AffinePoint{}, ErrHashToInfinity
	}
	return result, nil
}
