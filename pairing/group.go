// Package pairing provides bilinear groups e: G1 × G2 → GT behind a common
// interface so that every scheme runs unchanged on each backend:
//
//   - Type1, the modified Tate pairing on the supersingular curve
//     y² = x³ + 1 (RFC 5091), with run-time generated parameters
//   - BLS12381 and BN254, the optimal ate pairings of gnark-crypto
//
// Elements are immutable: every operation returns a new value. Mixing
// elements of different groups is a programming error; element methods panic
// on it and Pair reports ErrGroupMismatch.
package pairing

import (
	"errors"
	"math/big"
)

var (
	// ErrPointNotOnCurve is returned when a pairing input or a validated
	// point does not lie on the group's curve.
	ErrPointNotOnCurve = errors.New("pairing: point is not on the curve")
	// ErrNotInSubgroup is returned by Validate for points outside the prime
	// order subgroup.
	ErrNotInSubgroup = errors.New("pairing: point is not in the prime order subgroup")
	// ErrGroupMismatch is returned when an element from another group is
	// passed in.
	ErrGroupMismatch = errors.New("pairing: element belongs to a different group")
)

// Point is an element of G1 or G2.
type Point interface {
	Add(Point) Point
	Neg() Point
	// ScalarMul returns [k]P; k is reduced modulo the group order.
	ScalarMul(k *big.Int) Point
	Equal(Point) bool
	IsIdentity() bool
	// Bytes returns the canonical encoding of the point.
	Bytes() []byte
	// Zeroize overwrites the coordinates in place. The point must not be
	// used afterwards.
	Zeroize()
	String() string
}

// Target is an element of GT, written multiplicatively.
type Target interface {
	Mul(Target) Target
	Inverse() Target
	// Exp returns x^k; k is reduced modulo the group order.
	Exp(k *big.Int) Target
	Equal(Target) bool
	IsOne() bool
	// Bytes returns the canonical encoding hashed by the schemes.
	Bytes() []byte
}

// Group is a pairing-friendly group triple of prime order.
type Group interface {
	Name() string
	// Order returns a copy of the prime order of G1, G2 and GT.
	Order() *big.Int
	Generator1() Point
	Generator2() Point
	// HashToG1 and HashToG2 map arbitrary octets to non-identity points.
	HashToG1(msg []byte) (Point, error)
	HashToG2(msg []byte) (Point, error)
	// Pair computes e(a, b) for a ∈ G1 and b ∈ G2. Pairing with the identity
	// yields the identity of GT.
	Pair(a, b Point) (Target, error)
	// Identity returns 1 ∈ GT.
	Identity() Target
	// Validate checks that p belongs to G1 or G2 of this group.
	Validate(p Point) error
}

// Zeroize clears p when it is non-nil.
func Zeroize(p Point) {
	if p != nil {
		p.Zeroize()
	}
}

// Div returns a/b in GT.
func Div(a, b Target) Target {
	return a.Mul(b.Inverse())
}
