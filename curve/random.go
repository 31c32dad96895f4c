package curve

import (
	"fmt"
	"io"
	"math/big"

	"github.com/Iscaraca/cryptid"
)

// AttemptLimit bounds the retries of randomized point generation.
const AttemptLimit = 100

// RandomPoint returns a uniformly chosen affine point of E(F_p).
//
// For a = 0 and p ≡ 2 mod 3 cubing is a bijection of F_p, so a random y
// determines x = (y² − b)^((2p − 1)/3) directly. Other curves draw x and take
// a square root when x³ + ax + b is a residue.
func (c *Curve) RandomPoint(r io.Reader) (AffinePoint, error) {
	if c.cubeRootApplies() {
		return c.randomByCubeRoot(r)
	}
	return c.randomBySquareRoot(r)
}

// RandomSubgroupPoint returns a random point of order dividing q by clearing
// the cofactor of a random point, retrying when the result is infinity.
func (c *Curve) RandomSubgroupPoint(r io.Reader) (AffinePoint, error) {
	for attempt := 0; attempt < AttemptLimit; attempt++ {
		p, err := c.RandomPoint(r)
		if err != nil {
			return AffinePoint{}, err
		}
		p = c.ClearCofactor(p)
		if !p.Infinity {
			return p, nil
		}
	}
	return AffinePoint{}, fmt.Errorf("curve: subgroup point: %w", cryptid.ErrAttemptLimit)
}

func (c *Curve) cubeRootApplies() bool {
	if c.a.Sign() != 0 {
		return false
	}
	p := c.f.Modulus()
	return new(big.Int).Mod(p, bigThree).Int64() == 2
}

func (c *Curve) randomByCubeRoot(r io.Reader) (AffinePoint, error) {
	f := c.f
	// (2p − 1)/3
	exp := f.Modulus()
	exp.Lsh(exp, 1).Sub(exp, bigOne).Div(exp, bigThree)

	y, err := f.Random(r)
	if err != nil {
		return AffinePoint{}, err
	}
	x, err := f.Exp(f.Sub(f.Square(y), c.b), exp)
	if err != nil {
		return AffinePoint{}, err
	}
	return AffinePoint{X: x, Y: y}, nil
}

func (c *Curve) randomBySquareRoot(r io.Reader) (AffinePoint, error) {
	f := c.f
	p := f.Modulus()
	for attempt := 0; attempt < AttemptLimit; attempt++ {
		x, err := f.Random(r)
		if err != nil {
			return AffinePoint{}, err
		}
		y := new(big.Int).ModSqrt(c.rhs(x), p)
		if y == nil {
			continue
		}
		return AffinePoint{X: x, Y: y}, nil
	}
	return AffinePoint{}, fmt.Errorf("curve: random point: %w", cryptid.ErrAttemptLimit)
}
