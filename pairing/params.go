package pairing

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/Iscaraca/cryptid"
	"github.com/Iscaraca/cryptid/curve"
	"github.com/Iscaraca/cryptid/field"
)

const (
	// solinasAttemptLimit bounds the random windows scanned for a Solinas q.
	solinasAttemptLimit = 100
	// primeRounds is the Miller-Rabin round count passed to ProbablyPrime.
	primeRounds = 20
)

var (
	bigOne    = big.NewInt(1)
	bigTwelve = big.NewInt(12)
	bigEleven = big.NewInt(11)
)

// Type1Params are the public parameters of a type-1 pairing group, RFC 5091
// §5.1.2 (BFsetup1 steps 1 to 5):
//
//   - Q, a Solinas prime of OrderBits bits
//   - P = 12·R·Q − 1, a prime of about FieldBits bits, so P ≡ 11 mod 12
//   - Generator, a point of order Q on y² = x³ + 1 over F_P
type Type1Params struct {
	Level     cryptid.SecurityLevel
	P         *big.Int
	Q         *big.Int
	R         *big.Int
	Generator curve.AffinePoint
}

// GenerateType1Params draws fresh parameters for level from r, or from
// crypto/rand when r is nil.
func GenerateType1Params(r io.Reader, level cryptid.SecurityLevel) (*Type1Params, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("pairing: %w: %d", cryptid.ErrInvalidSecurityLevel, int(level))
	}
	if r == nil {
		r = rand.Reader
	}

	// 1. q = 2^a ± 2^b ± 1
	q, err := solinasPrime(r, level.OrderBits())
	if err != nil {
		return nil, err
	}

	// 2-3. p = 12rq − 1 prime
	rBits := level.FieldBits() - level.OrderBits() - 3
	p, cofactor, err := fieldPrime(r, q, rBits, 16*level.FieldBits())
	if err != nil {
		return nil, err
	}

	// 4-5. P = [12r]P' for a random P' on E(F_p), retried while infinity
	f, err := field.New(p)
	if err != nil {
		return nil, err
	}
	c, err := curve.NewType1(f, q, new(big.Int).Mul(bigTwelve, cofactor))
	if err != nil {
		return nil, err
	}
	g, err := c.RandomSubgroupPoint(r)
	if err != nil {
		return nil, err
	}

	return &Type1Params{
		Level:     level,
		P:         p,
		Q:         q,
		R:         cofactor,
		Generator: g,
	}, nil
}

// solinasPrime searches 2^n − 2^i − 1 over random windows of i, descending,
// and falls back to the other Solinas shapes when that form has no prime.
func solinasPrime(r io.Reader, n int) (*big.Int, error) {
	twoN := new(big.Int).Lsh(bigOne, uint(n))
	twoN1 := new(big.Int).Lsh(bigOne, uint(n-1))

	forms := []func(i int) *big.Int{
		func(i int) *big.Int { // 2^n − 2^i − 1
			v := new(big.Int).Sub(twoN, new(big.Int).Lsh(bigOne, uint(i)))
			return v.Sub(v, bigOne)
		},
		func(i int) *big.Int { // 2^n − 2^i + 1
			v := new(big.Int).Sub(twoN, new(big.Int).Lsh(bigOne, uint(i)))
			return v.Add(v, bigOne)
		},
		func(i int) *big.Int { // 2^(n−1) + 2^i − 1
			v := new(big.Int).Add(twoN1, new(big.Int).Lsh(bigOne, uint(i)))
			return v.Sub(v, bigOne)
		},
		func(i int) *big.Int { // 2^(n−1) + 2^i + 1
			v := new(big.Int).Add(twoN1, new(big.Int).Lsh(bigOne, uint(i)))
			return v.Add(v, bigOne)
		},
	}

	for _, form := range forms {
		if q, ok, err := scanSolinas(r, n, form); err != nil {
			return nil, err
		} else if ok {
			return q, nil
		}
	}
	return nil, fmt.Errorf("pairing: solinas prime of %d bits: %w", n, cryptid.ErrAttemptLimit)
}

// scanSolinas walks i from a random top down to the previous window, as in
// the window search of BFsetup1, for at most solinasAttemptLimit windows.
func scanSolinas(r io.Reader, n int, form func(int) *big.Int) (*big.Int, bool, error) {
	// i ranges over [1, n−2] so every form keeps exactly n bits.
	last := 0
	for attempt := 0; attempt < solinasAttemptLimit && last < n-2; attempt++ {
		span := big.NewInt(int64(n - 2 - last))
		step, err := rand.Int(r, span)
		if err != nil {
			return nil, false, fmt.Errorf("pairing: random: %w", err)
		}
		top := last + 1 + int(step.Int64())
		for i := top; i > last; i-- {
			if q := form(i); q.BitLen() == n && q.ProbablyPrime(primeRounds) {
				return q, true, nil
			}
		}
		last = top
	}
	return nil, false, nil
}

// fieldPrime draws r of rBits bits, top bit set, until 12rq − 1 is prime.
func fieldPrime(rnd io.Reader, q *big.Int, rBits, limit int) (p, r *big.Int, err error) {
	if rBits < 2 {
		return nil, nil, fmt.Errorf("pairing: cofactor of %d bits is too small", rBits)
	}
	bound := new(big.Int).Lsh(bigOne, uint(rBits-1))
	twelveQ := new(big.Int).Mul(bigTwelve, q)

	for attempt := 0; attempt < limit; attempt++ {
		r, err = rand.Int(rnd, bound)
		if err != nil {
			return nil, nil, fmt.Errorf("pairing: random: %w", err)
		}
		r.SetBit(r, rBits-1, 1)

		p = new(big.Int).Mul(twelveQ, r)
		p.Sub(p, bigOne)
		if p.ProbablyPrime(primeRounds) {
			return p, r, nil
		}
	}
	return nil, nil, fmt.Errorf("pairing: field prime: %w", cryptid.ErrAttemptLimit)
}

// Curve returns y² = x³ + 1 over F_P with order Q and cofactor 12R.
func (tp *Type1Params) Curve() (*curve.Curve, error) {
	f, err := field.New(tp.P)
	if err != nil {
		return nil, err
	}
	var cofactor *big.Int
	if tp.R != nil {
		cofactor = new(big.Int).Mul(bigTwelve, tp.R)
	}
	return curve.NewType1(f, tp.Q, cofactor)
}

// Validate checks the structural properties of the parameters: primality of
// P and Q, P ≡ 11 mod 12, Q | P + 1 and a generator of order Q.
func (tp *Type1Params) Validate() error {
	if tp == nil || tp.P == nil || tp.Q == nil {
		return fmt.Errorf("%w: missing modulus or order", cryptid.ErrInvalidPublicParameters)
	}
	if !tp.Q.ProbablyPrime(primeRounds) {
		return fmt.Errorf("%w: q is not prime", cryptid.ErrInvalidPublicParameters)
	}
	if !tp.P.ProbablyPrime(primeRounds) {
		return fmt.Errorf("%w: p is not prime", cryptid.ErrInvalidPublicParameters)
	}
	if new(big.Int).Mod(tp.P, bigTwelve).Cmp(bigEleven) != 0 {
		return fmt.Errorf("%w: p is not 11 mod 12", cryptid.ErrInvalidPublicParameters)
	}
	pPlusOne := new(big.Int).Add(tp.P, bigOne)
	if new(big.Int).Mod(pPlusOne, tp.Q).Sign() != 0 {
		return fmt.Errorf("%w: q does not divide p + 1", cryptid.ErrInvalidPublicParameters)
	}
	if tp.R != nil {
		expect := new(big.Int).Mul(bigTwelve, tp.R)
		expect.Mul(expect, tp.Q)
		if expect.Cmp(pPlusOne) != 0 {
			return fmt.Errorf("%w: p + 1 != 12rq", cryptid.ErrInvalidPublicParameters)
		}
	}

	c, err := tp.Curve()
	if err != nil {
		return fmt.Errorf("%w: %v", cryptid.ErrInvalidPublicParameters, err)
	}
	if tp.Generator.Infinity || !c.IsOnCurve(tp.Generator).OK() {
		return fmt.Errorf("%w: generator is not a finite curve point", cryptid.ErrInvalidPublicParameters)
	}
	if !c.InSubgroup(tp.Generator) {
		return fmt.Errorf("%w: generator does not have order q", cryptid.ErrInvalidPublicParameters)
	}
	return nil
}
