// Package idkey holds the key material shared by the identity-based schemes:
// a master secret s, public points P and P_pub = [s]P, and the extraction
// S_id = [s]H1(id) used by both Boneh-Franklin and Hess.
package idkey

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/Iscaraca/cryptid"
	"github.com/Iscaraca/cryptid/field"
	"github.com/Iscaraca/cryptid/internal/zeroize"
	"github.com/Iscaraca/cryptid/pairing"
)

// PublicParams are the public values of an identity-based scheme instance.
// P and PPub lie in G2; identities hash into G1.
type PublicParams struct {
	Group pairing.Group
	Hash  cryptid.HashFunction
	P     pairing.Point
	PPub  pairing.Point

	scalars *field.Field
	rand    io.Reader
}

// MasterKey is the secret s of an instance.
type MasterKey struct {
	secret *big.Int
	params *PublicParams
}

// Setup draws s ∈ [1, q) and computes P_pub = [s]P with P the G2 generator.
// A nil r selects crypto/rand; r is kept for the per-operation randomness of
// the schemes.
func Setup(g pairing.Group, hf cryptid.HashFunction, r io.Reader) (*MasterKey, *PublicParams, error) {
	if g == nil {
		return nil, nil, fmt.Errorf("%w: nil group", cryptid.ErrInvalidPublicParameters)
	}
	if !hf.IsValid().OK() {
		return nil, nil, cryptid.ErrUnknownDigest
	}
	if r == nil {
		r = rand.Reader
	}
	scalars, err := field.New(g.Order())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", cryptid.ErrInvalidPublicParameters, err)
	}

	s, err := scalars.RandomNonZero(r)
	if err != nil {
		return nil, nil, err
	}

	p := g.Generator2()
	pp := &PublicParams{
		Group:   g,
		Hash:    hf,
		P:       p,
		PPub:    p.ScalarMul(s),
		scalars: scalars,
		rand:    r,
	}
	return &MasterKey{secret: s, params: pp}, pp, nil
}

// Params returns the public parameters the key was created with.
func (mk *MasterKey) Params() *PublicParams { return mk.params }

// Extract returns S_id = [s]Q_id.
func (mk *MasterKey) Extract(identity string) (pairing.Point, error) {
	if mk == nil || mk.secret == nil {
		return nil, cryptid.ErrInvalidKey
	}
	qid, err := mk.params.HashIdentity(identity)
	if err != nil {
		return nil, err
	}
	return qid.ScalarMul(mk.secret), nil
}

// Destroy clears s. It is safe to call more than once.
func (mk *MasterKey) Destroy() {
	if mk == nil {
		return
	}
	zeroize.BigInt(mk.secret)
	mk.secret = nil
}

// Destroyed reports whether Destroy has run.
func (mk *MasterKey) Destroyed() bool { return mk == nil || mk.secret == nil }

// HashIdentity returns Q_id = H1(identity) ∈ G1.
func (pp *PublicParams) HashIdentity(identity string) (pairing.Point, error) {
	if identity == "" {
		return nil, cryptid.ErrEmptyIdentity
	}
	qid, err := pp.Group.HashToG1([]byte(identity))
	if err != nil {
		return nil, fmt.Errorf("hash identity: %w", err)
	}
	return qid, nil
}

// Validate checks that the parameters are complete and that P and P_pub are
// non-identity group elements.
func (pp *PublicParams) Validate() error {
	if pp == nil || pp.Group == nil || pp.P == nil || pp.PPub == nil {
		return fmt.Errorf("%w: incomplete", cryptid.ErrInvalidPublicParameters)
	}
	if !pp.Hash.IsValid().OK() {
		return cryptid.ErrUnknownDigest
	}
	for _, pt := range []pairing.Point{pp.P, pp.PPub} {
		if err := pp.Group.Validate(pt); err != nil {
			return fmt.Errorf("%w: %v", cryptid.ErrInvalidPublicParameters, err)
		}
		if pt.IsIdentity() {
			return fmt.Errorf("%w: identity point", cryptid.ErrInvalidPublicParameters)
		}
	}
	return nil
}

// RandomScalar draws a value in [1, q).
func (pp *PublicParams) RandomScalar() (*big.Int, error) {
	return pp.scalars.RandomNonZero(pp.rand)
}

// RandomBytes reads n octets from the instance's randomness source.
func (pp *PublicParams) RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(pp.rand, buf); err != nil {
		return nil, fmt.Errorf("random: %w", err)
	}
	return buf, nil
}
