// Package ibs implements the Hess identity-based signature scheme.
//
// A signer holding S_id = [s]H1(id) signs with a fresh random k:
//
//	r = e(Q_id, P)^k
//	v = HashToRange(hf(Canonical(r)) || hf(m), q)
//	u = [v]S_id + [k]Q_id
//
// Verification recomputes r' = e(u, P) · e(Q_id, −P_pub)^v and accepts when
// HashToRange over r' gives back v.
package ibs

import (
	"fmt"
	"io"
	"math/big"

	"github.com/Iscaraca/cryptid"
	"github.com/Iscaraca/cryptid/hashing"
	"github.com/Iscaraca/cryptid/internal/idkey"
	"github.com/Iscaraca/cryptid/internal/zeroize"
	"github.com/Iscaraca/cryptid/pairing"
)

// MasterKey extracts signing keys.
type MasterKey struct {
	key *idkey.MasterKey
	pk  *PublicKey
}

// PublicKey verifies signatures of any identity.
type PublicKey struct {
	params *idkey.PublicParams
}

// SecretKey signs on behalf of one identity.
type SecretKey struct {
	identity string
	sid      pairing.Point
	pk       *PublicKey
}

// Signature is the pair (u, v).
type Signature struct {
	U pairing.Point
	V *big.Int
}

// Setup generates type-1 parameters for level and a fresh master key.
func Setup(level cryptid.SecurityLevel) (*MasterKey, *PublicKey, error) {
	g, err := pairing.GenerateType1(nil, level)
	if err != nil {
		return nil, nil, fmt.Errorf("ibs: setup: %w", err)
	}
	return SetupWithGroup(g, g.HashFunction(), nil)
}

// SetupWithGroup creates a master key over g with digest hf and randomness r.
func SetupWithGroup(g pairing.Group, hf cryptid.HashFunction, r io.Reader) (*MasterKey, *PublicKey, error) {
	key, params, err := idkey.Setup(g, hf, r)
	if err != nil {
		return nil, nil, fmt.Errorf("ibs: setup: %w", err)
	}
	pk := &PublicKey{params: params}
	return &MasterKey{key: key, pk: pk}, pk, nil
}

func (mk *MasterKey) PublicKey() *PublicKey { return mk.pk }

// Extract returns the signing key of identity.
func (mk *MasterKey) Extract(identity string) (*SecretKey, error) {
	if mk == nil || mk.key.Destroyed() {
		return nil, fmt.Errorf("ibs: extract: %w", cryptid.ErrInvalidKey)
	}
	sid, err := mk.key.Extract(identity)
	if err != nil {
		return nil, fmt.Errorf("ibs: extract: %w", err)
	}
	return &SecretKey{identity: identity, sid: sid, pk: mk.pk}, nil
}

// Destroy clears the master secret.
func (mk *MasterKey) Destroy() {
	if mk == nil {
		return
	}
	mk.key.Destroy()
}

func (sk *SecretKey) Identity() string { return sk.identity }

// Sign produces a fresh, randomized signature over message.
func (sk *SecretKey) Sign(message []byte) (*Signature, error) {
	if sk == nil || sk.sid == nil {
		return nil, fmt.Errorf("ibs: sign: %w", cryptid.ErrInvalidKey)
	}
	if len(message) == 0 {
		return nil, fmt.Errorf("ibs: sign: %w", cryptid.ErrEmptyMessage)
	}
	pp := sk.pk.params

	qid, err := pp.HashIdentity(sk.identity)
	if err != nil {
		return nil, fmt.Errorf("ibs: sign: %w", err)
	}

	k, err := pp.RandomScalar()
	if err != nil {
		return nil, fmt.Errorf("ibs: sign: %w", err)
	}
	defer zeroize.BigInt(k)

	// r = e(Q_id, P)^k
	e, err := pp.Group.Pair(qid, pp.P)
	if err != nil {
		return nil, fmt.Errorf("ibs: sign: %w", err)
	}
	r := e.Exp(k)

	v, err := challenge(pp, r, message)
	if err != nil {
		return nil, fmt.Errorf("ibs: sign: %w", err)
	}
	u := sk.sid.ScalarMul(v).Add(qid.ScalarMul(k))
	return &Signature{U: u, V: v}, nil
}

// Destroy clears S_id.
func (sk *SecretKey) Destroy() {
	if sk == nil {
		return
	}
	pairing.Zeroize(sk.sid)
	sk.sid = nil
	sk.identity = ""
}

// Validate checks the public parameters.
func (pk *PublicKey) Validate() error {
	if pk == nil {
		return cryptid.ErrInvalidPublicParameters
	}
	return pk.params.Validate()
}

func (pk *PublicKey) Group() pairing.Group { return pk.params.Group }

// Verify checks sig over message for identity. An invalid signature yields
// ValidationFailure with a nil error; malformed inputs return an error.
func (pk *PublicKey) Verify(identity string, message []byte, sig *Signature) (cryptid.ValidationResult, error) {
	pp := pk.params
	if len(message) == 0 {
		return cryptid.ValidationFailure, fmt.Errorf("ibs: verify: %w", cryptid.ErrEmptyMessage)
	}
	if err := sig.validate(pp); err != nil {
		return cryptid.ValidationFailure, fmt.Errorf("ibs: verify: %w", err)
	}
	qid, err := pp.HashIdentity(identity)
	if err != nil {
		return cryptid.ValidationFailure, fmt.Errorf("ibs: verify: %w", err)
	}

	// r' = e(u, P) · e(Q_id, −P_pub)^v
	left, err := pp.Group.Pair(sig.U, pp.P)
	if err != nil {
		return cryptid.ValidationFailure, fmt.Errorf("ibs: verify: %w", err)
	}
	right, err := pp.Group.Pair(qid, pp.PPub.Neg())
	if err != nil {
		return cryptid.ValidationFailure, fmt.Errorf("ibs: verify: %w", err)
	}
	r := left.Mul(right.Exp(sig.V))

	v, err := challenge(pp, r, message)
	if err != nil {
		return cryptid.ValidationFailure, fmt.Errorf("ibs: verify: %w", err)
	}
	return cryptid.ValidationFrom(v.Cmp(sig.V) == 0), nil
}

// challenge computes v = HashToRange(hf(Canonical(r)) || hf(m), q).
func challenge(pp *idkey.PublicParams, r pairing.Target, message []byte) (*big.Int, error) {
	hf := pp.Hash
	w := hf.Sum(r.Bytes())
	t := hf.Sum(message)
	buf := make([]byte, 0, len(w)+len(t))
	buf = append(append(buf, w...), t...)
	return hashing.HashToRange(buf, pp.Group.Order(), hf)
}

func (sig *Signature) validate(pp *idkey.PublicParams) error {
	if sig == nil || sig.U == nil || sig.V == nil {
		return cryptid.ErrMalformedSignature
	}
	if sig.V.Sign() < 0 || sig.V.Cmp(pp.Group.Order()) >= 0 {
		return fmt.Errorf("%w: v out of range", cryptid.ErrMalformedSignature)
	}
	if err := pp.Group.Validate(sig.U); err != nil {
		return fmt.Errorf("%w: %v", cryptid.ErrMalformedSignature, err)
	}
	return nil
}

// Destroy clears both components.
func (sig *Signature) Destroy() {
	if sig == nil {
		return
	}
	pairing.Zeroize(sig.U)
	zeroize.BigInt(sig.V)
	sig.U, sig.V = nil, nil
}
