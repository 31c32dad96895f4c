// Package ibe implements Boneh-Franklin identity-based encryption as
// specified by RFC 5091 (BFsetup1, BFextractPriv, BFencrypt, BFdecrypt).
//
// Setup generates a master secret s and publishes P and P_pub = [s]P.
// Extract maps an identity to its secret key [s]H1(id). Anyone holding the
// public key can encrypt to an identity; only the matching secret key
// decrypts. Decryption verifies the Fujisaki-Okamoto check U = [l]P, so a
// wrong key or tampered ciphertext is reported as cryptid.ErrDecryptionFailed.
//
// Setup with a SecurityLevel uses the type-1 Tate pairing of RFC 5091; any
// pairing.Group can be supplied through SetupWithGroup.
package ibe

import (
	"crypto/subtle"
	"fmt"
	"io"

	"github.com/Iscaraca/cryptid"
	"github.com/Iscaraca/cryptid/hashing"
	"github.com/Iscaraca/cryptid/internal/idkey"
	"github.com/Iscaraca/cryptid/internal/zeroize"
	"github.com/Iscaraca/cryptid/pairing"
)

// MasterKey extracts secret keys for identities.
type MasterKey struct {
	key *idkey.MasterKey
	pk  *PublicKey
}

// PublicKey encrypts messages to identities.
type PublicKey struct {
	params *idkey.PublicParams
}

// SecretKey decrypts messages sent to one identity.
type SecretKey struct {
	identity string
	sid      pairing.Point
	pk       *PublicKey
}

// Ciphertext is (U, V, W) of RFC 5091 §5.4.
type Ciphertext struct {
	U pairing.Point
	V []byte
	W []byte
}

// Setup generates type-1 parameters for level and a fresh master key.
func Setup(level cryptid.SecurityLevel) (*MasterKey, *PublicKey, error) {
	g, err := pairing.GenerateType1(nil, level)
	if err != nil {
		return nil, nil, fmt.Errorf("ibe: setup: %w", err)
	}
	return SetupWithGroup(g, g.HashFunction(), nil)
}

// SetupWithGroup creates a master key over g. hf is the scheme digest; r is
// the randomness source, crypto/rand when nil.
func SetupWithGroup(g pairing.Group, hf cryptid.HashFunction, r io.Reader) (*MasterKey, *PublicKey, error) {
	key, params, err := idkey.Setup(g, hf, r)
	if err != nil {
		return nil, nil, fmt.Errorf("ibe: setup: %w", err)
	}
	pk := &PublicKey{params: params}
	return &MasterKey{key: key, pk: pk}, pk, nil
}

// PublicKey returns the public key paired with mk.
func (mk *MasterKey) PublicKey() *PublicKey { return mk.pk }

// Extract returns the secret key of identity, BFextractPriv.
func (mk *MasterKey) Extract(identity string) (*SecretKey, error) {
	if mk == nil || mk.key.Destroyed() {
		return nil, fmt.Errorf("ibe: extract: %w", cryptid.ErrInvalidKey)
	}
	sid, err := mk.key.Extract(identity)
	if err != nil {
		return nil, fmt.Errorf("ibe: extract: %w", err)
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

// Group returns the pairing group of the instance.
func (pk *PublicKey) Group() pairing.Group { return pk.params.Group }

// HashFunction returns the scheme digest.
func (pk *PublicKey) HashFunction() cryptid.HashFunction { return pk.params.Hash }

// P returns the public generator.
func (pk *PublicKey) P() pairing.Point { return pk.params.P }

// PPub returns [s]P.
func (pk *PublicKey) PPub() pairing.Point { return pk.params.PPub }

// Validate checks the public parameters.
func (pk *PublicKey) Validate() error {
	if pk == nil {
		return cryptid.ErrInvalidPublicParameters
	}
	return pk.params.Validate()
}

// Encrypt encrypts message to identity, BFencrypt.
//
// Procedure:
//  1. Q_id = HashToPoint(id)
//  2. rho = random hashlen octets, t = hf(m)
//  3. l = HashToRange(rho || t, q)
//  4. U = [l]P
//  5. theta = e(Q_id, P_pub)^l, z = Canonical(theta)
//  6. V = hf(z) XOR rho
//  7. W = HashBytes(|m|, rho) XOR m
func (pk *PublicKey) Encrypt(identity string, message []byte) (*Ciphertext, error) {
	if len(message) == 0 {
		return nil, fmt.Errorf("ibe: encrypt: %w", cryptid.ErrEmptyMessage)
	}
	pp := pk.params
	hf := pp.Hash
	hashLen := hf.Size()

	// 1.
	qid, err := pp.HashIdentity(identity)
	if err != nil {
		return nil, fmt.Errorf("ibe: encrypt: %w", err)
	}

	// 2.
	rho, err := pp.RandomBytes(hashLen)
	if err != nil {
		return nil, fmt.Errorf("ibe: encrypt: %w", err)
	}
	defer zeroize.Bytes(rho)
	t := hf.Sum(message)

	// 3.
	l, err := hashing.HashToRange(concat(rho, t), pp.Group.Order(), hf)
	if err != nil {
		return nil, fmt.Errorf("ibe: encrypt: %w", err)
	}
	defer zeroize.BigInt(l)

	// 4.
	u := pp.P.ScalarMul(l)

	// 5.
	e, err := pp.Group.Pair(qid, pp.PPub)
	if err != nil {
		return nil, fmt.Errorf("ibe: encrypt: %w", err)
	}
	theta := e.Exp(l)

	// 6.
	v := xor(hf.Sum(theta.Bytes()), rho)

	// 7.
	mask, err := hashing.HashBytes(len(message), rho, hf)
	if err != nil {
		return nil, fmt.Errorf("ibe: encrypt: %w", err)
	}
	w := xor(mask, message)

	return &Ciphertext{U: u, V: v, W: w}, nil
}

// Identity returns the identity the key was extracted for.
func (sk *SecretKey) Identity() string { return sk.identity }

// Point returns S_id.
func (sk *SecretKey) Point() pairing.Point { return sk.sid }

// Decrypt recovers the message of ct, BFdecrypt.
//
// Procedure:
//  1. theta = e(S_id, U), w = hf(Canonical(theta))
//  2. rho = w XOR V
//  3. m = HashBytes(|W|, rho) XOR W
//  4. l = HashToRange(rho || hf(m), q)
//  5. if U != [l]P, fail
func (sk *SecretKey) Decrypt(ct *Ciphertext) ([]byte, error) {
	if sk == nil || sk.sid == nil {
		return nil, fmt.Errorf("ibe: decrypt: %w", cryptid.ErrInvalidKey)
	}
	pp := sk.pk.params
	hf := pp.Hash
	if err := ct.validate(pp); err != nil {
		return nil, fmt.Errorf("ibe: decrypt: %w", err)
	}

	// 1.
	theta, err := pp.Group.Pair(sk.sid, ct.U)
	if err != nil {
		return nil, cryptid.ErrDecryptionFailed
	}
	w := hf.Sum(theta.Bytes())

	// 2.
	rho := xor(w, ct.V)
	defer zeroize.Bytes(rho)

	// 3.
	mask, err := hashing.HashBytes(len(ct.W), rho, hf)
	if err != nil {
		return nil, fmt.Errorf("ibe: decrypt: %w", err)
	}
	m := xor(mask, ct.W)

	// 4.
	l, err := hashing.HashToRange(concat(rho, hf.Sum(m)), pp.Group.Order(), hf)
	if err != nil {
		zeroize.Bytes(m)
		return nil, fmt.Errorf("ibe: decrypt: %w", err)
	}
	defer zeroize.BigInt(l)

	// 5.
	if subtle.ConstantTimeCompare(pp.P.ScalarMul(l).Bytes(), ct.U.Bytes()) != 1 {
		zeroize.Bytes(m)
		return nil, cryptid.ErrDecryptionFailed
	}
	return m, nil
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

func (ct *Ciphertext) validate(pp *idkey.PublicParams) error {
	if ct == nil || ct.U == nil {
		return cryptid.ErrMalformedCiphertext
	}
	if len(ct.V) != pp.Hash.Size() || len(ct.W) == 0 {
		return fmt.Errorf("%w: component length", cryptid.ErrMalformedCiphertext)
	}
	if err := pp.Group.Validate(ct.U); err != nil {
		return fmt.Errorf("%w: %v", cryptid.ErrMalformedCiphertext, err)
	}
	if ct.U.IsIdentity() {
		return fmt.Errorf("%w: U is the identity", cryptid.ErrMalformedCiphertext)
	}
	return nil
}

// Destroy clears the ciphertext components.
func (ct *Ciphertext) Destroy() {
	if ct == nil {
		return
	}
	pairing.Zeroize(ct.U)
	zeroize.Bytes(ct.V)
	zeroize.Bytes(ct.W)
	ct.U, ct.V, ct.W = nil, nil, nil
}

func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func xor(a, b []byte) []byte {
	out := make([]byte, len(b))
	subtle.XORBytes(out, a, b)
	return out
}
