// Package flibe implements formal-language identity-based encryption, a
// composition of Boneh-Franklin encryption and Hess signatures.
//
// An authority alpha publishes an authorization formula: an access tree
// whose leaves are regular expressions over identity strings. Alpha signs
// the formula with its Hess key, producing a Grant. The key generation
// center extracts a decryption key for a second identity beta only when the
// grant's signature verifies under alpha and beta satisfies the formula.
// Messages are encrypted to the pair (alpha, formula), so a key extracted
// under one grant does not open ciphertexts bound to another.
package flibe

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/Iscaraca/cryptid"
	"github.com/Iscaraca/cryptid/cpabe"
	"github.com/Iscaraca/cryptid/ibe"
	"github.com/Iscaraca/cryptid/ibs"
	"github.com/Iscaraca/cryptid/pairing"
)

// ErrNotAuthorized is returned by Extract when the grant signature does not
// verify or the requesting identity does not satisfy the formula.
var ErrNotAuthorized = errors.New("flibe: identity not authorized")

// MasterKey holds the encryption and signature master secrets.
type MasterKey struct {
	enc *ibe.MasterKey
	sig *ibs.MasterKey
	pk  *PublicKey
}

// PublicKey encrypts to grants and verifies grant signatures.
type PublicKey struct {
	enc *ibe.PublicKey
	sig *ibs.PublicKey
}

// Grant is a formula signed by the authority Alpha.
type Grant struct {
	Alpha     string
	Formula   *cpabe.Node
	Signature *ibs.Signature
}

// Setup generates type-1 parameters for level and both master keys.
func Setup(level cryptid.SecurityLevel) (*MasterKey, *PublicKey, error) {
	g, err := pairing.GenerateType1(nil, level)
	if err != nil {
		return nil, nil, fmt.Errorf("flibe: setup: %w", err)
	}
	return SetupWithGroup(g, g.HashFunction(), nil)
}

// SetupWithGroup creates independent encryption and signature master keys
// over g.
func SetupWithGroup(g pairing.Group, hf cryptid.HashFunction, r io.Reader) (*MasterKey, *PublicKey, error) {
	encMK, encPK, err := ibe.SetupWithGroup(g, hf, r)
	if err != nil {
		return nil, nil, fmt.Errorf("flibe: setup: %w", err)
	}
	sigMK, sigPK, err := ibs.SetupWithGroup(g, hf, r)
	if err != nil {
		encMK.Destroy()
		return nil, nil, fmt.Errorf("flibe: setup: %w", err)
	}
	pk := &PublicKey{enc: encPK, sig: sigPK}
	return &MasterKey{enc: encMK, sig: sigMK, pk: pk}, pk, nil
}

// PublicKey returns the public key paired with mk.
func (mk *MasterKey) PublicKey() *PublicKey { return mk.pk }

// SigningKey returns the Hess key an authority signs its formulas with.
func (mk *MasterKey) SigningKey(alpha string) (*ibs.SecretKey, error) {
	if mk == nil {
		return nil, fmt.Errorf("flibe: signing key: %w", cryptid.ErrInvalidKey)
	}
	sk, err := mk.sig.Extract(alpha)
	if err != nil {
		return nil, fmt.Errorf("flibe: signing key: %w", err)
	}
	return sk, nil
}

// Extract returns the decryption key of grant for beta.
//
// Procedure:
//  1. verify grant.Signature over the formula text under grant.Alpha
//  2. evaluate the formula against beta
//  3. BF-extract the key of EncryptionIdentity(alpha, formula)
func (mk *MasterKey) Extract(grant *Grant, beta string) (*ibe.SecretKey, error) {
	if mk == nil {
		return nil, fmt.Errorf("flibe: extract: %w", cryptid.ErrInvalidKey)
	}
	if beta == "" {
		return nil, fmt.Errorf("flibe: extract: %w", cryptid.ErrEmptyIdentity)
	}
	if err := grant.validate(); err != nil {
		return nil, fmt.Errorf("flibe: extract: %w", err)
	}

	ok, err := mk.pk.sig.Verify(grant.Alpha, []byte(grant.Formula.String()), grant.Signature)
	if err != nil {
		return nil, fmt.Errorf("flibe: extract: %w", err)
	}
	if !ok.OK() {
		return nil, fmt.Errorf("%w: signature of %q does not verify", ErrNotAuthorized, grant.Alpha)
	}

	ok, err = Evaluate(grant.Formula, beta)
	if err != nil {
		return nil, fmt.Errorf("flibe: extract: %w", err)
	}
	if !ok.OK() {
		return nil, fmt.Errorf("%w: %q does not satisfy the formula", ErrNotAuthorized, beta)
	}

	sk, err := mk.enc.Extract(EncryptionIdentity(grant.Alpha, grant.Formula))
	if err != nil {
		return nil, fmt.Errorf("flibe: extract: %w", err)
	}
	return sk, nil
}

// Destroy clears both master secrets.
func (mk *MasterKey) Destroy() {
	if mk == nil {
		return
	}
	mk.enc.Destroy()
	mk.sig.Destroy()
}

// Validate checks both sets of public parameters.
func (pk *PublicKey) Validate() error {
	if pk == nil {
		return cryptid.ErrInvalidPublicParameters
	}
	if err := pk.enc.Validate(); err != nil {
		return err
	}
	return pk.sig.Validate()
}

// Encrypt encrypts message to holders of a key extracted under the grant
// (alpha, formula).
func (pk *PublicKey) Encrypt(alpha string, formula *cpabe.Node, message []byte) (*ibe.Ciphertext, error) {
	if alpha == "" {
		return nil, fmt.Errorf("flibe: encrypt: %w", cryptid.ErrEmptyIdentity)
	}
	if err := formula.Validate(); err != nil {
		return nil, fmt.Errorf("flibe: encrypt: %w", err)
	}
	ct, err := pk.enc.Encrypt(EncryptionIdentity(alpha, formula), message)
	if err != nil {
		return nil, fmt.Errorf("flibe: encrypt: %w", err)
	}
	return ct, nil
}

// Decrypt opens ct with a key returned by Extract.
func Decrypt(sk *ibe.SecretKey, ct *ibe.Ciphertext) ([]byte, error) {
	return sk.Decrypt(ct)
}

// SignFormula signs formula with the authority key sk.
func SignFormula(sk *ibs.SecretKey, formula *cpabe.Node) (*Grant, error) {
	if err := formula.Validate(); err != nil {
		return nil, fmt.Errorf("flibe: sign formula: %w", err)
	}
	if _, err := compile(formula); err != nil {
		return nil, fmt.Errorf("flibe: sign formula: %w", err)
	}
	sig, err := sk.Sign([]byte(formula.String()))
	if err != nil {
		return nil, fmt.Errorf("flibe: sign formula: %w", err)
	}
	return &Grant{Alpha: sk.Identity(), Formula: formula.Clone(), Signature: sig}, nil
}

// Destroy clears the signature.
func (g *Grant) Destroy() {
	if g == nil {
		return
	}
	g.Signature.Destroy()
	g.Signature = nil
}

func (g *Grant) validate() error {
	if g == nil || g.Signature == nil {
		return cryptid.ErrMalformedSignature
	}
	if g.Alpha == "" {
		return cryptid.ErrEmptyIdentity
	}
	return g.Formula.Validate()
}

// EncryptionIdentity is the Boneh-Franklin identity of the grant (alpha,
// formula). The length prefix keeps distinct pairs from colliding.
func EncryptionIdentity(alpha string, formula *cpabe.Node) string {
	return strconv.Itoa(len(alpha)) + ":" + alpha + ":" + formula.String()
}

// Evaluate reports whether beta satisfies formula. Each leaf is a regular
// expression; it is satisfied when it matches somewhere in beta.
func Evaluate(formula *cpabe.Node, beta string) (cryptid.ValidationResult, error) {
	if err := formula.Validate(); err != nil {
		return cryptid.ValidationFailure, err
	}
	res, err := compile(formula)
	if err != nil {
		return cryptid.ValidationFailure, err
	}
	return cryptid.ValidationFrom(evaluate(formula, res, beta)), nil
}

func compile(formula *cpabe.Node) (map[string]*regexp.Regexp, error) {
	res := make(map[string]*regexp.Regexp)
	for _, a := range formula.Attributes() {
		re, err := regexp.Compile(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", cpabe.ErrInvalidPolicy, err)
		}
		res[a] = re
	}
	return res, nil
}

func evaluate(n *cpabe.Node, res map[string]*regexp.Regexp, beta string) bool {
	if n.IsLeaf() {
		return res[n.Attribute].MatchString(beta)
	}
	count := 0
	for _, c := range n.Children {
		if evaluate(c, res, beta) {
			count++
			if count >= n.Threshold {
				return true
			}
		}
	}
	return false
}
