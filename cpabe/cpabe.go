// Package cpabe implements the ciphertext-policy attribute-based encryption
// of Bethencourt, Sahai and Waters.
//
// A secret key is issued for a set of attributes. A ciphertext is bound to an
// access tree of threshold gates over attributes, and a key decrypts it only
// when its attributes satisfy the tree. Keys cannot be combined: components
// of two keys are tied together by a per-key random value, so pooling
// attributes across keys does not satisfy a policy neither key satisfies.
//
// The pairing result protects a symmetric key; the message itself is sealed
// with NaCl secretbox.
package cpabe

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/Iscaraca/cryptid"
	"github.com/Iscaraca/cryptid/field"
	"github.com/Iscaraca/cryptid/hashing"
	"github.com/Iscaraca/cryptid/internal/zeroize"
	"github.com/Iscaraca/cryptid/pairing"
)

const (
	keySize   = 32
	nonceSize = 24
)

// PublicKey encrypts messages under access trees. g1, h lie in G1 and g2, f
// in G2.
type PublicKey struct {
	group pairing.Group
	hf    cryptid.HashFunction

	g1       pairing.Point
	g2       pairing.Point
	h        pairing.Point // [β]g1
	f        pairing.Point // [1/β]g2
	eggAlpha pairing.Target

	scalars *field.Field
	rand    io.Reader
}

// MasterKey issues secret keys.
type MasterKey struct {
	beta   *big.Int
	gAlpha pairing.Point // [α]g2
	pk     *PublicKey
}

// Component is the part of a secret key bound to one attribute.
type Component struct {
	Attribute string
	Dj        pairing.Point // [r]g2 + [rj]H(j)
	DjA       pairing.Point // [rj]g1
}

// SecretKey decrypts ciphertexts whose tree its attributes satisfy.
type SecretKey struct {
	d          pairing.Point
	components []Component
	pk         *PublicKey
}

// LeafShare carries the share of one tree leaf.
type LeafShare struct {
	Attribute string
	Cy        pairing.Point // [q_y(0)]g1
	CyA       pairing.Point // [q_y(0)]H(att)
}

// Ciphertext is an access tree, the per-leaf shares in depth-first leaf
// order, C = [s]h and the sealed payload.
type Ciphertext struct {
	Policy *Node
	C      pairing.Point
	Leaves []LeafShare
	Nonce  [nonceSize]byte
	Sealed []byte
}

// Setup generates type-1 parameters for level and a fresh master key.
func Setup(level cryptid.SecurityLevel) (*MasterKey, *PublicKey, error) {
	g, err := pairing.GenerateType1(nil, level)
	if err != nil {
		return nil, nil, fmt.Errorf("cpabe: setup: %w", err)
	}
	return SetupWithGroup(g, g.HashFunction(), nil)
}

// SetupWithGroup creates a master key over g. hf derives payload keys; r is
// the randomness source, crypto/rand when nil.
func SetupWithGroup(g pairing.Group, hf cryptid.HashFunction, r io.Reader) (*MasterKey, *PublicKey, error) {
	if g == nil {
		return nil, nil, fmt.Errorf("cpabe: setup: %w: nil group", cryptid.ErrInvalidPublicParameters)
	}
	if !hf.IsValid().OK() {
		return nil, nil, fmt.Errorf("cpabe: setup: %w", cryptid.ErrUnknownDigest)
	}
	if r == nil {
		r = rand.Reader
	}
	scalars, err := field.New(g.Order())
	if err != nil {
		return nil, nil, fmt.Errorf("cpabe: setup: %w: %v", cryptid.ErrInvalidPublicParameters, err)
	}

	alpha, err := scalars.RandomNonZero(r)
	if err != nil {
		return nil, nil, fmt.Errorf("cpabe: setup: %w", err)
	}
	defer zeroize.BigInt(alpha)
	beta, err := scalars.RandomNonZero(r)
	if err != nil {
		return nil, nil, fmt.Errorf("cpabe: setup: %w", err)
	}
	betaInv, err := scalars.Inverse(beta)
	if err != nil {
		return nil, nil, fmt.Errorf("cpabe: setup: %w", err)
	}
	defer zeroize.BigInt(betaInv)

	g1, g2 := g.Generator1(), g.Generator2()
	egg, err := g.Pair(g1, g2)
	if err != nil {
		return nil, nil, fmt.Errorf("cpabe: setup: %w", err)
	}
	pk := &PublicKey{
		group:    g,
		hf:       hf,
		g1:       g1,
		g2:       g2,
		h:        g1.ScalarMul(beta),
		f:        g2.ScalarMul(betaInv),
		eggAlpha: egg.Exp(alpha),
		scalars:  scalars,
		rand:     r,
	}
	mk := &MasterKey{beta: beta, gAlpha: g2.ScalarMul(alpha), pk: pk}
	return mk, pk, nil
}

// PublicKey returns the public key paired with mk.
func (mk *MasterKey) PublicKey() *PublicKey { return mk.pk }

// KeyGen issues a secret key for attrs. Attributes must be non-empty and
// distinct.
func (mk *MasterKey) KeyGen(attrs []string) (*SecretKey, error) {
	if mk == nil || mk.beta == nil {
		return nil, fmt.Errorf("cpabe: keygen: %w", cryptid.ErrInvalidKey)
	}
	if err := checkAttributes(attrs); err != nil {
		return nil, fmt.Errorf("cpabe: keygen: %w", err)
	}
	pk := mk.pk

	r, err := pk.randomScalar()
	if err != nil {
		return nil, fmt.Errorf("cpabe: keygen: %w", err)
	}
	defer zeroize.BigInt(r)
	betaInv, err := pk.scalars.Inverse(mk.beta)
	if err != nil {
		return nil, fmt.Errorf("cpabe: keygen: %w", err)
	}
	defer zeroize.BigInt(betaInv)

	gr := pk.g2.ScalarMul(r)
	sk := &SecretKey{
		d:          mk.gAlpha.Add(gr).ScalarMul(betaInv),
		components: make([]Component, 0, len(attrs)),
		pk:         pk,
	}
	for _, a := range attrs {
		c, err := pk.component(a, gr, nil)
		if err != nil {
			sk.Destroy()
			return nil, fmt.Errorf("cpabe: keygen: %w", err)
		}
		sk.components = append(sk.components, c)
	}
	return sk, nil
}

// Destroy clears β and [α]g2.
func (mk *MasterKey) Destroy() {
	if mk == nil {
		return
	}
	zeroize.BigInt(mk.beta)
	pairing.Zeroize(mk.gAlpha)
	mk.beta, mk.gAlpha = nil, nil
}

// Group returns the pairing group of the instance.
func (pk *PublicKey) Group() pairing.Group { return pk.group }

// HashFunction returns the digest used for payload keys.
func (pk *PublicKey) HashFunction() cryptid.HashFunction { return pk.hf }

// Validate checks the public parameters.
func (pk *PublicKey) Validate() error {
	if pk == nil || pk.group == nil || pk.g1 == nil || pk.g2 == nil || pk.h == nil || pk.f == nil || pk.eggAlpha == nil {
		return fmt.Errorf("%w: incomplete", cryptid.ErrInvalidPublicParameters)
	}
	if !pk.hf.IsValid().OK() {
		return cryptid.ErrUnknownDigest
	}
	for _, pt := range []pairing.Point{pk.g1, pk.g2, pk.h, pk.f} {
		if err := pk.group.Validate(pt); err != nil {
			return fmt.Errorf("%w: %v", cryptid.ErrInvalidPublicParameters, err)
		}
		if pt.IsIdentity() {
			return fmt.Errorf("%w: identity point", cryptid.ErrInvalidPublicParameters)
		}
	}
	if pk.eggAlpha.IsOne() {
		return fmt.Errorf("%w: degenerate e(g1, g2)^α", cryptid.ErrInvalidPublicParameters)
	}
	return nil
}

func (pk *PublicKey) randomScalar() (*big.Int, error) {
	return pk.scalars.RandomNonZero(pk.rand)
}

func (pk *PublicKey) hashAttribute(a string) (pairing.Point, error) {
	pt, err := pk.group.HashToG2([]byte(a))
	if err != nil {
		return nil, fmt.Errorf("hash attribute %q: %w", a, err)
	}
	return pt, nil
}

// component returns (gr + [rj]H(a), [rj]g1) for a fresh rj, added onto base
// when base is non-nil.
func (pk *PublicKey) component(a string, gr pairing.Point, base *Component) (Component, error) {
	ha, err := pk.hashAttribute(a)
	if err != nil {
		return Component{}, err
	}
	rj, err := pk.randomScalar()
	if err != nil {
		return Component{}, err
	}
	defer zeroize.BigInt(rj)

	c := Component{
		Attribute: a,
		Dj:        gr.Add(ha.ScalarMul(rj)),
		DjA:       pk.g1.ScalarMul(rj),
	}
	if base != nil {
		c.Dj = c.Dj.Add(base.Dj)
		c.DjA = c.DjA.Add(base.DjA)
	}
	return c, nil
}

// Encrypt seals message under policy.
//
// Procedure:
//  1. s = random in [1, q), C = [s]h
//  2. share s down the tree: a gate with threshold k picks a random
//     polynomial q_x of degree k-1 with q_x(0) = its share and hands
//     q_x(i+1) to child i
//  3. for each leaf y: Cy = [q_y(0)]g1, CyA = [q_y(0)]H(att(y))
//  4. key = HashBytes(32, Canonical(e(g1, g2)^{αs})), seal message
func (pk *PublicKey) Encrypt(policy *Node, message []byte) (*Ciphertext, error) {
	if len(message) == 0 {
		return nil, fmt.Errorf("cpabe: encrypt: %w", cryptid.ErrEmptyMessage)
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("cpabe: encrypt: %w", err)
	}

	// 1.
	s, err := pk.randomScalar()
	if err != nil {
		return nil, fmt.Errorf("cpabe: encrypt: %w", err)
	}
	defer zeroize.BigInt(s)
	ct := &Ciphertext{Policy: policy.Clone(), C: pk.h.ScalarMul(s)}

	// 2. and 3.
	if err := pk.share(ct.Policy, s, &ct.Leaves); err != nil {
		ct.Destroy()
		return nil, fmt.Errorf("cpabe: encrypt: %w", err)
	}

	// 4.
	key, err := pk.payloadKey(pk.eggAlpha.Exp(s))
	if err != nil {
		ct.Destroy()
		return nil, fmt.Errorf("cpabe: encrypt: %w", err)
	}
	defer zeroize.Bytes(key[:])
	if _, err := io.ReadFull(pk.rand, ct.Nonce[:]); err != nil {
		ct.Destroy()
		return nil, fmt.Errorf("cpabe: encrypt: random: %w", err)
	}
	ct.Sealed = secretbox.Seal(nil, message, &ct.Nonce, key)
	return ct, nil
}

func (pk *PublicKey) share(n *Node, secret *big.Int, out *[]LeafShare) error {
	if n.IsLeaf() {
		ha, err := pk.hashAttribute(n.Attribute)
		if err != nil {
			return err
		}
		*out = append(*out, LeafShare{
			Attribute: n.Attribute,
			Cy:        pk.g1.ScalarMul(secret),
			CyA:       ha.ScalarMul(secret),
		})
		return nil
	}

	coeffs := make([]*big.Int, n.Threshold)
	coeffs[0] = new(big.Int).Set(secret)
	defer zeroize.BigInts(coeffs...)
	for i := 1; i < len(coeffs); i++ {
		c, err := pk.scalars.Random(pk.rand)
		if err != nil {
			return err
		}
		coeffs[i] = c
	}
	for i, c := range n.Children {
		v := pk.polynomial(coeffs, int64(i+1))
		err := pk.share(c, v, out)
		zeroize.BigInt(v)
		if err != nil {
			return err
		}
	}
	return nil
}

// polynomial evaluates Σ coeffs[i]·x^i mod q by Horner's rule.
func (pk *PublicKey) polynomial(coeffs []*big.Int, x int64) *big.Int {
	bx := big.NewInt(x)
	acc := new(big.Int)
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = pk.scalars.Add(pk.scalars.Mul(acc, bx), coeffs[i])
	}
	return acc
}

func (pk *PublicKey) payloadKey(blinding pairing.Target) (*[keySize]byte, error) {
	kb, err := hashing.HashBytes(keySize, blinding.Bytes(), pk.hf)
	if err != nil {
		return nil, err
	}
	defer zeroize.Bytes(kb)
	var key [keySize]byte
	copy(key[:], kb)
	return &key, nil
}

// Attributes returns the attributes of the key in issue order.
func (sk *SecretKey) Attributes() []string {
	out := make([]string, len(sk.components))
	for i, c := range sk.components {
		out[i] = c.Attribute
	}
	return out
}

// Components returns the per-attribute parts of the key.
func (sk *SecretKey) Components() []Component { return sk.components }

// D returns [1/β]([α]g2 + [r]g2).
func (sk *SecretKey) D() pairing.Point { return sk.d }

// Delegate derives a re-randomized key for a subset of the key's attributes.
//
// Procedure:
//  1. r~ = random, D~ = D + [r~]f
//  2. for each k in subset, rk~ = random:
//     Dk~ = Dk + [r~]g2 + [rk~]H(k), DkA~ = DkA + [rk~]g1
func (sk *SecretKey) Delegate(subset []string) (*SecretKey, error) {
	if sk == nil || sk.d == nil {
		return nil, fmt.Errorf("cpabe: delegate: %w", cryptid.ErrInvalidKey)
	}
	if err := checkAttributes(subset); err != nil {
		return nil, fmt.Errorf("cpabe: delegate: %w", err)
	}
	own := sk.index()
	for _, a := range subset {
		if _, ok := own[a]; !ok {
			return nil, fmt.Errorf("cpabe: delegate: %w: attribute %q not held by the key", cryptid.ErrInvalidKey, a)
		}
	}
	pk := sk.pk

	// 1.
	r, err := pk.randomScalar()
	if err != nil {
		return nil, fmt.Errorf("cpabe: delegate: %w", err)
	}
	defer zeroize.BigInt(r)
	out := &SecretKey{
		d:          sk.d.Add(pk.f.ScalarMul(r)),
		components: make([]Component, 0, len(subset)),
		pk:         pk,
	}

	// 2.
	gr := pk.g2.ScalarMul(r)
	for _, a := range subset {
		base := sk.components[own[a]]
		c, err := pk.component(a, gr, &base)
		if err != nil {
			out.Destroy()
			return nil, fmt.Errorf("cpabe: delegate: %w", err)
		}
		out.components = append(out.components, c)
	}
	return out, nil
}

func (sk *SecretKey) index() map[string]int {
	m := make(map[string]int, len(sk.components))
	for i, c := range sk.components {
		m[c.Attribute] = i
	}
	return m
}

// Decrypt opens ct. Every failure, including an unsatisfied policy, is
// reported as cryptid.ErrDecryptionFailed; structural defects in ct are
// cryptid.ErrMalformedCiphertext.
//
// Procedure:
//  1. fail unless the key's attributes satisfy the tree
//  2. A = DecryptNode(root) = e(g1, g2)^{rs}, where a leaf yields
//     e(Cy, Dj) / e(DjA, CyA) and a gate interpolates k satisfied children
//     at 0
//  3. blinding = e(C, D) / A, open the payload
func (sk *SecretKey) Decrypt(ct *Ciphertext) ([]byte, error) {
	if sk == nil || sk.d == nil {
		return nil, fmt.Errorf("cpabe: decrypt: %w", cryptid.ErrInvalidKey)
	}
	pk := sk.pk
	if err := ct.validate(pk); err != nil {
		return nil, fmt.Errorf("cpabe: decrypt: %w", err)
	}

	// 1.
	if !ct.Policy.Satisfies(sk.Attributes()).OK() {
		return nil, cryptid.ErrDecryptionFailed
	}

	// 2.
	d := &decryption{sk: sk, ct: ct, own: sk.index(), offsets: leafOffsets(ct.Policy)}
	a, err := d.node(ct.Policy)
	if err != nil {
		return nil, cryptid.ErrDecryptionFailed
	}

	// 3.
	ecd, err := pk.group.Pair(ct.C, sk.d)
	if err != nil {
		return nil, cryptid.ErrDecryptionFailed
	}
	key, err := pk.payloadKey(pairing.Div(ecd, a))
	if err != nil {
		return nil, fmt.Errorf("cpabe: decrypt: %w", err)
	}
	defer zeroize.Bytes(key[:])
	m, ok := secretbox.Open(nil, ct.Sealed, &ct.Nonce, key)
	if !ok {
		return nil, cryptid.ErrDecryptionFailed
	}
	return m, nil
}

type decryption struct {
	sk      *SecretKey
	ct      *Ciphertext
	own     map[string]int
	offsets map[*Node]int
	set     map[string]struct{}
}

func (d *decryption) node(n *Node) (pairing.Target, error) {
	g := d.sk.pk.group
	if n.IsLeaf() {
		i, ok := d.own[n.Attribute]
		if !ok {
			return nil, cryptid.ErrDecryptionFailed
		}
		c := d.sk.components[i]
		share := d.ct.Leaves[d.offsets[n]]
		num, err := g.Pair(share.Cy, c.Dj)
		if err != nil {
			return nil, err
		}
		den, err := g.Pair(c.DjA, share.CyA)
		if err != nil {
			return nil, err
		}
		return pairing.Div(num, den), nil
	}

	if d.set == nil {
		d.set = make(map[string]struct{}, len(d.own))
		for a := range d.own {
			d.set[a] = struct{}{}
		}
	}
	var (
		indices []int64
		values  []pairing.Target
	)
	for i, c := range n.Children {
		if len(indices) == n.Threshold {
			break
		}
		if !c.satisfies(d.set) {
			continue
		}
		v, err := d.node(c)
		if err != nil {
			return nil, err
		}
		indices = append(indices, int64(i+1))
		values = append(values, v)
	}
	if len(indices) < n.Threshold {
		return nil, cryptid.ErrDecryptionFailed
	}

	acc := g.Identity()
	for i, v := range values {
		coeff, err := lagrangeAtZero(d.sk.pk.scalars, indices, i)
		if err != nil {
			return nil, err
		}
		acc = acc.Mul(v.Exp(coeff))
	}
	return acc, nil
}

// lagrangeAtZero returns Π_{j≠i} x_j / (x_j - x_i) mod q.
func lagrangeAtZero(f *field.Field, xs []int64, i int) (*big.Int, error) {
	num, den := big.NewInt(1), big.NewInt(1)
	xi := big.NewInt(xs[i])
	for j, x := range xs {
		if j == i {
			continue
		}
		xj := big.NewInt(x)
		num = f.Mul(num, xj)
		den = f.Mul(den, f.Sub(xj, xi))
	}
	return f.Div(num, den)
}

// leafOffsets maps every leaf to its position in depth-first order.
func leafOffsets(root *Node) map[*Node]int {
	m := make(map[*Node]int)
	root.walkLeaves(func(l *Node) { m[l] = len(m) })
	return m
}

// Destroy clears D and every component, then drops the component slice.
func (sk *SecretKey) Destroy() {
	if sk == nil {
		return
	}
	pairing.Zeroize(sk.d)
	for i := range sk.components {
		pairing.Zeroize(sk.components[i].Dj)
		pairing.Zeroize(sk.components[i].DjA)
		sk.components[i] = Component{}
	}
	sk.d, sk.components = nil, nil
}

func (ct *Ciphertext) validate(pk *PublicKey) error {
	if ct == nil || ct.Policy == nil || ct.C == nil {
		return cryptid.ErrMalformedCiphertext
	}
	if err := ct.Policy.Validate(); err != nil {
		return fmt.Errorf("%w: %v", cryptid.ErrMalformedCiphertext, err)
	}
	leaves := ct.Policy.Leaves()
	if len(leaves) != len(ct.Leaves) {
		return fmt.Errorf("%w: %d shares for %d leaves", cryptid.ErrMalformedCiphertext, len(ct.Leaves), len(leaves))
	}
	if len(ct.Sealed) < secretbox.Overhead {
		return fmt.Errorf("%w: short payload", cryptid.ErrMalformedCiphertext)
	}
	if err := pk.group.Validate(ct.C); err != nil {
		return fmt.Errorf("%w: %v", cryptid.ErrMalformedCiphertext, err)
	}
	for i, share := range ct.Leaves {
		if share.Attribute != leaves[i].Attribute || share.Cy == nil || share.CyA == nil {
			return fmt.Errorf("%w: share %d does not match its leaf", cryptid.ErrMalformedCiphertext, i)
		}
		if err := pk.group.Validate(share.Cy); err != nil {
			return fmt.Errorf("%w: %v", cryptid.ErrMalformedCiphertext, err)
		}
		if err := pk.group.Validate(share.CyA); err != nil {
			return fmt.Errorf("%w: %v", cryptid.ErrMalformedCiphertext, err)
		}
	}
	return nil
}

// Destroy clears the ciphertext components.
func (ct *Ciphertext) Destroy() {
	if ct == nil {
		return
	}
	pairing.Zeroize(ct.C)
	for i := range ct.Leaves {
		pairing.Zeroize(ct.Leaves[i].Cy)
		pairing.Zeroize(ct.Leaves[i].CyA)
	}
	zeroize.Bytes(ct.Sealed)
	ct.C, ct.Leaves, ct.Sealed, ct.Policy = nil, nil, nil, nil
}

func checkAttributes(attrs []string) error {
	if len(attrs) == 0 {
		return fmt.Errorf("%w: no attributes", cryptid.ErrInvalidKey)
	}
	seen := make(map[string]struct{}, len(attrs))
	for _, a := range attrs {
		if a == "" {
			return fmt.Errorf("%w: empty attribute", cryptid.ErrInvalidKey)
		}
		if _, ok := seen[a]; ok {
			return fmt.Errorf("%w: duplicate attribute %q", cryptid.ErrInvalidKey, a)
		}
		seen[a] = struct{}{}
	}
	return nil
}
