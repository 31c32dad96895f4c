package cryptid

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/sha3"
)

// DigestSelector names a digest algorithm usable as the hashfcn of RFC 5091.
type DigestSelector int

const (
	DigestUnknown DigestSelector = iota
	SHA1
	SHA224
	SHA256
	SHA384
	SHA512
	SHA3_256
	SHA3_384
	SHA3_512
)

var digestNames = map[DigestSelector]string{
	SHA1:     "SHA-1",
	SHA224:   "SHA-224",
	SHA256:   "SHA-256",
	SHA384:   "SHA-384",
	SHA512:   "SHA-512",
	SHA3_256: "SHA3-256",
	SHA3_384: "SHA3-384",
	SHA3_512: "SHA3-512",
}

var digestConstructors = map[DigestSelector]func() hash.Hash{
	SHA1:     sha1.New,
	SHA224:   sha256.New224,
	SHA256:   sha256.New,
	SHA384:   sha512.New384,
	SHA512:   sha512.New,
	SHA3_256: sha3.New256,
	SHA3_384: sha3.New384,
	SHA3_512: sha3.New512,
}

func (d DigestSelector) String() string {
	if name, ok := digestNames[d]; ok {
		return name
	}
	return "unknown"
}

// HashFunction pairs a digest with its output length in octets.
//
// The zero value and values built from unknown selectors are representable
// but invalid; check IsValid before use.
type HashFunction struct {
	selector DigestSelector
	size     int
	newHash  func() hash.Hash
}

// NewHashFunction selects a digest directly.
func NewHashFunction(selector DigestSelector) HashFunction {
	ctor, ok := digestConstructors[selector]
	if !ok {
		return HashFunction{selector: selector}
	}
	return HashFunction{
		selector: selector,
		size:     ctor().Size(),
		newHash:  ctor,
	}
}

// HashFunctionForSecurityLevel selects the digest whose output length matches
// the field size of level.
func HashFunctionForSecurityLevel(level SecurityLevel) HashFunction {
	return NewHashFunction(level.HashSelector())
}

// IsValid reports ValidationFailure for an unrecognized selector or a zero
// output length.
func (h HashFunction) IsValid() ValidationResult {
	if h.newHash == nil || h.size == 0 {
		return ValidationFailure
	}
	if _, ok := digestConstructors[h.selector]; !ok {
		return ValidationFailure
	}
	return ValidationSuccess
}

// Selector returns the digest algorithm.
func (h HashFunction) Selector() DigestSelector { return h.selector }

// Size returns the digest output length in octets (hashlen).
func (h HashFunction) Size() int { return h.size }

// Sum hashes the concatenation of parts. It returns nil for an invalid
// HashFunction.
func (h HashFunction) Sum(parts ...[]byte) []byte {
	if h.newHash == nil {
		return nil
	}
	d := h.newHash()
	for _, p := range parts {
		d.Write(p)
	}
	return d.Sum(nil)
}

func (h HashFunction) String() string {
	return h.selector.String()
}
