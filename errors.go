package cryptid

import "errors"

// Structural errors. They signal a configuration or input-format defect and
// are never used to report the outcome of a cryptographic check.
var (
	ErrInvalidSecurityLevel    = errors.New("cryptid: invalid security level")
	ErrUnknownDigest           = errors.New("cryptid: unknown digest selector")
	ErrEmptyIdentity           = errors.New("cryptid: identity must not be empty")
	ErrEmptyMessage            = errors.New("cryptid: message must not be empty")
	ErrInvalidPublicParameters = errors.New("cryptid: invalid public parameters")
	ErrMalformedCiphertext     = errors.New("cryptid: malformed ciphertext")
	ErrMalformedSignature      = errors.New("cryptid: malformed signature")
	ErrInvalidKey              = errors.New("cryptid: invalid or destroyed key")
	ErrAttemptLimit            = errors.New("cryptid: attempt limit reached")
)

// ErrDecryptionFailed is the only error a decryption returns once its inputs
// are well formed. Wrong keys, tampered ciphertexts and unsatisfied policies
// are indistinguishable to the caller.
var ErrDecryptionFailed = errors.New("cryptid: decryption failed")
