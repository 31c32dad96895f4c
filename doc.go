// Package cryptid holds the configuration shared by the pairing-based schemes
// of this module: security levels, digest selection and the two-valued
// validation outcome.
//
// The schemes live in subpackages:
//
//   - ibe: Boneh-Franklin identity-based encryption (RFC 5091)
//   - ibs: Hess identity-based signatures
//   - cpabe: Bethencourt-Sahai-Waters ciphertext-policy attribute-based encryption
//
// They are built on field (prime field and F_p² arithmetic), curve (affine
// point arithmetic), hashing (RFC 5091 hash-to-domain maps) and pairing
// (the type-1 Tate pairing and the gnark-crypto BLS12-381 and BN254 groups).
//
// # Memory Management
//
// Master keys, secret keys, ciphertexts and signatures expose Destroy, which
// clears the secret numbers they own. Call it once the value is no longer
// needed:
//
//	mk, pk, err := ibe.Setup(cryptid.Medium)
//	if err != nil {
//	    return err
//	}
//	defer mk.Destroy()
//
// Values are single-owner; sharing one key between goroutines requires
// external synchronization.
package cryptid
