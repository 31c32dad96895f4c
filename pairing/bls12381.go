package pairing

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

const (
	bls12381DSTG1 = "CRYPTID-V01-CS01-with-BLS12381G1_XMD:SHA-256_SSWU_RO_"
	bls12381DSTG2 = "CRYPTID-V01-CS01-with-BLS12381G2_XMD:SHA-256_SSWU_RO_"
)

type (
	bls12381Group = gnarkGroup[
		bls12381.G1Affine, bls12381.G1Jac, bls12381.G2Affine, bls12381.G2Jac, bls12381.GT,
		*bls12381.G1Affine, *bls12381.G1Jac, *bls12381.G2Affine, *bls12381.G2Jac, *bls12381.GT,
	]
	bls12381G1 = subgroup[bls12381.G1Affine, bls12381.G1Jac, *bls12381.G1Affine, *bls12381.G1Jac]
	bls12381G2 = subgroup[bls12381.G2Affine, bls12381.G2Jac, *bls12381.G2Affine, *bls12381.G2Jac]
	bls12381GT = targetGroup[bls12381.GT, *bls12381.GT]
)

var bls12381Singleton = newBLS12381()

var _ Group = (*bls12381Group)(nil)

// BLS12381 returns the BLS12-381 group of gnark-crypto. G1 and G2 points are
// distinct types and hash with the RFC 9380 SSWU map.
func BLS12381() Group { return bls12381Singleton }

func newBLS12381() *bls12381Group {
	_, _, g1Aff, g2Aff := bls12381.Generators()
	order := fr.Modulus()
	return &bls12381Group{
		name:  "bls12-381",
		order: order,
		g1: &bls12381G1{
			name:  "G1",
			order: order,
			gen:   g1Aff,
			bytes: func(p *bls12381.G1Affine) []byte { b := p.Bytes(); return b[:] },
			hash: func(msg []byte) (bls12381.G1Affine, error) {
				return bls12381.HashToG1(msg, []byte(bls12381DSTG1))
			},
		},
		g2: &bls12381G2{
			name:  "G2",
			order: order,
			gen:   g2Aff,
			bytes: func(p *bls12381.G2Affine) []byte { b := p.Bytes(); return b[:] },
			hash: func(msg []byte) (bls12381.G2Affine, error) {
				return bls12381.HashToG2(msg, []byte(bls12381DSTG2))
			},
		},
		gt: &bls12381GT{
			order: order,
			bytes: func(v *bls12381.GT) []byte { b := v.Bytes(); return b[:] },
		},
		pair: func(a bls12381.G1Affine, b bls12381.G2Affine) (bls12381.GT, error) {
			return bls12381.Pair([]bls12381.G1Affine{a}, []bls12381.G2Affine{b})
		},
	}
}
