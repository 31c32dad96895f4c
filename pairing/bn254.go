package pairing

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const (
	bn254DSTG1 = "CRYPTID-V01-CS01-with-BN254G1_XMD:SHA-256_SVDW_RO_"
	bn254DSTG2 = "CRYPTID-V01-CS01-with-BN254G2_XMD:SHA-256_SVDW_RO_"
)

type (
	bn254Group = gnarkGroup[
		bn254.G1Affine, bn254.G1Jac, bn254.G2Affine, bn254.G2Jac, bn254.GT,
		*bn254.G1Affine, *bn254.G1Jac, *bn254.G2Affine, *bn254.G2Jac, *bn254.GT,
	]
	bn254G1 = subgroup[bn254.G1Affine, bn254.G1Jac, *bn254.G1Affine, *bn254.G1Jac]
	bn254G2 = subgroup[bn254.G2Affine, bn254.G2Jac, *bn254.G2Affine, *bn254.G2Jac]
	bn254GT = targetGroup[bn254.GT, *bn254.GT]
)

var bn254Singleton = newBN254()

var _ Group = (*bn254Group)(nil)

// BN254 returns the BN254 group of gnark-crypto. G1 and G2 points are
// distinct types and hash with the RFC 9380 SVDW map.
func BN254() Group { return bn254Singleton }

func newBN254() *bn254Group {
	_, _, g1Aff, g2Aff := bn254.Generators()
	order := fr.Modulus()
	return &bn254Group{
		name:  "bn254",
		order: order,
		g1: &bn254G1{
			name:  "G1",
			order: order,
			gen:   g1Aff,
			bytes: func(p *bn254.G1Affine) []byte { b := p.Bytes(); return b[:] },
			hash: func(msg []byte) (bn254.G1Affine, error) {
				return bn254.HashToG1(msg, []byte(bn254DSTG1))
			},
		},
		g2: &bn254G2{
			name:  "G2",
			order: order,
			gen:   g2Aff,
			bytes: func(p *bn254.G2Affine) []byte { b := p.Bytes(); return b[:] },
			hash: func(msg []byte) (bn254.G2Affine, error) {
				return bn254.HashToG2(msg, []byte(bn254DSTG2))
			},
		},
		gt: &bn254GT{
			order: order,
			bytes: func(v *bn254.GT) []byte { b := v.Bytes(); return b[:] },
		},
		pair: func(a bn254.G1Affine, b bn254.G2Affine) (bn254.GT, error) {
			return bn254.Pair([]bn254.G1Affine{a}, []bn254.G2Affine{b})
		},
	}
}
