// Package cast converts big integers into the bit sequences walked by
// double-and-add and Miller loops.
package cast

import (
	"math/big"
)

// BigIntToBits returns the low numBits bits of n, most significant first.
func BigIntToBits(n *big.Int, numBits int) []bool {
	if numBits <= 0 {
		return nil
	}
	bits := make([]bool, numBits)
	for i := 0; i < numBits; i++ {
		bits[numBits-1-i] = n.Bit(i) == 1
	}
	return bits
}

// Bits returns every bit of the absolute value of n, most significant first.
// Zero has no bits.
func Bits(n *big.Int) []bool {
	return BigIntToBits(n, n.BitLen())
}
