// Package zeroize overwrites secret material before it is released.
//
// The garbage collector may already have copied the memory, so clearing is
// best effort. runtime.KeepAlive keeps the stores from being eliminated
// (golang/go#33325).
package zeroize

import (
	"math/big"
	"runtime"
)

// Bytes overwrites buf with zeros.
func Bytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}

// BigInt clears the backing words of n and sets it to zero. nil is ignored.
func BigInt(n *big.Int) {
	if n == nil {
		return
	}
	words := n.Bits()
	for i := range words {
		words[i] = 0
	}
	n.SetInt64(0)
	runtime.KeepAlive(words)
}

// BigInts clears every element of ns.
func BigInts(ns ...*big.Int) {
	for _, n := range ns {
		BigInt(n)
	}
}
