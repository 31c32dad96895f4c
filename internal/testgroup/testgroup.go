// Package testgroup caches pairing groups for tests. Type-1 parameter
// generation costs seconds, so each test binary draws them once.
package testgroup

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Iscaraca/cryptid"
	"github.com/Iscaraca/cryptid/pairing"
)

var (
	lowestOnce   sync.Once
	lowestParams *pairing.Type1Params
	lowestErr    error
)

// LowestParams returns parameters for the Lowest security level, generated
// on first use.
func LowestParams(t testing.TB) *pairing.Type1Params {
	t.Helper()
	lowestOnce.Do(func() {
		lowestParams, lowestErr = pairing.GenerateType1Params(nil, cryptid.Lowest)
	})
	require.NoError(t, lowestErr)
	return lowestParams
}

// Lowest returns a Type1 group over LowestParams with the level's digest.
func Lowest(t testing.TB) *pairing.Type1 {
	t.Helper()
	g, err := pairing.NewType1(LowestParams(t), cryptid.HashFunctionForSecurityLevel(cryptid.Lowest))
	require.NoError(t, err)
	return g
}

// Named is a group with a label for table-driven tests.
type Named struct {
	Name  string
	Group pairing.Group
}

// All returns the cached type-1 group and the gnark-crypto groups.
func All(t testing.TB) []Named {
	t.Helper()
	return []Named{
		{Name: "type1", Group: Lowest(t)},
		{Name: "bls12-381", Group: pairing.BLS12381()},
		{Name: "bn254", Group: pairing.BN254()},
	}
}
