package hashing

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iscaraca/cryptid"
	"github.com/Iscaraca/cryptid/curve"
	"github.com/Iscaraca/cryptid/field"
)

var (
	sha1Fn   = cryptid.NewHashFunction(cryptid.SHA1)
	sha256Fn = cryptid.NewHashFunction(cryptid.SHA256)

	// q = 2^61 − 1, p = 72q − 1
	testQ = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 61), big.NewInt(1))
	testP = new(big.Int).Sub(new(big.Int).Mul(testQ, big.NewInt(72)), big.NewInt(1))
)

func testCurve(t *testing.T) *curve.Curve {
	t.Helper()
	f, err := field.New(testP)
	require.NoError(t, err)
	c, err := curve.NewType1(f, testQ, big.NewInt(72))
	require.NoError(t, err)
	return c
}

func TestHashToRangeVectors(t *testing.T) {
	v, err := HashToRange([]byte("alice"), testQ, sha256Fn)
	require.NoError(t, err)
	assert.Equal(t, "974406268070143331", v.String())

	v, err = HashToRange([]byte("alice"), testP, sha1Fn)
	require.NoError(t, err)
	assert.Equal(t, "31349531313096429264", v.String())
}

func TestHashToRangeIsInRange(t *testing.T) {
	n := big.NewInt(1000003)
	for _, s := range []string{"", "a", "bob", "some longer identity string"} {
		v, err := HashToRange([]byte(s), n, sha256Fn)
		require.NoError(t, err)
		assert.True(t, v.Sign() >= 0 && v.Cmp(n) < 0)
		again, err := HashToRange([]byte(s), n, sha256Fn)
		require.NoError(t, err)
		assert.Equal(t, 0, v.Cmp(again), "deterministic")
	}
}

func TestHashBytesVectors(t *testing.T) {
	out, err := HashBytes(40, []byte("rho"), sha256Fn)
	require.NoError(t, err)
	assert.Equal(t, "6bd884b90a5397c142eb8eef68504effa14ce1da1c5898d43162cd265906a3c41e49f18bfbd09b46", hex.EncodeToString(out))

	out, err = HashBytes(5, []byte("rho"), sha1Fn)
	require.NoError(t, err)
	assert.Equal(t, "3cdfb028f0", hex.EncodeToString(out))
}

func TestHashBytesPrefixStable(t *testing.T) {
	long, err := HashBytes(100, []byte("seed"), sha256Fn)
	require.NoError(t, err)
	short, err := HashBytes(33, []byte("seed"), sha256Fn)
	require.NoError(t, err)
	require.Len(t, long, 100)
	assert.Equal(t, long[:33], short)
	empty, err := HashBytes(0, []byte("seed"), sha256Fn)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCanonical(t *testing.T) {
	f, err := field.New(testP)
	require.NoError(t, err)
	v := f.NewElement(big.NewInt(0x0102), big.NewInt(0x0304))

	l := (testP.BitLen() + 7) / 8
	imFirst := Canonical(testP, v, OrderImaginaryFirst)
	require.Len(t, imFirst, 2*l)
	assert.Equal(t, []byte{0x03, 0x04}, imFirst[l-2:l])
	assert.Equal(t, []byte{0x01, 0x02}, imFirst[2*l-2:])

	reFirst := Canonical(testP, v, OrderRealFirst)
	assert.Equal(t, imFirst[:l], reFirst[l:])
	assert.Equal(t, imFirst[l:], reFirst[:l])
}

func TestHashToPoint(t *testing.T) {
	c := testCurve(t)

	alice, err := HashToPoint(c, testQ, []byte("alice"), sha256Fn)
	require.NoError(t, err)
	assert.True(t, c.IsOnCurve(alice).OK())
	assert.True(t, c.InSubgroup(alice))

	again, err := HashToPoint(c, testQ, []byte("alice"), sha256Fn)
	require.NoError(t, err)
	assert.True(t, c.Equal(alice, again))

	bob, err := HashToPoint(c, testQ, []byte("bob"), sha256Fn)
	require.NoError(t, err)
	assert.False(t, c.Equal(alice, bob))
}

func TestHashToPointRejectsGenericCurve(t *testing.T) {
	f, err := field.New(big.NewInt(97))
	require.NoError(t, err)
	c, err := curve.New(f, big.NewInt(2), big.NewInt(3), nil, nil)
	require.NoError(t, err)
	_, err = HashToPoint(c, big.NewInt(5), []byte("x"), sha256Fn)
	assert.Error(t, err)
}

func TestInvalidHashFunction(t *testing.T) {
	c := testCurve(t)
	for name, hf := range map[string]cryptid.HashFunction{
		"zero value":       {},
		"unknown selector": cryptid.NewHashFunction(cryptid.DigestSelector(42)),
	} {
		v, err := HashToRange([]byte("alice"), big.NewInt(1000003), hf)
		assert.ErrorIs(t, err, cryptid.ErrUnknownDigest, name)
		assert.Nil(t, v, name)

		out, err := HashBytes(16, []byte("rho"), hf)
		assert.ErrorIs(t, err, cryptid.ErrUnknownDigest, name)
		assert.Nil(t, out, name)

		_, err = HashToPoint(c, testQ, []byte("alice"), hf)
		assert.ErrorIs(t, err, cryptid.ErrUnknownDigest, name)
	}
}

func TestHashToRangeRejectsEmptyRange(t *testing.T) {
	_, err := HashToRange([]byte("alice"), big.NewInt(0), sha256Fn)
	assert.Error(t, err)
	_, err = HashToRange([]byte("alice"), nil, sha256Fn)
	assert.Error(t, err)
}
