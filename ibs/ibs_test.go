package ibs

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iscaraca/cryptid"
	"github.com/Iscaraca/cryptid/internal/testgroup"
)

const (
	alice = "alice@example.com"
	bob   = "bob@example.com"
)

var message = []byte("pay bob 10 coins")

func setup(t *testing.T, tc testgroup.Named) (*MasterKey, *PublicKey) {
	t.Helper()
	mk, pk, err := SetupWithGroup(tc.Group, cryptid.NewHashFunction(cryptid.SHA256), nil)
	require.NoError(t, err)
	require.NoError(t, pk.Validate())
	return mk, pk
}

func TestSignVerify(t *testing.T) {
	for _, tc := range testgroup.All(t) {
		t.Run(tc.Name, func(t *testing.T) {
			mk, pk := setup(t, tc)
			defer mk.Destroy()
			sk, err := mk.Extract(alice)
			require.NoError(t, err)
			defer sk.Destroy()

			sig, err := sk.Sign(message)
			require.NoError(t, err)

			res, err := pk.Verify(alice, message, sig)
			require.NoError(t, err)
			assert.Equal(t, cryptid.ValidationSuccess, res)
		})
	}
}

func TestVerifyRejectsMismatch(t *testing.T) {
	for _, tc := range testgroup.All(t) {
		t.Run(tc.Name, func(t *testing.T) {
			mk, pk := setup(t, tc)
			sk, err := mk.Extract(alice)
			require.NoError(t, err)
			sig, err := sk.Sign(message)
			require.NoError(t, err)

			res, err := pk.Verify(alice, []byte("pay bob 99 coins"), sig)
			require.NoError(t, err)
			assert.Equal(t, cryptid.ValidationFailure, res)

			res, err = pk.Verify(bob, message, sig)
			require.NoError(t, err)
			assert.Equal(t, cryptid.ValidationFailure, res)

			forged := &Signature{U: sig.U.ScalarMul(big.NewInt(2)), V: sig.V}
			res, err = pk.Verify(alice, message, forged)
			require.NoError(t, err)
			assert.Equal(t, cryptid.ValidationFailure, res)

			shifted := &Signature{U: sig.U, V: new(big.Int).Mod(new(big.Int).Add(sig.V, big.NewInt(1)), tc.Group.Order())}
			res, err = pk.Verify(alice, message, shifted)
			require.NoError(t, err)
			assert.Equal(t, cryptid.ValidationFailure, res)
		})
	}
}

func TestSignaturesAreRandomized(t *testing.T) {
	tc := testgroup.All(t)[0]
	mk, pk := setup(t, tc)
	sk, err := mk.Extract(alice)
	require.NoError(t, err)

	s1, err := sk.Sign(message)
	require.NoError(t, err)
	s2, err := sk.Sign(message)
	require.NoError(t, err)
	assert.NotEqual(t, 0, s1.V.Cmp(s2.V))

	for _, s := range []*Signature{s1, s2} {
		res, err := pk.Verify(alice, message, s)
		require.NoError(t, err)
		assert.True(t, res.OK())
	}
}

func TestMalformedSignature(t *testing.T) {
	tc := testgroup.All(t)[0]
	mk, pk := setup(t, tc)
	sk, err := mk.Extract(alice)
	require.NoError(t, err)
	sig, err := sk.Sign(message)
	require.NoError(t, err)

	cases := map[string]*Signature{
		"nil":         nil,
		"missing u":   {V: sig.V},
		"missing v":   {U: sig.U},
		"negative v":  {U: sig.U, V: big.NewInt(-1)},
		"v too large": {U: sig.U, V: tc.Group.Order()},
	}
	for name, s := range cases {
		res, err := pk.Verify(alice, message, s)
		assert.ErrorIs(t, err, cryptid.ErrMalformedSignature, name)
		assert.Equal(t, cryptid.ValidationFailure, res, name)
	}

	_, err = pk.Verify("", message, sig)
	assert.ErrorIs(t, err, cryptid.ErrEmptyIdentity)
	_, err = pk.Verify(alice, nil, sig)
	assert.ErrorIs(t, err, cryptid.ErrEmptyMessage)
	_, err = sk.Sign(nil)
	assert.ErrorIs(t, err, cryptid.ErrEmptyMessage)
}

func TestDestroy(t *testing.T) {
	tc := testgroup.All(t)[0]
	mk, _ := setup(t, tc)
	sk, err := mk.Extract(alice)
	require.NoError(t, err)
	sig, err := sk.Sign(message)
	require.NoError(t, err)

	sk.Destroy()
	sk.Destroy()
	_, err = sk.Sign(message)
	assert.ErrorIs(t, err, cryptid.ErrInvalidKey)

	v := sig.V
	sig.Destroy()
	assert.Zero(t, v.Sign())
	assert.Nil(t, sig.U)

	mk.Destroy()
	_, err = mk.Extract(bob)
	assert.ErrorIs(t, err, cryptid.ErrInvalidKey)
}

func TestMediumSignVerify(t *testing.T) {
	if testing.Short() {
		t.Skip("MEDIUM parameter generation is slow")
	}
	mk, pk, err := Setup(cryptid.Medium)
	require.NoError(t, err)
	defer mk.Destroy()
	sk, err := mk.Extract(alice)
	require.NoError(t, err)
	defer sk.Destroy()

	sig, err := sk.Sign(message)
	require.NoError(t, err)
	defer sig.Destroy()

	res, err := pk.Verify(alice, message, sig)
	require.NoError(t, err)
	assert.True(t, res.OK())

	res, err = pk.Verify(bob, message, sig)
	require.NoError(t, err)
	assert.False(t, res.OK())
}
