package cpabe

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iscaraca/cryptid"
	"github.com/Iscaraca/cryptid/field"
	"github.com/Iscaraca/cryptid/internal/testgroup"
	"github.com/Iscaraca/cryptid/pairing"
)

var message = []byte("quarterly numbers, do not forward")

func setup(t *testing.T, tc testgroup.Named) (*MasterKey, *PublicKey) {
	t.Helper()
	mk, pk, err := SetupWithGroup(tc.Group, cryptid.NewHashFunction(cryptid.SHA256), nil)
	require.NoError(t, err)
	require.NoError(t, pk.Validate())
	return mk, pk
}

func mustParse(t *testing.T, s string) *Node {
	t.Helper()
	n, err := ParsePolicy(s)
	require.NoError(t, err)
	return n
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		policy string
		attrs  []string
	}{
		{"finance", []string{"finance"}},
		{"finance and manager", []string{"manager", "finance"}},
		{"finance or audit", []string{"audit"}},
		{"2 of (finance, manager and senior, audit)", []string{"senior", "audit", "manager"}},
		{"(a or b) and 2 of (c, d, e)", []string{"b", "e", "c", "unrelated"}},
	}
	for _, tc := range testgroup.All(t) {
		t.Run(tc.Name, func(t *testing.T) {
			mk, pk := setup(t, tc)
			defer mk.Destroy()
			for _, c := range cases {
				sk, err := mk.KeyGen(c.attrs)
				require.NoError(t, err)

				ct, err := pk.Encrypt(mustParse(t, c.policy), message)
				require.NoError(t, err, c.policy)
				got, err := sk.Decrypt(ct)
				require.NoError(t, err, c.policy)
				assert.Equal(t, message, got, c.policy)
				sk.Destroy()
			}
		})
	}
}

func TestUnsatisfiedPolicy(t *testing.T) {
	for _, tc := range testgroup.All(t) {
		t.Run(tc.Name, func(t *testing.T) {
			mk, pk := setup(t, tc)
			sk, err := mk.KeyGen([]string{"finance", "audit"})
			require.NoError(t, err)

			for _, policy := range []string{"manager", "finance and manager", "2 of (manager, senior, audit)"} {
				ct, err := pk.Encrypt(mustParse(t, policy), message)
				require.NoError(t, err)
				got, err := sk.Decrypt(ct)
				assert.ErrorIs(t, err, cryptid.ErrDecryptionFailed, policy)
				assert.Nil(t, got)
			}

			nested, err := mk.KeyGen([]string{"a", "c"})
			require.NoError(t, err)
			tree := mustParse(t, "(a or b) and 2 of (c, d, e)")
			require.False(t, tree.Satisfies(nested.Attributes()).OK())
			ct, err := pk.Encrypt(tree, message)
			require.NoError(t, err)
			got, err := nested.Decrypt(ct)
			assert.ErrorIs(t, err, cryptid.ErrDecryptionFailed)
			assert.Nil(t, got)
		})
	}
}

func TestCollusionFails(t *testing.T) {
	for _, tc := range testgroup.All(t) {
		t.Run(tc.Name, func(t *testing.T) {
			mk, pk := setup(t, tc)
			ka, err := mk.KeyGen([]string{"finance"})
			require.NoError(t, err)
			kb, err := mk.KeyGen([]string{"manager"})
			require.NoError(t, err)

			ct, err := pk.Encrypt(And(Leaf("finance"), Leaf("manager")), message)
			require.NoError(t, err)

			for _, sk := range []*SecretKey{ka, kb} {
				_, err := sk.Decrypt(ct)
				assert.ErrorIs(t, err, cryptid.ErrDecryptionFailed)
			}

			pooled := &SecretKey{
				d:          ka.d,
				components: []Component{ka.components[0], kb.components[0]},
				pk:         pk,
			}
			require.True(t, ct.Policy.Satisfies(pooled.Attributes()).OK())
			_, err = pooled.Decrypt(ct)
			assert.ErrorIs(t, err, cryptid.ErrDecryptionFailed)
		})
	}
}

func TestEncryptIsRandomized(t *testing.T) {
	tc := testgroup.All(t)[1]
	_, pk := setup(t, tc)
	policy := Leaf("finance")
	c1, err := pk.Encrypt(policy, message)
	require.NoError(t, err)
	c2, err := pk.Encrypt(policy, message)
	require.NoError(t, err)
	assert.False(t, c1.C.Equal(c2.C))
	assert.NotEqual(t, c1.Sealed, c2.Sealed)
}

func TestDelegate(t *testing.T) {
	for _, tc := range testgroup.All(t) {
		t.Run(tc.Name, func(t *testing.T) {
			mk, pk := setup(t, tc)
			sk, err := mk.KeyGen([]string{"finance", "manager", "senior"})
			require.NoError(t, err)

			dk, err := sk.Delegate([]string{"senior", "finance"})
			require.NoError(t, err)
			assert.Equal(t, []string{"senior", "finance"}, dk.Attributes())
			assert.False(t, dk.D().Equal(sk.D()))

			ct, err := pk.Encrypt(mustParse(t, "finance and senior"), message)
			require.NoError(t, err)
			got, err := dk.Decrypt(ct)
			require.NoError(t, err)
			assert.Equal(t, message, got)

			ct, err = pk.Encrypt(mustParse(t, "manager"), message)
			require.NoError(t, err)
			_, err = dk.Decrypt(ct)
			assert.ErrorIs(t, err, cryptid.ErrDecryptionFailed)

			again, err := dk.Delegate([]string{"finance"})
			require.NoError(t, err)
			ct, err = pk.Encrypt(Leaf("finance"), message)
			require.NoError(t, err)
			got, err = again.Decrypt(ct)
			require.NoError(t, err)
			assert.Equal(t, message, got)

			_, err = dk.Delegate([]string{"manager"})
			assert.ErrorIs(t, err, cryptid.ErrInvalidKey)
			_, err = sk.Delegate(nil)
			assert.ErrorIs(t, err, cryptid.ErrInvalidKey)
		})
	}
}

func TestKeyGenRejectsBadAttributes(t *testing.T) {
	mk, _ := setup(t, testgroup.All(t)[1])
	for name, attrs := range map[string][]string{
		"none":      nil,
		"empty":     {"finance", ""},
		"duplicate": {"finance", "audit", "finance"},
	} {
		_, err := mk.KeyGen(attrs)
		assert.ErrorIs(t, err, cryptid.ErrInvalidKey, name)
	}
}

func TestEncryptRejectsBadInput(t *testing.T) {
	_, pk := setup(t, testgroup.All(t)[1])

	_, err := pk.Encrypt(Leaf("finance"), nil)
	assert.ErrorIs(t, err, cryptid.ErrEmptyMessage)
	_, err = pk.Encrypt(nil, message)
	assert.ErrorIs(t, err, ErrInvalidPolicy)
	_, err = pk.Encrypt(Threshold(3, Leaf("a"), Leaf("b")), message)
	assert.ErrorIs(t, err, ErrInvalidPolicy)
	_, err = pk.Encrypt(Leaf(""), message)
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestMalformedCiphertext(t *testing.T) {
	mk, pk := setup(t, testgroup.All(t)[1])
	sk, err := mk.KeyGen([]string{"finance", "audit"})
	require.NoError(t, err)

	fresh := func() *Ciphertext {
		ct, err := pk.Encrypt(mustParse(t, "finance or audit"), message)
		require.NoError(t, err)
		return ct
	}

	for name, mutate := range map[string]func(*Ciphertext){
		"missing share":   func(ct *Ciphertext) { ct.Leaves = ct.Leaves[:1] },
		"renamed share":   func(ct *Ciphertext) { ct.Leaves[0].Attribute = "manager" },
		"nil C":           func(ct *Ciphertext) { ct.C = nil },
		"nil policy":      func(ct *Ciphertext) { ct.Policy = nil },
		"short payload":   func(ct *Ciphertext) { ct.Sealed = ct.Sealed[:4] },
		"foreign group":   func(ct *Ciphertext) { ct.C = pairing.BN254().Generator1() },
		"invalid policy":  func(ct *Ciphertext) { ct.Policy.Threshold = 0 },
		"nil leaf points": func(ct *Ciphertext) { ct.Leaves[1].CyA = nil },
	} {
		ct := fresh()
		mutate(ct)
		_, err := sk.Decrypt(ct)
		assert.ErrorIs(t, err, cryptid.ErrMalformedCiphertext, name)
	}
	_, err = sk.Decrypt(nil)
	assert.ErrorIs(t, err, cryptid.ErrMalformedCiphertext)
}

func TestTamperedCiphertext(t *testing.T) {
	mk, pk := setup(t, testgroup.All(t)[1])
	sk, err := mk.KeyGen([]string{"finance"})
	require.NoError(t, err)

	ct, err := pk.Encrypt(Leaf("finance"), message)
	require.NoError(t, err)
	ct.Sealed[0] ^= 1
	_, err = sk.Decrypt(ct)
	assert.ErrorIs(t, err, cryptid.ErrDecryptionFailed)

	ct, err = pk.Encrypt(Leaf("finance"), message)
	require.NoError(t, err)
	ct.C = ct.C.Add(pk.Group().Generator1())
	_, err = sk.Decrypt(ct)
	assert.ErrorIs(t, err, cryptid.ErrDecryptionFailed)
}

func TestDestroy(t *testing.T) {
	g := testgroup.Lowest(t)
	mk, pk, err := SetupWithGroup(g, g.HashFunction(), nil)
	require.NoError(t, err)

	attrs := []string{"finance", "manager", "senior"}
	sk, err := mk.KeyGen(attrs)
	require.NoError(t, err)
	require.Len(t, sk.Components(), len(attrs))

	var held []pairing.Point
	held = append(held, sk.D())
	for _, c := range sk.Components() {
		held = append(held, c.Dj, c.DjA)
	}
	require.Len(t, held, 1+2*len(attrs))

	sk.Destroy()
	for i, p := range held {
		a, ok := pairing.Affine(p)
		require.True(t, ok)
		assert.Zero(t, a.X.Sign(), "point %d", i)
		assert.Zero(t, a.Y.Sign(), "point %d", i)
	}
	assert.Nil(t, sk.Components())
	assert.Nil(t, sk.D())
	sk.Destroy()

	ct, err := pk.Encrypt(Leaf("finance"), message)
	require.NoError(t, err)
	_, err = sk.Decrypt(ct)
	assert.ErrorIs(t, err, cryptid.ErrInvalidKey)
	_, err = sk.Delegate([]string{"finance"})
	assert.ErrorIs(t, err, cryptid.ErrInvalidKey)

	ct.Destroy()
	ct.Destroy()
	assert.Nil(t, ct.Leaves)

	mk.Destroy()
	mk.Destroy()
	_, err = mk.KeyGen(attrs)
	assert.ErrorIs(t, err, cryptid.ErrInvalidKey)

	var nilKey *SecretKey
	nilKey.Destroy()
	cryptid.DestroyAll(mk, sk, ct, nilKey)
}

func TestLagrangeAtZero(t *testing.T) {
	f, err := field.New(big.NewInt(1000003))
	require.NoError(t, err)
	pk := &PublicKey{scalars: f}

	// q(x) = 42 + 5x + 7x^2
	coeffs := []*big.Int{big.NewInt(42), big.NewInt(5), big.NewInt(7)}
	xs := []int64{2, 3, 5}
	secret := new(big.Int)
	for i, x := range xs {
		l, err := lagrangeAtZero(f, xs, i)
		require.NoError(t, err)
		secret = f.Add(secret, f.Mul(l, pk.polynomial(coeffs, x)))
	}
	assert.Equal(t, int64(42), secret.Int64())
}

func TestSetupRejectsBadInput(t *testing.T) {
	_, _, err := SetupWithGroup(nil, cryptid.NewHashFunction(cryptid.SHA256), nil)
	assert.ErrorIs(t, err, cryptid.ErrInvalidPublicParameters)
	_, _, err = SetupWithGroup(pairing.BLS12381(), cryptid.NewHashFunction(cryptid.DigestUnknown), nil)
	assert.ErrorIs(t, err, cryptid.ErrUnknownDigest)
	_, _, err = Setup(cryptid.SecurityLevel(42))
	assert.ErrorIs(t, err, cryptid.ErrInvalidSecurityLevel)
}
