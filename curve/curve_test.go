package curve

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iscaraca/cryptid"
	"github.com/Iscaraca/cryptid/field"
)

// testCurve is y² = x³ + 1 over p = 72q − 1 with q = 2^61 − 1.
func testCurve(t *testing.T) *Curve {
	t.Helper()
	q := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 61), big.NewInt(1))
	p := new(big.Int).Mul(q, big.NewInt(72))
	p.Sub(p, big.NewInt(1))

	f, err := field.New(p)
	require.NoError(t, err)
	c, err := NewType1(f, q, big.NewInt(72))
	require.NoError(t, err)
	return c
}

func subgroupPoint(t *testing.T, c *Curve) AffinePoint {
	t.Helper()
	p, err := c.RandomSubgroupPoint(nil)
	require.NoError(t, err)
	return p
}

func TestNewRejectsSingularCurve(t *testing.T) {
	f, err := field.New(big.NewInt(11))
	require.NoError(t, err)
	_, err = New(f, big.NewInt(0), big.NewInt(0), nil, nil)
	assert.Error(t, err)
}

func TestSmallCurvePointCount(t *testing.T) {
	// A supersingular curve over p ≡ 2 mod 3 has p + 1 points.
	f, err := field.New(big.NewInt(11))
	require.NoError(t, err)
	c, err := NewType1(f, big.NewInt(3), big.NewInt(4))
	require.NoError(t, err)

	count := 1 // infinity
	for x := int64(0); x < 11; x++ {
		for y := int64(0); y < 11; y++ {
			if c.IsOnCurve(AffinePoint{X: big.NewInt(x), Y: big.NewInt(y)}).OK() {
				count++
			}
		}
	}
	assert.Equal(t, 12, count)
}

func TestIsOnCurve(t *testing.T) {
	c := testCurve(t)
	p := subgroupPoint(t, c)
	assert.Equal(t, cryptid.ValidationSuccess, c.IsOnCurve(p))
	assert.Equal(t, cryptid.ValidationSuccess, c.IsOnCurve(c.Infinity()))

	bad := AffinePoint{X: p.X, Y: new(big.Int).Add(p.Y, big.NewInt(1))}
	assert.Equal(t, cryptid.ValidationFailure, c.IsOnCurve(bad))

	nonCanonical := AffinePoint{X: new(big.Int).Add(p.X, c.Field().Modulus()), Y: p.Y}
	assert.Equal(t, cryptid.ValidationFailure, c.IsOnCurve(nonCanonical))

	_, err := c.NewPoint(bad.X, bad.Y)
	assert.ErrorIs(t, err, ErrNotOnCurve)
}

func TestGroupLaw(t *testing.T) {
	c := testCurve(t)
	p, q, r := subgroupPoint(t, c), subgroupPoint(t, c), subgroupPoint(t, c)
	inf := c.Infinity()

	assert.True(t, c.Equal(c.Add(p, inf), p))
	assert.True(t, c.Equal(c.Add(inf, p), p))
	assert.True(t, c.Add(inf, inf).Infinity)
	assert.True(t, c.Add(p, c.Negate(p)).Infinity)
	assert.True(t, c.Negate(inf).Infinity)

	assert.True(t, c.Equal(c.Add(p, q), c.Add(q, p)))
	assert.True(t, c.Equal(c.Add(c.Add(p, q), r), c.Add(p, c.Add(q, r))))
	assert.True(t, c.Equal(c.Double(p), c.Add(p, p)))

	for _, pt := range []AffinePoint{c.Add(p, q), c.Double(r), c.Negate(p)} {
		assert.True(t, c.IsOnCurve(pt).OK())
	}
}

func TestDoubleOfTwoTorsionIsInfinity(t *testing.T) {
	c := testCurve(t)
	// (−1, 0) lies on y² = x³ + 1.
	p, err := c.NewPoint(c.Field().Reduce(big.NewInt(-1)), big.NewInt(0))
	require.NoError(t, err)
	assert.True(t, c.Double(p).Infinity)
	assert.True(t, c.Add(p, p).Infinity)
}

func TestScalarMultiply(t *testing.T) {
	c := testCurve(t)
	p := subgroupPoint(t, c)
	q := c.Order()

	assert.True(t, c.ScalarMultiply(p, big.NewInt(0)).Infinity)
	assert.True(t, c.Equal(c.ScalarMultiply(p, big.NewInt(1)), p))
	assert.True(t, c.Equal(c.ScalarMultiply(p, big.NewInt(2)), c.Double(p)))
	assert.True(t, c.ScalarMultiply(p, q).Infinity)
	assert.True(t, c.InSubgroup(p))

	a, b := big.NewInt(123456789), big.NewInt(987654321)
	lhs := c.ScalarMultiply(p, new(big.Int).Add(a, b))
	rhs := c.Add(c.ScalarMultiply(p, a), c.ScalarMultiply(p, b))
	assert.True(t, c.Equal(lhs, rhs))

	wrapped := c.ScalarMultiply(p, new(big.Int).Add(a, q))
	assert.True(t, c.Equal(wrapped, c.ScalarMultiply(p, a)))

	neg := c.ScalarMultiply(p, big.NewInt(-1))
	assert.True(t, c.Equal(neg, c.Negate(p)))

	assert.True(t, c.ScalarMultiply(c.Infinity(), a).Infinity)
}

func TestRandomPointGenericCurve(t *testing.T) {
	f, err := field.New(big.NewInt(97))
	require.NoError(t, err)
	c, err := New(f, big.NewInt(2), big.NewInt(3), nil, nil)
	require.NoError(t, err)

	for i := 0; i < 16; i++ {
		p, err := c.RandomPoint(nil)
		require.NoError(t, err)
		assert.True(t, c.IsOnCurve(p).OK(), fmt.Sprint(p))
	}
}

func TestRandomPointCubeRoot(t *testing.T) {
	c := testCurve(t)
	for i := 0; i < 16; i++ {
		p, err := c.RandomPoint(nil)
		require.NoError(t, err)
		assert.True(t, c.IsOnCurve(p).OK())
	}
}

func TestEncodeDecode(t *testing.T) {
	c := testCurve(t)
	p := subgroupPoint(t, c)

	enc := c.Encode(p)
	require.Len(t, enc, 1+2*c.Field().ByteLen())
	dec, err := c.Decode(enc)
	require.NoError(t, err)
	assert.True(t, c.Equal(p, dec))

	inf, err := c.Decode(c.Encode(c.Infinity()))
	require.NoError(t, err)
	assert.True(t, inf.Infinity)

	enc[len(enc)-1] ^= 1
	_, err = c.Decode(enc)
	assert.ErrorIs(t, err, ErrNotOnCurve)

	_, err = c.Decode([]byte{0x04, 0x01})
	assert.Error(t, err)
}

func TestCloneAndZeroize(t *testing.T) {
	c := testCurve(t)
	p := subgroupPoint(t, c)
	cp := p.Clone()
	p.Zeroize()
	assert.Zero(t, p.X.Sign())
	assert.Zero(t, p.Y.Sign())
	assert.True(t, c.IsOnCurve(cp).OK())
}
