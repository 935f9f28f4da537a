package bignum_test

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/bignum"
)

func TestExpMatchesMathBig(t *testing.T) {
	p, err := rand.Prime(rand.Reader, 256)
	require.NoError(t, err)
	m, err := bignum.NewModulus(bignum.FromBig(p))
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		x, err := rand.Int(rand.Reader, new(big.Int).Lsh(p, 8))
		require.NoError(t, err)
		e, err := rand.Int(rand.Reader, p)
		require.NoError(t, err)

		got := bignum.Exp(bignum.FromBig(x), bignum.FromBig(e), m)
		want := new(big.Int).Exp(x, e, p)
		assert.Equal(t, 0, want.Cmp(got.Big()))
	}
}

func TestModularArithmetic(t *testing.T) {
	p := big.NewInt(1000003)
	m, err := bignum.NewModulus(bignum.FromBig(p))
	require.NoError(t, err)

	a := bignum.FromUint64(12345)
	b := bignum.FromUint64(999999)

	assert.Equal(t, int64(12345*999999%1000003), bignum.ModMul(a, b, m).Big().Int64())
	assert.Equal(t, int64((12345-999999+1000003)%1000003), bignum.ModSub(a, b, m).Big().Int64())

	inv, ok := bignum.ModInverse(a, m)
	require.True(t, ok)
	assert.Equal(t, new(big.Int).ModInverse(big.NewInt(12345), p).Int64(), inv.Big().Int64())

	_, ok = bignum.ModInverse(bignum.FromUint64(0), m)
	assert.False(t, ok)
}

func TestModulusRejectsEven(t *testing.T) {
	_, err := bignum.NewModulus(bignum.FromUint64(10))
	require.ErrorIs(t, err, bignum.ErrEvenModulus)

	_, err = bignum.NewModulus(bignum.FromUint64(0))
	require.ErrorIs(t, err, bignum.ErrEvenModulus)
}

func TestContainsAndSerialization(t *testing.T) {
	m, err := bignum.NewModulus(bignum.FromUint64(0x010001))
	require.NoError(t, err)
	assert.Equal(t, 17, m.BitLen())
	assert.Equal(t, 3, m.Size())
	assert.Equal(t, []byte{0x01, 0x00, 0x01}, m.Bytes())

	assert.True(t, m.Contains(bignum.FromUint64(0x010000)))
	assert.False(t, m.Contains(bignum.FromUint64(0x010001)))
	assert.False(t, m.Contains(bignum.FromUint64(0x020000)))

	x := bignum.FromBytes([]byte{0x00, 0x00, 0x12, 0x34})
	assert.Equal(t, []byte{0x12, 0x34}, x.Bytes())
	assert.Equal(t, []byte{0x00, 0x00, 0x12, 0x34}, x.FillBytes(make([]byte, 4)))
	assert.Equal(t, 13, x.BitLen())
	assert.Equal(t, 2, x.ByteLen())
}

func TestMulAdd(t *testing.T) {
	got := bignum.MulAdd(bignum.FromUint64(1<<20), bignum.FromUint64(1<<20), bignum.FromUint64(7), 64)
	assert.Equal(t, uint64(1<<40+7), got.Big().Uint64())
}

func TestClear(t *testing.T) {
	x := bignum.FromUint64(42)
	c := x.Clone()
	x.Clear()
	assert.True(t, x.IsZero())
	assert.True(t, c.Equal(bignum.FromUint64(42)))
}
