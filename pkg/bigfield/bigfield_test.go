package bigfield_test

import (
	"math/big"
	"testing"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/bigfield"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulModAndExpMod(t *testing.T) {
	m := bigfield.NewModulus(big.NewInt(23))
	a := bigfield.FromUint64(4)
	b := bigfield.FromUint64(5)

	got := bigfield.MulMod(a, b, m)
	assert.Equal(t, big.NewInt(20), got.Big())

	pow := bigfield.ExpMod(a, big.NewInt(3), m) // 4^3 = 64 mod 23 = 18
	assert.Equal(t, big.NewInt(18), pow.Big())
}

func TestInverseMod(t *testing.T) {
	m := bigfield.NewModulus(big.NewInt(23))
	a := bigfield.FromUint64(5)
	inv := bigfield.InverseMod(a, m)

	prod := bigfield.MulMod(a, inv, m)
	assert.Equal(t, big.NewInt(1), prod.Big())
}

func TestElementBytesRoundTrip(t *testing.T) {
	m := bigfield.NewModulus(big.NewInt(1_000_003))
	width := m.ByteLen()

	e := bigfield.FromUint64(987654)
	b := e.Bytes(width)
	require.Len(t, b, width)

	back := bigfield.FromBytes(b)
	assert.Equal(t, e.Big(), back.Big())
}

func TestRandomBelow(t *testing.T) {
	bound := big.NewInt(100)
	for i := 0; i < 20; i++ {
		n, err := bigfield.RandomBelow(bound)
		require.NoError(t, err)
		assert.True(t, n.Sign() > 0)
		assert.True(t, n.Cmp(bound) < 0)
	}
}
