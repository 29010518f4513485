package bloomfilter_test

import (
	"testing"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/bloomfilter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeds() []uint32 { return []uint32{11, 17, 23} }

func TestBloomFilterInsertAndCheck(t *testing.T) {
	bf := bloomfilter.New(1024, seeds())

	bf.Insert(42)
	assert.True(t, bf.CheckElement(42))
	assert.False(t, bf.CheckElement(43))
}

func TestBloomFilterInvertFlipsEveryBit(t *testing.T) {
	bf := bloomfilter.New(64, seeds())
	bf.Insert(7)

	var before []bool
	for i := uint64(0); i < bf.Size(); i++ {
		before = append(before, bf.CheckPosition(i))
	}

	bf.Invert()
	for i := uint64(0); i < bf.Size(); i++ {
		assert.Equal(t, !before[i], bf.CheckPosition(i))
	}
}

func TestCountingBloomFilterMinAcrossPositions(t *testing.T) {
	cbf := bloomfilter.NewCounting(1024, seeds())

	cbf.Insert(1)
	cbf.Insert(1)
	cbf.Insert(2)

	assert.Equal(t, uint32(2), cbf.CheckElement(1))
	assert.Equal(t, uint32(1), cbf.CheckElement(2))
	assert.Equal(t, uint32(0), cbf.CheckElement(999))
}

func TestGetHashPositionsDeterministic(t *testing.T) {
	a := bloomfilter.GetHashPositions(123, 4096, seeds())
	b := bloomfilter.GetHashPositions(123, 4096, seeds())
	require.Equal(t, a, b)
	assert.Len(t, a, len(seeds()))
	for _, pos := range a {
		assert.Less(t, pos, uint64(4096))
	}
}

func TestDeriveSeedsIsDeterministicAndDistinct(t *testing.T) {
	a := bloomfilter.DeriveSeeds([]byte("session-seed"), 6)
	b := bloomfilter.DeriveSeeds([]byte("session-seed"), 6)
	require.Equal(t, a, b)

	seen := make(map[uint32]bool)
	for _, s := range a {
		seen[s] = true
	}
	assert.Len(t, seen, 6, "expected 6 distinct derived seeds")
}
