package otmpsi

import (
	"math/big"
	"testing"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/elgamal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toyField is a tiny, insecure prime field used only to exercise the
// arithmetic helpers directly: p=19, p-1=18=2*3^2, so q=3 with power 2 and
// alpha=2 (a primitive root mod 19) give a usable toy instance.
func toyField() *elgamal.FieldParams {
	return &elgamal.FieldParams{
		P:            big.NewInt(19),
		Alpha:        big.NewInt(2),
		Q:            big.NewInt(3),
		PowerQ:       2,
		PrimeFactors: []*big.Int{big.NewInt(2), big.NewInt(3)},
	}
}

func TestIsGenerator(t *testing.T) {
	f := toyField()
	assert.True(t, isGenerator(big.NewInt(2), f.P, f.PrimeFactors))
	// 1 is never a generator.
	assert.False(t, isGenerator(big.NewInt(1), f.P, f.PrimeFactors))
	// 7 has order 3 mod 19 (7^3 = 343 = 1 mod 19), not a generator.
	assert.False(t, isGenerator(big.NewInt(7), f.P, f.PrimeFactors))
}

func TestVoteBasePower(t *testing.T) {
	f := toyField()
	// N=3, t=2 => exponent divisor is q^(N-t+1) = 3^2 = 9, so power = 18/9 = 2.
	got := voteBasePower(f, 3, 2)
	assert.Equal(t, big.NewInt(2), got)
}

func TestSampleVoteBaseHasExpectedOrder(t *testing.T) {
	f := toyField()
	base, err := sampleVoteBase(f, 3, 2)
	require.NoError(t, err)

	// base should have order dividing q^(N-t+1) = 9: base^9 == 1 mod 19.
	nine := new(big.Int).Exp(f.Q, big.NewInt(2), nil)
	got := new(big.Int).Exp(base, nine, f.P)
	assert.Equal(t, big.NewInt(1), got)
}

func TestCountSquaringsToOne(t *testing.T) {
	f := toyField()
	base, err := sampleVoteBase(f, 3, 2)
	require.NoError(t, err)

	// base itself (0 raises applied) needs exactly 2 squarings to reach 1,
	// since its order divides q^2.
	got := countSquaringsToOne(base, f.Q, f.P, 5)
	assert.Equal(t, 2, got)

	// base^q needs exactly 1 more squaring.
	oneRaise := new(big.Int).Exp(base, f.Q, f.P)
	assert.Equal(t, 1, countSquaringsToOne(oneRaise, f.Q, f.P, 5))

	// base^(q^2) is already 1: no squarings needed, reported as 0.
	already := new(big.Int).Exp(base, new(big.Int).Exp(f.Q, big.NewInt(2), nil), f.P)
	assert.Equal(t, big.NewInt(1), already)
	assert.Equal(t, 0, countSquaringsToOne(already, f.Q, f.P, 5))
}

func TestCountSquaringsToOneRespectsBound(t *testing.T) {
	f := toyField()
	base, err := sampleVoteBase(f, 3, 2)
	require.NoError(t, err)

	// With a bound of 1, base (which needs 2 squarings) never reaches 1
	// within budget and reports 0 rather than looping.
	assert.Equal(t, 0, countSquaringsToOne(base, f.Q, f.P, 1))
}

func TestBuildPrecomputedTableInvertsEachQPower(t *testing.T) {
	f := toyField()
	base, err := sampleVoteBase(f, 3, 2)
	require.NoError(t, err)

	// N=3, t=2 => m = N-t+1 = 2 entries. extractCountServer consumes
	// table[cnt-1] right after observing cnt squarings-to-one out of a
	// value base^(q^(m-cnt)); the table entry must invert exactly that.
	const m = 2
	table := buildPrecomputedTable(f, base, 3, 2)
	require.Len(t, table, m)

	for cnt := 1; cnt <= m; cnt++ {
		exp := new(big.Int).Exp(f.Q, big.NewInt(int64(m-cnt)), nil)
		raised := new(big.Int).Exp(base, exp, f.P)
		product := new(big.Int).Mod(new(big.Int).Mul(raised, table[cnt-1]), f.P)
		assert.Equal(t, big.NewInt(1), product)
	}
}
