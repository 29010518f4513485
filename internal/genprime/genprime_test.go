package genprime_test

import (
	"math/big"
	"testing"

	"github.com/otmpsi2023/OT-MP-PSI/internal/genprime"
	"github.com/stretchr/testify/require"
)

func TestGenerateProducesValidFieldParams(t *testing.T) {
	params, err := genprime.Generate(24, 3, 2)
	require.NoError(t, err)

	p := params.Field.P
	require.True(t, p.ProbablyPrime(40))
	require.Equal(t, big.NewInt(3), params.Field.Q)
	require.GreaterOrEqual(t, params.Field.PowerQ, 2)

	pMinus1 := new(big.Int).Sub(p, big.NewInt(1))
	raisedQ := new(big.Int).Exp(params.Field.Q, big.NewInt(int64(params.Field.PowerQ)), nil)
	quo, rem := new(big.Int).QuoRem(pMinus1, raisedQ, new(big.Int))
	require.Equal(t, big.NewInt(0), rem, "q^power must exactly divide p-1")
	_ = quo

	// alpha must generate the full multiplicative group: none of its
	// (p-1)/factor powers may collapse to 1.
	one := big.NewInt(1)
	for _, f := range params.Field.PrimeFactors {
		exp := new(big.Int).Div(pMinus1, f)
		got := new(big.Int).Exp(params.Field.Alpha, exp, p)
		require.NotEqual(t, 0, got.Cmp(one), "alpha collapsed for factor %s", f)
	}
}

func TestGenerateRejectsInvalidInputs(t *testing.T) {
	_, err := genprime.Generate(8, 3, 2)
	require.Error(t, err)

	_, err = genprime.Generate(24, 3, 0)
	require.Error(t, err)
}
