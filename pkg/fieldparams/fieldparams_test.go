package fieldparams_test

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/elgamal"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/fieldparams"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	params := &elgamal.FieldParams{
		P:            big.NewInt(23),
		Alpha:        big.NewInt(5),
		Q:            big.NewInt(11),
		PowerQ:       1,
		PrimeFactors: []*big.Int{big.NewInt(2), big.NewInt(11)},
	}

	path := filepath.Join(t.TempDir(), "field.json")
	require.NoError(t, fieldparams.Save(path, params))

	got, err := fieldparams.Load(path)
	require.NoError(t, err)

	require.Equal(t, params.P, got.P)
	require.Equal(t, params.Alpha, got.Alpha)
	require.Equal(t, params.Q, got.Q)
	require.Equal(t, params.PowerQ, got.PowerQ)
	require.Len(t, got.PrimeFactors, 2)
}
