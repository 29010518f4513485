package elgamal_test

import (
	"math/big"
	"testing"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/elgamal"
	"github.com/stretchr/testify/require"
)

// smallParams builds a tiny, insecure-but-arithmetically-valid field for
// fast unit tests: p = 23, p-1 = 22 = 2 * 11.
func smallParams() *elgamal.FieldParams {
	return &elgamal.FieldParams{
		P:            big.NewInt(23),
		Alpha:        big.NewInt(5), // order 22 mod 23
		Q:            big.NewInt(11),
		PowerQ:       1,
		PrimeFactors: []*big.Int{big.NewInt(2), big.NewInt(11)},
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	params := smallParams()

	kh1, err := elgamal.NewKeyHolder(params)
	require.NoError(t, err)
	kh2, err := elgamal.NewKeyHolder(params)
	require.NoError(t, err)

	m := params.Modulus()
	beta := new(big.Int).Mod(new(big.Int).Mul(kh1.Beta, kh2.Beta), m.Big())

	plaintext := big.NewInt(7)
	ct, err := elgamal.Encrypt(params, beta, plaintext)
	require.NoError(t, err)

	share1 := kh1.PartialDecrypt(ct.C1)
	share2 := kh2.PartialDecrypt(ct.C1)

	got := elgamal.FullyDecrypt(params, []*big.Int{share1, share2}, ct.C2)
	require.Equal(t, plaintext, got)
}

func TestMulIsHomomorphicOverMultiplication(t *testing.T) {
	params := smallParams()
	kh, err := elgamal.NewKeyHolder(params)
	require.NoError(t, err)

	a := big.NewInt(3)
	b := big.NewInt(4)

	ca, err := elgamal.Encrypt(params, kh.Beta, a)
	require.NoError(t, err)
	cb, err := elgamal.Encrypt(params, kh.Beta, b)
	require.NoError(t, err)

	product := elgamal.Mul(params, ca, cb)
	share := kh.PartialDecrypt(product.C1)
	got := elgamal.FullyDecrypt(params, []*big.Int{share}, product.C2)

	want := new(big.Int).Mod(new(big.Int).Mul(a, b), params.P)
	require.Equal(t, want, got)
}

func TestCoprimeWithPhiPMatchesAllOfSemantics(t *testing.T) {
	factors := []*big.Int{big.NewInt(2), big.NewInt(11)}

	// 22 is divisible by both 2 and 11: rejected.
	require.False(t, elgamal.CoprimeWithPhiP(big.NewInt(22), factors))

	// 2 is divisible by 2 but not 11: accepted under the all-of check,
	// even though 2 is not actually coprime to phi(p) = 22.
	require.True(t, elgamal.CoprimeWithPhiP(big.NewInt(2), factors))

	// 3 is divisible by neither: accepted.
	require.True(t, elgamal.CoprimeWithPhiP(big.NewInt(3), factors))

	require.False(t, elgamal.CoprimeWithPhiP(big.NewInt(-1), factors))
}

func TestReRandPreservesPlaintext(t *testing.T) {
	params := smallParams()
	kh, err := elgamal.NewKeyHolder(params)
	require.NoError(t, err)

	plaintext := big.NewInt(9)
	ct, err := elgamal.Encrypt(params, kh.Beta, plaintext)
	require.NoError(t, err)

	rerand, err := elgamal.ReRand(params, kh.Beta, ct)
	require.NoError(t, err)
	require.NotEqual(t, ct.C1, rerand.C1)

	share := kh.PartialDecrypt(rerand.C1)
	got := elgamal.FullyDecrypt(params, []*big.Int{share}, rerand.C2)
	require.Equal(t, plaintext, got)
}
