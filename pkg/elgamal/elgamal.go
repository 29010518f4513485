// Package elgamal implements the additively-shared threshold ElGamal scheme
// the ring protocol runs over: each party holds an additive share a_i of the
// group secret key, public keys multiply into a single beta = alpha^(sum a_i),
// and decryption requires combining a partial share from every party.
package elgamal

import (
	"fmt"
	"math/big"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/bigfield"
)

// Ciphertext is a standard ElGamal pair (c1, c2) = (alpha^r, beta^r * m).
type Ciphertext struct {
	C1, C2 *big.Int
}

// FieldParams carries the public parameters of the prime field the protocol
// runs in: a safe-ish prime p whose p-1 has a q^k factor supplying a
// subgroup of smooth order for the voting exponentiations, and alpha, a
// generator of the full multiplicative group.
type FieldParams struct {
	P     *big.Int
	Alpha *big.Int
	// Q is the small prime whose k-th power divides p-1.
	Q *big.Int
	// PowerQ is k, the exponent of Q in the factorization of p-1.
	PowerQ int
	// PrimeFactors lists the distinct prime factors of p-1, used by
	// CoprimeWithPhiP.
	PrimeFactors []*big.Int

	modulus *bigfield.Modulus
}

// Modulus lazily builds (and caches) the bigfield.Modulus for P.
func (fp *FieldParams) Modulus() *bigfield.Modulus {
	if fp.modulus == nil {
		fp.modulus = bigfield.NewModulus(fp.P)
	}
	return fp.modulus
}

// KeyHolder is one party's share of the threshold ElGamal secret key: an
// additive share a of the group secret a = sum(a_i), and the resulting
// individual public contribution beta_i = alpha^a_i mod p. Encrypt always
// uses the combined group public key beta passed in by the caller (the
// product of every party's beta_i, computed once during setup), not this
// holder's own beta_i.
type KeyHolder struct {
	params *FieldParams
	a      *big.Int // this party's additive secret-key share
	Beta   *big.Int // this party's public contribution alpha^a mod p
}

// NewKeyHolder samples a fresh additive secret-key share in [1, p) and
// derives its public contribution, mirroring KeyHolder's constructor in
// threshold_elgamal.cpp.
func NewKeyHolder(params *FieldParams) (*KeyHolder, error) {
	a, err := bigfield.RandomBelow(params.P)
	if err != nil {
		return nil, fmt.Errorf("elgamal: sampling key share: %w", err)
	}
	m := params.Modulus()
	beta := bigfield.ExpMod(bigfield.FromBig(params.Alpha, m), a, m)
	return &KeyHolder{params: params, a: a, Beta: beta.Big()}, nil
}

// CoprimeWithPhiP reports whether k is acceptable as an ElGamal encryption
// nonce. It reproduces the original implementation's check exactly: k is
// REJECTED only when it is divisible by every prime factor in the list,
// not when it is divisible by any one of them. For more than one distinct
// factor this accepts values that are not actually coprime to phi(p); the
// ring protocol's correctness does not depend on true coprimality here, only
// on avoiding zero and a small number of low-order encodings, so the check
// is kept as-is rather than corrected to an any-of test.
func CoprimeWithPhiP(k *big.Int, primeFactors []*big.Int) bool {
	if k.Sign() < 0 {
		return false
	}
	allDivide := true
	for _, f := range primeFactors {
		mod := new(big.Int).Mod(k, f)
		if mod.Sign() != 0 {
			allDivide = false
			break
		}
	}
	return !allDivide
}

// Encrypt encrypts plaintext under the combined group public key beta,
// sampling a fresh nonce that passes CoprimeWithPhiP and lies in [3, p-3].
func Encrypt(params *FieldParams, beta *big.Int, plaintext *big.Int) (Ciphertext, error) {
	m := params.Modulus()
	lower := big.NewInt(3)
	upper := new(big.Int).Sub(params.P, big.NewInt(3))

	r, err := bigfield.RandomBelow(params.P)
	if err != nil {
		return Ciphertext{}, fmt.Errorf("elgamal: sampling nonce: %w", err)
	}
	for !CoprimeWithPhiP(r, params.PrimeFactors) || r.Cmp(lower) < 0 || r.Cmp(upper) > 0 {
		r = new(big.Int).Add(r, big.NewInt(1))
		if r.Cmp(upper) > 0 {
			r = new(big.Int).Set(lower)
		}
	}

	c1 := bigfield.ExpMod(bigfield.FromBig(params.Alpha, m), r, m)
	c2 := bigfield.ExpMod(bigfield.FromBig(beta, m), r, m)
	c2 = bigfield.MulMod(c2, bigfield.FromBig(plaintext, m), m)

	return Ciphertext{C1: c1.Big(), C2: c2.Big()}, nil
}

// PartialDecrypt produces this party's decryption share of c1: c1^(-a) mod p.
func (kh *KeyHolder) PartialDecrypt(c1 *big.Int) *big.Int {
	m := kh.params.Modulus()
	neg := new(big.Int).Neg(kh.a)
	return bigfield.ExpMod(bigfield.FromBig(c1, m), neg, m).Big()
}

// FullyDecrypt combines c2 with every party's decryption share (including
// the caller's own, if participating) to recover the plaintext.
func FullyDecrypt(params *FieldParams, shares []*big.Int, c2 *big.Int) *big.Int {
	m := params.Modulus()
	plaintext := bigfield.FromBig(c2, m)
	for _, share := range shares {
		plaintext = bigfield.MulMod(plaintext, bigfield.FromBig(share, m), m)
	}
	return plaintext.Big()
}

// Power raises both components of src to exponent, mod p.
func Power(params *FieldParams, src Ciphertext, exponent *big.Int) Ciphertext {
	m := params.Modulus()
	return Ciphertext{
		C1: bigfield.ExpMod(bigfield.FromBig(src.C1, m), exponent, m).Big(),
		C2: bigfield.ExpMod(bigfield.FromBig(src.C2, m), exponent, m).Big(),
	}
}

// Mul multiplies two ciphertexts component-wise, mod p. This is the
// standard ElGamal homomorphism: Mul(Enc(x), Enc(y)) decrypts to x*y.
func Mul(params *FieldParams, a, b Ciphertext) Ciphertext {
	m := params.Modulus()
	return Ciphertext{
		C1: bigfield.MulMod(bigfield.FromBig(a.C1, m), bigfield.FromBig(b.C1, m), m).Big(),
		C2: bigfield.MulMod(bigfield.FromBig(a.C2, m), bigfield.FromBig(b.C2, m), m).Big(),
	}
}

// ReRand rerandomizes src by multiplying it with a fresh encryption of 1,
// so that repeated use of the same plaintext never produces observably
// linkable ciphertexts.
func ReRand(params *FieldParams, beta *big.Int, src Ciphertext) (Ciphertext, error) {
	r, err := Encrypt(params, beta, big.NewInt(1))
	if err != nil {
		return Ciphertext{}, fmt.Errorf("elgamal: rerandomizing: %w", err)
	}
	return Mul(params, src, r), nil
}

// SquareRoot is the enhanced variant's optional ciphertext-shrinking step:
// it attempts to take a modular square root of each component. If either
// component has no square root mod p (i.e. is a quadratic non-residue), the
// whole input ciphertext is returned unchanged rather than signaling an
// error, so callers must tolerate both a shrunk and an unshrunk result.
func SquareRoot(params *FieldParams, src Ciphertext) Ciphertext {
	if big.Jacobi(src.C1, params.P) == -1 || big.Jacobi(src.C2, params.P) == -1 {
		return Ciphertext{C1: new(big.Int).Set(src.C1), C2: new(big.Int).Set(src.C2)}
	}
	return Ciphertext{
		C1: sqrtModOrSelf(src.C1, params.P),
		C2: sqrtModOrSelf(src.C2, params.P),
	}
}

// sqrtModOrSelf returns a square root of x mod p if one exists (p must be
// prime), otherwise x itself.
func sqrtModOrSelf(x, p *big.Int) *big.Int {
	root := new(big.Int).ModSqrt(x, p)
	if root == nil {
		return new(big.Int).Set(x)
	}
	return root
}
