// Package genprime offline-generates field parameters for the OT-MPSI
// protocol: a prime p whose p-1 has a q^power factor supplying the smooth-
// order subgroup the voting exponentiations rely on, plus a generator alpha
// of the full multiplicative group mod p. It is the Go counterpart of
// OTMPSI_online_enhanced/tools/gen_prime/main.cpp, built on crypto/rand's
// and math/big's own prime search instead of NTL.
package genprime

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/elgamal"
)

// Params mirrors the original tool's console report: the generated field
// parameters plus the two random prime factors (besides 2 and q) that went
// into p-1, kept
// around only for diagnostic output.
type Params struct {
	Field        *elgamal.FieldParams
	LargePrime   *big.Int
	SecondFactor *big.Int
}

// maxAttempts bounds the outer search loop. The original tool's C++ loops
// unconditionally until a match is found; in practice a match is found
// within the first few outer iterations for any reasonable security level,
// so this cap exists only to turn a pathological non-terminating search into
// a reported error instead of a process that hangs forever.
const maxAttempts = 10000

// Generate searches for field parameters with the given security level (bit
// length of the large prime factor of p-1), small prime q, and exponent power
// such that q^power divides p-1. The second prime factor's bit length is not
// securityBits: it only fills p out to securityBits plus a 32-bit-aligned
// margin above q^power.
func Generate(securityBits int, q int64, power int) (*Params, error) {
	if securityBits < 16 {
		return nil, fmt.Errorf("genprime: securityBits must be at least 16, got %d", securityBits)
	}
	if power < 1 {
		return nil, fmt.Errorf("genprime: power must be at least 1, got %d", power)
	}

	qBig := big.NewInt(q)
	raisedQ := new(big.Int).Exp(qBig, big.NewInt(int64(power)), nil)
	pBits := securityBits + (raisedQ.BitLen()/32+2)*32

	for attempt := 0; attempt < maxAttempts; attempt++ {
		largePrime, err := rand.Prime(rand.Reader, securityBits)
		if err != nil {
			return nil, fmt.Errorf("genprime: generating large prime: %w", err)
		}

		bitsNeeded := pBits - largePrime.BitLen() - raisedQ.BitLen()
		if bitsNeeded < 2 {
			continue
		}
		secondFactor, err := rand.Prime(rand.Reader, bitsNeeded)
		if err != nil {
			return nil, fmt.Errorf("genprime: generating second factor: %w", err)
		}

		temp := new(big.Int).Mul(secondFactor, raisedQ)
		temp.Mul(temp, largePrime)
		for temp.BitLen() < pBits {
			temp.Lsh(temp, 1)
		}
		p := new(big.Int).Add(temp, big.NewInt(1))

		if !p.ProbablyPrime(60) {
			continue
		}

		factors := distinctFactors(big.NewInt(2), qBig, secondFactor, largePrime)
		alpha, err := findGenerator(p, factors)
		if err != nil {
			continue
		}

		actualPower := qPowerIn(p, qBig)

		return &Params{
			Field: &elgamal.FieldParams{
				P:            p,
				Alpha:        alpha,
				Q:            qBig,
				PowerQ:       actualPower,
				PrimeFactors: factors,
			},
			LargePrime:   largePrime,
			SecondFactor: secondFactor,
		}, nil
	}

	return nil, fmt.Errorf("genprime: no suitable prime found after %d attempts", maxAttempts)
}

// qPowerIn counts how many times q divides p-1.
func qPowerIn(p, q *big.Int) int {
	temp := new(big.Int).Sub(p, big.NewInt(1))
	cnt := 0
	zero := big.NewInt(0)
	for {
		quo, rem := new(big.Int).QuoRem(temp, q, new(big.Int))
		if rem.Cmp(zero) != 0 {
			return cnt
		}
		temp = quo
		cnt++
	}
}

func distinctFactors(fs ...*big.Int) []*big.Int {
	out := make([]*big.Int, 0, len(fs))
	for _, f := range fs {
		seen := false
		for _, existing := range out {
			if existing.Cmp(f) == 0 {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, f)
		}
	}
	return out
}

// findGenerator samples random elements mod p until one generates the full
// multiplicative group: g^((p-1)/f) != 1 mod p for every distinct prime
// factor f of p-1.
func findGenerator(p *big.Int, factors []*big.Int) (*big.Int, error) {
	pMinus1 := new(big.Int).Sub(p, big.NewInt(1))
	one := big.NewInt(1)

	for attempt := 0; attempt < 1000; attempt++ {
		g, err := rand.Int(rand.Reader, pMinus1)
		if err != nil {
			return nil, fmt.Errorf("genprime: sampling candidate generator: %w", err)
		}
		if g.Sign() == 0 {
			continue
		}

		isGen := true
		for _, f := range factors {
			exp := new(big.Int).Div(pMinus1, f)
			if new(big.Int).Exp(g, exp, p).Cmp(one) == 0 {
				isGen = false
				break
			}
		}
		if isGen {
			return g, nil
		}
	}
	return nil, fmt.Errorf("genprime: no generator found")
}
