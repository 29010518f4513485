package otmpsi

import (
	"math/big"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/bloomfilter"
)

// findIntersection extracts the server's result from the decrypted
// per-position values: each position's vote count is recovered by counting
// how many times it must be raised to the q-th power before reaching 1, the
// counts are folded into a counting Bloom filter, and the server's own
// elements are queried against it.
//
// The original base variant's squaring loop has no iteration cap; a
// position whose decrypted value never reaches 1 (e.g. corrupted state, or
// an adversarial input) spins forever. Per the documented resolution, the
// loop here is capped at N-t+1 iterations and treated as "no votes" on
// overflow, rather than left unbounded.
func (p *Participant) findIntersection(decrypted []*big.Int) ([]Result, error) {
	bound := p.opts.NumParties - p.opts.IntersectionThreshold + 1
	rcbf := bloomfilter.NewCounting(p.opts.BloomFilterSize, p.opts.MurmurSeeds)

	for i, d := range decrypted {
		cnt := countSquaringsToOne(d, p.opts.Field.Q, p.opts.Field.P, bound)
		if cnt > 0 {
			rcbf.Set(uint64(i), uint32(p.opts.IntersectionThreshold+cnt-1))
		}
	}

	var results []Result
	for _, e := range p.elements {
		votes := rcbf.CheckElement(e)
		if votes > 0 {
			results = append(results, Result{Element: e, Votes: int(votes)})
		}
	}
	return results, nil
}

// countSquaringsToOne returns the number of times x must be raised to the
// q-th power mod p before it equals 1, capped at bound iterations. If x
// never reaches 1 within the cap, it returns 0 ("not in the intersection")
// instead of looping forever.
func countSquaringsToOne(x, q, p *big.Int, bound int) int {
	one := big.NewInt(1)
	if x.Cmp(one) == 0 {
		return 0
	}
	temp := new(big.Int).Set(x)
	for cnt := 1; cnt <= bound; cnt++ {
		temp.Exp(temp, q, p)
		if temp.Cmp(one) == 0 {
			return cnt
		}
	}
	return 0
}
