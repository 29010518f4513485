package otmpsi

import (
	"fmt"
	"math/big"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/bloomfilter"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/elgamal"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/party"
)

// extractCountEnhanced runs the enhanced variant's bundled membership test:
// rather than mutually decrypting every Bloom filter position (k per
// element), the server homomorphically combines each element's k hashed
// positions into a single ciphertext first, so only one MutualDecrypt round
// is needed per element regardless of k. Clients still respond to exactly
// one MutualDecrypt round per element, matching the server's loop bound.
func (p *Participant) extractCountEnhanced(_ []*big.Int) ([]Result, error) {
	if p.opts.Role != party.Server {
		return nil, p.mutualDecryptRoundsClient(len(p.elements))
	}

	testResults, err := p.membershipTestServer()
	if err != nil {
		return nil, fmt.Errorf("otmpsi: membership test: %w", err)
	}

	var results []Result
	for i, ct := range testResults {
		plain, err := p.mutualDecryptServer(ct)
		if err != nil {
			return nil, fmt.Errorf("otmpsi: mutual decryption for element %d: %w", i, err)
		}
		cnt := p.extractCountServer(plain)
		if cnt != 0 {
			results = append(results, Result{Element: p.elements[i], Votes: cnt})
		}
	}
	return results, nil
}

// membershipTestServer homomorphically multiplies together, for each of the
// server's own elements, the k encrypted positions that element hashes to.
// The product decrypts to the product of the k positions' plaintext votes,
// collapsing what would otherwise be k separate decryptions into one.
func (p *Participant) membershipTestServer() ([]elgamal.Ciphertext, error) {
	results := make([]elgamal.Ciphertext, 0, len(p.elements))
	for _, e := range p.elements {
		positions := bloomfilter.GetHashPositions(e, p.opts.BloomFilterSize, p.opts.MurmurSeeds)
		test := p.lastRingPassResult[positions[0]]
		for _, pos := range positions[1:] {
			test = elgamal.Mul(p.opts.Field, test, p.lastRingPassResult[pos])
		}
		results = append(results, test)
	}
	return results, nil
}

// extractCountServer recovers an element's vote count from its decrypted
// membership-test plaintext by repeatedly raising it to the q-th power once
// per hash function, consuming one precomputed inverse per iteration so the
// accumulated state from each q-power round carries into the next. This is
// the enhanced variant's replacement for the base variant's
// countSquaringsToOne, amortized across the k hash positions instead of run
// once per position.
//
// As in findIntersection, the inner squaring loop is capped at N-t+1
// iterations (Open Question 2's resolution) rather than left unbounded.
func (p *Participant) extractCountServer(membershipTestResult *big.Int) int {
	bound := p.opts.NumParties - p.opts.IntersectionThreshold + 1
	plaintext := new(big.Int).Set(membershipTestResult)

	var cnt int
	for h := 0; h < p.opts.NumHashFunctions; h++ {
		cnt = countSquaringsToOne(plaintext, p.opts.Field.Q, p.opts.Field.P, bound)
		if cnt == 0 {
			return 0
		}
		plaintext.Mul(plaintext, p.precomputedTable[cnt-1])
		plaintext.Mod(plaintext, p.opts.Field.P)
	}
	return p.opts.IntersectionThreshold + cnt - 1
}

// mutualDecryptRoundsClient responds to exactly n MutualDecrypt rounds
// initiated by the server, one per server element.
func (p *Participant) mutualDecryptRoundsClient(n int) error {
	for i := 0; i < n; i++ {
		if err := p.mutualDecryptClient(); err != nil {
			return fmt.Errorf("otmpsi: mutual decryption round %d: %w", i, err)
		}
	}
	return nil
}
