package otmpsi

import (
	"fmt"
	"math/big"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/bigfield"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/elgamal"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/party"
)

// isGenerator reports whether g generates the full multiplicative group mod
// p, i.e. g^((p-1)/f) != 1 for every prime factor f of p-1.
func isGenerator(g, p *big.Int, primeFactors []*big.Int) bool {
	m := bigfield.NewModulus(p)
	pMinus1 := new(big.Int).Sub(p, big.NewInt(1))
	for _, f := range primeFactors {
		exp := new(big.Int).Div(pMinus1, f)
		if bigfield.ExpMod(bigfield.FromBig(g, m), exp, m).Big().Cmp(big.NewInt(1)) == 0 {
			return false
		}
	}
	return true
}

// voteBasePower computes (p-1) / q^(N-t+1), the exponent that turns a
// random generator into this round's vote base.
func voteBasePower(field *elgamal.FieldParams, numParties, threshold int) *big.Int {
	pMinus1 := new(big.Int).Sub(field.P, big.NewInt(1))
	qPower := new(big.Int).Exp(field.Q, big.NewInt(int64(numParties-threshold+1)), nil)
	return new(big.Int).Div(pMinus1, qPower)
}

// sampleVoteBase samples a uniformly random generator of the full group and
// raises it to voteBasePower, producing this round's vote base: an element
// of order q^(N-t+1) in the subgroup the position-conditional exponentiation
// relies on.
func sampleVoteBase(field *elgamal.FieldParams, numParties, threshold int) (*big.Int, error) {
	power := voteBasePower(field, numParties, threshold)
	m := field.Modulus()
	for {
		g, err := bigfield.RandomElement(m)
		if err != nil {
			return nil, fmt.Errorf("otmpsi: sampling generator: %w", err)
		}
		if g.Big().Sign() == 0 {
			continue
		}
		if !isGenerator(g.Big(), field.P, field.PrimeFactors) {
			continue
		}
		return bigfield.ExpMod(g, power, m).Big(), nil
	}
}

// prepare builds the local Bloom filter, inverts it, and produces this
// party's contribution to the ring pass: the server seeds the
// position-conditional vote bases, clients only prepare a rerandomization
// pool.
func (p *Participant) prepare() ([]elgamal.Ciphertext, []elgamal.Ciphertext, error) {
	for _, e := range p.elements {
		p.bf.Insert(e)
	}
	p.bf.Invert()

	if p.opts.Role == party.Server {
		return p.prepareServer()
	}
	return p.prepareClient()
}

func (p *Participant) prepareServer() ([]elgamal.Ciphertext, []elgamal.Ciphertext, error) {
	voteBase, err := sampleVoteBase(p.opts.Field, p.opts.NumParties, p.opts.IntersectionThreshold)
	if err != nil {
		return nil, nil, err
	}

	size := p.opts.BloomFilterSize
	encryptedBases := make([]elgamal.Ciphertext, size)
	for i := uint64(0); i < size; i++ {
		base := voteBase
		if p.bf.CheckPosition(i) {
			base = new(big.Int).Exp(voteBase, p.opts.Field.Q, p.opts.Field.P)
		}
		ct, err := elgamal.Encrypt(p.opts.Field, p.groupBeta, base)
		if err != nil {
			return nil, nil, fmt.Errorf("otmpsi: encrypting vote base at position %d: %w", i, err)
		}
		encryptedBases[i] = ct
	}

	rerandCount := p.rerandPoolSize()
	rerand := make([]elgamal.Ciphertext, rerandCount)
	for i := range rerand {
		ct, err := elgamal.Encrypt(p.opts.Field, p.groupBeta, big.NewInt(1))
		if err != nil {
			return nil, nil, fmt.Errorf("otmpsi: preparing rerandomization pool: %w", err)
		}
		rerand[i] = ct
	}

	if p.opts.Enhanced {
		p.precomputedTable = buildPrecomputedTable(p.opts.Field, voteBase, p.opts.NumParties, p.opts.IntersectionThreshold)
	}

	return encryptedBases, rerand, nil
}

// buildPrecomputedTable fills table[cnt-1] = voteBase^(q^(N-t+1-cnt)) inverse
// mod p for cnt in [1, N-t+1], letting extractCountServer undo a q-power squaring
// chain with one multiplication instead of recomputing an inverse each time.
func buildPrecomputedTable(field *elgamal.FieldParams, voteBase *big.Int, numParties, threshold int) []*big.Int {
	startIdx := numParties - threshold // N-t
	table := make([]*big.Int, startIdx+1)
	temp := new(big.Int).Set(voteBase)
	for i := startIdx; i >= 0; i-- {
		table[i] = new(big.Int).ModInverse(temp, field.P)
		temp.Exp(temp, field.Q, field.P)
	}
	return table
}

func (p *Participant) prepareClient() ([]elgamal.Ciphertext, []elgamal.Ciphertext, error) {
	rerand := make([]elgamal.Ciphertext, p.opts.BloomFilterSize)
	for i := range rerand {
		ct, err := elgamal.Encrypt(p.opts.Field, p.groupBeta, big.NewInt(1))
		if err != nil {
			return nil, nil, fmt.Errorf("otmpsi: preparing rerandomization pool: %w", err)
		}
		rerand[i] = ct
	}
	return nil, rerand, nil
}

// rerandPoolSize returns how many rerandomization ciphertexts the server
// prepares. Per the resolution of Open Question 3, both the server and the
// clients size their pool to the full Bloom filter size B, not to
// k*|S_server|: sizing the server's pool to the (usually much smaller)
// number of decryption requests it actually issues would let an observer
// infer |S_server| from how quickly the pool is exhausted.
func (p *Participant) rerandPoolSize() uint64 {
	return p.opts.BloomFilterSize
}
