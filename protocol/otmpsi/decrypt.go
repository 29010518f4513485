package otmpsi

import (
	"fmt"
	"math/big"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/bigfield"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/elgamal"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/party"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/ring"
)

// decrypt runs the base variant's per-position decryption: the server
// mutually decrypts every position its own set hits (inverted Bloom filter
// bit clear), padding the remaining requests with dummy decryptions up to
// k*|S_server| rounds so that the number of MutualDecrypt rounds never
// reveals how many positions the server actually hit. Clients simply
// respond to whatever number of rounds the server initiates.
func (p *Participant) decrypt(encryptedBases, rerand []elgamal.Ciphertext) ([]*big.Int, error) {
	if p.opts.Enhanced {
		// The enhanced variant folds decryption into FindIntersection's
		// per-element membership test instead of a separate phase; see
		// extractCountEnhanced.
		return nil, nil
	}
	if p.opts.Role == party.Server {
		return p.decryptServer(encryptedBases, rerand)
	}
	return nil, p.decryptClient()
}

func (p *Participant) decryptServer(encryptedBases, rerand []elgamal.Ciphertext) ([]*big.Int, error) {
	decrypted := make([]*big.Int, len(encryptedBases))
	cnt := 0
	totalVotesRequested := p.opts.NumHashFunctions * len(p.elements)

	for i, ct := range encryptedBases {
		if p.bf.CheckPosition(uint64(i)) {
			decrypted[i] = big.NewInt(1)
			continue
		}
		rerandomized := elgamal.Mul(p.opts.Field, ct, rerand[cnt])
		plain, err := p.mutualDecryptServer(rerandomized)
		if err != nil {
			return nil, fmt.Errorf("otmpsi: mutual decryption at position %d: %w", i, err)
		}
		decrypted[i] = plain
		cnt++
	}

	// Keep issuing dummy decryption requests until the total matches
	// k*|S_server|, so an observer watching the number of MutualDecrypt
	// rounds cannot learn how many of the server's positions were real.
	for cnt < totalVotesRequested {
		dummy, err := bigfield.RandomBelow(new(big.Int).Sub(p.opts.Field.P, big.NewInt(1)))
		if err != nil {
			return nil, fmt.Errorf("otmpsi: sampling dummy decryption value: %w", err)
		}
		if err := p.net.BroadcastZZ(dummy); err != nil {
			return nil, fmt.Errorf("otmpsi: broadcasting dummy decryption request: %w", err)
		}
		if _, err := p.net.CollectZZ(); err != nil {
			return nil, fmt.Errorf("otmpsi: collecting dummy decryption shares: %w", err)
		}
		cnt++
	}

	return decrypted, nil
}

func (p *Participant) decryptClient() error {
	rounds := p.opts.NumHashFunctions * len(p.elements)
	for i := 0; i < rounds; i++ {
		if err := p.mutualDecryptClient(); err != nil {
			return fmt.Errorf("otmpsi: mutual decryption round %d: %w", i, err)
		}
	}
	return nil
}

// mutualDecryptServer broadcasts c1, contributes and collects every party's
// partial decryption share, and combines them with c2 to recover the
// plaintext. A malicious or crashed party that withholds its share blocks
// this call indefinitely: the protocol has no fallback for a non-responding
// party, by design (it only targets semi-honest adversaries).
func (p *Participant) mutualDecryptServer(c elgamal.Ciphertext) (*big.Int, error) {
	if err := p.net.BroadcastZZ(c.C1); err != nil {
		return nil, fmt.Errorf("otmpsi: broadcasting c1: %w", err)
	}

	shares := make([]*big.Int, 0, len(p.opts.PartyList))
	shares = append(shares, p.keyHold.PartialDecrypt(c.C1))

	collected, err := p.net.CollectZZ()
	if err != nil {
		return nil, fmt.Errorf("otmpsi: collecting decryption shares: %w", err)
	}
	shares = append(shares, collected...)

	return elgamal.FullyDecrypt(p.opts.Field, shares, c.C2), nil
}

func (p *Participant) mutualDecryptClient() error {
	c1, err := p.net.ReceiveZZ(ring.ServerName)
	if err != nil {
		return fmt.Errorf("otmpsi: receiving c1: %w", err)
	}
	share := p.keyHold.PartialDecrypt(c1)
	if err := p.net.SendZZ(ring.ServerName, share); err != nil {
		return fmt.Errorf("otmpsi: sending decryption share: %w", err)
	}
	return nil
}
