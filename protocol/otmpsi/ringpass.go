package otmpsi

import (
	"fmt"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/elgamal"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/party"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/ring"
)

// ringPass sends the server's encrypted vote bases around the ring: every
// client conditionally raises each position to the q-th power (if its own
// inverted Bloom filter says the position was not hit) and rerandomizes before
// forwarding, so that by the time a ciphertext returns to the server it
// carries the product of every party's vote at that position as an exponent
// of the shared vote base.
func (p *Participant) ringPass(encryptedBases, rerand []elgamal.Ciphertext) error {
	if p.opts.Role == party.Server {
		return p.ringPassServer(encryptedBases)
	}
	return p.ringPassClient(encryptedBases, rerand)
}

func (p *Participant) ringPassServer(encryptedBases []elgamal.Ciphertext) error {
	for _, base := range encryptedBases {
		if err := p.net.SendCiphertext(ring.RightNeighbor, base); err != nil {
			return fmt.Errorf("otmpsi: sending position to right neighbor: %w", err)
		}
	}
	for i := range encryptedBases {
		ct, err := p.net.ReceiveCiphertext(ring.LeftNeighbor)
		if err != nil {
			return fmt.Errorf("otmpsi: receiving position %d from left neighbor: %w", i, err)
		}
		encryptedBases[i] = ct
	}
	return nil
}

func (p *Participant) ringPassClient(_ []elgamal.Ciphertext, rerand []elgamal.Ciphertext) error {
	for i := uint64(0); i < p.opts.BloomFilterSize; i++ {
		ct, err := p.net.ReceiveCiphertext(ring.LeftNeighbor)
		if err != nil {
			return fmt.Errorf("otmpsi: receiving position %d from left neighbor: %w", i, err)
		}

		if p.bf.CheckPosition(i) {
			ct = elgamal.Power(p.opts.Field, ct, p.opts.Field.Q)
		}
		ct = elgamal.Mul(p.opts.Field, ct, rerand[i])

		if err := p.net.SendCiphertext(ring.RightNeighbor, ct); err != nil {
			return fmt.Errorf("otmpsi: sending position %d to right neighbor: %w", i, err)
		}
	}
	return nil
}
