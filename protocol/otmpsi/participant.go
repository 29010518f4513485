// Package otmpsi implements the over-threshold multi-party private set
// intersection orchestrator: distributed key generation over the additive
// threshold ElGamal scheme in pkg/elgamal, the inverted-Bloom-filter ring
// pass in pkg/bloomfilter and pkg/ring, and the server-side vote extraction
// and mutual decryption that reveal only which of the server's own elements
// occur at least the configured threshold number of times across the group.
package otmpsi

import (
	"fmt"
	"math/big"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/bloomfilter"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/elgamal"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/party"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/ring"
)

// Options mirrors the arithmetic and topology parameters a running
// Participant needs, independent of how they were loaded (pkg/config plus
// pkg/fieldparams assemble one of these for the CLI).
type Options struct {
	Self      party.ID
	Role      party.Role
	PartyList []party.ID

	NumParties            int
	IntersectionThreshold int
	NumHashFunctions      int
	MurmurSeeds           []uint32
	BloomFilterSize       uint64

	Enhanced bool

	Field *elgamal.FieldParams
}

// Participant is one party's runtime state across a full protocol
// execution: its input elements, its threshold-ElGamal key share, its
// Bloom filter, and the network it talks to its peers over.
type Participant struct {
	opts    Options
	net     ring.Network
	keyHold *elgamal.KeyHolder

	// groupBeta is the combined public key beta = alpha^(sum of every
	// party's additive share), established once by DistributedKeyGeneration
	// and used for every subsequent Encrypt call.
	groupBeta *big.Int

	elements []bloomfilter.Element
	bf       *bloomfilter.BloomFilter

	// precomputedTable is only built (and only used) by the enhanced
	// variant; see buildPrecomputedTable and extractCountEnhanced.
	precomputedTable []*big.Int

	// lastRingPassResult holds the server's view of the ring-passed
	// ciphertexts after a ring pass completes. The base variant decrypts it
	// position by position (see decryptServer); the enhanced variant reads
	// it directly in membershipTestServer.
	lastRingPassResult []elgamal.Ciphertext
}

// NewParticipant builds a Participant ready to run DistributedKeyGeneration
// and Execute. net must already have open channels to every name the
// protocol will address: ring.RightNeighbor, ring.LeftNeighbor, and every
// other party in opts.PartyList.
func NewParticipant(opts Options, net ring.Network, elements []bloomfilter.Element) (*Participant, error) {
	kh, err := elgamal.NewKeyHolder(opts.Field)
	if err != nil {
		return nil, fmt.Errorf("otmpsi: generating key share: %w", err)
	}
	return &Participant{
		opts:     opts,
		net:      net,
		keyHold:  kh,
		elements: elements,
		bf:       bloomfilter.New(opts.BloomFilterSize, opts.MurmurSeeds),
	}, nil
}

// DistributedKeyGeneration combines every party's public key contribution
// into a single group public key, matching
// Participant::DistributedKeyGeneration(Server/Client).
func (p *Participant) DistributedKeyGeneration() error {
	if p.opts.Role == party.Server {
		return p.dkgServer()
	}
	return p.dkgClient()
}

func (p *Participant) dkgServer() error {
	shares, err := p.net.CollectZZ()
	if err != nil {
		return fmt.Errorf("otmpsi: collecting key shares: %w", err)
	}

	m := p.opts.Field.Modulus().Big()
	beta := new(big.Int).Set(p.keyHold.Beta)
	for _, share := range shares {
		beta.Mod(beta.Mul(beta, share), m)
	}
	p.groupBeta = beta

	if err := p.net.BroadcastZZ(beta); err != nil {
		return fmt.Errorf("otmpsi: broadcasting group key: %w", err)
	}
	return nil
}

func (p *Participant) dkgClient() error {
	if err := p.net.SendZZ(ring.ServerName, p.keyHold.Beta); err != nil {
		return fmt.Errorf("otmpsi: sending key share: %w", err)
	}
	beta, err := p.net.ReceiveZZ(ring.ServerName)
	if err != nil {
		return fmt.Errorf("otmpsi: receiving group key: %w", err)
	}
	p.groupBeta = beta
	return nil
}

// Result is one element of the server's learned intersection: the element
// value and the number of distinct parties (including itself) whose set
// contained it.
type Result struct {
	Element bloomfilter.Element
	Votes   int
}

// Execute runs one full protocol pass: prepare, ring pass, decrypt, and (on
// the server) extract the intersection. Clients return a nil, empty result.
func (p *Participant) Execute() ([]Result, error) {
	p.bf.Clear()

	encryptedBases, rerand, err := p.prepare()
	if err != nil {
		return nil, fmt.Errorf("otmpsi: prepare: %w", err)
	}

	if err := p.ringPass(encryptedBases, rerand); err != nil {
		return nil, fmt.Errorf("otmpsi: ring pass: %w", err)
	}
	p.lastRingPassResult = encryptedBases

	decrypted, err := p.decrypt(encryptedBases, rerand)
	if err != nil {
		return nil, fmt.Errorf("otmpsi: decrypt: %w", err)
	}

	if p.opts.Enhanced {
		return p.extractCountEnhanced(decrypted)
	}
	if p.opts.Role != party.Server {
		return nil, nil
	}
	return p.findIntersection(decrypted)
}
