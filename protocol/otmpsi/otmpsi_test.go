package otmpsi_test

import (
	"math/big"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/sync/errgroup"

	"github.com/otmpsi2023/OT-MP-PSI/internal/simnet"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/bloomfilter"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/elgamal"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/party"
	"github.com/otmpsi2023/OT-MP-PSI/protocol/otmpsi"
)

// toyField is a tiny, insecure prime field used only to drive the ring
// protocol end to end quickly: p=19, p-1=18=2*3^2, q=3 (power 2), alpha=2 a
// primitive root mod 19. N=3 parties, threshold=2, so q^(N-t+1)=9 divides
// p-1 as required.
func toyField() *elgamal.FieldParams {
	return &elgamal.FieldParams{
		P:            big.NewInt(19),
		Alpha:        big.NewInt(2),
		Q:            big.NewInt(3),
		PowerQ:       2,
		PrimeFactors: []*big.Int{big.NewInt(2), big.NewInt(3)},
	}
}

const (
	fieldByteWidth  = 8
	bloomFilterSize = 256
)

var seeds = []uint32{0x9747b28c}

func runRound(ids []party.ID, serverElems, client1Elems, client2Elems []bloomfilter.Element, enhanced bool) (map[party.ID]*otmpsi.Participant, []otmpsi.Result, error) {
	networks, err := simnet.BuildNetworks(ids, fieldByteWidth)
	if err != nil {
		return nil, nil, err
	}

	elementsByID := map[party.ID][]bloomfilter.Element{
		"server":  serverElems,
		"client1": client1Elems,
		"client2": client2Elems,
	}

	participants := make(map[party.ID]*otmpsi.Participant, len(ids))
	for _, id := range ids {
		role := party.Client
		if id == "server" {
			role = party.Server
		}
		opts := otmpsi.Options{
			Self:                  id,
			Role:                  role,
			PartyList:             ids,
			NumParties:            len(ids),
			IntersectionThreshold: 2,
			NumHashFunctions:      1,
			MurmurSeeds:           seeds,
			BloomFilterSize:       bloomFilterSize,
			Enhanced:              enhanced,
			Field:                 toyField(),
		}
		pt, err := otmpsi.NewParticipant(opts, networks[id], elementsByID[id])
		if err != nil {
			return nil, nil, err
		}
		participants[id] = pt
	}

	var eg errgroup.Group
	for _, id := range ids {
		pt := participants[id]
		eg.Go(pt.DistributedKeyGeneration)
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	var serverResult []otmpsi.Result
	var eg2 errgroup.Group
	for _, id := range ids {
		id, pt := id, participants[id]
		eg2.Go(func() error {
			results, err := pt.Execute()
			if err != nil {
				return err
			}
			if id == "server" {
				serverResult = results
			}
			return nil
		})
	}
	if err := eg2.Wait(); err != nil {
		return nil, nil, err
	}

	return participants, serverResult, nil
}

var _ = Describe("OT-MPSI base variant", func() {
	ids := []party.ID{"server", "client1", "client2"}

	It("reports every element at full vote count when all three parties hold the same set", func() {
		elems := []bloomfilter.Element{10, 20, 30}
		_, result, err := runRound(ids, elems, elems, elems, false)
		Expect(err).NotTo(HaveOccurred())

		votes := make(map[bloomfilter.Element]int, len(result))
		for _, r := range result {
			votes[r.Element] = r.Votes
		}
		for _, e := range elems {
			Expect(votes).To(HaveKeyWithValue(e, 3))
		}
	})

	It("reports nothing when the server's elements occur in no other party's set", func() {
		_, result, err := runRound(ids,
			[]bloomfilter.Element{1001, 1002, 1003},
			[]bloomfilter.Element{2001, 2002},
			[]bloomfilter.Element{3001, 3002},
			false)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(BeEmpty())
	})

	It("only ever reports elements that are actually the server's own", func() {
		serverElems := []bloomfilter.Element{7, 8, 9}
		_, result, err := runRound(ids, serverElems, []bloomfilter.Element{7, 8, 9}, []bloomfilter.Element{7}, false)
		Expect(err).NotTo(HaveOccurred())

		owned := make(map[bloomfilter.Element]bool, len(serverElems))
		for _, e := range serverElems {
			owned[e] = true
		}
		for _, r := range result {
			Expect(owned).To(HaveKey(r.Element))
			Expect(r.Votes).To(BeNumerically(">=", 2))
			Expect(r.Votes).To(BeNumerically("<=", len(ids)))
		}
	})
})

var _ = Describe("OT-MPSI enhanced variant", func() {
	ids := []party.ID{"server", "client1", "client2"}

	It("reports every element at full vote count when all three parties hold the same set", func() {
		elems := []bloomfilter.Element{11, 22, 33}
		_, result, err := runRound(ids, elems, elems, elems, true)
		Expect(err).NotTo(HaveOccurred())

		votes := make(map[bloomfilter.Element]int, len(result))
		for _, r := range result {
			votes[r.Element] = r.Votes
		}
		for _, e := range elems {
			Expect(votes).To(HaveKeyWithValue(e, 3))
		}
	})

	It("reports nothing when the server's elements occur in no other party's set", func() {
		_, result, err := runRound(ids,
			[]bloomfilter.Element{4001, 4002},
			[]bloomfilter.Element{5001, 5002},
			[]bloomfilter.Element{6001, 6002},
			true)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(BeEmpty())
	})
})
