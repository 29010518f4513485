package ring_test

import (
	"math/big"
	"net"
	"strconv"
	"testing"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/party"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/ring"
	"github.com/stretchr/testify/require"
)

// freePort asks the OS for an ephemeral port and immediately releases it, so
// the real dial/listen exchange below can be wired up before any of the
// parties start listening.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// TestDialAndListenFourPartyRing brings up a real TCP ring of one server and
// three clients and checks that every party connects without error, that the
// server can reach a client (c2) by name, and that the server's ring link to
// its right neighbor (c1) works.
func TestDialAndListenFourPartyRing(t *testing.T) {
	ids := []party.ID{"server", "c1", "c2", "c3"}
	ports := map[party.ID]int{
		"server": freePort(t),
		"c1":     freePort(t),
		"c2":     freePort(t),
		"c3":     freePort(t),
	}
	addr := func(id party.ID) string {
		return net.JoinHostPort("127.0.0.1", strconv.Itoa(ports[id]))
	}
	rightOf := map[party.ID]party.ID{"server": "c1", "c1": "c2", "c2": "c3", "c3": "server"}

	type result struct {
		id  party.ID
		net *ring.ChannelNetwork
		err error
	}
	resCh := make(chan result, len(ids))

	for _, id := range ids {
		id := id
		role := party.Client
		if id == "server" {
			role = party.Server
		}
		go func() {
			n, err := ring.DialAndListen(ring.DialConfig{
				Self:                 id,
				Role:                 role,
				PartyList:            ids,
				ListenPort:           ports[id],
				RightNeighborAddress: addr(rightOf[id]),
				ServerAddress:        addr("server"),
				FieldByteWidth:       8,
			})
			resCh <- result{id: id, net: n, err: err}
		}()
	}

	networks := make(map[party.ID]*ring.ChannelNetwork, len(ids))
	for range ids {
		r := <-resCh
		require.NoError(t, r.err)
		networks[r.id] = r.net
	}

	// Server reaches a client by its real ID.
	done := make(chan error, 1)
	go func() { done <- networks["server"].SendZZ("c2", big.NewInt(42)) }()
	got, err := networks["c2"].ReceiveZZ("server")
	require.NoError(t, err)
	require.NoError(t, <-done)
	require.Equal(t, big.NewInt(42), got)

	// The ring's first hop works: server -> c1.
	done = make(chan error, 1)
	go func() { done <- networks["server"].SendZZ(ring.RightNeighbor, big.NewInt(7)) }()
	got, err = networks["c1"].ReceiveZZ(ring.LeftNeighbor)
	require.NoError(t, err)
	require.NoError(t, <-done)
	require.Equal(t, big.NewInt(7), got)
}
