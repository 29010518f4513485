package ring

import (
	"fmt"
	"net"
	"sync"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/netchan"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/party"
)

// DialConfig carries everything a real TCP deployment of one participant
// needs to bootstrap its Network: its own identity and ring addresses, plus
// (for clients) the server's address. The server accepts one connection per
// client for broadcast/collect; every party, server included, separately
// dials its right neighbor and accepts a connection from its left neighbor,
// matching TcpEndpoint's independent ring-adjacency and server-mesh wiring.
type DialConfig struct {
	Self      party.ID
	Role      party.Role
	PartyList []party.ID

	ListenPort           int
	RightNeighborAddress string
	ServerAddress        string // only required for clients

	FieldByteWidth int
}

// DialAndListen bootstraps a ChannelNetwork over real TCP connections: it
// starts a listener on cfg.ListenPort, dials the right neighbor (and, for
// clients, the server), and accepts inbound connections until every expected
// peer has checked in. It blocks until the whole topology is connected.
func DialAndListen(cfg DialConfig) (*ChannelNetwork, error) {
	idx := indexOf(cfg.PartyList, cfg.Self)
	if idx < 0 {
		return nil, fmt.Errorf("ring: self %q not present in party list", cfg.Self)
	}
	n := len(cfg.PartyList)
	leftNeighbor := cfg.PartyList[(idx-1+n)%n]
	rightNeighbor := cfg.PartyList[(idx+1)%n]

	// For the one client whose ring-adjacency wraps onto the server, the
	// right-neighbor link and the client-to-server link are the same
	// physical connection: dialing both independently would leave the
	// server one accept short (it only expects one inbound connection per
	// client). That client's explicit server dial below is aliased onto
	// RightNeighbor too, and its own ring dial is skipped.
	ringDialIsServerDial := cfg.Role == party.Client && rightNeighbor == ServerName

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.ListenPort))
	if err != nil {
		return nil, fmt.Errorf("ring: listening on port %d: %w", cfg.ListenPort, err)
	}
	defer listener.Close()

	channels := make(map[party.ID]*netchan.Channel)
	var channelsMu sync.Mutex
	errCh := make(chan error, 2)

	go func() {
		if ringDialIsServerDial {
			errCh <- nil
			return
		}
		ch, err := netchan.Dial("tcp", cfg.RightNeighborAddress, string(cfg.Self))
		if err != nil {
			errCh <- fmt.Errorf("ring: dialing right neighbor at %s: %w", cfg.RightNeighborAddress, err)
			return
		}
		channelsMu.Lock()
		channels[RightNeighbor] = ch
		channelsMu.Unlock()
		errCh <- nil
	}()

	go func() {
		if cfg.Role != party.Client {
			errCh <- nil
			return
		}
		ch, err := netchan.Dial("tcp", cfg.ServerAddress, string(cfg.Self))
		if err != nil {
			errCh <- fmt.Errorf("ring: dialing server at %s: %w", cfg.ServerAddress, err)
			return
		}
		channelsMu.Lock()
		channels[ServerName] = ch
		if ringDialIsServerDial {
			channels[RightNeighbor] = ch
		}
		channelsMu.Unlock()
		errCh <- nil
	}()

	expectedAccepts := 1 // the left neighbor, always
	if cfg.Role == party.Server {
		expectedAccepts = len(cfg.PartyList) - 1 // every client, one of which is the left neighbor
	}
	for i := 0; i < expectedAccepts; i++ {
		conn, err := listener.Accept()
		if err != nil {
			return nil, fmt.Errorf("ring: accepting connection %d/%d: %w", i+1, expectedAccepts, err)
		}
		ch, name, err := netchan.Accept(conn)
		if err != nil {
			return nil, fmt.Errorf("ring: completing handshake on connection %d/%d: %w", i+1, expectedAccepts, err)
		}
		remote := party.ID(name)
		channelsMu.Lock()
		// A client's only accept is its left neighbor's ring dial; when that
		// neighbor is the server, it must not replace the client's own
		// dialed server channel.
		if cfg.Role == party.Server || remote != ServerName {
			channels[remote] = ch
		}
		if remote == leftNeighbor {
			channels[LeftNeighbor] = ch
		}
		channelsMu.Unlock()
	}

	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			return nil, err
		}
	}

	return NewChannelNetwork(cfg.Self, cfg.PartyList, channels, cfg.FieldByteWidth), nil
}

func indexOf(ids []party.ID, target party.ID) int {
	for i, id := range ids {
		if id == target {
			return i
		}
	}
	return -1
}
