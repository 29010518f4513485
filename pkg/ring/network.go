// Package ring implements the named-channel ring topology the orchestrator
// runs over: a server plus N-1 clients, each holding a point-to-point
// channel to its right neighbor, an accepted channel named for its left
// neighbor, and full named connections to every other party for broadcast/
// collect exchanges during setup and mutual decryption.
package ring

import (
	"fmt"
	"math/big"

	"github.com/otmpsi2023/OT-MP-PSI/pkg/elgamal"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/netchan"
	"github.com/otmpsi2023/OT-MP-PSI/pkg/party"
)

// Ring-adjacency channel names, distinct from any party's own ID: every
// participant dials its right neighbor under RightNeighbor and accepts its
// left neighbor's connection under LeftNeighbor. ServerName is how clients
// address the server in the all-to-all party list.
const (
	RightNeighbor party.ID = "right"
	LeftNeighbor  party.ID = "left"
	ServerName    party.ID = "server"
)

// Network is everything the protocol orchestrator needs from the transport
// layer: named point-to-point exchange of field elements and ciphertexts,
// plus broadcast/collect across the full party list (excluding self).
type Network interface {
	Self() party.ID
	PartyList() []party.ID

	SendZZ(remote party.ID, n *big.Int) error
	ReceiveZZ(remote party.ID) (*big.Int, error)
	SendCiphertext(remote party.ID, c elgamal.Ciphertext) error
	ReceiveCiphertext(remote party.ID) (elgamal.Ciphertext, error)

	BroadcastZZ(n *big.Int) error
	CollectZZ() ([]*big.Int, error)
	BroadcastCiphertext(c elgamal.Ciphertext) error
	CollectCiphertext() ([]elgamal.Ciphertext, error)
}

// ChannelNetwork implements Network over a fixed map of named pkg/netchan
// channels, one per reachable remote (ring neighbors plus every other
// party). It is shared by the production TCP transport and the in-memory
// simulation network (internal/simnet), since both ultimately hand it
// *netchan.Channel values wrapping either a real net.Conn or a net.Pipe.
type ChannelNetwork struct {
	self     party.ID
	partyIDs []party.ID
	channels map[party.ID]*netchan.Channel
	width    int // fixed wire width, in bytes, of a field element
}

// NewChannelNetwork builds a Network given the full party list (excluding
// the ring-adjacency pseudo-names) and a channel for every name the
// participant needs to reach, including RightNeighbor/LeftNeighbor.
func NewChannelNetwork(self party.ID, partyIDs []party.ID, channels map[party.ID]*netchan.Channel, width int) *ChannelNetwork {
	return &ChannelNetwork{self: self, partyIDs: partyIDs, channels: channels, width: width}
}

func (n *ChannelNetwork) Self() party.ID         { return n.self }
func (n *ChannelNetwork) PartyList() []party.ID  { return n.partyIDs }

func (n *ChannelNetwork) channel(remote party.ID) (*netchan.Channel, error) {
	ch, ok := n.channels[remote]
	if !ok {
		return nil, fmt.Errorf("ring: no channel to %q", remote)
	}
	return ch, nil
}

// SendZZ sends a single field element to remote.
func (n *ChannelNetwork) SendZZ(remote party.ID, x *big.Int) error {
	ch, err := n.channel(remote)
	if err != nil {
		return err
	}
	return ch.WriteBigInt(x, n.width)
}

// ReceiveZZ receives a single field element from remote.
func (n *ChannelNetwork) ReceiveZZ(remote party.ID) (*big.Int, error) {
	ch, err := n.channel(remote)
	if err != nil {
		return nil, err
	}
	return ch.ReadBigInt(n.width)
}

// SendCiphertext sends both ElGamal components to remote, c1 then c2.
func (n *ChannelNetwork) SendCiphertext(remote party.ID, c elgamal.Ciphertext) error {
	if err := n.SendZZ(remote, c.C1); err != nil {
		return err
	}
	return n.SendZZ(remote, c.C2)
}

// ReceiveCiphertext receives both ElGamal components from remote, c1 then c2.
func (n *ChannelNetwork) ReceiveCiphertext(remote party.ID) (elgamal.Ciphertext, error) {
	c1, err := n.ReceiveZZ(remote)
	if err != nil {
		return elgamal.Ciphertext{}, err
	}
	c2, err := n.ReceiveZZ(remote)
	if err != nil {
		return elgamal.Ciphertext{}, err
	}
	return elgamal.Ciphertext{C1: c1, C2: c2}, nil
}

// remotesExcludingSelf returns the party list with self filtered out,
// matching BroadcastZz/CollectZz's "skip local_name" loop.
func (n *ChannelNetwork) remotesExcludingSelf() []party.ID {
	out := make([]party.ID, 0, len(n.partyIDs))
	for _, id := range n.partyIDs {
		if id != n.self {
			out = append(out, id)
		}
	}
	return out
}

// BroadcastZZ sends x to every other party in the list.
func (n *ChannelNetwork) BroadcastZZ(x *big.Int) error {
	for _, remote := range n.remotesExcludingSelf() {
		if err := n.SendZZ(remote, x); err != nil {
			return fmt.Errorf("ring: broadcast to %q: %w", remote, err)
		}
	}
	return nil
}

// CollectZZ receives one field element from every other party in the list,
// in list order.
func (n *ChannelNetwork) CollectZZ() ([]*big.Int, error) {
	out := make([]*big.Int, 0, len(n.partyIDs)-1)
	for _, remote := range n.remotesExcludingSelf() {
		x, err := n.ReceiveZZ(remote)
		if err != nil {
			return nil, fmt.Errorf("ring: collect from %q: %w", remote, err)
		}
		out = append(out, x)
	}
	return out, nil
}

// BroadcastCiphertext sends c to every other party in the list.
func (n *ChannelNetwork) BroadcastCiphertext(c elgamal.Ciphertext) error {
	for _, remote := range n.remotesExcludingSelf() {
		if err := n.SendCiphertext(remote, c); err != nil {
			return fmt.Errorf("ring: broadcast ciphertext to %q: %w", remote, err)
		}
	}
	return nil
}

// CollectCiphertext receives one ciphertext from every other party in the
// list, in list order.
func (n *ChannelNetwork) CollectCiphertext() ([]elgamal.Ciphertext, error) {
	out := make([]elgamal.Ciphertext, 0, len(n.partyIDs)-1)
	for _, remote := range n.remotesExcludingSelf() {
		c, err := n.ReceiveCiphertext(remote)
		if err != nil {
			return nil, fmt.Errorf("ring: collect ciphertext from %q: %w", remote, err)
		}
		out = append(out, c)
	}
	return out, nil
}
