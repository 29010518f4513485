// Package party defines participant identifiers and roles shared across the
// OT-MPSI packages.
package party

import "sort"

// ID identifies a single participant on the ring. Names are the padded,
// human-readable handshake names exchanged over the wire (see pkg/netchan).
type ID string

// Role distinguishes the single server from the N-1 clients.
type Role uint8

const (
	// Client holds one of the input sets and never learns the intersection.
	Client Role = iota
	// Server learns which of its own elements occur at least threshold times.
	Server
)

func (r Role) String() string {
	if r == Server {
		return "server"
	}
	return "client"
}

// IDSlice is a sortable list of party IDs, mirroring the ordering guarantees
// the ring topology depends on (see pkg/ring).
type IDSlice []ID

func (p IDSlice) Len() int           { return len(p) }
func (p IDSlice) Less(i, j int) bool { return p[i] < p[j] }
func (p IDSlice) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }

// Sort returns a sorted copy of ids.
func Sort(ids []ID) IDSlice {
	out := make(IDSlice, len(ids))
	copy(out, ids)
	sort.Sort(out)
	return out
}

// Contains reports whether id appears in ids.
func Contains(ids []ID, id ID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
