// Package group defines the group directory contract the round depends on
// (an immutable ordered list of N peer identifiers, each with a known
// signing key) and provides StaticGroup, a simple in-memory implementation
// suitable for tests and the demo CLI. The round package only ever depends
// on the Group interface; production deployments can back it with a
// directory service instead.
package group

import (
	"fmt"

	"github.com/flashbots/shuffleround/crypto"
)

// ID identifies a peer. The zero value (empty string) is reserved as the
// ring-order sentinel: Next of the last peer yields ID("").
type ID string

// Zero is the sentinel ring-order successor of the last peer.
const Zero ID = ""

// Group is an immutable ordered list of N >= 2 peer identifiers, each with
// a known public signing key.
type Group interface {
	// Count returns N, the number of peers in the group.
	Count() int

	// Index returns the 0-based position of id in the group, or -1 if id
	// is not a member.
	Index(id ID) int

	// ID returns the peer identifier at position i (0 <= i < Count()).
	ID(i int) ID

	// Previous returns the peer immediately before id in ring order, or
	// Zero if id is not a member or is the first peer.
	Previous(id ID) ID

	// Next returns the peer immediately after id in ring order; Next of
	// the last peer yields Zero.
	Next(id ID) ID

	// Key returns the verification key for id, or false if id is unknown.
	Key(id ID) (crypto.SigningPublicKey, bool)
}

// Member is one entry in a StaticGroup's roster.
type Member struct {
	ID  ID
	Key crypto.SigningPublicKey
}

// StaticGroup is an immutable, in-memory Group built from a fixed roster.
// Roster order IS ring order and group index.
type StaticGroup struct {
	members []Member
	index   map[ID]int
}

// NewStaticGroup builds a StaticGroup from an ordered roster. It returns an
// error if the roster has fewer than two members, contains a duplicate id,
// or contains the reserved Zero id.
func NewStaticGroup(members []Member) (*StaticGroup, error) {
	if len(members) < 2 {
		return nil, fmt.Errorf("group: need at least 2 members, got %d", len(members))
	}

	index := make(map[ID]int, len(members))
	for i, m := range members {
		if m.ID == Zero {
			return nil, fmt.Errorf("group: member %d uses the reserved zero id", i)
		}
		if _, exists := index[m.ID]; exists {
			return nil, fmt.Errorf("group: duplicate member id %q", m.ID)
		}
		index[m.ID] = i
	}

	cloned := make([]Member, len(members))
	copy(cloned, members)

	return &StaticGroup{members: cloned, index: index}, nil
}

// Count returns N.
func (g *StaticGroup) Count() int {
	return len(g.members)
}

// Index returns the 0-based position of id, or -1 if unknown.
func (g *StaticGroup) Index(id ID) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	return -1
}

// ID returns the peer identifier at position i.
func (g *StaticGroup) ID(i int) ID {
	if i < 0 || i >= len(g.members) {
		return Zero
	}
	return g.members[i].ID
}

// Previous returns the peer immediately before id in ring order.
func (g *StaticGroup) Previous(id ID) ID {
	i := g.Index(id)
	if i <= 0 {
		return Zero
	}
	return g.members[i-1].ID
}

// Next returns the peer immediately after id in ring order; Next of the
// last peer yields Zero.
func (g *StaticGroup) Next(id ID) ID {
	i := g.Index(id)
	if i < 0 || i == len(g.members)-1 {
		return Zero
	}
	return g.members[i+1].ID
}

// Key returns the verification key for id.
func (g *StaticGroup) Key(id ID) (crypto.SigningPublicKey, bool) {
	i := g.Index(id)
	if i < 0 {
		return nil, false
	}
	return g.members[i].Key, true
}
