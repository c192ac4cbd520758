package localtransport

import (
	"sync"

	"github.com/flashbots/shuffleround/group"
	"github.com/flashbots/shuffleround/round"
)

// peer is the subset of *round.Round that Network needs: just the
// inbound entry point. Declared as an interface so tests can register
// stand-ins without constructing a full Round.
type peer interface {
	ProcessData(data []byte, from group.ID)
}

// Network is an in-process fan-out transport for a fixed set of round
// instances. It implements round.Transport. Self-addressed messages are
// never delivered here: round.Round's Broadcast/Send call ProcessData
// directly for the local id before reaching the transport at all.
//
// round.Round documents ProcessData as single-threaded: it has no
// synchronization of its own and relies on its caller to serialize
// delivery per instance. Broadcast and Send hold a chainMutex across
// each target's ProcessData call, not just the map lookup, so that
// contract is actually enforced here rather than merely assumed.
type Network struct {
	mu    sync.Mutex
	peers map[group.ID]peer
	locks map[group.ID]*chainMutex
}

// NewNetwork creates an empty network.
func NewNetwork() *Network {
	return &Network{
		peers: make(map[group.ID]peer),
		locks: make(map[group.ID]*chainMutex),
	}
}

// Register adds a round instance to the network under id. Must be called
// for every peer before Start is called on any of them.
func (n *Network) Register(id group.ID, r *round.Round) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.peers[id] = r
	n.locks[id] = newChainMutex()
}

type dispatchTarget struct {
	id   group.ID
	p    peer
	lock *chainMutex
}

// Broadcast hands data to every registered peer except from.
func (n *Network) Broadcast(data []byte, from group.ID) {
	n.mu.Lock()
	targets := make([]dispatchTarget, 0, len(n.peers))
	for id, p := range n.peers {
		if id == from {
			continue
		}
		targets = append(targets, dispatchTarget{id: id, p: p, lock: n.locks[id]})
	}
	n.mu.Unlock()

	for _, t := range targets {
		t.lock.Lock()
		t.p.ProcessData(data, from)
		t.lock.Unlock()
	}
}

// Send hands data to exactly one registered peer.
func (n *Network) Send(data []byte, from, to group.ID) {
	n.mu.Lock()
	p, ok := n.peers[to]
	lock := n.locks[to]
	n.mu.Unlock()

	if !ok {
		return
	}

	lock.Lock()
	p.ProcessData(data, from)
	lock.Unlock()
}
