package round

import "github.com/flashbots/shuffleround/group"

// Group is the directory contract a Round depends on: ring order, peer
// count, and per-peer verification keys. See package group for the
// concrete StaticGroup implementation.
type Group = group.Group

// ID identifies a peer within a Group.
type ID = group.ID

// Zero is the sentinel ring-order successor of the last peer.
const Zero = group.Zero

// Transport hands signed envelope bytes to other peers. A Round never
// calls Transport for messages addressed to its own local id; those are
// short-circuited directly into ProcessData.
type Transport interface {
	// Broadcast hands data to every peer in the group except the sender.
	Broadcast(data []byte, from ID)

	// Send hands data to exactly one peer.
	Send(data []byte, from, to ID)
}

// Host receives the outward-facing callbacks a Round makes over its
// lifetime: every delivered cleartext message, and exactly one terminal
// Close.
type Host interface {
	// PushData delivers one non-empty cleartext message recovered from the
	// shuffle. Called zero or more times, only on a successful round.
	PushData(cleartext []byte, r *Round)

	// Close marks the round terminal with a human-readable reason. Called
	// exactly once, whether the round succeeds or fails.
	Close(reason string)
}
