package msglog

import (
	"github.com/flashbots/shuffleround/group"
	"github.com/flashbots/shuffleround/wire"
)

// Entry is one accepted message: the raw signed envelope bytes as received
// on the wire, tagged with the sender that produced it.
type Entry struct {
	From group.ID
	Data []byte
}

// Log is an append-only record of every message a round has accepted,
// in arrival order. It backs the blame transcript: a peer under suspicion
// replays its own log, and other peers replay it too, to find where the
// two diverge.
type Log struct {
	entries []Entry
}

// New returns an empty log.
func New() *Log {
	return &Log{}
}

// Append records data as having arrived from sender, in arrival order.
func (l *Log) Append(data []byte, from group.ID) {
	// Entry.Data must not alias the caller's backing array: callers sometimes
	// hand us a slice into a Reader's buffer that gets reused on the next message.
	cloned := append([]byte(nil), data...)
	l.entries = append(l.entries, Entry{From: from, Data: cloned})
}

// Pop removes the most recently appended entry. Used to roll back an
// Append when the message that followed it turned out to be invalid.
func (l *Log) Pop() {
	if len(l.entries) == 0 {
		return
	}
	l.entries = l.entries[:len(l.entries)-1]
}

// Len returns the number of entries currently recorded.
func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns the recorded entries in arrival order. The returned
// slice is owned by the caller; it does not alias the log's internal state.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Serialize produces a deterministic, bit-stable encoding of the log:
// a count followed by each entry's (from, data) pair in arrival order.
// Any two peers with identical logs produce byte-identical output, which
// is what lets a blame hash over this output mean anything.
func (l *Log) Serialize() []byte {
	w := wire.NewRawWriter()
	w.WriteUint32(uint32(len(l.entries)))
	for _, e := range l.entries {
		w.WriteBytes([]byte(e.From))
		w.WriteBytes(e.Data)
	}
	return w.Bytes()
}
