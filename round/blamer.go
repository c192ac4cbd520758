package round

import (
	"bytes"

	"github.com/flashbots/shuffleround/crypto"
	"github.com/flashbots/shuffleround/msglog"
	"github.com/flashbots/shuffleround/onion"
	"github.com/flashbots/shuffleround/wire"
)

// ShuffleBlamer deterministically replays a failed round from the signed
// logs and revealed outer private keys exchanged during blame, and
// accuses any peer whose behavior cannot be explained by a correctly
// executing protocol. It runs only when no peer's blame-verification
// claims were found to diverge (BlameRound falls back to it when
// validBlames is entirely empty).
type ShuffleBlamer struct {
	group        Group
	roundID      wire.RoundID
	logs         []*msglog.Log
	privateOuter []crypto.EncryptionPrivateKey

	badNodes []bool
}

// NewShuffleBlamer constructs a replay over every peer's revealed
// transcript and outer private key, indexed by natural group index.
func NewShuffleBlamer(g Group, roundID wire.RoundID, logs []*msglog.Log, privateOuter []crypto.EncryptionPrivateKey) *ShuffleBlamer {
	return &ShuffleBlamer{
		group:        g,
		roundID:      roundID,
		logs:         logs,
		privateOuter: privateOuter,
		badNodes:     make([]bool, g.Count()),
	}
}

// BadNodes reports, by natural group index, which peers the replay accused.
func (b *ShuffleBlamer) BadNodes() []bool {
	return append([]bool(nil), b.badNodes...)
}

func (b *ShuffleBlamer) accuse(idx int) {
	if idx >= 0 && idx < len(b.badNodes) {
		b.badNodes[idx] = true
	}
}

// openEntry verifies and parses one logged envelope without any state-
// machine gating: the replay only cares about well-formed, correctly
// signed, correctly-rounded fields, not about the order they arrived in.
func (b *ShuffleBlamer) openEntry(e msglog.Entry) (wire.MessageType, *wire.Reader, bool) {
	senderKey, ok := b.group.Key(e.From)
	if !ok {
		return 0, nil, false
	}
	payload, err := wire.Open(e.Data, senderKey)
	if err != nil {
		return 0, nil, false
	}
	reader := wire.NewReader(payload)
	msgType, rid, err := reader.ReadHeader()
	if err != nil || !rid.Equal(b.roundID) {
		return 0, nil, false
	}
	return msgType, reader, true
}

// Start runs the replay:
//
//  1. Reconstructs the gathered shuffle-ciphertext vector from peer 0's
//     log (only peer 0 ever receives Data messages directly) and accuses
//     any peers whose submitted ciphertext is byte-identical.
//  2. Independently re-derives peer 0's outer-layer peel using the
//     revealed outer private key; any block that fails to decrypt
//     implicates its submitter.
//  3. Finds the terminal EncryptedData broadcast (identical across every
//     honest peer's log) and accuses its sender if the vector's length
//     does not match the group size.
//  4. If the broadcast vector is well-formed and at least one peer's
//     majority vote is Go, accuses any peer whose majority vote is NoGo:
//     a well-formed common view confirmed by a Go vote leaves no innocent
//     explanation for a dissenting vote visible to this replay.
func (b *ShuffleBlamer) Start() {
	n := b.group.Count()

	b.replayDataSubmissions(n)
	b.replayBroadcastAndVotes(n)
}

func (b *ShuffleBlamer) replayDataSubmissions(n int) {
	peer0 := b.group.ID(0)
	idx0 := b.group.Index(peer0)
	if idx0 < 0 || idx0 >= len(b.logs) || b.logs[idx0] == nil {
		return
	}

	shuffleCiphertext := make([][]byte, n)
	for _, e := range b.logs[idx0].Entries() {
		msgType, reader, ok := b.openEntry(e)
		if !ok || msgType != wire.MessageData {
			continue
		}
		data, err := reader.ReadBytes()
		if err != nil {
			continue
		}
		idx := b.group.Index(e.From)
		if idx < 0 {
			continue
		}
		shuffleCiphertext[idx] = data
	}

	for i := 0; i < n; i++ {
		if shuffleCiphertext[i] == nil {
			continue
		}
		for j := i + 1; j < n; j++ {
			if shuffleCiphertext[j] == nil {
				continue
			}
			if bytes.Equal(shuffleCiphertext[i], shuffleCiphertext[j]) {
				b.accuse(i)
				b.accuse(j)
			}
		}
	}

	if idx0 >= len(b.privateOuter) {
		return
	}
	present := make([]int, 0, n)
	blocks := make([][]byte, 0, n)
	for i, ct := range shuffleCiphertext {
		if ct == nil {
			continue
		}
		present = append(present, i)
		blocks = append(blocks, ct)
	}
	_, bad, err := onion.DecryptLayer(b.privateOuter[idx0], blocks)
	if err != nil {
		for _, badPos := range bad {
			b.accuse(present[badPos])
		}
	}
}

func (b *ShuffleBlamer) replayBroadcastAndVotes(n int) {
	var broadcastVector [][]byte
	var broadcastFrom ID
	haveBroadcast := false

	// Every peer's log carries its own record of what it saw each voter
	// broadcast. A voter's broadcast can reach different observers
	// differently (a malicious transport, or the voter equivocating), so
	// a vote is only trusted once a majority of the logs that recorded
	// anything for that voter agree on it.
	goCounts := make(map[int]int)
	noGoCounts := make(map[int]int)
	hashCounts := make(map[int]map[string]int)

	for _, log := range b.logs {
		if log == nil {
			continue
		}
		for _, e := range log.Entries() {
			msgType, reader, ok := b.openEntry(e)
			if !ok {
				continue
			}
			idx := b.group.Index(e.From)
			if idx < 0 {
				continue
			}
			switch msgType {
			case wire.MessageEncryptedData:
				if haveBroadcast {
					continue
				}
				vec, err := reader.ReadVector()
				if err != nil {
					continue
				}
				broadcastVector = vec
				broadcastFrom = e.From
				haveBroadcast = true
			case wire.MessageGo:
				hash, err := reader.ReadBytes()
				if err != nil {
					continue
				}
				goCounts[idx]++
				if hashCounts[idx] == nil {
					hashCounts[idx] = map[string]int{}
				}
				hashCounts[idx][string(hash)]++
			case wire.MessageNoGo:
				noGoCounts[idx]++
			}
		}
	}

	if !haveBroadcast {
		return
	}

	if len(broadcastVector) != n {
		b.accuse(b.group.Index(broadcastFrom))
		return
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if bytes.Equal(broadcastVector[i], broadcastVector[j]) {
				// Already covered by the data-submission duplicate check,
				// but a duplicate surviving to the broadcast vector is
				// independently disqualifying for a "well-formed" view.
				return
			}
		}
	}

	majorityVote := make(map[int]bool)
	for i := 0; i < n; i++ {
		if goCounts[i] == noGoCounts[i] {
			continue
		}
		majorityVote[i] = goCounts[i] > noGoCounts[i]
	}

	var majorityHash string
	hashTotals := map[string]int{}
	for idx, went := range majorityVote {
		if !went {
			continue
		}
		for h, c := range hashCounts[idx] {
			hashTotals[h] += c
			if majorityHash == "" || hashTotals[h] > hashTotals[majorityHash] {
				majorityHash = h
			}
		}
	}
	if majorityHash == "" {
		return
	}

	for idx, went := range majorityVote {
		if !went {
			b.accuse(idx)
		}
	}
}
