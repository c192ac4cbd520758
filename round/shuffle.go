package round

import (
	"bytes"

	"github.com/flashbots/shuffleround/onion"
	"github.com/flashbots/shuffleround/wire"
)

func cloneBlocks(blocks [][]byte) [][]byte {
	out := make([][]byte, len(blocks))
	for i, b := range blocks {
		out[i] = append([]byte(nil), b...)
	}
	return out
}

// Shuffle peels one outer layer off the gathered ciphertext vector,
// permutes the result, and passes it to the next peer in ring order (or
// broadcasts it, if this is the last peer). Duplicate ciphertexts or an
// outer-layer decryption failure escalate to blame instead.
func (r *Round) Shuffle() {
	r.state = Shuffling
	r.logger.Debug("round: shuffling", "local", r.group.Index(r.localID))

	for i := 0; i < len(r.shuffleCiphertext); i++ {
		for j := 0; j < len(r.shuffleCiphertext); j++ {
			if i == j {
				continue
			}
			if bytes.Equal(r.shuffleCiphertext[i], r.shuffleCiphertext[j]) {
				r.logger.Warn("round: found duplicate ciphertexts, entering blame")
				r.StartBlame()
				return
			}
		}
	}

	cleartexts, bad, err := onion.DecryptLayer(r.outerPriv, r.shuffleCiphertext)
	if err != nil {
		r.logger.Warn("round: failed to decrypt outer layer", "bad_indices", bad)
		r.StartBlame()
		return
	}

	if err := onion.Randomize(cleartexts); err != nil {
		r.logger.Error("round: failed to randomize shuffle blocks", "err", err)
		return
	}
	r.shuffleCleartext = cleartexts

	next := r.group.Next(r.localID)
	mtype := wire.MessageShuffleData
	if next == Zero {
		mtype = wire.MessageEncryptedData
	}

	payload := wire.NewWriter(mtype, r.roundID).
		WriteVector(r.shuffleCleartext).
		Bytes()

	r.state = ShuffleDone

	if mtype == wire.MessageEncryptedData {
		r.Broadcast(payload)
	} else {
		r.Send(payload, next)
	}
}

// HandleShuffle installs the shuffle vector passed by the previous peer
// in ring order and advances the shuffle.
func (r *Round) HandleShuffle(reader *wire.Reader, from ID) error {
	if r.state != WaitingForShuffle {
		return newFault(FaultMisordered, "received shuffle data in state %s", r.state)
	}
	if r.group.Previous(r.localID) != from {
		return newFault(FaultMisordered, "received shuffle data out of ring order from %v", from)
	}

	blocks, err := reader.ReadVector()
	if err != nil {
		return newFault(FaultMalformedField, "shuffle vector: %v", err)
	}

	r.shuffleCiphertext = cloneBlocks(blocks)
	r.Shuffle()
	return nil
}
