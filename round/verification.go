package round

import (
	"bytes"

	"github.com/flashbots/shuffleround/crypto"
	"github.com/flashbots/shuffleround/wire"
)

// HandleDataBroadcast installs the final shuffled vector broadcast by the
// last peer in ring order and runs this peer's verification check.
func (r *Round) HandleDataBroadcast(reader *wire.Reader, from ID) error {
	if r.state != ShuffleDone {
		return newFault(FaultMisordered, "received data broadcast in state %s", r.state)
	}
	if r.group.Index(from) != r.group.Count()-1 {
		return newFault(FaultUnknownPeer, "data broadcast from non-terminal peer %v", from)
	}

	blocks, err := reader.ReadVector()
	if err != nil {
		return newFault(FaultMalformedField, "encrypted data: %v", err)
	}

	r.encryptedData = cloneBlocks(blocks)
	r.Verify()
	return nil
}

// Verify checks whether the common shuffled view holds exactly one block
// per group member and this peer's own inner-layer ciphertext appears in
// it, and broadcasts a Go (with the agreed hash) or
// NoGo vote accordingly.
func (r *Round) Verify() {
	found := false
	if len(r.encryptedData) == r.group.Count() {
		for _, block := range r.encryptedData {
			if bytes.Equal(block, r.innerCiphertext) {
				found = true
				break
			}
		}
	}

	if found {
		r.state = Verification
	} else {
		r.logger.Warn("round: did not find our message in the shuffled ciphertexts")
	}

	mtype := wire.MessageNoGo
	if found {
		mtype = wire.MessageGo
	}

	w := wire.NewWriter(mtype, r.roundID)

	if found {
		h := crypto.NewHasher()
		for i := range r.publicInner {
			h.Update(r.publicInner[i].Bytes())
			h.Update(r.publicOuter[i].Bytes())
			h.Update(r.encryptedData[i])
		}
		r.broadcastHash = h.Sum()
		w.WriteBytes(r.broadcastHash.Bytes())
	}

	r.Broadcast(w.Bytes())
}

// HandleVerification records one peer's Go/NoGo vote. Once all N votes
// are in, the round proceeds to private-key reveal if every peer voted Go
// with an agreeing hash, or escalates to blame otherwise.
func (r *Round) HandleVerification(reader *wire.Reader, vote bool, from ID) error {
	if r.state != Verification && r.state != ShuffleDone {
		return newFault(FaultMisordered, "received a Go/NoGo message in state %s", r.state)
	}

	idx := r.group.Index(from)
	if idx < 0 {
		return newFault(FaultUnknownPeer, "%v", from)
	}
	if r.goReceived[idx] {
		return newFault(FaultDuplicate, "duplicate verification vote from %v", from)
	}

	r.goReceived[idx] = true
	r.goVotes[idx] = vote

	if vote {
		hashBytes, err := reader.ReadBytes()
		if err != nil {
			return newFault(FaultMalformedField, "broadcast hash: %v", err)
		}
		if len(hashBytes) != len(crypto.Hash{}) {
			return newFault(FaultMalformedField, "broadcast hash has wrong length %d", len(hashBytes))
		}
		copy(r.broadcastHashes[idx][:], hashBytes)
	}

	r.goCount++
	if r.goCount < r.group.Count() {
		return nil
	}

	for i := 0; i < r.group.Count(); i++ {
		if !r.goVotes[i] || !r.broadcastHashes[i].Equal(r.broadcastHash) {
			r.StartBlame()
			return nil
		}
	}
	r.BroadcastPrivateKey()
	return nil
}
