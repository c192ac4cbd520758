package round

import (
	"bytes"

	"github.com/flashbots/shuffleround/onion"
	"github.com/flashbots/shuffleround/wire"
)

// SubmitData onion-encrypts this peer's own framed payload, first under
// the inner key vector and then under the outer key vector, and sends the
// resulting outer ciphertext to peer 0 to begin the shuffle gather.
func (r *Round) SubmitData() {
	r.state = DataSubmission

	innerCiphertext, err := onion.EncryptLayers(r.publicInner, r.data)
	if err != nil {
		r.logger.Error("round: failed to encrypt inner layer", "err", err)
		return
	}
	r.innerCiphertext = innerCiphertext

	outerCiphertext, err := onion.EncryptLayers(r.publicOuter, innerCiphertext)
	if err != nil {
		r.logger.Error("round: failed to encrypt outer layer", "err", err)
		return
	}
	r.outerCiphertext = outerCiphertext

	payload := wire.NewWriter(wire.MessageData, r.roundID).
		WriteBytes(outerCiphertext).
		Bytes()

	r.state = WaitingForShuffle
	r.Send(payload, r.group.ID(0))
}

// HandleData is peer 0's collection point for every peer's submitted
// outer ciphertext. Once all N have arrived, the shuffle begins.
func (r *Round) HandleData(reader *wire.Reader, from ID) error {
	if r.state != KeySharing && r.state != DataSubmission && r.state != WaitingForShuffle {
		return newFault(FaultMisordered, "received data in state %s", r.state)
	}

	if r.group.Index(r.localID) != 0 {
		return newFault(FaultMisordered, "received a data message while not peer 0")
	}

	data, err := reader.ReadBytes()
	if err != nil {
		return newFault(FaultMalformedField, "data: %v", err)
	}
	if len(data) == 0 {
		return newFault(FaultMalformedField, "received null data")
	}

	idx := r.group.Index(from)
	if idx < 0 {
		return newFault(FaultUnknownPeer, "%v", from)
	}

	if r.shuffleCiphertext[idx] != nil {
		if !bytes.Equal(r.shuffleCiphertext[idx], data) {
			return newFault(FaultDuplicate, "received a distinct second data message from %v", from)
		}
		return newFault(FaultDuplicate, "received a retransmitted data message from %v", from)
	}

	cloned := append([]byte(nil), data...)
	r.shuffleCiphertext[idx] = cloned

	r.dataReceived++
	if r.dataReceived == r.group.Count() {
		r.dataReceived = 0
		r.Shuffle()
	}
	return nil
}
