package round

import (
	"github.com/flashbots/shuffleround/crypto"
	"github.com/flashbots/shuffleround/wire"
)

// BroadcastPublicKeys generates this peer's fresh inner and outer onion
// key pairs and broadcasts the public halves.
func (r *Round) BroadcastPublicKeys() {
	r.state = KeySharing

	innerPub, innerPriv, err := crypto.GenerateEncryptionKeyPair()
	if err != nil {
		r.logger.Error("round: failed to generate inner key pair", "err", err)
		return
	}
	outerPub, outerPriv, err := crypto.GenerateEncryptionKeyPair()
	if err != nil {
		r.logger.Error("round: failed to generate outer key pair", "err", err)
		return
	}

	r.innerPub, r.innerPriv = innerPub, innerPriv
	r.outerPub, r.outerPriv = outerPub, outerPriv

	payload := wire.NewWriter(wire.MessagePublicKeys, r.roundID).
		WriteBytes(innerPub.Bytes()).
		WriteBytes(outerPub.Bytes()).
		Bytes()

	r.Broadcast(payload)
}

// HandlePublicKeys records a peer's announced inner/outer public keys at
// their reversed slot (kidx). Once all N peers have announced, this peer
// submits its own onion-encrypted data.
func (r *Round) HandlePublicKeys(reader *wire.Reader, from ID) error {
	if r.state != Offline && r.state != KeySharing {
		return newFault(FaultMisordered, "received public keys in state %s", r.state)
	}

	idx := r.group.Index(from)
	if idx < 0 {
		return newFault(FaultUnknownPeer, "%v", from)
	}
	kidx := r.kidx(idx)

	if r.publicInnerSet[kidx] || r.publicOuterSet[kidx] {
		return newFault(FaultDuplicate, "duplicate public keys from %v", from)
	}

	innerBytes, err := reader.ReadBytes()
	if err != nil {
		return newFault(FaultMalformedField, "inner key: %v", err)
	}
	outerBytes, err := reader.ReadBytes()
	if err != nil {
		return newFault(FaultMalformedField, "outer key: %v", err)
	}

	innerKey, err := crypto.ParseEncryptionPublicKey(innerBytes)
	if err != nil {
		return newFault(FaultInvalidKey, "inner key: %v", err)
	}
	outerKey, err := crypto.ParseEncryptionPublicKey(outerBytes)
	if err != nil {
		return newFault(FaultInvalidKey, "outer key: %v", err)
	}

	r.publicInner[kidx] = innerKey
	r.publicInnerSet[kidx] = true
	r.publicOuter[kidx] = outerKey
	r.publicOuterSet[kidx] = true

	r.keysReceived++
	if r.keysReceived == r.group.Count() {
		r.keysReceived = 0
		r.SubmitData()
	}
	return nil
}
