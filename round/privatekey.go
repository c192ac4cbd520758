package round

import (
	"github.com/flashbots/shuffleround/crypto"
	"github.com/flashbots/shuffleround/onion"
	"github.com/flashbots/shuffleround/wire"
)

// BroadcastPrivateKey reveals this peer's inner private key once the
// group has unanimously voted Go on the same shuffle output.
func (r *Round) BroadcastPrivateKey() {
	r.logger.Debug("round: sufficient go messages, broadcasting private key",
		"local", r.group.Index(r.localID))

	payload := wire.NewWriter(wire.MessagePrivateKey, r.roundID).
		WriteBytes(r.innerPriv.Bytes()).
		Bytes()

	r.Broadcast(payload)
}

// HandlePrivateKey records a peer's revealed inner private key, checking
// it against the public key that peer announced during key sharing. Once
// all N inner private keys are in, the round decrypts the final layer.
func (r *Round) HandlePrivateKey(reader *wire.Reader, from ID) error {
	if r.state != Verification && r.state != PrivateKeySharing {
		return newFault(FaultMisordered, "received a private key message in state %s", r.state)
	}

	idx := r.group.Index(from)
	if idx < 0 {
		return newFault(FaultUnknownPeer, "%v", from)
	}
	if r.privateInnerSet[idx] {
		return newFault(FaultDuplicate, "duplicate private key message from %v", from)
	}

	keyBytes, err := reader.ReadBytes()
	if err != nil {
		return newFault(FaultMalformedField, "private key: %v", err)
	}

	priv, err := crypto.ParseEncryptionPrivateKey(keyBytes)
	if err != nil {
		return newFault(FaultInvalidKey, "%v", err)
	}

	kidx := r.kidx(idx)
	if !priv.Equal(r.publicInner[kidx]) {
		return newFault(FaultKeyMismatch, "revealed inner key does not match the announced public key for %v", from)
	}

	r.privateInner[idx] = priv
	r.privateInnerSet[idx] = true

	r.innerKeysReceived++
	if r.innerKeysReceived == r.group.Count() {
		r.innerKeysReceived = 0
		r.Decrypt()
	}
	return nil
}

// Decrypt peels the final inner layer off the common shuffled view using
// every peer's now-revealed private key, and delivers every recovered
// non-empty message to the host. A decryption failure at this phase ends
// the round unsuccessfully without engaging blame: the signed hash
// agreement step already committed the group to this shuffle output.
func (r *Round) Decrypt() {
	r.state = Decryption

	cleartexts := r.encryptedData
	for i := range r.privateInner {
		tmp, bad, err := onion.DecryptLayer(r.privateInner[i], cleartexts)
		if err != nil {
			r.logger.Warn("round: failed to decrypt final layer",
				"local", r.group.Index(r.localID), "bad_indices", bad)
			r.state = Finished
			r.host.Close("Round unsuccessfully finished.")
			return
		}
		cleartexts = tmp
	}

	for _, ct := range cleartexts {
		msg := wire.Unframe(r.blockSize, ct)
		if len(msg) == 0 {
			continue
		}
		r.host.PushData(append([]byte(nil), msg...), r)
	}

	r.successful = true
	r.state = Finished
	r.logger.Debug("round: finished successfully", "local", r.group.Index(r.localID))
	r.host.Close("Round successfully finished.")
}
