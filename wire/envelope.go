package wire

import (
	"errors"
	"fmt"

	"github.com/flashbots/shuffleround/crypto"
)

// ErrShortEnvelope is returned by Open when data is too short to contain a signature.
var ErrShortEnvelope = errors.New("wire: envelope shorter than a signature")

// ErrBadSignature is returned by Open when the signature does not verify.
var ErrBadSignature = errors.New("wire: signature verification failed")

// Seal signs payload under signingKey and appends the signature, producing
// the outbound envelope: payload ‖ sign(signingKey, payload).
func Seal(signingKey crypto.SigningPrivateKey, payload []byte) ([]byte, error) {
	sig, err := signingKey.Sign(payload)
	if err != nil {
		return nil, fmt.Errorf("wire: sign envelope: %w", err)
	}

	envelope := make([]byte, 0, len(payload)+len(sig))
	envelope = append(envelope, payload...)
	envelope = append(envelope, sig.Bytes()...)
	return envelope, nil
}

// Open splits an inbound envelope into its payload and verifies the
// trailing signature under senderKey. It does not interpret the payload at
// all; the caller is responsible for checking the round id and dispatching
// on message type.
func Open(envelope []byte, senderKey crypto.SigningPublicKey) ([]byte, error) {
	if len(envelope) < crypto.SignatureSize {
		return nil, ErrShortEnvelope
	}

	split := len(envelope) - crypto.SignatureSize
	payload := envelope[:split]
	sig := crypto.Signature(envelope[split:])

	if !senderKey.Verify(payload, sig) {
		return nil, ErrBadSignature
	}

	return payload, nil
}
