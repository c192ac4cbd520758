package wire

import (
	"testing"

	"github.com/flashbots/shuffleround/crypto"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	pub, priv, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)

	payload := NewWriter(MessageData, RoundID("round-1")).WriteBytes([]byte("ciphertext")).Bytes()

	envelope, err := Seal(priv, payload)
	require.NoError(t, err)

	opened, err := Open(envelope, pub)
	require.NoError(t, err)
	require.Equal(t, payload, opened)
}

func TestOpenRejectsBadSignature(t *testing.T) {
	pub, priv, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)

	envelope, err := Seal(priv, []byte("hello"))
	require.NoError(t, err)

	envelope[0] ^= 0xFF // tamper with the payload, signature no longer matches

	_, err = Open(envelope, pub)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	_, priv, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)
	wrongPub, _, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)

	envelope, err := Seal(priv, []byte("hello"))
	require.NoError(t, err)

	_, err = Open(envelope, wrongPub)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestOpenRejectsShortEnvelope(t *testing.T) {
	pub, _, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)

	_, err = Open([]byte{1, 2, 3}, pub)
	require.ErrorIs(t, err, ErrShortEnvelope)
}
