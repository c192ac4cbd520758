package onion

import (
	"bytes"
	"testing"

	"github.com/flashbots/shuffleround/crypto"
	"github.com/stretchr/testify/require"
)

func generateKeys(t *testing.T, n int) ([]crypto.EncryptionPublicKey, []crypto.EncryptionPrivateKey) {
	t.Helper()
	pubs := make([]crypto.EncryptionPublicKey, n)
	privs := make([]crypto.EncryptionPrivateKey, n)
	for i := 0; i < n; i++ {
		pub, priv, err := crypto.GenerateEncryptionKeyPair()
		require.NoError(t, err)
		pubs[i] = pub
		privs[i] = priv
	}
	return pubs, privs
}

// TestRoundTripReverseOrder verifies the round-trip law from the spec:
// decrypt_layers(privs_reverse, encrypt_layers(pubs, m)) = m where
// privs_reverse iterates private keys in reverse of encryption order.
func TestRoundTripReverseOrder(t *testing.T) {
	const n = 4
	pubs, privs := generateKeys(t, n)

	plaintext := []byte("a message that needs every layer peeled off")

	ciphertext, err := EncryptLayers(pubs, plaintext)
	require.NoError(t, err)

	// Encryption nests pubs[N-1](...pubs[1](pubs[0](m))), so the outer-most
	// layer was encrypted under pubs[N-1] and must be peeled first.
	current := ciphertext
	for i := n - 1; i >= 0; i-- {
		cleartexts, bad, err := DecryptLayer(privs[i], [][]byte{current})
		require.NoError(t, err)
		require.Empty(t, bad)
		current = cleartexts[0]
	}

	require.Equal(t, plaintext, current)
}

func TestDecryptLayerPositionalCorrespondence(t *testing.T) {
	pubs, privs := generateKeys(t, 1)

	msgs := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	var blocks [][]byte
	for _, m := range msgs {
		ct, err := EncryptLayers(pubs, m)
		require.NoError(t, err)
		blocks = append(blocks, ct)
	}

	cleartexts, bad, err := DecryptLayer(privs[0], blocks)
	require.NoError(t, err)
	require.Empty(t, bad)
	require.Len(t, cleartexts, len(msgs))
	for i, m := range msgs {
		require.Equal(t, m, cleartexts[i])
	}
}

func TestDecryptLayerReportsBadIndices(t *testing.T) {
	pubs, privs := generateKeys(t, 1)

	good, err := EncryptLayers(pubs, []byte("good block"))
	require.NoError(t, err)

	otherPubs, _ := generateKeys(t, 1)
	wrongKey, err := EncryptLayers(otherPubs, []byte("wrong recipient"))
	require.NoError(t, err)

	blocks := [][]byte{good, []byte("not even a valid envelope"), wrongKey}
	cleartexts, bad, err := DecryptLayer(privs[0], blocks)
	require.Error(t, err)
	require.Equal(t, []int{1, 2}, bad)
	require.Equal(t, []byte("good block"), cleartexts[0])
	require.Nil(t, cleartexts[1])
	require.Nil(t, cleartexts[2])
}

func TestRandomizeIsPermutation(t *testing.T) {
	blocks := []int{0, 1, 2, 3, 4, 5, 6, 7}
	original := append([]int{}, blocks...)

	require.NoError(t, Randomize(blocks))

	require.ElementsMatch(t, original, blocks)
}

func TestRandomizeEventuallyPermutes(t *testing.T) {
	original := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	changed := false
	for i := 0; i < 50 && !changed; i++ {
		blocks := append([]int{}, original...)
		require.NoError(t, Randomize(blocks))
		if !equalSlices(blocks, original) {
			changed = true
		}
	}

	require.True(t, changed, "randomize never produced a different order across 50 trials")
}

func equalSlices(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEncryptLayersOrderMatters(t *testing.T) {
	pubs, _ := generateKeys(t, 2)
	reversed := []crypto.EncryptionPublicKey{pubs[1], pubs[0]}

	a, err := EncryptLayers(pubs, []byte("hello"))
	require.NoError(t, err)
	b, err := EncryptLayers(reversed, []byte("hello"))
	require.NoError(t, err)

	require.False(t, bytes.Equal(a, b), "different key orders should not coincidentally match (astronomically unlikely with random ephemeral keys, but also structurally different ciphertexts)")
}
