package onion

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/flashbots/shuffleround/crypto"
)

// EncryptLayers nests one encryption per key in pubs around plaintext:
//
//	encrypt(pubs[N-1], ... encrypt(pubs[1], encrypt(pubs[0], plaintext)) ...)
//
// The first key in the vector is applied first (innermost) and the last
// key is outermost. Combined with the reversed key-vector convention the
// round package uses (kidx = N-1-i), group peer 0's key is the outermost
// layer, so peeling proceeds in forward group-index order.
func EncryptLayers(pubs []crypto.EncryptionPublicKey, plaintext []byte) ([]byte, error) {
	ciphertext := plaintext
	for i := 0; i < len(pubs); i++ {
		enc, err := crypto.Encrypt(pubs[i], ciphertext)
		if err != nil {
			return nil, fmt.Errorf("onion: encrypt layer %d: %w", i, err)
		}
		ciphertext = enc.Bytes()
	}
	return ciphertext, nil
}

// DecryptLayer peels exactly one layer off every block in blocks
// independently, under the same private key. Blocks are decrypted
// positionally: cleartexts[i] corresponds to blocks[i]. Any block that
// fails to parse or decrypt is recorded in badIndices and omitted from
// further processing at that position (cleartexts[i] is left nil); the
// returned error is non-nil whenever badIndices is non-empty, but
// cleartexts always has the same length as blocks so callers can inspect
// the partial result.
func DecryptLayer(priv crypto.EncryptionPrivateKey, blocks [][]byte) (cleartexts [][]byte, badIndices []int, err error) {
	cleartexts = make([][]byte, len(blocks))

	for i, block := range blocks {
		msg, parseErr := crypto.ParseEncryptedMessage(block)
		if parseErr != nil {
			badIndices = append(badIndices, i)
			continue
		}

		plaintext, decErr := crypto.Decrypt(priv, msg)
		if decErr != nil {
			badIndices = append(badIndices, i)
			continue
		}

		cleartexts[i] = plaintext
	}

	if len(badIndices) > 0 {
		return cleartexts, badIndices, fmt.Errorf("onion: failed to decrypt %d of %d block(s)", len(badIndices), len(blocks))
	}

	return cleartexts, nil, nil
}

// Randomize permutes blocks in place using a uniform Fisher-Yates shuffle
// drawn from the process CSPRNG. The permutation is not reported back to
// the caller and must remain secret from every other participant for the
// shuffle to provide anonymity.
func Randomize[T any](blocks []T) error {
	for i := len(blocks) - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("onion: randomize: %w", err)
		}
		j := int(jBig.Int64())
		blocks[i], blocks[j] = blocks[j], blocks[i]
	}
	return nil
}
