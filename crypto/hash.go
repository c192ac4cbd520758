package crypto

import (
	"golang.org/x/crypto/sha3"
)

// Hash is the fixed-size digest produced by a Hasher.
type Hash [32]byte

// Bytes returns the digest bytes.
func (h Hash) Bytes() []byte {
	return h[:]
}

// Equal reports whether two digests are identical.
func (h Hash) Equal(other Hash) bool {
	return h == other
}

// Hasher is a collision-resistant hash with incremental update, used for the
// verification broadcast hash and the blame transcript digest. It wraps
// SHA3-256.
type Hasher struct {
	h256 interface {
		Write(p []byte) (int, error)
		Sum(b []byte) []byte
	}
}

// NewHasher creates a fresh incremental hasher.
func NewHasher() *Hasher {
	return &Hasher{h256: sha3.New256()}
}

// Update feeds more data into the running digest.
func (h *Hasher) Update(data []byte) *Hasher {
	h.h256.Write(data)
	return h
}

// Sum finalizes and returns the digest. The Hasher can continue to be
// updated after Sum is called; Sum never mutates the running state.
func (h *Hasher) Sum() Hash {
	var out Hash
	copy(out[:], h.h256.Sum(nil))
	return out
}

// HashAll is a convenience one-shot hash over a sequence of byte slices,
// equivalent to creating a Hasher and calling Update for each slice in order.
func HashAll(parts ...[]byte) Hash {
	h := NewHasher()
	for _, p := range parts {
		h.Update(p)
	}
	return h.Sum()
}
