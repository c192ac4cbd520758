package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

// EncryptionPublicKey is an X25519 public key used for one onion layer
// (inner or outer). Keys of this family are generated fresh per round and
// never reused across rounds.
type EncryptionPublicKey [32]byte

// EncryptionPrivateKey is an X25519 private key used for one onion layer.
type EncryptionPrivateKey [32]byte

// GenerateEncryptionKeyPair generates a new X25519 key pair for onion-layer encryption.
func GenerateEncryptionKeyPair() (EncryptionPublicKey, EncryptionPrivateKey, error) {
	var privKey EncryptionPrivateKey
	var pubKey EncryptionPublicKey

	if _, err := rand.Read(privKey[:]); err != nil {
		return pubKey, privKey, err
	}

	curve25519.ScalarBaseMult((*[32]byte)(&pubKey), (*[32]byte)(&privKey))
	return pubKey, privKey, nil
}

// PublicKey derives the public key corresponding to this private key.
func (priv EncryptionPrivateKey) PublicKey() EncryptionPublicKey {
	var pub EncryptionPublicKey
	curve25519.ScalarBaseMult((*[32]byte)(&pub), (*[32]byte)(&priv))
	return pub
}

// Equal reports whether priv is the private half of pub (key_matches).
func (priv EncryptionPrivateKey) Equal(pub EncryptionPublicKey) bool {
	derived := priv.PublicKey()
	return derived == pub
}

// Bytes returns the 32-byte encoding of the public key.
func (pub EncryptionPublicKey) Bytes() []byte {
	out := make([]byte, 32)
	copy(out, pub[:])
	return out
}

// ParseEncryptionPublicKey deserializes a 32-byte X25519 public key.
func ParseEncryptionPublicKey(data []byte) (EncryptionPublicKey, error) {
	var pub EncryptionPublicKey
	if len(data) != 32 {
		return pub, errors.New("crypto: invalid encryption public key length")
	}
	copy(pub[:], data)
	return pub, nil
}

// Bytes returns the 32-byte encoding of the private key. Callers that
// serialize this (private-key reveal, blame transcripts) are revealing
// key material the protocol intends to become public at that phase.
func (priv EncryptionPrivateKey) Bytes() []byte {
	out := make([]byte, 32)
	copy(out, priv[:])
	return out
}

// ParseEncryptionPrivateKey deserializes a 32-byte X25519 private key.
func ParseEncryptionPrivateKey(data []byte) (EncryptionPrivateKey, error) {
	var priv EncryptionPrivateKey
	if len(data) != 32 {
		return priv, errors.New("crypto: invalid encryption private key length")
	}
	copy(priv[:], data)
	return priv, nil
}

// deriveSharedSecret performs X25519 key agreement and derives a 32-byte
// symmetric key from the shared point using HKDF-SHA256.
func deriveSharedSecret(privateKey EncryptionPrivateKey, publicKey EncryptionPublicKey, info []byte) (SharedKey, error) {
	var sharedPoint [32]byte
	curve25519.ScalarMult(&sharedPoint, (*[32]byte)(&privateKey), (*[32]byte)(&publicKey))

	kdf := hkdf.New(sha256.New, sharedPoint[:], nil, info)
	secret := make([]byte, 32)
	if _, err := kdf.Read(secret); err != nil {
		return nil, err
	}

	return SharedKey(secret), nil
}
