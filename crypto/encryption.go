package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

// hkdfInfo binds the derived AES key to this package and purpose, so the
// same ephemeral keypair can never be reinterpreted as a key for another
// protocol.
var hkdfInfo = []byte("shuffleround-onion-layer-v1")

// EncryptedMessage contains an ECIES-encrypted onion-layer block.
// Format: ephemeral X25519 public key (32 bytes) || nonce (12 bytes) || ciphertext+tag.
type EncryptedMessage struct {
	EphemeralPubKey EncryptionPublicKey
	Nonce           []byte
	Ciphertext      []byte
}

// Encrypt encrypts plaintext to a recipient's X25519 public key using ECIES:
// ephemeral X25519 key agreement, HKDF-SHA256 derivation, AES-256-GCM seal.
func Encrypt(recipientPubKey EncryptionPublicKey, plaintext []byte) (*EncryptedMessage, error) {
	_, ephemeralPriv, err := GenerateEncryptionKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", err)
	}
	ephemeralPub := ephemeralPriv.PublicKey()

	sharedSecret, err := deriveSharedSecret(ephemeralPriv, recipientPubKey, hkdfInfo)
	if err != nil {
		return nil, fmt.Errorf("derive shared secret: %w", err)
	}

	gcm, err := newGCM(sharedSecret)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, ephemeralPub.Bytes())

	return &EncryptedMessage{
		EphemeralPubKey: ephemeralPub,
		Nonce:           nonce,
		Ciphertext:      ciphertext,
	}, nil
}

// Decrypt decrypts an ECIES-encrypted onion-layer block using the
// recipient's private key. Failure (wrong key, tampered ciphertext,
// malformed message) is reported as an error, never a panic.
func Decrypt(recipientPrivKey EncryptionPrivateKey, msg *EncryptedMessage) ([]byte, error) {
	sharedSecret, err := deriveSharedSecret(recipientPrivKey, msg.EphemeralPubKey, hkdfInfo)
	if err != nil {
		return nil, fmt.Errorf("derive shared secret: %w", err)
	}

	gcm, err := newGCM(sharedSecret)
	if err != nil {
		return nil, err
	}

	if len(msg.Nonce) != gcm.NonceSize() {
		return nil, errors.New("crypto: invalid nonce size")
	}

	plaintext, err := gcm.Open(nil, msg.Nonce, msg.Ciphertext, msg.EphemeralPubKey.Bytes())
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}

	return plaintext, nil
}

func newGCM(key SharedKey) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return gcm, nil
}

// Bytes serializes an encrypted message to its wire form.
func (m *EncryptedMessage) Bytes() []byte {
	result := make([]byte, 0, 32+len(m.Nonce)+len(m.Ciphertext))
	result = append(result, m.EphemeralPubKey.Bytes()...)
	result = append(result, m.Nonce...)
	result = append(result, m.Ciphertext...)
	return result
}

// ParseEncryptedMessage deserializes an encrypted message from its wire form.
func ParseEncryptedMessage(data []byte) (*EncryptedMessage, error) {
	const pubKeyLen = 32
	const nonceLen = 12
	minLen := pubKeyLen + nonceLen + 16 // 16 is the minimum AES-GCM auth tag

	if len(data) < minLen {
		return nil, errors.New("crypto: encrypted message too short")
	}

	pub, err := ParseEncryptionPublicKey(data[:pubKeyLen])
	if err != nil {
		return nil, err
	}

	return &EncryptedMessage{
		EphemeralPubKey: pub,
		Nonce:           data[pubKeyLen : pubKeyLen+nonceLen],
		Ciphertext:      data[pubKeyLen+nonceLen:],
	}, nil
}
