package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"slices"
)

// SigningPublicKey is a long-term Ed25519 verification key. It is what the
// group directory maps peer identifiers to, and is used to verify envelope
// and blame signatures.
type SigningPublicKey []byte

// NewSigningPublicKeyFromBytes creates a SigningPublicKey from a byte slice.
// This function makes a copy of the input data to ensure immutability.
func NewSigningPublicKeyFromBytes(data []byte) SigningPublicKey {
	pk := make([]byte, len(data))
	copy(pk, data)
	return SigningPublicKey(pk)
}

// NewSigningPublicKeyFromString creates a SigningPublicKey from a hex-encoded string.
func NewSigningPublicKeyFromString(data string) (SigningPublicKey, error) {
	rawBytes, err := hex.DecodeString(data)
	if err != nil {
		return SigningPublicKey{}, err
	}

	return NewSigningPublicKeyFromBytes(rawBytes), nil
}

// Bytes returns the public key as a byte slice.
func (pk SigningPublicKey) Bytes() []byte {
	return pk
}

// Equal compares two public keys for equality.
// Two public keys are equal if they contain exactly the same bytes.
func (pk SigningPublicKey) Equal(other SigningPublicKey) bool {
	return len(pk) == len(other) && subtle.ConstantTimeCompare(pk, other) == 1
}

// Valid reports whether the key has the size an Ed25519 public key requires.
func (pk SigningPublicKey) Valid() bool {
	return len(pk) == ed25519.PublicKeySize
}

// String returns a hex-encoded string representation of the public key.
// This is useful for logging, displaying to users, and using as a map key.
func (pk SigningPublicKey) String() string {
	return hex.EncodeToString(pk)
}

// Verify checks if sig is valid over data under this public key.
func (pk SigningPublicKey) Verify(data []byte, sig Signature) bool {
	if !pk.Valid() || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pk), data, []byte(sig))
}

// SigningPrivateKey is a long-term Ed25519 signing key. Round instances hold
// it by reference and never mutate it.
type SigningPrivateKey []byte

// NewSigningPrivateKeyFromBytes creates a SigningPrivateKey from a byte slice.
// This function makes a copy of the input data to ensure immutability.
func NewSigningPrivateKeyFromBytes(data []byte) SigningPrivateKey {
	sk := make([]byte, len(data))
	copy(sk, data)
	return SigningPrivateKey(sk)
}

// Bytes returns the private key as a byte slice.
// This method should be used carefully as it exposes sensitive key material.
func (sk SigningPrivateKey) Bytes() []byte {
	return sk
}

// PublicKey derives the public key corresponding to this private key.
// For Ed25519, the public key is contained within the private key structure.
func (sk SigningPrivateKey) PublicKey() (SigningPublicKey, error) {
	if len(sk) != ed25519.PrivateKeySize {
		return nil, errors.New("crypto: invalid signing private key size")
	}
	return SigningPublicKey(sk[32:]), nil
}

// Sign signs data with this private key using Ed25519.
func (sk SigningPrivateKey) Sign(data []byte) (Signature, error) {
	if len(sk) != ed25519.PrivateKeySize {
		return nil, errors.New("crypto: invalid signing private key size")
	}
	signature := ed25519.Sign(ed25519.PrivateKey(sk), data)
	return Signature(signature), nil
}

// GenerateSigningKeyPair generates a new Ed25519 key pair for signing and verification.
func GenerateSigningKeyPair() (SigningPublicKey, SigningPrivateKey, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return SigningPublicKey(publicKey), SigningPrivateKey(privateKey), nil
}

// Signature represents a digital signature produced with a signing private key.
type Signature []byte

// SignatureSize is the fixed byte length S of every Signature this package
// produces, referenced throughout the envelope and blame wire formats.
const SignatureSize = ed25519.SignatureSize

// NewSignatureFromBytes creates a Signature from a byte slice.
// This function makes a copy of the input data to ensure immutability.
func NewSignatureFromBytes(data []byte) Signature {
	sig := make([]byte, len(data))
	copy(sig, data)
	return Signature(sig)
}

// Bytes returns the signature as a byte slice.
func (s Signature) Bytes() []byte {
	return []byte(s)
}

// String returns a hex-encoded string representation of the signature.
func (s Signature) String() string {
	return hex.EncodeToString(s.Bytes())
}

// SharedKey represents a Diffie-Hellman shared secret, already passed
// through a KDF. Its bytes are the HKDF output and are used directly as
// the AES-256-GCM key.
type SharedKey []byte

// NewSharedKey creates a SharedKey from a byte slice.
// This function makes a copy of the input data to ensure immutability.
func NewSharedKey(data []byte) SharedKey {
	sk := make([]byte, len(data))
	copy(sk, data)
	return SharedKey(sk)
}

// Bytes returns the shared key as a byte slice.
func (sk SharedKey) Bytes() []byte {
	return slices.Clone(sk)
}
