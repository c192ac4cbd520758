package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func FuzzSignVerify(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte("hello"))
	f.Add([]byte("test message 123"))
	f.Add(make([]byte, 1000))

	f.Fuzz(func(t *testing.T, data []byte) {
		pubKey, privKey, err := GenerateSigningKeyPair()
		if err != nil {
			t.Fatalf("failed to generate key pair: %v", err)
		}

		signature, err := privKey.Sign(data)
		if err != nil {
			t.Fatalf("signing failed: %v", err)
		}

		// Invariant 1: Signature has correct length (Ed25519 = 64 bytes)
		if len(signature) != SignatureSize {
			t.Errorf("signature wrong length: got %d, want %d", len(signature), SignatureSize)
		}

		// Invariant 2: Signature verifies with correct public key
		if !pubKey.Verify(data, signature) {
			t.Error("signature verification failed with correct key")
		}

		// Invariant 3: Signature fails with wrong public key
		wrongPubKey, _, _ := GenerateSigningKeyPair()
		if wrongPubKey.Verify(data, signature) {
			t.Error("signature should not verify with wrong public key")
		}

		// Invariant 4: Modified data fails verification
		if len(data) > 0 {
			modifiedData := make([]byte, len(data))
			copy(modifiedData, data)
			modifiedData[0] ^= 0xFF
			if pubKey.Verify(modifiedData, signature) {
				t.Error("signature should not verify with modified data")
			}
		}

		// Invariant 5: Modified signature fails verification
		modifiedSig := make(Signature, len(signature))
		copy(modifiedSig, signature)
		modifiedSig[0] ^= 0xFF
		if pubKey.Verify(data, modifiedSig) {
			t.Error("modified signature should not verify")
		}

		// Invariant 6: Determinism - signing same data twice gives same signature
		signature2, _ := privKey.Sign(data)
		if !bytes.Equal(signature, signature2) {
			t.Error("signing is not deterministic")
		}
	})
}

func FuzzSigningPrivateKeyPublicKey(f *testing.F) {
	f.Add(uint8(0))

	f.Fuzz(func(t *testing.T, _ uint8) {
		pubKey, privKey, err := GenerateSigningKeyPair()
		if err != nil {
			t.Fatalf("failed to generate key pair: %v", err)
		}

		// Invariant: Extracted public key matches generated public key
		extractedPubKey, err := privKey.PublicKey()
		if err != nil {
			t.Fatalf("failed to extract public key: %v", err)
		}

		if !bytes.Equal(pubKey, extractedPubKey) {
			t.Error("extracted public key doesn't match generated public key")
		}

		// Invariant: Key sizes are correct
		if len(pubKey) != 32 {
			t.Errorf("public key wrong size: got %d, want 32", len(pubKey))
		}
		if len(privKey) != 64 {
			t.Errorf("private key wrong size: got %d, want 64", len(privKey))
		}
	})
}

func FuzzNewSigningPublicKeyFromString(f *testing.F) {
	f.Add("")
	f.Add("00")
	f.Add("0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20")
	f.Add("invalid")
	f.Add("0g")

	f.Fuzz(func(t *testing.T, input string) {
		pubKey, err := NewSigningPublicKeyFromString(input)
		if err != nil {
			// Error is expected for invalid hex
			return
		}

		// Invariant: String representation round-trips (String emits
		// lowercase hex, so an uppercase input comes back lowercased)
		if pubKey.String() != strings.ToLower(input) {
			t.Errorf("string round trip failed: got %s, want %s", pubKey.String(), strings.ToLower(input))
		}

		// Invariant: Bytes length matches hex length / 2
		expectedLen := len(input) / 2
		if len(pubKey) != expectedLen {
			t.Errorf("bytes length mismatch: got %d, want %d", len(pubKey), expectedLen)
		}
	})
}
