package crypto

import (
	"bytes"
	"testing"
)

func FuzzEncryptDecrypt(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte("hello"))
	f.Add([]byte("hello world, this is a test"))
	f.Add(make([]byte, 1000))

	f.Fuzz(func(t *testing.T, plaintext []byte) {
		pubKey, privKey, err := GenerateEncryptionKeyPair()
		if err != nil {
			t.Fatalf("failed to generate key: %v", err)
		}

		encrypted, err := Encrypt(pubKey, plaintext)
		if err != nil {
			t.Fatalf("encryption failed: %v", err)
		}

		// Invariant 1: Encrypted message has expected structure
		if encrypted == nil {
			t.Fatal("encrypted message is nil")
		}
		if len(encrypted.Nonce) != 12 {
			t.Errorf("nonce wrong size: got %d, want 12", len(encrypted.Nonce))
		}
		// Ciphertext should be at least plaintext length + 16 (GCM tag)
		if len(encrypted.Ciphertext) < len(plaintext)+16 {
			t.Errorf("ciphertext too short: got %d, want >= %d", len(encrypted.Ciphertext), len(plaintext)+16)
		}

		// Decrypt
		decrypted, err := Decrypt(privKey, encrypted)
		if err != nil {
			t.Fatalf("decryption failed: %v", err)
		}

		// Invariant 2: Round-trip preserves plaintext
		if !bytes.Equal(plaintext, decrypted) {
			t.Errorf("round trip failed: got %v, want %v", decrypted, plaintext)
		}

		// Invariant 3: Wrong key fails decryption
		_, wrongKey, _ := GenerateEncryptionKeyPair()
		_, err = Decrypt(wrongKey, encrypted)
		if err == nil {
			t.Error("decryption with wrong key should fail")
		}
	})
}

func FuzzParseEncryptedMessage(f *testing.F) {
	f.Add(make([]byte, 0))
	f.Add(make([]byte, 50))
	f.Add(make([]byte, 59))
	f.Add(make([]byte, 60))
	f.Add(make([]byte, 100))
	f.Add(make([]byte, 500))

	f.Fuzz(func(t *testing.T, data []byte) {
		msg, err := ParseEncryptedMessage(data)

		// Invariant 1: Messages < 60 bytes should fail
		minLen := 32 + 12 + 16 // ephemeralPubKey + nonce + min ciphertext (just tag)
		if len(data) < minLen {
			if err == nil {
				t.Errorf("parsing should fail for data length %d < %d", len(data), minLen)
			}
			return
		}

		if err != nil {
			return
		}

		// Invariant 2: Parsed fields have correct lengths
		if len(msg.Nonce) != 12 {
			t.Errorf("nonce wrong size: got %d, want 12", len(msg.Nonce))
		}
		expectedCiphertextLen := len(data) - 32 - 12
		if len(msg.Ciphertext) != expectedCiphertextLen {
			t.Errorf("ciphertext wrong size: got %d, want %d", len(msg.Ciphertext), expectedCiphertextLen)
		}

		// Invariant 3: Serialization round-trip
		serialized := msg.Bytes()
		if !bytes.Equal(serialized, data) {
			t.Errorf("serialization round trip failed")
		}
	})
}

func FuzzEncryptedMessageTampering(f *testing.F) {
	f.Add([]byte("test message"), 0)
	f.Add([]byte("another test"), 50)

	f.Fuzz(func(t *testing.T, plaintext []byte, tamperIndex int) {
		if len(plaintext) == 0 {
			t.Skip()
		}

		pubKey, privKey, err := GenerateEncryptionKeyPair()
		if err != nil {
			t.Fatalf("failed to generate key: %v", err)
		}

		encrypted, err := Encrypt(pubKey, plaintext)
		if err != nil {
			t.Fatalf("encryption failed: %v", err)
		}

		serialized := encrypted.Bytes()
		if len(serialized) == 0 {
			t.Skip()
		}

		tamperIndex = tamperIndex % len(serialized)
		if tamperIndex < 0 {
			tamperIndex = -tamperIndex
		}
		tampered := make([]byte, len(serialized))
		copy(tampered, serialized)
		tampered[tamperIndex] ^= 0xFF

		tamperedMsg, err := ParseEncryptedMessage(tampered)
		if err != nil {
			return
		}

		_, err = Decrypt(privKey, tamperedMsg)
		if err == nil {
			t.Error("decryption of tampered message should fail")
		}
	})
}
