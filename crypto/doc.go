// Package crypto provides the cryptographic primitives adapter the shuffle
// round is built on: a uniform facade over an asymmetric key pair (public
// encrypt / private decrypt, private sign / public verify, serialize /
// deserialize, key equality) and a collision-resistant hash with
// incremental update.
//
// Two distinct key pair families are exposed because the protocol never
// needs a single key to both encrypt and sign:
//
//   - EncryptionKeyPair / EncryptionPublicKey: ephemeral, per-round X25519
//     keys used for the onion layers (inner and outer).
//   - SigningPrivateKey / SigningPublicKey: long-term Ed25519 keys used for
//     envelope signatures and blame-transcript signatures.
//
// Encryption is ECIES-style: an ephemeral X25519 key agreement followed by
// HKDF-SHA256 key derivation and AES-256-GCM authenticated encryption. All
// failures are reported as errors; nothing here panics on attacker-supplied
// input.
//
// # Hashing
//
// Hasher wraps SHA3-256 behind an incremental Update/Sum interface, used for
// the verification broadcast hash and the blame transcript digest.
package crypto
