// Package onion implements the layered public-key encryption primitive the
// shuffle round drives twice per round (once over the inner key vector,
// once over the outer key vector) and the secret, unbiased permutation the
// shuffle phase applies to a block vector between peeling a layer and
// passing it to the next peer.
//
// EncryptLayers nests one call to crypto.Encrypt per key in the supplied
// vector, applying the first key first so that the last key is outermost
// and peeling proceeds from the end of the vector to its start (see the
// reversed key-vector design note in the round package). DecryptLayer peels exactly one layer off every block in a
// vector independently, positionally, and reports which blocks (if any)
// failed to decrypt rather than failing the whole batch. Randomize
// permutes a block vector in place using the process CSPRNG.
package onion
