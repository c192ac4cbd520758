// Package round implements the shuffle round protocol engine: the
// per-round state machine coordinating key sharing, onion-encrypted data
// submission, the shuffle pipeline, the verification vote, private-key
// reveal, final decryption, and the blame/accusation subsystem that
// engages when any of those checkpoints detects misbehavior.
//
// A Round is driven entirely by Start and ProcessData; it never blocks,
// never times out internally, and never propagates an error across the
// host boundary — dispatch faults are logged and the offending envelope
// is rolled back out of the message log.
package round
