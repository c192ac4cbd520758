// Package wire defines the shuffle round's wire format: the nine message
// type constants, the block-framing scheme every submitted payload goes
// through (a 4-byte little-endian length prefix followed by zero padding to
// the configured block size), and the signed envelope every outbound
// message is wrapped in (payload || signature).
//
// Encoding is deliberately a small hand-rolled binary codec rather than a
// general-purpose format: §4.4 and §6 of the specification require bit-
// identical, deterministic encoding across every honest peer, because the
// same bytes are both transmitted and hashed into the blame transcript
// digest. A general-purpose encoder (JSON map ordering, protobuf unknown
// field handling) would not give that guarantee for free.
package wire
