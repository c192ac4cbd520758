// Package msglog implements the append-only per-peer message log used as
// blame evidence: every signed envelope a round accepts from a peer is
// appended here in arrival order, and the log's deterministic serialization
// is what gets hashed and exchanged during blame.
package msglog
