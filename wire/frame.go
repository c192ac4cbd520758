package wire

import (
	"encoding/binary"
	"fmt"
)

// Frame prepends a 4-byte little-endian length prefix to payload and pads
// the result with zeros to blockSize+4 bytes. The caller is responsible for
// substituting DefaultData when payload exceeds blockSize (§3: "Payload of
// B+1 bytes: demoted to DefaultData"); Frame itself rejects oversized
// payloads rather than silently truncating them.
func Frame(blockSize uint32, payload []byte) ([]byte, error) {
	if uint32(len(payload)) > blockSize {
		return nil, fmt.Errorf("wire: payload of %d bytes exceeds block size %d", len(payload), blockSize)
	}

	block := make([]byte, blockSize+4)
	binary.LittleEndian.PutUint32(block[:4], uint32(len(payload)))
	copy(block[4:], payload)
	return block, nil
}

// Unframe extracts the payload from a framed block. Any block whose
// declared length exceeds blockSize or exceeds the available data is
// treated as empty (nil), per §3; a declared length of zero is also empty.
// Unframe never returns an error: a malformed or adversarial block is
// indistinguishable from "no message this round".
func Unframe(blockSize uint32, block []byte) []byte {
	if len(block) < 4 {
		return nil
	}

	size := binary.LittleEndian.Uint32(block[:4])
	if size == 0 {
		return nil
	}
	if size > blockSize || int(size) > len(block)-4 {
		return nil
	}

	return block[4 : 4+size]
}

// DefaultData returns the distinguished all-zero block of length
// blockSize+4 meaning "no payload this round".
func DefaultData(blockSize uint32) []byte {
	return make([]byte, blockSize+4)
}

// IsDefaultData reports whether block is exactly the DefaultData sentinel
// for the given block size.
func IsDefaultData(blockSize uint32, block []byte) bool {
	if uint32(len(block)) != blockSize+4 {
		return false
	}
	for _, b := range block {
		if b != 0 {
			return false
		}
	}
	return true
}
