package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Writer builds a deterministic, bit-stable payload: message_type, round_id,
// and then whatever per-type fields the caller appends in a fixed order.
// The same encoding is used for outbound envelopes, for the message log's
// serialization, and inside signed hashes — any divergence across peers
// breaks the verification vote and blame.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter starts a payload with its message type and round id header.
func NewWriter(msgType MessageType, roundID RoundID) *Writer {
	w := &Writer{}
	w.WriteUint32(uint32(msgType))
	w.WriteBytes(roundID.Bytes())
	return w
}

// NewRawWriter starts an empty payload with no header, for callers that
// define their own field layout (the message log's serialization, for
// instance, rather than a per-round-message envelope).
func NewRawWriter() *Writer {
	return &Writer{}
}

// WriteUint32 appends a big-endian uint32.
func (w *Writer) WriteUint32(v uint32) *Writer {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
	return w
}

// WriteBytes appends a length-prefixed byte slice.
func (w *Writer) WriteBytes(b []byte) *Writer {
	w.WriteUint32(uint32(len(b)))
	w.buf.Write(b)
	return w
}

// WriteVector appends a length-prefixed sequence of length-prefixed byte slices.
func (w *Writer) WriteVector(vs [][]byte) *Writer {
	w.WriteUint32(uint32(len(vs)))
	for _, v := range vs {
		w.WriteBytes(v)
	}
	return w
}

// Bytes returns the encoded payload.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Reader parses a payload produced by Writer in the same field order it was
// written. Every method returns an error on truncated or oversized input;
// none of them panic on attacker-supplied bytes.
type Reader struct {
	data []byte
	off  int
}

// NewReader wraps payload for sequential field reads.
func NewReader(payload []byte) *Reader {
	return &Reader{data: payload}
}

// ReadUint32 reads a big-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	if len(r.data)-r.off < 4 {
		return 0, fmt.Errorf("wire: truncated uint32 at offset %d", r.off)
	}
	v := binary.BigEndian.Uint32(r.data[r.off : r.off+4])
	r.off += 4
	return v, nil
}

// ReadBytes reads a length-prefixed byte slice. The returned slice aliases
// the reader's backing array; callers that retain it beyond this call must
// copy it.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if int64(n) > int64(len(r.data)-r.off) {
		return nil, fmt.Errorf("wire: truncated field of length %d at offset %d", n, r.off)
	}
	b := r.data[r.off : r.off+int(n)]
	r.off += int(n)
	return b, nil
}

// ReadVector reads a length-prefixed sequence of length-prefixed byte slices.
func (r *Reader) ReadVector() ([][]byte, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	// Each element costs at least 4 bytes for its own length prefix; reject
	// an implausible count before allocating, so a malicious tiny payload
	// can't claim billions of elements.
	if int64(n) > int64(len(r.data)-r.off)/4 {
		return nil, fmt.Errorf("wire: implausible vector length %d at offset %d", n, r.off)
	}

	vs := make([][]byte, n)
	for i := range vs {
		vs[i], err = r.ReadBytes()
		if err != nil {
			return nil, err
		}
	}
	return vs, nil
}

// ReadHeader reads the (message_type, round_id) header every payload begins with.
func (r *Reader) ReadHeader() (MessageType, RoundID, error) {
	mt, err := r.ReadUint32()
	if err != nil {
		return 0, nil, fmt.Errorf("wire: read message type: %w", err)
	}
	rid, err := r.ReadBytes()
	if err != nil {
		return 0, nil, fmt.Errorf("wire: read round id: %w", err)
	}
	return MessageType(mt), RoundID(append([]byte{}, rid...)), nil
}

// Remaining reports whether unread bytes remain in the payload.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}
