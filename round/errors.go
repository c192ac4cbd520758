package round

import "fmt"

// Kind identifies the category of a dispatch fault raised while processing
// an inbound envelope. ProcessData catches every fault at its boundary;
// callers and tests assert on Kind rather than matching error strings.
type Kind int

const (
	FaultUnknownPeer Kind = iota
	FaultMalformedEnvelope
	FaultBadSignature
	FaultRoundMismatch
	FaultUnknownMessageType
	FaultMisordered
	FaultDuplicate
	FaultMalformedField
	FaultInvalidKey
	FaultKeyMismatch
)

func (k Kind) String() string {
	switch k {
	case FaultUnknownPeer:
		return "unknown peer"
	case FaultMalformedEnvelope:
		return "malformed envelope"
	case FaultBadSignature:
		return "bad signature"
	case FaultRoundMismatch:
		return "round mismatch"
	case FaultUnknownMessageType:
		return "unknown message type"
	case FaultMisordered:
		return "misordered message"
	case FaultDuplicate:
		return "duplicate message"
	case FaultMalformedField:
		return "malformed field"
	case FaultInvalidKey:
		return "invalid key"
	case FaultKeyMismatch:
		return "key mismatch"
	default:
		return "unknown fault"
	}
}

// fault is the typed error every dispatch-path rejection returns.
// ProcessData pops the log entry and swallows it; nothing here ever
// crosses the Host boundary.
type fault struct {
	kind Kind
	msg  string
}

func (f *fault) Error() string {
	return fmt.Sprintf("round: %s: %s", f.kind, f.msg)
}

func newFault(kind Kind, format string, args ...any) *fault {
	return &fault{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// FaultKind extracts the Kind from err, if err is a fault raised by this
// package. The second return is false for any other error.
func FaultKind(err error) (Kind, bool) {
	f, ok := err.(*fault)
	if !ok {
		return 0, false
	}
	return f.kind, true
}
