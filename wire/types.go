package wire

// MessageType identifies the kind of payload carried by an envelope. Values
// are stable across peers and across protocol versions; never renumber an
// existing constant.
type MessageType uint32

const (
	// MessagePublicKeys carries a peer's fresh per-round inner and outer
	// encryption public keys during key sharing.
	MessagePublicKeys MessageType = iota + 1
	// MessageData carries peer 0's received outer ciphertext during data
	// submission.
	MessageData
	// MessageShuffleData carries the shuffle vector as it passes between
	// peers.
	MessageShuffleData
	// MessageEncryptedData carries the final peer's broadcast of the fully
	// shuffled, outer-peeled vector.
	MessageEncryptedData
	// MessageGo is a peer's affirmative verification vote, carrying the
	// broadcast hash it computed.
	MessageGo
	// MessageNoGo is a peer's negative verification vote.
	MessageNoGo
	// MessagePrivateKey reveals a peer's inner private key after the group
	// unanimously votes Go.
	MessagePrivateKey
	// MessageBlameData carries a peer's signed transcript (outer private
	// key plus serialized log) during blame.
	MessageBlameData
	// MessageBlameVerification carries a peer's full view of every blame
	// transcript's hash and signature, for cross-verification.
	MessageBlameVerification
)

// String renders a MessageType for logging.
func (t MessageType) String() string {
	switch t {
	case MessagePublicKeys:
		return "PublicKeys"
	case MessageData:
		return "Data"
	case MessageShuffleData:
		return "ShuffleData"
	case MessageEncryptedData:
		return "EncryptedData"
	case MessageGo:
		return "GoMessage"
	case MessageNoGo:
		return "NoGoMessage"
	case MessagePrivateKey:
		return "PrivateKey"
	case MessageBlameData:
		return "BlameData"
	case MessageBlameVerification:
		return "BlameVerification"
	default:
		return "Unknown"
	}
}

// RoundID uniquely identifies a round instance; it appears in every signed
// payload to prevent cross-round replay.
type RoundID []byte

// Equal reports whether two round identifiers are the same bytes.
func (r RoundID) Equal(other RoundID) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// Bytes returns the round id as a byte slice.
func (r RoundID) Bytes() []byte {
	return r
}
