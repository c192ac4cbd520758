package round

import (
	"log/slog"

	"go.uber.org/atomic"

	"github.com/flashbots/shuffleround/crypto"
	"github.com/flashbots/shuffleround/msglog"
	"github.com/flashbots/shuffleround/wire"
)

// Round is one execution of the shuffle-round protocol among a fixed
// group of N peers. It is driven entirely by Start and ProcessData; it
// never blocks internally and never times out. See package doc for the
// lifecycle contract.
type Round struct {
	group      Group
	localID    ID
	sessionID  wire.RoundID
	roundID    wire.RoundID
	transport  Transport
	host       Host
	signingKey crypto.SigningPrivateKey
	blockSize  uint32
	logger     *slog.Logger

	started    atomic.Bool
	state      State
	blameState State

	data []byte // own framed payload, or the DefaultData sentinel

	innerPub  crypto.EncryptionPublicKey
	innerPriv crypto.EncryptionPrivateKey
	outerPub  crypto.EncryptionPublicKey
	outerPriv crypto.EncryptionPrivateKey

	// Indexed by kidx = N-1-i; see kidx below.
	publicInner    []crypto.EncryptionPublicKey
	publicInnerSet []bool
	publicOuter    []crypto.EncryptionPublicKey
	publicOuterSet []bool
	keysReceived   int

	// Indexed by natural group index i.
	privateInner      []crypto.EncryptionPrivateKey
	privateInnerSet   []bool
	privateOuter      []crypto.EncryptionPrivateKey
	privateOuterSet   []bool
	innerKeysReceived int

	outerCiphertext []byte
	innerCiphertext []byte

	shuffleCiphertext [][]byte
	dataReceived      int

	shuffleCleartext [][]byte
	encryptedData    [][]byte

	goReceived      []bool
	goVotes         []bool
	goCount         int
	broadcastHash   crypto.Hash
	broadcastHashes []crypto.Hash

	log  *msglog.Log
	logs []*msglog.Log

	blameHash                 [][]byte
	blameSignatures           []crypto.Signature
	validBlames               []bool
	receivedBlameVerification []bool
	blameVerifications        int
	blameReceived             int

	badMembers []int
	successful bool
}

// New constructs a round instance. payload is the caller's cleartext
// submission for this round; pass nil to submit no message. payload
// larger than blockSize is demoted to the DefaultData sentinel rather
// than rejected, matching the source's behavior of warning and
// continuing rather than failing construction.
func New(
	g Group,
	localID ID,
	sessionID wire.RoundID,
	roundID wire.RoundID,
	transport Transport,
	host Host,
	signingKey crypto.SigningPrivateKey,
	blockSize uint32,
	payload []byte,
	logger *slog.Logger,
) *Round {
	if logger == nil {
		logger = slog.Default()
	}

	n := g.Count()
	return &Round{
		group:      g,
		localID:    localID,
		sessionID:  sessionID,
		roundID:    roundID,
		transport:  transport,
		host:       host,
		signingKey: signingKey,
		blockSize:  blockSize,
		logger:     logger,

		state:      Offline,
		blameState: Offline,

		data: prepareData(blockSize, payload),

		publicInner:    make([]crypto.EncryptionPublicKey, n),
		publicInnerSet: make([]bool, n),
		publicOuter:    make([]crypto.EncryptionPublicKey, n),
		publicOuterSet: make([]bool, n),

		privateInner:    make([]crypto.EncryptionPrivateKey, n),
		privateInnerSet: make([]bool, n),
		privateOuter:    make([]crypto.EncryptionPrivateKey, n),
		privateOuterSet: make([]bool, n),

		goReceived:      make([]bool, n),
		goVotes:         make([]bool, n),
		broadcastHashes: make([]crypto.Hash, n),

		log:  msglog.New(),
		logs: make([]*msglog.Log, n),

		blameHash:                 make([][]byte, n),
		blameSignatures:           make([]crypto.Signature, n),
		validBlames:               make([]bool, n),
		receivedBlameVerification: make([]bool, n),
	}
}

// prepareData frames payload to the fixed block size, demoting it to the
// DefaultData sentinel if it is empty or does not fit.
func prepareData(blockSize uint32, payload []byte) []byte {
	if len(payload) == 0 {
		return wire.DefaultData(blockSize)
	}
	if uint32(len(payload)) > blockSize {
		return wire.DefaultData(blockSize)
	}
	framed, err := wire.Frame(blockSize, payload)
	if err != nil {
		return wire.DefaultData(blockSize)
	}
	return framed
}

// kidx maps a peer's natural group index to its slot in the reversed
// public-key vectors: the last peer's key is applied first during onion
// encryption, so it must occupy slot 0.
func (r *Round) kidx(i int) int {
	return r.group.Count() - 1 - i
}

// Start begins the round: generates fresh onion key pairs and broadcasts
// them. Returns false if called more than once.
func (r *Round) Start() bool {
	if r.started.Swap(true) {
		r.logger.Warn("round: Start called more than once", "round_id", string(r.roundID))
		return false
	}

	if r.group.Index(r.localID) == 0 {
		r.shuffleCiphertext = make([][]byte, r.group.Count())
	}

	r.BroadcastPublicKeys()
	return true
}

// Successful reports whether the round finished successfully.
func (r *Round) Successful() bool {
	return r.successful
}

// BadMembers returns the group indices accused by the blame engine. Only
// meaningful once the round has finished unsuccessfully.
func (r *Round) BadMembers() []int {
	return append([]int(nil), r.badMembers...)
}

// State reports the round's current phase, primarily for diagnostics and tests.
func (r *Round) State() State {
	return r.state
}

// Broadcast signs payload and hands it to every peer, including this one
// via the self-send short-circuit.
func (r *Round) Broadcast(payload []byte) {
	envelope, err := wire.Seal(r.signingKey, payload)
	if err != nil {
		r.logger.Error("round: failed to sign outbound broadcast", "err", err)
		return
	}

	r.ProcessData(envelope, r.localID)
	r.transport.Broadcast(envelope, r.localID)
}

// Send signs payload and hands it to a single peer, short-circuiting to
// ProcessData directly if to is this round's own id.
func (r *Round) Send(payload []byte, to ID) {
	envelope, err := wire.Seal(r.signingKey, payload)
	if err != nil {
		r.logger.Error("round: failed to sign outbound message", "err", err)
		return
	}

	if to == r.localID {
		r.ProcessData(envelope, to)
		return
	}

	r.transport.Send(envelope, r.localID, to)
}

// ProcessData is the round's single entry point for inbound envelopes. It
// appends the raw bytes to the message log before attempting to process
// them, and rolls the entry back out if processing fails — a rejected
// envelope leaves no trace in blame evidence.
func (r *Round) ProcessData(data []byte, from ID) {
	r.log.Append(data, from)

	if err := r.processDataBase(data, from); err != nil {
		r.logger.Warn("round: rejected inbound message",
			"local", r.group.Index(r.localID),
			"from", r.group.Index(from),
			"round_id", string(r.roundID),
			"state", r.state.String(),
			"err", err,
		)
		r.log.Pop()
	}
}

func (r *Round) verifyEnvelope(data []byte, from ID) ([]byte, error) {
	senderKey, ok := r.group.Key(from)
	if !ok {
		return nil, newFault(FaultUnknownPeer, "no such peer %v", from)
	}

	payload, err := wire.Open(data, senderKey)
	if err != nil {
		switch err {
		case wire.ErrShortEnvelope:
			return nil, newFault(FaultMalformedEnvelope, "%v", err)
		case wire.ErrBadSignature:
			return nil, newFault(FaultBadSignature, "%v", err)
		default:
			return nil, newFault(FaultMalformedEnvelope, "%v", err)
		}
	}
	return payload, nil
}

func (r *Round) processDataBase(data []byte, from ID) error {
	payload, err := r.verifyEnvelope(data, from)
	if err != nil {
		return err
	}

	reader := wire.NewReader(payload)
	msgType, roundID, err := reader.ReadHeader()
	if err != nil {
		return newFault(FaultMalformedEnvelope, "%v", err)
	}

	if !roundID.Equal(r.roundID) {
		return newFault(FaultRoundMismatch, "expected %x got %x", r.roundID, roundID)
	}

	switch msgType {
	case wire.MessagePublicKeys:
		return r.HandlePublicKeys(reader, from)
	case wire.MessageData:
		return r.HandleData(reader, from)
	case wire.MessageShuffleData:
		return r.HandleShuffle(reader, from)
	case wire.MessageEncryptedData:
		return r.HandleDataBroadcast(reader, from)
	case wire.MessageGo:
		return r.HandleVerification(reader, true, from)
	case wire.MessageNoGo:
		return r.HandleVerification(reader, false, from)
	case wire.MessagePrivateKey:
		return r.HandlePrivateKey(reader, from)
	case wire.MessageBlameData:
		return r.HandleBlame(reader, from)
	case wire.MessageBlameVerification:
		return r.HandleBlameVerification(reader, from)
	default:
		return newFault(FaultUnknownMessageType, "type %d", msgType)
	}
}
