package handshake

// chSubstate is the tagged variant representing where the incremental
// ClientHello parser suspended, replacing the "parallel scalar fields on
// the context" spec.md §9 flags as unclear. The variants below follow the
// nested-FSM sub-state list spec.md §4.3 names, except that extension type
// and size are read together as one 4-byte header (subExtensionHeader) and
// there is no separate substate for ciphersuites beyond the cap.
type chSubstate int

const (
	subVersion chSubstate = iota
	subRandom
	subSessionIDLen
	subSessionID
	subCSLen
	subCSItems
	subCompressionCount
	subCompressionItems
	subExtensionsLen
	subExtensionHeader
	subExtensionBody
	subDone
)

func (s chSubstate) String() string {
	switch s {
	case subVersion:
		return "version"
	case subRandom:
		return "random"
	case subSessionIDLen:
		return "session-id-length"
	case subSessionID:
		return "session-id"
	case subCSLen:
		return "cs-length"
	case subCSItems:
		return "cs-items"
	case subCompressionCount:
		return "compression-count"
	case subCompressionItems:
		return "compression-items"
	case subExtensionsLen:
		return "extensions-length"
	case subExtensionHeader:
		return "extension-type"
	case subExtensionBody:
		return "extension-body"
	case subDone:
		return "done"
	}
	return "unknown"
}

// chParserState holds the nested-FSM's full suspendable state: which
// substate is in progress, its partial accumulator, and the handful of
// running counters (ciphersuite/extensions remaining byte counts,
// current extension header) that must survive across Feed calls. This
// is the single struct that gets attached to a Context so a suspended
// ClientHello parse can be resumed on the next chunk.
type chParserState struct {
	state chSubstate
	acc   []byte // bytes accumulated so far for the current substate
	need  int    // bytes still required to complete the current substate

	csCap       int // configured cap on collected ciphersuite count
	csRemaining int // raw bytes of the cs vector still to consume

	compRemaining int

	extRemaining int // bytes remaining in the whole extensions block
	curExtType   uint16
	curExtLen    int

	sawNullCompression bool

	msg *ClientHelloMessage
}

func newCHParserState(limits Limits) *chParserState {
	return &chParserState{
		state: subVersion,
		need:  2,
		csCap: limits.MaxCipherSuites,
		msg:   &ClientHelloMessage{},
	}
}

// ClientHelloMessage is the fully decoded result of a ClientHello,
// populated incrementally as the nested FSM advances.
type ClientHelloMessage struct {
	VersionMajor, VersionMinor byte
	Random                     [32]byte
	SessionID                  []byte
	CipherSuites               []uint16
	FallbackSCSV               bool
	SecureRenegotiationSCSV    bool
	Extensions                 map[uint16][]byte
}
