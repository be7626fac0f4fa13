package handshake

import (
	"github.com/luxfi/tls12/pkg/handshake/ext"
	"github.com/luxfi/tls12/pkg/herr"
)

// Status is the outcome of one incremental parsing step, per spec.md
// §4.3's "each parsing function accepts (buf, len, already_read) and
// returns OK, POSTPONE, or a concrete error."
type Status int

const (
	StatusPostpone Status = iota
	StatusOK
)

const (
	fallbackSCSV              = 0x5600
	emptyRenegotiationInfoSCSV = 0x00ff
)

// clientHelloParser drives the nested FSM over one ClientHello body.
// totalLen is the ClientHello handshake-message body length, known from
// the 3-byte handshake header that always precedes the body even when
// the body itself arrives fragmented across record boundaries.
type clientHelloParser struct {
	*chParserState
	totalLen  int
	readSoFar int
}

// newClientHelloParser starts an incremental ClientHello parse with fresh
// substate; a suspended parse resumes by calling Feed on the same parser.
func newClientHelloParser(limits Limits, totalLen int) *clientHelloParser {
	return &clientHelloParser{chParserState: newCHParserState(limits), totalLen: totalLen}
}

// Feed consumes as much of data as the current substate needs, possibly
// advancing through several substates in one call (e.g. an entire
// ciphersuite list arriving in one chunk), and returns how many bytes of
// data it consumed plus the resulting status. POSTPONE means the parser
// suspended at chParserState's current substate/accumulator, which the
// caller must preserve and pass back into the next Feed call on the same
// parser — this is what makes fragmentation invariant: the number and
// placement of Feed boundaries never changes the final parsed message.
func (p *clientHelloParser) Feed(data []byte) (consumed int, status Status, err error) {
	for {
		remaining := p.need - len(p.acc)
		if remaining > 0 {
			if len(data) == 0 {
				return consumed, StatusPostpone, nil
			}
			n := remaining
			if n > len(data) {
				n = len(data)
			}
			p.acc = append(p.acc, data[:n]...)
			data = data[n:]
			consumed += n
			p.readSoFar += n
			if len(p.acc) < p.need {
				return consumed, StatusPostpone, nil
			}
		}
		if err := p.advance(); err != nil {
			return consumed, StatusPostpone, err
		}
		if p.state == subDone {
			return consumed, StatusOK, nil
		}
	}
}

func (p *clientHelloParser) advance() error {
	acc := p.acc
	msg := p.msg
	switch p.state {
	case subVersion:
		if acc[0] != 3 || acc[1] != 3 {
			return fatal(herr.ProtocolVersion, nil)
		}
		msg.VersionMajor, msg.VersionMinor = acc[0], acc[1]
		p.next(subRandom, 32)

	case subRandom:
		copy(msg.Random[:], acc)
		p.next(subSessionIDLen, 1)

	case subSessionIDLen:
		n := int(acc[0])
		if n > 32 {
			return fatal(herr.DecodeError, nil)
		}
		p.next(subSessionID, n)

	case subSessionID:
		msg.SessionID = append([]byte(nil), acc...)
		p.next(subCSLen, 2)

	case subCSLen:
		csLen := int(acc[0])<<8 | int(acc[1])
		if csLen < 2 || csLen%2 != 0 {
			return fatal(herr.DecodeError, nil)
		}
		p.csRemaining = csLen
		p.next(subCSItems, 2)

	case subCSItems:
		suite := uint16(acc[0])<<8 | uint16(acc[1])
		p.csRemaining -= 2
		switch suite {
		case fallbackSCSV:
			msg.FallbackSCSV = true
		case emptyRenegotiationInfoSCSV:
			msg.SecureRenegotiationSCSV = true
		default:
			// Silently clamp to the configured cap and continue, per
			// spec.md §9's recorded open question (a stricter policy
			// would reject instead).
			if p.csCap <= 0 || len(msg.CipherSuites) < p.csCap {
				msg.CipherSuites = append(msg.CipherSuites, suite)
			}
		}
		if p.csRemaining > 0 {
			p.next(subCSItems, 2)
		} else {
			p.next(subCompressionCount, 1)
		}

	case subCompressionCount:
		n := int(acc[0])
		if n == 0 {
			return fatal(herr.DecodeError, nil)
		}
		p.compRemaining = n
		p.next(subCompressionItems, 1)

	case subCompressionItems:
		if acc[0] == 0 {
			p.sawNullCompression = true
		}
		p.compRemaining--
		if p.compRemaining > 0 {
			p.next(subCompressionItems, 1)
		} else {
			if !p.sawNullCompression {
				return fatal(herr.DecodeError, nil)
			}
			if p.readSoFar >= p.totalLen {
				p.state, p.need, p.acc = subDone, 0, nil
				return nil
			}
			p.next(subExtensionsLen, 2)
		}

	case subExtensionsLen:
		extLen := int(acc[0])<<8 | int(acc[1])
		if p.readSoFar+extLen != p.totalLen {
			return fatal(herr.DecodeError, nil)
		}
		p.extRemaining = extLen
		if extLen == 0 {
			p.state, p.need, p.acc = subDone, 0, nil
			return nil
		}
		msg.Extensions = make(map[uint16][]byte)
		p.next(subExtensionHeader, 4)

	case subExtensionHeader:
		typ := uint16(acc[0])<<8 | uint16(acc[1])
		length := int(acc[2])<<8 | int(acc[3])
		p.extRemaining -= 4
		if length > p.extRemaining {
			return fatal(herr.DecodeError, nil)
		}
		p.curExtType, p.curExtLen = typ, length
		if length == 0 {
			msg.Extensions[typ] = nil
			p.extRemaining -= 0
			p.afterExtension()
		} else {
			p.next(subExtensionBody, length)
		}

	case subExtensionBody:
		msg.Extensions[p.curExtType] = append([]byte(nil), acc...)
		p.extRemaining -= p.curExtLen
		p.afterExtension()
	}
	return nil
}

func (p *clientHelloParser) afterExtension() {
	if p.extRemaining > 0 {
		p.next(subExtensionHeader, 4)
	} else {
		p.state, p.need, p.acc = subDone, 0, nil
	}
}

func (p *chParserState) next(s chSubstate, need int) {
	p.state = s
	p.need = need
	p.acc = nil
}

// ApplyExtensions runs the semantic per-extension parsers (pkg/handshake/ext)
// over the raw bodies the nested FSM collected, populating ctx. This is
// the step spec.md §4.3 describes as happening "on ClientHello
// completion": framing and semantics are deliberately separate passes.
func ApplyExtensions(ctx *Context, msg *ClientHelloMessage, limits Limits, log Logger) error {
	for typ, body := range msg.Extensions {
		switch typ {
		case ext.TypeServerName:
			name, err := ext.ParseServerName(body)
			if err != nil {
				return fatal(herr.BadHSClientHello, err)
			}
			ctx.ServerNameRequested = name

		case ext.TypeSignatureAlgorithms:
			algs, err := ext.ParseSignatureAlgorithms(body, limits.MaxSupportedCurves)
			if err != nil {
				return fatal(herr.BadHSClientHello, err)
			}
			ctx.SigHashAlgs = algs

		case ext.TypeSupportedGroups:
			curves, err := ext.ParseSupportedGroups(body, limits.MaxSupportedCurves)
			if err != nil {
				return fatal(herr.BadHSClientHello, err)
			}
			ctx.AcceptedCurves = curves
			ctx.CurvesExt = true

		case ext.TypeECPointFormats:
			if _, _, err := ext.ParseECPointFormats(body); err != nil {
				return fatal(herr.BadHSClientHello, err)
			}

		case ext.TypeExtendedMasterSecret:
			if err := ext.ParseExtendedMasterSecret(body); err != nil {
				return fatal(herr.BadHSClientHello, err)
			}
			ctx.ExtendedMasterSecret = true

		case ext.TypeSessionTicket:
			ticket := ext.ParseSessionTicket(body)
			if len(ticket) == 0 {
				ctx.NewSessionTicketReq = true
			} else if ctx.cfg.Tickets != nil {
				if state, err := ctx.cfg.Tickets.Parse(ticket); err == nil {
					ctx.Resume = true
					ctx.MasterSecret = state.MasterSecret
					ctx.NegotiatedSuite = state.CipherSuite
				} else {
					log.Debugf("handshake: session ticket decrypt failed: %v", err)
					ctx.NewSessionTicketReq = true
				}
			}

		case ext.TypeALPN:
			offered, err := ext.ParseALPN(body, limits.MaxALPNProtocols)
			if err != nil {
				return fatal(herr.BadHSClientHello, err)
			}
			proto, ok := ext.SelectALPN(ctx.cfg.ALPNProtocols, offered)
			if len(ctx.cfg.ALPNProtocols) > 0 && len(offered) > 0 && !ok {
				return fatal(herr.NoApplicationProtocol, nil)
			}
			ctx.ALPNProtocol = proto

		case ext.TypeRenegotiationInfo:
			if err := ext.ParseRenegotiationInfo(body); err != nil {
				return fatal(herr.BadHSClientHello, err)
			}
			ctx.SecureRenegotiation = true

		default:
			log.Debugf("handshake: ignoring unknown extension type %d", typ)
		}
	}
	ctx.ClientExts = len(msg.Extensions) > 0
	return nil
}
