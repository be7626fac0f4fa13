package handshake

import (
	"github.com/luxfi/tls12/pkg/ecp"
	"github.com/luxfi/tls12/pkg/herr"
)

// ServerMax is the only version this server ever negotiates: TLS 1.2,
// {3, 3}. Client-side TLS and earlier versions are explicit Non-goals.
var ServerMax = [2]byte{3, 3}

// SelectCiphersuite walks the server's preference list (Config.CipherSuites)
// and returns the first entry the client also offered *and* the server
// can actually complete, per spec.md §4.3's "iterate the server
// ciphersuite preference list... for each candidate check version
// window, availability of a matching curve (if EC), presence of a
// compatible hash for its signature, and feasibility of a matching
// certificate. First match wins." hasCurve/hasHashFor/hasCert let the
// caller fold those three availability checks into the same pass; each
// is invoked with the candidate's SuiteInfo and may be nil to skip that
// check entirely (e.g. hasCurve is never consulted for a non-EC suite).
// A candidate that fails any applicable check is skipped, not treated
// as a match, so selection never returns a suite BuildServerKeyExchange
// would then have to hard-fail on.
func SelectCiphersuite(serverPref []uint16, clientOffered []uint16, hasCurve, hasHashFor, hasCert func(SuiteInfo) bool) (uint16, bool) {
	offered := make(map[uint16]bool, len(clientOffered))
	for _, s := range clientOffered {
		offered[s] = true
	}
	for _, s := range serverPref {
		if !offered[s] {
			continue
		}
		info, ok := LookupSuite(s)
		if !ok {
			continue
		}
		if info.Kex == KexECDHE && hasCurve != nil && !hasCurve(info) {
			continue
		}
		if hasHashFor != nil && info.Sig != 0 && !hasHashFor(info) {
			continue
		}
		if hasCert != nil && !hasCert(info) {
			continue
		}
		return s, true
	}
	return 0, false
}

// SelectCurve returns the first curve in server preference order that
// the client also offered, per spec.md §4.3's ServerKeyExchange curve
// selection ("first server-preferred match wins").
func SelectCurve(serverPref []ecp.ID, clientWireIDs []uint16) (ecp.ID, bool) {
	offered := make(map[uint16]bool, len(clientWireIDs))
	for _, w := range clientWireIDs {
		offered[w] = true
	}
	for _, id := range serverPref {
		g, err := ecp.ByID(id)
		if err != nil {
			continue
		}
		if offered[g.WireID] {
			return id, true
		}
	}
	return 0, false
}

// ProcessClientHello runs the selection ordering spec.md §4.3 specifies:
// set the renegotiation flag, check the fallback SCSV, resolve SNI/cert,
// then pick a ciphersuite. It does not yet build the ServerHello flight
// (BuildServerHello does); this step only decides what to send.
func ProcessClientHello(ctx *Context, cfg *Config, msg *ClientHelloMessage) error {
	if msg.SecureRenegotiationSCSV {
		ctx.SecureRenegotiation = true
	}
	if msg.FallbackSCSV && (msg.VersionMajor < ServerMax[0] ||
		(msg.VersionMajor == ServerMax[0] && msg.VersionMinor < ServerMax[1])) {
		return fatal(herr.InappropriateFallback, nil)
	}

	if cfg.CertStore != nil {
		ck, err := cfg.CertStore.ResolveSNI(ctx.ServerNameRequested)
		if err != nil {
			return fatal(herr.UnrecognizedName, err)
		}
		ctx.Cert = ck
	}

	hasCurve := func(SuiteInfo) bool {
		_, ok := SelectCurve(cfg.Curves, ctx.AcceptedCurves)
		return ok
	}
	hasHashFor := func(info SuiteInfo) bool {
		_, ok := pickHashAlg(ctx.SigHashAlgs, info.Sig)
		return ok
	}
	hasCert := func(info SuiteInfo) bool {
		if ctx.Cert == nil || ctx.Cert.Key == nil {
			return false
		}
		return info.Sig == 0 || ctx.Cert.Key.CanSign(info.Sig)
	}

	suite, ok := SelectCiphersuite(cfg.CipherSuites, msg.CipherSuites, hasCurve, hasHashFor, hasCert)
	if !ok {
		return fatal(herr.HandshakeFailure, nil)
	}
	ctx.NegotiatedSuite = suite
	ctx.SessionID = msg.SessionID
	ctx.ClientRandom = msg.Random
	return nil
}

// ServerHelloMessage is the decoded content of the ServerHello the
// server emits in response: the negotiated version, server random,
// session id (empty when a new ticket will replace resumption-by-id),
// negotiated suite, and no compression (compression is a Non-goal).
type ServerHelloMessage struct {
	Random    [32]byte
	SessionID []byte
	Suite     uint16
}

// BuildServerHello generates the server random (first 4 bytes unix
// time, per spec.md §4.3) and a fresh 32-byte session id unless a new
// ticket is about to be issued, in which case the session id is empty.
func BuildServerHello(ctx *Context, cfg *Config) (*ServerHelloMessage, error) {
	var random [32]byte
	now := cfg.clock().Now().Unix()
	random[0] = byte(now >> 24)
	random[1] = byte(now >> 16)
	random[2] = byte(now >> 8)
	random[3] = byte(now)
	if _, err := cfg.rng().Read(random[4:]); err != nil {
		return nil, fatal(herr.RandomFailed, err)
	}
	ctx.ServerRandom = random

	var sessionID []byte
	if !ctx.Resume {
		if ctx.NewSessionTicketReq && cfg.Tickets != nil {
			sessionID = nil
		} else {
			sessionID = make([]byte, 32)
			if _, err := cfg.rng().Read(sessionID); err != nil {
				return nil, fatal(herr.RandomFailed, err)
			}
			ctx.SessionID = sessionID
		}
	}

	return &ServerHelloMessage{Random: random, SessionID: sessionID, Suite: ctx.NegotiatedSuite}, nil
}

// EncodeServerHello serialises the ServerHello handshake body (RFC 5246
// §7.4.1.3): version, random, session id, ciphersuite, compression
// method (always null — compression is a Non-goal).
func EncodeServerHello(m *ServerHelloMessage) []byte {
	out := make([]byte, 0, 2+32+1+len(m.SessionID)+2+1)
	out = append(out, ServerMax[0], ServerMax[1])
	out = append(out, m.Random[:]...)
	out = append(out, byte(len(m.SessionID)))
	out = append(out, m.SessionID...)
	out = append(out, byte(m.Suite>>8), byte(m.Suite))
	out = append(out, 0) // null compression
	return out
}
