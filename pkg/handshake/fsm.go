package handshake

import (
	"github.com/luxfi/tls12/pkg/herr"
	"github.com/luxfi/tls12/pkg/kex"
	"github.com/luxfi/tls12/pkg/mpi"
)

// FSM drives one connection's server-side handshake state sequence:
// CLIENT_HELLO -> SERVER_HELLO -> SERVER_CERTIFICATE -> SERVER_KEY_EXCHANGE
// -> (CERTIFICATE_REQUEST) -> SERVER_HELLO_DONE -> (CLIENT_CERTIFICATE) ->
// CLIENT_KEY_EXCHANGE -> (CERTIFICATE_VERIFY) -> CLIENT_CHANGE_CIPHER_SPEC
// -> CLIENT_FINISHED -> SERVER_CHANGE_CIPHER_SPEC -> SERVER_FINISHED ->
// HANDSHAKE_WRAPUP -> HANDSHAKE_OVER. Resumption reorders the two
// ChangeCipherSpec/Finished pairs, per spec.md §4.3.
//
// FSM does not own record-layer framing or a transport; it accepts
// handshake-message bodies and returns the bodies of the flight to
// send next. The caller is responsible for record-layer segmentation,
// the ChangeCipherSpec content-type boundary, and keeping the
// Transcript fed with every handshake message in wire order.
type FSM struct {
	Ctx *Context
	Cfg *Config

	dhP, dhG *mpi.Int // server's configured finite-field group, for DHE suites
	rsaKey   kex.RSADecrypter
}

// NewFSM starts a fresh server handshake. dhP/dhG may be nil when the
// server never offers a DHE suite; rsaKey may be nil when it never
// offers a plain-RSA suite.
func NewFSM(cfg *Config, transcript Transcript, dhP, dhG *mpi.Int, rsaKey kex.RSADecrypter) *FSM {
	return &FSM{
		Ctx:    NewContext(cfg, transcript),
		Cfg:    cfg,
		dhP:    dhP,
		dhG:    dhG,
		rsaKey: rsaKey,
	}
}

// StartClientHello begins the incremental ClientHello parse for a
// message whose total handshake-body length (from the 3-byte handshake
// header) is totalLen.
func (f *FSM) StartClientHello(totalLen int) {
	f.Ctx.parser = newClientHelloParser(f.Cfg.limits(), totalLen)
}

// FeedClientHello feeds the next chunk of ClientHello body bytes into
// the suspended nested FSM. It returns StatusOK once the whole message
// has been parsed, its extensions applied, and selection performed —
// at that point f.Ctx.State has advanced to StateServerHello and
// BuildServerFlight is ready to call. Any number of Feed boundaries
// over the same bytes produces the identical result (fragmentation
// invariance), per spec.md §4.3/§8.
func (f *FSM) FeedClientHello(data []byte) (consumed int, status Status, err error) {
	consumed, status, err = f.Ctx.parser.Feed(data)
	if err != nil || status != StatusOK {
		return consumed, status, err
	}
	msg := f.Ctx.parser.msg
	if err := ApplyExtensions(f.Ctx, msg, f.Cfg.limits(), f.Cfg.logger()); err != nil {
		return consumed, status, err
	}
	if err := ProcessClientHello(f.Ctx, f.Cfg, msg); err != nil {
		return consumed, status, err
	}
	f.Ctx.parser = nil
	f.Ctx.State = StateServerHello
	return consumed, status, nil
}

// ServerFlight is the set of handshake message bodies the server emits
// in response to ClientHello, in wire order. Every field after ServerHello
// is empty/nil when the resumption branch applies (spec.md §8 scenario 4).
type ServerFlight struct {
	ServerHello      []byte
	Certificate      [][]byte // leaf first, DER-encoded
	ServerKeyExchange []byte  // nil for plain-RSA kex or resumption
	HelloDone        []byte  // always zero-length per RFC 5246 §7.4.5
}

// BuildServerFlight runs StateServerHello through StateServerHelloDone:
// generate the server random/session id, resolve the negotiated
// suite's key-exchange kind, and (unless resuming) build the
// Certificate and optional ServerKeyExchange bodies. info must be the
// SuiteInfo for ctx.NegotiatedSuite.
func (f *FSM) BuildServerFlight(info SuiteInfo) (*ServerFlight, error) {
	sh, err := BuildServerHello(f.Ctx, f.Cfg)
	if err != nil {
		return nil, err
	}
	flight := &ServerFlight{ServerHello: EncodeServerHello(sh), HelloDone: []byte{}}

	if f.Ctx.Resume {
		f.Ctx.State = StateClientChangeCipherSpec
		return flight, nil
	}

	if f.Ctx.Cert != nil {
		flight.Certificate = f.Ctx.Cert.CertChain
	}

	ske, err := BuildServerKeyExchange(f.Ctx, f.Cfg, info, f.dhP, f.dhG)
	if err != nil {
		return nil, err
	}
	if ske != nil {
		flight.ServerKeyExchange = EncodeServerKeyExchange(ske)
	}

	f.Ctx.State = StateClientKeyExchange
	return flight, nil
}

// HandleClientKeyExchange processes the ClientKeyExchange body: derives
// the premaster per the negotiated kex kind and, via Config.KeyDeriver,
// the master secret. This server never emits CertificateRequest (see
// DESIGN.md), so the client never owes a CertificateVerify message;
// state always advances straight to CLIENT_CHANGE_CIPHER_SPEC.
// HandleCertificateVerify exists only for a caller that reintroduces
// client-certificate authentication and drives that state itself.
func (f *FSM) HandleClientKeyExchange(info SuiteInfo, body []byte) error {
	if err := ProcessClientKeyExchange(f.Ctx, f.Cfg, info, body, f.rsaKey); err != nil {
		return err
	}
	f.Ctx.State = StateClientChangeCipherSpec
	return nil
}

// HandleCertificateVerify verifies the client's CertificateVerify
// message against the peer certificate chain's leaf, over transcriptHash.
func (f *FSM) HandleCertificateVerify(leafDER []byte, transcriptHash []byte, body []byte) error {
	msg, err := ParseCertificateVerify(body)
	if err != nil {
		return err
	}
	if err := VerifyCertificateVerify(msg, leafDER, transcriptHash); err != nil {
		return err
	}
	f.Ctx.State = StateClientChangeCipherSpec
	return nil
}

// HandleClientFinished verifies the client's Finished verify_data over
// transcriptHash (taken up to, but not including, the client Finished
// message, and never including ChangeCipherSpec). A mismatch here is
// also where a Bleichenbacher-countermeasure fake premaster surfaces,
// per spec.md §7 — this function never distinguishes that case from an
// ordinary MAC failure.
func (f *FSM) HandleClientFinished(transcriptHash, verifyData []byte) error {
	if err := VerifyClientFinished(f.Ctx, f.Cfg, transcriptHash, verifyData); err != nil {
		return err
	}
	f.Ctx.State = StateServerChangeCipherSpec
	return nil
}

// BuildNewSessionTicket produces the NewSessionTicket body when the
// client requested one and Config.Tickets is configured; it is emitted
// before the server's ChangeCipherSpec/Finished flight, per spec.md
// §4.3. Returns nil, nil when no ticket should be sent.
func (f *FSM) BuildNewSessionTicket(lifetimeHint uint32) ([]byte, error) {
	if !f.Ctx.NewSessionTicketReq || f.Cfg.Tickets == nil {
		return nil, nil
	}
	state := &SessionState{
		CipherSuite:       f.Ctx.NegotiatedSuite,
		MasterSecret:      f.Ctx.MasterSecret,
		NegotiatedVersion: uint16(ServerMax[0])<<8 | uint16(ServerMax[1]),
		CreatedAt:         f.Cfg.clock().Now(),
	}
	ticket, err := f.Cfg.Tickets.Write(state, lifetimeHint)
	if err != nil {
		return nil, fatal(herr.HandshakeFailure, err)
	}
	out := make([]byte, 0, 6+len(ticket))
	out = append(out, byte(lifetimeHint>>24), byte(lifetimeHint>>16), byte(lifetimeHint>>8), byte(lifetimeHint))
	out = append(out, byte(len(ticket)>>8), byte(len(ticket)))
	out = append(out, ticket...)
	return out, nil
}

// BuildServerFinished completes the handshake: computes the server's
// Finished verify_data and advances state to HANDSHAKE_WRAPUP. Callers
// still owe one HANDSHAKE_OVER transition once the flight is on the wire.
func (f *FSM) BuildServerFinished(transcriptHash []byte) ([]byte, error) {
	vd, err := BuildServerFinished(f.Ctx, f.Cfg, transcriptHash)
	if err != nil {
		return nil, err
	}
	f.Ctx.State = StateHandshakeWrapup
	return vd, nil
}

// Done marks the handshake complete and zeroizes secret scratch.
func (f *FSM) Done() {
	f.Ctx.State = StateHandshakeOver
	f.Ctx.Zeroize()
}
