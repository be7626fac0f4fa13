package handshake

import (
	"github.com/luxfi/tls12/pkg/ecp"
	"github.com/luxfi/tls12/pkg/handshake/ext"
	"github.com/luxfi/tls12/pkg/kex"
	"github.com/luxfi/tls12/pkg/mpi"
)

// State names one position in the server handshake state sequence
// spec.md §4.3 lays out.
type State int

const (
	StateClientHello State = iota
	StateServerHello
	StateServerCertificate
	StateServerKeyExchange
	StateCertificateRequest
	StateServerHelloDone
	StateClientCertificate
	StateClientKeyExchange
	StateCertificateVerify
	StateClientChangeCipherSpec
	StateClientFinished
	StateServerChangeCipherSpec
	StateServerFinished
	StateHandshakeWrapup
	StateHandshakeOver
)

// Context is the per-connection handshake scratch spec.md §3 describes:
// the two randoms, negotiated parameters, key-exchange state, selection
// flags, and the incremental parser's suspendable substate. It is owned
// exclusively by one connection; Zeroize releases secret material.
type Context struct {
	cfg *Config

	State State

	ClientRandom [32]byte
	ServerRandom [32]byte

	NegotiatedSuite uint16
	SessionID       []byte

	AcceptedCurves []uint16 // client's offered curves, in client preference order
	SigHashAlgs    []ext.SigHashAlg

	SecureRenegotiation bool
	ExtendedMasterSecret bool
	NewSessionTicketReq bool
	Resume              bool
	CurvesExt           bool
	ClientExts          bool

	ServerNameRequested string
	Cert                *CertifiedKey

	ALPNProtocol string

	ECDHE *kex.ECDHEParams
	DHE   *kex.DHParams

	PeerECPoint  *ecp.Point
	PeerDHPublic *mpi.Int

	Premaster    []byte
	MasterSecret []byte

	Transcript Transcript

	parser *clientHelloParser
}

// NewContext creates a fresh handshake context for one connection.
func NewContext(cfg *Config, transcript Transcript) *Context {
	return &Context{cfg: cfg, State: StateClientHello, Transcript: transcript}
}

// Zeroize releases secret material the context holds: premaster,
// master secret, and any key-exchange private scalars. Callers must
// call this on every handshake exit path (success, fatal error, or
// abandonment), per spec.md §5's cancellation contract.
func (c *Context) Zeroize() {
	for i := range c.Premaster {
		c.Premaster[i] = 0
	}
	c.Premaster = nil
	for i := range c.MasterSecret {
		c.MasterSecret[i] = 0
	}
	c.MasterSecret = nil
	if c.ECDHE != nil {
		c.ECDHE.D.Zeroize()
	}
	if c.DHE != nil {
		c.DHE.X.Zeroize()
	}
}
