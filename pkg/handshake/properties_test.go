package handshake_test

import (
	"crypto"
	"crypto/rand"
	"io"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luxfi/tls12/pkg/handshake"
	"github.com/luxfi/tls12/pkg/handshake/ext"
	"github.com/luxfi/tls12/pkg/herr"
)

// fakeKey is a minimal handshake.PrivateKey stand-in so fakeResolver can
// hand back a CertifiedKey that passes the "feasibility of a matching
// certificate" selection check (serverhello.go's hasCert) without a
// real asymmetric key.
type fakeKey struct{}

func (fakeKey) Sign(rand io.Reader, digest []byte, sigHash, sigAlg uint8) ([]byte, error) {
	return []byte("sig"), nil
}
func (fakeKey) Decrypt(rand io.Reader, ciphertext []byte) ([]byte, error) { return nil, nil }
func (fakeKey) CanSign(sigAlg uint8) bool                                 { return true }
func (fakeKey) Public() crypto.PublicKey                                  { return nil }

// fakeResolver lets the SNI-miss property force ResolveSNI to fail
// without needing a real certificate store.
type fakeResolver struct {
	err error
}

func (r *fakeResolver) ResolveSNI(serverName string) (*handshake.CertifiedKey, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &handshake.CertifiedKey{Key: fakeKey{}}, nil
}

// fakeTicketCodec always resolves a ticket to the same session state,
// so ApplyExtensions' "a valid ticket implies resume" branch can be
// exercised without a real AEAD-sealed ticket.
type fakeTicketCodec struct {
	state *handshake.SessionState
	err   error
}

func (c *fakeTicketCodec) Write(s *handshake.SessionState, lifetimeHint uint32) ([]byte, error) {
	return []byte("ticket"), nil
}

func (c *fakeTicketCodec) Parse(ticket []byte) (*handshake.SessionState, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.state, nil
}

// clientHelloMessage defaults to offering TLS_RSA_WITH_AES_256_GCM_SHA384
// (0x009D), a plain-RSA-kex suite that needs only a certified key to be
// feasible (no curve, no signature hash) — keeping the fallback/SNI/
// version-window specs below independent of the curve/hash feasibility
// checks that TestSelectCiphersuiteSkipsInfeasibleCandidate exercises
// directly.
func clientHelloMessage() *handshake.ClientHelloMessage {
	var random [32]byte
	_, _ = rand.Read(random[:])
	return &handshake.ClientHelloMessage{
		VersionMajor: 3,
		VersionMinor: 3,
		Random:       random,
		CipherSuites: []uint16{0x009D},
		Extensions:   map[uint16][]byte{},
	}
}

var _ = Describe("ClientHello selection ordering", func() {
	var cfg *handshake.Config

	BeforeEach(func() {
		cfg = &handshake.Config{
			CipherSuites: []uint16{0x009D},
			CertStore:    &fakeResolver{},
			Limits:       handshake.DefaultLimits,
		}
	})

	// spec.md §8: "SCSV FALLBACK_SCSV in a ClientHello advertising
	// version < server-max produces fatal INAPPROPRIATE_FALLBACK."
	It("rejects a fallback-flagged ClientHello offering a version below the server max", func() {
		ctx := handshake.NewContext(cfg, nil)
		msg := clientHelloMessage()
		msg.VersionMinor = 1 // TLS 1.0, below ServerMax {3,3}
		msg.FallbackSCSV = true

		err := handshake.ProcessClientHello(ctx, cfg, msg)
		Expect(err).To(HaveOccurred())
		Expect(herr.Is(err, herr.InappropriateFallback)).To(BeTrue())
	})

	It("does not reject a fallback-flagged ClientHello already at the server max", func() {
		ctx := handshake.NewContext(cfg, nil)
		msg := clientHelloMessage()
		msg.FallbackSCSV = true // already {3,3}, not a downgrade

		err := handshake.ProcessClientHello(ctx, cfg, msg)
		Expect(err).NotTo(HaveOccurred())
	})

	// spec.md §4.3/§8: an SNI miss before hash selection is fatal
	// UNRECOGNIZED_NAME.
	It("fails with UnrecognizedName when the configured CertStore rejects the requested name", func() {
		cfg.CertStore = &fakeResolver{err: herr.New(herr.UnrecognizedName)}
		ctx := handshake.NewContext(cfg, nil)
		msg := clientHelloMessage()

		err := handshake.ProcessClientHello(ctx, cfg, msg)
		Expect(err).To(HaveOccurred())
		Expect(herr.Is(err, herr.UnrecognizedName)).To(BeTrue())
	})

	It("resolves the vhost and proceeds when the CertStore finds a match", func() {
		ctx := handshake.NewContext(cfg, nil)
		msg := clientHelloMessage()

		Expect(handshake.ProcessClientHello(ctx, cfg, msg)).To(Succeed())
		Expect(ctx.Cert).NotTo(BeNil())
	})

	// spec.md §4.3: "iterate the server ciphersuite preference
	// list... first match wins" — the server's order decides, not the
	// client's, among candidates the server can actually complete. Both
	// suites here are plain-RSA-kex (no curve/hash feasibility check
	// applies), isolating the preference-order property from the
	// feasibility-skipping property covered separately in fsm_test.go.
	It("picks the server's most preferred overlapping ciphersuite regardless of client order", func() {
		cfg.CipherSuites = []uint16{0x009D, 0x002F}
		ctx := handshake.NewContext(cfg, nil)
		msg := clientHelloMessage()
		msg.CipherSuites = []uint16{0x002F, 0x009D}

		Expect(handshake.ProcessClientHello(ctx, cfg, msg)).To(Succeed())
		Expect(ctx.NegotiatedSuite).To(Equal(uint16(0x009D)))
	})

	It("fails the handshake when no ciphersuite overlaps", func() {
		cfg.CipherSuites = []uint16{0x009D}
		ctx := handshake.NewContext(cfg, nil)
		msg := clientHelloMessage()
		msg.CipherSuites = []uint16{0x002F}

		err := handshake.ProcessClientHello(ctx, cfg, msg)
		Expect(err).To(HaveOccurred())
		Expect(herr.Is(err, herr.HandshakeFailure)).To(BeTrue())
	})
})

var _ = Describe("ALPN and session-ticket extension semantics", func() {
	// spec.md §8: "An ALPN list whose set-intersection with the server
	// list is empty results in NO_APPLICATION_PROTOCOL; with a
	// non-empty intersection, the server's most preferred matching name
	// is chosen."
	It("chooses the server's most preferred protocol from a non-empty intersection", func() {
		cfg := &handshake.Config{ALPNProtocols: []string{"h2", "http/1.1"}}
		ctx := handshake.NewContext(cfg, nil)

		var list []byte
		for _, p := range []string{"http/1.1", "h2"} {
			list = append(list, byte(len(p)))
			list = append(list, p...)
		}
		body := append([]byte{byte(len(list) >> 8), byte(len(list))}, list...)

		msg := &handshake.ClientHelloMessage{Extensions: map[uint16][]byte{ext.TypeALPN: body}}
		Expect(handshake.ApplyExtensions(ctx, msg, handshake.DefaultLimits, handshake.NoopLogger)).To(Succeed())
		Expect(ctx.ALPNProtocol).To(Equal("h2"))
	})

	It("is fatal with NoApplicationProtocol when the intersection is empty", func() {
		cfg := &handshake.Config{ALPNProtocols: []string{"h2"}}
		ctx := handshake.NewContext(cfg, nil)

		proto := "spdy/1"
		list := append([]byte{byte(len(proto))}, proto...)
		body := append([]byte{0, byte(len(list))}, list...)

		msg := &handshake.ClientHelloMessage{Extensions: map[uint16][]byte{ext.TypeALPN: body}}
		err := handshake.ApplyExtensions(ctx, msg, handshake.DefaultLimits, handshake.NoopLogger)
		Expect(err).To(HaveOccurred())
		Expect(herr.Is(err, herr.NoApplicationProtocol)).To(BeTrue())
	})

	// spec.md §8 scenario 4: "ClientHello carries a valid ticket and
	// matching session id -> server sets resume=1."
	It("sets Resume when the ticket codec successfully parses the offered ticket", func() {
		state := &handshake.SessionState{CipherSuite: 0xC02B, MasterSecret: []byte("ms"), CreatedAt: time.Now()}
		cfg := &handshake.Config{Tickets: &fakeTicketCodec{state: state}}
		ctx := handshake.NewContext(cfg, nil)

		msg := &handshake.ClientHelloMessage{Extensions: map[uint16][]byte{ext.TypeSessionTicket: []byte("opaque-ticket")}}
		Expect(handshake.ApplyExtensions(ctx, msg, handshake.DefaultLimits, handshake.NoopLogger)).To(Succeed())
		Expect(ctx.Resume).To(BeTrue())
	})

	// spec.md §7 "silent tolerance": ticket decrypt failure is
	// non-fatal — a new ticket may be issued instead.
	It("tolerates a ticket decrypt failure and requests a new ticket instead of failing", func() {
		cfg := &handshake.Config{Tickets: &fakeTicketCodec{err: herr.New(herr.BadInputData)}}
		ctx := handshake.NewContext(cfg, nil)

		msg := &handshake.ClientHelloMessage{Extensions: map[uint16][]byte{ext.TypeSessionTicket: []byte("garbage")}}
		Expect(handshake.ApplyExtensions(ctx, msg, handshake.DefaultLimits, handshake.NoopLogger)).To(Succeed())
		Expect(ctx.Resume).To(BeFalse())
		Expect(ctx.NewSessionTicketReq).To(BeTrue())
	})
})
