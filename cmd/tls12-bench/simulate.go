package main

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/spf13/cobra"

	"github.com/luxfi/tls12/pkg/ecp"
	"github.com/luxfi/tls12/pkg/handshake"
	"github.com/luxfi/tls12/pkg/handshake/ext"
	"github.com/luxfi/tls12/pkg/kex"
)

// demoECDSAKey wraps an ecdsa.PrivateKey as a handshake.PrivateKey. It
// exists only to drive this command's simulation; real deployments
// supply their own PrivateKey backed by an HSM, a file-based key store,
// or similar.
type demoECDSAKey struct {
	priv *ecdsa.PrivateKey
}

func (k *demoECDSAKey) Sign(rnd io.Reader, digest []byte, sigHash, sigAlg uint8) ([]byte, error) {
	return ecdsa.SignASN1(rnd, k.priv, digest)
}

func (k *demoECDSAKey) Decrypt(rnd io.Reader, ciphertext []byte) ([]byte, error) {
	return nil, fmt.Errorf("demo key does not support RSA decryption")
}

func (k *demoECDSAKey) CanSign(sigAlg uint8) bool { return sigAlg == handshake.SigECDSA }

func (k *demoECDSAKey) Public() crypto.PublicKey { return k.priv.Public() }

// demoCertStore resolves every SNI request to the same self-signed
// certificate, for simulation purposes only.
type demoCertStore struct {
	ck *handshake.CertifiedKey
}

func (s *demoCertStore) ResolveSNI(serverName string) (*handshake.CertifiedKey, error) {
	return s.ck, nil
}

// demoTranscript accumulates a running sha256 digest of every
// handshake message byte it is given. A real deployment supports
// multiple hash algorithms negotiated by the ciphersuite; this demo
// only ever needs sha256, matching the one suite it simulates.
type demoTranscript struct {
	h interface {
		Write([]byte) (int, error)
		Sum([]byte) []byte
	}
}

func newDemoTranscript() *demoTranscript { return &demoTranscript{h: sha256.New()} }

func (t *demoTranscript) Write(p []byte) (int, error) { return t.h.Write(p) }
func (t *demoTranscript) Sum(hashAlg uint8) []byte     { return t.h.Sum(nil) }

// demoKeyDeriver is a placeholder key-derivation collaborator: it folds
// the premaster and randoms through sha256 rather than implementing
// the real TLS 1.2 PRF. spec.md explicitly treats key derivation as
// record-layer glue external to this module's core (alongside
// write_change_cipher_spec and parse_finished), so no real PRF ships
// here — this stand-in exists purely so `simulate` has something to
// call and print.
type demoKeyDeriver struct{}

func (demoKeyDeriver) MasterSecret(premaster, clientRandom, serverRandom []byte) ([]byte, error) {
	h := sha256.New()
	h.Write(premaster)
	h.Write(clientRandom)
	h.Write(serverRandom)
	return h.Sum(nil), nil
}

func (demoKeyDeriver) ExtendedMasterSecret(premaster, sessionHash []byte) ([]byte, error) {
	h := sha256.New()
	h.Write(premaster)
	h.Write(sessionHash)
	return h.Sum(nil), nil
}

func (demoKeyDeriver) VerifyData(masterSecret []byte, label string, transcriptHash []byte) []byte {
	h := sha256.New()
	h.Write(masterSecret)
	h.Write([]byte(label))
	h.Write(transcriptHash)
	return h.Sum(nil)[:12]
}

func runSimulate(cmd *cobra.Command, args []string) error {
	g, ok := ecp.ByName(simCurve)
	if !ok {
		return fmt.Errorf("unknown curve %q", simCurve)
	}

	leafDER, key, err := makeSelfSignedECDSACert()
	if err != nil {
		return fmt.Errorf("simulate: build certificate: %w", err)
	}

	cfg := &handshake.Config{
		CipherSuites: []uint16{0xC02B}, // TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256
		Curves:       []ecp.ID{g.ID},
		SigHashAlgs:  []handshake.SigHashAlg{{Hash: handshake.HashSHA256, Sig: handshake.SigECDSA}},
		CertStore:    &demoCertStore{ck: &handshake.CertifiedKey{CertChain: [][]byte{leafDER}, Key: &demoECDSAKey{priv: key}}},
		KeyDeriver:   demoKeyDeriver{},
		Limits:       handshake.DefaultLimits,
		RNG:          rand.Reader,
		Clock:        handshake.SystemClock,
	}

	transcript := newDemoTranscript()
	fsm := handshake.NewFSM(cfg, transcript, nil, nil, nil)

	clientHelloBody := buildDemoClientHello(g.WireID)
	transcript.Write(wrapHandshakeHeader(1, clientHelloBody))

	fsm.StartClientHello(len(clientHelloBody))
	// Feed in two fragments to exercise the resumable parser, per
	// spec.md's fragmentation-invariance property.
	split := len(clientHelloBody) / 2
	if _, status, err := fsm.FeedClientHello(clientHelloBody[:split]); err != nil {
		return fmt.Errorf("simulate: ClientHello (fragment 1): %w", err)
	} else if status == handshake.StatusOK {
		return fmt.Errorf("simulate: ClientHello completed too early")
	}
	if _, status, err := fsm.FeedClientHello(clientHelloBody[split:]); err != nil {
		return fmt.Errorf("simulate: ClientHello (fragment 2): %w", err)
	} else if status != handshake.StatusOK {
		return fmt.Errorf("simulate: ClientHello did not complete")
	}
	fmt.Printf("ClientHello accepted. Negotiated suite: 0x%04x, SNI: %q\n", fsm.Ctx.NegotiatedSuite, fsm.Ctx.ServerNameRequested)

	info, ok := handshake.LookupSuite(fsm.Ctx.NegotiatedSuite)
	if !ok {
		return fmt.Errorf("simulate: unrecognised negotiated suite")
	}

	flight, err := fsm.BuildServerFlight(info)
	if err != nil {
		return fmt.Errorf("simulate: build server flight: %w", err)
	}
	transcript.Write(wrapHandshakeHeader(2, flight.ServerHello))
	for _, cert := range flight.Certificate {
		transcript.Write(wrapHandshakeHeader(11, cert))
	}
	if flight.ServerKeyExchange != nil {
		transcript.Write(wrapHandshakeHeader(12, flight.ServerKeyExchange))
	}
	transcript.Write(wrapHandshakeHeader(14, flight.HelloDone))
	fmt.Println("Server flight built: ServerHello, Certificate, ServerKeyExchange, ServerHelloDone.")

	clientD, clientQ, err := g.GenerateKeyPair(rand.Reader)
	if err != nil {
		return fmt.Errorf("simulate: client ECDHE keygen: %w", err)
	}
	clientPointEnc := g.Marshal(clientQ)
	cke := append([]byte{byte(len(clientPointEnc))}, clientPointEnc...)
	transcript.Write(wrapHandshakeHeader(16, cke))

	if err := fsm.HandleClientKeyExchange(info, cke); err != nil {
		return fmt.Errorf("simulate: ClientKeyExchange: %w", err)
	}

	clientPremaster, err := kex.DeriveECDHSecret(g, clientD, fsm.Ctx.ECDHE.Q, rand.Reader)
	if err != nil {
		return fmt.Errorf("simulate: client-side premaster: %w", err)
	}
	clientMasterSecret, err := cfg.KeyDeriver.MasterSecret(clientPremaster, fsm.Ctx.ClientRandom[:], fsm.Ctx.ServerRandom[:])
	if err != nil {
		return err
	}

	fmt.Printf("Server-derived master secret: %x\n", fsm.Ctx.MasterSecret)
	fmt.Printf("Client-derived master secret: %x\n", clientMasterSecret)
	if string(clientMasterSecret) != string(fsm.Ctx.MasterSecret) {
		return fmt.Errorf("simulate: master secrets diverged")
	}
	fmt.Println("Master secrets match. Handshake crypto core simulation complete.")
	fsm.Done()
	return nil
}

// wrapHandshakeHeader prepends the 4-byte (type, 3-byte length)
// handshake record header, matching what a real transcript hash is
// computed over (RFC 5246 §7.4).
func wrapHandshakeHeader(msgType byte, body []byte) []byte {
	n := len(body)
	out := make([]byte, 0, 4+n)
	out = append(out, msgType, byte(n>>16), byte(n>>8), byte(n))
	return append(out, body...)
}

// buildDemoClientHello hand-assembles a minimal, well-formed
// ClientHello body offering exactly one ciphersuite/curve, for the
// simulation to feed into the incremental parser.
func buildDemoClientHello(curveWireID uint16) []byte {
	var body []byte
	body = append(body, 3, 3) // TLS 1.2
	random := make([]byte, 32)
	_, _ = rand.Read(random)
	body = append(body, random...)
	body = append(body, 0) // empty session id

	body = append(body, 0, 2, 0xC0, 0x2B) // one ciphersuite
	body = append(body, 1, 0)            // one compression method: null

	var exts []byte
	exts = append(exts, extTLV(ext.TypeSupportedGroups, tlv16(curveWireID))...)
	exts = append(exts, extTLV(ext.TypeECPointFormats, append([]byte{1}, 0))...)
	exts = append(exts, extTLV(ext.TypeSignatureAlgorithms, tlv16(uint16(handshake.HashSHA256)<<8|uint16(handshake.SigECDSA)))...)
	exts = append(exts, extTLV(ext.TypeRenegotiationInfo, []byte{0})...)

	body = append(body, byte(len(exts)>>8), byte(len(exts)))
	body = append(body, exts...)
	return body
}

func tlv16(v uint16) []byte {
	return []byte{0, 2, byte(v >> 8), byte(v)}
}

func extTLV(typ uint16, body []byte) []byte {
	out := []byte{byte(typ >> 8), byte(typ), byte(len(body) >> 8), byte(len(body))}
	return append(out, body...)
}

func makeSelfSignedECDSACert() ([]byte, *ecdsa.PrivateKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "tls12-bench demo"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	if err != nil {
		return nil, nil, err
	}
	return der, priv, nil
}
