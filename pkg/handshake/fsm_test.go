package handshake

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"io"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/tls12/pkg/ecp"
	"github.com/luxfi/tls12/pkg/handshake/ext"
	"github.com/luxfi/tls12/pkg/kex"
)

// fakeKeyDeriver folds inputs through sha256 rather than the real TLS
// 1.2 PRF, which is record-layer glue external to this package; it only
// needs to be deterministic and injective enough to prove the client
// and server sides of a test handshake land on the same master secret.
type fakeKeyDeriver struct{}

func (fakeKeyDeriver) MasterSecret(premaster, clientRandom, serverRandom []byte) ([]byte, error) {
	h := sha256.New()
	h.Write(premaster)
	h.Write(clientRandom)
	h.Write(serverRandom)
	return h.Sum(nil), nil
}

func (fakeKeyDeriver) ExtendedMasterSecret(premaster, sessionHash []byte) ([]byte, error) {
	h := sha256.New()
	h.Write(premaster)
	h.Write(sessionHash)
	return h.Sum(nil), nil
}

func (fakeKeyDeriver) VerifyData(masterSecret []byte, label string, transcriptHash []byte) []byte {
	h := sha256.New()
	h.Write(masterSecret)
	h.Write([]byte(label))
	h.Write(transcriptHash)
	return h.Sum(nil)[:12]
}

type fakeECDSAKey struct {
	priv *ecdsa.PrivateKey
}

func (k *fakeECDSAKey) Sign(rnd io.Reader, digest []byte, sigHash, sigAlg uint8) ([]byte, error) {
	return ecdsa.SignASN1(rnd, k.priv, digest)
}

func (k *fakeECDSAKey) Decrypt(rnd io.Reader, ciphertext []byte) ([]byte, error) {
	return nil, herrUnsupported{}
}

func (k *fakeECDSAKey) CanSign(sigAlg uint8) bool { return sigAlg == SigECDSA }

func (k *fakeECDSAKey) Public() crypto.PublicKey { return k.priv.Public() }

type herrUnsupported struct{}

func (herrUnsupported) Error() string { return "fake key: RSA decryption unsupported" }

type fakeCertStore struct {
	ck *CertifiedKey
}

func (s *fakeCertStore) ResolveSNI(serverName string) (*CertifiedKey, error) {
	return s.ck, nil
}

type fakeTranscript struct {
	h interface {
		Write([]byte) (int, error)
		Sum([]byte) []byte
	}
}

func newFakeTranscript() *fakeTranscript { return &fakeTranscript{h: sha256.New()} }

func (t *fakeTranscript) Write(p []byte) (int, error) { return t.h.Write(p) }
func (t *fakeTranscript) Sum(hashAlg uint8) []byte     { return t.h.Sum(nil) }

func makeTestECDSACert(t *testing.T) ([]byte, *ecdsa.PrivateKey) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)
	return der, priv
}

func tlv16ForTest(v uint16) []byte {
	return []byte{0, 2, byte(v >> 8), byte(v)}
}

func buildTestClientHello(curveWireID uint16) []byte {
	var body []byte
	body = append(body, 3, 3)
	random := make([]byte, 32)
	_, _ = rand.Read(random)
	body = append(body, random...)
	body = append(body, 0)
	body = append(body, 0, 2, 0xC0, 0x2B)
	body = append(body, 1, 0)

	var exts []byte
	exts = append(exts, extTLVForTest(ext.TypeSupportedGroups, tlv16ForTest(curveWireID))...)
	exts = append(exts, extTLVForTest(ext.TypeECPointFormats, append([]byte{1}, 0))...)
	exts = append(exts, extTLVForTest(ext.TypeSignatureAlgorithms, tlv16ForTest(uint16(HashSHA256)<<8|uint16(SigECDSA)))...)
	exts = append(exts, extTLVForTest(ext.TypeRenegotiationInfo, []byte{0})...)

	body = append(body, byte(len(exts)>>8), byte(len(exts)))
	body = append(body, exts...)
	return body
}

func wrapHeaderForTest(msgType byte, body []byte) []byte {
	n := len(body)
	out := make([]byte, 0, 4+n)
	out = append(out, msgType, byte(n>>16), byte(n>>8), byte(n))
	return append(out, body...)
}

// TestFSMEndToEndECDHEECDSA drives a full ClientHello → ServerFlight →
// ClientKeyExchange round trip and checks both sides land on the same
// master secret, the basic correctness property any handshake core must
// have before anything else matters.
func TestFSMEndToEndECDHEECDSA(t *testing.T) {
	g, ok := ecp.ByName("secp256r1")
	require.True(t, ok)

	leafDER, key := makeTestECDSACert(t)

	cfg := &Config{
		CipherSuites: []uint16{0xC02B},
		Curves:       []ecp.ID{g.ID},
		SigHashAlgs:  []SigHashAlg{{Hash: HashSHA256, Sig: SigECDSA}},
		CertStore:    &fakeCertStore{ck: &CertifiedKey{CertChain: [][]byte{leafDER}, Key: &fakeECDSAKey{priv: key}}},
		KeyDeriver:   fakeKeyDeriver{},
		Limits:       DefaultLimits,
		RNG:          rand.Reader,
		Clock:        SystemClock,
	}

	transcript := newFakeTranscript()
	fsm := NewFSM(cfg, transcript, nil, nil, nil)

	clientHelloBody := buildTestClientHello(g.WireID)
	transcript.Write(wrapHeaderForTest(1, clientHelloBody))

	fsm.StartClientHello(len(clientHelloBody))
	split := len(clientHelloBody) / 2
	_, status, err := fsm.FeedClientHello(clientHelloBody[:split])
	require.NoError(t, err)
	require.NotEqual(t, StatusOK, status, "fragment 1 must not complete the parse")

	_, status, err = fsm.FeedClientHello(clientHelloBody[split:])
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	require.Equal(t, uint16(0xC02B), fsm.Ctx.NegotiatedSuite)
	require.Equal(t, StateServerHello, fsm.Ctx.State)

	info, ok := LookupSuite(fsm.Ctx.NegotiatedSuite)
	require.True(t, ok)

	flight, err := fsm.BuildServerFlight(info)
	require.NoError(t, err)
	require.NotNil(t, flight.ServerKeyExchange)
	require.Len(t, flight.Certificate, 1)
	transcript.Write(wrapHeaderForTest(2, flight.ServerHello))
	for _, cert := range flight.Certificate {
		transcript.Write(wrapHeaderForTest(11, cert))
	}
	transcript.Write(wrapHeaderForTest(12, flight.ServerKeyExchange))
	transcript.Write(wrapHeaderForTest(14, flight.HelloDone))
	require.Equal(t, StateClientKeyExchange, fsm.Ctx.State)

	clientD, clientQ, err := g.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)
	clientPointEnc := g.Marshal(clientQ)
	cke := append([]byte{byte(len(clientPointEnc))}, clientPointEnc...)
	transcript.Write(wrapHeaderForTest(16, cke))

	require.NoError(t, fsm.HandleClientKeyExchange(info, cke))
	require.Equal(t, StateClientChangeCipherSpec, fsm.Ctx.State)

	clientPremaster, err := kex.DeriveECDHSecret(g, clientD, fsm.Ctx.ECDHE.Q, rand.Reader)
	require.NoError(t, err)
	clientMasterSecret, err := cfg.KeyDeriver.MasterSecret(clientPremaster, fsm.Ctx.ClientRandom[:], fsm.Ctx.ServerRandom[:])
	require.NoError(t, err)

	require.Equal(t, clientMasterSecret, fsm.Ctx.MasterSecret)

	clientFinishedHash := transcript.Sum(HashSHA256)
	verifyData := cfg.KeyDeriver.VerifyData(clientMasterSecret, "client finished", clientFinishedHash)
	require.NoError(t, fsm.HandleClientFinished(clientFinishedHash, verifyData))
	require.Equal(t, StateServerChangeCipherSpec, fsm.Ctx.State)
	transcript.Write(wrapHeaderForTest(20, verifyData))

	serverFinishedHash := transcript.Sum(HashSHA256)
	vd, err := fsm.BuildServerFinished(serverFinishedHash)
	require.NoError(t, err)
	require.NotEmpty(t, vd)
	require.Equal(t, StateHandshakeWrapup, fsm.Ctx.State)

	fsm.Done()
	require.Equal(t, StateHandshakeOver, fsm.Ctx.State)
	require.Nil(t, fsm.Ctx.MasterSecret)
}

// TestFSMHandleClientFinishedRejectsBadVerifyData checks the
// constant-time comparison path actually rejects a forged Finished.
func TestFSMHandleClientFinishedRejectsBadVerifyData(t *testing.T) {
	cfg := &Config{KeyDeriver: fakeKeyDeriver{}, RNG: rand.Reader, Limits: DefaultLimits}
	ctx := NewContext(cfg, newFakeTranscript())
	ctx.MasterSecret = []byte("deadbeefdeadbeefdeadbeefdeadbeef")

	err := VerifyClientFinished(ctx, cfg, []byte("transcript"), []byte("not the right verify data"))
	require.Error(t, err)
}

// TestSelectCiphersuiteServerPreferenceWins checks the server's
// preference order, not the client's, determines the negotiated suite.
func TestSelectCiphersuiteServerPreferenceWins(t *testing.T) {
	suite, ok := SelectCiphersuite(
		[]uint16{0xC02B, 0x002F},
		[]uint16{0x002F, 0xC02B},
		nil, nil, nil,
	)
	require.True(t, ok)
	require.Equal(t, uint16(0xC02B), suite)
}

func TestSelectCiphersuiteNoOverlap(t *testing.T) {
	_, ok := SelectCiphersuite([]uint16{0xC02B}, []uint16{0x002F}, nil, nil, nil)
	require.False(t, ok)
}

// TestSelectCiphersuiteSkipsInfeasibleCandidate checks spec.md §4.3's
// "first *feasible* match wins": a server preferring ECDHE-ECDSA ahead
// of RSA must fall through to RSA when the client offers both suites
// but no matching curve is available for the ECDHE one, rather than
// selecting ECDHE-ECDSA and failing later in BuildServerKeyExchange.
func TestSelectCiphersuiteSkipsInfeasibleCandidate(t *testing.T) {
	hasCurve := func(SuiteInfo) bool { return false }
	suite, ok := SelectCiphersuite(
		[]uint16{0xC02B, 0x002F},
		[]uint16{0xC02B, 0x002F},
		hasCurve, nil, nil,
	)
	require.True(t, ok)
	require.Equal(t, uint16(0x002F), suite)
}

// TestSelectCiphersuiteAllCandidatesInfeasible checks that exhausting
// the preference list without a feasible candidate reports no match,
// the same disposition as a plain empty intersection.
func TestSelectCiphersuiteAllCandidatesInfeasible(t *testing.T) {
	hasHashFor := func(SuiteInfo) bool { return false }
	_, ok := SelectCiphersuite(
		[]uint16{0xC009},
		[]uint16{0xC009},
		nil, hasHashFor, nil,
	)
	require.False(t, ok)
}
