package handshake

import (
	"crypto"
	"io"
	"time"
)

// RNG is the randomness source the FSM draws server randoms, session
// ids, ephemeral key-exchange scalars, and Bleichenbacher fake
// premasters from. crypto/rand.Reader satisfies this.
type RNG interface {
	Read(p []byte) (n int, err error)
}

// Clock supplies wall-clock time for the 4-byte unix-time prefix in the
// server random and for ticket lifetime accounting.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the default Clock.
var SystemClock Clock = systemClock{}

// CertifiedKey binds a certificate chain (leaf first, DER-encoded) to the
// PrivateKey able to sign/decrypt with it.
type CertifiedKey struct {
	CertChain [][]byte
	Key       PrivateKey
}

// CertStore resolves the SNI extension (or the absence of one) to a
// vhost's certificate and key. A non-nil error is always fatal
// (UnrecognizedName).
type CertStore interface {
	ResolveSNI(serverName string) (*CertifiedKey, error)
}

// PrivateKey is the narrow asymmetric-key contract the handshake needs:
// signing ServerKeyExchange / CertificateVerify digests, and decrypting
// RSA-key-exchange premasters. Constant-time RSA private-key arithmetic
// is delegated entirely to the implementation (spec.md Non-goals).
type PrivateKey interface {
	Sign(rand io.Reader, digest []byte, sigHash, sigAlg uint8) ([]byte, error)
	Decrypt(rand io.Reader, ciphertext []byte) ([]byte, error)
	CanSign(sigAlg uint8) bool
	Public() crypto.PublicKey
}

// SessionState is the subset of session data a TicketCodec seals into an
// opaque ticket and later recovers.
type SessionState struct {
	CipherSuite      uint16
	MasterSecret     []byte
	NegotiatedVersion uint16
	CreatedAt        time.Time
}

// TicketCodec seals/opens NewSessionTicket payloads. pkg/ticket provides
// a concrete, swappable implementation; it is not mandatory.
type TicketCodec interface {
	Write(s *SessionState, lifetimeHint uint32) ([]byte, error)
	Parse(ticket []byte) (*SessionState, error)
}

// Transcript accumulates the running handshake-message hash used by
// ServerKeyExchange signatures, CertificateVerify, and Finished.
type Transcript interface {
	Write(p []byte) (int, error)
	Sum(hashAlg uint8) []byte
}

// KeyDeriver is the external key-derivation collaborator spec.md §6
// names (`derive_keys`): it turns a premaster secret into a 48-byte
// master secret using the TLS 1.2 PRF, either over the two randoms
// (classic) or over the handshake-transcript session hash (when
// ExtendedMasterSecret is negotiated, RFC 7627).
type KeyDeriver interface {
	MasterSecret(premaster, clientRandom, serverRandom []byte) ([]byte, error)
	ExtendedMasterSecret(premaster, sessionHash []byte) ([]byte, error)
	VerifyData(masterSecret []byte, label string, transcriptHash []byte) []byte
}
