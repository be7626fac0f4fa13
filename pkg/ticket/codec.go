// Package ticket is an example NewSessionTicket collaborator: it seals
// a handshake.SessionState into an opaque blob a client can present on
// a later connection to skip full negotiation. spec.md treats the
// ticket reader/writer as a pure external interface with no shipped
// implementation; this package is a concrete, swappable default.
package ticket

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/luxfi/tls12/pkg/handshake"
)

const nonceSize = 12

// wireState is the cbor-framed payload sealed inside a ticket; it
// mirrors handshake.SessionState but with a wire-stable shape
// (unix-nano timestamp rather than time.Time's internal representation).
type wireState struct {
	CipherSuite       uint16 `cbor:"1,keyasint"`
	MasterSecret      []byte `cbor:"2,keyasint"`
	NegotiatedVersion uint16 `cbor:"3,keyasint"`
	CreatedAtUnixNano int64  `cbor:"4,keyasint"`
}

// Codec seals/opens tickets with a single symmetric key, derived once
// at construction by hashing a fixed label and masterKey with blake3 — the same
// "derive a subkey with a keyed hash rather than using a root secret
// directly" shape the teacher uses for per-participant nonce
// commitments in its FROST signing round.
type Codec struct {
	aead cipher.AEAD
	rng  io.Reader
}

// NewCodec derives a 32-byte AES-256-GCM key from masterKey via blake3
// and returns a ready-to-use Codec. masterKey should be a long-term
// secret the server rotates independently of any single connection.
func NewCodec(masterKey []byte, rng io.Reader) (*Codec, error) {
	h := blake3.New()
	h.Write([]byte("tls12-session-ticket-v1"))
	h.Write(masterKey)
	key := make([]byte, 32)
	if _, err := h.Digest().Read(key); err != nil {
		return nil, fmt.Errorf("ticket: derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("ticket: new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ticket: new gcm: %w", err)
	}
	return &Codec{aead: aead, rng: rng}, nil
}

// Write implements handshake.TicketCodec: cbor-encode the session
// state, then AEAD-seal it under a fresh random nonce prefixed to the
// ciphertext. lifetimeHint is accepted for interface compatibility but
// not itself sealed into the ticket (the server is free to track
// lifetime out of band); per spec.md §4.3 it is carried alongside the
// ticket body on the wire, not inside it.
func (c *Codec) Write(s *handshake.SessionState, lifetimeHint uint32) ([]byte, error) {
	plain, err := cbor.Marshal(&wireState{
		CipherSuite:       s.CipherSuite,
		MasterSecret:      s.MasterSecret,
		NegotiatedVersion: s.NegotiatedVersion,
		CreatedAtUnixNano: s.CreatedAt.UnixNano(),
	})
	if err != nil {
		return nil, fmt.Errorf("ticket: encode: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(c.rng, nonce); err != nil {
		return nil, fmt.Errorf("ticket: nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, plain, nil)
	return sealed, nil
}

// Parse implements handshake.TicketCodec: opens an AEAD-sealed ticket
// and decodes the session state. Any failure (truncation, forged tag,
// malformed cbor) is reported as an error, which the caller treats as
// "no valid ticket" rather than a fatal handshake error, per spec.md
// §7's silent-tolerance disposition for ticket decrypt failure.
func (c *Codec) Parse(ticketBytes []byte) (*handshake.SessionState, error) {
	if len(ticketBytes) < nonceSize {
		return nil, fmt.Errorf("ticket: too short")
	}
	nonce, ciphertext := ticketBytes[:nonceSize], ticketBytes[nonceSize:]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("ticket: open: %w", err)
	}

	var w wireState
	if err := cbor.Unmarshal(plain, &w); err != nil {
		return nil, fmt.Errorf("ticket: decode: %w", err)
	}
	return &handshake.SessionState{
		CipherSuite:       w.CipherSuite,
		MasterSecret:      w.MasterSecret,
		NegotiatedVersion: w.NegotiatedVersion,
		CreatedAt:         time.Unix(0, w.CreatedAtUnixNano),
	}, nil
}
