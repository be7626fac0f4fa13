package handshake

import (
	"encoding/json"
	"fmt"

	"github.com/luxfi/tls12/pkg/ecp"
)

// Limits bounds the ClientHello parser's scratch allocations, per
// spec.md §6's "maximum number of accepted ciphersuite bytes... maximum
// ALPN protocols... maximum supported curves" tunables.
type Limits struct {
	MaxCipherSuites  int
	MaxALPNProtocols int
	MaxSupportedCurves int
	MaxExtensionBody  int
}

// DefaultLimits matches mbedTLS-class defaults: generous enough for any
// real client, small enough to bound a hostile ClientHello's memory use.
var DefaultLimits = Limits{
	MaxCipherSuites:    64,
	MaxALPNProtocols:   16,
	MaxSupportedCurves: 16,
	MaxExtensionBody:   1 << 14,
}

// Config configures one handshake FSM instance: negotiation preferences,
// the certificate/key and ticket collaborators, and resource limits. It
// is the constructor-injected analogue of spec.md §6's collaborator set.
type Config struct {
	CipherSuites   []uint16 // server preference order
	Curves         []ecp.ID // server preference order
	SigHashAlgs    []SigHashAlg
	CertStore      CertStore
	Tickets        TicketCodec // nil disables session tickets
	KeyDeriver     KeyDeriver
	ALPNProtocols  []string    // server preference order
	Limits         Limits
	Logger         Logger
	RNG            RNG
	Clock          Clock
	WindowSize     int // carried through JSON only; the handshake never applies it to ecp.WindowSize
}

// SigHashAlg is a TLS 1.2 (hash, signature) algorithm pair, as carried on
// the wire by the signature_algorithms extension.
type SigHashAlg struct {
	Hash uint8
	Sig  uint8
}

func (c *Config) logger() Logger {
	if c.Logger == nil {
		return NoopLogger
	}
	return c.Logger
}

func (c *Config) rng() RNG {
	if c.RNG == nil {
		panic("handshake: Config.RNG must be set")
	}
	return c.RNG
}

func (c *Config) clock() Clock {
	if c.Clock == nil {
		return SystemClock
	}
	return c.Clock
}

func (c *Config) limits() Limits {
	l := c.Limits
	if l.MaxCipherSuites == 0 {
		l = DefaultLimits
	}
	return l
}

// configJSON is the JSON wire shape for Config, mirroring the
// teacher's protocols/lss/config/marshal.go pattern for the tunables
// that are safe to serialise (collaborators and RNG are not; they must
// be re-attached by the caller after Unmarshal).
type configJSON struct {
	CipherSuites       []uint16     `json:"cipher_suites"`
	Curves             []int        `json:"curves"`
	SigHashAlgs        []SigHashAlg `json:"sig_hash_algs"`
	ALPNProtocols      []string     `json:"alpn_protocols"`
	MaxCipherSuites    int          `json:"max_cipher_suites"`
	MaxALPNProtocols   int          `json:"max_alpn_protocols"`
	MaxSupportedCurves int          `json:"max_supported_curves"`
	MaxExtensionBody   int          `json:"max_extension_body"`
	WindowSize         int          `json:"window_size"`
}

// MarshalJSON implements json.Marshaler for the serialisable subset of
// Config (negotiation preferences and limits; collaborators excluded).
func (c *Config) MarshalJSON() ([]byte, error) {
	curves := make([]int, len(c.Curves))
	for i, id := range c.Curves {
		curves[i] = int(id)
	}
	out := &configJSON{
		CipherSuites:       c.CipherSuites,
		Curves:             curves,
		SigHashAlgs:        c.SigHashAlgs,
		ALPNProtocols:      c.ALPNProtocols,
		MaxCipherSuites:    c.Limits.MaxCipherSuites,
		MaxALPNProtocols:   c.Limits.MaxALPNProtocols,
		MaxSupportedCurves: c.Limits.MaxSupportedCurves,
		MaxExtensionBody:   c.Limits.MaxExtensionBody,
		WindowSize:         c.WindowSize,
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler; the caller must still set
// CertStore, Tickets, KeyDeriver, RNG, Clock, and Logger afterward.
func (c *Config) UnmarshalJSON(data []byte) error {
	var in configJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("handshake: decode config: %w", err)
	}
	c.CipherSuites = in.CipherSuites
	c.Curves = make([]ecp.ID, len(in.Curves))
	for i, id := range in.Curves {
		c.Curves[i] = ecp.ID(id)
	}
	c.SigHashAlgs = in.SigHashAlgs
	c.ALPNProtocols = in.ALPNProtocols
	c.Limits = Limits{
		MaxCipherSuites:    in.MaxCipherSuites,
		MaxALPNProtocols:   in.MaxALPNProtocols,
		MaxSupportedCurves: in.MaxSupportedCurves,
		MaxExtensionBody:   in.MaxExtensionBody,
	}
	c.WindowSize = in.WindowSize
	return nil
}
