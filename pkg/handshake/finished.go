package handshake

import (
	"crypto/subtle"

	"github.com/luxfi/tls12/pkg/herr"
)

// Finished verify_data labels, RFC 5246 §7.4.9.
const (
	labelClientFinished = "client finished"
	labelServerFinished  = "server finished"
)

// BuildServerFinished computes the server's 12-byte verify_data over the
// transcript hash taken up to (but not including) the server's own
// Finished message. ChangeCipherSpec is not a handshake message and is
// never folded into the transcript, per spec.md §4.3's note that
// resumed handshakes still hash messages in wire order around it.
func BuildServerFinished(ctx *Context, cfg *Config, transcriptHash []byte) ([]byte, error) {
	if cfg.KeyDeriver == nil {
		return nil, fatal(herr.FeatureUnavailable, nil)
	}
	return cfg.KeyDeriver.VerifyData(ctx.MasterSecret, labelServerFinished, transcriptHash), nil
}

// VerifyClientFinished recomputes the expected client verify_data over
// transcriptHash and compares it, in constant time, against the bytes
// the client sent. A mismatch is fatal (BadHSFinished); per spec.md §7
// this is also where a Bleichenbacher-countermeasure-selected fake
// premaster ultimately surfaces as a failure, indistinguishable on the
// wire from any other Finished mismatch.
func VerifyClientFinished(ctx *Context, cfg *Config, transcriptHash []byte, received []byte) error {
	if cfg.KeyDeriver == nil {
		return fatal(herr.FeatureUnavailable, nil)
	}
	expected := cfg.KeyDeriver.VerifyData(ctx.MasterSecret, labelClientFinished, transcriptHash)
	if len(expected) != len(received) {
		return fatal(herr.BadHSFinished, nil)
	}
	if subtle.ConstantTimeCompare(expected, received) != 1 {
		return fatal(herr.BadHSFinished, nil)
	}
	return nil
}
