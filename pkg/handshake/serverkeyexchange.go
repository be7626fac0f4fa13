package handshake

import (
	"github.com/luxfi/tls12/pkg/ecp"
	"github.com/luxfi/tls12/pkg/handshake/ext"
	"github.com/luxfi/tls12/pkg/herr"
	"github.com/luxfi/tls12/pkg/kex"
	"github.com/luxfi/tls12/pkg/mpi"
)

// ServerKeyExchangeMessage carries the encoded params body and, when the
// suite requires one, the (hash, sig) algorithm pair and signature that
// authenticate it, per RFC 5246 §7.4.3.
type ServerKeyExchangeMessage struct {
	Params    []byte
	HashAlg   uint8
	SigAlg    uint8
	Signature []byte
}

// BuildServerKeyExchange selects an ephemeral group (ECDHE) or uses the
// configured finite-field group (DHE), generates the ephemeral key
// pair, and — when info.Sig != 0 — signs
// client_random ‖ server_random ‖ params with the server key, choosing
// the first (hash, sig) pair from ctx.SigHashAlgs that both matches
// info.Sig and the key can actually produce, per spec.md §4.3.
func BuildServerKeyExchange(ctx *Context, cfg *Config, info SuiteInfo, dhP, dhG *mpi.Int) (*ServerKeyExchangeMessage, error) {
	var params []byte
	switch info.Kex {
	case KexECDHE:
		curveID, ok := SelectCurve(cfg.Curves, ctx.AcceptedCurves)
		if !ok {
			return nil, fatal(herr.HandshakeFailure, nil)
		}
		g, err := ecp.ByID(curveID)
		if err != nil {
			return nil, fatal(herr.HandshakeFailure, err)
		}
		p, err := kex.MakeECDHEParams(g, cfg.rng())
		if err != nil {
			return nil, err
		}
		ctx.ECDHE = p
		params = kex.EncodeServerECDHParams(p)

	case KexDHE:
		p, err := kex.MakeDHEParams(dhP, dhG, cfg.rng())
		if err != nil {
			return nil, err
		}
		ctx.DHE = p
		params = kex.EncodeServerDHParams(p)

	default:
		return nil, nil // RSA key exchange: no ServerKeyExchange message at all
	}

	msg := &ServerKeyExchangeMessage{Params: params}
	if info.Sig == 0 {
		return msg, nil
	}

	hashAlg, ok := pickHashAlg(ctx.SigHashAlgs, info.Sig)
	if !ok {
		return nil, fatal(herr.HandshakeFailure, nil)
	}
	if ctx.Cert == nil || ctx.Cert.Key == nil || !ctx.Cert.Key.CanSign(info.Sig) {
		return nil, fatal(herr.HandshakeFailure, nil)
	}

	signed := make([]byte, 0, 64+len(params))
	signed = append(signed, ctx.ClientRandom[:]...)
	signed = append(signed, ctx.ServerRandom[:]...)
	signed = append(signed, params...)

	h, herr2 := hashForAlg(hashAlg)
	if herr2 != nil {
		return nil, fatal(herr.HandshakeFailure, herr2)
	}
	hw := h.New()
	hw.Write(signed)
	digest := hw.Sum(nil)

	sig, err := ctx.Cert.Key.Sign(cfg.rng(), digest, hashAlg, info.Sig)
	if err != nil {
		return nil, fatal(herr.VerifyFailed, err)
	}
	msg.HashAlg, msg.SigAlg, msg.Signature = hashAlg, info.Sig, sig
	return msg, nil
}

func pickHashAlg(offered []ext.SigHashAlg, sigAlg uint8) (uint8, bool) {
	for _, a := range offered {
		if a.Sig == sigAlg {
			return a.Hash, true
		}
	}
	return 0, false
}

// EncodeServerKeyExchange appends the (hash, sig, length-prefixed
// signature) trailer to the key-exchange params, when present.
func EncodeServerKeyExchange(m *ServerKeyExchangeMessage) []byte {
	out := append([]byte(nil), m.Params...)
	if m.SigAlg == 0 {
		return out
	}
	out = append(out, m.HashAlg, m.SigAlg)
	out = append(out, byte(len(m.Signature)>>8), byte(len(m.Signature)))
	out = append(out, m.Signature...)
	return out
}
