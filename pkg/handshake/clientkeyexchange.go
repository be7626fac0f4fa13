package handshake

import (
	"github.com/luxfi/tls12/pkg/herr"
	"github.com/luxfi/tls12/pkg/kex"
)

// ProcessClientKeyExchange parses the ClientKeyExchange body for the
// negotiated suite's key-exchange kind, derives the premaster secret,
// and (via cfg.KeyDeriver) the master secret. For RSA key exchange this
// always succeeds and never reports a decryption failure directly — per
// spec.md §4.3/§7, a corrupted RSA premaster surfaces only later, at
// Finished verification, to avoid a Bleichenbacher oracle.
func ProcessClientKeyExchange(ctx *Context, cfg *Config, info SuiteInfo, body []byte, rsaKey kex.RSADecrypter) error {
	var premaster []byte
	var err error

	switch info.Kex {
	case KexECDHE:
		g := ctx.ECDHE.Group
		peer, perr := kex.ReadClientECPoint(g, body)
		if perr != nil {
			return fatal(herr.BadHSKeyExchange, perr)
		}
		ctx.PeerECPoint = peer
		premaster, err = kex.DeriveECDHSecret(g, ctx.ECDHE.D, peer, cfg.rng())
		if err != nil {
			return fatal(herr.BadHSKeyExchange, err)
		}

	case KexDHE:
		yc, perr := kex.ReadClientDHPublic(body)
		if perr != nil {
			return fatal(herr.BadHSKeyExchange, perr)
		}
		ctx.PeerDHPublic = yc
		premaster, err = kex.DeriveDHSecret(ctx.DHE, yc)
		if err != nil {
			return fatal(herr.BadHSKeyExchange, err)
		}

	case KexRSA:
		// body is a single two-byte-length-prefixed encrypted premaster.
		ciphertext := body
		if len(body) >= 2 {
			n := int(body[0])<<8 | int(body[1])
			if len(body) == 2+n {
				ciphertext = body[2 : 2+n]
			}
		}
		premaster, err = kex.DecryptPremaster(rsaKey, cfg.rng(), ciphertext, 3, 3)
		if err != nil {
			return fatal(herr.RandomFailed, err)
		}
	}

	ctx.Premaster = premaster
	if cfg.KeyDeriver == nil {
		return fatal(herr.FeatureUnavailable, nil)
	}

	if ctx.ExtendedMasterSecret {
		sessionHash := ctx.Transcript.Sum(HashSHA256)
		ms, derr := cfg.KeyDeriver.ExtendedMasterSecret(premaster, sessionHash)
		if derr != nil {
			return fatal(herr.HandshakeFailure, derr)
		}
		ctx.MasterSecret = ms
	} else {
		ms, derr := cfg.KeyDeriver.MasterSecret(premaster, ctx.ClientRandom[:], ctx.ServerRandom[:])
		if derr != nil {
			return fatal(herr.HandshakeFailure, derr)
		}
		ctx.MasterSecret = ms
	}
	return nil
}
