// Package kex implements the ServerKeyExchange/ClientKeyExchange
// parameter make/read/derive helpers for the three key-exchange kinds a
// TLS 1.2 server offers: ECDHE/ECDH, DHE, and RSA.
package kex

import (
	"io"

	"github.com/luxfi/tls12/pkg/ecp"
	"github.com/luxfi/tls12/pkg/herr"
	"github.com/luxfi/tls12/pkg/mpi"
)

// ECDHEParams is the server's ephemeral EC key-exchange state: the
// chosen curve, the ephemeral private scalar, and the ephemeral public
// point to send in ServerKeyExchange.
type ECDHEParams struct {
	Group *ecp.Group
	D     *mpi.Int
	Q     *ecp.Point
}

// MakeECDHEParams selects curve g, generates an ephemeral key pair, and
// returns the params ready to encode into ServerKeyExchange.
func MakeECDHEParams(g *ecp.Group, rng io.Reader) (*ECDHEParams, error) {
	d, q, err := g.GenerateKeyPair(rng)
	if err != nil {
		return nil, herr.Wrap(herr.RandomFailed, err)
	}
	return &ECDHEParams{Group: g, D: d, Q: q}, nil
}

// EncodeServerECDHParams serialises the ECParameters ‖ ECPoint structure
// RFC 4492 §5.4 specifies for ServerKeyExchange: a curve-type octet
// (named_curve = 3), the two-byte named-curve wire id, a length-prefixed
// point.
func EncodeServerECDHParams(p *ECDHEParams) []byte {
	enc := p.Group.Marshal(p.Q)
	out := make([]byte, 0, 4+len(enc))
	out = append(out, 0x03) // ECCurveType.named_curve
	out = append(out, byte(p.Group.WireID>>8), byte(p.Group.WireID))
	out = append(out, byte(len(enc)))
	out = append(out, enc...)
	return out
}

// ReadClientECPoint parses the ClientKeyExchange body for ECDHE/ECDH: a
// single length-prefixed point on the negotiated curve.
func ReadClientECPoint(g *ecp.Group, body []byte) (*ecp.Point, error) {
	if len(body) < 1 {
		return nil, herr.New(herr.DecodeError)
	}
	n := int(body[0])
	if len(body) != 1+n {
		return nil, herr.New(herr.DecodeError)
	}
	p, err := g.Unmarshal(body[1:])
	if err != nil {
		return nil, herr.Wrap(herr.BadHSKeyExchange, err)
	}
	return p, nil
}

// DeriveECDHSecret computes the premaster secret for ECDHE/ECDH: the
// x-coordinate of d*Qpeer, big-endian encoded to the field's byte
// length. Qpeer must already have passed Group.CheckPubkey.
func DeriveECDHSecret(g *ecp.Group, d *mpi.Int, qPeer *ecp.Point, rng io.Reader) ([]byte, error) {
	if g.Kind == ecp.ShortWeierstrass && !g.CheckPubkey(qPeer) {
		return nil, herr.New(herr.InvalidKey)
	}
	z, err := g.ScalarMul(d, qPeer, rng)
	if err != nil {
		return nil, herr.Wrap(herr.BadHSKeyExchange, err)
	}
	if z.IsIdentity() {
		return nil, herr.New(herr.InvalidKey)
	}
	az := g.Affine(z)
	out := make([]byte, g.ByteLen())
	xb := az.X.Bytes()
	copy(out[len(out)-len(xb):], xb)
	return out, nil
}
