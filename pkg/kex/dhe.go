package kex

import (
	"io"

	"github.com/luxfi/tls12/pkg/herr"
	"github.com/luxfi/tls12/pkg/mpi"
)

// DHParams carries a configured finite-field Diffie-Hellman group (P, G)
// plus, once generated, the server's ephemeral private exponent x and
// public value Ys = G^x mod P.
type DHParams struct {
	P, G *mpi.Int
	X    *mpi.Int
	Ys   *mpi.Int
}

// MakeDHEParams generates an ephemeral exponent for the configured group
// and computes the public value to send in ServerKeyExchange. The
// exponent is drawn with the same byte length as P; spec.md does not
// mandate a subgroup-order bound for DHE so none is imposed here.
func MakeDHEParams(p, g *mpi.Int, rng io.Reader) (*DHParams, error) {
	nBytes := p.ByteLength()
	x := mpi.New()
	if err := x.FillRandom(rng, nBytes); err != nil {
		return nil, herr.Wrap(herr.RandomFailed, err)
	}
	scratch := mpi.NewScratch()
	ys := mpi.New()
	if err := mpi.ModExp(ys, g, x, p, scratch); err != nil {
		return nil, herr.Wrap(herr.BadHSKeyExchange, err)
	}
	return &DHParams{P: p, G: g, X: x, Ys: ys}, nil
}

// EncodeServerDHParams serialises the ServerDHParams structure RFC 5246
// §7.4.3 specifies: three length-prefixed big-endian integers, dh_p,
// dh_g, dh_Ys, each with a two-byte length.
func EncodeServerDHParams(p *DHParams) []byte {
	out := make([]byte, 0)
	out = appendMPI16(out, p.P)
	out = appendMPI16(out, p.G)
	out = appendMPI16(out, p.Ys)
	return out
}

func appendMPI16(out []byte, v *mpi.Int) []byte {
	b := v.Bytes()
	out = append(out, byte(len(b)>>8), byte(len(b)))
	return append(out, b...)
}

// ReadClientDHPublic parses the ClientKeyExchange body for DHE/DH: a
// single two-byte-length-prefixed dh_Yc.
func ReadClientDHPublic(body []byte) (*mpi.Int, error) {
	if len(body) < 2 {
		return nil, herr.New(herr.DecodeError)
	}
	n := int(body[0])<<8 | int(body[1])
	if len(body) != 2+n {
		return nil, herr.New(herr.DecodeError)
	}
	return mpi.New().ReadBinary(body[2:]), nil
}

// DeriveDHSecret computes K = Yc^x mod P, the DHE/DH premaster secret,
// big-endian encoded with leading zeros preserved to P's byte length per
// RFC 5246 §8.1.2.
func DeriveDHSecret(params *DHParams, yc *mpi.Int) ([]byte, error) {
	if yc.Sign() <= 0 || yc.CmpAbs(params.P) >= 0 {
		return nil, herr.New(herr.InvalidKey)
	}
	scratch := mpi.NewScratch()
	k := mpi.New()
	if err := mpi.ModExp(k, yc, params.X, params.P, scratch); err != nil {
		return nil, herr.Wrap(herr.BadHSKeyExchange, err)
	}
	out := make([]byte, params.P.ByteLength())
	kb := k.Bytes()
	copy(out[len(out)-len(kb):], kb)
	return out, nil
}
