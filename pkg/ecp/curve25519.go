package ecp

import (
	"io"

	"golang.org/x/crypto/curve25519"

	"github.com/luxfi/tls12/pkg/mpi"
)

// For the Montgomery curve (Curve25519) a Point only ever carries a
// u-coordinate in X; Y is unused and Z is 0 (infinity/invalid) or 1
// (valid), matching the short-Weierstrass Z convention so callers do not
// need to special-case Point.IsIdentity.

func clampScalar(b []byte) {
	b[0] &= 248
	b[31] &= 127
	b[31] |= 64
}

// scalarMulMontgomery performs the X25519 function via
// golang.org/x/crypto/curve25519, which already implements the
// constant-time Montgomery ladder with conditional-swap spec.md §4.2
// requires; this wraps it behind the same Group/Point contract the
// short-Weierstrass curves use.
func (g *Group) scalarMulMontgomery(k *mpi.Int, p *Point) (*Point, error) {
	scalarBuf := make([]byte, 32)
	kBytes := k.Bytes()
	copy(scalarBuf[32-len(kBytes):], kBytes)
	reverse(scalarBuf)
	clampScalar(scalarBuf)

	uBuf := make([]byte, 32)
	uBytes := p.X.Bytes()
	copy(uBuf[32-len(uBytes):], uBytes)
	reverse(uBuf)

	out, err := curve25519.X25519(scalarBuf, uBuf)
	if err != nil {
		// all-zero output: x25519 contract treats this as an invalid shared
		// secret (low-order point); surface as the point at infinity so
		// callers reject it via IsIdentity/CheckPubkey.
		r := g.NewPoint()
		r.setInfinity()
		return r, nil
	}
	reverse(out)
	r := g.NewPoint()
	r.X.ReadBinary(out)
	r.Z.SetInt(1)
	return r, nil
}

// generateKeyPairMontgomery draws nbits of randomness, applies the
// standard X25519 bit-fixing clamp, and derives the public u-coordinate by
// multiplying the clamped scalar by the fixed basepoint.
func (g *Group) generateKeyPairMontgomery(rng io.Reader) (*mpi.Int, *Point, error) {
	scalarBuf := make([]byte, 32)
	if _, err := io.ReadFull(rng, scalarBuf); err != nil {
		return nil, nil, mpi.ErrRandomFailed
	}
	clampScalar(scalarBuf)

	out, err := curve25519.X25519(scalarBuf, curve25519.Basepoint)
	if err != nil {
		return nil, nil, err
	}

	dBytes := append([]byte(nil), scalarBuf...)
	reverse(dBytes)
	d := mpi.New().ReadBinary(dBytes)

	reverse(out)
	q := g.NewPoint()
	q.X.ReadBinary(out)
	q.Z.SetInt(1)
	return d, q, nil
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// CheckPrivkeyX25519 applies the X25519 bit-fixing mask to a candidate
// scalar and range-checks the result, per spec.md §4.2.
func CheckPrivkeyX25519(scalarBytes []byte) bool {
	if len(scalarBytes) != 32 {
		return false
	}
	buf := append([]byte(nil), scalarBytes...)
	clampScalar(buf)
	allZero := true
	for _, b := range buf {
		if b != 0 {
			allZero = false
			break
		}
	}
	return !allZero
}
