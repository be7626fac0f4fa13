package ecp

import (
	"fmt"

	"github.com/luxfi/tls12/pkg/mpi"
)

// Uncompressed/compressed point form tags, per SEC1 / RFC 8422 §5.4.
const (
	formInfinity    = 0x00
	formCompressed2 = 0x02
	formCompressed3 = 0x03
	formUncompressed = 0x04
)

// Marshal encodes p in uncompressed SEC1 form: 0x04 || X || Y, each
// coordinate padded to ByteLen(). The point at infinity encodes as a
// single 0x00 byte. Curve25519 points encode as the bare 32-byte
// u-coordinate, matching RFC 7748 / RFC 8422's ECDHE-over-X25519 wire
// format (no leading form octet).
func (g *Group) Marshal(p *Point) []byte {
	if g.Kind == Montgomery {
		out := make([]byte, g.ByteLen())
		xb := p.X.Bytes()
		for i, b := range xb {
			out[len(xb)-1-i] = b // little-endian, RFC 7748 §5
		}
		return out
	}
	if p.IsIdentity() {
		return []byte{formInfinity}
	}
	ap := g.Affine(p)
	n := g.ByteLen()
	out := make([]byte, 1+2*n)
	out[0] = formUncompressed
	xb := ap.X.Bytes()
	copy(out[1+n-len(xb):1+n], xb)
	yb := ap.Y.Bytes()
	copy(out[1+2*n-len(yb):], yb)
	return out
}

// Unmarshal decodes a wire-format point, accepting uncompressed,
// compressed, and point-at-infinity encodings for short-Weierstrass
// curves, or the bare u-coordinate for Curve25519.
func (g *Group) Unmarshal(data []byte) (*Point, error) {
	if g.Kind == Montgomery {
		if len(data) != g.ByteLen() {
			return nil, fmt.Errorf("ecp: bad x25519 point length %d", len(data))
		}
		be := make([]byte, len(data))
		for i, b := range data {
			be[len(data)-1-i] = b
		}
		p := g.NewPoint()
		p.X.ReadBinary(be)
		p.Z.SetInt(1)
		return p, nil
	}
	if len(data) == 1 && data[0] == formInfinity {
		p := g.NewPoint()
		p.setInfinity()
		return p, nil
	}
	n := g.ByteLen()
	if len(data) == 1+2*n && data[0] == formUncompressed {
		p := g.NewPoint()
		p.X.ReadBinary(data[1 : 1+n])
		p.Y.ReadBinary(data[1+n:])
		p.Z.SetInt(1)
		if !g.CheckPubkey(p) {
			return nil, fmt.Errorf("ecp: point not on curve %s", g.Name)
		}
		return p, nil
	}
	if len(data) == 1+n && (data[0] == formCompressed2 || data[0] == formCompressed3) {
		return g.decompress(data[0], data[1:])
	}
	return nil, fmt.Errorf("ecp: unrecognised point encoding, length %d", len(data))
}

// decompress recovers Y from X and the sign-select tag, per SEC1 §2.3.4.
// Encoding a compressed point is not supported (spec.md §4.2 only
// requires decode support, for interoperating with clients that send
// compressed ECDHE public values).
func (g *Group) decompress(tag byte, xBytes []byte) (*Point, error) {
	n := g.ByteLen()
	if len(xBytes) != n {
		return nil, fmt.Errorf("ecp: bad compressed point length")
	}
	p := g.NewPoint()
	p.X.ReadBinary(xBytes)
	p.Z.SetInt(1)

	rhs := mpi.New()
	g.mulMod(rhs, p.X, p.X)
	g.mulMod(rhs, rhs, p.X)
	ax := mpi.New()
	g.mulMod(ax, g.A, p.X)
	g.addMod(rhs, rhs, ax)
	g.addMod(rhs, rhs, g.B)

	y := mpi.New()
	if err := sqrtModP(y, rhs, g.P); err != nil {
		return nil, fmt.Errorf("ecp: no square root, point not on curve: %w", err)
	}
	wantOdd := tag == formCompressed3
	if (y.GetBit(0) == 1) != wantOdd {
		g.subMod(y, g.P, y)
	}
	p.Y.Copy(y)
	if !g.CheckPubkey(p) {
		return nil, fmt.Errorf("ecp: decompressed point not on curve %s", g.Name)
	}
	return p, nil
}

// sqrtModP computes z = sqrt(a) mod p for primes p == 3 (mod 4), which
// covers every short-Weierstrass curve in the registry: z = a^((p+1)/4).
func sqrtModP(z, a, p *mpi.Int) error {
	if p.GetBit(0) == 0 || p.GetBit(1) == 0 {
		return fmt.Errorf("ecp: sqrtModP requires p = 3 (mod 4)")
	}
	e := mpi.New().Add(p, mpi.New().SetInt(1))
	four := mpi.New().SetInt(4)
	q := mpi.New()
	r := mpi.New()
	if err := mpi.DivMod(q, r, e, four); err != nil {
		return err
	}
	scratch := mpi.NewScratch()
	if err := mpi.ModExp(z, a, q, p, scratch); err != nil {
		return err
	}
	check := mpi.New()
	check.Mul(z, z)
	_ = mpi.Mod(check, check, p)
	if check.Cmp(a) != 0 {
		return fmt.Errorf("ecp: %w", mpi.ErrNotInvertible)
	}
	return nil
}
