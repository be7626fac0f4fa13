// Package ecp implements elliptic curve group arithmetic over prime
// fields: Jacobian point representation, constant-time comb-method scalar
// multiplication with point randomisation, and the closed registry of
// curves a TLS 1.2 server is willing to negotiate (NIST P-256/P-384/P-521,
// the three Brainpool curves, and Curve25519).
package ecp

import (
	"fmt"

	"github.com/luxfi/tls12/pkg/mpi"
)

// ID identifies one of the curves in the closed registry by an internal,
// stable identifier (distinct from the TLS wire id).
type ID int

const (
	Secp256r1 ID = iota + 1
	Secp384r1
	Secp521r1
	BP256r1
	BP384r1
	BP512r1
	X25519
)

// Kind distinguishes the two point-arithmetic families the registry
// supports; Montgomery curves (Curve25519) use an X-only ladder instead of
// Jacobian short-Weierstrass formulas.
type Kind int

const (
	ShortWeierstrass Kind = iota
	Montgomery
)

// Group is an immutable set of domain parameters for one curve, together
// with a lazily-but-eagerly-populated comb table for the generator. Once
// Registry() returns, every Group's comb table is already built (see
// curves.go), so concurrent scalar multiplications on the same Group are
// safe with respect to the table; spec.md's caution about per-group
// mutable state is resolved by computing it once, up front, rather than on
// first use.
type Group struct {
	ID       ID
	Kind     Kind
	WireID   uint16 // TLS named-curve wire identifier (RFC 4492/8422/IANA)
	Name     string
	Pbits    int
	Nbits    int
	P        *mpi.Int // prime field modulus
	A        *mpi.Int // short-Weierstrass curve coefficient a; nil for Curve25519
	B        *mpi.Int // short-Weierstrass only
	N        *mpi.Int // subgroup order
	G        *Point   // generator (affine, Z=1), short-Weierstrass only

	comb *combTable // nil for Montgomery curves
}

// ByteLen returns the fixed-width coordinate encoding length, ceil(Pbits/8).
func (g *Group) ByteLen() int { return (g.Pbits + 7) / 8 }

// NewPoint returns the point at infinity for this group.
func (g *Group) NewPoint() *Point {
	return &Point{X: mpi.New(), Y: mpi.New(), Z: mpi.New()}
}

// reduce applies the field modulus to z in place: z = z mod P.
func (g *Group) reduce(z *mpi.Int) {
	r := mpi.New()
	_ = mpi.Mod(r, z, g.P)
	z.Copy(r)
}

func (g *Group) addMod(z, a, b *mpi.Int) {
	z.Add(a, b)
	g.reduce(z)
}

func (g *Group) subMod(z, a, b *mpi.Int) {
	z.Sub(a, b)
	g.reduce(z)
}

func (g *Group) mulMod(z, a, b *mpi.Int) {
	z.Mul(a, b)
	g.reduce(z)
}

func (g *Group) invMod(z, a *mpi.Int) error {
	return mpi.ModInverse(z, a, g.P)
}

func (g *Group) String() string {
	return fmt.Sprintf("ecp.Group{%s}", g.Name)
}
