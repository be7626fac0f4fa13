package ecp

import "github.com/luxfi/tls12/pkg/mpi"

// Point is a Jacobian-coordinate point on a short-Weierstrass curve: three
// MPIs (X, Y, Z). The public contract is that after any exported operation
// Z is either 0 (point at infinity) or 1 (affine X, Y); internally Z may be
// any field element while a computation is in progress.
type Point struct {
	X, Y, Z *mpi.Int
}

// IsIdentity reports whether p is the point at infinity.
func (p *Point) IsIdentity() bool {
	return p.Z.IsZero()
}

// setInfinity sets p to the point at infinity.
func (p *Point) setInfinity() {
	p.X.SetInt(1)
	p.Y.SetInt(1)
	p.Z.SetInt(0)
}

// Copy makes p a deep copy of q.
func (p *Point) Copy(q *Point) *Point {
	p.X.Copy(q.X)
	p.Y.Copy(q.Y)
	p.Z.Copy(q.Z)
	return p
}

// Clone returns a new Point equal to p.
func (p *Point) Clone() *Point {
	return (&Point{mpi.New(), mpi.New(), mpi.New()}).Copy(p)
}

// Equal reports whether p and q represent the same affine point (or are
// both the point at infinity), without requiring equal Z-coordinates.
func (g *Group) Equal(p, q *Point) bool {
	if p.IsIdentity() || q.IsIdentity() {
		return p.IsIdentity() == q.IsIdentity()
	}
	ap := p.Clone()
	g.normalize(ap)
	aq := q.Clone()
	g.normalize(aq)
	return ap.X.Cmp(aq.X) == 0 && ap.Y.Cmp(aq.Y) == 0
}

// normalize converts p from Jacobian to affine (Z=1) coordinates in place,
// using a single modular inverse of Z.
func (g *Group) normalize(p *Point) {
	if p.IsIdentity() {
		return
	}
	if p.Z.CmpInt(1) == 0 {
		return
	}
	zInv := mpi.New()
	if err := g.invMod(zInv, p.Z); err != nil {
		p.setInfinity()
		return
	}
	zInv2 := mpi.New()
	g.mulMod(zInv2, zInv, zInv)
	zInv3 := mpi.New()
	g.mulMod(zInv3, zInv2, zInv)
	g.mulMod(p.X, p.X, zInv2)
	g.mulMod(p.Y, p.Y, zInv3)
	p.Z.SetInt(1)
}

// Affine returns a normalized copy of p with Z=1 (or the point at
// infinity).
func (g *Group) Affine(p *Point) *Point {
	out := p.Clone()
	g.normalize(out)
	return out
}

// double computes r = 2p using the standard Jacobian doubling formulas for
// short-Weierstrass curves (EFD "dbl-2007-bl" shape, specialised for
// general A since the registry includes curves with A != -3).
func (g *Group) double(r, p *Point) {
	if p.IsIdentity() {
		r.setInfinity()
		return
	}
	X1, Y1, Z1 := p.X, p.Y, p.Z

	XX := mpi.New()
	g.mulMod(XX, X1, X1)
	YY := mpi.New()
	g.mulMod(YY, Y1, Y1)
	YYYY := mpi.New()
	g.mulMod(YYYY, YY, YY)
	ZZ := mpi.New()
	g.mulMod(ZZ, Z1, Z1)

	S := mpi.New()
	g.addMod(S, X1, YY)
	g.mulMod(S, S, S)
	g.subMod(S, S, XX)
	g.subMod(S, S, YYYY)
	g.addMod(S, S, S)

	ZZsq := mpi.New()
	g.mulMod(ZZsq, ZZ, ZZ)
	aZZsq := mpi.New()
	g.mulMod(aZZsq, g.A, ZZsq)
	M := mpi.New()
	threeXX := mpi.New()
	g.addMod(threeXX, XX, XX)
	g.addMod(threeXX, threeXX, XX)
	g.addMod(M, threeXX, aZZsq)

	T := mpi.New()
	g.mulMod(T, M, M)
	twoS := mpi.New()
	g.addMod(twoS, S, S)
	g.subMod(T, T, twoS)

	X3 := T
	Y3 := mpi.New()
	g.subMod(Y3, S, T)
	g.mulMod(Y3, M, Y3)
	eightYYYY := mpi.New()
	g.addMod(eightYYYY, YYYY, YYYY)
	g.addMod(eightYYYY, eightYYYY, eightYYYY)
	g.addMod(eightYYYY, eightYYYY, eightYYYY)
	g.subMod(Y3, Y3, eightYYYY)

	Z3 := mpi.New()
	g.addMod(Z3, Y1, Z1)
	g.mulMod(Z3, Z3, Z3)
	g.subMod(Z3, Z3, YY)
	g.subMod(Z3, Z3, ZZ)

	r.X.Copy(X3)
	r.Y.Copy(Y3)
	r.Z.Copy(Z3)
}

// addMixed computes r = p + q where q is affine (Zq == 1); this is the
// cheaper mixed-addition formula used inside the comb method, where the
// table entries are pre-normalised.
func (g *Group) addMixed(r, p, q *Point) {
	if p.IsIdentity() {
		r.Copy(q)
		return
	}
	if q.IsIdentity() {
		r.Copy(p)
		return
	}
	X1, Y1, Z1 := p.X, p.Y, p.Z
	X2, Y2 := q.X, q.Y

	Z1Z1 := mpi.New()
	g.mulMod(Z1Z1, Z1, Z1)
	U2 := mpi.New()
	g.mulMod(U2, X2, Z1Z1)
	S2 := mpi.New()
	g.mulMod(S2, Y2, Z1Z1)
	g.mulMod(S2, S2, Z1)

	H := mpi.New()
	g.subMod(H, U2, X1)
	if H.IsZero() {
		Rdiff := mpi.New()
		g.subMod(Rdiff, S2, Y1)
		if Rdiff.IsZero() {
			g.double(r, p)
			return
		}
		r.setInfinity()
		return
	}
	HH := mpi.New()
	g.mulMod(HH, H, H)
	I := mpi.New()
	g.addMod(I, HH, HH)
	g.addMod(I, I, I)
	J := mpi.New()
	g.mulMod(J, H, I)
	R := mpi.New()
	g.subMod(R, S2, Y1)
	g.addMod(R, R, R)
	V := mpi.New()
	g.mulMod(V, X1, I)

	X3 := mpi.New()
	g.mulMod(X3, R, R)
	g.subMod(X3, X3, J)
	twoV := mpi.New()
	g.addMod(twoV, V, V)
	g.subMod(X3, X3, twoV)

	Y3 := mpi.New()
	g.subMod(Y3, V, X3)
	g.mulMod(Y3, R, Y3)
	Y1J := mpi.New()
	g.mulMod(Y1J, Y1, J)
	g.addMod(Y1J, Y1J, Y1J)
	g.subMod(Y3, Y3, Y1J)

	Z3 := mpi.New()
	g.addMod(Z3, Z1, H)
	g.mulMod(Z3, Z3, Z3)
	g.subMod(Z3, Z3, Z1Z1)
	g.subMod(Z3, Z3, HH)

	r.X.Copy(X3)
	r.Y.Copy(Y3)
	r.Z.Copy(Z3)
}

// add computes r = p + q for general (non-mixed) Jacobian inputs.
func (g *Group) add(r, p, q *Point) {
	if p.IsIdentity() {
		r.Copy(q)
		return
	}
	if q.IsIdentity() {
		r.Copy(p)
		return
	}
	aq := q.Clone()
	g.normalize(aq)
	g.addMixed(r, p, aq)
}

// Neg returns -p (same X, Z; Y negated mod P).
func (g *Group) Neg(p *Point) *Point {
	out := p.Clone()
	if !out.IsIdentity() {
		neg := mpi.New()
		g.subMod(neg, g.P, out.Y)
		out.Y.Copy(neg)
	}
	return out
}

// CheckPubkey validates a candidate public point: not the point at
// infinity, coordinates in [0, P), and satisfies the curve equation. It
// does not check subgroup membership, which is acceptable for the
// cofactor-1 curves in this registry.
func (g *Group) CheckPubkey(p *Point) bool {
	if p.IsIdentity() {
		return false
	}
	ap := g.Affine(p)
	if ap.X.Sign() < 0 || ap.X.CmpAbs(g.P) >= 0 {
		return false
	}
	if ap.Y.Sign() < 0 || ap.Y.CmpAbs(g.P) >= 0 {
		return false
	}
	lhs := mpi.New()
	g.mulMod(lhs, ap.Y, ap.Y)

	rhs := mpi.New()
	g.mulMod(rhs, ap.X, ap.X)
	g.mulMod(rhs, rhs, ap.X)
	ax := mpi.New()
	g.mulMod(ax, g.A, ap.X)
	g.addMod(rhs, rhs, ax)
	g.addMod(rhs, rhs, g.B)

	return lhs.Cmp(rhs) == 0
}

// CheckPrivkey validates that a scalar is in [1, N-1], as required for
// short-Weierstrass private keys (Curve25519 has its own bit-fixed check,
// see curve25519.go).
func (g *Group) CheckPrivkey(d *mpi.Int) bool {
	if d.Sign() <= 0 {
		return false
	}
	nMinus1 := mpi.New().Sub(g.N, mpi.New().SetInt(1))
	return d.CmpAbs(nMinus1) <= 0
}
