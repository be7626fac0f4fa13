package mpi

// GCD computes z = gcd(|a|, |b|) using the binary GCD algorithm: extract
// common factors of 2, then repeatedly strip factors of 2 from each side,
// subtract the smaller from the larger, and halve, until one side reaches
// zero.
func GCD(z *Int, a, b *Int) *Int {
	u := a.Clone()
	u.sign = 1
	v := b.Clone()
	v.sign = 1

	if u.IsZero() {
		z.Copy(v)
		return z
	}
	if v.IsZero() {
		z.Copy(u)
		return z
	}

	shift := 0
	for u.GetBit(0) == 0 && v.GetBit(0) == 0 {
		u.ShiftRight(1)
		v.ShiftRight(1)
		shift++
	}

	for u.GetBit(0) == 0 {
		u.ShiftRight(1)
	}

	for !v.IsZero() {
		for v.GetBit(0) == 0 {
			v.ShiftRight(1)
		}
		if u.CmpAbs(v) > 0 {
			u, v = v, u
		}
		v.Sub(v, u)
	}

	u.ShiftLeft(shift)
	z.Copy(u)
	z.sign = 1
	return z
}

// ModInverse computes z = a^{-1} mod n via the extended binary Euclidean
// algorithm (HAC 14.61/14.64). n <= 1 returns ErrBadInput; gcd(a, n) != 1
// returns ErrNotInvertible. The result lies in [0, n).
func ModInverse(z *Int, a, n *Int) error {
	if n.CmpInt(1) <= 0 {
		return ErrBadInput
	}
	A := New()
	if err := Mod(A, a, n); err != nil {
		return err
	}
	if A.IsZero() {
		return ErrNotInvertible
	}

	g := New()
	GCD(g, A, n)
	if g.CmpInt(1) != 0 {
		return ErrNotInvertible
	}

	// HAC 14.64: extended binary GCD tracking Bezout coefficients B, D for
	// x = A, y = n such that B*A - D*n = x at every step (signs tracked
	// explicitly; all of B, D, x, y stay non-negative by constructing the
	// update differently from the textbook in-place subtract).
	x := A.Clone()
	y := n.Clone()
	B := New().SetInt(1)
	D := New().SetInt(0)

	for x.GetBit(0) == 0 {
		x.ShiftRight(1)
		if B.GetBit(0) == 0 {
			B.ShiftRight(1)
		} else {
			B.Add(B, n)
			B.ShiftRight(1)
		}
	}

	for !x.IsZero() {
		for x.GetBit(0) == 0 {
			x.ShiftRight(1)
			if B.GetBit(0) == 0 {
				B.ShiftRight(1)
			} else {
				B.Add(B, n)
				B.ShiftRight(1)
			}
		}
		for y.GetBit(0) == 0 {
			y.ShiftRight(1)
			if D.GetBit(0) == 0 {
				D.ShiftRight(1)
			} else {
				D.Add(D, n)
				D.ShiftRight(1)
			}
		}
		if x.CmpAbs(y) >= 0 {
			x.Sub(x, y)
			B.Sub(B, D)
		} else {
			y.Sub(y, x)
			D.Sub(D, B)
		}
		for B.Sign() < 0 {
			B.Add(B, n)
		}
		for D.Sign() < 0 {
			D.Add(D, n)
		}
	}

	// y now holds gcd (== 1); D holds the inverse of A modulo n.
	return Mod(z, D, n)
}
