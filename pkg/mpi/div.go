package mpi

import "math/bits"

// DivMod computes q = a/b (truncated toward zero) and r = a - q*b using
// Knuth's Algorithm D on the magnitudes, then fixes up signs so that
// a == q*b + r and the usual truncating-division identity holds. Either
// q or r may be nil if the caller does not need it.
//
// Edge cases: b == 0 returns ErrBadInput (divisor zero). |a| < |b| yields
// quotient 0, remainder a. b == 1 yields quotient a, remainder 0 (b == -1
// yields quotient -a).
func DivMod(q, r *Int, a, b *Int) error {
	if b.IsZero() {
		return ErrBadInput
	}
	qAbs := New()
	rAbs := New()
	if err := divModAbs(qAbs, rAbs, a, b); err != nil {
		return err
	}

	qSign := a.sign * b.sign
	if qAbs.IsZero() {
		qSign = 1
	}
	rSign := a.sign
	if rAbs.IsZero() {
		rSign = 1
	}

	if q != nil {
		q.Copy(qAbs)
		q.sign = qSign
	}
	if r != nil {
		r.Copy(rAbs)
		r.sign = rSign
	}
	return nil
}

// divModAbs divides the magnitudes |a| by |b|, Knuth Algorithm D.
func divModAbs(q, r *Int, a, b *Int) error {
	if b.IsZero() {
		return ErrDivisionByZero
	}
	if a.CmpAbs(b) < 0 {
		q.used, q.sign = 0, 1
		r.Copy(a)
		r.sign = 1
		return nil
	}
	if b.used == 1 && b.limbs[0] == 1 {
		q.Copy(a)
		q.sign = 1
		r.used, r.sign = 0, 1
		return nil
	}
	if b.used == 1 {
		// Single-limb divisor: Algorithm D needs two divisor limbs, so
		// divide limb by limb from the top instead.
		d := b.limbs[0]
		quot := make([]Limb, a.used)
		var rem Limb
		for i := a.used - 1; i >= 0; i-- {
			quot[i], rem = bits.Div64(rem, a.limbs[i], d)
		}
		q.limbs, q.sign = quot, 1
		q.fixupUsed()
		r.limbs, r.sign = []Limb{rem}, 1
		r.fixupUsed()
		return nil
	}

	// normalise: shift b so its top limb's MSB is set.
	shift := bits.LeadingZeros64(b.limbs[b.used-1])
	bn := b.Clone()
	bn.sign = 1
	bn.ShiftLeft(shift)
	an := a.Clone()
	an.sign = 1
	an.ShiftLeft(shift)

	n := bn.used
	m := an.used - n

	// an may need one extra limb of headroom for the leading remainder digit.
	an.grow(an.used+1, true, true)
	if an.used == len(an.limbs)-1 {
		an.limbs[an.used] = 0
	}
	u := an.limbs // work directly on the padded buffer
	v := bn.limbs[:n]

	quot := make([]Limb, m+1)

	for j := m; j >= 0; j-- {
		// Estimate qhat from the top three digits of the remainder and the
		// top two of the divisor.
		ujn := limbOrZero(u, j+n)
		ujn1 := limbOrZero(u, j+n-1)
		var qhat, rhat uint64
		if ujn == v[n-1] {
			qhat = ^uint64(0)
			rhat = ujn + ujn1
			// check for overflow of rhat, which would invalidate the loop below
			if rhat < ujn1 {
				goto doMulSub
			}
		} else {
			qhat, rhat = bits.Div64(ujn, ujn1, v[n-1])
		}
		for {
			hi, lo := bits.Mul64(qhat, v[n-2])
			_ = lo
			ujn2 := limbOrZero(u, j+n-2)
			if hi > rhat || (hi == rhat && lo > ujn2) {
				qhat--
				newRhat, carry := bits.Add64(rhat, v[n-1], 0)
				rhat = newRhat
				if carry != 0 {
					break
				}
				continue
			}
			break
		}

	doMulSub:
		// Multiply and subtract: u[j:j+n+1] -= qhat * v[0:n]
		var borrow uint64
		var carry uint64
		for i := 0; i < n; i++ {
			hi, lo := bits.Mul64(qhat, v[i])
			lo2, c1 := bits.Add64(lo, carry, 0)
			carry = hi + c1
			sub, b1 := bits.Sub64(limbOrZero(u, j+i), lo2, borrow)
			setLimb(u, j+i, sub)
			borrow = b1
		}
		top := limbOrZero(u, j+n)
		sub, b1 := bits.Sub64(top, carry, borrow)
		setLimb(u, j+n, sub)
		borrow = b1

		if borrow != 0 {
			// qhat was one too large: add back v once.
			qhat--
			var c uint64
			for i := 0; i < n; i++ {
				sum, c1 := bits.Add64(limbOrZero(u, j+i), v[i], c)
				setLimb(u, j+i, sum)
				c = c1
			}
			sum, _ := bits.Add64(limbOrZero(u, j+n), 0, c)
			setLimb(u, j+n, sum)
		}
		quot[j] = qhat
	}

	q.limbs = quot
	q.fixupUsed()

	rem := New()
	rem.grow(n, false, true)
	copy(rem.limbs, u[:n])
	rem.fixupUsed()
	rem.ShiftRight(shift)
	r.Copy(rem)
	return nil
}

func limbOrZero(s []Limb, i int) Limb {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}

func setLimb(s []Limb, i int, v Limb) {
	if i >= 0 && i < len(s) {
		s[i] = v
	}
}

// Mod computes z = a mod b with the representative in [0, |b|); requires
// b > 0 (negative or zero b returns ErrBadInput).
func Mod(z *Int, a, b *Int) error {
	if b.Sign() <= 0 {
		return ErrBadInput
	}
	r := New()
	if err := DivMod(nil, r, a, b); err != nil {
		return err
	}
	for r.Sign() < 0 {
		r.Add(r, b)
	}
	for r.CmpAbs(b) >= 0 && r.Sign() >= 0 {
		r.Sub(r, b)
	}
	z.Copy(r)
	return nil
}
