package mpi

import "math/bits"

// addAbs computes z = |a| + |b| (unsigned), extending z by at most one limb
// beyond the longer operand.
func addAbs(z, a, b *Int) {
	if a.used < b.used {
		a, b = b, a
	}
	n := a.used
	if z == a || z == b {
		tmp := New()
		addAbsInto(tmp, a, b, n)
		z.Copy(tmp)
		return
	}
	addAbsInto(z, a, b, n)
}

func addAbsInto(z, a, b *Int, n int) {
	z.grow(n+1, false, true)
	var carry uint64
	for i := 0; i < n; i++ {
		av := a.limbAt(i)
		bv := b.limbAt(i)
		sum, c1 := bits.Add64(av, bv, carry)
		z.limbs[i] = sum
		carry = c1
	}
	z.limbs[n] = carry
	z.fixupUsed()
}

// subAbs computes z = |a| - |b| (unsigned). Requires |a| >= |b|, otherwise
// returns ErrBadInput and leaves z unchanged.
func subAbs(z, a, b *Int) error {
	if a.CmpAbs(b) < 0 {
		return ErrBadInput
	}
	n := a.used
	if z == a || z == b {
		tmp := New()
		subAbsInto(tmp, a, b, n)
		z.Copy(tmp)
		return nil
	}
	subAbsInto(z, a, b, n)
	return nil
}

func subAbsInto(z, a, b *Int, n int) {
	z.grow(n, false, true)
	var borrow uint64
	for i := 0; i < n; i++ {
		av := a.limbAt(i)
		bv := b.limbAt(i)
		diff, b1 := bits.Sub64(av, bv, borrow)
		z.limbs[i] = diff
		borrow = b1
	}
	z.fixupUsed()
}

// Add sets z = x + y (signed), dispatching on sign combinations into the
// unsigned primitives; the result's sign is derived algebraically and
// normalised to +1 when the magnitude is zero.
func (z *Int) Add(x, y *Int) *Int {
	if x.sign == y.sign {
		addAbs(z, x, y)
		z.sign = x.sign
		if z.IsZero() {
			z.sign = 1
		}
		return z
	}
	// opposite signs: subtract the smaller magnitude from the larger.
	if x.CmpAbs(y) >= 0 {
		_ = subAbs(z, x, y)
		z.sign = x.sign
	} else {
		_ = subAbs(z, y, x)
		z.sign = y.sign
	}
	if z.IsZero() {
		z.sign = 1
	}
	return z
}

// Sub sets z = x - y (signed).
func (z *Int) Sub(x, y *Int) *Int {
	negY := y.Clone()
	if !negY.IsZero() {
		negY.sign = -negY.sign
	}
	return z.Add(x, negY)
}

// mulVecAddScalar multiplies the n-limb vector a by the single limb b, accumulating
// the result (with carry) into dst starting at offset off. dst must have
// room for at least off+n+1 limbs. This is the fused vector x scalar
// primitive the schoolbook multiply is built from: a ripple carry that
// continues to propagate into dst until it is absorbed.
func mulVecAddScalar(dst []Limb, a []Limb, b Limb, off int) {
	var carry uint64
	for i, av := range a {
		hi, lo := bits.Mul64(av, b)
		var c1 uint64
		lo, c1 = bits.Add64(lo, carry, 0)
		hi += c1
		sum, c2 := bits.Add64(dst[off+i], lo, 0)
		dst[off+i] = sum
		carry = hi + c2
	}
	i := off + len(a)
	for carry != 0 {
		sum, c := bits.Add64(dst[i], carry, 0)
		dst[i] = sum
		carry = c
		i++
	}
}

// Mul sets z = x * y (signed), schoolbook O(n*m). When z aliases x or y the
// source is copied to a temporary first.
func (z *Int) Mul(x, y *Int) *Int {
	if x.IsZero() || y.IsZero() {
		z.grow(0, false, false)
		z.used = 0
		z.sign = 1
		return z
	}
	xs, ys := x, y
	if z == x || z == y {
		xs = x.Clone()
		ys = y.Clone()
	}
	n, m := xs.used, ys.used
	dst := make([]Limb, n+m)
	for j := 0; j < m; j++ {
		mulVecAddScalar(dst, xs.limbs[:n], ys.limbs[j], j)
	}
	z.limbs = dst
	z.sign = xs.sign * ys.sign
	z.fixupUsed()
	return z
}
