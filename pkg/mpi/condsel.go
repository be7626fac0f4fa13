package mpi

import "github.com/cronokirby/saferith"

// SafeCondAssign sets x = y if flag is true, leaving x unchanged otherwise.
// The control flow and the memory accessed do not depend on flag's value:
// both x and y are read and written in full regardless of the outcome, and
// the selection itself is a mask computed from flag, never a branch.
//
// If y has more limbs allocated than x, x is first grown to y's length, so
// the loop always runs over the longer of the two.
func (x *Int) SafeCondAssign(y *Int, flag bool) {
	if x == y {
		return
	}
	c := choiceFromBool(flag)
	mask := Limb(0) - Limb(uint64(c))

	n := len(x.limbs)
	if len(y.limbs) > n {
		n = len(y.limbs)
	}
	x.grow(n, true, true)
	for i := 0; i < n; i++ {
		var yl Limb
		if i < len(y.limbs) {
			yl = y.limbs[i]
		}
		xl := x.limbs[i]
		x.limbs[i] = xl ^ (mask & (xl ^ yl))
	}

	signMask := int(mask & 1)
	x.sign = x.sign*(1-signMask) + y.sign*signMask
	x.fixupUsed()
}

// SafeCondSwap exchanges x and y in place if flag is true; the control
// flow does not depend on flag. The operand with fewer limbs allocated is
// first grown to the other's length.
func (x *Int) SafeCondSwap(y *Int, flag bool) {
	if x == y {
		return
	}
	c := choiceFromBool(flag)
	mask := Limb(0) - Limb(uint64(c))

	n := len(x.limbs)
	if len(y.limbs) > n {
		n = len(y.limbs)
		x.grow(n, true, true)
	} else if len(y.limbs) < n {
		y.grow(n, true, true)
	}
	for i := 0; i < n; i++ {
		xl, yl := x.limbs[i], y.limbs[i]
		d := mask & (xl ^ yl)
		x.limbs[i] = xl ^ d
		y.limbs[i] = yl ^ d
	}

	signMask := int(mask & 1)
	xs, ys := x.sign, y.sign
	x.sign = xs*(1-signMask) + ys*signMask
	y.sign = ys*(1-signMask) + xs*signMask
	x.fixupUsed()
	y.fixupUsed()
}

// ctSelectByte returns a if flag is true, b otherwise, without branching on
// flag. Used by the RSA Bleichenbacher countermeasure to pick between the
// genuine and the fake premaster byte-wise.
func ctSelectByte(flag saferith.Choice, a, b byte) byte {
	mask := byte(0) - byte(uint64(flag))
	return b ^ (mask & (a ^ b))
}

// CtSelectBytes fills dst with a if flag is true, b otherwise, byte-wise,
// in constant time. len(a) == len(b) == len(dst) is required.
func CtSelectBytes(dst, a, b []byte, flag bool) {
	c := choiceFromBool(flag)
	for i := range dst {
		dst[i] = ctSelectByte(c, a[i], b[i])
	}
}
