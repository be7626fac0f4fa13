package mpi

// CmpAbs compares |x| and |y|, returning -1, 0 or +1. Zero magnitudes
// compare equal regardless of sign.
func (x *Int) CmpAbs(y *Int) int {
	if x.used != y.used {
		if x.used < y.used {
			return -1
		}
		return 1
	}
	for i := x.used - 1; i >= 0; i-- {
		if x.limbs[i] != y.limbs[i] {
			if x.limbs[i] < y.limbs[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Cmp compares x and y as signed values, returning -1, 0 or +1.
func (x *Int) Cmp(y *Int) int {
	xz, yz := x.IsZero(), y.IsZero()
	if xz && yz {
		return 0
	}
	if x.sign != y.sign && !xz && !yz {
		if x.sign > y.sign {
			return 1
		}
		return -1
	}
	c := x.CmpAbs(y)
	if x.sign < 0 && !xz {
		c = -c
	}
	return c
}

// CmpInt compares x to a signed machine integer.
func (x *Int) CmpInt(v int64) int {
	y := New().SetInt(v)
	return x.Cmp(y)
}
