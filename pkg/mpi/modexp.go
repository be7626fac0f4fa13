package mpi

import "math/bits"

// Scratch holds the odd-multiples window table used by ModExp so that
// repeated calls on the same execution context do not reallocate it. The
// table has capacity for 2^6 entries, the largest the window-width
// selection in ModExp ever needs. Unlike the teacher's process-wide,
// execution-context-keyed scratch lookup, a Scratch here is just a value:
// callers create one per goroutine/connection and pass it explicitly,
// per the spec.md §9 redesign note ("pass a scratch handle through the
// call stack... avoid hidden global lookups").
type Scratch struct {
	window [1 << 6]*Int
}

// NewScratch allocates an empty modexp scratch area.
func NewScratch() *Scratch {
	s := &Scratch{}
	for i := range s.window {
		s.window[i] = New()
	}
	return s
}

// Zeroize clears every slot of the scratch table. Call this when the
// owning execution context (connection) is torn down, since the table may
// have held Montgomery-form secret key material.
func (s *Scratch) Zeroize() {
	for _, w := range s.window {
		w.Zeroize()
	}
}

// mont holds the Montgomery arithmetic parameters for a fixed odd modulus.
type mont struct {
	n    *Int
	mm   Limb // -N[0]^{-1} mod 2^64
	rr   *Int // R^2 mod N, R = 2^(limbBits*len(N))
	nLen int
}

// montgomeryConstant computes mm = -N[0]^{-1} mod 2^64 via the Newton-style
// doubling iteration x_{i+1} = x_i * (2 - N[0]*x_i), which converges
// quadratically starting from the 3-bit correct seed for an odd N[0].
func montgomeryConstant(n0 Limb) Limb {
	x := n0 // x == n0^{-1} mod 8 trivially, since n0 is odd and n0*n0 == 1 mod 8
	for i := 0; i < 6; i++ {
		x = x * (2 - n0*x)
	}
	return -x
}

func newMont(n *Int) *mont {
	m := &mont{n: n, nLen: n.used, mm: montgomeryConstant(n.limbs[0])}
	r := New()
	r.SetBit(2*n.used*limbBits, 1)
	rr := New()
	_ = Mod(rr, r, n)
	m.rr = rr
	return m
}

// montMul computes z = x*y*R^{-1} mod N using the standard limb-at-a-time
// CIOS-style Montgomery multiplication.
func (m *mont) montMul(z, x, y *Int) {
	n := m.nLen
	t := make([]Limb, n+2)
	for i := 0; i < n; i++ {
		xi := x.limbAt(i)
		// t += xi * y
		var carry uint64
		for j := 0; j < n; j++ {
			hi, lo := bits.Mul64(xi, y.limbAt(j))
			lo, c1 := bits.Add64(lo, carry, 0)
			sum, c2 := bits.Add64(t[j], lo, 0)
			t[j] = sum
			carry = hi + c1 + c2
		}
		sum, c := bits.Add64(t[n], carry, 0)
		t[n] = sum
		t[n+1] += c

		// u = t[0] * mm mod 2^64; t += u * N
		u := t[0] * m.mm
		var carry2 uint64
		for j := 0; j < n; j++ {
			hi, lo := bits.Mul64(u, m.n.limbAt(j))
			lo, c1 := bits.Add64(lo, carry2, 0)
			sum, c2 := bits.Add64(t[j], lo, 0)
			t[j] = sum
			carry2 = hi + c1 + c2
		}
		sum2, c2 := bits.Add64(t[n], carry2, 0)
		t[n] = sum2
		t[n+1] += c2

		// shift t right by one limb.
		copy(t[:n+1], t[1:n+2])
		t[n+1] = 0
	}

	z.grow(n+1, false, true)
	copy(z.limbs, t[:n+1])
	z.fixupUsed()
	if z.CmpAbs(m.n) >= 0 {
		z.Sub(z, m.n)
	}
	z.sign = 1
}

// toMont converts x into Montgomery form modulo m (x*R mod N).
func (m *mont) toMont(z, x *Int) {
	reduced := New()
	_ = Mod(reduced, x, m.n)
	m.montMul(z, reduced, m.rr)
}

// fromMont converts a Montgomery-form value back to normal form.
func (m *mont) fromMont(z, x *Int) {
	one := New().SetInt(1)
	m.montMul(z, x, one)
}

// windowWidth chooses the sliding-window size from the exponent's bit
// length, per the thresholds spec.md §4.1 specifies.
func windowWidth(bitLen int) int {
	switch {
	case bitLen < 23:
		return 1
	case bitLen < 79:
		return 3
	case bitLen < 239:
		return 4
	case bitLen < 671:
		return 5
	default:
		return 6
	}
}

// ModExp computes X = A^E mod N using Montgomery multiplication with a
// sliding window. Requires N > 0, N odd, E >= 0. scratch supplies the
// window table storage; pass a *Scratch owned by the calling execution
// context (not shared across concurrent callers).
func ModExp(x, a, e, n *Int, scratch *Scratch) error {
	if n.Sign() <= 0 || n.GetBit(0) == 0 {
		return ErrBadInput
	}
	if e.Sign() < 0 {
		return ErrBadInput
	}
	if scratch == nil {
		scratch = NewScratch()
	}

	m := newMont(n)
	w := windowWidth(e.BitLength())
	tableSize := 1 << (w - 1)

	// W[1] = A*R mod N, in Montgomery form.
	aAbs := a.Clone()
	aAbs.sign = 1
	m.toMont(scratch.window[1], aAbs)

	if w > 1 {
		// W[2^{w-1}] by repeated squaring of W[1].
		top := 1 << (w - 1)
		scratch.window[top].Copy(scratch.window[1])
		for i := 0; i < w-1; i++ {
			m.montMul(scratch.window[top], scratch.window[top], scratch.window[top])
		}
		// fill remaining odd slots: W[i] = W[i-2] * W[1]^2 ... more directly,
		// W[i+1] = W[i-1] * W[1]^2? Simpler: generate all odd entries 1..2^w-1
		// by successive multiplication by W[1]^2 isn't quite right either;
		// use the direct definition W[k] = W[1]^k for odd k via repeated
		// multiplication by W[1]^2, seeded from W[1].
		wSquared := New()
		m.montMul(wSquared, scratch.window[1], scratch.window[1])
		prev := 1
		for k := 3; k < tableSize*2; k += 2 {
			m.montMul(scratch.window[k], scratch.window[prev], wSquared)
			prev = k
		}
	}

	acc := New()
	m.toMont(acc, New().SetInt(1))

	bitLen := e.BitLength()
	i := bitLen - 1
	for i >= 0 {
		if e.GetBit(i) == 0 {
			m.montMul(acc, acc, acc)
			i--
			continue
		}
		// open a window: gather up to w bits starting here.
		wbits := 0
		nbits := 0
		j := i
		for nbits < w && j >= 0 {
			wbits = (wbits << 1) | e.GetBit(j)
			nbits++
			j--
		}
		// strip trailing zero bits from the window so we stop on an odd digit,
		// squaring once per bit consumed either way.
		for wbits&1 == 0 && nbits > 0 {
			wbits >>= 1
			nbits--
		}
		for k := 0; k < nbits; k++ {
			m.montMul(acc, acc, acc)
		}
		idx := wbits
		if idx >= 1 {
			m.montMul(acc, acc, selectWindow(scratch, idx, tableSize))
		}
		i -= nbits
		// account for any zero bits we folded into the window but didn't
		// multiply for: they were already squared above since nbits counted
		// them; the trailing-zero strip only affected which table entry we
		// used, not how many squarings occurred.
	}

	result := New()
	m.fromMont(result, acc)

	if a.Sign() < 0 && e.GetBit(0) == 1 {
		result.Sub(n, result)
	}
	x.Copy(result)
	return nil
}

// selectWindow fetches window table entry idx using a full masked scan of
// every populated slot rather than direct indexing, so that table access
// does not depend on secret-derived idx via the Go slice index alone
// reaching different cache lines predictably; every slot is touched.
func selectWindow(scratch *Scratch, idx, tableSize int) *Int {
	out := New()
	for k := 1; k < tableSize*2; k += 2 {
		out.SafeCondAssign(scratch.window[k], k == idx)
	}
	return out
}
