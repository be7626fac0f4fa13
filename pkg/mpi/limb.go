// Package mpi implements arbitrary-precision unsigned/signed integers over
// fixed-width machine limbs, with the arithmetic needed for public-key
// cryptography: add/sub, multiply, divide-with-remainder, shifts, bit
// access, GCD, modular inverse and modular exponentiation via Montgomery
// multiplication with a sliding window.
//
// Values are not safe for concurrent use; an *Int's limb slice is mutated
// in place by most operations. Any Int that may hold secret material
// should be released with Zeroize when it is no longer needed.
package mpi

import "github.com/cronokirby/saferith"

// Limb is a single machine word of the representation. The implementation
// fixes B = 64 bits per limb, little-endian limb order (limb 0 is least
// significant).
type Limb = uint64

const (
	limbBits  = 64
	limbBytes = limbBits / 8
)

// choice is a branchless 0/1 selector backed by saferith's constant-time
// Choice type. It is the one place mpi leans on saferith rather than
// hand-rolled bit tricks: SafeCondAssign, SafeCondSwap, the ECP comb-table
// lookup and the RSA premaster mask all route through it.
type choice = saferith.Choice

// choiceFromBool converts a plain bool flag into the constant-time
// Choice selector SafeCondAssign/SafeCondSwap/CtSelectBytes mask their
// selection on.
func choiceFromBool(b bool) choice {
	if b {
		return saferith.Choice(1)
	}
	return saferith.Choice(0)
}
