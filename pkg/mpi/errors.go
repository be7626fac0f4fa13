package mpi

import "errors"

// Sentinel errors returned by MPI operations. Callers match on these with
// errors.Is; they are intentionally coarse, mirroring the small set of
// stable error kinds spec.md §6 lists for the core.
var (
	ErrBadInput       = errors.New("mpi: bad input data")
	ErrBufferTooSmall = errors.New("mpi: buffer too small")
	ErrDivisionByZero = errors.New("mpi: division by zero")
	ErrNotInvertible  = errors.New("mpi: value has no inverse modulo N")
	ErrRandomFailed   = errors.New("mpi: random source failed")
)
