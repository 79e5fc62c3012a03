package forkrng

import (
	"fmt"

	"github.com/opd-ai/go-forkrng/internal"
)

// Blake2b is an accumulator based on unkeyed BLAKE2b-256.
//
// The underlying digest lives behind a pointer, so the accumulator keeps an
// immutable snapshot of the marshaled state instead. Each Absorb restores a
// digest, writes, and takes a new snapshot. It is slower than XXH64 but has
// much stronger mixing.
type Blake2b struct {
	state internal.Blake2bSnapshot
}

// Absorb returns a copy of b with p written to the digest.
func (b Blake2b) Absorb(p []byte) Blake2b {
	return Blake2b{state: b.state.Absorb(p)}
}

// Sum64 returns the first 8 bytes of the BLAKE2b-256 digest, little-endian.
func (b Blake2b) Sum64() uint64 {
	return b.state.Sum64()
}

// MarshalBinary returns the BLAKE2b digest state.
func (b Blake2b) MarshalBinary() ([]byte, error) {
	return b.state.Bytes(), nil
}

// Restore returns a Blake2b holding the given digest state.
func (Blake2b) Restore(state []byte) (Blake2b, error) {
	s, err := internal.ParseBlake2bSnapshot(state)
	if err != nil {
		return Blake2b{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return Blake2b{state: s}, nil
}

// Family returns "blake2b".
func (Blake2b) Family() string { return "blake2b" }
