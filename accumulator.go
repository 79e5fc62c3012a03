package forkrng

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ErrInvalidState is returned when serialized generator state cannot be
// restored.
var ErrInvalidState = errors.New("forkrng: invalid generator state")

// Accumulator is the streaming mixing function held by a Generator.
//
// Implementations are value types: assigning an Accumulator copies all of
// its state, and no method mutates the receiver. Absorb returns the advanced
// copy. Sum64 must be a pure function of the state and must not prevent
// further absorption.
type Accumulator[A any] interface {
	// Absorb returns a copy of the accumulator with p appended to its input.
	Absorb(p []byte) A

	// Sum64 returns the 64-bit digest of everything absorbed so far.
	Sum64() uint64

	// MarshalBinary returns the canonical serialized state.
	MarshalBinary() ([]byte, error)

	// Restore returns an accumulator holding previously marshaled state.
	Restore(state []byte) (A, error)

	// Family names the hash function, e.g. "xxh64".
	Family() string
}

// XXH64 is the default accumulator: 64-bit xxHash with seed 0.
//
// The xxhash.Digest is held by value and contains no pointers, so copying an
// XXH64 copies the whole hash state. The zero value is ready to use and is
// equivalent to a freshly reset digest.
type XXH64 struct {
	d     xxhash.Digest
	ready bool
}

// Absorb returns a copy of x with p written to the digest.
func (x XXH64) Absorb(p []byte) XXH64 {
	if !x.ready {
		x.d.Reset()
		x.ready = true
	}
	x.d.Write(p)
	return x
}

// Sum64 returns the xxHash of all absorbed input.
func (x XXH64) Sum64() uint64 {
	if !x.ready {
		x.d.Reset()
	}
	return x.d.Sum64()
}

// MarshalBinary returns the xxhash digest state.
func (x XXH64) MarshalBinary() ([]byte, error) {
	if !x.ready {
		x.d.Reset()
	}
	return x.d.MarshalBinary()
}

// Restore returns an XXH64 holding the given digest state.
func (XXH64) Restore(state []byte) (XXH64, error) {
	var x XXH64
	if err := x.d.UnmarshalBinary(state); err != nil {
		return XXH64{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	x.ready = true
	return x, nil
}

// Family returns "xxh64".
func (XXH64) Family() string { return "xxh64" }
