// Package forkrng provides a deterministic pseudo-random generator that is
// split by labels instead of by threading mutable state.
//
// A Generator wraps a streaming hash accumulator. Forking copies the
// accumulator and absorbs a label, so any number of independent children can
// be derived from one parent without mutating it. The same root seed and the
// same sequence of labels always produce the same values, and different
// labels produce statistically independent streams.
//
// Example usage:
//
//	rng := forkrng.NewRng("initial seed")
//	sub := rng.Fork("a convenient label to differentiate")
//	for i := 0; i < 10; i++ {
//	    fmt.Println(sub.Fork(i).Uint64())
//	}
//
// Generators are plain values. Draw methods operate on a copy of the
// receiver, so drawing never changes a Generator held elsewhere. Use Next or
// Stream when several values are needed from one logical point.
//
// This is not a cryptographically secure generator.
package forkrng

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Generator is a forkable random generator over the accumulator family A.
//
// The zero value is the Default generator. Generators are safe to copy and
// to share between goroutines; none of their methods mutate the receiver.
type Generator[A Accumulator[A]] struct {
	acc A
}

// Rng is the default generator, backed by XXH64. Its output for a given
// seed and label sequence is stable across platforms and releases.
type Rng = Generator[XXH64]

// Blake2Rng is a generator backed by BLAKE2b-256.
type Blake2Rng = Generator[Blake2b]

// New returns a generator seeded with the given value. It is equivalent to
// Default[A]().Fork(seed). Any value accepted by AppendLabel can be a seed.
func New[A Accumulator[A]](seed any) Generator[A] {
	return Default[A]().Fork(seed)
}

// NewRng returns an XXH64 generator seeded with the given value.
func NewRng(seed any) Rng {
	return New[XXH64](seed)
}

// NewBlake2Rng returns a BLAKE2b generator seeded with the given value.
func NewBlake2Rng(seed any) Blake2Rng {
	return New[Blake2b](seed)
}

// Default returns the generator whose accumulator has absorbed nothing.
// All Default generators of one family are equal.
func Default[A Accumulator[A]]() Generator[A] {
	return Generator[A]{}
}

// Fork returns a child generator keyed by label. The receiver is not
// modified, so a parent can be forked any number of times in any order.
//
// This is the core of the API. Labels are usually a subsystem name, an
// entity id or a turn counter; structured values work too:
//
//	type point struct{ X, Y int }
//	v := rng.Fork(point{10, 12}).Uint64()
func (g Generator[A]) Fork(label any) Generator[A] {
	buf := getBuffer()
	*buf = AppendLabel(*buf, label)
	g.acc = g.acc.Absorb(*buf)
	putBuffer(buf)
	return g
}

// ForkPath forks once per label, in order.
// g.ForkPath(a, b) is the same generator as g.Fork(a).Fork(b).
func (g Generator[A]) ForkPath(labels ...any) Generator[A] {
	for _, l := range labels {
		g = g.Fork(l)
	}
	return g
}

// Next draws a value and returns it with the advanced generator.
//
// The value is the accumulator's digest. The digest is then written back
// into the accumulator as 8 little-endian bytes, so drawing again from the
// returned generator yields a different value. The receiver is not modified.
func (g Generator[A]) Next() (uint64, Generator[A]) {
	v := g.acc.Sum64()
	var word [8]byte
	binary.LittleEndian.PutUint64(word[:], v)
	g.acc = g.acc.Absorb(word[:])
	return v, g
}

// Uint64 returns the first value Next would draw.
func (g Generator[A]) Uint64() uint64 {
	return g.acc.Sum64()
}

// Uint32 returns the low 32 bits of Uint64.
func (g Generator[A]) Uint32() uint32 {
	return uint32(g.Uint64())
}

// FillBytes fills buf with successive draws from a copy of g, each written
// little-endian. A trailing partial word takes the low-order bytes of one
// more draw.
func (g Generator[A]) FillBytes(buf []byte) {
	s := g.Stream()
	s.FillBytes(buf)
}

// Stream returns an evolving copy of g for callers that need many values
// from one logical point.
func (g Generator[A]) Stream() *Stream[A] {
	return &Stream[A]{g: g}
}

// Rand returns a math/rand/v2 generator drawing from a Stream of g.
func (g Generator[A]) Rand() *rand.Rand {
	return rand.New(g.Stream())
}

// Equal reports whether g and o have identical accumulator states, in which
// case they produce identical output under identical use.
func (g Generator[A]) Equal(o Generator[A]) bool {
	a, errA := g.acc.MarshalBinary()
	b, errB := o.acc.MarshalBinary()
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

// Family returns the name of the accumulator's hash function.
func (g Generator[A]) Family() string {
	return g.acc.Family()
}

// MarshalBinary returns the accumulator state, for checkpointing.
func (g Generator[A]) MarshalBinary() ([]byte, error) {
	b, err := g.acc.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("forkrng: marshal %s state: %w", g.acc.Family(), err)
	}
	return b, nil
}

// UnmarshalBinary restores state produced by MarshalBinary. On error g is
// left unchanged.
func (g *Generator[A]) UnmarshalBinary(state []byte) error {
	var zero A
	acc, err := zero.Restore(state)
	if err != nil {
		return fmt.Errorf("forkrng: restore %s state: %w", zero.Family(), err)
	}
	g.acc = acc
	return nil
}

// String returns the family and the next value, not the raw state.
func (g Generator[A]) String() string {
	return fmt.Sprintf("%s(%016x)", g.acc.Family(), g.Uint64())
}
