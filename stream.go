package forkrng

import (
	"encoding/binary"
	"io"
	"math/rand/v2"
)

// Stream is a Generator that advances in place with every draw.
//
// It implements math/rand/v2.Source and io.Reader, so distribution and
// sequence libraries can consume it directly. A Stream owns its own copy of
// the generator it was created from. It is not safe for concurrent use.
type Stream[A Accumulator[A]] struct {
	g Generator[A]
}

var (
	_ rand.Source = (*Stream[XXH64])(nil)
	_ io.Reader   = (*Stream[XXH64])(nil)

	_ Accumulator[XXH64]   = XXH64{}
	_ Accumulator[Blake2b] = Blake2b{}
)

// Uint64 draws the next value.
func (s *Stream[A]) Uint64() uint64 {
	var v uint64
	v, s.g = s.g.Next()
	return v
}

// Uint32 draws the next value and truncates it.
func (s *Stream[A]) Uint32() uint32 {
	return uint32(s.Uint64())
}

// FillBytes fills buf with successive little-endian draws. A trailing
// partial word consumes a whole draw.
func (s *Stream[A]) FillBytes(buf []byte) {
	for len(buf) >= 8 {
		binary.LittleEndian.PutUint64(buf, s.Uint64())
		buf = buf[8:]
	}
	if len(buf) > 0 {
		var word [8]byte
		binary.LittleEndian.PutUint64(word[:], s.Uint64())
		copy(buf, word[:])
	}
}

// Read fills p like FillBytes. It always returns len(p), nil.
func (s *Stream[A]) Read(p []byte) (int, error) {
	s.FillBytes(p)
	return len(p), nil
}

// Generator returns the stream's current position as a Generator value.
func (s *Stream[A]) Generator() Generator[A] {
	return s.g
}
