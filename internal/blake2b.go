// Package internal provides the hash primitives behind forkrng accumulators.
// This package wraps golang.org/x/crypto.
package internal

import (
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// Blake2bSize is the digest size used by the Blake2b accumulator family.
const Blake2bSize = blake2b.Size256

// Layout of the x/crypto marshaled state: magic, eight chaining words, two
// counter words, the digest size, the block buffer and its fill offset.
const (
	blockStart = len("b2b") + 8*8 + 2*8 + 1
	stateSize  = blockStart + blake2b.BlockSize + 1
)

// Blake2bSnapshot is the marshaled state of an unkeyed BLAKE2b-256 digest.
// The empty snapshot stands for a freshly initialized digest.
//
// Snapshots are strings so that copies never share mutable memory.
type Blake2bSnapshot string

// restore rebuilds a live digest from the snapshot.
func (s Blake2bSnapshot) restore() (hash.Hash, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return h, nil
	}
	if err := h.(encoding.BinaryUnmarshaler).UnmarshalBinary([]byte(s)); err != nil {
		return nil, err
	}
	return h, nil
}

// mustRestore is used on snapshots produced by this package, which always
// unmarshal.
func (s Blake2bSnapshot) mustRestore() hash.Hash {
	h, err := s.restore()
	if err != nil {
		panic("internal: corrupt blake2b snapshot: " + err.Error())
	}
	return h
}

// Absorb writes data into the digest and returns the new snapshot.
func (s Blake2bSnapshot) Absorb(data []byte) Blake2bSnapshot {
	h := s.mustRestore()
	h.Write(data)
	return snapshot(h)
}

// Sum returns the current BLAKE2b-256 digest. The snapshot stays usable.
func (s Blake2bSnapshot) Sum() [Blake2bSize]byte {
	var out [Blake2bSize]byte
	copy(out[:], s.mustRestore().Sum(nil))
	return out
}

// Sum64 returns the first 8 bytes of the digest, little-endian.
func (s Blake2bSnapshot) Sum64() uint64 {
	sum := s.Sum()
	return binary.LittleEndian.Uint64(sum[:8])
}

// Bytes returns the canonical marshaled state. The empty snapshot is
// expanded to the marshaled initial state.
func (s Blake2bSnapshot) Bytes() []byte {
	if s == "" {
		return []byte(snapshot(s.mustRestore()))
	}
	return []byte(s)
}

// ParseBlake2bSnapshot validates marshaled state bytes.
func ParseBlake2bSnapshot(state []byte) (Blake2bSnapshot, error) {
	if len(state) == 0 {
		return "", errors.New("blake2b state: empty")
	}
	s := Blake2bSnapshot(state)
	h, err := s.restore()
	if err != nil {
		return "", fmt.Errorf("blake2b state: %w", err)
	}
	if h.Size() != Blake2bSize {
		return "", fmt.Errorf("blake2b state: digest size %d, want %d", h.Size(), Blake2bSize)
	}
	// x/crypto does not check the offset; a larger one panics on the next write.
	if off := int(state[stateSize-1]); off > blake2b.BlockSize {
		return "", fmt.Errorf("blake2b state: block offset %d exceeds %d", off, blake2b.BlockSize)
	}
	return canonical(append([]byte(nil), state...)), nil
}

func snapshot(h hash.Hash) Blake2bSnapshot {
	b, err := h.(encoding.BinaryMarshaler).MarshalBinary()
	if err != nil {
		// Only keyed digests refuse to marshal.
		panic("internal: blake2b marshal: " + err.Error())
	}
	return canonical(b)
}

// canonical zeroes the block buffer past its offset. Those bytes are stale
// input that no later digest reads, so equal states get equal snapshots.
func canonical(state []byte) Blake2bSnapshot {
	off := int(state[stateSize-1])
	clear(state[blockStart+off : blockStart+blake2b.BlockSize])
	return Blake2bSnapshot(state)
}
