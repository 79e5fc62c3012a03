package forkrng

import "sync"

const (
	// Initial capacity of pooled label buffers; most labels are a short
	// string or an integer.
	labelBufferSize = 64

	// Buffers that grew past this are dropped instead of pooled.
	maxPooledBufferSize = 64 * 1024
)

// Global pool for label encoding buffers, shared by Fork, New and the
// Labeler encoding path.
var labelBufferPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, labelBufferSize)
		return &b
	},
}

// getBuffer retrieves an empty label buffer from the pool.
func getBuffer() *[]byte {
	b := labelBufferPool.Get().(*[]byte)
	*b = (*b)[:0]
	return b
}

// putBuffer returns a label buffer to the pool for reuse.
func putBuffer(b *[]byte) {
	if b != nil && cap(*b) <= maxPooledBufferSize {
		labelBufferPool.Put(b)
	}
}
