package optimize

import (
	"sync"
)

// BytePool is a pool of fixed-size byte slices used for upload and
// copy buffers to reduce allocations.
type BytePool struct {
	pool sync.Pool
	size int
}

// NewBytePool creates a new byte pool with specified slice size
func NewBytePool(size int) *BytePool {
	return &BytePool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]byte, size)
			},
		},
	}
}

// Get gets a byte slice from the pool
func (p *BytePool) Get() []byte {
	return p.pool.Get().([]byte)
}

// Put returns a byte slice to the pool. Slices that shrunk below the
// pool size are dropped.
func (p *BytePool) Put(b []byte) {
	if cap(b) >= p.size {
		p.pool.Put(b[:p.size])
	}
}

// Size returns the slice size handed out by the pool.
func (p *BytePool) Size() int {
	return p.size
}
