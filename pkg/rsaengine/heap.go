package rsaengine

import (
	"fmt"
	"sync"
)

// Heap is the allocator context a key draws its working buffers from.
type Heap interface {
	Alloc(n int) ([]byte, error)
	Free(buf []byte)
}

// DefaultHeap allocates from the Go runtime and zeroizes on Free.
var DefaultHeap Heap = goHeap{}

type goHeap struct{}

func (goHeap) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrAllocation, n)
	}
	return make([]byte, n), nil
}

func (goHeap) Free(buf []byte) {
	ZeroizeBytes(buf)
}

// LimitedHeap rejects allocations once the outstanding total would exceed its
// budget. It is safe for concurrent use.
type LimitedHeap struct {
	mu     sync.Mutex
	budget int
	used   int
}

// NewLimitedHeap returns a heap that hands out at most budget bytes at once.
func NewLimitedHeap(budget int) *LimitedHeap {
	return &LimitedHeap{budget: budget}
}

func (h *LimitedHeap) Alloc(n int) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n < 0 || h.used+n > h.budget {
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrAllocation, n, h.used, h.budget)
	}
	h.used += n
	return make([]byte, n), nil
}

func (h *LimitedHeap) Free(buf []byte) {
	ZeroizeBytes(buf)
	h.mu.Lock()
	h.used -= cap(buf)
	if h.used < 0 {
		h.used = 0
	}
	h.mu.Unlock()
}

// Used returns the number of bytes currently allocated.
func (h *LimitedHeap) Used() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.used
}
