package alloc

import (
	"io"
	"sync"
)

// Locked serializes every operation of the wrapped Allocator behind one
// mutex. The heap bytes and the free counter are a single shared resource,
// so finer locking would not be correct.
type Locked struct {
	mu sync.Mutex
	a  Allocator
}

// NewLocked wraps a.
func NewLocked(a Allocator) *Locked {
	return &Locked{a: a}
}

func (l *Locked) Alloc(size int) (Ptr, []byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Alloc(size)
}

func (l *Locked) Calloc(count, size int) (Ptr, []byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Calloc(count, size)
}

func (l *Locked) Realloc(p Ptr, size int) (Ptr, []byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Realloc(p, size)
}

func (l *Locked) Free(p Ptr) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Free(p)
}

func (l *Locked) FreeBytes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.FreeBytes()
}

func (l *Locked) Dump(w io.Writer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Dump(w)
}

// Do runs fn with the lock held, for callers that need several operations
// or payload access to be atomic.
func (l *Locked) Do(fn func(a Allocator) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.a)
}

var (
	_ Allocator = (*FirstFit)(nil)
	_ Allocator = (*Locked)(nil)
)
