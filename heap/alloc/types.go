package alloc

import (
	"io"

	"github.com/joshuapare/heapkit/heap/dirty"
)

// Ptr is a heap address as handed to callers: the address of a payload, one
// header word past the chunk start.
type Ptr uint64

// Null is the failure and "nothing" sentinel. No payload can live at address
// 0 because every payload follows a header word.
const Null Ptr = 0

// DirtyTracker is a type alias for the interface defined in heap/dirty.
type DirtyTracker = dirty.DirtyTracker

// Allocator is the four-operation allocator interface plus introspection.
//
// Implementations:
//   - FirstFit: the implicit-list first-fit allocator
//   - Locked: a mutex wrapper around any Allocator
type Allocator interface {
	// Alloc returns a pointer to at least size bytes and a slice over them.
	Alloc(size int) (Ptr, []byte, error)

	// Calloc allocates count*size bytes and zeroes them.
	Calloc(count, size int) (Ptr, []byte, error)

	// Realloc resizes the allocation at p, moving it when it cannot change
	// in place. On failure p and its contents are left untouched.
	Realloc(p Ptr, size int) (Ptr, []byte, error)

	// Free releases the allocation at p. Null and already free chunks are
	// ignored.
	Free(p Ptr) error

	// FreeBytes returns the number of free bytes in the heap, counting the
	// header word of each free chunk.
	FreeBytes() int

	// Dump writes a bounded chunk table for diagnostics.
	Dump(w io.Writer) error
}
