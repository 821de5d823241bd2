package alloc

import "errors"

var (
	// ErrOutOfMemory indicates that no free chunk can hold the request, either
	// because the free-byte counter is too small or because free space is
	// fragmented.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrBadPointer indicates a null, out-of-window, misaligned or non-live
	// pointer where a live allocation was required.
	ErrBadPointer = errors.New("alloc: bad pointer")

	// ErrBadSize indicates a negative request size.
	ErrBadSize = errors.New("alloc: invalid size")

	// ErrCorruptHeap indicates a chunk header that desynchronizes the walk.
	ErrCorruptHeap = errors.New("alloc: corrupt heap")

	// ErrNotInitialized indicates an attached image that holds no chunk list.
	ErrNotInitialized = errors.New("alloc: heap not initialized")
)
