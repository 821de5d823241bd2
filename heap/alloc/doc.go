// Package alloc provides a first-fit allocator whose bookkeeping lives
// entirely inside the heap it manages.
//
// # Overview
//
// The heap is an implicit list of chunks. Each chunk starts with a one-word
// header packing a free flag (bit 0) and the chunk length in words, header
// included (the remaining bits). There is no separate free list: allocation
// walks the chunks from the heap start and takes the first free one that is
// large enough, splitting off the excess as a new free chunk.
//
// Release marks the chunk free and then coalesces the whole heap, merging
// every run of adjacent free chunks into one. That keeps Free linear in the
// number of chunks but also repairs free neighbours left behind by earlier
// shrinks and splits.
//
// # Free counter
//
// FreeBytes reports the summed length of all free chunks, header words
// included. A freshly initialized heap reports its full capacity, and a heap
// whose allocations have all been released reports it again, which makes the
// counter usable for leak checks.
//
// # Usage Example
//
//	r, _ := heap.New(heap.DefaultLayout)
//	fa, err := alloc.New(r, nil, nil)
//	if err != nil {
//	    return err
//	}
//
//	p, buf, err := fa.Alloc(50)
//	if err != nil {
//	    return err // alloc.ErrOutOfMemory
//	}
//	copy(buf, data)
//
//	p, buf, err = fa.Realloc(p, 120) // may move; contents preserved
//	_ = fa.Free(p)
//
// # Persistence
//
// A region created with heap.Create is a mapped image file. Pass a
// dirty.Tracker to New or Attach and every header, zero fill and copy the
// allocator makes is recorded for the next flush; heap/tx wraps those
// flushes in sequence-numbered commits.
//
// # Concurrency
//
// FirstFit is not safe for concurrent use. NewLocked wraps any Allocator in
// a mutex.
package alloc
