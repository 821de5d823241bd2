// Package heap provides the storage a heapkit allocator manages: a fixed,
// linearly addressed window [Start, End) of word-aligned bytes.
//
// # Regions
//
// A Region is a heap image: a 4 KiB header page describing the window
// (addresses, word size, transaction sequence numbers, checksum) followed by
// the raw heap bytes. Regions live either purely in memory or in a file:
//
//	// In-memory, for tests and embedded simulation
//	r, err := heap.New(heap.DefaultLayout)
//
//	// File backed, mapped read-write (unix) or loaded (other platforms)
//	r, err := heap.Create("app.heap", heap.Layout{Start: 0x8000, End: 0x10000, WordSize: 2})
//	r, err := heap.Open("app.heap")
//	defer r.Close()
//
// The heap bytes are exposed by Heap(); byte offset 0 of that slice is the
// address Layout().Start. Addr and Offset convert between the two.
//
// # Durability
//
// FlushRange writes a byte range of the image back to its file (msync on
// unix) and Sync forces it to stable storage. The dirty and tx packages build
// page tracking and crash detection on top of these two calls.
//
// # Thread Safety
//
// Region instances are not thread-safe. The allocator on top of a region is
// the single owner of its bytes.
package heap
