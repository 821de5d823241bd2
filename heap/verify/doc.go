// Package verify provides validation functions for heap images and the
// implicit chunk list stored inside them.
//
// # Overview
//
// The allocator keeps all of its metadata in the heap bytes, so a single bad
// size field desynchronizes every chunk after it. These checks walk the list
// independently of the allocator and report the first structural problem.
// They back alloc.Attach, the heapctl verify command, and the invariant
// checks in tests.
//
// Validation categories:
//   - ImageHeader: signature, version, word size, heap length, file size
//   - Checksum: XOR checksum of the header page
//   - SequenceNumbers: transaction consistency (primary == secondary)
//   - ChunkWalk: non-zero sizes, walk ends exactly at the heap end
//   - FreeCounter: a cached free-byte count matches the real sum
//   - Coalesced: no two free chunks are neighbours
//
// # Quick Start
//
//	data, _ := os.ReadFile("app.heap")
//	if err := verify.AllInvariants(data); err != nil {
//	    fmt.Printf("Validation failed: %v\n", err)
//	}
//
// # ValidationError
//
// All validation functions return *ValidationError on failure. Offset is a
// heap byte offset for chunk checks and an image offset for header checks,
// or -1 when no single location applies.
package verify
