package alloc

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/verify"
)

// smallLayout is a 64-byte heap (32 two-byte words), small enough to reason
// about chunk by chunk.
var smallLayout = heap.Layout{Start: 0x1000, End: 0x1040, WordSize: 2}

// newTestAllocator creates an in-memory region for layout and an allocator
// over it.
func newTestAllocator(t testing.TB, layout heap.Layout) *FirstFit {
	t.Helper()

	r, err := heap.New(layout)
	require.NoError(t, err, "failed to create test region")

	fa, err := New(r, nil, nil)
	require.NoError(t, err, "failed to create allocator")
	return fa
}

// assertInvariants checks the chunk walk and the free counter.
func assertInvariants(t testing.TB, fa *FirstFit) {
	t.Helper()

	require.NoError(t, verify.ChunkWalk(fa.heap, fa.ws), "chunk walk broken")
	require.NoError(t, verify.FreeCounter(fa.heap, fa.ws, fa.FreeBytes()), "free counter out of sync")
}

// chunkShape returns the chunk list as (size, free) pairs.
func chunkShape(t testing.TB, fa *FirstFit) []shape {
	t.Helper()

	chunks, err := fa.Chunks()
	require.NoError(t, err)
	out := make([]shape, len(chunks))
	for i, c := range chunks {
		out[i] = shape{Size: c.Size, Free: c.Free}
	}
	return out
}

type shape struct {
	Size int
	Free bool
}

func busyChunk(n int) shape { return shape{Size: n} }
func freeChunk(n int) shape { return shape{Size: n, Free: true} }

// fill writes a repeating pattern derived from seed.
func fill(b []byte, seed byte) {
	for i := range b {
		b[i] = seed + byte(i)
	}
}

// checkFill reports whether b holds the pattern written by fill.
func checkFill(b []byte, seed byte) bool {
	for i := range b {
		if b[i] != seed+byte(i) {
			return false
		}
	}
	return true
}

// mockDirtyTracker records Add calls.
type mockDirtyTracker struct {
	calls []dirtyCall
}

type dirtyCall struct {
	off, length int
}

func newMockDirtyTracker() *mockDirtyTracker {
	return &mockDirtyTracker{}
}

func (m *mockDirtyTracker) Add(off, length int) {
	m.calls = append(m.calls, dirtyCall{off: off, length: length})
}

func (m *mockDirtyTracker) Reset() { m.calls = m.calls[:0] }

func (m *mockDirtyTracker) CallCount() int { return len(m.calls) }

// WasCalledAt reports whether any recorded range covers off.
func (m *mockDirtyTracker) WasCalledAt(off int) bool {
	return slices.ContainsFunc(m.calls, func(c dirtyCall) bool {
		return off >= c.off && off < c.off+c.length
	})
}
