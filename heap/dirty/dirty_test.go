package dirty

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

// testLayout gives an image of one header page plus eight heap pages.
var testLayout = heap.Layout{Start: 0x10000, End: 0x18000, WordSize: 2}

// setupTestRegion creates a file-backed region for testing.
func setupTestRegion(t testing.TB) *heap.Region {
	t.Helper()

	r, err := heap.Create(filepath.Join(t.TempDir(), "test.heap"), testLayout)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func Test_DirtyTracker_PageAlignment(t *testing.T) {
	tracker := NewTracker(setupTestRegion(t))

	// 100..300 widens to the first page.
	tracker.Add(100, 200)

	coalesced := tracker.coalesce()
	require.Len(t, coalesced, 1)
	assert.Equal(t, Range{Off: 0, Len: 4096}, coalesced[0])
}

func Test_DirtyTracker_Coalesce_Adjacent(t *testing.T) {
	tracker := NewTracker(setupTestRegion(t))

	tracker.Add(4096, 4096)
	tracker.Add(8192, 4096)

	coalesced := tracker.coalesce()
	require.Len(t, coalesced, 1)
	assert.Equal(t, Range{Off: 4096, Len: 8192}, coalesced[0])
}

func Test_DirtyTracker_Coalesce_Overlapping(t *testing.T) {
	tracker := NewTracker(setupTestRegion(t))

	tracker.Add(0, 8192)
	tracker.Add(4096, 8192)

	coalesced := tracker.coalesce()
	require.Len(t, coalesced, 1)
	assert.Equal(t, Range{Off: 0, Len: 12288}, coalesced[0])
}

func Test_DirtyTracker_Coalesce_Separate(t *testing.T) {
	tracker := NewTracker(setupTestRegion(t))

	tracker.Add(20480, 4096)
	tracker.Add(0, 4096)

	coalesced := tracker.coalesce()
	require.Len(t, coalesced, 2)
	assert.Equal(t, Range{Off: 0, Len: 4096}, coalesced[0], "ranges are sorted")
	assert.Equal(t, Range{Off: 20480, Len: 4096}, coalesced[1])
}

func Test_DirtyTracker_AddIgnoresEmpty(t *testing.T) {
	tracker := NewTracker(setupTestRegion(t))

	tracker.Add(4096, 0)
	tracker.Add(4096, -2)
	assert.Zero(t, tracker.Len())
}

func Test_DirtyTracker_FlushDataOnly_ClearsRanges(t *testing.T) {
	tracker := NewTracker(setupTestRegion(t))

	tracker.Add(0, 100)
	tracker.Add(format.HeaderSize, 100)

	require.NoError(t, tracker.FlushDataOnly(context.Background()))
	assert.Zero(t, tracker.Len())
}

func Test_DirtyTracker_FlushDataOnly_PartialLastPage(t *testing.T) {
	layout := heap.Layout{Start: 0x100, End: 0x1902, WordSize: 2}
	r, err := heap.Create(filepath.Join(t.TempDir(), "odd.heap"), layout)
	require.NoError(t, err)
	defer r.Close()

	tracker := NewTracker(r)
	last := len(r.Bytes()) - 2
	tracker.Add(last, 2)

	require.NoError(t, tracker.FlushDataOnly(context.Background()),
		"flush must clamp the final partial page")
}

func Test_DirtyTracker_FlushPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.heap")
	r, err := heap.Create(path, testLayout)
	require.NoError(t, err)

	tracker := NewTracker(r)
	h := r.Heap()
	copy(h[0x1234:], []byte{0xDE, 0xAD, 0xBE, 0xEF})
	tracker.Add(format.HeaderSize+0x1234, 4)

	ctx := context.Background()
	require.NoError(t, tracker.FlushDataOnly(ctx))
	require.NoError(t, tracker.FlushHeaderAndMeta(ctx, FlushAuto))
	require.NoError(t, r.Close())

	reopened, err := heap.Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, reopened.Heap()[0x1234:0x1238])
}

func Test_DirtyTracker_InMemoryRegion(t *testing.T) {
	r, err := heap.New(testLayout)
	require.NoError(t, err)

	tracker := NewTracker(r)
	tracker.Add(format.HeaderSize, 64)

	ctx := context.Background()
	require.NoError(t, tracker.FlushDataOnly(ctx))
	require.NoError(t, tracker.FlushHeaderAndMeta(ctx, FlushFull))
}

func Test_DirtyTracker_Reset(t *testing.T) {
	tracker := NewTracker(setupTestRegion(t))

	tracker.Add(0, 100)
	tracker.Add(4096, 200)
	tracker.Add(8192, 300)
	require.Len(t, tracker.DebugRanges(), 3)

	tracker.Reset()
	assert.Empty(t, tracker.DebugRanges())
	assert.Nil(t, tracker.DebugCoalescedRanges())
}

func Test_DirtyTracker_Coalesce_ManyRanges(t *testing.T) {
	tracker := NewTracker(setupTestRegion(t))

	for i := range 100 {
		tracker.Add(i*8192, 4096)
	}

	coalesced := tracker.coalesce()
	require.Len(t, coalesced, 100, "every other page stays separate")
	for i := 1; i < len(coalesced); i++ {
		prevEnd := coalesced[i-1].Off + coalesced[i-1].Len
		assert.Less(t, prevEnd, coalesced[i].Off, "range %d overlaps its predecessor", i)
	}
}

func Test_DirtyTracker_FlushModes(t *testing.T) {
	for _, mode := range []FlushMode{FlushAuto, FlushDataOnly, FlushFull} {
		t.Run(mode.String(), func(t *testing.T) {
			tracker := NewTracker(setupTestRegion(t))
			require.NoError(t, tracker.FlushHeaderAndMeta(context.Background(), mode))
		})
	}
}

func Benchmark_DirtyTracker_Add(b *testing.B) {
	tracker := NewTracker(setupTestRegion(b))

	b.ReportAllocs()
	for i := range b.N {
		tracker.Add(4096*i, 4096)
	}
}

func Benchmark_DirtyTracker_Coalesce_100Ranges(b *testing.B) {
	tracker := NewTracker(setupTestRegion(b))
	for i := range 100 {
		tracker.Add(i*4096, 4096)
	}

	b.ReportAllocs()
	for range b.N {
		_ = tracker.coalesce()
	}
}
