package stats

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
)

func chunks(specs ...int) []heap.ChunkInfo {
	// Positive sizes are busy, negative sizes are free.
	out := make([]heap.ChunkInfo, len(specs))
	off := 0
	for i, s := range specs {
		size, free := s, false
		if s < 0 {
			size, free = -s, true
		}
		out[i] = heap.ChunkInfo{Index: i, Off: off, Size: size, Free: free}
		off += size
	}
	return out
}

func TestCollect_SingleFreeChunk(t *testing.T) {
	r := Collect(chunks(-64))

	assert.Equal(t, 1, r.Chunks)
	assert.Equal(t, 1, r.FreeChunks)
	assert.Equal(t, 64, r.FreeBytes)
	assert.Equal(t, 64, r.LargestFree)
	assert.InDelta(t, 64.0, r.MeanFree, 1e-9)
	assert.InDelta(t, 64.0, r.MedianFree, 1e-9)
	assert.Zero(t, r.StdDevFree)
	assert.Zero(t, r.Fragmentation)
}

func TestCollect_Fragmented(t *testing.T) {
	r := Collect(chunks(12, -10, 8, -30, 4, -20))

	assert.Equal(t, 6, r.Chunks)
	assert.Equal(t, 3, r.FreeChunks)
	assert.Equal(t, 3, r.BusyChunks)
	assert.Equal(t, 60, r.FreeBytes)
	assert.Equal(t, 24, r.BusyBytes)
	assert.Equal(t, 30, r.LargestFree)
	assert.InDelta(t, 20.0, r.MeanFree, 1e-9)
	assert.InDelta(t, 20.0, r.MedianFree, 1e-9)
	assert.InDelta(t, 10.0, r.StdDevFree, 1e-9)
	assert.InDelta(t, 0.5, r.Fragmentation, 1e-9)
}

func TestCollect_AllBusy(t *testing.T) {
	r := Collect(chunks(8, 8))

	assert.Equal(t, 2, r.BusyChunks)
	assert.Zero(t, r.FreeBytes)
	assert.Zero(t, r.Fragmentation)
}

func TestReport_Write(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Collect(chunks(12, -10, 8, -30)).Write(&buf))

	out := buf.String()
	assert.Contains(t, out, "chunks:        4 (2 free, 2 busy)")
	assert.Contains(t, out, "largest free:  30")
	assert.Contains(t, out, "fragmentation: 25.0%")
}
