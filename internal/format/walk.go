package format

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// Chunk is one entry of the implicit chunk list.
type Chunk struct {
	Off   int  // Byte offset of the header from the heap start
	Words int  // Total size in words, header included
	Free  bool // True when the chunk is free
}

// Bytes returns the chunk length in bytes, header included.
func (c Chunk) Bytes(ws int) int { return c.Words * ws }

// PayloadBytes returns the usable bytes after the header.
func (c Chunk) PayloadBytes(ws int) int { return (c.Words - HeaderWords) * ws }

// Next returns the byte offset of the following chunk.
func (c Chunk) Next(ws int) int { return c.Off + c.Words*ws }

// ChunkAt decodes the chunk whose header sits at off. It fails when the size
// field is zero or the chunk reaches past the end of heap.
func ChunkAt(heap []byte, off, ws int) (Chunk, error) {
	if !buf.Has(heap, off, ws) {
		return Chunk{}, fmt.Errorf("chunk at 0x%x: %w", off, ErrTruncated)
	}
	words, free := ReadHeader(heap, off, ws)
	if words == 0 {
		return Chunk{}, fmt.Errorf("chunk at 0x%x: %w", off, ErrZeroChunk)
	}
	c := Chunk{Off: off, Words: words, Free: free}
	if c.Next(ws) > len(heap) {
		return Chunk{}, fmt.Errorf("chunk at 0x%x (%d words): %w", off, words, ErrChunkOverrun)
	}
	return c, nil
}

// Walk visits every chunk from the heap start in address order. fn may
// return false to stop early. The walk fails on the first header that would
// desynchronize it.
func Walk(heap []byte, ws int, fn func(Chunk) bool) error {
	for off := 0; off < len(heap); {
		c, err := ChunkAt(heap, off, ws)
		if err != nil {
			return err
		}
		if !fn(c) {
			return nil
		}
		off = c.Next(ws)
	}
	return nil
}
