package heap

import "github.com/joshuapare/heapkit/internal/format"

// ChunkInfo describes one chunk of the implicit list as seen by callers.
type ChunkInfo struct {
	Index int    // Position in address order
	Addr  uint64 // Address of the header word
	Off   int    // Byte offset of the header from the heap start
	Size  int    // Chunk length in bytes, header included
	Free  bool
}

// Payload returns the usable bytes after the header.
func (c ChunkInfo) Payload(ws int) int { return c.Size - format.HeaderWords*ws }

// Chunks walks the heap bytes and returns every chunk in address order. On a
// desynchronized walk it returns the chunks decoded so far and the error.
func (r *Region) Chunks() ([]ChunkInfo, error) {
	if r.data == nil {
		return nil, ErrClosed
	}
	ws := r.layout.WordSize
	var out []ChunkInfo
	err := format.Walk(r.Heap(), ws, func(c format.Chunk) bool {
		out = append(out, ChunkInfo{
			Index: len(out),
			Addr:  r.Addr(c.Off),
			Off:   c.Off,
			Size:  c.Bytes(ws),
			Free:  c.Free,
		})
		return true
	})
	return out, err
}
