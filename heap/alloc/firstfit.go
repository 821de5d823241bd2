package alloc

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/printer"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

// FirstFit is a first-fit allocator over the implicit chunk list stored in a
// region's heap bytes. Every chunk starts with a one-word header holding its
// size in words and a free flag; walking the sizes from the heap start visits
// every chunk and ends exactly at the heap end.
//
// NOT thread-safe. Wrap it with NewLocked when several goroutines share a heap.
type FirstFit struct {
	r   *heap.Region
	dt  DirtyTracker // Optional; receives image ranges for every write
	cfg Config

	heap     []byte // Region heap bytes, index 0 is Layout().Start
	ws       int    // Word size, also the header size in bytes
	capacity int    // Heap length in bytes

	free        int // Sum of the byte lengths of all free chunks
	initialized bool

	stats Stats
}

// Stats holds allocator counters for tests and instrumentation.
type Stats struct {
	AllocCalls     int   // Total Alloc() calls, including those from Calloc and Realloc
	AllocFailures  int   // Allocations that returned ErrOutOfMemory
	FastRejects    int   // Failures decided by the free counter alone
	FreeCalls      int   // Total Free() calls
	SplitCount     int   // Chunks split during allocation or shrink
	Merges         int   // Chunk pairs merged by coalescing passes
	ReallocInPlace int   // Resizes served without moving
	ReallocMoves   int   // Resizes that relocated the payload
	BytesAllocated int64 // Chunk bytes handed out, headers included
	BytesFreed     int64 // Chunk bytes released, headers included
}

// New creates an allocator over r and initializes the heap: the region is
// zeroed and laid out as one free chunk. dt may be nil. A nil cfg uses
// DefaultConfig.
func New(r *heap.Region, dt DirtyTracker, cfg *Config) (*FirstFit, error) {
	a, err := newFirstFit(r, dt, cfg)
	if err != nil {
		return nil, err
	}
	a.EnsureInitialized()
	return a, nil
}

// Attach creates an allocator over a region that already holds a chunk list,
// such as an image reopened from disk. The walk is validated and the free
// counter is recomputed from it.
func Attach(r *heap.Region, dt DirtyTracker, cfg *Config) (*FirstFit, error) {
	a, err := newFirstFit(r, dt, cfg)
	if err != nil {
		return nil, err
	}

	if w, _ := format.ReadHeader(a.heap, 0, a.ws); w == 0 {
		return nil, ErrNotInitialized
	}
	if err := verify.ChunkWalk(a.heap, a.ws); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptHeap, err)
	}

	free := 0
	_ = format.Walk(a.heap, a.ws, func(c format.Chunk) bool {
		if c.Free {
			free += c.Bytes(a.ws)
		}
		return true
	})
	a.free = free
	a.initialized = true

	logger.Debug("alloc: attached", "layout", r.Layout().String(), "free", free)
	return a, nil
}

func newFirstFit(r *heap.Region, dt DirtyTracker, cfg *Config) (*FirstFit, error) {
	if r == nil || r.Bytes() == nil {
		return nil, heap.ErrClosed
	}
	c := DefaultConfig
	if cfg != nil {
		c = *cfg
	}
	ws := r.WordSize()
	h := r.Heap()
	return &FirstFit{
		r:        r,
		dt:       dt,
		cfg:      c,
		heap:     h,
		ws:       ws,
		capacity: len(h),
	}, nil
}

// EnsureInitialized lays the heap out as one free chunk the first time it is
// called and does nothing afterwards.
func (a *FirstFit) EnsureInitialized() {
	if a.initialized {
		return
	}

	// Metadata lives in the heap bytes, so zeroing also means "no chunks".
	clear(a.heap)
	format.PutHeader(a.heap, 0, a.ws, a.capacity/a.ws, true)
	a.free = a.capacity
	a.initialized = true
	a.markDirty(0, a.capacity)

	logger.Debug("alloc: heap initialized",
		"start", a.r.Layout().Start,
		"bytes", a.capacity,
		"word_size", a.ws)
}

// Alloc returns the first free chunk, in address order, whose length covers
// size rounded up to a word plus one header word. The chunk is split when it
// is larger than that.
func (a *FirstFit) Alloc(size int) (Ptr, []byte, error) {
	a.EnsureInitialized()
	a.stats.AllocCalls++

	if size < 0 {
		return Null, nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	need, ok := a.chunkBytes(size)
	if !ok || a.free < need {
		a.stats.AllocFailures++
		a.stats.FastRejects++
		return Null, nil, fmt.Errorf("%w: request of %d bytes, %d free", ErrOutOfMemory, size, a.free)
	}

	var fit format.Chunk
	found := false
	err := format.Walk(a.heap, a.ws, func(c format.Chunk) bool {
		if c.Free && c.Bytes(a.ws) >= need {
			fit, found = c, true
			return false
		}
		return true
	})
	if err != nil {
		return Null, nil, fmt.Errorf("%w: %w", ErrCorruptHeap, err)
	}
	if !found {
		a.stats.AllocFailures++
		logger.Debug("alloc: no chunk fits", "need", need, "free", a.free)
		return Null, nil, fmt.Errorf("%w: no free chunk of %d bytes (%d free, fragmented)",
			ErrOutOfMemory, need, a.free)
	}

	needWords := need / a.ws
	if excess := fit.Words - needWords; excess > 0 {
		format.PutHeader(a.heap, fit.Off, a.ws, needWords, false)
		format.PutHeader(a.heap, fit.Off+need, a.ws, excess, true)
		a.markDirty(fit.Off+need, a.ws)
		a.stats.SplitCount++
	} else {
		format.SetFree(a.heap, fit.Off, a.ws, false)
	}
	a.markDirty(fit.Off, a.ws)

	a.free -= need
	a.stats.BytesAllocated += int64(need)

	return a.ptrAt(fit.Off), a.payload(fit.Off, need), nil
}

// Calloc allocates count*size bytes and zeroes them.
func (a *FirstFit) Calloc(count, size int) (Ptr, []byte, error) {
	n, ok := buf.MulOverflowSafe(count, size)
	if !ok {
		a.EnsureInitialized()
		if count < 0 || size < 0 {
			return Null, nil, fmt.Errorf("%w: %d x %d", ErrBadSize, count, size)
		}
		return Null, nil, fmt.Errorf("%w: %d x %d overflows", ErrOutOfMemory, count, size)
	}

	p, payload, err := a.Alloc(n)
	if err != nil {
		return Null, nil, err
	}
	clear(payload)
	a.markDirty(int(uint64(p)-a.r.Layout().Start), len(payload))
	return p, payload, nil
}

// Free marks the chunk at p free and runs a coalescing pass over the whole
// heap. Freeing Null or an already free chunk does nothing.
func (a *FirstFit) Free(p Ptr) error {
	if p == Null || !a.initialized {
		return nil
	}
	a.stats.FreeCalls++

	c, err := a.chunkOf(p)
	if err != nil {
		return err
	}
	if c.Free {
		return nil
	}

	format.SetFree(a.heap, c.Off, a.ws, true)
	a.markDirty(c.Off, a.ws)
	released := c.Bytes(a.ws)
	a.free += released
	a.stats.BytesFreed += int64(released)

	return a.coalesce()
}

// coalesce walks the heap and merges every free chunk with a free successor.
// After a merge the same position is examined again so a run of free chunks
// collapses into one.
func (a *FirstFit) coalesce() error {
	merges := 0
	for off := 0; off < a.capacity; {
		c, err := format.ChunkAt(a.heap, off, a.ws)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptHeap, err)
		}
		next := c.Next(a.ws)
		if c.Free && next < a.capacity {
			n, err := format.ChunkAt(a.heap, next, a.ws)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCorruptHeap, err)
			}
			if n.Free {
				format.PutHeader(a.heap, off, a.ws, c.Words+n.Words, true)
				format.PutWord(a.heap, next, a.ws, 0)
				a.markDirty(off, a.ws)
				a.markDirty(next, a.ws)
				merges++
				continue
			}
		}
		off = next
	}

	a.stats.Merges += merges
	if merges > 0 && logger.Enabled(slog.LevelDebug) {
		logger.Debug("alloc: coalesced", "merges", merges, "free", a.free)
	}
	return nil
}

// Realloc resizes the allocation at p. In order it tries: nothing to do,
// shrink in place, grow into a free successor, relocate. On failure p and its
// contents are untouched.
func (a *FirstFit) Realloc(p Ptr, size int) (Ptr, []byte, error) {
	a.EnsureInitialized()

	if p == Null {
		return Null, nil, fmt.Errorf("%w: resize of null pointer", ErrBadPointer)
	}
	c, err := a.chunkOf(p)
	if err != nil {
		return Null, nil, err
	}
	if c.Free {
		return Null, nil, fmt.Errorf("%w: 0x%x is not allocated", ErrBadPointer, uint64(p))
	}
	if size < 0 {
		return Null, nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	need, ok := a.chunkBytes(size)
	if !ok {
		a.stats.AllocFailures++
		return Null, nil, fmt.Errorf("%w: request of %d bytes", ErrOutOfMemory, size)
	}
	needWords := need / a.ws

	switch {
	case needWords == c.Words:
		a.stats.ReallocInPlace++
		return p, a.payload(c.Off, need), nil

	case needWords < c.Words:
		tailWords := c.Words - needWords
		format.PutHeader(a.heap, c.Off, a.ws, needWords, false)
		format.PutHeader(a.heap, c.Off+need, a.ws, tailWords, true)
		a.markDirty(c.Off, a.ws)
		a.markDirty(c.Off+need, a.ws)
		a.free += tailWords * a.ws
		a.stats.SplitCount++
		a.stats.ReallocInPlace++
		return p, a.payload(c.Off, need), nil
	}

	if next := c.Next(a.ws); next < a.capacity {
		n, err := format.ChunkAt(a.heap, next, a.ws)
		if err != nil {
			return Null, nil, fmt.Errorf("%w: %w", ErrCorruptHeap, err)
		}
		if n.Free && c.Words+n.Words >= needWords {
			// Chunk sizes partition the heap, so whatever the grown chunk does
			// not cover of the pair is the new free remainder.
			rem := c.Words + n.Words - needWords
			if rem > 0 {
				format.PutHeader(a.heap, c.Off, a.ws, needWords, false)
				format.PutHeader(a.heap, c.Off+need, a.ws, rem, true)
				a.markDirty(c.Off+need, a.ws)
			} else {
				format.PutHeader(a.heap, c.Off, a.ws, c.Words+n.Words, false)
			}
			a.markDirty(c.Off, a.ws)
			a.free -= (n.Words - rem) * a.ws
			a.stats.ReallocInPlace++
			return p, a.payload(c.Off, need), nil
		}
	}

	np, payload, err := a.Alloc(size)
	if err != nil {
		return Null, nil, err
	}
	n := copy(payload, a.heap[c.Off+a.ws:c.Next(a.ws)])
	a.markDirty(int(uint64(np)-a.r.Layout().Start), n)
	if err := a.Free(p); err != nil {
		return Null, nil, err
	}
	a.stats.ReallocMoves++
	logger.Debug("alloc: relocated", "from", uint64(p), "to", uint64(np), "size", size)
	return np, payload, nil
}

// FreeBytes returns the free-byte counter: the summed length of all free
// chunks, header words included.
func (a *FirstFit) FreeBytes() int {
	a.EnsureInitialized()
	return a.free
}

// Capacity returns the heap length in bytes.
func (a *FirstFit) Capacity() int { return a.capacity }

// Region returns the backing region.
func (a *FirstFit) Region() *heap.Region { return a.r }

// Payload returns the payload bytes of the live allocation at p.
func (a *FirstFit) Payload(p Ptr) ([]byte, error) {
	c, err := a.chunkOf(p)
	if err != nil {
		return nil, err
	}
	if c.Free {
		return nil, fmt.Errorf("%w: 0x%x is not allocated", ErrBadPointer, uint64(p))
	}
	return a.payload(c.Off, c.Bytes(a.ws)), nil
}

// Chunks returns the chunk list in address order.
func (a *FirstFit) Chunks() ([]heap.ChunkInfo, error) {
	a.EnsureInitialized()
	return a.r.Chunks()
}

// Dump writes the free-byte summary and the chunk table, capped at
// Config.MaxDumpRows rows.
func (a *FirstFit) Dump(w io.Writer) error {
	chunks, err := a.Chunks()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptHeap, err)
	}
	opts := printer.DefaultOptions()
	opts.MaxRows = a.cfg.MaxDumpRows
	return printer.New(w, opts).PrintChunks(printer.Snapshot{
		Layout:    a.r.Layout(),
		FreeBytes: a.free,
		Chunks:    chunks,
	})
}

// GetStats returns a copy of the allocator counters.
func (a *FirstFit) GetStats() Stats {
	return a.stats
}

// chunkBytes converts a request size into the whole chunk length: the size
// rounded up to a word plus one header word. ok is false when no heap of
// this capacity could hold it.
func (a *FirstFit) chunkBytes(size int) (int, bool) {
	if size > a.capacity {
		return 0, false
	}
	return format.AlignWord(size, a.ws) + format.HeaderWords*a.ws, true
}

// chunkOf decodes the chunk whose payload starts at p.
func (a *FirstFit) chunkOf(p Ptr) (format.Chunk, error) {
	start := a.r.Layout().Start
	addr := uint64(p)
	if addr < start+uint64(a.ws) {
		return format.Chunk{}, fmt.Errorf("%w: 0x%x below heap", ErrBadPointer, addr)
	}
	off, ok := a.r.Offset(addr - uint64(a.ws))
	if !ok {
		return format.Chunk{}, fmt.Errorf("%w: 0x%x outside heap", ErrBadPointer, addr)
	}
	if !format.IsWordAligned(off, a.ws) {
		return format.Chunk{}, fmt.Errorf("%w: 0x%x not word aligned", ErrBadPointer, addr)
	}
	c, err := format.ChunkAt(a.heap, off, a.ws)
	if err != nil {
		return format.Chunk{}, fmt.Errorf("%w: 0x%x: %w", ErrBadPointer, addr, err)
	}
	return c, nil
}

func (a *FirstFit) ptrAt(off int) Ptr {
	return Ptr(a.r.Addr(off + a.ws))
}

// payload returns the bytes after the header of the chunk at off, limited to
// the chunk so appends cannot spill into the next header.
func (a *FirstFit) payload(off, chunkBytes int) []byte {
	return a.heap[off+a.ws : off+chunkBytes : off+chunkBytes]
}

// markDirty reports a heap byte range to the tracker in image offsets.
func (a *FirstFit) markDirty(off, n int) {
	if a.dt != nil && n > 0 {
		a.dt.Add(format.HeaderSize+off, n)
	}
}
