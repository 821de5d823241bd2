package heap

import (
	"errors"
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Region is a heap image, backed by a mapped file or by a byte slice.
type Region struct {
	f      *os.File
	path   string
	data   []byte // header page + heap bytes
	layout Layout
	mapped bool // data is an mmap of f
}

// New creates an in-memory image for layout. Its heap bytes are zero.
func New(layout Layout) (*Region, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	data := make([]byte, format.HeaderSize+layout.HeapLen())
	format.PutImageHeader(data, headerFor(layout))
	return &Region{data: data, layout: layout}, nil
}

// Create writes a new image file for layout at path and opens it read-write.
// It refuses to overwrite an existing file.
func Create(path string, layout Layout) (*Region, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, err
	}

	size := int64(format.HeaderSize + layout.HeapLen())
	if err := f.Truncate(size); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("heap: size image: %w", err)
	}
	page := make([]byte, format.HeaderSize)
	format.PutImageHeader(page, headerFor(layout))
	if _, err := f.WriteAt(page, 0); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("heap: write header: %w", err)
	}

	r := &Region{f: f, path: path, layout: layout}
	if err := r.load(size); err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

// Open opens an existing image file read-write and validates its header page.
func Open(path string) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.Size() < format.HeaderSize {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrImageSize, path, st.Size())
	}

	r := &Region{f: f, path: path}
	if err := r.load(st.Size()); err != nil {
		_ = f.Close()
		return nil, err
	}

	layout, err := parseLayout(r.data)
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	r.layout = layout
	return r, nil
}

// FromBytes wraps an image already held in memory (for example a dump read
// from elsewhere). The slice is used in place.
func FromBytes(data []byte) (*Region, error) {
	layout, err := parseLayout(data)
	if err != nil {
		return nil, err
	}
	return &Region{data: data, layout: layout}, nil
}

func parseLayout(data []byte) (Layout, error) {
	h, err := format.ParseImageHeader(data)
	if err != nil {
		return Layout{}, err
	}
	if !format.ChecksumOK(data) {
		return Layout{}, ErrBadChecksum
	}
	layout := Layout{Start: h.Start, End: h.End, WordSize: int(h.WordSize)}
	if err := layout.Validate(); err != nil {
		return Layout{}, err
	}
	if uint64(layout.HeapLen()) != h.HeapLen || len(data) != format.HeaderSize+layout.HeapLen() {
		return Layout{}, fmt.Errorf("%w: header says %d heap bytes, image holds %d",
			ErrImageSize, h.HeapLen, len(data)-format.HeaderSize)
	}
	return layout, nil
}

func headerFor(layout Layout) format.ImageHeader {
	return format.ImageHeader{
		Version:      format.ImageVersion,
		WordSize:     uint16(layout.WordSize),
		PrimarySeq:   1,
		SecondarySeq: 1,
		Start:        layout.Start,
		End:          layout.End,
		HeapLen:      uint64(layout.HeapLen()),
	}
}

// Bytes returns the whole image: header page followed by the heap.
func (r *Region) Bytes() []byte { return r.data }

// Heap returns the heap bytes. Index 0 is address Layout().Start.
func (r *Region) Heap() []byte {
	if len(r.data) < format.HeaderSize {
		return nil
	}
	return r.data[format.HeaderSize:]
}

// Layout returns the heap window.
func (r *Region) Layout() Layout { return r.layout }

// WordSize returns the bytes per heap word.
func (r *Region) WordSize() int { return r.layout.WordSize }

// Header decodes the current header page.
func (r *Region) Header() (format.ImageHeader, error) {
	if r.data == nil {
		return format.ImageHeader{}, ErrClosed
	}
	return format.ParseImageHeader(r.data)
}

// Addr converts a heap byte offset to an address.
func (r *Region) Addr(off int) uint64 { return r.layout.Start + uint64(off) }

// Offset converts an address inside the window to a heap byte offset.
func (r *Region) Offset(addr uint64) (int, bool) {
	if addr < r.layout.Start || addr >= r.layout.Start+uint64(r.layout.HeapLen()) {
		return 0, false
	}
	return int(addr - r.layout.Start), true
}

// Path returns the backing file path, or "" for in-memory regions.
func (r *Region) Path() string { return r.path }

// FD returns the backing file descriptor, or -1.
func (r *Region) FD() int {
	if r == nil || r.f == nil {
		return -1
	}
	return int(r.f.Fd())
}

// FlushRange writes image bytes [off, off+n) back to the file. In-memory
// regions have nothing to flush.
func (r *Region) FlushRange(off, n int) error {
	if r.data == nil {
		return ErrClosed
	}
	if r.f == nil || n <= 0 {
		return nil
	}
	if _, err := buf.CheckRange(len(r.data), off, n); err != nil {
		return fmt.Errorf("heap: flush range: %w", err)
	}
	return r.flushRange(off, n)
}

// Sync forces flushed data to stable storage. full requests the strongest
// barrier the platform offers.
func (r *Region) Sync(full bool) error {
	if r.data == nil {
		return ErrClosed
	}
	if r.f == nil {
		return nil
	}
	return r.syncFile(full)
}

// Close releases the mapping and the file. In-memory regions just drop
// their bytes.
func (r *Region) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.data != nil && r.f != nil {
		errs = append(errs, r.unload())
	}
	r.data = nil
	if r.f != nil {
		errs = append(errs, r.f.Close())
		r.f = nil
	}
	return errors.Join(errs...)
}
