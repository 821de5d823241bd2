//go:build !unix

package heap

import (
	"fmt"
	"io"
)

// load reads the image into memory on platforms without mmap support.
// Changes reach the file through flushRange.
func (r *Region) load(size int64) error {
	data := make([]byte, size)
	if _, err := r.f.ReadAt(data, 0); err != nil && err != io.EOF {
		return fmt.Errorf("heap: read image: %w", err)
	}
	r.data = data
	return nil
}

// unload writes the whole image back before the file is closed.
func (r *Region) unload() error {
	_, err := r.f.WriteAt(r.data, 0)
	return err
}

func (r *Region) flushRange(off, n int) error {
	_, err := r.f.WriteAt(r.data[off:off+n], int64(off))
	return err
}

func (r *Region) syncFile(bool) error {
	return r.f.Sync()
}
