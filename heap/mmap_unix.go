//go:build unix

package heap

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// load maps the image RW so the allocator mutates the file in place.
func (r *Region) load(size int64) error {
	data, err := unix.Mmap(int(r.f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("heap: mmap failed: %w", err)
	}
	r.data = data
	r.mapped = true
	return nil
}

func (r *Region) unload() error {
	if !r.mapped {
		return nil
	}
	r.mapped = false
	if err := unix.Munmap(r.data); err != nil {
		return fmt.Errorf("heap: munmap failed: %w", err)
	}
	return nil
}

// pageAlign widens [off, off+n) to whole OS pages; msync rejects unaligned
// addresses.
func pageAlign(off, n, limit int) (int, int) {
	ps := unix.Getpagesize()
	start := off &^ (ps - 1)
	end := off + n
	if rem := end % ps; rem != 0 {
		end += ps - rem
	}
	if end > limit {
		end = limit
	}
	return start, end
}
