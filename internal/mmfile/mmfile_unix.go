//go:build unix

// Package mmfile maps heap image files read-only for inspection.
package mmfile

import (
	"fmt"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

// Mapping is a read-only view of a file. Writes through Data fault.
type Mapping struct {
	Data   []byte
	mapped bool
}

// Map maps the file at path read-only. Empty files yield an empty mapping.
func Map(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	switch size := st.Size(); {
	case size == 0:
		return &Mapping{Data: []byte{}}, nil
	case size > math.MaxInt:
		return nil, fmt.Errorf("mmfile: %s too large to map (%d bytes)", path, size)
	default:
		data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
		if err != nil {
			return nil, fmt.Errorf("mmfile: map %s: %w", path, err)
		}
		return &Mapping{Data: data, mapped: true}, nil
	}
}

// Close unmaps the file. Closing twice is a no-op.
func (m *Mapping) Close() error {
	if !m.mapped {
		m.Data = nil
		return nil
	}
	err := unix.Munmap(m.Data)
	m.Data, m.mapped = nil, false
	return err
}
