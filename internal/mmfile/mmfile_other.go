//go:build !unix

// Package mmfile maps heap image files read-only for inspection.
package mmfile

import "os"

// Mapping holds the file contents on platforms without mmap.
type Mapping struct {
	Data []byte
}

// Map reads the entire file when mmap is not available.
func Map(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Mapping{Data: data}, nil
}

// Close drops the contents.
func (m *Mapping) Close() error {
	m.Data = nil
	return nil
}
