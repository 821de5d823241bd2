package printer

import (
	"encoding/json"
	"fmt"
)

// jsonHeap represents a heap snapshot in JSON format.
type jsonHeap struct {
	Start     uint64      `json:"start"`
	End       uint64      `json:"end"`
	WordSize  int         `json:"word_size"`
	FreeBytes int         `json:"free_bytes"`
	Chunks    []jsonChunk `json:"chunks"`
	Truncated bool        `json:"truncated,omitempty"`
}

// jsonChunk represents one chunk in JSON format.
type jsonChunk struct {
	Index int    `json:"index"`
	Addr  uint64 `json:"addr"`
	Size  int    `json:"size"`
	Free  bool   `json:"free"`
}

// printChunksJSON prints the snapshot as one JSON document.
func (p *Printer) printChunksJSON(s Snapshot) error {
	rows, truncated := p.rows(s.Chunks)

	out := jsonHeap{
		Start:     s.Layout.Start,
		End:       s.Layout.End,
		WordSize:  s.Layout.WordSize,
		FreeBytes: s.FreeBytes,
		Chunks:    make([]jsonChunk, 0, len(rows)),
		Truncated: truncated,
	}
	for _, c := range rows {
		out.Chunks = append(out.Chunks, jsonChunk{Index: c.Index, Addr: c.Addr, Size: c.Size, Free: c.Free})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.writer, "%s\n", data)
	return err
}
