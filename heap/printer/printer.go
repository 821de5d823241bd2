// Package printer renders chunk tables for heap images in text or JSON.
package printer

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/heap"
)

const (
	DefaultMaxRows = 15
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs the human-readable chunk table.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// MaxRows limits how many chunks are printed (0 = unlimited). A heap
	// walk on a fragmented or corrupted heap can be very long.
	// Default: 15
	MaxRows int

	// Humanize groups digits in byte counts (text format only).
	// Default: true
	Humanize bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:   FormatText,
		MaxRows:  DefaultMaxRows,
		Humanize: true,
	}
}

// Snapshot is the state a Printer renders.
type Snapshot struct {
	Layout    heap.Layout
	FreeBytes int
	Chunks    []heap.ChunkInfo
}

// Printer handles formatted output of chunk tables.
type Printer struct {
	opts   Options
	writer io.Writer
	mp     *message.Printer // nil unless Humanize
}

// New creates a new Printer writing to w.
//
// Example:
//
//	p := printer.New(os.Stdout, printer.DefaultOptions())
//	p.PrintChunks(printer.Snapshot{Layout: r.Layout(), FreeBytes: a.FreeBytes(), Chunks: chunks})
func New(w io.Writer, opts Options) *Printer {
	p := &Printer{opts: opts, writer: w}
	if opts.Humanize {
		p.mp = message.NewPrinter(language.English)
	}
	return p
}

// PrintChunks prints the heap summary line and the chunk table.
func (p *Printer) PrintChunks(s Snapshot) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printChunksJSON(s)
	case FormatText:
		return p.printChunksText(s)
	default:
		return p.printChunksText(s)
	}
}

// rows returns the chunks to print and whether some were cut.
func (p *Printer) rows(chunks []heap.ChunkInfo) ([]heap.ChunkInfo, bool) {
	if p.opts.MaxRows > 0 && len(chunks) > p.opts.MaxRows {
		return chunks[:p.opts.MaxRows], true
	}
	return chunks, false
}
