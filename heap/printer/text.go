package printer

import (
	"fmt"
	"io"
	"strings"
)

// printChunksText prints the summary line and one row per chunk.
func (p *Printer) printChunksText(s Snapshot) error {
	var sb strings.Builder

	p.printf(&sb, "heap starts at 0x%x, %d bytes (%dkb) free\n",
		s.Layout.Start, s.FreeBytes, s.FreeBytes/1024)
	sb.WriteString("Chunk | Start Addr | Size       | Free\n")
	sb.WriteString("------+------------+------------+-----\n")

	rows, truncated := p.rows(s.Chunks)
	for _, c := range rows {
		free := "no"
		if c.Free {
			free = "yes"
		}
		p.printf(&sb, "%5d | 0x%-8x | %10d | %s\n", c.Index, c.Addr, c.Size, free)
	}
	if truncated {
		sb.WriteString("(more chunks remaining...)\n")
	}

	_, err := io.WriteString(p.writer, sb.String())
	return err
}

func (p *Printer) printf(sb *strings.Builder, format string, args ...any) {
	if p.mp != nil {
		p.mp.Fprintf(sb, format, args...)
		return
	}
	fmt.Fprintf(sb, format, args...)
}
