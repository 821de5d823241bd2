package heap

import (
	"fmt"
	"math"

	"github.com/joshuapare/heapkit/internal/format"
)

// Layout is the memory layout contract handed over by platform startup: the
// first usable address, the hard ceiling, and the machine word size.
type Layout struct {
	Start    uint64 // First heap address (word aligned)
	End      uint64 // Ceiling address, exclusive
	WordSize int    // Bytes per word: 2, 4 or 8
}

// DefaultLayout is the heap window of the 16-bit target: from the end of
// static storage at 0xA000 up to the 0xFFFE ceiling.
var DefaultLayout = Layout{
	Start:    0xA000,
	End:      0xFFFE,
	WordSize: format.DefaultWordSize,
}

// HeapLen returns the usable heap length: End-Start rounded down to a word.
func (l Layout) HeapLen() int {
	if l.End <= l.Start || !format.ValidWordSize(l.WordSize) {
		return 0
	}
	n := l.End - l.Start
	if n > math.MaxInt {
		n = math.MaxInt
	}
	return format.TruncWord(int(n), l.WordSize)
}

// Words returns the heap length in words.
func (l Layout) Words() int {
	if l.WordSize == 0 {
		return 0
	}
	return l.HeapLen() / l.WordSize
}

// Validate checks that the window can hold at least one chunk header and that
// its size in words fits the header size field.
func (l Layout) Validate() error {
	if !format.ValidWordSize(l.WordSize) {
		return fmt.Errorf("%w: word size %d", ErrBadLayout, l.WordSize)
	}
	if l.End <= l.Start {
		return fmt.Errorf("%w: end 0x%x <= start 0x%x", ErrBadLayout, l.End, l.Start)
	}
	if l.Start%uint64(l.WordSize) != 0 {
		return fmt.Errorf("%w: start 0x%x not %d-byte aligned", ErrBadLayout, l.Start, l.WordSize)
	}
	if l.End-l.Start > math.MaxInt-format.HeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrHeapTooLarge, l.End-l.Start)
	}
	words := l.Words()
	if words < format.HeaderWords {
		return fmt.Errorf("%w: window smaller than one word", ErrBadLayout)
	}
	if uint64(words) > format.MaxChunkWords(l.WordSize) {
		return fmt.Errorf("%w: %d words > %d", ErrHeapTooLarge, words, format.MaxChunkWords(l.WordSize))
	}
	return nil
}

func (l Layout) String() string {
	return fmt.Sprintf("[0x%x, 0x%x) ws=%d", l.Start, l.End, l.WordSize)
}
