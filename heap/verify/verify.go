package verify

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// ValidationError describes the first invariant a check found broken.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates an image: header page, checksum and chunk walk.
// Sequence numbers are left to SequenceNumbers since a mismatch there means
// an interrupted transaction, not a broken image.
func AllInvariants(data []byte) error {
	if err := ImageHeader(data); err != nil {
		return err
	}
	if err := Checksum(data); err != nil {
		return err
	}
	ws := int(format.ReadU16(data, format.ImageWordSizeOffset))
	return ChunkWalk(data[format.HeaderSize:], ws)
}

// ImageHeader validates the header page and the image length it declares.
func ImageHeader(data []byte) error {
	h, err := format.ParseImageHeader(data)
	if err != nil {
		off := -1
		if errors.Is(err, format.ErrSignatureMismatch) {
			off = format.ImageSignatureOffset
		}
		return &ValidationError{Type: "ImageHeader", Message: err.Error(), Offset: off}
	}

	if h.End <= h.Start {
		return &ValidationError{
			Type:    "ImageHeader",
			Message: fmt.Sprintf("empty window: start=0x%X end=0x%X", h.Start, h.End),
			Offset:  format.ImageStartOffset,
		}
	}
	if !format.IsWordAligned(int(h.HeapLen), int(h.WordSize)) {
		return &ValidationError{
			Type:    "ImageHeader",
			Message: fmt.Sprintf("heap length %d not a multiple of word size %d", h.HeapLen, h.WordSize),
			Offset:  format.ImageHeapLenOffset,
		}
	}
	if want := uint64(format.HeaderSize) + h.HeapLen; uint64(len(data)) != want {
		return &ValidationError{
			Type:    "ImageHeader",
			Message: fmt.Sprintf("image is %d bytes, header declares %d", len(data), want),
			Offset:  -1,
			Details: map[string]any{
				"actual":   len(data),
				"expected": want,
			},
		}
	}
	return nil
}

// Checksum validates the XOR checksum of the header page.
func Checksum(data []byte) error {
	if len(data) < format.HeaderSize {
		return &ValidationError{
			Type:    "Checksum",
			Message: "file too small for header",
			Offset:  -1,
		}
	}

	calculated := format.Checksum(data)
	stored := format.ReadU32(data, format.ImageCheckSumOffset)
	if calculated != stored {
		return &ValidationError{
			Type:    "Checksum",
			Message: fmt.Sprintf("checksum mismatch: calculated=0x%08X, stored=0x%08X", calculated, stored),
			Offset:  format.ImageCheckSumOffset,
			Details: map[string]any{
				"calculated": calculated,
				"stored":     stored,
			},
		}
	}
	return nil
}

// SequenceNumbers reports an interrupted transaction.
func SequenceNumbers(data []byte) error {
	if len(data) < format.HeaderSize || !bytes.Equal(data[:format.ImageSignatureSize], format.ImageSignature) {
		return &ValidationError{
			Type:    "SequenceNumbers",
			Message: "missing image header",
			Offset:  -1,
		}
	}

	seq1 := format.ReadU32(data, format.ImagePrimarySeqOffset)
	seq2 := format.ReadU32(data, format.ImageSecondarySeqOffset)
	if seq1 != seq2 {
		return &ValidationError{
			Type:    "SequenceNumbers",
			Message: fmt.Sprintf("sequences mismatch (dirty image): Seq1=0x%X, Seq2=0x%X", seq1, seq2),
			Offset:  format.ImagePrimarySeqOffset,
			Details: map[string]any{
				"primary":   seq1,
				"secondary": seq2,
			},
		}
	}
	return nil
}

// ChunkWalk walks the implicit list and checks that every size field is
// non-zero and that the walk lands exactly on the heap end.
func ChunkWalk(heap []byte, ws int) error {
	if !format.ValidWordSize(ws) {
		return &ValidationError{
			Type:    "ChunkWalk",
			Message: fmt.Sprintf("unsupported word size %d", ws),
			Offset:  -1,
		}
	}
	if !format.IsWordAligned(len(heap), ws) {
		return &ValidationError{
			Type:    "ChunkWalk",
			Message: fmt.Sprintf("heap length %d not a multiple of word size %d", len(heap), ws),
			Offset:  -1,
		}
	}

	for off := 0; off < len(heap); {
		words, _ := format.ReadHeader(heap, off, ws)
		if words == 0 {
			return &ValidationError{
				Type:    "ChunkWalk",
				Message: "zero-size chunk header",
				Offset:  off,
			}
		}
		next := off + words*ws
		if next > len(heap) {
			return &ValidationError{
				Type:    "ChunkWalk",
				Message: fmt.Sprintf("chunk of %d words runs 0x%X bytes past heap end", words, next-len(heap)),
				Offset:  off,
				Details: map[string]any{
					"words":   words,
					"heapLen": len(heap),
				},
			}
		}
		off = next
	}
	return nil
}

// FreeCounter checks that counter equals the summed byte length of all free
// chunks, headers included.
func FreeCounter(heap []byte, ws, counter int) error {
	actual := 0
	err := format.Walk(heap, ws, func(c format.Chunk) bool {
		if c.Free {
			actual += c.Bytes(ws)
		}
		return true
	})
	if err != nil {
		return &ValidationError{Type: "FreeCounter", Message: err.Error(), Offset: -1}
	}
	if actual != counter {
		return &ValidationError{
			Type:    "FreeCounter",
			Message: fmt.Sprintf("counter says %d free bytes, chunks hold %d", counter, actual),
			Offset:  -1,
			Details: map[string]any{
				"counter": counter,
				"actual":  actual,
			},
		}
	}
	return nil
}

// Coalesced checks that no free chunk is directly followed by another free
// chunk. This holds right after a release; shrinks and splits may leave
// free neighbours until the next one.
func Coalesced(heap []byte, ws int) error {
	prevFree := false
	prevOff := -1
	var verr *ValidationError
	err := format.Walk(heap, ws, func(c format.Chunk) bool {
		if c.Free && prevFree {
			verr = &ValidationError{
				Type:    "Coalesced",
				Message: fmt.Sprintf("free chunk at 0x%X follows free chunk at 0x%X", c.Off, prevOff),
				Offset:  c.Off,
			}
			return false
		}
		prevFree, prevOff = c.Free, c.Off
		return true
	})
	if err != nil {
		return &ValidationError{Type: "Coalesced", Message: err.Error(), Offset: -1}
	}
	if verr != nil {
		return verr
	}
	return nil
}
