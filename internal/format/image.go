package format

import (
	"bytes"
	"fmt"
)

// ImageHeader captures the fields of the header page of a persisted heap.
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------------------
//	 0x000   4    'h' 'e' 'p' 'i'
//	 0x004   2    Image version
//	 0x006   2    Word size in bytes (2, 4 or 8)
//	 0x008   4    Primary sequence number
//	 0x00C   4    Secondary sequence number
//	 0x010   8    Start address of the heap window
//	 0x018   8    Ceiling address (exclusive)
//	 0x020   8    Heap length in bytes (End-Start rounded down to a word)
//	 0x1FC   4    XOR checksum of the first 127 dwords
//
// The heap bytes follow at HeaderSize.
type ImageHeader struct {
	Version      uint16
	WordSize     uint16
	PrimarySeq   uint32
	SecondarySeq uint32
	Start        uint64
	End          uint64
	HeapLen      uint64
}

// ParseImageHeader validates and extracts the header page of a heap image.
func ParseImageHeader(b []byte) (ImageHeader, error) {
	if len(b) < HeaderSize {
		return ImageHeader{}, fmt.Errorf("image header: %w", ErrTruncated)
	}
	if !bytes.Equal(b[:ImageSignatureSize], ImageSignature) {
		return ImageHeader{}, fmt.Errorf("image header: %w", ErrSignatureMismatch)
	}
	h := ImageHeader{
		Version:      ReadU16(b, ImageVersionOffset),
		WordSize:     ReadU16(b, ImageWordSizeOffset),
		PrimarySeq:   ReadU32(b, ImagePrimarySeqOffset),
		SecondarySeq: ReadU32(b, ImageSecondarySeqOffset),
		Start:        ReadU64(b, ImageStartOffset),
		End:          ReadU64(b, ImageEndOffset),
		HeapLen:      ReadU64(b, ImageHeapLenOffset),
	}
	if h.Version != ImageVersion {
		return ImageHeader{}, fmt.Errorf("image header: version %d: %w", h.Version, ErrUnsupported)
	}
	if !ValidWordSize(int(h.WordSize)) {
		return ImageHeader{}, fmt.Errorf("image header: word size %d: %w", h.WordSize, ErrWordSize)
	}
	return h, nil
}

// PutImageHeader writes h into the header page and refreshes the checksum.
func PutImageHeader(b []byte, h ImageHeader) {
	copy(b[ImageSignatureOffset:], ImageSignature)
	PutU16(b, ImageVersionOffset, h.Version)
	PutU16(b, ImageWordSizeOffset, h.WordSize)
	PutU32(b, ImagePrimarySeqOffset, h.PrimarySeq)
	PutU32(b, ImageSecondarySeqOffset, h.SecondarySeq)
	PutU64(b, ImageStartOffset, h.Start)
	PutU64(b, ImageEndOffset, h.End)
	PutU64(b, ImageHeapLenOffset, h.HeapLen)
	UpdateChecksum(b)
}

// Checksum is the XOR of the dwords preceding ImageCheckSumOffset.
func Checksum(b []byte) uint32 {
	var sum uint32
	for i := 0; i < ImageCheckSumOffset; i += 4 {
		sum ^= ReadU32(b, i)
	}
	return sum
}

// UpdateChecksum recomputes and stores the header checksum.
func UpdateChecksum(b []byte) {
	PutU32(b, ImageCheckSumOffset, Checksum(b))
}

// ChecksumOK reports whether the stored checksum matches the header bytes.
func ChecksumOK(b []byte) bool {
	return ReadU32(b, ImageCheckSumOffset) == Checksum(b)
}
