// Package format houses the low-level encoders and decoders for the heap
// image: the packed chunk header word, word-sized integer access and the
// image header page that precedes the heap bytes in a persisted image. It is
// kept independent from the allocator so verification, printing and the CLI
// can read a heap without constructing one.
package format

var (
	// ImageSignature is the four-byte signature at the start of every heap image.
	// Layout:
	//   0x00  'h' 'e' 'p' 'i'
	ImageSignature = []byte{'h', 'e', 'p', 'i'}
)

const (
	// HeaderSize is the size of the image header page in bytes. The heap bytes
	// start right after it so that header and heap never share a page.
	HeaderSize = 4096

	// ImageVersion is the only image layout version this package writes.
	ImageVersion = 1

	// Image header field offsets (little-endian).
	ImageSignatureOffset    = 0x00 // 4 bytes
	ImageSignatureSize      = 4
	ImageVersionOffset      = 0x04 // uint16
	ImageWordSizeOffset     = 0x06 // uint16
	ImagePrimarySeqOffset   = 0x08 // uint32
	ImageSecondarySeqOffset = 0x0C // uint32
	ImageStartOffset        = 0x10 // uint64, first heap address
	ImageEndOffset          = 0x18 // uint64, ceiling address (exclusive)
	ImageHeapLenOffset      = 0x20 // uint64, heap byte length after rounding
	ImageCheckSumOffset     = 0x1FC

	// PageSize is the flush granularity for dirty tracking.
	PageSize = 4096
)

const (
	// FreeFlag is bit 0 of a chunk header word.
	FreeFlag = 1

	// SizeShift is where the chunk size (in words, header included) begins.
	SizeShift = 1

	// HeaderWords is the number of words taken by a chunk header.
	HeaderWords = 1

	// DefaultWordSize matches the 16-bit target the allocator was designed for.
	DefaultWordSize = 2
)
