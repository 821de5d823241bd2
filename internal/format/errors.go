package format

import "errors"

var (
	// ErrSignatureMismatch indicates an image had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrWordSize indicates a word size other than 2, 4 or 8 bytes.
	ErrWordSize = errors.New("format: unsupported word size")
	// ErrZeroChunk indicates a chunk header with a zero size field.
	ErrZeroChunk = errors.New("format: zero-size chunk")
	// ErrChunkOverrun indicates a chunk that extends past the heap end.
	ErrChunkOverrun = errors.New("format: chunk overruns heap end")
	// ErrUnsupported indicates an image version this package cannot read.
	ErrUnsupported = errors.New("format: unsupported image version")
)
