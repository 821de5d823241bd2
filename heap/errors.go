package heap

import "errors"

var (
	// ErrBadLayout indicates a heap window that is empty, inverted or misaligned.
	ErrBadLayout = errors.New("heap: invalid layout")

	// ErrHeapTooLarge indicates a heap that a single header size field cannot describe.
	ErrHeapTooLarge = errors.New("heap: heap exceeds chunk size field")

	// ErrImageSize indicates an image file whose length disagrees with its header.
	ErrImageSize = errors.New("heap: image size mismatch")

	// ErrBadChecksum indicates a header page whose checksum does not match.
	ErrBadChecksum = errors.New("heap: header checksum mismatch")

	// ErrClosed indicates use of a region after Close.
	ErrClosed = errors.New("heap: region closed")
)
