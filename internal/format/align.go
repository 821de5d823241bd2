package format

// Alignment utilities for word-granular heaps. Word sizes are powers of two,
// so rounding is done with masks.

// AlignWord returns n rounded up to the next multiple of ws.
//
// Example (ws = 2):
//
//	AlignWord(0, 2) = 0
//	AlignWord(1, 2) = 2
//	AlignWord(2, 2) = 2
//	AlignWord(3, 2) = 4
func AlignWord(n, ws int) int {
	return (n + ws - 1) &^ (ws - 1)
}

// TruncWord returns n rounded down to a multiple of ws.
func TruncWord(n, ws int) int {
	return n &^ (ws - 1)
}

// IsWordAligned reports whether n is a multiple of ws.
func IsWordAligned(n, ws int) bool {
	return n&(ws-1) == 0
}

// ValidWordSize reports whether ws is one of the supported header widths.
func ValidWordSize(ws int) bool {
	return ws == 2 || ws == 4 || ws == 8
}
