package format

import "encoding/binary"

// Binary encoding utilities for little-endian integers.
//
// Heap words and image header fields are little-endian. binary.LittleEndian
// is inlined well by the compiler, so there is no unsafe fast path here.

// PutU16 writes a uint16 value to the buffer at the specified offset in little-endian format.
func PutU16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:off+2], v)
}

// PutU32 writes a uint32 value to the buffer at the specified offset in little-endian format.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// PutU64 writes a uint64 value to the buffer at the specified offset in little-endian format.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU16 reads a uint16 value from the buffer at the specified offset in little-endian format.
func ReadU16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off : off+2])
}

// ReadU32 reads a uint32 value from the buffer at the specified offset in little-endian format.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// ReadU64 reads a uint64 value from the buffer at the specified offset in little-endian format.
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// PutWord writes v as a ws-byte word. Bits above the word width are dropped.
func PutWord(b []byte, off, ws int, v uint64) {
	switch ws {
	case 2:
		PutU16(b, off, uint16(v))
	case 4:
		PutU32(b, off, uint32(v))
	default:
		PutU64(b, off, v)
	}
}

// ReadWord reads a ws-byte word.
func ReadWord(b []byte, off, ws int) uint64 {
	switch ws {
	case 2:
		return uint64(ReadU16(b, off))
	case 4:
		return uint64(ReadU32(b, off))
	default:
		return ReadU64(b, off)
	}
}
