package format

// Chunk header layout (one word, little-endian):
//
//	Bit      Description
//	0        Free flag. 1 => free, 0 => busy.
//	1..N-1   Chunk size in words, including the header word itself.
//
// N is the word width in bits, so a 2-byte word carries a 15-bit size field
// and bounds a single chunk (and therefore the heap) at 32767 words.

// EncodeHeader packs a size (in words) and a free flag into one header word.
func EncodeHeader(sizeWords uint64, free bool) uint64 {
	w := sizeWords << SizeShift
	if free {
		w |= FreeFlag
	}
	return w
}

// DecodeHeader unpacks a header word.
func DecodeHeader(w uint64) (sizeWords uint64, free bool) {
	return w >> SizeShift, w&FreeFlag != 0
}

// MaxChunkWords returns the largest size field a ws-byte header can hold.
func MaxChunkWords(ws int) uint64 {
	return (uint64(1) << (uint(ws)*8 - SizeShift)) - 1
}

// ReadHeader decodes the header at byte offset off of heap.
func ReadHeader(heap []byte, off, ws int) (sizeWords int, free bool) {
	s, f := DecodeHeader(ReadWord(heap, off, ws))
	return int(s), f
}

// PutHeader encodes and stores a header at byte offset off of heap.
func PutHeader(heap []byte, off, ws, sizeWords int, free bool) {
	PutWord(heap, off, ws, EncodeHeader(uint64(sizeWords), free))
}

// SetFree flips only the free flag of the header at off.
func SetFree(heap []byte, off, ws int, free bool) {
	w := ReadWord(heap, off, ws)
	if free {
		w |= FreeFlag
	} else {
		w &^= FreeFlag
	}
	PutWord(heap, off, ws, w)
}
