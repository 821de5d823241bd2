package dirty

import "context"

// DirtyTracker is the minimal interface for recording modified image bytes.
// Allocators call Add for every header word, zero fill and copy they write;
// they never flush.
type DirtyTracker interface {
	// Add marks a byte range of the image as dirty.
	// off is the offset from the start of the image, length is the number of bytes.
	Add(off, length int)
}

// FlushableTracker extends DirtyTracker with methods for flushing dirty
// ranges to the image file. Transaction managers own flushing.
type FlushableTracker interface {
	DirtyTracker

	// FlushDataOnly flushes only the heap ranges (not the header page).
	FlushDataOnly(ctx context.Context) error

	// FlushHeaderAndMeta flushes the header page and syncs according to mode.
	FlushHeaderAndMeta(ctx context.Context, mode FlushMode) error
}
