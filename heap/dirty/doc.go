// Package dirty tracks which byte ranges of a heap image have been modified
// so commits only write changed pages back to the image file.
//
// # Usage
//
//	tracker := dirty.NewTracker(region)
//	fa, err := alloc.New(region, tracker, nil)
//
//	ptr, _, err := fa.Alloc(50)   // header writes are recorded
//	err = tracker.FlushDataOnly(ctx)
//	err = tracker.FlushHeaderAndMeta(ctx, dirty.FlushAuto)
//
// # Page-Level Granularity
//
// Ranges are widened to 4 KiB pages and merged when flushed:
//
//	Dirty pages: [1, 2, 5] -> Ranges: [0x1000-0x3000, 0x5000-0x6000]
//
// The header page (offset 0) is never flushed by FlushDataOnly; it is written
// last by FlushHeaderAndMeta so a torn commit is detectable.
//
// # Thread Safety
//
// Trackers are not thread-safe. Callers must synchronize access externally.
package dirty
