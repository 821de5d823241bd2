package dirty

import (
	"context"
	"sort"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

const (
	// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
	defaultRangeCapacity = 64
)

// FlushMode controls durability guarantees for commits.
type FlushMode int

const (
	// FlushAuto flushes dirty pages and syncs the file after the header write.
	FlushAuto FlushMode = iota

	// FlushDataOnly only flushes dirty pages; the caller syncs later. Use it
	// when batching several transactions.
	FlushDataOnly

	// FlushFull flushes and requests the strongest sync the platform offers
	// (F_FULLFSYNC on macOS).
	FlushFull
)

func (m FlushMode) String() string {
	switch m {
	case FlushAuto:
		return "auto"
	case FlushDataOnly:
		return "data-only"
	case FlushFull:
		return "full"
	default:
		return "unknown"
	}
}

// Range is a dirty byte range (image offsets).
type Range struct {
	Off int64
	Len int64
}

// Tracker accumulates dirty ranges and flushes them through a region.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	r        *heap.Region
	ranges   []Range // Raw ranges, coalesced at flush time
	pageSize int64
}

// NewTracker creates a dirty tracker for the given region.
func NewTracker(r *heap.Region) *Tracker {
	return &Tracker{
		r:        r,
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: format.PageSize,
	}
}

// Add records a dirty range. It only appends; alignment and merging happen
// at flush time.
func (t *Tracker) Add(off, length int) {
	if length <= 0 {
		return
	}
	t.ranges = append(t.ranges, Range{Off: int64(off), Len: int64(length)})
}

// FlushDataOnly flushes all dirty heap pages, skipping the header page, and
// clears the tracked ranges on success.
//
// The context is checked before each range. If it is cancelled part way,
// some ranges may be on disk and the remaining ones stay tracked.
func (t *Tracker) FlushDataOnly(ctx context.Context) error {
	if len(t.ranges) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	size := int64(len(t.r.Bytes()))
	for _, rg := range t.coalesce() {
		if rg.Off == 0 {
			// Header page is written by FlushHeaderAndMeta.
			continue
		}
		if rg.Off >= size {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		// The last page of an image is usually partial.
		n := min(rg.Len, size-rg.Off)
		if err := t.r.FlushRange(int(rg.Off), int(n)); err != nil {
			return err
		}
	}

	t.ranges = t.ranges[:0]
	return nil
}

// FlushHeaderAndMeta flushes the header page and then syncs the file:
//   - FlushAuto: sync
//   - FlushDataOnly: no sync
//   - FlushFull: strongest sync available
func (t *Tracker) FlushHeaderAndMeta(ctx context.Context, mode FlushMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	headerLen := min(int(t.pageSize), len(t.r.Bytes()))
	if err := t.r.FlushRange(0, headerLen); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if mode == FlushDataOnly {
		return nil
	}
	return t.r.Sync(mode == FlushFull)
}

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// Len returns the number of raw ranges recorded since the last flush.
func (t *Tracker) Len() int { return len(t.ranges) }

// DebugRanges returns a copy of the raw, uncoalesced ranges.
func (t *Tracker) DebugRanges() []Range {
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// DebugCoalescedRanges returns the page-aligned, merged ranges a flush
// would write.
func (t *Tracker) DebugCoalescedRanges() []Range {
	return t.coalesce()
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping or
// adjacent ones.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize
		end := r.Off + r.Len
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}
		aligned[i] = Range{Off: start, Len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.Off+current.Len {
			current.Len = max(current.Off+current.Len, next.Off+next.Len) - current.Off
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}
