package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/heap/tx"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

// session is an open image with an attached allocator. Mutations run inside
// a transaction so an interrupted command leaves PrimarySeq != SecondarySeq.
type session struct {
	r  *heap.Region
	dt *dirty.Tracker
	tm *tx.Manager
	a  *alloc.FirstFit
}

func openSession(path string, cfg *alloc.Config) (*session, error) {
	printVerbose("Opening image: %s\n", path)

	r, err := heap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	dt := dirty.NewTracker(r)
	a, err := alloc.Attach(r, dt, cfg)
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to attach allocator: %w", err)
	}
	return &session{
		r:  r,
		dt: dt,
		tm: tx.NewManager(r, dt, dirty.FlushAuto),
		a:  a,
	}, nil
}

// mutate runs fn inside a transaction. Allocator requests that fail leave
// the heap untouched, so the transaction is still committed; only a corrupt
// heap leaves it open.
func (s *session) mutate(ctx context.Context, fn func(a *alloc.FirstFit) error) error {
	if err := s.tm.Begin(ctx); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(s.a); err != nil {
		if errors.Is(err, alloc.ErrCorruptHeap) {
			logger.Error("heapctl: heap corrupt, transaction left open",
				"image", s.r.Path(), "seq", s.tm.CurrentSequence(), "error", err)
			s.tm.Rollback()
			return err
		}
		logger.Warn("heapctl: request rejected", "image", s.r.Path(), "error", err)
		if cerr := s.tm.Commit(ctx); cerr != nil {
			return errors.Join(err, cerr)
		}
		return err
	}

	if err := s.tm.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	printVerbose("Committed sequence %d\n", s.tm.CurrentSequence())
	return nil
}

func (s *session) Close() error {
	return s.r.Close()
}

// payloadOffset converts a payload address into an image offset.
func (s *session) payloadOffset(p alloc.Ptr) int {
	off, _ := s.r.Offset(uint64(p))
	return format.HeaderSize + off
}

func parsePtr(s string) (alloc.Ptr, error) {
	v, err := parseUint(s, "pointer")
	if err != nil {
		return alloc.Null, err
	}
	return alloc.Ptr(v), nil
}

func formatPtr(p alloc.Ptr) string {
	return fmt.Sprintf("0x%04x", uint64(p))
}
