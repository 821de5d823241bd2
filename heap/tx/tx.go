// Package tx provides transaction management for heap image modifications.
//
// The transaction manager keeps a persisted image recoverable by managing the
// header sequence numbers and ordering the flushes of dirty data.
//
// Transaction Protocol:
//  1. Begin() - Increment PrimarySeq, mark transaction as started
//  2. [Allocator calls - writes tracked by the DirtyTracker]
//  3. Commit() - Flush data ranges, set SecondarySeq=PrimarySeq, flush header
//
// Crash Recovery:
// If a crash occurs between Begin() and Commit(), PrimarySeq != SecondarySeq,
// indicating an incomplete transaction. The chunk list should be verified
// before the image is attached again.
package tx

import (
	"context"
	"fmt"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/internal/format"
)

// Manager handles image sequence numbers and coordinates ordered flushes.
//
// The manager is NOT thread-safe. Only one goroutine should use it at a time.
type Manager struct {
	r    *heap.Region           // Image being modified
	dt   dirty.FlushableTracker // Dirty page tracker
	mode dirty.FlushMode        // Flush mode for commits
	seq  uint32                 // Current sequence number
	inTx bool                   // Whether a transaction is active
}

// NewManager creates a transaction manager for the given region.
func NewManager(r *heap.Region, dt dirty.FlushableTracker, mode dirty.FlushMode) *Manager {
	return &Manager{
		r:    r,
		dt:   dt,
		mode: mode,
	}
}

// Begin starts a new transaction: it bumps PrimarySeq, refreshes the header
// checksum and marks the header page dirty. Calling Begin inside a
// transaction is a no-op.
func (m *Manager) Begin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.inTx {
		return nil
	}

	data := m.r.Bytes()
	if len(data) < format.HeaderSize {
		return fmt.Errorf("image data too small: %d bytes", len(data))
	}

	m.seq = format.ReadU32(data, format.ImagePrimarySeqOffset) + 1
	format.PutU32(data, format.ImagePrimarySeqOffset, m.seq)
	// Keep the header openable if we crash before Commit.
	format.UpdateChecksum(data)
	m.dt.Add(0, format.HeaderSize)

	m.inTx = true
	return nil
}

// Commit finalizes the transaction using the ordered flush protocol:
//
//  1. Flush all dirty data pages
//  2. Set SecondarySeq = PrimarySeq and refresh the checksum
//  3. Flush the header page and sync according to the FlushMode
//
// If Commit is called without an active transaction, it's a no-op. A
// cancelled context may leave some data pages flushed; the header still
// shows the transaction as open in that case.
func (m *Manager) Commit(ctx context.Context) error {
	if !m.inTx {
		return nil
	}

	if err := m.dt.FlushDataOnly(ctx); err != nil {
		return fmt.Errorf("flush data pages: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := m.r.Bytes()
	format.PutU32(data, format.ImageSecondarySeqOffset, m.seq)
	format.UpdateChecksum(data)
	m.dt.Add(0, format.HeaderSize)

	if err := m.dt.FlushHeaderAndMeta(ctx, m.mode); err != nil {
		return fmt.Errorf("flush header: %w", err)
	}

	m.inTx = false
	return nil
}

// Rollback abandons the current transaction without restoring anything.
// The image keeps PrimarySeq != SecondarySeq until the next commit, so a
// reader can tell the last change did not complete.
func (m *Manager) Rollback() {
	m.inTx = false
}

// InTransaction returns whether a transaction is currently active.
func (m *Manager) InTransaction() bool {
	return m.inTx
}

// CurrentSequence returns the sequence number of the last Begin.
func (m *Manager) CurrentSequence() uint32 {
	return m.seq
}

// Clean reports whether the image header shows no open transaction.
func (m *Manager) Clean() bool {
	data := m.r.Bytes()
	if len(data) < format.HeaderSize {
		return false
	}
	return format.ReadU32(data, format.ImagePrimarySeqOffset) ==
		format.ReadU32(data, format.ImageSecondarySeqOffset)
}
