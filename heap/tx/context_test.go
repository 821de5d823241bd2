package tx_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/heap/tx"
)

func setupRegion(t *testing.T) *heap.Region {
	t.Helper()
	r, err := heap.Create(filepath.Join(t.TempDir(), "ctx.heap"), heap.DefaultLayout)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestManager_Begin_PreCancelled(t *testing.T) {
	r := setupRegion(t)
	tm := tx.NewManager(r, dirty.NewTracker(r), dirty.FlushAuto)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, tm.Begin(ctx), context.Canceled)
	require.False(t, tm.InTransaction())
}

func TestManager_Commit_PreCancelled(t *testing.T) {
	r := setupRegion(t)
	dt := dirty.NewTracker(r)
	tm := tx.NewManager(r, dt, dirty.FlushAuto)

	require.NoError(t, tm.Begin(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tm.Commit(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, tm.InTransaction(), "transaction stays open")
	require.False(t, tm.Clean())

	require.NoError(t, tm.Commit(context.Background()))
	require.True(t, tm.Clean())
}
