package main

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/format"
)

func runOK(t *testing.T, fn func() error) string {
	t.Helper()
	output, err := captureOutput(t, fn)
	require.NoError(t, err, output)
	return output
}

func TestAllocFreeCommands(t *testing.T) {
	ctx := context.Background()
	path := newTestImage(t)

	out := runOK(t, func() error { return runAlloc(ctx, []string{path, "10"}) })
	assert.Equal(t, "0xa002\n", out)

	out = runOK(t, func() error { return runAlloc(ctx, []string{path, "0x20"}) })
	assert.Equal(t, "0xa00e\n", out)

	jsonOut = true
	out = runOK(t, func() error { return runInfo([]string{path}) })
	info := assertJSON(t, out)
	assert.EqualValues(t, 24574-12-34, info["free_bytes"])
	assert.EqualValues(t, 3, info["chunks"])
	assert.Equal(t, true, info["clean"])
	jsonOut = false

	out = runOK(t, func() error { return runFree(ctx, []string{path, "0xa002"}) })
	assert.Equal(t, "Freed 0xa002, 24540 bytes free\n", out)

	out = runOK(t, func() error { return runFree(ctx, []string{path, "0xa00e"}) })
	assert.Equal(t, "Freed 0xa00e, 24574 bytes free\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, verify.AllInvariants(data))
	require.NoError(t, verify.SequenceNumbers(data))
	w, free := format.ReadHeader(data[format.HeaderSize:], 0, 2)
	assert.Equal(t, 24574/2, w)
	assert.True(t, free)
}

func TestAllocCommand_Fill(t *testing.T) {
	path := newTestImage(t)
	allocFill = 0xAB

	runOK(t, func() error { return runAlloc(context.Background(), []string{path, "6"}) })

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	payload := data[format.HeaderSize+2 : format.HeaderSize+8]
	assert.Equal(t, []byte{0xAB, 0xAB, 0xAB, 0xAB, 0xAB, 0xAB}, payload)
}

func TestCallocCommand(t *testing.T) {
	path := newTestImage(t)
	jsonOut = true

	out := runOK(t, func() error { return runCalloc(context.Background(), []string{path, "100", "2"}) })
	res := assertJSON(t, out)
	assert.Equal(t, "0xa002", res["ptr"])
	assert.EqualValues(t, 200, res["payload"])
	assert.EqualValues(t, 24574-202, res["free_bytes"])
}

func TestReallocCommand(t *testing.T) {
	ctx := context.Background()
	path := newTestImage(t)

	runOK(t, func() error { return runAlloc(ctx, []string{path, "200"}) })
	runOK(t, func() error { return runAlloc(ctx, []string{path, "200"}) })
	runOK(t, func() error { return runAlloc(ctx, []string{path, "200"}) })

	// Second chunk: header at 0xa000+202, payload one word later.
	out := runOK(t, func() error { return runRealloc(ctx, []string{path, "0xa0cc", "100"}) })
	assert.Equal(t, "0xa0cc\n", out, "shrink stays in place")

	out = runOK(t, func() error { return runRealloc(ctx, []string{path, "0xa0cc", "150"}) })
	assert.Equal(t, "0xa0cc\n", out, "grow into the freed tail stays in place")

	out = runOK(t, func() error { return runRealloc(ctx, []string{path, "0xa0cc", "250"}) })
	assert.NotEqual(t, "0xa0cc\n", out, "grow past a busy neighbour moves")
	assert.True(t, strings.HasPrefix(out, "0x"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, verify.AllInvariants(data))
}

func TestMutatingCommands_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		run     func(path string) error
		wantErr error
	}{
		{
			name:    "alloc too large",
			run:     func(path string) error { return runAlloc(ctx, []string{path, "100000"}) },
			wantErr: alloc.ErrOutOfMemory,
		},
		{
			name:    "free misaligned pointer",
			run:     func(path string) error { return runFree(ctx, []string{path, "0xa003"}) },
			wantErr: alloc.ErrBadPointer,
		},
		{
			name:    "free outside heap",
			run:     func(path string) error { return runFree(ctx, []string{path, "0x10"}) },
			wantErr: alloc.ErrBadPointer,
		},
		{
			name:    "realloc free chunk",
			run:     func(path string) error { return runRealloc(ctx, []string{path, "0xa002", "8"}) },
			wantErr: alloc.ErrBadPointer,
		},
		{
			name:    "calloc overflow",
			run:     func(path string) error { return runCalloc(ctx, []string{path, "0x7fffffffffffffff", "4"}) },
			wantErr: alloc.ErrOutOfMemory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := newTestImage(t)

			_, err := captureOutput(t, func() error { return tt.run(path) })
			require.ErrorIs(t, err, tt.wantErr)

			// A rejected request still closes its transaction.
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			require.NoError(t, verify.SequenceNumbers(data))
			require.NoError(t, verify.AllInvariants(data))
		})
	}
}

func TestMutatingCommands_BadArguments(t *testing.T) {
	ctx := context.Background()
	path := newTestImage(t)

	_, err := captureOutput(t, func() error { return runAlloc(ctx, []string{path, "-1"}) })
	require.Error(t, err)

	_, err = captureOutput(t, func() error { return runFree(ctx, []string{path, "nope"}) })
	require.Error(t, err)

	_, err = captureOutput(t, func() error { return runAlloc(ctx, []string{path + ".missing", "8"}) })
	require.ErrorIs(t, err, os.ErrNotExist)
}
