package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/heap/tx"
	"github.com/joshuapare/heapkit/internal/logger"
)

var (
	createStart    string
	createEnd      string
	createWordSize int
)

func init() {
	rootCmd.AddCommand(newCreateCmd())
}

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <image>",
		Short: "Create a new heap image",
		Long: `The create command writes a new heap image file and lays its heap out
as one free chunk. It refuses to overwrite an existing file.

Example:
  heapctl create heap.img
  heapctl create heap.img --start 0x1000 --end 0x9000 --word-size 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd.Context(), args)
		},
	}

	cmd.Flags().StringVar(&createStart, "start", fmt.Sprintf("0x%x", heap.DefaultLayout.Start), "First heap address")
	cmd.Flags().StringVar(&createEnd, "end", fmt.Sprintf("0x%x", heap.DefaultLayout.End), "Heap ceiling address (exclusive)")
	cmd.Flags().IntVar(&createWordSize, "word-size", heap.DefaultLayout.WordSize, "Word size in bytes (2, 4 or 8)")

	return cmd
}

type createResult struct {
	Path      string `json:"path"`
	Start     uint64 `json:"start"`
	End       uint64 `json:"end"`
	WordSize  int    `json:"word_size"`
	Capacity  int    `json:"capacity"`
	FreeBytes int    `json:"free_bytes"`
}

func runCreate(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	path := args[0]

	start, err := parseUint(createStart, "start address")
	if err != nil {
		return err
	}
	end, err := parseUint(createEnd, "end address")
	if err != nil {
		return err
	}
	layout := heap.Layout{Start: start, End: end, WordSize: createWordSize}

	printVerbose("Creating image %s with layout %s\n", path, layout)

	r, err := heap.Create(path, layout)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	defer r.Close()

	dt := dirty.NewTracker(r)
	tm := tx.NewManager(r, dt, dirty.FlushAuto)
	if err := tm.Begin(ctx); err != nil {
		return err
	}
	a, err := alloc.New(r, dt, nil)
	if err != nil {
		return err
	}
	if err := tm.Commit(ctx); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}

	logger.Info("heapctl: image created", "path", path, "layout", layout.String(), "seq", tm.CurrentSequence())

	res := createResult{
		Path:      path,
		Start:     layout.Start,
		End:       layout.End,
		WordSize:  layout.WordSize,
		Capacity:  a.Capacity(),
		FreeBytes: a.FreeBytes(),
	}
	if jsonOut {
		return printJSON(res)
	}

	printInfo("Created heap image: %s\n", path)
	printInfo("  Layout: %s\n", layout)
	printInfo("  Capacity: %d bytes\n", res.Capacity)
	printInfo("  Free: %d bytes\n", res.FreeBytes)
	return nil
}
