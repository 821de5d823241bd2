package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/printer"
)

var (
	dumpRows     int
	dumpNoGroups bool
)

func init() {
	rootCmd.AddCommand(newDumpCmd())
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <image>",
		Short: "Print the chunk table",
		Long: `The dump command prints the free byte count and the chunk table of a heap
image: index, start address, size and free flag of each chunk in address order.

Example:
  heapctl dump heap.img
  heapctl dump heap.img --rows 0
  heapctl dump heap.img --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}

	cmd.Flags().IntVar(&dumpRows, "rows", alloc.DefaultConfig.MaxDumpRows, "Maximum chunks to print (0 = all)")
	cmd.Flags().BoolVar(&dumpNoGroups, "no-grouping", false, "Do not group digits in byte counts")

	return cmd
}

func runDump(args []string) error {
	s, err := openSession(args[0], &alloc.Config{MaxDumpRows: dumpRows})
	if err != nil {
		return err
	}
	defer s.Close()

	if !jsonOut && !dumpNoGroups {
		if quiet {
			return nil
		}
		return s.a.Dump(os.Stdout)
	}

	chunks, err := s.a.Chunks()
	if err != nil {
		return fmt.Errorf("failed to walk heap: %w", err)
	}
	opts := printer.DefaultOptions()
	opts.MaxRows = dumpRows
	opts.Humanize = !dumpNoGroups
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	return printer.New(os.Stdout, opts).PrintChunks(printer.Snapshot{
		Layout:    s.r.Layout(),
		FreeBytes: s.a.FreeBytes(),
		Chunks:    chunks,
	})
}
