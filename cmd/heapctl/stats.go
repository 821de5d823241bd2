package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/stats"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <image>",
		Short: "Report chunk counts and fragmentation",
		Long: `The stats command walks the heap and reports chunk counts, busy and free
bytes, the largest free chunk, the free chunk size distribution and the
fragmentation ratio.

Example:
  heapctl stats heap.img
  heapctl stats heap.img --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
	return cmd
}

func runStats(args []string) error {
	s, err := openSession(args[0], nil)
	if err != nil {
		return err
	}
	defer s.Close()

	chunks, err := s.a.Chunks()
	if err != nil {
		return fmt.Errorf("failed to walk heap: %w", err)
	}
	report := stats.Collect(chunks)

	if jsonOut {
		return printJSON(report)
	}
	if quiet {
		return nil
	}
	return report.Write(os.Stdout)
}
