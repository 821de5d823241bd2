package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
)

func init() {
	rootCmd.AddCommand(newFreeCmd())
}

func newFreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "free <image> <ptr>",
		Short: "Release an allocation in a heap image",
		Long: `The free command marks the chunk at ptr free and merges every run of
adjacent free chunks in the heap. Freeing 0 or an already free chunk does
nothing.

Example:
  heapctl free heap.img 0xa002`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFree(cmd.Context(), args)
		},
	}
	return cmd
}

func runFree(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := parsePtr(args[1])
	if err != nil {
		return err
	}

	s, err := openSession(args[0], nil)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.mutate(ctx, func(a *alloc.FirstFit) error {
		return a.Free(p)
	}); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"ptr":        formatPtr(p),
			"free_bytes": s.a.FreeBytes(),
		})
	}
	printInfo("Freed %s, %d bytes free\n", formatPtr(p), s.a.FreeBytes())
	return nil
}
