package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
)

func init() {
	rootCmd.AddCommand(newReallocCmd())
}

func newReallocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realloc <image> <ptr> <size>",
		Short: "Resize an allocation in a heap image",
		Long: `The realloc command resizes the allocation at ptr. It shrinks in place,
grows into a free successor when one is large enough, and otherwise moves the
payload to a new chunk. The resulting address is printed.

Example:
  heapctl realloc heap.img 0xa002 128`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRealloc(cmd.Context(), args)
		},
	}
	return cmd
}

func runRealloc(ctx context.Context, args []string) error {
	p, err := parsePtr(args[1])
	if err != nil {
		return err
	}
	size, err := parseSize(args[2], "size")
	if err != nil {
		return err
	}
	return allocate(ctx, args[0], size, func(a *alloc.FirstFit) (alloc.Ptr, []byte, error) {
		return a.Realloc(p, size)
	})
}
