package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
)

var allocFill int

func init() {
	rootCmd.AddCommand(newAllocCmd())
	rootCmd.AddCommand(newCallocCmd())
}

func newAllocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alloc <image> <size>",
		Short: "Allocate bytes in a heap image",
		Long: `The alloc command takes the first free chunk that fits size bytes, splits
it when it is larger, and prints the address of the new payload.

Example:
  heapctl alloc heap.img 64
  heapctl alloc heap.img 0x100 --fill 0xAB`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlloc(cmd.Context(), args)
		},
	}

	cmd.Flags().IntVar(&allocFill, "fill", -1, "Fill the payload with this byte value")

	return cmd
}

func newCallocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calloc <image> <count> <size>",
		Short: "Allocate a zeroed array in a heap image",
		Long: `The calloc command allocates count*size bytes, zeroes them and prints the
address of the new payload.

Example:
  heapctl calloc heap.img 100 2`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalloc(cmd.Context(), args)
		},
	}
	return cmd
}

type allocResult struct {
	Ptr       string `json:"ptr"`
	Size      int    `json:"size"`
	Payload   int    `json:"payload"`
	FreeBytes int    `json:"free_bytes"`
}

func runAlloc(ctx context.Context, args []string) error {
	size, err := parseSize(args[1], "size")
	if err != nil {
		return err
	}
	return allocate(ctx, args[0], size, func(a *alloc.FirstFit) (alloc.Ptr, []byte, error) {
		p, payload, err := a.Alloc(size)
		if err != nil {
			return p, payload, err
		}
		if allocFill >= 0 {
			for i := range payload {
				payload[i] = byte(allocFill)
			}
		}
		return p, payload, nil
	})
}

func runCalloc(ctx context.Context, args []string) error {
	count, err := parseSize(args[1], "count")
	if err != nil {
		return err
	}
	size, err := parseSize(args[2], "size")
	if err != nil {
		return err
	}
	return allocate(ctx, args[0], count*size, func(a *alloc.FirstFit) (alloc.Ptr, []byte, error) {
		return a.Calloc(count, size)
	})
}

// allocate runs fn in a transaction on the image at path and reports the
// pointer it returns.
func allocate(ctx context.Context, path string, size int, fn func(a *alloc.FirstFit) (alloc.Ptr, []byte, error)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(path, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	var res allocResult
	err = s.mutate(ctx, func(a *alloc.FirstFit) error {
		p, payload, err := fn(a)
		if err != nil {
			return err
		}
		// The tracker only sees header writes; the payload is caller data.
		if len(payload) > 0 {
			s.dt.Add(s.payloadOffset(p), len(payload))
		}
		res = allocResult{
			Ptr:       formatPtr(p),
			Size:      size,
			Payload:   len(payload),
			FreeBytes: a.FreeBytes(),
		}
		return nil
	})
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(res)
	}
	if quiet {
		return nil
	}
	printInfo("%s\n", res.Ptr)
	printVerbose("  payload: %d bytes, free: %d bytes\n", res.Payload, res.FreeBytes)
	return nil
}
