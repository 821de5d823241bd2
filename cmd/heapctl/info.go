package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <image>",
		Short: "Show the image header and heap summary",
		Long: `The info command validates a heap image header and displays its layout,
sequence numbers, capacity and free bytes.

Example:
  heapctl info heap.img
  heapctl info heap.img --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

type imageInfo struct {
	Path         string `json:"path"`
	Version      uint16 `json:"version"`
	Start        uint64 `json:"start"`
	End          uint64 `json:"end"`
	WordSize     int    `json:"word_size"`
	Capacity     int    `json:"capacity"`
	PrimarySeq   uint32 `json:"primary_seq"`
	SecondarySeq uint32 `json:"secondary_seq"`
	Clean        bool   `json:"clean"`
	Chunks       int    `json:"chunks"`
	FreeBytes    int    `json:"free_bytes"`
}

func runInfo(args []string) error {
	path := args[0]

	s, err := openSession(path, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	hdr, err := s.r.Header()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	chunks, err := s.a.Chunks()
	if err != nil {
		return fmt.Errorf("failed to walk heap: %w", err)
	}

	info := imageInfo{
		Path:         path,
		Version:      hdr.Version,
		Start:        hdr.Start,
		End:          hdr.End,
		WordSize:     int(hdr.WordSize),
		Capacity:     s.a.Capacity(),
		PrimarySeq:   hdr.PrimarySeq,
		SecondarySeq: hdr.SecondarySeq,
		Clean:        s.tm.Clean(),
		Chunks:       len(chunks),
		FreeBytes:    s.a.FreeBytes(),
	}
	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nHeap Image Information:\n")
	printInfo("  File: %s\n", path)
	printInfo("  Version: %d\n", info.Version)
	printInfo("  Layout: %s\n", heap.Layout{Start: info.Start, End: info.End, WordSize: info.WordSize})
	printInfo("  Capacity: %d bytes\n", info.Capacity)
	printInfo("  Free: %d bytes\n", info.FreeBytes)
	printInfo("  Chunks: %d\n", info.Chunks)
	printInfo("  Sequence: %d/%d\n", info.PrimarySeq, info.SecondarySeq)
	if info.Clean {
		printInfo("  ✓ Last transaction committed\n")
	} else {
		printInfo("  ✗ Last transaction did not complete\n")
	}
	return nil
}
