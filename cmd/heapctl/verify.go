package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/mmfile"
)

var verifyStrict bool

func init() {
	cmd := newVerifyCmd()
	cmd.Flags().BoolVar(&verifyStrict, "strict", false, "Also fail on an open transaction or uncoalesced free chunks")
	rootCmd.AddCommand(cmd)
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <image>",
		Short: "Check the image header and chunk list",
		Long: `The verify command maps a heap image read-only and checks the
header page, the checksum and the chunk walk. An open transaction and
adjacent free chunks are reported as warnings unless --strict is given.

Example:
  heapctl verify heap.img
  heapctl verify heap.img --strict --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
	return cmd
}

func runVerify(args []string) error {
	path := args[0]

	printVerbose("Verifying image: %s\n", path)

	m, err := mmfile.Map(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	defer m.Close()
	data := m.Data

	verr := verify.AllInvariants(data)
	var warnings []error
	if verr == nil {
		ws := int(format.ReadU16(data, format.ImageWordSizeOffset))
		if err := verify.SequenceNumbers(data); err != nil {
			warnings = append(warnings, err)
		}
		if err := verify.Coalesced(data[format.HeaderSize:], ws); err != nil {
			warnings = append(warnings, err)
		}
	}
	if verr == nil && verifyStrict {
		verr = errors.Join(warnings...)
	}

	if jsonOut {
		result := map[string]any{
			"file":   path,
			"strict": verifyStrict,
			"valid":  verr == nil,
		}
		if verr != nil {
			result["error"] = verr.Error()
		}
		if len(warnings) > 0 {
			msgs := make([]string, len(warnings))
			for i, w := range warnings {
				msgs[i] = w.Error()
			}
			result["warnings"] = msgs
		}
		if err := printJSON(result); err != nil {
			return err
		}
		return verr
	}

	printInfo("\nVerifying %s...\n\n", path)
	if verr != nil {
		printInfo("  ✗ %v\n", verr)
		printInfo("\nResult: ✗ INVALID\n")
		return verr
	}

	printInfo("  ✓ Header valid\n")
	printInfo("  ✓ Checksum valid\n")
	printInfo("  ✓ Chunk walk ends at heap end\n")
	for _, w := range warnings {
		printInfo("  ! %v\n", w)
	}
	printInfo("\nResult: ✓ VALID\n")
	return nil
}
