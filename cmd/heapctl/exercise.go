package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/format"
)

var (
	exerciseSeed       int
	exerciseIterations int
	exerciseWordSize   int
	exerciseNoDump     bool
)

func init() {
	rootCmd.AddCommand(newExerciseCmd())
}

func newExerciseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exercise",
		Short: "Run the malloc, calloc and realloc self-test on a fresh heap",
		Long: `The exercise command builds an in-memory heap with the default layout and
runs three workloads against it, printing [ OK ] or [FAIL] for each:

  malloc and free  random sizes below 128, overrun sentinel, oversized
                   request, interleaved release, leak check
  calloc           zeroing of a reused chunk, leak check
  realloc          shrink and grow in place, relocation with copy, leak check

The random sizes come from a 16-bit xorshift generator advanced --seed times
before the first test. The final chunk table is dumped unless --no-dump.

Example:
  heapctl exercise
  heapctl exercise --seed 42 --iterations 20 --word-size 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExercise(args)
		},
	}

	cmd.Flags().IntVar(&exerciseSeed, "seed", 0, "Generator steps to skip before the first test")
	cmd.Flags().IntVar(&exerciseIterations, "iterations", 10, "Allocations made by the malloc test")
	cmd.Flags().IntVar(&exerciseWordSize, "word-size", heap.DefaultLayout.WordSize, "Word size in bytes (2, 4 or 8)")
	cmd.Flags().BoolVar(&exerciseNoDump, "no-dump", false, "Skip the final chunk table")

	return cmd
}

// xorshift is the 16-bit generator the workloads draw sizes from.
type xorshift struct {
	x, y uint16
}

func newXorshift(skip int) *xorshift {
	r := &xorshift{x: 1, y: 1}
	for range skip {
		r.next()
	}
	return r
}

func (r *xorshift) next() uint16 {
	t := r.x ^ (r.x << 5)
	r.x = r.y
	r.y = (r.y ^ (r.y >> 1)) ^ (t ^ (t >> 3))
	return r.y
}

// workload runs allocator calls against a heap. progress is called after
// each completed step.
type workload struct {
	a        alloc.Allocator
	ws       int
	rng      *xorshift
	progress func()
}

type exerciseResult struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func runExercise(_ []string) error {
	if exerciseIterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", exerciseIterations)
	}
	layout := heap.DefaultLayout
	layout.WordSize = exerciseWordSize

	r, err := heap.New(layout)
	if err != nil {
		return err
	}
	defer r.Close()
	ff, err := alloc.New(r, nil, nil)
	if err != nil {
		return err
	}

	w := &workload{
		a:   ff,
		ws:  layout.WordSize,
		rng: newXorshift(exerciseSeed),
		progress: func() {
			if !jsonOut {
				printInfo(".")
			}
		},
	}

	tests := []struct {
		name string
		fn   func() error
	}{
		{"Testing malloc and free", func() error { return w.testMalloc(exerciseIterations) }},
		{"Testing calloc", w.testCalloc},
		{"Testing realloc", w.testRealloc},
	}

	if !jsonOut {
		printInfo("%d bytes of heap free\n\n", ff.FreeBytes())
	}

	results := make([]exerciseResult, 0, len(tests))
	failed := 0
	for _, tt := range tests {
		if !jsonOut {
			printInfo("%s", tt.name)
		}
		err := tt.fn()
		if err == nil {
			err = consistent(r, ff)
		}
		res := exerciseResult{Name: tt.name, OK: err == nil}
		if err != nil {
			failed++
			res.Error = err.Error()
			if !jsonOut {
				printInfo(" [FAIL]\n")
				printVerbose("  %v\n", err)
			}
		} else if !jsonOut {
			printInfo(" [ OK ]\n")
		}
		results = append(results, res)
	}

	if jsonOut {
		if err := printJSON(map[string]any{
			"seed":       exerciseSeed,
			"word_size":  layout.WordSize,
			"free_bytes": ff.FreeBytes(),
			"results":    results,
		}); err != nil {
			return err
		}
	} else {
		if !exerciseNoDump && !quiet {
			printInfo("\n")
			if err := ff.Dump(os.Stdout); err != nil {
				return err
			}
		}
		printInfo("\n* done *\n")
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tests failed", failed, len(tests))
	}
	return nil
}

// consistent checks the chunk walk and the free counter after a workload.
func consistent(r *heap.Region, ff *alloc.FirstFit) error {
	if err := verify.ChunkWalk(r.Heap(), r.WordSize()); err != nil {
		return err
	}
	return verify.FreeCounter(r.Heap(), r.WordSize(), ff.FreeBytes())
}

func (w *workload) putWords(b []byte, n int) {
	for i := range n {
		format.PutWord(b, i*w.ws, w.ws, uint64(i))
	}
}

func (w *workload) checkWords(b []byte, n int) error {
	for i := range n {
		if got := format.ReadWord(b, i*w.ws, w.ws); got != uint64(i) {
			return fmt.Errorf("word %d is %d, want %d", i, got, i)
		}
	}
	return nil
}

func (w *workload) leakCheck(before int) error {
	if after := w.a.FreeBytes(); after != before {
		return fmt.Errorf("leaked %d bytes (%d free before, %d after)", before-after, before, after)
	}
	return nil
}

func (w *workload) testMalloc(n int) error {
	total := w.a.FreeBytes()

	sizes := make([]int, n)
	for i := range sizes {
		sizes[i] = int(w.rng.next() % 128)
	}

	ptrs := make([]alloc.Ptr, n)
	payloads := make([][]byte, n)
	for i, size := range sizes {
		p, b, err := w.a.Alloc(size)
		if err != nil {
			return fmt.Errorf("alloc %d of %d bytes: %w", i, size, err)
		}
		ptrs[i], payloads[i] = p, b
	}
	w.progress()

	// Filling the first payload to its end must not reach the second.
	if n > 1 && len(payloads[1]) >= w.ws {
		format.PutWord(payloads[1], 0, w.ws, 0xDEAD)
		w.putWords(payloads[0], sizes[0]/w.ws)
		if got := format.ReadWord(payloads[1], 0, w.ws); got != 0xDEAD {
			return fmt.Errorf("payload 0 overran into payload 1: sentinel is 0x%X", got)
		}
	}
	w.progress()

	if p, _, err := w.a.Alloc(w.a.FreeBytes() + 20); err == nil {
		_ = w.a.Free(p)
		return errors.New("allocation larger than the free bytes succeeded")
	}
	w.progress()

	// Interleaved so that each release has a busy or free neighbour to merge.
	for i := 0; i < n; i += 2 {
		if i+1 < n {
			if err := w.a.Free(ptrs[i+1]); err != nil {
				return err
			}
		}
		if err := w.a.Free(ptrs[i]); err != nil {
			return err
		}
	}
	w.progress()

	if err := w.leakCheck(total); err != nil {
		return err
	}
	w.progress()
	return nil
}

func (w *workload) testCalloc() error {
	total := w.a.FreeBytes()

	p1, _, err := w.a.Calloc(100, w.ws)
	if err != nil {
		return err
	}
	p2, b2, err := w.a.Calloc(100, w.ws)
	if err != nil {
		return err
	}
	p3, _, err := w.a.Calloc(100, w.ws)
	if err != nil {
		return err
	}
	w.progress()

	w.putWords(b2, 100>>1)
	if err := w.a.Free(p2); err != nil {
		return err
	}
	w.progress()

	p2, b2, err = w.a.Calloc(50, w.ws)
	if err != nil {
		return err
	}
	for i, v := range b2 {
		if v != 0 {
			return fmt.Errorf("reused payload byte %d is 0x%02X, want 0", i, v)
		}
	}
	w.progress()

	for _, p := range []alloc.Ptr{p2, p3, p1} {
		if err := w.a.Free(p); err != nil {
			return err
		}
	}
	if err := w.leakCheck(total); err != nil {
		return err
	}
	w.progress()
	return nil
}

func (w *workload) testRealloc() error {
	total := w.a.FreeBytes()

	p1, _, err := w.a.Alloc(200)
	if err != nil {
		return err
	}
	p2, _, err := w.a.Alloc(200)
	if err != nil {
		return err
	}
	p3, _, err := w.a.Alloc(200)
	if err != nil {
		return err
	}
	w.progress()

	np, _, err := w.a.Realloc(p2, 100)
	if err != nil {
		return err
	}
	if np != p2 {
		return fmt.Errorf("shrink moved 0x%x to 0x%x", uint64(p2), uint64(np))
	}
	w.progress()

	np, b2, err := w.a.Realloc(p2, 150)
	if err != nil {
		return err
	}
	if np != p2 {
		return fmt.Errorf("grow into free successor moved 0x%x to 0x%x", uint64(p2), uint64(np))
	}
	w.progress()

	words := 150 / w.ws
	w.putWords(b2, words)
	w.progress()

	np, nb, err := w.a.Realloc(p2, 250)
	if err != nil {
		return err
	}
	if np == p2 {
		return fmt.Errorf("grow past busy neighbour stayed at 0x%x", uint64(p2))
	}
	w.progress()

	if err := w.checkWords(nb, words); err != nil {
		return fmt.Errorf("relocated payload: %w", err)
	}
	w.progress()

	for _, p := range []alloc.Ptr{np, p3, p1} {
		if err := w.a.Free(p); err != nil {
			return err
		}
	}
	if err := w.leakCheck(total); err != nil {
		return err
	}
	w.progress()
	return nil
}
