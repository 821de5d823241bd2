// Package stats summarizes a chunk list: occupancy, free chunk size
// distribution and external fragmentation.
package stats

import (
	"fmt"
	"io"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/joshuapare/heapkit/heap"
)

// Report holds occupancy and fragmentation metrics for one heap.
type Report struct {
	Chunks     int `json:"chunks"`
	FreeChunks int `json:"free_chunks"`
	BusyChunks int `json:"busy_chunks"`

	FreeBytes int `json:"free_bytes"` // Free chunk lengths, headers included
	BusyBytes int `json:"busy_bytes"`

	LargestFree int     `json:"largest_free"`
	MeanFree    float64 `json:"mean_free"`
	MedianFree  float64 `json:"median_free"`
	StdDevFree  float64 `json:"stddev_free"`

	// Fragmentation is 1 - LargestFree/FreeBytes: 0 when all free space is
	// one chunk, approaching 1 as it splinters.
	Fragmentation float64 `json:"fragmentation"`
}

// Collect computes a Report from a chunk walk.
func Collect(chunks []heap.ChunkInfo) Report {
	var r Report
	sizes := make([]float64, 0, len(chunks))

	for _, c := range chunks {
		r.Chunks++
		if c.Free {
			r.FreeChunks++
			r.FreeBytes += c.Size
			sizes = append(sizes, float64(c.Size))
			continue
		}
		r.BusyChunks++
		r.BusyBytes += c.Size
	}

	if len(sizes) == 0 {
		return r
	}

	r.LargestFree = int(floats.Max(sizes))
	if len(sizes) > 1 {
		r.MeanFree, r.StdDevFree = stat.MeanStdDev(sizes, nil)
	} else {
		r.MeanFree = sizes[0]
	}
	slices.Sort(sizes)
	r.MedianFree = stat.Quantile(0.5, stat.Empirical, sizes, nil)
	r.Fragmentation = 1 - float64(r.LargestFree)/float64(r.FreeBytes)
	return r
}

// Write prints the report as aligned text.
func (r Report) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"chunks:        %d (%d free, %d busy)\n"+
			"free bytes:    %d\n"+
			"busy bytes:    %d\n"+
			"largest free:  %d\n"+
			"free size:     mean %.1f, median %.1f, stddev %.1f\n"+
			"fragmentation: %.1f%%\n",
		r.Chunks, r.FreeChunks, r.BusyChunks,
		r.FreeBytes, r.BusyBytes, r.LargestFree,
		r.MeanFree, r.MedianFree, r.StdDevFree,
		r.Fragmentation*100)
	return err
}
