// Package dataset loads labelled grayscale digit images.
package dataset

import (
	"fmt"
	"math"

	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// Sample is one labelled image with raw, unnormalized pixel values.
type Sample struct {
	Label int
	Image matrix.Matrix
}

// Options controls which rows a loader keeps.
type Options struct {
	// Header skips the first CSV record.
	Header bool
	// Labels keeps only samples whose label is listed; empty keeps all.
	Labels []int
	// Limit stops after this many kept samples; 0 means no limit.
	Limit int
}

func (o Options) keep(label int) bool {
	if len(o.Labels) == 0 {
		return true
	}
	for _, l := range o.Labels {
		if l == label {
			return true
		}
	}
	return false
}

func (o Options) full(n int) bool {
	return o.Limit > 0 && n >= o.Limit
}

// SourceError reports a dataset file that is missing or unreadable.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("dataset source %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// squareSide returns n such that n*n == pixels.
func squareSide(pixels int) (int, error) {
	n := int(math.Sqrt(float64(pixels)))
	for n*n < pixels {
		n++
	}
	if n == 0 || n*n != pixels {
		return 0, fmt.Errorf("%d pixels do not form a square image", pixels)
	}
	return n, nil
}

// Counts returns the number of samples per label.
func Counts(samples []Sample) map[int]int {
	counts := make(map[int]int)
	for _, s := range samples {
		counts[s.Label]++
	}
	return counts
}
