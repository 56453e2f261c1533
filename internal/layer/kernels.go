package layer

import (
	"fmt"
	"sort"

	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// Classic fixed 3x3 edge and point filters, useful for inspecting images
// without trained weights.
var namedKernels = map[string][][]float64{
	"prewitt-horizontal": {
		{-1, 0, 1},
		{-1, 0, 1},
		{-1, 0, 1},
	},
	"prewitt-vertical": {
		{1, 1, 1},
		{0, 0, 0},
		{-1, -1, -1},
	},
	"sobel-horizontal": {
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	},
	"sobel-vertical": {
		{1, 2, 1},
		{0, 0, 0},
		{-1, -2, -1},
	},
	"laplacian": {
		{-1, -1, -1},
		{-1, 8, -1},
		{-1, -1, -1},
	},
}

// NamedKernel returns the fixed filter registered under name with the given bias.
func NamedKernel(name string, bias float64) (Kernel, error) {
	rows, ok := namedKernels[name]
	if !ok {
		return Kernel{}, fmt.Errorf("the specified filter %q does not exist", name)
	}
	return NewKernel(matrix.MustFromRows(rows), bias)
}

// KernelNames lists the registered filter names in sorted order.
func KernelNames() []string {
	names := make([]string, 0, len(namedKernels))
	for name := range namedKernels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
