package layer

import (
	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// PoolSize is the side of the non-overlapping pooling window.
const PoolSize = 2

// MaxPool downsamples m by taking the maximum of each non-overlapping 2x2 block.
// The output is floor(rows/2) x floor(cols/2); an odd trailing row or column is dropped.
func MaxPool(m matrix.Matrix) matrix.Matrix {
	outH := m.Rows() / PoolSize
	outW := m.Cols() / PoolSize
	out := matrix.New(outH, outW)

	for i := 0; i < outH; i++ {
		for j := 0; j < outW; j++ {
			maxVal := m.At(2*i, 2*j)
			if v := m.At(2*i, 2*j+1); v > maxVal {
				maxVal = v
			}
			if v := m.At(2*i+1, 2*j); v > maxVal {
				maxVal = v
			}
			if v := m.At(2*i+1, 2*j+1); v > maxVal {
				maxVal = v
			}
			out.Set(i, j, maxVal)
		}
	}
	return out
}

// MaxPool2D pools every feature map of a layer independently.
type MaxPool2D struct{}

// NewMaxPool2D creates a 2x2, stride 2 max-pooling layer.
func NewMaxPool2D() *MaxPool2D {
	return &MaxPool2D{}
}

// Forward pools each map, preserving map order.
func (p *MaxPool2D) Forward(maps []matrix.Matrix) []matrix.Matrix {
	out := make([]matrix.Matrix, len(maps))
	for i, m := range maps {
		out[i] = MaxPool(m)
	}
	return out
}

// OutputSize returns the pooled dimension for an n x n map.
func (p *MaxPool2D) OutputSize(n int) int {
	return n / PoolSize
}
