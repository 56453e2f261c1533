package layer

import (
	"github.com/FlavioCFOliveira/digitnet/internal/activations"
	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// ReLU returns max(0, x) for every element of m.
func ReLU(m matrix.Matrix) matrix.Matrix {
	return activations.Matrix(m, activations.ReLU{})
}

// Sigmoid returns 1 / (1 + e^-x) for every element of m.
func Sigmoid(m matrix.Matrix) matrix.Matrix {
	return activations.Matrix(m, activations.Sigmoid{})
}
