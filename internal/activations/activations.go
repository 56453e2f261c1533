// Package activations provides the pointwise nonlinearities and the output softmax.
package activations

import (
	"fmt"
	"math"

	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
	"gonum.org/v1/gonum/floats"
)

// Activation is a pointwise function applied after a convolution or dense projection.
type Activation interface {
	// Activate computes f(x)
	Activate(x float64) float64

	// Name identifies the function in configs and saved models.
	Name() string
}

// ReLU activation function.
type ReLU struct{}

// Activate computes max(0, x)
func (r ReLU) Activate(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func (r ReLU) Name() string { return "relu" }

// Sigmoid activation function.
type Sigmoid struct{}

// sigmoid computes the logistic function
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Activate computes 1 / (1 + e^-x)
func (s Sigmoid) Activate(x float64) float64 {
	return sigmoid(x)
}

func (s Sigmoid) Name() string { return "sigmoid" }

// Linear is the identity, used for raw output scores.
type Linear struct{}

// Activate returns x unchanged
func (l Linear) Activate(x float64) float64 {
	return x
}

func (l Linear) Name() string { return "linear" }

// ByName returns the activation registered under name.
func ByName(name string) (Activation, error) {
	switch name {
	case "relu":
		return ReLU{}, nil
	case "sigmoid":
		return Sigmoid{}, nil
	case "linear", "":
		return Linear{}, nil
	}
	return nil, fmt.Errorf("unknown activation %q", name)
}

// Matrix applies act to every element of m and returns a new matrix of the same shape.
func Matrix(m matrix.Matrix, act Activation) matrix.Matrix {
	return m.Apply(act.Activate)
}

// Slice applies act to every element of x and returns a new slice.
func Slice(x []float64, act Activation) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = act.Activate(v)
	}
	return out
}

// Softmax computes exp(x_i) / sum(exp(x_j)) into a new slice.
// The maximum is subtracted before exponentiation; the result is the same
// distribution but stays finite for large scores.
func Softmax(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}

	maxVal := floats.Max(x)
	for i, v := range x {
		out[i] = math.Exp(v - maxVal)
	}

	sum := floats.Sum(out)
	if sum == 0 || math.IsNaN(sum) {
		// Only reachable with NaN or infinite scores.
		return make([]float64, len(x))
	}
	floats.Scale(1/sum, out)
	return out
}
