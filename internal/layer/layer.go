// Package layer provides the forward-pass stages of the digit classifier.
package layer

import (
	"fmt"

	"github.com/FlavioCFOliveira/digitnet/internal/activations"
	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// FullyConnected computes sum(input[k] * weights[k]) + bias.
// A length mismatch is a ShapeError: the weights belong to a different model.
func FullyConnected(input, weights []float64, bias float64) (float64, error) {
	if len(input) != len(weights) {
		return 0, &matrix.ShapeError{
			Op:       "fully connected",
			Expected: fmt.Sprintf("input of length %d", len(weights)),
			Actual:   fmt.Sprintf("length %d", len(input)),
		}
	}
	return dot(input, weights) + bias, nil
}

// dot assumes len(a) == len(b).
func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Dense is a fully connected layer.
// Weights are stored as one row-major contiguous slice of shape [out * in]:
// the weight for output o, input i is at weights[o*in + i]. This matches the
// layout of the exported parameter files, so unit o is weights[o*in : (o+1)*in].
type Dense struct {
	weights []float64
	biases  []float64
	act     activations.Activation
	outSize int
	inSize  int
}

// NewDense creates a dense layer of out units over in inputs from flat parameter arrays.
// Extra trailing values are ignored; too few values is a ShapeError.
func NewDense(weights, biases []float64, in, out int, act activations.Activation) (*Dense, error) {
	if err := checkParams("dense", weights, biases, in, out); err != nil {
		return nil, err
	}
	if act == nil {
		act = activations.Linear{}
	}

	w := make([]float64, in*out)
	copy(w, weights[:in*out])
	b := make([]float64, out)
	copy(b, biases[:out])

	return &Dense{
		weights: w,
		biases:  b,
		act:     act,
		outSize: out,
		inSize:  in,
	}, nil
}

// NewDenseFromUnits packs units that share one fan-in into a layer.
func NewDenseFromUnits(units []DenseUnit, act activations.Activation) (*Dense, error) {
	if len(units) == 0 {
		return nil, &matrix.ShapeError{Op: "dense", Expected: "at least one unit", Actual: "0 units"}
	}
	in := units[0].FanIn()
	weights := make([]float64, 0, in*len(units))
	biases := make([]float64, 0, len(units))
	for i, u := range units {
		if u.FanIn() != in {
			return nil, &matrix.ShapeError{
				Op:       "dense",
				Expected: fmt.Sprintf("fan-in %d", in),
				Actual:   fmt.Sprintf("fan-in %d at unit %d", u.FanIn(), i),
			}
		}
		weights = append(weights, u.weights...)
		biases = append(biases, u.bias)
	}
	return NewDense(weights, biases, in, len(units), act)
}

// Forward computes act(W x + b) into a new slice.
func (d *Dense) Forward(x []float64) ([]float64, error) {
	if len(x) != d.inSize {
		return nil, &matrix.ShapeError{
			Op:       "dense forward",
			Expected: fmt.Sprintf("input of length %d", d.inSize),
			Actual:   fmt.Sprintf("length %d", len(x)),
		}
	}

	output := make([]float64, d.outSize)
	for o := 0; o < d.outSize; o++ {
		wBase := o * d.inSize
		sum := dot(x, d.weights[wBase:wBase+d.inSize]) + d.biases[o]
		output[o] = d.act.Activate(sum)
	}
	return output, nil
}

// Unit returns unit o as a standalone DenseUnit.
func (d *Dense) Unit(o int) DenseUnit {
	return NewDenseUnit(d.weights[o*d.inSize:(o+1)*d.inSize], d.biases[o])
}

// Params returns copies of the flat weights and biases.
func (d *Dense) Params() (weights, biases []float64) {
	weights = make([]float64, len(d.weights))
	copy(weights, d.weights)
	biases = make([]float64, len(d.biases))
	copy(biases, d.biases)
	return weights, biases
}

// GetWeight gets a single weight at (row, col).
func (d *Dense) GetWeight(row, col int) float64 {
	return d.weights[row*d.inSize+col]
}

// GetBias gets a single bias.
func (d *Dense) GetBias(idx int) float64 {
	return d.biases[idx]
}

// InSize returns the input size of the layer.
func (d *Dense) InSize() int {
	return d.inSize
}

// OutSize returns the output size of the layer.
func (d *Dense) OutSize() int {
	return d.outSize
}

// Activation returns the activation function used by this layer.
func (d *Dense) Activation() activations.Activation {
	return d.act
}
