package layer

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// Kernel is an immutable square weight matrix paired with its bias.
type Kernel struct {
	weights matrix.Matrix
	bias    float64
}

// NewKernel builds a kernel from a square weight matrix. The weights are copied.
func NewKernel(weights matrix.Matrix, bias float64) (Kernel, error) {
	if err := matrix.RequireSquare("kernel", weights); err != nil {
		return Kernel{}, err
	}
	return Kernel{weights: weights.Clone(), bias: bias}, nil
}

// KernelFromSlice reshapes a flat row-major slice of size*size weights into a kernel.
func KernelFromSlice(flat []float64, size int, bias float64) (Kernel, error) {
	w, err := matrix.FromSlice(size, size, flat)
	if err != nil {
		return Kernel{}, err
	}
	return Kernel{weights: w, bias: bias}, nil
}

// Size returns the kernel dimension.
func (k Kernel) Size() int { return k.weights.Rows() }

// Bias returns the scalar added once per output cell.
func (k Kernel) Bias() float64 { return k.bias }

// At returns weight (i, j).
func (k Kernel) At(i, j int) float64 { return k.weights.At(i, j) }

// Weights returns a copy of the weight matrix.
func (k Kernel) Weights() matrix.Matrix { return k.weights.Clone() }

// Unit is one learned neuron: either a ConvUnit or a DenseUnit.
type Unit interface {
	// Bias returns the unit's scalar bias.
	Bias() float64
	// Params returns the weights followed by the bias.
	Params() []float64
	isUnit()
}

// ConvUnit is a convolutional neuron.
type ConvUnit struct {
	kernel Kernel
}

// NewConvUnit wraps a kernel.
func NewConvUnit(k Kernel) ConvUnit { return ConvUnit{kernel: k} }

// Kernel returns the unit's filter.
func (u ConvUnit) Kernel() Kernel { return u.kernel }

// Bias returns the kernel bias.
func (u ConvUnit) Bias() float64 { return u.kernel.bias }

func (u ConvUnit) isUnit() {}

// Params returns the kernel weights in row-major order followed by the bias.
func (u ConvUnit) Params() []float64 {
	return append(u.kernel.weights.Data(), u.kernel.bias)
}

// Apply convolves input with the unit's kernel.
func (u ConvUnit) Apply(input matrix.Matrix) (matrix.Matrix, error) {
	return Convolve(input, u.kernel)
}

// DenseUnit is a fully-connected neuron over a flattened vector.
type DenseUnit struct {
	weights []float64
	bias    float64
}

// NewDenseUnit copies weights into a new unit.
func NewDenseUnit(weights []float64, bias float64) DenseUnit {
	w := make([]float64, len(weights))
	copy(w, weights)
	return DenseUnit{weights: w, bias: bias}
}

// Bias returns the unit bias.
func (u DenseUnit) Bias() float64 { return u.bias }

// FanIn returns the number of inputs the unit expects.
func (u DenseUnit) FanIn() int { return len(u.weights) }

func (u DenseUnit) isUnit() {}

// Params returns the weights followed by the bias.
func (u DenseUnit) Params() []float64 {
	p := make([]float64, 0, len(u.weights)+1)
	p = append(p, u.weights...)
	return append(p, u.bias)
}

// Weights returns a copy of the weight vector.
func (u DenseUnit) Weights() []float64 {
	w := make([]float64, len(u.weights))
	copy(w, u.weights)
	return w
}

// Apply computes the weighted sum of input plus bias.
func (u DenseUnit) Apply(input []float64) (float64, error) {
	return FullyConnected(input, u.weights, u.bias)
}

// Describe returns a short human-readable shape of a unit.
func Describe(u Unit) string {
	switch v := u.(type) {
	case ConvUnit:
		n := v.kernel.Size()
		return fmt.Sprintf("conv %dx%d bias=%.4f", n, n, v.Bias())
	case DenseUnit:
		return fmt.Sprintf("dense %d bias=%.4f", v.FanIn(), v.Bias())
	}
	return fmt.Sprintf("unknown unit %T", u)
}

// checkParams verifies that weights and biases can feed count units of stride weights each.
func checkParams(op string, weights, biases []float64, stride, count int) error {
	if count < 0 || stride <= 0 {
		return &matrix.ShapeError{
			Op:       op,
			Expected: "positive unit size and non-negative count",
			Actual:   fmt.Sprintf("size %d, count %d", stride, count),
		}
	}
	if len(weights) < stride*count {
		return &matrix.ShapeError{
			Op:       op,
			Expected: fmt.Sprintf("at least %d weights (%d units x %d)", stride*count, count, stride),
			Actual:   fmt.Sprintf("%d weights", len(weights)),
		}
	}
	if len(biases) < count {
		return &matrix.ShapeError{
			Op:       op,
			Expected: fmt.Sprintf("at least %d biases", count),
			Actual:   fmt.Sprintf("%d biases", len(biases)),
		}
	}
	return nil
}

// NewConvUnits slices count kernels of size x size out of a flat weight array.
// Unit i uses weights[size*size*i : size*size*(i+1)] reshaped row-major, and biases[i].
func NewConvUnits(weights, biases []float64, size, count int) ([]ConvUnit, error) {
	stride := size * size
	if err := checkParams("conv units", weights, biases, stride, count); err != nil {
		return nil, err
	}

	units := make([]ConvUnit, count)
	for i := 0; i < count; i++ {
		k, err := KernelFromSlice(weights[stride*i:stride*(i+1)], size, biases[i])
		if err != nil {
			return nil, err
		}
		units[i] = ConvUnit{kernel: k}
	}
	return units, nil
}

// NewDenseUnits slices count weight vectors of length fanIn out of a flat array.
// Unit i uses weights[fanIn*i : fanIn*(i+1)] and biases[i].
func NewDenseUnits(weights, biases []float64, fanIn, count int) ([]DenseUnit, error) {
	if err := checkParams("dense units", weights, biases, fanIn, count); err != nil {
		return nil, err
	}

	units := make([]DenseUnit, count)
	for i := 0; i < count; i++ {
		units[i] = NewDenseUnit(weights[fanIn*i:fanIn*(i+1)], biases[i])
	}
	return units, nil
}

// randomWeight draws a value uniformly from [-1, 1] rounded to two decimals.
func randomWeight(rng *rand.Rand) float64 {
	return math.Round((rng.Float64()*2-1)*100) / 100
}

// RandomConvUnits initializes count size x size kernels from rng.
// The same seed always produces the same units.
func RandomConvUnits(rng *rand.Rand, size, count int) []ConvUnit {
	units := make([]ConvUnit, count)
	for i := range units {
		w := matrix.NewSquare(size)
		for r := 0; r < size; r++ {
			for c := 0; c < size; c++ {
				w.Set(r, c, randomWeight(rng))
			}
		}
		units[i] = ConvUnit{kernel: Kernel{weights: w, bias: randomWeight(rng)}}
	}
	return units
}

// RandomDenseUnits initializes count units of fanIn weights from rng.
func RandomDenseUnits(rng *rand.Rand, fanIn, count int) []DenseUnit {
	units := make([]DenseUnit, count)
	for i := range units {
		w := make([]float64, fanIn)
		for j := range w {
			w[j] = randomWeight(rng)
		}
		units[i] = DenseUnit{weights: w, bias: randomWeight(rng)}
	}
	return units
}
