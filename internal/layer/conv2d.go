package layer

import (
	"fmt"

	"github.com/FlavioCFOliveira/digitnet/internal/activations"
	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// Convolve performs valid-mode 2D cross-correlation of input with kernel.
// input and kernel must be square with kernel size k <= input size n; the
// output is (n-k+1) x (n-k+1). Each output cell is the sum of the elementwise
// product of the kernel and the window under it, plus the bias exactly once.
func Convolve(input matrix.Matrix, kernel Kernel) (matrix.Matrix, error) {
	if err := matrix.RequireSquare("convolve input", input); err != nil {
		return matrix.Matrix{}, err
	}
	if err := matrix.RequireSquare("convolve kernel", kernel.weights); err != nil {
		return matrix.Matrix{}, err
	}

	n := input.Rows()
	k := kernel.Size()
	if k == 0 || k > n {
		return matrix.Matrix{}, &matrix.ShapeError{
			Op:       "convolve",
			Expected: fmt.Sprintf("kernel size in [1, %d]", n),
			Actual:   fmt.Sprintf("kernel size %d", k),
		}
	}

	outSize := n - k + 1
	out := matrix.NewSquare(outSize)
	bias := kernel.bias

	for i := 0; i < outSize; i++ {
		for j := 0; j < outSize; j++ {
			sum := 0.0
			for m := 0; m < k; m++ {
				for p := 0; p < k; p++ {
					sum += input.At(i+m, j+p) * kernel.weights.At(m, p)
				}
			}
			out.Set(i, j, sum+bias)
		}
	}
	return out, nil
}

// Conv2D applies a bank of kernels to one single-channel image, producing
// one activated feature map per kernel.
type Conv2D struct {
	units      []ConvUnit
	kernelSize int
	activation activations.Activation
}

// NewConv2D creates a convolutional layer. All units must share one kernel size.
func NewConv2D(units []ConvUnit, activation activations.Activation) (*Conv2D, error) {
	if len(units) == 0 {
		return nil, &matrix.ShapeError{Op: "conv2d", Expected: "at least one unit", Actual: "0 units"}
	}
	size := units[0].kernel.Size()
	for i, u := range units {
		if u.kernel.Size() != size {
			return nil, &matrix.ShapeError{
				Op:       "conv2d",
				Expected: fmt.Sprintf("%dx%d kernels", size, size),
				Actual:   fmt.Sprintf("%dx%d kernel at unit %d", u.kernel.Size(), u.kernel.Size(), i),
			}
		}
	}
	if activation == nil {
		activation = activations.Linear{}
	}

	cp := make([]ConvUnit, len(units))
	copy(cp, units)
	return &Conv2D{units: cp, kernelSize: size, activation: activation}, nil
}

// Forward returns activation(convolve(input, kernel_i)) for every unit, in unit order.
func (c *Conv2D) Forward(input matrix.Matrix) ([]matrix.Matrix, error) {
	maps := make([]matrix.Matrix, len(c.units))
	for i, u := range c.units {
		fm, err := u.Apply(input)
		if err != nil {
			return nil, fmt.Errorf("conv unit %d: %w", i, err)
		}
		maps[i] = activations.Matrix(fm, c.activation)
	}
	return maps, nil
}

// OutputSize returns the feature-map dimension for an n x n input.
func (c *Conv2D) OutputSize(n int) int {
	return n - c.kernelSize + 1
}

// KernelSize returns the shared kernel dimension.
func (c *Conv2D) KernelSize() int { return c.kernelSize }

// OutChannels returns the number of kernels.
func (c *Conv2D) OutChannels() int { return len(c.units) }

// Activation returns the activation applied after convolution.
func (c *Conv2D) Activation() activations.Activation { return c.activation }

// Units returns a copy of the layer's units.
func (c *Conv2D) Units() []ConvUnit {
	cp := make([]ConvUnit, len(c.units))
	copy(cp, c.units)
	return cp
}

// Params returns all kernel weights followed by all biases, the same layout
// the parameter files use.
func (c *Conv2D) Params() (weights, biases []float64) {
	weights = make([]float64, 0, len(c.units)*c.kernelSize*c.kernelSize)
	biases = make([]float64, 0, len(c.units))
	for _, u := range c.units {
		weights = u.kernel.weights.AppendTo(weights)
		biases = append(biases, u.kernel.bias)
	}
	return weights, biases
}
