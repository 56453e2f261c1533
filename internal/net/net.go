// Package net assembles the forward-pass stages into a digit classifier.
package net

import (
	"fmt"
	"math/rand"

	"github.com/FlavioCFOliveira/digitnet/internal/activations"
	"github.com/FlavioCFOliveira/digitnet/internal/layer"
	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// Spec is the architecture of a model.
type Spec struct {
	ImageSize  int
	KernelSize int
	Kernels    int
	Hidden     int
	Classes    int
	Normalizer layer.Normalizer
}

// DefaultSpec is the 28x28, five 3x3 kernel, 10 hidden unit, binary architecture.
func DefaultSpec() Spec {
	return Spec{
		ImageSize:  28,
		KernelSize: 3,
		Kernels:    5,
		Hidden:     10,
		Classes:    2,
		Normalizer: layer.Normalizer{Mode: layer.DynamicScale, Scale: layer.MaxIntensity, Precision: 2},
	}
}

// ConvSize is the side of each feature map.
func (s Spec) ConvSize() int { return s.ImageSize - s.KernelSize + 1 }

// PooledSize is the side of each pooled map.
func (s Spec) PooledSize() int { return s.ConvSize() / layer.PoolSize }

// FlatSize is the length of the flattened vector and the fan-in of every hidden unit.
func (s Spec) FlatSize() int { return layer.FlatSize(s.Kernels, s.PooledSize()) }

func (s Spec) validate() error {
	if s.ImageSize <= 0 || s.KernelSize <= 0 || s.KernelSize > s.ImageSize {
		return &matrix.ShapeError{
			Op:       "model",
			Expected: "kernel size in [1, image size]",
			Actual:   fmt.Sprintf("kernel %d, image %d", s.KernelSize, s.ImageSize),
		}
	}
	if s.Kernels <= 0 || s.Hidden <= 0 || s.Classes < 2 {
		return &matrix.ShapeError{
			Op:       "model",
			Expected: "at least one kernel, one hidden unit and two classes",
			Actual:   fmt.Sprintf("%d kernels, %d hidden, %d classes", s.Kernels, s.Hidden, s.Classes),
		}
	}
	if !s.Normalizer.Mode.Valid() {
		return fmt.Errorf("unknown normalize mode %s", s.Normalizer.Mode)
	}
	if s.PooledSize() == 0 {
		return &matrix.ShapeError{
			Op:       "model",
			Expected: "feature maps of at least 2x2",
			Actual:   fmt.Sprintf("%dx%d", s.ConvSize(), s.ConvSize()),
		}
	}
	return nil
}

// Weights holds the six flat parameter arrays of a model, in file layout.
type Weights struct {
	ConvWeight   []float64
	ConvBias     []float64
	DenseWeight  []float64
	DenseBias    []float64
	OutputWeight []float64
	OutputBias   []float64
}

// Model is an immutable, trained classifier. It is safe for concurrent use.
type Model struct {
	spec   Spec
	conv   *layer.Conv2D
	pool   *layer.MaxPool2D
	hidden *layer.Dense
	output *layer.Dense
}

// New builds a model from spec and flat weights. Every structural invariant is
// checked here so that inference never needs to.
func New(spec Spec, w Weights) (*Model, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	convUnits, err := layer.NewConvUnits(w.ConvWeight, w.ConvBias, spec.KernelSize, spec.Kernels)
	if err != nil {
		return nil, fmt.Errorf("failed to build conv layer: %w", err)
	}
	hiddenUnits, err := layer.NewDenseUnits(w.DenseWeight, w.DenseBias, spec.FlatSize(), spec.Hidden)
	if err != nil {
		return nil, fmt.Errorf("failed to build hidden layer: %w", err)
	}
	outputUnits, err := layer.NewDenseUnits(w.OutputWeight, w.OutputBias, spec.Hidden, spec.Classes)
	if err != nil {
		return nil, fmt.Errorf("failed to build output layer: %w", err)
	}

	return assemble(spec, convUnits, hiddenUnits, outputUnits)
}

// NewRandom builds a model with weights drawn from rng.
func NewRandom(spec Spec, rng *rand.Rand) (*Model, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	return assemble(spec,
		layer.RandomConvUnits(rng, spec.KernelSize, spec.Kernels),
		layer.RandomDenseUnits(rng, spec.FlatSize(), spec.Hidden),
		layer.RandomDenseUnits(rng, spec.Hidden, spec.Classes),
	)
}

func assemble(spec Spec, conv []layer.ConvUnit, hidden, output []layer.DenseUnit) (*Model, error) {
	c, err := layer.NewConv2D(conv, activations.ReLU{})
	if err != nil {
		return nil, err
	}
	h, err := layer.NewDenseFromUnits(hidden, activations.ReLU{})
	if err != nil {
		return nil, err
	}
	o, err := layer.NewDenseFromUnits(output, activations.Linear{})
	if err != nil {
		return nil, err
	}
	return &Model{
		spec:   spec,
		conv:   c,
		pool:   layer.NewMaxPool2D(),
		hidden: h,
		output: o,
	}, nil
}

// Spec returns the architecture the model was built with.
func (m *Model) Spec() Spec { return m.spec }

// Normalizer returns the input normalization applied before convolution.
func (m *Model) Normalizer() layer.Normalizer { return m.spec.Normalizer }

// Classes returns the number of output classes.
func (m *Model) Classes() int { return m.spec.Classes }

// Weights returns copies of the model parameters in file layout.
func (m *Model) Weights() Weights {
	var w Weights
	w.ConvWeight, w.ConvBias = m.conv.Params()
	w.DenseWeight, w.DenseBias = m.hidden.Params()
	w.OutputWeight, w.OutputBias = m.output.Params()
	return w
}

// ParamCount returns the total number of weights and biases.
func (m *Model) ParamCount() int {
	w := m.Weights()
	return len(w.ConvWeight) + len(w.ConvBias) + len(w.DenseWeight) +
		len(w.DenseBias) + len(w.OutputWeight) + len(w.OutputBias)
}

// Trace holds every intermediate value of one forward pass.
type Trace struct {
	Normalized matrix.Matrix
	Maps       []matrix.Matrix
	Pooled     []matrix.Matrix
	Flat       []float64
	Hidden     []float64
	Prediction Prediction
}

// Forward runs the full pipeline on a raw image and keeps the intermediate values.
func (m *Model) Forward(img matrix.Matrix) (*Trace, error) {
	if r, c := img.Dims(); r != m.spec.ImageSize || c != m.spec.ImageSize {
		return nil, &matrix.ShapeError{
			Op:       "predict",
			Expected: fmt.Sprintf("%dx%d image", m.spec.ImageSize, m.spec.ImageSize),
			Actual:   fmt.Sprintf("%dx%d", r, c),
		}
	}

	t := &Trace{Normalized: m.spec.Normalizer.Normalize(img)}

	var err error
	if t.Maps, err = m.conv.Forward(t.Normalized); err != nil {
		return nil, err
	}
	t.Pooled = m.pool.Forward(t.Maps)
	t.Flat = layer.Flatten(t.Pooled)

	if t.Hidden, err = m.hidden.Forward(t.Flat); err != nil {
		return nil, fmt.Errorf("hidden layer: %w", err)
	}
	scores, err := m.output.Forward(t.Hidden)
	if err != nil {
		return nil, fmt.Errorf("output layer: %w", err)
	}
	t.Prediction = NewPrediction(scores)
	return t, nil
}

// Predict classifies a raw image.
func (m *Model) Predict(img matrix.Matrix) (Prediction, error) {
	t, err := m.Forward(img)
	if err != nil {
		return Prediction{}, err
	}
	return t.Prediction, nil
}

// FeatureMaps returns the rectified feature maps of a raw image, one per kernel.
func (m *Model) FeatureMaps(img matrix.Matrix) ([]matrix.Matrix, error) {
	t, err := m.Forward(img)
	if err != nil {
		return nil, err
	}
	return t.Maps, nil
}
