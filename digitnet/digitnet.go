// Package digitnet exposes the digit classifier without the internal packages.
package digitnet

import (
	"context"
	"math/rand"

	"github.com/FlavioCFOliveira/digitnet/internal/activations"
	"github.com/FlavioCFOliveira/digitnet/internal/config"
	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
	"github.com/FlavioCFOliveira/digitnet/internal/layer"
	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
	"github.com/FlavioCFOliveira/digitnet/internal/net"
	"github.com/FlavioCFOliveira/digitnet/internal/params"
)

// Re-export common types and functions for easier access
type (
	Model       = net.Model
	Spec        = net.Spec
	Weights     = net.Weights
	Prediction  = net.Prediction
	Report      = net.Report
	EvalOptions = net.EvalOptions
	Callback    = net.Callback
	Config      = config.Config
	Sample      = dataset.Sample
	Matrix      = matrix.Matrix
	Kernel      = layer.Kernel
	Normalizer  = layer.Normalizer
	ShapeError  = matrix.ShapeError
	ParamSource = params.Source
)

// Normalization modes
const (
	FixedScale   = layer.FixedScale
	DynamicScale = layer.DynamicScale
)

// Model creation
func New(spec Spec, w Weights) (*Model, error) {
	return net.New(spec, w)
}

func NewRandom(spec Spec, seed int64) (*Model, error) {
	return net.NewRandom(spec, rand.New(rand.NewSource(seed)))
}

func DefaultSpec() Spec {
	return net.DefaultSpec()
}

// LoadModel builds a model from a config and its parameter files.
func LoadModel(cfg *Config) (*Model, error) {
	src, err := net.SourceFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return net.LoadModel(cfg, src)
}

func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

func DefaultConfig() *Config {
	return config.Default()
}

// Matrices
func NewMatrix(rows, cols int) Matrix {
	return matrix.New(rows, cols)
}

func FromRows(rows [][]float64) (Matrix, error) {
	return matrix.FromRows(rows)
}

// Kernels
func NewKernel(weights Matrix, bias float64) (Kernel, error) {
	return layer.NewKernel(weights, bias)
}

func NamedKernel(name string, bias float64) (Kernel, error) {
	return layer.NamedKernel(name, bias)
}

// Pipeline stages
func Normalize(img Matrix, mode layer.NormalizeMode, scale float64) Matrix {
	return layer.Normalize(img, mode, scale)
}

func Convolve(input Matrix, k Kernel) (Matrix, error) {
	return layer.Convolve(input, k)
}

func ReLU(m Matrix) Matrix {
	return layer.ReLU(m)
}

func Sigmoid(m Matrix) Matrix {
	return layer.Sigmoid(m)
}

func MaxPool(m Matrix) Matrix {
	return layer.MaxPool(m)
}

func Flatten(maps []Matrix) []float64 {
	return layer.Flatten(maps)
}

func FullyConnected(input, weights []float64, bias float64) (float64, error) {
	return layer.FullyConnected(input, weights, bias)
}

func Softmax(scores []float64) []float64 {
	return activations.Softmax(scores)
}

func Decide(scores []float64) int {
	return net.Decide(scores)
}

func CheckPrediction(scores []float64, target int) int {
	return net.CheckPrediction(scores, target)
}

// Datasets
func LoadCSV(path string, opts dataset.Options) ([]Sample, error) {
	return dataset.LoadCSV(path, opts)
}

func LoadIDX(imagesPath, labelsPath string, opts dataset.Options) ([]Sample, error) {
	return dataset.LoadIDX(imagesPath, labelsPath, opts)
}

// Evaluation
func Evaluate(ctx context.Context, m *Model, samples []Sample, opts EvalOptions) (*Report, error) {
	return net.Evaluate(ctx, m, samples, opts)
}
