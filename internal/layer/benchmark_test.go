// Package layer provides benchmarks for the forward-pass stages.
package layer

import (
	"math/rand"
	"testing"

	"github.com/FlavioCFOliveira/digitnet/internal/activations"
	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// randomImage returns an n x n matrix of values in [0, 1).
func randomImage(rng *rand.Rand, n int) matrix.Matrix {
	m := matrix.NewSquare(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m.Set(i, j, rng.Float64())
		}
	}
	return m
}

// BenchmarkConvolve benchmarks one 3x3 kernel over a 28x28 image.
func BenchmarkConvolve(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	img := randomImage(rng, 28)
	k := RandomConvUnits(rng, 3, 1)[0].Kernel()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Convolve(img, k)
	}
}

// BenchmarkConv2DForward benchmarks five kernels with ReLU.
func BenchmarkConv2DForward(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	img := randomImage(rng, 28)
	conv, _ := NewConv2D(RandomConvUnits(rng, 3, 5), activations.ReLU{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		conv.Forward(img)
	}
}

// BenchmarkMaxPool benchmarks pooling a 26x26 map.
func BenchmarkMaxPool(b *testing.B) {
	m := randomImage(rand.New(rand.NewSource(1)), 26)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		MaxPool(m)
	}
}

// BenchmarkDenseForward benchmarks the 845 -> 10 hidden layer.
func BenchmarkDenseForward(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	d, _ := NewDenseFromUnits(RandomDenseUnits(rng, 845, 10), activations.ReLU{})
	input := make([]float64, 845)
	for i := range input {
		input[i] = rng.Float64()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Forward(input)
	}
}
