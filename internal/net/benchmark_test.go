// Package net provides benchmarks for the digit classifier.
package net

import (
	"context"
	"math/rand"
	"testing"

	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// randomDigit returns a 28x28 image of raw intensities.
func randomDigit(rng *rand.Rand) matrix.Matrix {
	m := matrix.NewSquare(28)
	for i := 0; i < 28; i++ {
		for j := 0; j < 28; j++ {
			m.Set(i, j, float64(rng.Intn(256)))
		}
	}
	return m
}

// BenchmarkPredict benchmarks one forward pass of the default model.
func BenchmarkPredict(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	m, err := NewRandom(DefaultSpec(), rng)
	if err != nil {
		b.Fatal(err)
	}
	img := randomDigit(rng)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Predict(img)
	}
}

// BenchmarkEvaluate benchmarks a 256-sample evaluation on every core.
func BenchmarkEvaluate(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	m, err := NewRandom(DefaultSpec(), rng)
	if err != nil {
		b.Fatal(err)
	}
	samples := make([]dataset.Sample, 256)
	for i := range samples {
		samples[i] = dataset.Sample{Label: rng.Intn(2), Image: randomDigit(rng)}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Evaluate(context.Background(), m, samples, EvalOptions{}); err != nil {
			b.Fatal(err)
		}
	}
}
