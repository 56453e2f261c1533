package net

import (
	"math"
	"testing"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   int
	}{
		{"first larger", []float64{0.7, 0.3}, 0},
		{"second larger", []float64{0.3, 0.7}, 1},
		{"tie goes to class 1", []float64{0.5, 0.5}, 1},
		{"NaN goes to class 1", []float64{math.NaN(), 0.5}, 1},
		{"argmax of three", []float64{0.2, 0.5, 0.3}, 1},
		{"later index wins ties", []float64{0.4, 0.4, 0.2}, 1},
		{"single", []float64{3}, 0},
		{"empty", nil, -1},
	}

	for _, tt := range tests {
		if got := Decide(tt.scores); got != tt.want {
			t.Errorf("%s: Decide(%v) = %d, want %d", tt.name, tt.scores, got, tt.want)
		}
	}
}

func TestCheckPrediction(t *testing.T) {
	tests := []struct {
		scores []float64
		target int
		want   int
	}{
		{[]float64{0.7, 0.3}, 0, 1},
		{[]float64{0.7, 0.3}, 1, 0},
		{[]float64{0.3, 0.7}, 0, 0},
		{[]float64{0.3, 0.7}, 1, 1},
		{[]float64{0.5, 0.5}, 1, 1},
		{[]float64{0.5, 0.5}, 0, 0},
	}

	for _, tt := range tests {
		if got := CheckPrediction(tt.scores, tt.target); got != tt.want {
			t.Errorf("CheckPrediction(%v, %d) = %d, want %d", tt.scores, tt.target, got, tt.want)
		}
	}
}

func TestNewPrediction(t *testing.T) {
	p := NewPrediction([]float64{1, 3})

	if p.Class != 1 {
		t.Errorf("Class = %d, want 1", p.Class)
	}
	sum := p.Probabilities[0] + p.Probabilities[1]
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("probabilities sum to %v", sum)
	}
	want := 1 / (1 + math.Exp(-2))
	if math.Abs(p.Confidence()-want) > 1e-12 {
		t.Errorf("Confidence = %v, want %v", p.Confidence(), want)
	}
	if (Prediction{Class: -1}).Confidence() != 0 {
		t.Error("Confidence of an undecided prediction must be 0")
	}
}
