// Package loss provides unit tests for loss functions.
package loss

import (
	"math"
	"testing"
)

// TestMSEForward tests MSE forward pass.
func TestMSEForward(t *testing.T) {
	mse := MSE{}

	tests := []struct {
		name     string
		yPred    []float64
		yTrue    []float64
		expected float64
	}{
		{"Perfect prediction", []float64{1.0, 2.0, 3.0}, []float64{1.0, 2.0, 3.0}, 0.0},
		{"Single error", []float64{1.0, 2.0}, []float64{1.5, 2.0}, 0.125},           // (0.5^2 + 0) / 2 = 0.125
		{"Multiple errors", []float64{1.0, 2.0, 3.0}, []float64{0.0, 1.0, 2.0}, 1.0}, // (1+1+1)/3 = 1
		{"Large errors", []float64{10.0}, []float64{0.0}, 100.0},                     // 10^2 = 100
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mse.Forward(tt.yPred, tt.yTrue)
			if math.Abs(result-tt.expected) > 1e-12 {
				t.Errorf("MSE.Forward() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// TestMSEForwardLengthMismatch tests error handling.
func TestMSEForwardLengthMismatch(t *testing.T) {
	mse := MSE{}

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for length mismatch")
		}
	}()

	mse.Forward([]float64{1.0, 2.0}, []float64{1.0})
}

// TestCrossEntropyForward tests cross entropy against one-hot targets.
func TestCrossEntropyForward(t *testing.T) {
	ce := CrossEntropy{}

	tests := []struct {
		name     string
		yPred    []float64
		label    int
		expected float64
	}{
		{"Confident and right", []float64{1, 0}, 0, 0},
		{"Even split", []float64{0.5, 0.5}, 1, math.Log(2) / 2},
		{"Clipped zero", []float64{1, 0}, 1, -math.Log(1e-10) / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ce.Forward(tt.yPred, OneHot(tt.label, len(tt.yPred)))
			if math.Abs(result-tt.expected) > 1e-12 {
				t.Errorf("CrossEntropy.Forward() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// TestOneHot tests target vector construction.
func TestOneHot(t *testing.T) {
	v := OneHot(1, 3)
	if v[0] != 0 || v[1] != 1 || v[2] != 0 {
		t.Errorf("OneHot(1, 3) = %v", v)
	}
	for _, x := range OneHot(5, 2) {
		if x != 0 {
			t.Errorf("OneHot out of range should be zero, got %v", OneHot(5, 2))
		}
	}
}

// TestByName tests loss lookup.
func TestByName(t *testing.T) {
	for _, name := range []string{"", "cross_entropy", "mse"} {
		l, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q) failed: %v", name, err)
		}
		if name != "" && l.Name() != name {
			t.Errorf("ByName(%q).Name() = %q", name, l.Name())
		}
	}
	if _, err := ByName("hinge"); err == nil {
		t.Error("expected error for unknown loss")
	}
}
