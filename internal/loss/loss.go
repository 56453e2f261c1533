// Package loss scores predicted class probabilities against a known label.
package loss

import (
	"fmt"
	"math"
)

// Loss compares a prediction with a target vector of the same length.
type Loss interface {
	// Forward computes the loss between predicted and true values.
	Forward(yPred, yTrue []float64) float64
	Name() string
}

// MSE (Mean Squared Error) loss.
type MSE struct{}

// Forward computes mean squared error: (1/n) * sum((y_pred - y_true)^2)
func (m MSE) Forward(yPred, yTrue []float64) float64 {
	n := len(yPred)
	if n != len(yTrue) {
		panic("MSE: prediction and target must have same length")
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yPred[i] - yTrue[i]
		sum += diff * diff
	}
	return sum / float64(n)
}

func (m MSE) Name() string { return "mse" }

// CrossEntropy loss for classification.
type CrossEntropy struct{}

// Forward computes cross entropy: -(1/n) * sum(y_true * log(y_pred)),
// with predictions clipped to 1e-10.
func (c CrossEntropy) Forward(yPred, yTrue []float64) float64 {
	n := len(yPred)
	if n != len(yTrue) {
		panic("CrossEntropy: prediction and target must have same length")
	}

	const eps = 1e-10
	var sum float64
	for i := 0; i < n; i++ {
		// Clip prediction to avoid log(0)
		pred := yPred[i]
		if pred < eps {
			pred = eps
		}
		sum -= yTrue[i] * math.Log(pred)
	}
	return sum / float64(n)
}

func (c CrossEntropy) Name() string { return "cross_entropy" }

// OneHot returns a vector of length classes with 1 at label.
// A label outside [0, classes) gives the zero vector.
func OneHot(label, classes int) []float64 {
	v := make([]float64, classes)
	if label >= 0 && label < classes {
		v[label] = 1
	}
	return v
}

// ByName returns the loss registered under name.
func ByName(name string) (Loss, error) {
	switch name {
	case "", "cross_entropy":
		return CrossEntropy{}, nil
	case "mse":
		return MSE{}, nil
	}
	return nil, fmt.Errorf("unknown loss %q", name)
}
