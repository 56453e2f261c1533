package net

import (
	"github.com/FlavioCFOliveira/digitnet/internal/activations"
)

// Prediction is the classifier output for one image.
type Prediction struct {
	Scores        []float64
	Probabilities []float64
	Class         int
}

// NewPrediction applies softmax to raw output scores and decides the class.
func NewPrediction(scores []float64) Prediction {
	probs := activations.Softmax(scores)
	return Prediction{
		Scores:        scores,
		Probabilities: probs,
		Class:         Decide(probs),
	}
}

// Confidence is the probability of the decided class.
func (p Prediction) Confidence() float64 {
	if p.Class < 0 || p.Class >= len(p.Probabilities) {
		return 0
	}
	return p.Probabilities[p.Class]
}

// Decide returns the index of the largest score. A later index wins unless an
// earlier one is strictly greater, so with two scores the result is 0 iff
// scores[0] > scores[1], and ties (or NaN) go to class 1. Empty input gives -1.
func Decide(scores []float64) int {
	if len(scores) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if !(scores[best] > scores[i]) {
			best = i
		}
	}
	return best
}

// CheckPrediction returns 1 when the decided class equals target, else 0.
func CheckPrediction(scores []float64, target int) int {
	if Decide(scores) == target {
		return 1
	}
	return 0
}
