package net

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
	"github.com/FlavioCFOliveira/digitnet/internal/loss"
	"github.com/FlavioCFOliveira/digitnet/internal/parallel"
)

// EvalOptions configures Evaluate.
type EvalOptions struct {
	// Workers bounds the number of concurrent predictions; 0 uses every logical core.
	Workers   int
	Callbacks []Callback
	// Loss scores each prediction against the one-hot label; nil uses cross entropy.
	Loss loss.Loss
}

// ClassStats counts samples and correct predictions for one label.
type ClassStats struct {
	Total   int
	Correct int
}

// Accuracy is the percentage of correct predictions for the label.
func (c ClassStats) Accuracy() float64 {
	return Percent(c.Correct, c.Total)
}

// Report summarizes an evaluation run.
type Report struct {
	ID       string
	Total    int
	Correct  int
	Accuracy float64
	PerClass map[int]ClassStats
	// Confusion[label][predicted] counts samples whose label is a model class.
	Confusion      [][]int
	MeanConfidence float64
	StdConfidence  float64
	LossName       string
	MeanLoss       float64
	Elapsed        time.Duration
}

// Percent returns 100*correct/total rounded to two decimals, or 0 when total is 0.
func Percent(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}

// FormatPercent renders an accuracy as "12.34%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// Evaluate classifies every sample and reports the accuracy. Predictions run
// on a bounded worker pool; callbacks see results in sample order once all
// predictions are done. Cancelling ctx stops the run with ctx's error.
func Evaluate(ctx context.Context, m *Model, samples []dataset.Sample, opts EvalOptions) (*Report, error) {
	start := time.Now()
	lossFn := opts.Loss
	if lossFn == nil {
		lossFn = loss.CrossEntropy{}
	}
	report := &Report{
		LossName: lossFn.Name(),
		ID:       uuid.NewString(),
		Total:    len(samples),
		PerClass: make(map[int]ClassStats),
	}
	report.Confusion = make([][]int, m.Classes())
	for i := range report.Confusion {
		report.Confusion[i] = make([]int, m.Classes())
	}

	preds := make([]Prediction, len(samples))
	err := parallel.ForEachContext(ctx, len(samples), opts.Workers, func(_ context.Context, i int) error {
		p, err := m.Predict(samples[i].Image)
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		preds[i] = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, cb := range opts.Callbacks {
		cb.OnEvalBegin(report)
	}

	confidences := make([]float64, len(samples))
	losses := make([]float64, len(samples))
	for i, s := range samples {
		p := preds[i]
		correct := p.Class == s.Label

		stats := report.PerClass[s.Label]
		stats.Total++
		if correct {
			stats.Correct++
			report.Correct++
		}
		report.PerClass[s.Label] = stats
		if s.Label >= 0 && s.Label < m.Classes() {
			report.Confusion[s.Label][p.Class]++
		}
		confidences[i] = p.Confidence()
		losses[i] = lossFn.Forward(p.Probabilities, loss.OneHot(s.Label, m.Classes()))

		res := SampleResult{
			Iteration:  i + 1,
			Label:      s.Label,
			Prediction: p,
			Correct:    correct,
			Accuracy:   Percent(report.Correct, i+1),
		}
		for _, cb := range opts.Callbacks {
			cb.OnSample(res)
		}
	}

	report.Accuracy = Percent(report.Correct, report.Total)
	if len(losses) > 0 {
		report.MeanLoss = stat.Mean(losses, nil)
	}
	switch len(confidences) {
	case 0:
	case 1:
		report.MeanConfidence = confidences[0]
	default:
		report.MeanConfidence, report.StdConfidence = stat.MeanStdDev(confidences, nil)
	}
	report.Elapsed = time.Since(start)

	for _, cb := range opts.Callbacks {
		cb.OnEvalEnd(report)
	}
	return report, nil
}

// String renders a multi-line summary of the report.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s\n", r.ID)
	fmt.Fprintf(&b, "Accuracy: %s (%d/%d)\n", FormatPercent(r.Accuracy), r.Correct, r.Total)
	fmt.Fprintf(&b, "Confidence: mean %.4f, std %.4f\n", r.MeanConfidence, r.StdConfidence)
	fmt.Fprintf(&b, "Loss (%s): %.6f\n", r.LossName, r.MeanLoss)

	labels := make([]int, 0, len(r.PerClass))
	for l := range r.PerClass {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	for _, l := range labels {
		c := r.PerClass[l]
		fmt.Fprintf(&b, "  label %d: %s (%d/%d)\n", l, FormatPercent(c.Accuracy()), c.Correct, c.Total)
	}
	return b.String()
}
