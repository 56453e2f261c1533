package net

import (
	"log/slog"
)

// SampleResult is the outcome of classifying one evaluation sample.
type SampleResult struct {
	// Iteration is the 1-based position of the sample in the evaluation order.
	Iteration  int
	Label      int
	Prediction Prediction
	Correct    bool
	// Accuracy is the running accuracy in percent after this sample.
	Accuracy float64
}

// Callback observes an evaluation run. Callbacks are invoked from one
// goroutine, in sample order.
type Callback interface {
	OnEvalBegin(r *Report)
	OnSample(res SampleResult)
	OnEvalEnd(r *Report)
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

// OnEvalBegin does nothing.
func (c BaseCallback) OnEvalBegin(r *Report) {}

// OnSample does nothing.
func (c BaseCallback) OnSample(res SampleResult) {}

// OnEvalEnd does nothing.
func (c BaseCallback) OnEvalEnd(r *Report) {}

// ProgressLogger logs the running accuracy every Interval samples and the
// final summary.
type ProgressLogger struct {
	BaseCallback
	Logger   *slog.Logger
	Interval int
}

func (c ProgressLogger) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// OnEvalBegin logs the run id and sample count.
func (c ProgressLogger) OnEvalBegin(r *Report) {
	c.logger().Info("evaluation started", "run", r.ID, "samples", r.Total)
}

// OnSample logs the running accuracy every Interval samples.
func (c ProgressLogger) OnSample(res SampleResult) {
	if c.Interval > 0 && res.Iteration%c.Interval == 0 {
		c.logger().Info("evaluation progress",
			"iteration", res.Iteration,
			"accuracy", FormatPercent(res.Accuracy))
	}
}

// OnEvalEnd logs the final accuracy and elapsed time.
func (c ProgressLogger) OnEvalEnd(r *Report) {
	c.logger().Info("evaluation finished",
		"run", r.ID,
		"samples", r.Total,
		"correct", r.Correct,
		"accuracy", FormatPercent(r.Accuracy),
		"elapsed", r.Elapsed)
}

// MisclassifiedCollector records the iterations of wrong predictions, up to Max.
type MisclassifiedCollector struct {
	BaseCallback
	Max     int
	Samples []SampleResult
}

// OnSample records res if the prediction was wrong.
func (c *MisclassifiedCollector) OnSample(res SampleResult) {
	if res.Correct || (c.Max > 0 && len(c.Samples) >= c.Max) {
		return
	}
	c.Samples = append(c.Samples, res)
}
