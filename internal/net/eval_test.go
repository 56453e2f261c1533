package net

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
	"github.com/FlavioCFOliveira/digitnet/internal/loss"
	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evalSamples: the ramp is classified 0, blank images tie and go to class 1.
func evalSamples() []dataset.Sample {
	return []dataset.Sample{
		{Label: 0, Image: rampImage()},
		{Label: 0, Image: matrix.NewSquare(4)},
		{Label: 1, Image: matrix.NewSquare(4)},
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 66.67, Percent(2, 3))
	assert.Equal(t, 100.0, Percent(12665, 12665))
	assert.Equal(t, 0.0, Percent(0, 0))
	assert.Equal(t, "99.53%", FormatPercent(Percent(12606, 12665)))
}

func TestEvaluate(t *testing.T) {
	m := tinyModel(t)
	var buf bytes.Buffer
	csvLog := NewCSVWriterLogger(&buf)
	missed := &MisclassifiedCollector{}

	report, err := Evaluate(context.Background(), m, evalSamples(), EvalOptions{
		Workers:   2,
		Callbacks: []Callback{csvLog, missed},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Correct)
	assert.Equal(t, 66.67, report.Accuracy)
	assert.Equal(t, map[int]ClassStats{0: {Total: 2, Correct: 1}, 1: {Total: 1, Correct: 1}}, report.PerClass)
	assert.Equal(t, [][]int{{1, 1}, {0, 1}}, report.Confusion)

	high := 1 / (1 + math.Exp(-10))
	assert.InDelta(t, (high+1)/3, report.MeanConfidence, 1e-12)
	assert.Greater(t, report.StdConfidence, 0.0)

	// Cross entropy over two classes: -ln(p_label) / 2 per sample.
	wantLoss := (-math.Log(high) - math.Log(0.5) - math.Log(0.5)) / 2 / 3
	assert.Equal(t, "cross_entropy", report.LossName)
	assert.InDelta(t, wantLoss, report.MeanLoss, 1e-12)

	require.Len(t, missed.Samples, 1)
	assert.Equal(t, 2, missed.Samples[0].Iteration)

	require.NoError(t, csvLog.Err())
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"iteration", "label", "predicted", "correct", "accuracy"},
		{"1", "0", "0", "true", "100.00"},
		{"2", "0", "1", "false", "50.00"},
		{"3", "1", "1", "true", "66.67"},
	}, records)

	assert.Contains(t, report.String(), "Accuracy: 66.67% (2/3)")
	assert.Contains(t, report.String(), "label 0: 50.00% (1/2)")
}

func TestEvaluateWithMSE(t *testing.T) {
	report, err := Evaluate(context.Background(), tinyModel(t), evalSamples()[1:], EvalOptions{Loss: loss.MSE{}})
	require.NoError(t, err)

	// Both blank images predict [0.5, 0.5].
	assert.Equal(t, "mse", report.LossName)
	assert.InDelta(t, 0.25, report.MeanLoss, 1e-12)
}

func TestEvaluateEmpty(t *testing.T) {
	report, err := Evaluate(context.Background(), tinyModel(t), nil, EvalOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 0.0, report.Accuracy)
	assert.Equal(t, 0.0, report.MeanConfidence)
}

func TestEvaluateUnknownLabel(t *testing.T) {
	samples := []dataset.Sample{{Label: 7, Image: rampImage()}}

	report, err := Evaluate(context.Background(), tinyModel(t), samples, EvalOptions{Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Correct)
	assert.Equal(t, ClassStats{Total: 1}, report.PerClass[7])
	assert.Equal(t, [][]int{{0, 0}, {0, 0}}, report.Confusion)
}

func TestEvaluateShapeError(t *testing.T) {
	samples := append(evalSamples(), dataset.Sample{Label: 1, Image: matrix.NewSquare(28)})

	_, err := Evaluate(context.Background(), tinyModel(t), samples, EvalOptions{Workers: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample 3")
}

func TestEvaluateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Evaluate(ctx, tinyModel(t), evalSamples(), EvalOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProgressLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	_, err := Evaluate(context.Background(), tinyModel(t), evalSamples(), EvalOptions{
		Callbacks: []Callback{ProgressLogger{Logger: logger, Interval: 2}},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "evaluation started")
	assert.Contains(t, out, "iteration=2 accuracy=50.00%")
	assert.NotContains(t, out, "iteration=1 ")
	assert.Contains(t, out, "accuracy=66.67%")
}

func TestCSVLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.csv")

	for run := 0; run < 2; run++ {
		logger := NewCSVLogger(path, true)
		_, err := Evaluate(context.Background(), tinyModel(t), evalSamples(), EvalOptions{Callbacks: []Callback{logger}})
		require.NoError(t, err)
		require.NoError(t, logger.Err())
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1+2*3, "appending writes the header once")

	bad := NewCSVLogger(filepath.Join(t.TempDir(), "missing", "eval.csv"), false)
	_, err = Evaluate(context.Background(), tinyModel(t), evalSamples(), EvalOptions{Callbacks: []Callback{bad}})
	require.NoError(t, err)
	assert.Error(t, bad.Err())
}
