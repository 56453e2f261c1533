// Command digitinfer evaluates a trained digit classifier on a labelled dataset.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/FlavioCFOliveira/digitnet/internal/config"
	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
	"github.com/FlavioCFOliveira/digitnet/internal/loss"
	"github.com/FlavioCFOliveira/digitnet/internal/net"
	"github.com/FlavioCFOliveira/digitnet/internal/parallel"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults are used when empty)")
	paramsDir := flag.String("params", "", "directory of parameter text files")
	bundle := flag.String("bundle", "", "protobuf parameter bundle, overrides -params")
	modelPath := flag.String("model", "", "gob model file, overrides parameter files")
	dataPath := flag.String("data", "", "CSV dataset (label,pixel0..pixelN)")
	idxImages := flag.String("idx-images", "", "IDX image file, used with -idx-labels instead of -data")
	idxLabels := flag.String("idx-labels", "", "IDX label file")
	limit := flag.Int("limit", -1, "maximum number of samples (-1 keeps the config value, 0 is unlimited)")
	workers := flag.Int("workers", -1, "concurrent predictions (-1 keeps the config value, 0 uses every core)")
	csvLog := flag.String("log", "", "write one CSV row per sample to this file")
	interval := flag.Int("progress", 1000, "log the running accuracy every N samples (0 disables)")
	lossName := flag.String("loss", "cross_entropy", "per-sample loss reported with the accuracy: cross_entropy or mse")
	summary := flag.Bool("summary", false, "print the model summary before evaluating")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal(logger, "Error loading config", err)
	}
	if *paramsDir != "" {
		cfg.Params.Dir = *paramsDir
	}
	if *bundle != "" {
		cfg.Params.Bundle = *bundle
	}
	if *dataPath != "" {
		cfg.Dataset.Path = *dataPath
	}
	if *idxLabels != "" {
		cfg.Dataset.Labels = *idxLabels
	}
	if *limit >= 0 {
		cfg.Dataset.Limit = *limit
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}

	model, err := loadModel(cfg, *modelPath)
	if err != nil {
		fatal(logger, "Error loading model", err)
	}
	logger.Debug("model loaded", "params", model.ParamCount(), "normalize", model.Normalizer().Mode.String())
	if *summary {
		model.Summary(os.Stdout)
	}

	opts := dataset.Options{Header: cfg.Dataset.Header, Labels: cfg.Dataset.Filter, Limit: cfg.Dataset.Limit}
	var samples []dataset.Sample
	if *idxImages != "" {
		samples, err = dataset.LoadIDX(*idxImages, cfg.Dataset.Labels, opts)
	} else {
		samples, err = dataset.LoadCSV(cfg.Dataset.Path, opts)
	}
	if err != nil {
		fatal(logger, "Error loading dataset", err)
	}

	n := cfg.Workers
	if n == 0 {
		n = parallel.DefaultWorkers()
	}
	logger.Info("dataset loaded", "samples", len(samples), "classes", dataset.Counts(samples),
		"cpu", parallel.CPUName(), "workers", n)

	lossFn, err := loss.ByName(*lossName)
	if err != nil {
		fatal(logger, "Error selecting loss", err)
	}

	callbacks := []net.Callback{net.ProgressLogger{Logger: logger, Interval: *interval}}
	var csvLogger *net.CSVLogger
	if *csvLog != "" {
		csvLogger = net.NewCSVLogger(*csvLog, false)
		callbacks = append(callbacks, csvLogger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := net.Evaluate(ctx, model, samples, net.EvalOptions{Workers: n, Callbacks: callbacks, Loss: lossFn})
	if err != nil {
		fatal(logger, "Error evaluating", err)
	}
	if csvLogger != nil && csvLogger.Err() != nil {
		logger.Warn("sample log incomplete", "file", *csvLog, "err", csvLogger.Err())
	}

	fmt.Print(report)
	fmt.Printf("Final Accuracy: %s\n", net.FormatPercent(report.Accuracy))
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func loadModel(cfg *config.Config, modelPath string) (*net.Model, error) {
	if modelPath != "" {
		return net.Load(modelPath)
	}
	src, err := net.SourceFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return net.LoadModel(cfg, src)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}
