// Command paramsbundle converts the parameters of a trained classifier
// between text files, a protobuf bundle, a gob model and GGUF.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/FlavioCFOliveira/digitnet/internal/config"
	"github.com/FlavioCFOliveira/digitnet/internal/net"
	"github.com/FlavioCFOliveira/digitnet/internal/params"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults are used when empty)")
	paramsDir := flag.String("params", "", "directory of parameter text files")
	bundle := flag.String("bundle", "", "read parameters from this protobuf bundle")
	modelPath := flag.String("model", "", "read a gob model instead of parameter files")
	format := flag.String("format", "pb", "output format: pb, gob, gguf, gguf-f16 or text")
	out := flag.String("out", "", "output file (or directory for -format text)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if *out == "" {
		fatal(logger, "Missing output", fmt.Errorf("-out is required"))
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fatal(logger, "Error loading config", err)
		}
	}
	if *paramsDir != "" {
		cfg.Params.Dir = *paramsDir
	}
	if *bundle != "" {
		cfg.Params.Bundle = *bundle
	}

	var (
		model *net.Model
		err   error
	)
	if *modelPath != "" {
		model, err = net.Load(*modelPath)
	} else {
		var src params.Source
		if src, err = net.SourceFromConfig(cfg); err == nil {
			model, err = net.LoadModel(cfg, src)
		}
	}
	if err != nil {
		fatal(logger, "Error loading model", err)
	}

	if err := write(cfg, model, *format, *out); err != nil {
		fatal(logger, "Error writing output", err)
	}
	logger.Info("parameters written", "format", *format, "out", *out, "params", model.ParamCount())
}

func write(cfg *config.Config, model *net.Model, format, out string) error {
	switch format {
	case "pb":
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := params.WriteBundle(f, model.Arrays(cfg)); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case "gob":
		return model.Save(out)
	case "gguf":
		return model.SaveGGUF(out)
	case "gguf-f16":
		return model.SaveGGUFExt(out, net.GGMLTypeF16)
	case "text":
		if err := os.MkdirAll(out, 0755); err != nil {
			return err
		}
		for name, values := range model.Arrays(cfg) {
			if err := writeText(filepath.Join(out, name), values); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

func writeText(path string, values []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := params.WriteText(f, values); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}
