package net

import (
	"fmt"

	"github.com/FlavioCFOliveira/digitnet/internal/config"
	"github.com/FlavioCFOliveira/digitnet/internal/params"
)

// SpecFromConfig converts the architecture section of cfg.
func SpecFromConfig(cfg *config.Config) (Spec, error) {
	norm, err := cfg.Normalizer()
	if err != nil {
		return Spec{}, err
	}
	return Spec{
		ImageSize:  cfg.ImageSize,
		KernelSize: cfg.KernelSize,
		Kernels:    cfg.Kernels,
		Hidden:     cfg.Hidden,
		Classes:    cfg.Classes,
		Normalizer: norm,
	}, nil
}

// SourceFromConfig opens the bundle named in cfg, or falls back to one text
// file per array under the parameter directory.
func SourceFromConfig(cfg *config.Config) (params.Source, error) {
	if cfg.Params.Bundle != "" {
		return params.OpenBundle(cfg.Params.Bundle)
	}
	return params.TextFile{Dir: cfg.Params.Dir, Decimals: cfg.Params.RoundDecimals}, nil
}

// ParamNames returns the six array names in Weights field order.
func ParamNames(cfg *config.Config) []string {
	p := cfg.Params
	return []string{p.ConvWeight, p.ConvBias, p.DenseWeight, p.DenseBias, p.OutputWeight, p.OutputBias}
}

// LoadWeights reads the six arrays named in cfg from src.
func LoadWeights(cfg *config.Config, src params.Source) (Weights, error) {
	names := ParamNames(cfg)
	arrays := make([][]float64, len(names))
	for i, name := range names {
		values, err := src.Load(name)
		if err != nil {
			return Weights{}, fmt.Errorf("failed to load parameters %q: %w", name, err)
		}
		arrays[i] = values
	}
	return Weights{
		ConvWeight:   arrays[0],
		ConvBias:     arrays[1],
		DenseWeight:  arrays[2],
		DenseBias:    arrays[3],
		OutputWeight: arrays[4],
		OutputBias:   arrays[5],
	}, nil
}

// LoadModel builds the model described by cfg with parameters from src.
func LoadModel(cfg *config.Config, src params.Source) (*Model, error) {
	spec, err := SpecFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	w, err := LoadWeights(cfg, src)
	if err != nil {
		return nil, err
	}
	return New(spec, w)
}

// Arrays maps the config's parameter names to the model weights, ready for
// params.WriteBundle.
func (m *Model) Arrays(cfg *config.Config) map[string][]float64 {
	w := m.Weights()
	values := [][]float64{w.ConvWeight, w.ConvBias, w.DenseWeight, w.DenseBias, w.OutputWeight, w.OutputBias}
	arrays := make(map[string][]float64, len(values))
	for i, name := range ParamNames(cfg) {
		arrays[name] = values[i]
	}
	return arrays
}
