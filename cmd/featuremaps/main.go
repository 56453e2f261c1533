// Command featuremaps renders the input and the convolution feature maps of
// one dataset image as PNG files.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/FlavioCFOliveira/digitnet/internal/config"
	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
	"github.com/FlavioCFOliveira/digitnet/internal/layer"
	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
	"github.com/FlavioCFOliveira/digitnet/internal/net"
	"github.com/FlavioCFOliveira/digitnet/internal/render"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults are used when empty)")
	modelPath := flag.String("model", "", "gob model file; parameter files from the config are used when empty")
	seed := flag.Int64("seed", 0, "use a randomly initialized model with this seed instead of trained parameters")
	dataPath := flag.String("data", "", "CSV dataset, overrides the config")
	index := flag.Int("index", 0, "index of the sample to render")
	kernel := flag.String("kernel", "", fmt.Sprintf("render one classic filter instead of the model kernels %v", layer.KernelNames()))
	outDir := flag.String("out", "featuremaps", "output directory")
	scale := flag.Int("scale", 10, "pixel upscaling factor")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fatal(logger, "Error loading config", err)
		}
	}
	if *dataPath != "" {
		cfg.Dataset.Path = *dataPath
	}

	samples, err := dataset.LoadCSV(cfg.Dataset.Path, dataset.Options{
		Header: cfg.Dataset.Header,
		Labels: cfg.Dataset.Filter,
		Limit:  *index + 1,
	})
	if err != nil {
		fatal(logger, "Error loading dataset", err)
	}
	if *index < 0 || *index >= len(samples) {
		fatal(logger, "Error selecting sample", fmt.Errorf("index %d out of range [0, %d)", *index, len(samples)))
	}
	sample := samples[*index]

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fatal(logger, "Error creating output directory", err)
	}

	norm, err := cfg.Normalizer()
	if err != nil {
		fatal(logger, "Error reading config", err)
	}
	input := norm.Normalize(sample.Image)
	save(logger, render.Rescale(input), filepath.Join(*outDir, "input.png"), *scale)

	var maps []matrix.Matrix
	if *kernel != "" {
		k, err := layer.NamedKernel(*kernel, 0)
		if err != nil {
			fatal(logger, "Error selecting kernel", err)
		}
		fm, err := layer.Convolve(input, k)
		if err != nil {
			fatal(logger, "Error convolving", err)
		}
		maps = []matrix.Matrix{layer.ReLU(fm)}
	} else {
		model, err := loadModel(cfg, *modelPath, *seed)
		if err != nil {
			fatal(logger, "Error loading model", err)
		}
		p, err := model.Predict(sample.Image)
		if err != nil {
			fatal(logger, "Error predicting", err)
		}
		logger.Info("prediction", "label", sample.Label, "class", p.Class, "confidence", p.Confidence())
		if maps, err = model.FeatureMaps(sample.Image); err != nil {
			fatal(logger, "Error computing feature maps", err)
		}
	}

	for i, fm := range maps {
		save(logger, render.Rescale(fm), filepath.Join(*outDir, fmt.Sprintf("map_%d.png", i)), *scale)
	}
	logger.Info("feature maps written", "dir", *outDir, "maps", len(maps), "label", sample.Label)
}

func loadModel(cfg *config.Config, modelPath string, seed int64) (*net.Model, error) {
	if modelPath != "" {
		return net.Load(modelPath)
	}
	if seed != 0 {
		spec, err := net.SpecFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		return net.NewRandom(spec, rand.New(rand.NewSource(seed)))
	}
	src, err := net.SourceFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return net.LoadModel(cfg, src)
}

func save(logger *slog.Logger, m matrix.Matrix, path string, scale int) {
	if err := render.SaveGray(m, path, scale); err != nil {
		fatal(logger, "Error writing image", err)
	}
	logger.Debug("image written", "file", path)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}
