// Package config holds the model architecture and file locations used by the commands.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/FlavioCFOliveira/digitnet/internal/layer"
)

// Config describes one classifier and the data it is evaluated on.
type Config struct {
	ImageSize  int       `yaml:"image_size"`
	KernelSize int       `yaml:"kernel_size"`
	Kernels    int       `yaml:"kernels"`
	Hidden     int       `yaml:"hidden"`
	Classes    int       `yaml:"classes"`
	Normalize  Normalize `yaml:"normalize"`
	Params     Params    `yaml:"params"`
	Dataset    Dataset   `yaml:"dataset"`
	// Workers bounds evaluation concurrency; 0 uses every logical core.
	Workers int `yaml:"workers"`
}

// Normalize configures input rescaling.
type Normalize struct {
	Mode      string  `yaml:"mode"`
	Scale     float64 `yaml:"scale"`
	Precision int     `yaml:"precision"`
}

// Params names the six parameter files, relative to Dir.
type Params struct {
	Dir           string `yaml:"dir"`
	Bundle        string `yaml:"bundle"`
	ConvWeight    string `yaml:"conv_weight"`
	ConvBias      string `yaml:"conv_bias"`
	DenseWeight   string `yaml:"dense_weight"`
	DenseBias     string `yaml:"dense_bias"`
	OutputWeight  string `yaml:"output_weight"`
	OutputBias    string `yaml:"output_bias"`
	RoundDecimals int    `yaml:"round_decimals"`
}

// Dataset configures the evaluation samples.
type Dataset struct {
	Path   string `yaml:"path"`
	Labels string `yaml:"labels_path"`
	Header bool   `yaml:"header"`
	Filter []int  `yaml:"labels"`
	Limit  int    `yaml:"limit"`
}

// Default returns the configuration of the shipped binary classifier.
func Default() *Config {
	return &Config{
		ImageSize:  28,
		KernelSize: 3,
		Kernels:    5,
		Hidden:     10,
		Classes:    2,
		Normalize: Normalize{
			Mode:      layer.DynamicScale.String(),
			Scale:     layer.MaxIntensity,
			Precision: 2,
		},
		Params: Params{
			Dir:           "train_data",
			ConvWeight:    "conv_layer_1_weight.txt",
			ConvBias:      "conv_layer_1_bias.txt",
			DenseWeight:   "dense_layer_2_weight.txt",
			DenseBias:     "dense_layer_2_bias.txt",
			OutputWeight:  "output_layer_3_weight.txt",
			OutputBias:    "output_layer_3_bias.txt",
			RoundDecimals: 1,
		},
		Dataset: Dataset{
			Path:   "mnist_train.csv",
			Header: true,
			Filter: []int{0, 1},
			Limit:  12665,
		},
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks that the architecture is consistent.
func (c *Config) Validate() error {
	var errs []error
	if c.ImageSize <= 0 {
		errs = append(errs, fmt.Errorf("image_size must be positive, got %d", c.ImageSize))
	}
	if c.KernelSize <= 0 || c.KernelSize > c.ImageSize {
		errs = append(errs, fmt.Errorf("kernel_size must be in [1, %d], got %d", c.ImageSize, c.KernelSize))
	}
	if c.Kernels <= 0 {
		errs = append(errs, fmt.Errorf("kernels must be positive, got %d", c.Kernels))
	}
	if c.Hidden <= 0 {
		errs = append(errs, fmt.Errorf("hidden must be positive, got %d", c.Hidden))
	}
	if c.Classes < 2 {
		errs = append(errs, fmt.Errorf("classes must be at least 2, got %d", c.Classes))
	}
	if c.KernelSize > 0 && c.KernelSize <= c.ImageSize && c.PooledSize() == 0 {
		errs = append(errs, fmt.Errorf("feature maps of size %d vanish after pooling", c.ConvSize()))
	}
	if _, err := layer.ParseNormalizeMode(c.Normalize.Mode); err != nil {
		errs = append(errs, err)
	}
	if c.Normalize.Precision < 0 {
		errs = append(errs, fmt.Errorf("normalize precision must not be negative, got %d", c.Normalize.Precision))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Normalizer builds the layer normalizer described by the config.
func (c *Config) Normalizer() (layer.Normalizer, error) {
	mode, err := layer.ParseNormalizeMode(c.Normalize.Mode)
	if err != nil {
		return layer.Normalizer{}, err
	}
	return layer.Normalizer{Mode: mode, Scale: c.Normalize.Scale, Precision: c.Normalize.Precision}, nil
}

// ConvSize is the side of each feature map.
func (c *Config) ConvSize() int { return c.ImageSize - c.KernelSize + 1 }

// PooledSize is the side of each pooled map.
func (c *Config) PooledSize() int { return c.ConvSize() / layer.PoolSize }

// FlatSize is the fan-in of the hidden layer.
func (c *Config) FlatSize() int { return layer.FlatSize(c.Kernels, c.PooledSize()) }
