package net

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/FlavioCFOliveira/digitnet/internal/layer"
)

// modelFormat is bumped whenever the gob layout changes.
const modelFormat = 1

// modelHeader is the architecture part of a saved model.
type modelHeader struct {
	Format        int
	ImageSize     int
	KernelSize    int
	Kernels       int
	Hidden        int
	Classes       int
	NormalizeMode int
	Scale         float64
	Precision     int
}

// Save saves the model to a file using gob encoding.
func (m *Model) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := m.Encode(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Encode writes the model to an io.Writer using gob encoding.
func (m *Model) Encode(w io.Writer) error {
	encoder := gob.NewEncoder(w)

	s := m.spec
	header := modelHeader{
		Format:        modelFormat,
		ImageSize:     s.ImageSize,
		KernelSize:    s.KernelSize,
		Kernels:       s.Kernels,
		Hidden:        s.Hidden,
		Classes:       s.Classes,
		NormalizeMode: int(m.spec.Normalizer.Mode),
		Scale:         m.spec.Normalizer.Scale,
		Precision:     m.spec.Normalizer.Precision,
	}
	if err := encoder.Encode(header); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	if err := encoder.Encode(m.Weights()); err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}
	return nil
}

// Load loads a model from a file written by Save.
func Load(filename string) (*Model, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Decode(file)
}

// Decode reads a model written by Encode and rebuilds it with New.
func Decode(r io.Reader) (*Model, error) {
	decoder := gob.NewDecoder(r)

	var header modelHeader
	if err := decoder.Decode(&header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if header.Format != modelFormat {
		return nil, fmt.Errorf("unsupported model format %d", header.Format)
	}

	var w Weights
	if err := decoder.Decode(&w); err != nil {
		return nil, fmt.Errorf("failed to read parameters: %w", err)
	}

	spec := Spec{
		ImageSize:  header.ImageSize,
		KernelSize: header.KernelSize,
		Kernels:    header.Kernels,
		Hidden:     header.Hidden,
		Classes:    header.Classes,
		Normalizer: layer.Normalizer{
			Mode:      layer.NormalizeMode(header.NormalizeMode),
			Scale:     header.Scale,
			Precision: header.Precision,
		},
	}
	return New(spec, w)
}
