package net

import (
	"bytes"
	"encoding/gob"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/FlavioCFOliveira/digitnet/internal/layer"
	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	spec := DefaultSpec()
	spec.Normalizer = layer.Normalizer{Mode: layer.FixedScale, Scale: 255, Precision: 3}
	m, err := NewRandom(spec, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))

	loaded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Spec(), loaded.Spec())
	assert.Equal(t, m.Normalizer(), loaded.Normalizer())
	assert.Equal(t, m.Weights(), loaded.Weights())

	img := matrix.NewSquare(28)
	img.Set(10, 10, 200)
	want, err := m.Predict(img)
	require.NoError(t, err)
	got, err := loaded.Predict(img)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveLoad(t *testing.T) {
	m := tinyModel(t)
	path := filepath.Join(t.TempDir(), "model.gob")

	require.NoError(t, m.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m.Weights(), loaded.Weights())

	_, err = Load(filepath.Join(t.TempDir(), "missing.gob"))
	assert.ErrorContains(t, err, "failed to open file")
}

func TestDecodeRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(modelHeader{Format: 99}))

	_, err := Decode(&buf)
	assert.ErrorContains(t, err, "unsupported model format 99")
}

func TestDecodeRejectsInconsistentWeights(t *testing.T) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	s := tinySpec()
	require.NoError(t, enc.Encode(modelHeader{
		Format: modelFormat, ImageSize: s.ImageSize, KernelSize: s.KernelSize,
		Kernels: s.Kernels, Hidden: s.Hidden, Classes: s.Classes, Scale: 15,
	}))
	w := tinyWeights()
	w.DenseWeight = nil
	require.NoError(t, enc.Encode(w))

	var shapeErr *matrix.ShapeError
	_, err := Decode(&buf)
	assert.ErrorAs(t, err, &shapeErr)
}

func TestDecodeRejectsUnknownNormalizeMode(t *testing.T) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	s := tinySpec()
	require.NoError(t, enc.Encode(modelHeader{
		Format: modelFormat, ImageSize: s.ImageSize, KernelSize: s.KernelSize,
		Kernels: s.Kernels, Hidden: s.Hidden, Classes: s.Classes,
		NormalizeMode: 7, Scale: 15,
	}))
	require.NoError(t, enc.Encode(tinyWeights()))

	_, err := Decode(&buf)
	assert.ErrorContains(t, err, "unknown normalize mode NormalizeMode(7)")
}
