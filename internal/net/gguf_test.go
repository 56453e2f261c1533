package net

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteGGUF(t *testing.T) {
	m := tinyModel(t)

	for _, typ := range []GGMLType{GGMLTypeF32, GGMLTypeF16} {
		var buf bytes.Buffer
		if err := m.WriteGGUF(&buf, typ); err != nil {
			t.Fatalf("WriteGGUF(%d) failed: %v", typ, err)
		}

		var header struct {
			Magic, Version   uint32
			Tensors, KVCount uint64
		}
		if err := binary.Read(bytes.NewReader(buf.Bytes()), binary.LittleEndian, &header); err != nil {
			t.Fatalf("failed to read header: %v", err)
		}
		if header.Magic != GGUFMagic || header.Version != GGUFVersion {
			t.Errorf("bad header %+v", header)
		}
		if header.Tensors != 6 {
			t.Errorf("tensor count = %d, want 6", header.Tensors)
		}
		if header.KVCount != 10 {
			t.Errorf("kv count = %d, want 10", header.KVCount)
		}
		if buf.Len()%GGUFAlignment != 0 {
			t.Errorf("file length %d is not aligned", buf.Len())
		}
		if !bytes.Contains(buf.Bytes(), []byte("hidden.weight")) {
			t.Error("tensor name missing")
		}
	}

	if err := m.WriteGGUF(&bytes.Buffer{}, GGMLType(8)); err == nil {
		t.Error("expected an error for a quantized tensor type")
	}
}

func TestSaveGGUF(t *testing.T) {
	m := tinyModel(t)
	filename := filepath.Join(t.TempDir(), "model.gguf")

	if err := m.SaveGGUF(filename); err != nil {
		t.Fatalf("Failed to save GGUF: %v", err)
	}

	// Six tensors, each padded to 32 bytes, follow the metadata.
	info, err := os.Stat(filename)
	if err != nil {
		t.Fatalf("Failed to stat GGUF file: %v", err)
	}
	if info.Size() < 6*GGUFAlignment {
		t.Errorf("GGUF file too small: %d bytes", info.Size())
	}
}

func TestFloat32ToFloat16(t *testing.T) {
	tests := []struct {
		in   float32
		want uint16
	}{
		{0, 0},
		{1, 0x3C00},
		{0.5, 0x3800},
		{-2, 0xC000},
		{65504, 0x7BFF},
		{1e6, 0x7C00},
	}
	for _, tt := range tests {
		if got := Float32ToFloat16(tt.in); got != tt.want {
			t.Errorf("Float32ToFloat16(%v) = %#04x, want %#04x", tt.in, got, tt.want)
		}
	}
}
