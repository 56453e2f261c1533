package net

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// GGUF Constants
const (
	GGUFMagic   = 0x46554747 // "GGUF" in little-endian
	GGUFVersion = 3
)

// GGUF Value Types
type GGUFType uint32

const (
	GGUFTypeUint8   GGUFType = 0
	GGUFTypeInt8    GGUFType = 1
	GGUFTypeUint16  GGUFType = 2
	GGUFTypeInt16   GGUFType = 3
	GGUFTypeUint32  GGUFType = 4
	GGUFTypeInt32   GGUFType = 5
	GGUFTypeFloat32 GGUFType = 6
	GGUFTypeBool    GGUFType = 7
	GGUFTypeString  GGUFType = 8
	GGUFTypeArray   GGUFType = 9
	GGUFTypeUint64  GGUFType = 10
	GGUFTypeInt64   GGUFType = 11
	GGUFTypeFloat64 GGUFType = 12
)

// GGML Tensor Types
type GGMLType uint32

const (
	GGMLTypeF32 GGMLType = 0
	GGMLTypeF16 GGMLType = 1
)

// bytesPerValue returns the storage size of one element.
func (t GGMLType) bytesPerValue() (uint64, error) {
	switch t {
	case GGMLTypeF32:
		return 4, nil
	case GGMLTypeF16:
		return 2, nil
	}
	return 0, fmt.Errorf("unsupported tensor type: %d", t)
}

// GGUFAlignment is the byte alignment of the tensor data section.
const GGUFAlignment = 32

// GGUFWriter helps writing GGUF files
type GGUFWriter struct {
	w         io.Writer
	alignment uint64
	written   uint64
}

func NewGGUFWriter(w io.Writer) *GGUFWriter {
	gw := &GGUFWriter{alignment: GGUFAlignment}
	gw.w = writerFunc(func(p []byte) (int, error) {
		n, err := w.Write(p)
		gw.written += uint64(n)
		return n, err
	})
	return gw
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// Pad writes zero bytes up to the next alignment boundary.
func (gw *GGUFWriter) Pad() error {
	if rem := gw.written % gw.alignment; rem != 0 {
		_, err := gw.w.Write(make([]byte, gw.alignment-rem))
		return err
	}
	return nil
}

// WriteTensorData writes values in the given tensor type, followed by alignment padding.
func (gw *GGUFWriter) WriteTensorData(values []float64, ggmlType GGMLType) error {
	switch ggmlType {
	case GGMLTypeF32:
		buf := make([]float32, len(values))
		for i, v := range values {
			buf[i] = float32(v)
		}
		if err := binary.Write(gw.w, binary.LittleEndian, buf); err != nil {
			return err
		}
	case GGMLTypeF16:
		buf := make([]uint16, len(values))
		for i, v := range values {
			buf[i] = Float32ToFloat16(float32(v))
		}
		if err := binary.Write(gw.w, binary.LittleEndian, buf); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported tensor type: %d", ggmlType)
	}
	return gw.Pad()
}

func (gw *GGUFWriter) WriteHeader(kvCount, tensorCount uint64) error {
	if err := binary.Write(gw.w, binary.LittleEndian, uint32(GGUFMagic)); err != nil {
		return err
	}
	if err := binary.Write(gw.w, binary.LittleEndian, uint32(GGUFVersion)); err != nil {
		return err
	}
	if err := binary.Write(gw.w, binary.LittleEndian, tensorCount); err != nil {
		return err
	}
	if err := binary.Write(gw.w, binary.LittleEndian, kvCount); err != nil {
		return err
	}
	return nil
}

func (gw *GGUFWriter) WriteString(s string) error {
	n := uint64(len(s))
	if err := binary.Write(gw.w, binary.LittleEndian, n); err != nil {
		return err
	}
	_, err := gw.w.Write([]byte(s))
	return err
}

func (gw *GGUFWriter) WriteKV(key string, valType GGUFType, value interface{}) error {
	if err := gw.WriteString(key); err != nil {
		return err
	}
	if err := binary.Write(gw.w, binary.LittleEndian, uint32(valType)); err != nil {
		return err
	}

	switch valType {
	case GGUFTypeUint8:
		return binary.Write(gw.w, binary.LittleEndian, value.(uint8))
	case GGUFTypeInt8:
		return binary.Write(gw.w, binary.LittleEndian, value.(int8))
	case GGUFTypeUint16:
		return binary.Write(gw.w, binary.LittleEndian, value.(uint16))
	case GGUFTypeInt16:
		return binary.Write(gw.w, binary.LittleEndian, value.(int16))
	case GGUFTypeUint32:
		return binary.Write(gw.w, binary.LittleEndian, value.(uint32))
	case GGUFTypeInt32:
		return binary.Write(gw.w, binary.LittleEndian, value.(int32))
	case GGUFTypeFloat32:
		return binary.Write(gw.w, binary.LittleEndian, value.(float32))
	case GGUFTypeUint64:
		return binary.Write(gw.w, binary.LittleEndian, value.(uint64))
	case GGUFTypeInt64:
		return binary.Write(gw.w, binary.LittleEndian, value.(int64))
	case GGUFTypeFloat64:
		return binary.Write(gw.w, binary.LittleEndian, value.(float64))
	case GGUFTypeBool:
		var b uint8
		if value.(bool) {
			b = 1
		}
		return binary.Write(gw.w, binary.LittleEndian, b)
	case GGUFTypeString:
		return gw.WriteString(value.(string))
	default:
		return fmt.Errorf("unsupported GGUF type: %v", valType)
	}
}

func (gw *GGUFWriter) WriteTensorInfo(name string, shape []uint64, ggmlType GGMLType, offset uint64) error {
	if err := gw.WriteString(name); err != nil {
		return err
	}
	rank := uint32(len(shape))
	if err := binary.Write(gw.w, binary.LittleEndian, rank); err != nil {
		return err
	}
	// GGUF dimensions are in reverse order (last dimension first)
	for i := 0; i < int(rank); i++ {
		if err := binary.Write(gw.w, binary.LittleEndian, shape[rank-1-uint32(i)]); err != nil {
			return err
		}
	}
	if err := binary.Write(gw.w, binary.LittleEndian, uint32(ggmlType)); err != nil {
		return err
	}
	if err := binary.Write(gw.w, binary.LittleEndian, offset); err != nil {
		return err
	}
	return nil
}

// Float32ToFloat16 converts a float32 to float16 (represented as uint16)
func Float32ToFloat16(f float32) uint16 {
	bits := math.Float32bits(f)
	s := uint16((bits >> 16) & 0x8000)
	e := int16((bits >> 23) & 0xFF)
	m := bits & 0x7FFFFF

	if e == 0 {
		// Zero or denormal
		return s
	} else if e == 0xFF {
		// Inf or NaN
		if m == 0 {
			return s | 0x7C00
		}
		return s | 0x7C00 | uint16(m>>13) | 1
	}

	e -= 127 - 15
	if e >= 31 {
		// Overflow to Inf
		return s | 0x7C00
	} else if e <= 0 {
		// Underflow to denormal or zero
		if e < -10 {
			return s
		}
		m |= 0x800000
		m >>= uint32(1 - e)
		return s | uint16(m>>13)
	}

	return s | uint16(e<<10) | uint16(m>>13)
}

// ggufTensor is one named parameter array and its logical shape.
type ggufTensor struct {
	name  string
	shape []uint64
	data  []float64
}

func (m *Model) ggufTensors() []ggufTensor {
	s := m.spec
	w := m.Weights()
	k := uint64(s.KernelSize)
	return []ggufTensor{
		{"conv.weight", []uint64{uint64(s.Kernels), k, k}, w.ConvWeight},
		{"conv.bias", []uint64{uint64(s.Kernels)}, w.ConvBias},
		{"hidden.weight", []uint64{uint64(s.Hidden), uint64(s.FlatSize())}, w.DenseWeight},
		{"hidden.bias", []uint64{uint64(s.Hidden)}, w.DenseBias},
		{"output.weight", []uint64{uint64(s.Classes), uint64(s.Hidden)}, w.OutputWeight},
		{"output.bias", []uint64{uint64(s.Classes)}, w.OutputBias},
	}
}

// SaveGGUF exports the model parameters as F32 GGUF tensors.
func (m *Model) SaveGGUF(filename string) error {
	return m.SaveGGUFExt(filename, GGMLTypeF32)
}

// SaveGGUFExt exports the model parameters with the given tensor type.
func (m *Model) SaveGGUFExt(filename string, ggmlType GGMLType) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := m.WriteGGUF(file, ggmlType); err != nil {
		file.Close()
		return fmt.Errorf("failed to write gguf: %w", err)
	}
	return file.Close()
}

// WriteGGUF writes the header, metadata, tensor infos and aligned tensor data.
func (m *Model) WriteGGUF(w io.Writer, ggmlType GGMLType) error {
	size, err := ggmlType.bytesPerValue()
	if err != nil {
		return err
	}

	s := m.spec
	kvs := []struct {
		key   string
		typ   GGUFType
		value interface{}
	}{
		{"general.architecture", GGUFTypeString, "digitnet"},
		{"general.alignment", GGUFTypeUint32, uint32(GGUFAlignment)},
		{"digitnet.image_size", GGUFTypeUint32, uint32(s.ImageSize)},
		{"digitnet.kernel_size", GGUFTypeUint32, uint32(s.KernelSize)},
		{"digitnet.kernels", GGUFTypeUint32, uint32(s.Kernels)},
		{"digitnet.hidden", GGUFTypeUint32, uint32(s.Hidden)},
		{"digitnet.classes", GGUFTypeUint32, uint32(s.Classes)},
		{"digitnet.normalize.mode", GGUFTypeString, m.spec.Normalizer.Mode.String()},
		{"digitnet.normalize.scale", GGUFTypeFloat64, m.spec.Normalizer.Scale},
		{"digitnet.normalize.precision", GGUFTypeInt32, int32(m.spec.Normalizer.Precision)},
	}
	tensors := m.ggufTensors()

	gw := NewGGUFWriter(w)
	if err := gw.WriteHeader(uint64(len(kvs)), uint64(len(tensors))); err != nil {
		return err
	}
	for _, kv := range kvs {
		if err := gw.WriteKV(kv.key, kv.typ, kv.value); err != nil {
			return fmt.Errorf("failed to write %s: %w", kv.key, err)
		}
	}

	var offset uint64
	for _, t := range tensors {
		if err := gw.WriteTensorInfo(t.name, t.shape, ggmlType, offset); err != nil {
			return fmt.Errorf("failed to write tensor info %s: %w", t.name, err)
		}
		offset += alignUp(uint64(len(t.data))*size, GGUFAlignment)
	}
	if err := gw.Pad(); err != nil {
		return err
	}

	for _, t := range tensors {
		if err := gw.WriteTensorData(t.data, ggmlType); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", t.name, err)
		}
	}
	return nil
}

func alignUp(n, alignment uint64) uint64 {
	return (n + alignment - 1) / alignment * alignment
}
