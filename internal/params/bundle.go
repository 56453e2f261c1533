package params

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

// Bundle wire layout:
//
//	message Bundle { repeated Entry entries = 1; }
//	message Entry  { string name = 1; repeated double values = 2 [packed = true]; }
const (
	bundleEntryField protowire.Number = 1
	entryNameField   protowire.Number = 1
	entryValuesField protowire.Number = 2
)

// MarshalBundle encodes named arrays in name order so the output is deterministic.
func MarshalBundle(arrays map[string][]float64) []byte {
	names := make([]string, 0, len(arrays))
	for name := range arrays {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []byte
	for _, name := range names {
		var entry []byte
		entry = protowire.AppendTag(entry, entryNameField, protowire.BytesType)
		entry = protowire.AppendString(entry, name)

		values := arrays[name]
		packed := make([]byte, 0, 8*len(values))
		for _, v := range values {
			packed = protowire.AppendFixed64(packed, math.Float64bits(v))
		}
		entry = protowire.AppendTag(entry, entryValuesField, protowire.BytesType)
		entry = protowire.AppendBytes(entry, packed)

		out = protowire.AppendTag(out, bundleEntryField, protowire.BytesType)
		out = protowire.AppendBytes(out, entry)
	}
	return out
}

// UnmarshalBundle decodes a bundle. Unknown fields are skipped.
func UnmarshalBundle(b []byte) (map[string][]float64, error) {
	arrays := make(map[string][]float64)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("failed to decode bundle tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		if num != bundleEntryField || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("failed to skip field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}

		entry, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, fmt.Errorf("failed to decode bundle entry: %w", protowire.ParseError(n))
		}
		b = b[n:]

		name, values, err := unmarshalEntry(entry)
		if err != nil {
			return nil, err
		}
		arrays[name] = append(arrays[name], values...)
	}
	return arrays, nil
}

func unmarshalEntry(b []byte) (string, []float64, error) {
	var (
		name   string
		values []float64
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", nil, fmt.Errorf("failed to decode entry tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == entryNameField && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return "", nil, fmt.Errorf("failed to decode entry name: %w", protowire.ParseError(n))
			}
			name = s
			b = b[n:]
		case num == entryValuesField && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return "", nil, fmt.Errorf("failed to decode values of %q: %w", name, protowire.ParseError(n))
			}
			for len(packed) > 0 {
				bits, m := protowire.ConsumeFixed64(packed)
				if m < 0 {
					return "", nil, fmt.Errorf("failed to decode values of %q: %w", name, protowire.ParseError(m))
				}
				values = append(values, math.Float64frombits(bits))
				packed = packed[m:]
			}
			b = b[n:]
		case num == entryValuesField && typ == protowire.Fixed64Type:
			bits, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return "", nil, fmt.Errorf("failed to decode value of %q: %w", name, protowire.ParseError(n))
			}
			values = append(values, math.Float64frombits(bits))
			b = b[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return "", nil, fmt.Errorf("failed to skip entry field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	if name == "" {
		return "", nil, errors.New("bundle entry without a name")
	}
	return name, values, nil
}

// WriteBundle writes the encoded bundle to w.
func WriteBundle(w io.Writer, arrays map[string][]float64) error {
	if _, err := w.Write(MarshalBundle(arrays)); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	return nil
}

// ReadBundle reads and decodes a whole bundle from r.
func ReadBundle(r io.Reader) (map[string][]float64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	return UnmarshalBundle(b)
}

// BundleSource serves arrays from a decoded bundle file.
type BundleSource struct {
	Path   string
	arrays Map
}

// OpenBundle reads and decodes the bundle at path.
func OpenBundle(path string) (*BundleSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	defer file.Close()

	arrays, err := ReadBundle(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle %s: %w", path, err)
	}
	return &BundleSource{Path: path, arrays: arrays}, nil
}

// Load returns a copy of the named array.
func (s *BundleSource) Load(name string) ([]float64, error) {
	v, err := s.arrays.Load(name)
	if err != nil {
		return nil, &SourceError{Path: s.Path + "#" + name, Err: os.ErrNotExist}
	}
	return v, nil
}

// Names lists the arrays in the bundle, sorted.
func (s *BundleSource) Names() []string {
	names := make([]string, 0, len(s.arrays))
	for name := range s.arrays {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
