// Package params reads the flat parameter arrays of a trained model.
package params

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Source yields a named flat array of parameters.
type Source interface {
	Load(name string) ([]float64, error)
}

// SourceError reports a parameter file or entry that is missing or unreadable.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("parameter source %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// TextFile loads one value per non-empty line from files under Dir.
type TextFile struct {
	Dir string
	// Decimals rounds every value to this many decimal places when positive.
	Decimals int
}

// Load reads Dir/name.
func (s TextFile) Load(name string) ([]float64, error) {
	path := filepath.Join(s.Dir, name)
	file, err := os.Open(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	defer file.Close()

	values, err := ReadText(file, s.Decimals)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return values, nil
}

// ReadText parses one float per line, skipping blank lines.
func ReadText(r io.Reader, decimals int) ([]float64, error) {
	var values []float64
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", line, err)
		}
		values = append(values, Round(v, decimals))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read parameters: %w", err)
	}
	return values, nil
}

// WriteText writes one value per line.
func WriteText(w io.Writer, values []float64) error {
	bw := bufio.NewWriter(w)
	for _, v := range values {
		if _, err := bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Round rounds v half away from zero to the given number of decimals.
// Non-positive decimals return v unchanged.
func Round(v float64, decimals int) float64 {
	if decimals <= 0 {
		return v
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Map is an in-memory Source.
type Map map[string][]float64

// Load returns a copy of the named array.
func (m Map) Load(name string) ([]float64, error) {
	v, ok := m[name]
	if !ok {
		return nil, &SourceError{Path: name, Err: os.ErrNotExist}
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out, nil
}
