package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// LoadCSV reads "label,pixel0,...,pixelN" rows from path. The image side is
// inferred from the column count (785 columns give 28x28 images).
func LoadCSV(path string, opts Options) ([]Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	defer file.Close()

	samples, err := ReadCSV(file, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return samples, nil
}

// ReadCSV decodes samples from r. Every row must have the same number of columns.
func ReadCSV(r io.Reader, opts Options) ([]Sample, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	var (
		samples []Sample
		numCols int
		side    int
	)

	for row := 0; !opts.full(len(samples)); row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if row == 0 {
			numCols = len(record)
			if side, err = squareSide(numCols - 1); err != nil {
				return nil, fmt.Errorf("invalid csv layout: %w", err)
			}
			if opts.Header {
				continue
			}
		}
		if len(record) != numCols {
			return nil, fmt.Errorf("inconsistent number of columns at row %d: expected %d, got %d", row, numCols, len(record))
		}

		label, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("failed to parse label at row %d: %w", row, err)
		}
		if !opts.keep(label) {
			continue
		}

		img := matrix.NewSquare(side)
		for j, valStr := range record[1:] {
			val, err := strconv.ParseFloat(valStr, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse value at row %d, col %d: %w", row, j+1, err)
			}
			img.Set(j/side, j%side, val)
		}
		samples = append(samples, Sample{Label: label, Image: img})
	}

	if numCols == 0 {
		return nil, fmt.Errorf("csv file is empty")
	}
	return samples, nil
}
