// Package render writes matrices with values in [0, 1] as grayscale PNG images.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// DomainError reports a value outside [0, 1].
type DomainError struct {
	Row, Col int
	Value    float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("value %v at (%d, %d) is outside [0, 1]", e.Value, e.Row, e.Col)
}

// Image converts m to an 8-bit grayscale image, each cell becoming a
// scale x scale block of value*255 truncated.
func Image(m matrix.Matrix, scale int) (*image.Gray, error) {
	if scale < 1 {
		return nil, fmt.Errorf("scale must be at least 1, got %d", scale)
	}
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := m.At(i, j); !(v >= 0 && v <= 1) {
				return nil, &DomainError{Row: i, Col: j, Value: v}
			}
		}
	}

	img := image.NewGray(image.Rect(0, 0, cols*scale, rows*scale))
	for y := 0; y < rows*scale; y++ {
		for x := 0; x < cols*scale; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(m.At(y/scale, x/scale) * 255)})
		}
	}
	return img, nil
}

// Encode writes m as PNG to w.
func Encode(w io.Writer, m matrix.Matrix, scale int) error {
	img, err := Image(m, scale)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// SaveGray writes m as a PNG file at path.
func SaveGray(m matrix.Matrix, path string, scale int) error {
	img, err := Image(m, scale)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

// Rescale maps m linearly onto [0, 1] using its own minimum and maximum.
// A constant matrix maps to zeros. Feature maps are rescaled this way before rendering.
func Rescale(m matrix.Matrix) matrix.Matrix {
	lo, hi := m.Min(), m.Max()
	if hi == lo {
		return matrix.New(m.Rows(), m.Cols())
	}
	return m.Apply(func(v float64) float64 { return (v - lo) / (hi - lo) })
}
