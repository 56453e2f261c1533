package layer

import (
	"fmt"
	"math"

	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// NormalizeMode selects the divisor used to rescale raw pixel intensities.
type NormalizeMode int

const (
	// FixedScale divides every element by a known constant (255 for 8-bit images).
	FixedScale NormalizeMode = iota
	// DynamicScale divides every element by the largest element of the image.
	DynamicScale
)

func (m NormalizeMode) String() string {
	switch m {
	case FixedScale:
		return "fixed"
	case DynamicScale:
		return "dynamic"
	}
	return fmt.Sprintf("NormalizeMode(%d)", int(m))
}

// Valid reports whether m is one of the defined modes.
func (m NormalizeMode) Valid() bool {
	return m == FixedScale || m == DynamicScale
}

// ParseNormalizeMode converts "fixed" or "dynamic" into a mode.
func ParseNormalizeMode(s string) (NormalizeMode, error) {
	switch s {
	case "fixed":
		return FixedScale, nil
	case "dynamic":
		return DynamicScale, nil
	}
	return 0, fmt.Errorf("unknown normalize mode %q", s)
}

// MaxIntensity is the largest raw value of an 8-bit grayscale pixel.
const MaxIntensity = 255.0

// Normalizer rescales an image before convolution.
type Normalizer struct {
	Mode NormalizeMode
	// Scale is the divisor for FixedScale; ignored by DynamicScale.
	Scale float64
	// Precision rounds every output value to this many decimal places; 0 keeps full precision.
	Precision int
}

// Normalize returns a new matrix with every element of img divided by the mode's scale.
// A zero divisor yields an all-zero matrix.
func (n Normalizer) Normalize(img matrix.Matrix) matrix.Matrix {
	out := Normalize(img, n.Mode, n.Scale)
	if n.Precision > 0 {
		p := math.Pow(10, float64(n.Precision))
		out = out.Apply(func(v float64) float64 { return math.Round(v*p) / p })
	}
	return out
}

// Normalize divides img by scale (FixedScale) or by its own maximum (DynamicScale).
// Values are not clamped; a zero divisor produces zeros instead of dividing.
func Normalize(img matrix.Matrix, mode NormalizeMode, scale float64) matrix.Matrix {
	divisor := scale
	if mode == DynamicScale {
		divisor = img.Max()
	}

	if divisor == 0 {
		return matrix.New(img.Rows(), img.Cols())
	}
	return img.Apply(func(v float64) float64 { return v / divisor })
}
