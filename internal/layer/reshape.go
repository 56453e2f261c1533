package layer

import "github.com/FlavioCFOliveira/digitnet/internal/matrix"

// Flatten concatenates maps into one vector: maps in the order given, then
// rows top to bottom, then columns left to right. Dense weights are aligned
// positionally with this order.
func Flatten(maps []matrix.Matrix) []float64 {
	out := make([]float64, 0, FlattenedLen(maps))
	for _, m := range maps {
		out = m.AppendTo(out)
	}
	return out
}

// FlattenedLen returns the sum of rows*cols over maps.
func FlattenedLen(maps []matrix.Matrix) int {
	total := 0
	for _, m := range maps {
		total += m.Len()
	}
	return total
}

// FlatSize returns the flattened length of channels maps of size x size.
func FlatSize(channels, size int) int {
	return channels * size * size
}
