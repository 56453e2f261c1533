package matrix

import "fmt"

// ShapeError reports a structural mismatch: wrong dimensions, non-square input,
// or a parameter array too short for the units it must feed.
type ShapeError struct {
	Op       string
	Expected string
	Actual   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape error in %s: expected %s, got %s", e.Op, e.Expected, e.Actual)
}

// RequireSquare returns a ShapeError unless m is square.
func RequireSquare(op string, m Matrix) error {
	if !m.IsSquare() {
		return &ShapeError{
			Op:       op,
			Expected: "square matrix",
			Actual:   fmt.Sprintf("%dx%d", m.rows, m.cols),
		}
	}
	return nil
}
