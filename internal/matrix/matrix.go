// Package matrix provides the dense float64 grid shared by every pipeline stage.
package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a fixed-size, row-major grid of float64 values.
// Elements are stored in one contiguous slice: element (i, j) lives at data[i*cols+j].
type Matrix struct {
	rows int
	cols int
	data []float64
}

// New creates a zero-filled rows x cols matrix.
func New(rows, cols int) Matrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("matrix: negative dimensions %dx%d", rows, cols))
	}
	return Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// NewSquare creates a zero-filled n x n matrix.
func NewSquare(n int) Matrix {
	return New(n, n)
}

// FromRows copies a nested slice into a Matrix. Every row must have the same length.
func FromRows(rows [][]float64) (Matrix, error) {
	if len(rows) == 0 {
		return Matrix{}, nil
	}
	cols := len(rows[0])
	m := New(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return Matrix{}, &ShapeError{
				Op:       "from rows",
				Expected: fmt.Sprintf("%d columns", cols),
				Actual:   fmt.Sprintf("%d columns at row %d", len(row), i),
			}
		}
		copy(m.data[i*cols:(i+1)*cols], row)
	}
	return m, nil
}

// MustFromRows is like FromRows but panics on ragged input.
// Intended for literals in tests and fixed filters.
func MustFromRows(rows [][]float64) Matrix {
	m, err := FromRows(rows)
	if err != nil {
		panic(err)
	}
	return m
}

// FromSlice builds a rows x cols matrix from a row-major slice, copying it.
func FromSlice(rows, cols int, data []float64) (Matrix, error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return Matrix{}, &ShapeError{
			Op:       "from slice",
			Expected: fmt.Sprintf("%d values for %dx%d", rows*cols, rows, cols),
			Actual:   fmt.Sprintf("%d values", len(data)),
		}
	}
	m := New(rows, cols)
	copy(m.data, data)
	return m, nil
}

// FromDense copies a gonum dense matrix.
func FromDense(d *mat.Dense) Matrix {
	r, c := d.Dims()
	m := New(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.data[i*c+j] = d.At(i, j)
		}
	}
	return m
}

// Dense returns a gonum copy of the matrix.
func (m Matrix) Dense() *mat.Dense {
	if m.rows == 0 || m.cols == 0 {
		panic("matrix: gonum does not support empty matrices")
	}
	return mat.NewDense(m.rows, m.cols, m.Data())
}

// Rows returns the number of rows.
func (m Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m Matrix) Cols() int { return m.cols }

// Dims returns rows and columns.
func (m Matrix) Dims() (int, int) { return m.rows, m.cols }

// Len returns the number of elements.
func (m Matrix) Len() int { return len(m.data) }

// IsSquare reports whether rows == cols.
func (m Matrix) IsSquare() bool { return m.rows == m.cols }

// At returns element (i, j).
func (m Matrix) At(i, j int) float64 {
	return m.data[i*m.cols+j]
}

// Set writes element (i, j). Only the stage that allocated m should call it.
func (m Matrix) Set(i, j int, v float64) {
	m.data[i*m.cols+j] = v
}

// Row returns a copy of row i.
func (m Matrix) Row(i int) []float64 {
	out := make([]float64, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out
}

// Data returns a row-major copy of all elements.
func (m Matrix) Data() []float64 {
	out := make([]float64, len(m.data))
	copy(out, m.data)
	return out
}

// AppendTo appends the elements in row-major order to dst.
func (m Matrix) AppendTo(dst []float64) []float64 {
	return append(dst, m.data...)
}

// ToRows returns the matrix as a nested slice.
func (m Matrix) ToRows() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = m.Row(i)
	}
	return out
}

// Clone returns an independent copy.
func (m Matrix) Clone() Matrix {
	return Matrix{rows: m.rows, cols: m.cols, data: m.Data()}
}

// Apply returns a new matrix with f applied to every element.
func (m Matrix) Apply(f func(float64) float64) Matrix {
	out := New(m.rows, m.cols)
	for i, v := range m.data {
		out.data[i] = f(v)
	}
	return out
}

// Max returns the largest element. It returns 0 for an empty matrix.
func (m Matrix) Max() float64 {
	if len(m.data) == 0 {
		return 0
	}
	return floats.Max(m.data)
}

// Min returns the smallest element. It returns 0 for an empty matrix.
func (m Matrix) Min() float64 {
	if len(m.data) == 0 {
		return 0
	}
	return floats.Min(m.data)
}

// Equal reports exact element-wise equality and identical shape.
func (m Matrix) Equal(o Matrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	return floats.Equal(m.data, o.data)
}

// EqualApprox reports element-wise equality within tol and identical shape.
func (m Matrix) EqualApprox(o Matrix, tol float64) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		if math.Abs(m.data[i]-o.data[i]) > tol {
			return false
		}
	}
	return true
}

// String formats the matrix one row per line.
func (m Matrix) String() string {
	return fmt.Sprint(m.ToRows())
}
