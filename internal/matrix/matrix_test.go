package matrix

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFromRows(t *testing.T) {
	m, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.False(t, m.IsSquare())
	assert.Equal(t, 6.0, m.At(1, 2))
	assert.Equal(t, []float64{4, 5, 6}, m.Row(1))
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, m.Data())
}

func TestFromRowsRagged(t *testing.T) {
	_, err := FromRows([][]float64{{1, 2}, {3}})
	require.Error(t, err)

	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Contains(t, err.Error(), "2 columns")
	assert.Contains(t, err.Error(), "1 columns at row 1")
}

func TestFromSlice(t *testing.T) {
	m, err := FromSlice(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, m.ToRows())

	_, err = FromSlice(3, 3, []float64{1, 2})
	var shapeErr *ShapeError
	assert.True(t, errors.As(err, &shapeErr))
}

func TestCopiesAreIndependent(t *testing.T) {
	src := []float64{1, 2, 3, 4}
	m, err := FromSlice(2, 2, src)
	require.NoError(t, err)

	src[0] = 100
	assert.Equal(t, 1.0, m.At(0, 0))

	data := m.Data()
	data[1] = 100
	assert.Equal(t, 2.0, m.At(0, 1))

	c := m.Clone()
	c.Set(1, 1, -1)
	assert.Equal(t, 4.0, m.At(1, 1))
}

func TestApplyDoesNotMutate(t *testing.T) {
	m := MustFromRows([][]float64{{-1, 2}, {3, -4}})
	doubled := m.Apply(func(v float64) float64 { return 2 * v })

	assert.Equal(t, [][]float64{{-2, 4}, {6, -8}}, doubled.ToRows())
	assert.Equal(t, [][]float64{{-1, 2}, {3, -4}}, m.ToRows())
}

func TestMaxMin(t *testing.T) {
	m := MustFromRows([][]float64{{-1, 2}, {7, -4}})
	assert.Equal(t, 7.0, m.Max())
	assert.Equal(t, -4.0, m.Min())
	assert.Equal(t, 0.0, Matrix{}.Max())
}

func TestEqual(t *testing.T) {
	a := MustFromRows([][]float64{{1, 2}, {3, 4}})
	b := MustFromRows([][]float64{{1, 2}, {3, 4.0000001}})

	assert.True(t, a.Equal(a.Clone()))
	assert.False(t, a.Equal(b))
	assert.True(t, a.EqualApprox(b, 1e-6))
	assert.False(t, a.EqualApprox(New(2, 3), 1))
}

func TestDenseRoundTrip(t *testing.T) {
	m := MustFromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	d := m.Dense()

	var tr mat.Dense
	tr.CloneFrom(d.T())
	back := FromDense(&tr)

	assert.Equal(t, [][]float64{{1, 4}, {2, 5}, {3, 6}}, back.ToRows())
}

func TestRequireSquare(t *testing.T) {
	assert.NoError(t, RequireSquare("test", NewSquare(3)))

	err := RequireSquare("test", New(2, 3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2x3")
}
