package params

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadText(t *testing.T) {
	values, err := ReadText(strings.NewReader("0.123\n\n-1.96\n  2  \n"), 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.123, -1.96, 2}, values)
}

func TestReadTextRounds(t *testing.T) {
	values, err := ReadText(strings.NewReader("0.123\n-1.96\n0.25\n"), 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, -2, 0.3}, values)
}

func TestReadTextBadLine(t *testing.T) {
	_, err := ReadText(strings.NewReader("1\nabc\n"), 0)
	assert.ErrorContains(t, err, "line 2")
}

func TestRound(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     float64
	}{
		{0.456, 2, 0.46},
		{0.456, 1, 0.5},
		{-0.45, 1, -0.5},
		{0.456, 0, 0.456},
		{0.456, -3, 0.456},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round(tt.v, tt.decimals), "Round(%v, %d)", tt.v, tt.decimals)
	}
}

func TestTextFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, []float64{0.5, -0.25, 1e-3}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conv_bias.txt"), buf.Bytes(), 0o644))

	values, err := TextFile{Dir: dir}.Load("conv_bias.txt")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -0.25, 1e-3}, values)
}

func TestTextFileMissing(t *testing.T) {
	_, err := TextFile{Dir: t.TempDir()}.Load("absent.txt")

	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.True(t, strings.HasSuffix(srcErr.Path, "absent.txt"))
}

func TestMapSource(t *testing.T) {
	m := Map{"w": {1, 2}}

	v, err := m.Load("w")
	require.NoError(t, err)
	v[0] = 99
	assert.Equal(t, 1.0, m["w"][0], "Load must return a copy")

	_, err = m.Load("b")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
