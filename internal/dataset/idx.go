package dataset

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// IDX magic numbers for image and label files.
const (
	ImageMagic = 2051
	LabelMagic = 2049
)

// maxImagePixels bounds rows*cols of one IDX image.
const maxImagePixels = 1 << 24

var gzipMagic = []byte{0x1f, 0x8b}

// openIDX opens path and transparently decompresses gzip files.
func openIDX(path string) (io.Reader, func() error, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, &SourceError{Path: path, Err: err}
	}

	br := bufio.NewReader(file)
	head, err := br.Peek(2)
	if err != nil {
		file.Close()
		return nil, nil, &SourceError{Path: path, Err: err}
	}
	if !bytes.Equal(head, gzipMagic) {
		return br, file.Close, nil
	}

	gz, err := gzip.NewReader(br)
	if err != nil {
		file.Close()
		return nil, nil, &SourceError{Path: path, Err: err}
	}
	return gz, func() error {
		gz.Close()
		return file.Close()
	}, nil
}

// LoadIDX reads an IDX image file and its IDX label file, raw or gzip'd.
func LoadIDX(imagesPath, labelsPath string, opts Options) ([]Sample, error) {
	labels, err := loadLabels(labelsPath)
	if err != nil {
		return nil, err
	}

	r, closeFn, err := openIDX(imagesPath)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	samples, err := readImages(r, labels, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", imagesPath, err)
	}
	return samples, nil
}

func loadLabels(path string) ([]uint8, error) {
	r, closeFn, err := openIDX(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var magic, numLabels int32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read label header: %w", err)
	}
	if magic != LabelMagic {
		return nil, fmt.Errorf("invalid magic number: %d", magic)
	}
	if err := binary.Read(r, binary.BigEndian, &numLabels); err != nil {
		return nil, fmt.Errorf("failed to read label header: %w", err)
	}

	if numLabels < 0 {
		return nil, fmt.Errorf("invalid label count: %d", numLabels)
	}

	// The header count is untrusted; read at most that many bytes.
	labels, err := io.ReadAll(io.LimitReader(r, int64(numLabels)))
	if err != nil {
		return nil, fmt.Errorf("failed to read %d labels: %w", numLabels, err)
	}
	if len(labels) != int(numLabels) {
		return nil, fmt.Errorf("failed to read %d labels: %w", numLabels, io.ErrUnexpectedEOF)
	}
	return labels, nil
}

func readImages(r io.Reader, labels []uint8, opts Options) ([]Sample, error) {
	var magic, numImages, rows, cols int32
	for _, v := range []*int32{&magic, &numImages, &rows, &cols} {
		if err := binary.Read(r, binary.BigEndian, v); err != nil {
			return nil, fmt.Errorf("failed to read image header: %w", err)
		}
	}
	if magic != ImageMagic {
		return nil, fmt.Errorf("invalid magic number: %d", magic)
	}
	if numImages < 0 {
		return nil, fmt.Errorf("invalid image count: %d", numImages)
	}
	if rows <= 0 || cols <= 0 || int64(rows)*int64(cols) > maxImagePixels {
		return nil, fmt.Errorf("invalid image size: %dx%d", rows, cols)
	}
	if int(numImages) != len(labels) {
		return nil, fmt.Errorf("image count %d does not match label count %d", numImages, len(labels))
	}

	pixels := make([]uint8, int(rows)*int(cols))
	data := make([]float64, len(pixels))
	var samples []Sample
	for i := 0; i < int(numImages) && !opts.full(len(samples)); i++ {
		if _, err := io.ReadFull(r, pixels); err != nil {
			return nil, fmt.Errorf("failed to read image %d: %w", i, err)
		}
		label := int(labels[i])
		if !opts.keep(label) {
			continue
		}
		for j, p := range pixels {
			data[j] = float64(p)
		}
		img, err := matrix.FromSlice(int(rows), int(cols), data)
		if err != nil {
			return nil, err
		}
		samples = append(samples, Sample{Label: label, Image: img})
	}
	return samples, nil
}
