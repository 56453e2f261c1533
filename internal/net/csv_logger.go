package net

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// CSVLogger writes one row per evaluated sample:
// iteration,label,predicted,correct,accuracy.
type CSVLogger struct {
	BaseCallback
	Filename string
	Append   bool

	file   *os.File
	writer *csv.Writer
	err    error
}

// NewCSVLogger creates a logger that opens filename when evaluation begins.
func NewCSVLogger(filename string, append bool) *CSVLogger {
	return &CSVLogger{
		Filename: filename,
		Append:   append,
	}
}

// NewCSVWriterLogger creates a logger writing to w. The header is always written.
func NewCSVWriterLogger(w io.Writer) *CSVLogger {
	c := &CSVLogger{writer: csv.NewWriter(w)}
	c.writeHeader()
	return c
}

var csvHeader = []string{"iteration", "label", "predicted", "correct", "accuracy"}

func (c *CSVLogger) writeHeader() {
	c.setErr(c.writer.Write(csvHeader))
}

func (c *CSVLogger) setErr(err error) {
	if err != nil && c.err == nil {
		c.err = err
	}
}

// Err returns the first open or write error, if any.
func (c *CSVLogger) Err() error { return c.err }

// OnEvalBegin opens Filename unless a writer was supplied, and writes the header.
func (c *CSVLogger) OnEvalBegin(r *Report) {
	if c.writer != nil || c.Filename == "" {
		return
	}

	mode := os.O_CREATE | os.O_WRONLY
	if c.Append {
		mode |= os.O_APPEND
	} else {
		mode |= os.O_TRUNC
	}

	file, err := os.OpenFile(c.Filename, mode, 0644)
	if err != nil {
		c.setErr(fmt.Errorf("failed to open file %s: %w", c.Filename, err))
		return
	}
	c.file = file
	c.writer = csv.NewWriter(file)

	// Write header if not appending or if file is empty
	info, err := file.Stat()
	if err == nil && (info.Size() == 0 || !c.Append) {
		c.writeHeader()
	}
}

// OnSample writes one row per sample.
func (c *CSVLogger) OnSample(res SampleResult) {
	if c.writer == nil {
		return
	}

	record := []string{
		strconv.Itoa(res.Iteration),
		strconv.Itoa(res.Label),
		strconv.Itoa(res.Prediction.Class),
		strconv.FormatBool(res.Correct),
		fmt.Sprintf("%.2f", res.Accuracy),
	}
	c.setErr(c.writer.Write(record))
}

// OnEvalEnd flushes the rows and closes the file it opened.
func (c *CSVLogger) OnEvalEnd(r *Report) {
	if c.writer == nil {
		return
	}
	c.writer.Flush()
	c.setErr(c.writer.Error())
	if c.file != nil {
		c.setErr(c.file.Close())
		c.file = nil
		c.writer = nil
	}
}
