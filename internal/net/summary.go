package net

import (
	"fmt"
	"io"
)

// Summary prints the layer table of the model to w.
func (m *Model) Summary(w io.Writer) {
	s := m.spec
	rows := []struct {
		name   string
		shape  string
		params int
	}{
		{"Normalize", fmt.Sprintf("(%d, %d)", s.ImageSize, s.ImageSize), 0},
		{"Conv2D_" + m.conv.Activation().Name(), fmt.Sprintf("(%d, %d, %d)", s.Kernels, s.ConvSize(), s.ConvSize()), s.Kernels * (s.KernelSize*s.KernelSize + 1)},
		{"MaxPool2D", fmt.Sprintf("(%d, %d, %d)", s.Kernels, s.PooledSize(), s.PooledSize()), 0},
		{"Flatten", fmt.Sprintf("(%d)", s.FlatSize()), 0},
		{"Dense_" + m.hidden.Activation().Name(), fmt.Sprintf("(%d)", s.Hidden), s.Hidden * (s.FlatSize() + 1)},
		{"Dense_" + m.output.Activation().Name(), fmt.Sprintf("(%d)", s.Classes), s.Classes * (s.Hidden + 1)},
		{"Softmax", fmt.Sprintf("(%d)", s.Classes), 0},
	}

	fmt.Fprintln(w, "Model: digitnet")
	fmt.Fprintln(w, "_________________________________________________________________")
	fmt.Fprintf(w, "%-25s %-20s %-10s\n", "Layer (type)", "Output Shape", "Param #")
	fmt.Fprintln(w, "=================================================================")

	totalParams := 0
	for _, r := range rows {
		totalParams += r.params
		fmt.Fprintf(w, "%-25s %-20s %-10d\n", r.name, r.shape, r.params)
	}
	fmt.Fprintln(w, "=================================================================")
	fmt.Fprintf(w, "Total params: %d\n", totalParams)
	fmt.Fprintf(w, "Normalize: %s (scale %g, precision %d)\n", m.spec.Normalizer.Mode, m.spec.Normalizer.Scale, m.spec.Normalizer.Precision)
	fmt.Fprintln(w, "_________________________________________________________________")
}
