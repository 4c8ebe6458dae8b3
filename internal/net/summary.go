package net

import (
	"fmt"
	"io"
	"strings"
)

// Summary writes a table of the network's layers, their output shapes and
// parameter counts. The network must be initialized.
func (n *Network) Summary(w io.Writer) error {
	if !n.initialized {
		return ErrNotInitialized
	}

	rule := strings.Repeat("_", 65)
	fmt.Fprintln(w, "Model: Network")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-25s %-20s %-10s\n", "Layer (type)", "Output Shape", "Param #")
	fmt.Fprintln(w, strings.Repeat("=", 65))

	fmt.Fprintf(w, "%-25s %-20s %-10d\n", "Input", fmt.Sprintf("(%d)", n.inputSize), 0)
	total := 0
	for i, l := range n.layers {
		params := 0
		if p := l.Params(); p != nil {
			params = p.Len()
		}
		total += params

		shape := n.shapes[i]
		outShape := fmt.Sprintf("(%d)", shape.Size)
		if shape.Channels > 1 {
			outShape = fmt.Sprintf("(%d x %d)", shape.Channels, shape.PerChannel())
		}
		fmt.Fprintf(w, "%-25s %-20s %-10d\n", fmt.Sprintf("%s_%d", l.Name(), i), outShape, params)
	}
	fmt.Fprintln(w, strings.Repeat("=", 65))
	_, err := fmt.Fprintf(w, "Total params: %d\n%s\n", total, rule)
	return err
}
