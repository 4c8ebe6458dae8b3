package net

import (
	"github.com/FlavioCFOliveira/hsinet/internal/parallel"
	"gonum.org/v1/gonum/mat"
)

// Classify returns the most probable class of every column of in.
// Columns are split across workers, each running a read-only forward pass
// over its range and writing into its own slice of the result.
func (n *Network) Classify(in mat.Matrix, opts ...Option) ([]int, error) {
	if err := n.checkInput(in); err != nil {
		return nil, err
	}

	o := newOptions(opts)
	src := sliceable(in)
	_, nSamples := in.Dims()
	labels := make([]int, nSamples)

	parallel.Run(parallel.Partition(nSamples, o.workers), func(_ int, r parallel.Range) {
		outs := n.Forward(columns(src, r.First, r.N))
		argmaxColumns(outs[len(outs)-1], labels[r.First:r.End()])
	})

	return labels, nil
}

// argmaxColumns writes the row index of the largest value of each column of
// probs into labels. Ties resolve to the lowest index.
func argmaxColumns(probs mat.Matrix, labels []int) {
	rows, _ := probs.Dims()
	for j := range labels {
		best := 0
		maxVal := probs.At(0, j)
		for i := 1; i < rows; i++ {
			if v := probs.At(i, j); v > maxVal {
				best = i
				maxVal = v
			}
		}
		labels[j] = best
	}
}
