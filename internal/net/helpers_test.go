package net

import (
	"testing"

	"github.com/FlavioCFOliveira/hsinet/internal/layer"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// newNet builds and initializes a network with seeded uniform weights.
func newNet(t testing.TB, inputSize int, seed uint64, layers ...layer.Layer) *Network {
	t.Helper()
	n, err := New(layers...)
	require.NoError(t, err)
	require.NoError(t, n.Init(layer.NewUniform(0.5, seed), inputSize))
	return n
}

// toyData returns two well separated classes of 3-feature samples, one
// sample per column.
func toyData() (*mat.Dense, []int) {
	x := mat.NewDense(3, 4, []float64{
		1.0, 0.9, 0.0, 0.0,
		0.0, 0.1, 0.0, 0.1,
		0.0, 0.0, 1.0, 0.9,
	})
	return x, []int{0, 0, 1, 1}
}

// spectra returns nSamples pseudo-random spectra of the given size with
// labels cycling through nClasses. Each class adds a bump at its own band.
func spectra(size, nSamples, nClasses int) (*mat.Dense, []int) {
	x := mat.NewDense(size, nSamples, nil)
	labels := make([]int, nSamples)
	for j := 0; j < nSamples; j++ {
		class := j % nClasses
		labels[j] = class
		peak := (class + 1) * size / (nClasses + 1)
		for i := 0; i < size; i++ {
			v := 0.1 * float64((i*7+j*13)%11) / 11
			if d := i - peak; d > -3 && d < 3 {
				v += 0.8
			}
			x.Set(i, j, v)
		}
	}
	return x, labels
}

// brokenDense doubles its weight gradient.
type brokenDense struct {
	*layer.Dense
}

func (b brokenDense) Backward(in, out, outGrad mat.Matrix, grad *layer.Params, wantInGrad bool) *mat.Dense {
	inGrad := b.Dense.Backward(in, out, outGrad, grad, wantInGrad)
	grad.Weights.Scale(2, grad.Weights)
	return inGrad
}

func paramsOf(n *Network) []*layer.Params {
	var ps []*layer.Params
	for _, l := range n.Layers() {
		if p := l.Params(); p != nil {
			ps = append(ps, p.Clone())
		}
	}
	return ps
}
