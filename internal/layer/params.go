package layer

import (
	"gonum.org/v1/gonum/mat"
)

// Params is the trainable state of a layer: a weight matrix with one row per
// output and one column per input, and one bias per output.
// The same type holds parameter gradients.
type Params struct {
	Weights *mat.Dense
	Biases  *mat.VecDense
}

// NewParams allocates zeroed parameters for a layer with out outputs and in inputs.
func NewParams(out, in int) *Params {
	return &Params{
		Weights: mat.NewDense(out, in, nil),
		Biases:  mat.NewVecDense(out, nil),
	}
}

// ZeroLike allocates zeroed parameters with the same shape as p.
func (p *Params) ZeroLike() *Params {
	r, c := p.Weights.Dims()
	return NewParams(r, c)
}

// Clone returns a deep copy of p.
func (p *Params) Clone() *Params {
	return &Params{
		Weights: mat.DenseCopyOf(p.Weights),
		Biases:  mat.VecDenseCopyOf(p.Biases),
	}
}

// Reset zeroes all entries in place.
func (p *Params) Reset() {
	p.Weights.Zero()
	p.Biases.Zero()
}

// AddScaled performs p += alpha * g in place.
func (p *Params) AddScaled(alpha float64, g *Params) {
	p.Weights.Apply(func(i, j int, v float64) float64 {
		return v + alpha*g.Weights.At(i, j)
	}, p.Weights)
	p.Biases.AddScaledVec(p.Biases, alpha, g.Biases)
}

// Len returns the number of trainable values.
func (p *Params) Len() int {
	r, c := p.Weights.Dims()
	return r*c + p.Biases.Len()
}

// fill initializes weights and biases with init.
func (p *Params) fill(init Initializer) {
	init.Fill(p.Weights.RawMatrix().Data)
	init.Fill(p.Biases.RawVector().Data)
}
