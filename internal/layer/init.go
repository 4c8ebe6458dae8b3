package layer

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Initializer fills freshly allocated parameter storage.
// Layers call it once for their weights and once for their biases,
// in network order, so a stateful initializer yields reproducible weights.
type Initializer interface {
	Fill(values []float64)
}

// Constant sets every parameter to Value.
type Constant struct {
	Value float64
}

// Fill implements Initializer.
func (c Constant) Fill(values []float64) {
	for i := range values {
		values[i] = c.Value
	}
}

// Uniform draws parameters from a symmetric uniform distribution.
type Uniform struct {
	dist distuv.Uniform
}

// NewUniform creates a uniform initializer drawing from U(-max, max).
// The seed is owned by the caller; equal seeds give equal weights.
func NewUniform(max float64, seed uint64) *Uniform {
	return &Uniform{
		dist: distuv.Uniform{
			Min: -max,
			Max: max,
			Src: rand.NewSource(seed),
		},
	}
}

// Fill implements Initializer.
func (u *Uniform) Fill(values []float64) {
	for i := range values {
		values[i] = u.dist.Rand()
	}
}
