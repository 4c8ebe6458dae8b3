package layer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// randomDense returns an r x c matrix with entries in [-scale, scale).
func randomDense(rng *rand.Rand, r, c int, scale float64) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * scale
	}
	return mat.NewDense(r, c, data)
}

// probe reduces a layer output to a scalar: sum(g .* forward(x)).
// Its gradient w.r.t. the output is g itself, which makes it a convenient
// target for checking Backward against finite differences.
func probe(l Layer, x mat.Matrix, g *mat.Dense) float64 {
	var prod mat.Dense
	prod.MulElem(l.Forward(x), g)
	return mat.Sum(&prod)
}

// checkLayerGradients compares Backward against central differences for every
// parameter and every input entry.
func checkLayerGradients(t *testing.T, l Layer, x *mat.Dense, seed int64) {
	t.Helper()
	const h = 1e-6
	const tol = 1e-6

	rng := rand.New(rand.NewSource(seed))
	out := l.Forward(x)
	r, c := out.Dims()
	g := randomDense(rng, r, c, 1)

	var grad *Params
	if p := l.Params(); p != nil {
		grad = p.ZeroLike()
	}
	inGrad := l.Backward(x, out, g, grad, true)
	require.NotNil(t, inGrad)

	numeric := func(set func(float64), v0 float64) float64 {
		set(v0 + h)
		plus := probe(l, x, g)
		set(v0 - h)
		minus := probe(l, x, g)
		set(v0)
		return (plus - minus) / (2 * h)
	}

	if p := l.Params(); p != nil {
		pr, pc := p.Weights.Dims()
		for i := 0; i < pr; i++ {
			for j := 0; j < pc; j++ {
				fd := numeric(func(v float64) { p.Weights.Set(i, j, v) }, p.Weights.At(i, j))
				assert.InDelta(t, fd, grad.Weights.At(i, j), tol, "%s weight (%d,%d)", l.Name(), i, j)
			}
			fd := numeric(func(v float64) { p.Biases.SetVec(i, v) }, p.Biases.AtVec(i))
			assert.InDelta(t, fd, grad.Biases.AtVec(i), tol, "%s bias %d", l.Name(), i)
		}
	}

	xr, xc := x.Dims()
	for i := 0; i < xr; i++ {
		for j := 0; j < xc; j++ {
			fd := numeric(func(v float64) { x.Set(i, j, v) }, x.At(i, j))
			assert.InDelta(t, fd, inGrad.At(i, j), tol, "%s input (%d,%d)", l.Name(), i, j)
		}
	}
}
