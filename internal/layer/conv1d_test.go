package layer

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestConv1DOutputShape(t *testing.T) {
	tests := []struct {
		nKernels, kernelSize, inSize int
		wantPerKernel                int
	}{
		{1, 1, 5, 5},
		{1, 5, 5, 1},
		{3, 2, 6, 5},
		{10, 20, 204, 185},
	}

	for _, tt := range tests {
		c := NewConv1D(tt.nKernels, tt.kernelSize)
		shape, err := c.Init(Shape{Size: tt.inSize, Channels: 1}, Constant{0.1})
		require.NoError(t, err)

		assert.Equal(t, tt.wantPerKernel, c.OutSizePerKernel())
		assert.Equal(t, tt.wantPerKernel*tt.nKernels, c.OutSize())
		assert.Equal(t, Shape{Size: tt.wantPerKernel * tt.nKernels, Channels: tt.nKernels}, shape)

		in := mat.NewDense(tt.inSize, 3, nil)
		out := c.Forward(in)
		r, cols := out.Dims()
		assert.Equal(t, c.OutSize(), r)
		assert.Equal(t, 3, cols)
	}
}

func TestConv1DKernelTooLarge(t *testing.T) {
	c := NewConv1D(2, 6)
	_, err := c.Init(Shape{Size: 5, Channels: 1}, Constant{0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrKernelTooLarge))
}

func TestConv1DInvalidSize(t *testing.T) {
	_, err := NewConv1D(0, 2).Init(Shape{Size: 5, Channels: 1}, Constant{0})
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestConv1DForward(t *testing.T) {
	c := NewConv1D(1, 2)
	_, err := c.Init(Shape{Size: 4, Channels: 1}, Constant{0.1})
	require.NoError(t, err)

	in := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	out := c.Forward(in)

	// tanh(0.1*(x_i + x_{i+1}) + 0.1)
	expected := []float64{math.Tanh(0.4), math.Tanh(0.6), math.Tanh(0.8)}
	assert.InDeltaSlice(t, expected, mat.Col(nil, 0, out), 1e-12)
}

func TestConv1DForwardKernelLayout(t *testing.T) {
	c := NewConv1D(2, 1)
	_, err := c.Init(Shape{Size: 3, Channels: 1}, Constant{0})
	require.NoError(t, err)

	// Kernel 0 is the identity tap, kernel 1 negates.
	c.Params().Weights.Set(0, 0, 1)
	c.Params().Weights.Set(1, 0, -1)

	in := mat.NewDense(3, 1, []float64{0.1, 0.2, 0.3})
	out := c.Forward(in)

	expected := []float64{
		math.Tanh(0.1), math.Tanh(0.2), math.Tanh(0.3),
		math.Tanh(-0.1), math.Tanh(-0.2), math.Tanh(-0.3),
	}
	assert.InDeltaSlice(t, expected, mat.Col(nil, 0, out), 1e-12)
}

func TestConv1DBackward(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	c := NewConv1D(3, 3)
	_, err := c.Init(Shape{Size: 7, Channels: 1}, NewUniform(0.5, 11))
	require.NoError(t, err)

	checkLayerGradients(t, c, randomDense(rng, 7, 4, 1), 5)
}

func TestConv1DBackwardAccumulates(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	c := NewConv1D(2, 2)
	_, err := c.Init(Shape{Size: 5, Channels: 1}, NewUniform(0.5, 1))
	require.NoError(t, err)

	x := randomDense(rng, 5, 2, 1)
	out := c.Forward(x)
	g := randomDense(rng, c.OutSize(), 2, 1)

	once := c.Params().ZeroLike()
	c.Backward(x, out, g, once, false)

	twice := c.Params().ZeroLike()
	c.Backward(x, out, g, twice, false)
	c.Backward(x, out, g, twice, false)

	var doubled mat.Dense
	doubled.Scale(2, once.Weights)
	assert.True(t, mat.EqualApprox(&doubled, twice.Weights, 1e-12))
}

func TestConv1DNoInputGradient(t *testing.T) {
	c := NewConv1D(1, 2)
	_, err := c.Init(Shape{Size: 3, Channels: 1}, Constant{0.2})
	require.NoError(t, err)

	x := mat.NewDense(3, 1, []float64{1, 2, 3})
	out := c.Forward(x)
	g := mat.NewDense(2, 1, []float64{1, 1})

	assert.Nil(t, c.Backward(x, out, g, c.Params().ZeroLike(), false))
}

func TestConv1DForwardBeforeInitPanics(t *testing.T) {
	c := NewConv1D(1, 2)
	assert.Panics(t, func() { c.Forward(mat.NewDense(3, 1, nil)) })
}
