// Package activations provides the activation functions used by the layers.
package activations

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Tanh activation function.
// Layers keep their outputs, not their pre-activations, so the derivative
// is only offered in terms of the output.
type Tanh struct{}

// Activate computes tanh(x)
func (t Tanh) Activate(x float64) float64 {
	return math.Tanh(x)
}

// DerivativeFromOutput computes 1 - y^2
func (t Tanh) DerivativeFromOutput(y float64) float64 {
	return 1 - y*y
}

// Softmax normalizes a vector of logits into a probability distribution.
type Softmax struct{}

// ActivateBatch computes softmax for a slice of values in place.
func (s Softmax) ActivateBatch(x []float64) []float64 {
	if len(x) == 0 {
		return x
	}

	// Shift by the max for numerical stability; the result is unchanged.
	maxVal := floats.Max(x)

	sum := 0.0
	for i := range x {
		x[i] = math.Exp(x[i] - maxVal)
		sum += x[i]
	}

	floats.Scale(1/sum, x)
	return x
}
