// Package opt provides the gradient-descent parameter update.
package opt

import (
	"github.com/FlavioCFOliveira/hsinet/internal/layer"
)

// SGD is plain gradient descent on gradients summed over a batch.
type SGD struct {
	LearningRate float64
}

// Scale returns the coefficient applied to a gradient summed over n samples:
// -LearningRate / n.
func (s SGD) Scale(n int) float64 {
	return -s.LearningRate / float64(n)
}

// Step updates params in place: params += Scale(n) * grads.
func (s SGD) Step(params, grads *layer.Params, n int) {
	params.AddScaled(s.Scale(n), grads)
}
