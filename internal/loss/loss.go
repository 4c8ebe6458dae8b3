// Package loss provides the classification loss and the gradient seed that
// starts backpropagation.
package loss

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// eps clips probabilities away from zero before taking logs or reciprocals.
const eps = 1e-10

// NLL is the negative log-likelihood of the true class under a column-wise
// probability distribution (cross entropy against a one-hot target).
type NLL struct{}

// Forward returns the summed loss -sum_j log(p[label_j, j]) over all columns.
// Callers divide by the sample count for a mean. Probabilities are clipped
// at 1e-10, so each sample contributes at most -log(1e-10), about 23.
func (NLL) Forward(probs mat.Matrix, labels []int) float64 {
	_, cols := probs.Dims()
	if cols != len(labels) {
		panic(fmt.Sprintf("NLL: %d columns but %d labels", cols, len(labels)))
	}

	var sum float64
	for j, label := range labels {
		sum -= math.Log(clip(probs.At(label, j)))
	}
	return sum
}

// Backward returns dL/dp: zero everywhere except -1/p at each true label.
// This is the seed fed into the last layer's backward pass.
func (n NLL) Backward(probs mat.Matrix, labels []int) *mat.Dense {
	rows, cols := probs.Dims()
	grad := mat.NewDense(rows, cols, nil)
	n.BackwardInPlace(probs, labels, grad)
	return grad
}

// BackwardInPlace writes the seed into grad, which must match probs' shape.
func (NLL) BackwardInPlace(probs mat.Matrix, labels []int, grad *mat.Dense) {
	_, cols := probs.Dims()
	if cols != len(labels) {
		panic(fmt.Sprintf("NLL: %d columns but %d labels", cols, len(labels)))
	}

	grad.Zero()
	for j, label := range labels {
		grad.Set(label, j, -1/clip(probs.At(label, j)))
	}
}

func clip(p float64) float64 {
	if p < eps {
		return eps
	}
	return p
}
