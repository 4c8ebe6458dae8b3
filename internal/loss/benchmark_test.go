package loss

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// benchmarkProbs returns a 16x1000 matrix of positive values and random labels.
func benchmarkProbs() (*mat.Dense, []int) {
	rng := rand.New(rand.NewSource(1))
	probs := mat.NewDense(16, 1000, nil)
	probs.Apply(func(_, _ int, _ float64) float64 { return rng.Float64() + 1e-3 }, probs)

	labels := make([]int, 1000)
	for i := range labels {
		labels[i] = rng.Intn(16)
	}
	return probs, labels
}

// BenchmarkNLLForward benchmarks the loss over a 1000-sample batch.
func BenchmarkNLLForward(b *testing.B) {
	probs, labels := benchmarkProbs()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = NLL{}.Forward(probs, labels)
	}
}

// BenchmarkNLLBackwardInPlace benchmarks seeding into a reused buffer.
func BenchmarkNLLBackwardInPlace(b *testing.B) {
	probs, labels := benchmarkProbs()
	grad := mat.NewDense(16, 1000, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NLL{}.BackwardInPlace(probs, labels, grad)
	}
}
