package layer

import (
	"math/rand"
	"testing"
)

func benchmarkLayer(b *testing.B, l Layer, in Shape, cols int) {
	if _, err := l.Init(in, NewUniform(0.05, 1)); err != nil {
		b.Fatal(err)
	}
	rng := rand.New(rand.NewSource(1))
	x := randomDense(rng, in.Size, cols, 1)
	out := l.Forward(x)
	r, c := out.Dims()
	g := randomDense(rng, r, c, 1)

	var grad *Params
	if p := l.Params(); p != nil {
		grad = p.ZeroLike()
	}

	b.Run("Forward", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			l.Forward(x)
		}
	})
	b.Run("Backward", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			l.Backward(x, out, g, grad, true)
		}
	})
}

func BenchmarkConv1D(b *testing.B) {
	benchmarkLayer(b, NewConv1D(10, 20), Shape{Size: 204, Channels: 1}, 64)
}

func BenchmarkMaxPool1D(b *testing.B) {
	benchmarkLayer(b, NewMaxPool1D(5), Shape{Size: 1850, Channels: 10}, 64)
}

func BenchmarkDense(b *testing.B) {
	benchmarkLayer(b, NewDense(100), Shape{Size: 370, Channels: 1}, 64)
}

func BenchmarkSoftmaxOutput(b *testing.B) {
	benchmarkLayer(b, NewSoftmaxOutput(16), Shape{Size: 100, Channels: 1}, 64)
}
