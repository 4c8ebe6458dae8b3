package net

import (
	"fmt"

	"github.com/FlavioCFOliveira/hsinet/internal/opt"
	"github.com/FlavioCFOliveira/hsinet/internal/parallel"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Option configures Train and Classify.
type Option func(*options)

type options struct {
	workers   int
	callbacks []Callback
}

// WithWorkers sets the number of worker goroutines. Values below 1 select
// the hardware concurrency.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithCallbacks registers training callbacks. They run on a single goroutine
// while all workers wait, so they may read the network freely.
func WithCallbacks(cbs ...Callback) Option {
	return func(o *options) {
		o.callbacks = append(o.callbacks, cbs...)
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, apply := range opts {
		apply(&o)
	}
	if o.workers < 1 {
		o.workers = parallel.NumWorkers()
	}
	return o
}

// Train runs iters iterations of full-batch gradient descent and returns the
// mean loss of every iteration.
//
// The samples (columns of in) are split into contiguous ranges, one per
// worker. In each iteration every worker runs a forward and backward pass
// over its own range, then waits at a barrier. The last worker to arrive
// applies every worker's gradient with weights += -rate/nSamples * grad,
// records the loss and runs the callbacks; then all workers continue with
// the updated weights. Weights are only written while every worker is
// blocked at the barrier.
func (n *Network) Train(in mat.Matrix, labels []int, iters int, rate float64, opts ...Option) ([]float64, error) {
	if err := n.checkLabeled(in, labels); err != nil {
		return nil, err
	}
	if iters < 0 {
		return nil, fmt.Errorf("net: iterations must be >= 0 (got %d)", iters)
	}

	o := newOptions(opts)
	src := sliceable(in)
	nSamples := len(labels)
	ranges := parallel.Partition(nSamples, o.workers)
	sgd := opt.SGD{LearningRate: rate}

	// Per-worker state; worker w only touches index w outside the barrier.
	grads := make([]Gradients, len(ranges))
	partial := make([]float64, len(ranges))
	for w := range grads {
		grads[w] = n.NewGradients()
	}
	trace := make([]float64, iters)

	for _, cb := range o.callbacks {
		cb.OnTrainBegin(n)
	}

	barrier := parallel.NewBarrier(len(ranges), func(it int) {
		for _, g := range grads {
			n.Step(sgd, g, nSamples)
		}
		trace[it] = floats.Sum(partial) / float64(nSamples)

		for _, cb := range o.callbacks {
			cb.OnIterationEnd(it, trace[it], n)
		}
	})

	parallel.Run(ranges, func(w int, r parallel.Range) {
		x := columns(src, r.First, r.N)
		y := labels[r.First:r.End()]
		for it := 0; it < iters; it++ {
			partial[w] = n.computeGradients(x, y, grads[w])
			barrier.Wait()
		}
	})

	for _, cb := range o.callbacks {
		cb.OnTrainEnd(n)
	}

	return trace, nil
}
