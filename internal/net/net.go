// Package net provides the network composition engine: an ordered chain of
// layers with full forward and backward passes, data-parallel training,
// parallel classification and gradient checking.
package net

import (
	"errors"
	"fmt"

	"github.com/FlavioCFOliveira/hsinet/internal/layer"
	"github.com/FlavioCFOliveira/hsinet/internal/loss"
	"github.com/FlavioCFOliveira/hsinet/internal/opt"
	"gonum.org/v1/gonum/mat"
)

// Precondition errors. They report caller misconfiguration and are never retried.
var (
	ErrTooFewLayers   = errors.New("net: a network needs at least two layers")
	ErrNotInitialized = errors.New("net: network is not initialized")
	ErrInputSize      = errors.New("net: input rows do not match network input size")
	ErrLabelCount     = errors.New("net: label count does not match sample count")
	ErrLabelRange     = errors.New("net: label out of range")
	ErrNoSamples      = errors.New("net: no samples")
)

// Network is a fixed sequence of layers. Its structure never changes after
// New; Init fills the weights, training mutates them.
type Network struct {
	layers []layer.Layer
	shapes []layer.Shape

	inputSize   int
	initialized bool

	loss loss.NLL
}

// Gradients holds one parameter gradient per layer, nil for layers
// without parameters.
type Gradients []*layer.Params

// New creates a network from an ordered list of layers.
func New(layers ...layer.Layer) (*Network, error) {
	if len(layers) < 2 {
		return nil, fmt.Errorf("%w (got %d)", ErrTooFewLayers, len(layers))
	}
	return &Network{
		layers: layers,
		shapes: make([]layer.Shape, len(layers)),
	}, nil
}

// Init threads inputSize through every layer, each deriving its shape from
// the previous one, and fills the parameters with init.
// Calling Init again re-initializes the weights.
func (n *Network) Init(init layer.Initializer, inputSize int) error {
	n.initialized = false

	shape := layer.Shape{Size: inputSize, Channels: 1}
	for i, l := range n.layers {
		out, err := l.Init(shape, init)
		if err != nil {
			return fmt.Errorf("net: init layer %d (%s): %w", i, l.Name(), err)
		}
		n.shapes[i] = out
		shape = out
	}

	n.inputSize = inputSize
	n.initialized = true
	return nil
}

// Forward runs every layer over the batch and returns each layer's output.
// Layer 0 consumes in; layer i consumes the output of layer i-1.
func (n *Network) Forward(in mat.Matrix) []*mat.Dense {
	outs := make([]*mat.Dense, len(n.layers))

	var curr mat.Matrix = in
	for i, l := range n.layers {
		outs[i] = l.Forward(curr)
		curr = outs[i]
	}
	return outs
}

// Backward propagates seed, the loss gradient w.r.t. the last layer's
// output, from the last layer to the first. Each trainable layer's slot in
// grads is zeroed and then filled. The returned slice holds, per layer, the
// gradient w.r.t. that layer's output.
// The first layer is not asked for an input gradient.
func (n *Network) Backward(in mat.Matrix, outs []*mat.Dense, seed mat.Matrix, grads Gradients) []mat.Matrix {
	outGrads := make([]mat.Matrix, len(n.layers))
	outGrads[len(outGrads)-1] = seed

	for i := len(n.layers) - 1; i >= 0; i-- {
		var input mat.Matrix = in
		if i > 0 {
			input = outs[i-1]
		}

		if grads[i] != nil {
			grads[i].Reset()
		}

		inGrad := n.layers[i].Backward(input, outs[i], outGrads[i], grads[i], i > 0)
		if i > 0 {
			outGrads[i-1] = inGrad
		}
	}
	return outGrads
}

// Loss returns the summed negative log-likelihood of labels over the batch.
func (n *Network) Loss(in mat.Matrix, labels []int) float64 {
	outs := n.Forward(in)
	return n.loss.Forward(outs[len(outs)-1], labels)
}

// NewGradients allocates zeroed gradient storage matching the network.
func (n *Network) NewGradients() Gradients {
	grads := make(Gradients, len(n.layers))
	for i, l := range n.layers {
		if p := l.Params(); p != nil {
			grads[i] = p.ZeroLike()
		}
	}
	return grads
}

// Step applies one gradient-descent update for gradients summed over
// nSamples samples.
func (n *Network) Step(sgd opt.SGD, grads Gradients, nSamples int) {
	for i, l := range n.layers {
		if grads[i] == nil {
			continue
		}
		sgd.Step(l.Params(), grads[i], nSamples)
	}
}

// computeGradients runs a forward and a backward pass over the batch,
// filling grads, and returns the summed loss.
func (n *Network) computeGradients(in mat.Matrix, labels []int, grads Gradients) float64 {
	outs := n.Forward(in)
	probs := outs[len(outs)-1]
	seed := n.loss.Backward(probs, labels)
	n.Backward(in, outs, seed, grads)
	return n.loss.Forward(probs, labels)
}

// checkInput validates a batch against the network.
func (n *Network) checkInput(in mat.Matrix) error {
	if !n.initialized {
		return ErrNotInitialized
	}
	if r, _ := in.Dims(); r != n.inputSize {
		return fmt.Errorf("%w: got %d rows, want %d", ErrInputSize, r, n.inputSize)
	}
	return nil
}

// checkLabeled validates a labeled batch against the network.
func (n *Network) checkLabeled(in mat.Matrix, labels []int) error {
	if err := n.checkInput(in); err != nil {
		return err
	}
	_, cols := in.Dims()
	if cols != len(labels) {
		return fmt.Errorf("%w: %d samples, %d labels", ErrLabelCount, cols, len(labels))
	}
	if cols == 0 {
		return ErrNoSamples
	}
	nClasses := n.OutSize()
	for i, l := range labels {
		if l < 0 || l >= nClasses {
			return fmt.Errorf("%w: label %d at sample %d, want [0, %d)", ErrLabelRange, l, i, nClasses)
		}
	}
	return nil
}

// Layers returns the network's layers.
func (n *Network) Layers() []layer.Layer {
	return n.layers
}

// Initialized reports whether Init has completed successfully.
func (n *Network) Initialized() bool {
	return n.initialized
}

// InputSize returns the number of input features fixed at Init.
func (n *Network) InputSize() int {
	return n.inputSize
}

// OutSize returns the number of classes.
func (n *Network) OutSize() int {
	return n.shapes[len(n.shapes)-1].Size
}

// NumParams returns the total number of trainable values.
func (n *Network) NumParams() int {
	total := 0
	for _, l := range n.layers {
		if p := l.Params(); p != nil {
			total += p.Len()
		}
	}
	return total
}

// colSlicer is implemented by matrices that can return views, such as *mat.Dense.
type colSlicer interface {
	mat.Matrix
	Slice(i, k, j, l int) mat.Matrix
}

// sliceable returns m itself if it supports views, otherwise a dense copy.
func sliceable(m mat.Matrix) colSlicer {
	if s, ok := m.(colSlicer); ok {
		return s
	}
	return mat.DenseCopyOf(m)
}

// columns returns a view of columns [first, first+count) of m.
func columns(m colSlicer, first, count int) mat.Matrix {
	r, _ := m.Dims()
	return m.Slice(0, r, first, first+count)
}
