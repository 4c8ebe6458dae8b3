// Package layer provides neural network layer implementations.
//
// Every layer works on batches stored as gonum matrices: rows are features
// (or channel values), columns are independent samples. No layer couples
// columns, so a batch can be split by column ranges and processed in
// parallel.
package layer

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidSize is returned when a layer is built with a non-positive size.
	ErrInvalidSize = errors.New("layer: size must be positive")

	// ErrKernelTooLarge is returned when a convolution kernel is longer than its input.
	ErrKernelTooLarge = errors.New("layer: kernel size exceeds input size")

	// ErrPoolTooLarge is returned when a pooling block is longer than the per-kernel input.
	ErrPoolTooLarge = errors.New("layer: pool size exceeds input size per kernel")
)

// Shape describes the rows a layer produces.
// Size is the total row count, Channels the number of equal-length
// kernel channels those rows are split into.
type Shape struct {
	Size     int
	Channels int
}

// PerChannel returns the number of rows in each channel.
func (s Shape) PerChannel() int {
	if s.Channels <= 0 {
		return s.Size
	}
	return s.Size / s.Channels
}

// Layer is a neural network layer.
type Layer interface {
	// Init derives the layer shape from its input shape and allocates
	// and fills the parameters, if any. It returns the output shape.
	Init(in Shape, init Initializer) (Shape, error)

	// InSize and OutSize report the row counts fixed by Init.
	InSize() int
	OutSize() int

	// Forward computes the output batch for an input batch.
	// It does not modify the layer.
	Forward(in mat.Matrix) *mat.Dense

	// Backward accumulates the parameter gradient into grad (nil for
	// parameter-free layers) given the input, the output Forward produced
	// for it and the gradient of the loss w.r.t. that output.
	// When wantInGrad is set it returns the gradient w.r.t. the input,
	// otherwise it may return nil.
	Backward(in, out, outGrad mat.Matrix, grad *Params, wantInGrad bool) *mat.Dense

	// Params returns the trainable parameters, or nil if the layer has none.
	Params() *Params

	// Name returns a human-readable layer type.
	Name() string
}

// IsTrainable reports whether l carries trainable parameters.
func IsTrainable(l Layer) bool {
	return l.Params() != nil
}

// checkRows panics if a batch does not have the expected number of rows.
func checkRows(name string, m mat.Matrix, want int) {
	if r, _ := m.Dims(); r != want {
		panic(name + ": batch rows do not match layer input size (was Init called?)")
	}
}
