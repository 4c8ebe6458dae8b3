package layer

import (
	"fmt"

	"github.com/FlavioCFOliveira/hsinet/internal/activations"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Dense is a fully connected layer with tanh activation.
type Dense struct {
	nNodes int
	inSize int

	// Weights: [nNodes, inSize], biases: [nNodes]
	params *Params

	act activations.Tanh
}

// NewDense creates a fully connected layer with nNodes outputs.
// The input size is taken from the previous layer at Init.
func NewDense(nNodes int) *Dense {
	return &Dense{nNodes: nNodes}
}

// Init implements Layer.
func (d *Dense) Init(in Shape, init Initializer) (Shape, error) {
	if d.nNodes <= 0 || in.Size <= 0 {
		return Shape{}, fmt.Errorf("dense: nodes=%d input=%d: %w", d.nNodes, in.Size, ErrInvalidSize)
	}

	d.inSize = in.Size
	d.params = NewParams(d.nNodes, in.Size)
	d.params.fill(init)

	return Shape{Size: d.nNodes, Channels: 1}, nil
}

// Forward implements Layer: tanh(W*x + b) for every column.
func (d *Dense) Forward(in mat.Matrix) *mat.Dense {
	checkRows("dense", in, d.inSize)

	var out mat.Dense
	out.Mul(d.params.Weights, in)

	b := d.params.Biases
	out.Apply(func(i, _ int, v float64) float64 {
		return d.act.Activate(v + b.AtVec(i))
	}, &out)

	return &out
}

// Backward implements Layer.
func (d *Dense) Backward(in, out, outGrad mat.Matrix, grad *Params, wantInGrad bool) *mat.Dense {
	// dz = dL/dy * tanh'(z), with tanh' taken from the stored output
	var dz mat.Dense
	dz.Apply(func(i, j int, g float64) float64 {
		return g * d.act.DerivativeFromOutput(out.At(i, j))
	}, outGrad)

	var gradW mat.Dense
	gradW.Mul(&dz, in.T())
	grad.Weights.Add(grad.Weights, &gradW)

	for i := 0; i < d.nNodes; i++ {
		grad.Biases.SetVec(i, grad.Biases.AtVec(i)+floats.Sum(dz.RawRowView(i)))
	}

	if !wantInGrad {
		return nil
	}

	var inGrad mat.Dense
	inGrad.Mul(d.params.Weights.T(), &dz)
	return &inGrad
}

// Params implements Layer.
func (d *Dense) Params() *Params {
	return d.params
}

// InSize implements Layer.
func (d *Dense) InSize() int {
	return d.inSize
}

// OutSize implements Layer.
func (d *Dense) OutSize() int {
	return d.nNodes
}

// Name implements Layer.
func (d *Dense) Name() string {
	return "Dense"
}
