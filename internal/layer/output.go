package layer

import (
	"fmt"

	"github.com/FlavioCFOliveira/hsinet/internal/activations"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SoftmaxOutput is the classification head: an affine map followed by a
// per-column softmax, so each output column is a distribution over nNodes
// classes.
type SoftmaxOutput struct {
	nNodes int
	inSize int

	// Weights: [nNodes, inSize], biases: [nNodes]
	params *Params

	act activations.Softmax
}

// NewSoftmaxOutput creates an output layer over nNodes classes.
func NewSoftmaxOutput(nNodes int) *SoftmaxOutput {
	return &SoftmaxOutput{nNodes: nNodes}
}

// Init implements Layer.
func (o *SoftmaxOutput) Init(in Shape, init Initializer) (Shape, error) {
	if o.nNodes <= 0 || in.Size <= 0 {
		return Shape{}, fmt.Errorf("softmax output: nodes=%d input=%d: %w", o.nNodes, in.Size, ErrInvalidSize)
	}

	o.inSize = in.Size
	o.params = NewParams(o.nNodes, in.Size)
	o.params.fill(init)

	return Shape{Size: o.nNodes, Channels: 1}, nil
}

// Forward implements Layer.
func (o *SoftmaxOutput) Forward(in mat.Matrix) *mat.Dense {
	checkRows("softmax output", in, o.inSize)

	var out mat.Dense
	out.Mul(o.params.Weights, in)

	_, cols := out.Dims()
	logits := make([]float64, o.nNodes)
	for j := 0; j < cols; j++ {
		mat.Col(logits, j, &out)
		floats.Add(logits, o.params.Biases.RawVector().Data)
		out.SetCol(j, o.act.ActivateBatch(logits))
	}

	return &out
}

// Backward implements Layer.
//
// For y = softmax(z) and upstream gradient g, the Jacobian-vector product is
// dz_i = y_i*g_i - y_i*sum_j(y_j*g_j).
func (o *SoftmaxOutput) Backward(in, out, outGrad mat.Matrix, grad *Params, wantInGrad bool) *mat.Dense {
	_, cols := out.Dims()

	var dz mat.Dense
	dz.MulElem(out, outGrad)

	yg := make([]float64, o.nNodes)
	y := make([]float64, o.nNodes)
	for j := 0; j < cols; j++ {
		mat.Col(yg, j, &dz)
		mat.Col(y, j, out)
		floats.AddScaled(yg, -floats.Sum(yg), y)
		dz.SetCol(j, yg)
	}

	var gradW mat.Dense
	gradW.Mul(&dz, in.T())
	grad.Weights.Add(grad.Weights, &gradW)

	for i := 0; i < o.nNodes; i++ {
		grad.Biases.SetVec(i, grad.Biases.AtVec(i)+floats.Sum(dz.RawRowView(i)))
	}

	if !wantInGrad {
		return nil
	}

	var inGrad mat.Dense
	inGrad.Mul(o.params.Weights.T(), &dz)
	return &inGrad
}

// Params implements Layer.
func (o *SoftmaxOutput) Params() *Params {
	return o.params
}

// InSize implements Layer.
func (o *SoftmaxOutput) InSize() int {
	return o.inSize
}

// OutSize implements Layer.
func (o *SoftmaxOutput) OutSize() int {
	return o.nNodes
}

// Name implements Layer.
func (o *SoftmaxOutput) Name() string {
	return "SoftmaxOutput"
}
