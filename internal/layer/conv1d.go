package layer

import (
	"fmt"

	"github.com/FlavioCFOliveira/hsinet/internal/activations"
	"gonum.org/v1/gonum/mat"
)

// Conv1D slides nKernels learned filters along the feature axis of each
// sample and applies tanh.
// Output rows are grouped by kernel: row i + k*perKernel holds kernel k at
// position i.
type Conv1D struct {
	nKernels   int
	kernelSize int

	inSize    int
	perKernel int

	// Weights: [nKernels, kernelSize], biases: [nKernels]
	params *Params

	act activations.Tanh
}

// NewConv1D creates a convolution layer with nKernels filters of kernelSize taps.
func NewConv1D(nKernels, kernelSize int) *Conv1D {
	return &Conv1D{
		nKernels:   nKernels,
		kernelSize: kernelSize,
	}
}

// Init implements Layer.
func (c *Conv1D) Init(in Shape, init Initializer) (Shape, error) {
	if c.nKernels <= 0 || c.kernelSize <= 0 || in.Size <= 0 {
		return Shape{}, fmt.Errorf("conv1d: kernels=%d kernel size=%d input=%d: %w",
			c.nKernels, c.kernelSize, in.Size, ErrInvalidSize)
	}
	if c.kernelSize > in.Size {
		return Shape{}, fmt.Errorf("conv1d: kernel size %d, input size %d: %w",
			c.kernelSize, in.Size, ErrKernelTooLarge)
	}

	c.inSize = in.Size
	c.perKernel = in.Size - c.kernelSize + 1
	c.params = NewParams(c.nKernels, c.kernelSize)
	c.params.fill(init)

	return Shape{Size: c.OutSize(), Channels: c.nKernels}, nil
}

// Forward implements Layer.
func (c *Conv1D) Forward(in mat.Matrix) *mat.Dense {
	checkRows("conv1d", in, c.inSize)
	_, cols := in.Dims()

	w := c.params.Weights
	b := c.params.Biases
	out := mat.NewDense(c.OutSize(), cols, nil)

	for col := 0; col < cols; col++ {
		for k := 0; k < c.nKernels; k++ {
			bias := b.AtVec(k)
			for i := 0; i < c.perKernel; i++ {
				conv := 0.0
				for j := 0; j < c.kernelSize; j++ {
					conv += w.At(k, j) * in.At(i+j, col)
				}
				out.Set(i+k*c.perKernel, col, c.act.Activate(conv+bias))
			}
		}
	}

	return out
}

// Backward implements Layer.
func (c *Conv1D) Backward(in, out, outGrad mat.Matrix, grad *Params, wantInGrad bool) *mat.Dense {
	_, cols := in.Dims()

	var inGrad *mat.Dense
	if wantInGrad {
		inGrad = mat.NewDense(c.inSize, cols, nil)
	}

	gw := grad.Weights
	gb := grad.Biases
	w := c.params.Weights

	for col := 0; col < cols; col++ {
		for k := 0; k < c.nKernels; k++ {
			biasSum := 0.0
			for i := 0; i < c.perKernel; i++ {
				row := i + k*c.perKernel
				d := c.act.DerivativeFromOutput(out.At(row, col)) * outGrad.At(row, col)
				if d == 0 {
					continue
				}
				biasSum += d
				for p := 0; p < c.kernelSize; p++ {
					gw.Set(k, p, gw.At(k, p)+d*in.At(i+p, col))
					if inGrad != nil {
						inGrad.Set(i+p, col, inGrad.At(i+p, col)+d*w.At(k, p))
					}
				}
			}
			gb.SetVec(k, gb.AtVec(k)+biasSum)
		}
	}

	return inGrad
}

// Params implements Layer.
func (c *Conv1D) Params() *Params {
	return c.params
}

// InSize implements Layer.
func (c *Conv1D) InSize() int {
	return c.inSize
}

// OutSize implements Layer.
func (c *Conv1D) OutSize() int {
	return c.perKernel * c.nKernels
}

// OutSizePerKernel returns the number of positions each kernel produces.
func (c *Conv1D) OutSizePerKernel() int {
	return c.perKernel
}

// NumKernels returns the number of filters.
func (c *Conv1D) NumKernels() int {
	return c.nKernels
}

// KernelSize returns the number of taps per filter.
func (c *Conv1D) KernelSize() int {
	return c.kernelSize
}

// Name implements Layer.
func (c *Conv1D) Name() string {
	return "Conv1D"
}
