package layer

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MaxPool1D downsamples each kernel channel by taking the maximum over
// non-overlapping blocks of poolSize rows.
// Rows past the last full block of a channel are dropped.
//
// The argmax is not stored between Forward and Backward; Backward rescans
// the input, so the layer stays read-only and safe to share across workers.
type MaxPool1D struct {
	poolSize int

	inSize     int
	channels   int
	inPerChan  int
	outPerChan int
}

// NewMaxPool1D creates a max pooling layer with the given block size.
func NewMaxPool1D(poolSize int) *MaxPool1D {
	return &MaxPool1D{poolSize: poolSize}
}

// Init implements Layer. The initializer is unused.
func (m *MaxPool1D) Init(in Shape, _ Initializer) (Shape, error) {
	channels := in.Channels
	if channels <= 0 {
		channels = 1
	}
	if m.poolSize <= 0 || in.Size <= 0 || in.Size%channels != 0 {
		return Shape{}, fmt.Errorf("maxpool1d: pool size=%d input=%d channels=%d: %w",
			m.poolSize, in.Size, channels, ErrInvalidSize)
	}

	inPerChan := in.Size / channels
	if m.poolSize > inPerChan {
		return Shape{}, fmt.Errorf("maxpool1d: pool size %d, input size per kernel %d: %w",
			m.poolSize, inPerChan, ErrPoolTooLarge)
	}

	m.inSize = in.Size
	m.channels = channels
	m.inPerChan = inPerChan
	m.outPerChan = inPerChan / m.poolSize

	return Shape{Size: m.OutSize(), Channels: channels}, nil
}

// Forward implements Layer.
func (m *MaxPool1D) Forward(in mat.Matrix) *mat.Dense {
	checkRows("maxpool1d", in, m.inSize)
	_, cols := in.Dims()

	out := mat.NewDense(m.OutSize(), cols, nil)
	for col := 0; col < cols; col++ {
		for k := 0; k < m.channels; k++ {
			for i := 0; i < m.outPerChan; i++ {
				idx := m.argmax(in, col, k, i)
				out.Set(i+k*m.outPerChan, col, in.At(idx, col))
			}
		}
	}

	return out
}

// Backward implements Layer. grad is ignored; pooling has no parameters.
func (m *MaxPool1D) Backward(in, out, outGrad mat.Matrix, _ *Params, wantInGrad bool) *mat.Dense {
	if !wantInGrad {
		return nil
	}

	_, cols := in.Dims()
	inGrad := mat.NewDense(m.inSize, cols, nil)
	for col := 0; col < cols; col++ {
		for k := 0; k < m.channels; k++ {
			for i := 0; i < m.outPerChan; i++ {
				idx := m.argmax(in, col, k, i)
				inGrad.Set(idx, col, outGrad.At(i+k*m.outPerChan, col))
			}
		}
	}

	return inGrad
}

// argmax returns the input row holding the maximum of block i in channel k.
// Ties resolve to the first row.
func (m *MaxPool1D) argmax(in mat.Matrix, col, k, i int) int {
	first := i*m.poolSize + k*m.inPerChan
	best := first
	maxVal := in.At(first, col)
	for p := 1; p < m.poolSize; p++ {
		if v := in.At(first+p, col); v > maxVal {
			maxVal = v
			best = first + p
		}
	}
	return best
}

// Params implements Layer. Pooling has no trainable parameters.
func (m *MaxPool1D) Params() *Params {
	return nil
}

// InSize implements Layer.
func (m *MaxPool1D) InSize() int {
	return m.inSize
}

// OutSize implements Layer.
func (m *MaxPool1D) OutSize() int {
	return m.outPerChan * m.channels
}

// OutSizePerKernel returns the pooled length of each channel.
func (m *MaxPool1D) OutSizePerKernel() int {
	return m.outPerChan
}

// PoolSize returns the block length.
func (m *MaxPool1D) PoolSize() int {
	return m.poolSize
}

// Name implements Layer.
func (m *MaxPool1D) Name() string {
	return "MaxPool1D"
}
