package net

import (
	"bytes"
	"log"
	"testing"

	"github.com/FlavioCFOliveira/hsinet/internal/layer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
)

func TestCheckGradientsDense(t *testing.T) {
	n := newNet(t, 3, 11, layer.NewDense(3), layer.NewSoftmaxOutput(2))
	x, labels := toyData()

	report, err := n.CheckGradients(x, labels, GradCheckConfig{
		Delta:      1e-5,
		Tolerance:  1e-4,
		NoiseFloor: 1e-5,
		Formula:    fd.Central,
	})
	require.NoError(t, err)
	require.NoError(t, report.Err())

	// 3*3+3 + 2*3+2
	assert.Len(t, report.Entries, 20)
	assert.Less(t, report.MaxBeta(1e-5), 1e-4)
}

func TestCheckGradientsConvolutional(t *testing.T) {
	n := newNet(t, 12, 3,
		layer.NewConv1D(2, 3),
		layer.NewMaxPool1D(2),
		layer.NewDense(4),
		layer.NewSoftmaxOutput(3),
	)
	x, labels := spectra(12, 6, 3)

	report, err := n.CheckGradients(x, labels, GradCheckConfig{
		Delta:      1e-5,
		Tolerance:  1e-4,
		NoiseFloor: 1e-5,
		Formula:    fd.Central,
	})
	require.NoError(t, err)
	assert.NoError(t, report.Err())
	assert.Empty(t, report.Failures())
}

func TestCheckGradientsDefaultConfig(t *testing.T) {
	n := newNet(t, 3, 11, layer.NewDense(3), layer.NewSoftmaxOutput(2))
	x, labels := toyData()

	report, err := n.CheckGradients(x, labels, DefaultGradCheckConfig())
	require.NoError(t, err)
	require.Len(t, report.Entries, 20)
	for _, e := range report.Entries {
		assert.Less(t, e.Beta, 1e-3, "%v", e)
	}
	assert.Empty(t, report.Failures())
}

func TestCheckGradientsRestoresWeights(t *testing.T) {
	n := newNet(t, 3, 11, layer.NewDense(3), layer.NewSoftmaxOutput(2))
	x, labels := toyData()
	before := n.Loss(x, labels)

	_, err := n.CheckGradients(x, labels, DefaultGradCheckConfig())
	require.NoError(t, err)
	assert.Equal(t, before, n.Loss(x, labels))
}

func TestCheckGradientsDetectsMismatch(t *testing.T) {
	n := newNet(t, 3, 11, brokenDense{layer.NewDense(3)}, layer.NewSoftmaxOutput(2))
	x, labels := toyData()

	var buf bytes.Buffer
	report, err := n.CheckGradients(x, labels, GradCheckConfig{
		Delta:      1e-5,
		Tolerance:  1e-3,
		NoiseFloor: 1e-5,
		Formula:    fd.Central,
		Logger:     log.New(&buf, "", 0),
	})
	require.NoError(t, err)

	failures := report.Failures()
	require.NotEmpty(t, failures)
	for _, f := range failures {
		assert.Equal(t, 0, f.Layer)
		assert.False(t, f.Bias)
		assert.InDelta(t, 1.0/3, f.Beta, 1e-3)
	}
	assert.ErrorIs(t, report.Err(), ErrGradientMismatch)
	assert.Contains(t, buf.String(), "layer 0 (Dense) weight")
}

func TestCheckGradientsInvalidDelta(t *testing.T) {
	n := newNet(t, 3, 11, layer.NewDense(3), layer.NewSoftmaxOutput(2))
	x, labels := toyData()

	_, err := n.CheckGradients(x, labels, GradCheckConfig{Tolerance: 1e-3})
	assert.Error(t, err)
}

func TestRelativeDiscrepancy(t *testing.T) {
	assert.Equal(t, 0.0, relativeDiscrepancy(0, 0))
	assert.Equal(t, 0.0, relativeDiscrepancy(2, 2))
	assert.InDelta(t, 1.0/3, relativeDiscrepancy(1, 2), 1e-15)
	assert.Equal(t, 1.0, relativeDiscrepancy(1, -1))
}
