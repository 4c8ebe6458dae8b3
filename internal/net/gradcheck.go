package net

import (
	"errors"
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// ErrGradientMismatch is returned by GradCheckReport.Err when an analytic
// gradient disagrees with its finite-difference estimate.
var ErrGradientMismatch = errors.New("net: analytic gradient does not match finite difference")

// GradCheckConfig controls CheckGradients.
type GradCheckConfig struct {
	// Delta is the perturbation applied to each parameter.
	Delta float64

	// Tolerance is the largest accepted relative discrepancy
	// |fd - an| / (|fd| + |an|).
	Tolerance float64

	// NoiseFloor exempts entries where either gradient magnitude is at or
	// below it; finite differences on tiny gradients are dominated by
	// truncation error.
	NoiseFloor float64

	// Formula is the finite-difference stencil. The zero value selects
	// fd.Forward: (loss(w+Delta) - loss(w)) / Delta.
	Formula fd.Formula

	// Logger receives one line per failing entry. Nil disables logging.
	Logger *log.Logger
}

// DefaultGradCheckConfig returns Delta 1e-4, Tolerance 1e-3 and a noise
// floor of 100*Delta with the forward-difference formula.
func DefaultGradCheckConfig() GradCheckConfig {
	return GradCheckConfig{
		Delta:      1e-4,
		Tolerance:  1e-3,
		NoiseFloor: 1e-2,
		Formula:    fd.Forward,
	}
}

// GradCheckEntry is the comparison for a single parameter.
type GradCheckEntry struct {
	Layer     int
	LayerName string
	Bias      bool
	Row, Col  int

	Analytic float64
	Numeric  float64
	Beta     float64
	Failed   bool
}

func (e GradCheckEntry) String() string {
	kind := fmt.Sprintf("weight(%d,%d)", e.Row, e.Col)
	if e.Bias {
		kind = fmt.Sprintf("bias(%d)", e.Row)
	}
	return fmt.Sprintf("layer %d (%s) %s: analytic=%.6g numeric=%.6g beta=%.3g",
		e.Layer, e.LayerName, kind, e.Analytic, e.Numeric, e.Beta)
}

// GradCheckReport collects every compared parameter.
type GradCheckReport struct {
	Entries []GradCheckEntry
}

// Failures returns the entries that exceeded the tolerance.
func (r *GradCheckReport) Failures() []GradCheckEntry {
	var failed []GradCheckEntry
	for _, e := range r.Entries {
		if e.Failed {
			failed = append(failed, e)
		}
	}
	return failed
}

// MaxBeta returns the largest relative discrepancy among entries whose
// gradients are both above floor.
func (r *GradCheckReport) MaxBeta(floor float64) float64 {
	worst := 0.0
	for _, e := range r.Entries {
		if math.Abs(e.Analytic) > floor && math.Abs(e.Numeric) > floor {
			worst = math.Max(worst, e.Beta)
		}
	}
	return worst
}

// Err returns nil if no entry failed, otherwise an error wrapping
// ErrGradientMismatch that describes the worst entry.
func (r *GradCheckReport) Err() error {
	failed := r.Failures()
	if len(failed) == 0 {
		return nil
	}
	worst := failed[0]
	for _, e := range failed[1:] {
		if e.Beta > worst.Beta {
			worst = e
		}
	}
	return fmt.Errorf("%w: %d of %d entries, worst %v", ErrGradientMismatch, len(failed), len(r.Entries), worst)
}

// CheckGradients compares the analytic gradient of the summed loss with a
// finite-difference estimate for every weight and bias.
//
// It is a diagnostic and is never run by Train. Each parameter is perturbed
// and restored in turn, so the network must not be used concurrently.
// A mismatch is reported through the returned report, not as an error; the
// error result only covers invalid input.
func (n *Network) CheckGradients(in mat.Matrix, labels []int, cfg GradCheckConfig) (*GradCheckReport, error) {
	if err := n.checkLabeled(in, labels); err != nil {
		return nil, err
	}
	if cfg.Delta <= 0 {
		return nil, fmt.Errorf("net: gradient check delta must be > 0 (got %g)", cfg.Delta)
	}
	formula := cfg.Formula
	if formula.Stencil == nil {
		formula = fd.Forward
	}

	grads := n.NewGradients()
	loss0 := n.computeGradients(in, labels, grads)

	settings := &fd.Settings{
		Formula:     formula,
		Step:        cfg.Delta,
		OriginKnown: true,
		OriginValue: loss0,
	}

	report := &GradCheckReport{}
	check := func(entry GradCheckEntry, get func() float64, set func(float64)) {
		v0 := get()
		entry.Numeric = fd.Derivative(func(x float64) float64 {
			set(x)
			return n.Loss(in, labels)
		}, v0, settings)
		set(v0)

		entry.Beta = relativeDiscrepancy(entry.Numeric, entry.Analytic)
		entry.Failed = entry.Beta > cfg.Tolerance &&
			math.Abs(entry.Analytic) > cfg.NoiseFloor &&
			math.Abs(entry.Numeric) > cfg.NoiseFloor
		if entry.Failed && cfg.Logger != nil {
			cfg.Logger.Printf("gradient check: %v", entry)
		}
		report.Entries = append(report.Entries, entry)
	}

	for li, l := range n.layers {
		p := l.Params()
		if p == nil {
			continue
		}
		g := grads[li]

		rows, cols := p.Weights.Dims()
		for c := 0; c < cols; c++ {
			for r := 0; r < rows; r++ {
				check(GradCheckEntry{
					Layer: li, LayerName: l.Name(), Row: r, Col: c,
					Analytic: g.Weights.At(r, c),
				},
					func() float64 { return p.Weights.At(r, c) },
					func(v float64) { p.Weights.Set(r, c, v) })
			}
		}
		for r := 0; r < rows; r++ {
			check(GradCheckEntry{
				Layer: li, LayerName: l.Name(), Bias: true, Row: r,
				Analytic: g.Biases.AtVec(r),
			},
				func() float64 { return p.Biases.AtVec(r) },
				func(v float64) { p.Biases.SetVec(r, v) })
		}
	}

	return report, nil
}

// relativeDiscrepancy returns |a - b| / (|a| + |b|), or 0 when both are 0.
func relativeDiscrepancy(a, b float64) float64 {
	denom := math.Abs(a) + math.Abs(b)
	if denom == 0 {
		return 0
	}
	return math.Abs(a-b) / denom
}
