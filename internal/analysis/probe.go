package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/bifsim/internal/dynamo"
	"github.com/san-kum/bifsim/internal/integrators"
)

type ProbeConfig struct {
	Amplitude  float64 // initial perturbation size
	Dt         float64
	Duration   float64
	Integrator string
}

func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Amplitude:  1e-4,
		Dt:         0.01,
		Duration:   20,
		Integrator: "rk4",
	}
}

func (c ProbeConfig) validate() error {
	switch {
	case c.Amplitude <= 0:
		return fmt.Errorf("amplitude must be positive, got %g: %w", c.Amplitude, dynamo.ErrInvalidParameter)
	case c.Dt <= 0:
		return fmt.Errorf("dt must be positive, got %g: %w", c.Dt, dynamo.ErrInvalidParameter)
	case c.Duration < c.Dt:
		return fmt.Errorf("duration %g shorter than dt %g: %w", c.Duration, c.Dt, dynamo.ErrInvalidParameter)
	}
	return nil
}

// ProbeResult describes how a small perturbation of an equilibrium evolves.
type ProbeResult struct {
	// GrowthRate is ln(|δ(T)|/|δ(0)|)/T, maximised over the perturbation
	// directions. It approximates the largest real part of the spectrum.
	GrowthRate float64
	Stable     bool
	// Period of the oscillation in the deviation, zero when none was found.
	Period    float64
	Direction int
}

// Probe perturbs x along each coordinate axis and integrates both the
// reference and the perturbed state for cfg.Duration with cfg.Integrator
// (RK4 when empty).
func Probe(sys dynamo.System, x dynamo.State, p float64, cfg ProbeConfig) (ProbeResult, error) {
	if err := cfg.validate(); err != nil {
		return ProbeResult{}, err
	}
	if len(x) != sys.Dim() {
		return ProbeResult{}, fmt.Errorf("state has %d components, system has %d: %w", len(x), sys.Dim(), dynamo.ErrDimensionMismatch)
	}

	method := cfg.Integrator
	if method == "" {
		method = "rk4"
	}
	integrate := func(x0 dynamo.State) (integrators.Trajectory, error) {
		integ, err := integrators.New(method)
		if err != nil {
			return integrators.Trajectory{}, err
		}
		return integrators.Integrate(integ, sys, x0, p, cfg.Dt, cfg.Duration)
	}

	ref, err := integrate(x)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("reference trajectory: %w", err)
	}
	T := ref.Times[len(ref.Times)-1]

	res := ProbeResult{GrowthRate: math.Inf(-1)}
	var deviation []float64
	for dir := range x {
		xp := x.Clone()
		xp[dir] += cfg.Amplitude

		tr, err := integrate(xp)
		if err != nil {
			// runaway perturbation
			return ProbeResult{GrowthRate: math.Inf(1), Direction: dir}, nil
		}

		sep := tr.Last().Sub(ref.Last()).Norm()
		rate := math.Inf(-1)
		if sep > 0 {
			rate = math.Log(sep/cfg.Amplitude) / T
		}
		if rate > res.GrowthRate {
			res.GrowthRate = rate
			res.Direction = dir
			deviation = widestDeviation(tr, ref)
		}
	}

	res.Stable = res.GrowthRate < 0
	if period, ok := DominantPeriod(deviation, cfg.Dt); ok {
		res.Period = period
	}
	return res, nil
}

// widestDeviation returns tr - ref in the state component whose deviation
// reaches the largest magnitude.
func widestDeviation(tr, ref integrators.Trajectory) []float64 {
	best, peak := 0, -1.0
	for i := range ref.Last() {
		for k := range tr.States {
			if d := math.Abs(tr.States[k][i] - ref.States[k][i]); d > peak {
				best, peak = i, d
			}
		}
	}

	out := make([]float64, len(tr.States))
	for k := range tr.States {
		out[k] = tr.States[k][best] - ref.States[k][best]
	}
	return out
}
