package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitudes of the non-negative frequency bins
// of data after removing its mean.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(data)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in
// samples taken dt apart. The peak bin is refined by parabolic
// interpolation over its neighbours. ok is false when the signal is flat
// or completes fewer than two cycles.
func DominantPeriod(samples []float64, dt float64) (period float64, ok bool) {
	if len(samples) < 8 || dt <= 0 {
		return 0, false
	}
	ps := PowerSpectrum(samples)

	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] == 0 || peak < 2 {
		return 0, false
	}

	bin := float64(peak)
	if peak+1 < len(ps) {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if d := a - 2*b + c; d != 0 {
			bin += 0.5 * (a - c) / d
		}
	}

	period = float64(len(samples)) * dt / bin
	if math.IsNaN(period) || math.IsInf(period, 0) {
		return 0, false
	}
	return period, true
}
