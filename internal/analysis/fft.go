package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first n/2 frequency bins of data
// after removing its mean. Any length works; lengths below 2 yield nil.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantBin is the index of the strongest non-constant bin, or 0 when the
// series is flat.
func DominantBin(data []float64) int {
	ps := PowerSpectrum(data)
	best, bestMag := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > bestMag {
			best, bestMag = k, ps[k]
		}
	}
	return best
}

// DominantFrequency is the strongest oscillation in a series sampled every
// dt seconds, in Hz.
func DominantFrequency(data []float64, dt float64) float64 {
	k := DominantBin(data)
	if k == 0 || dt <= 0 {
		return 0
	}
	return float64(k) / (float64(len(data)) * dt)
}

// DominantWavelength is the strongest spatial period of one frame, in
// samples. A flat frame has no wavelength and yields 0.
func DominantWavelength(frame []float64) float64 {
	k := DominantBin(frame)
	if k == 0 {
		return 0
	}
	return float64(len(frame)) / float64(k)
}
