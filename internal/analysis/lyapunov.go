package analysis

import (
	"math"

	"github.com/san-kum/ripple/internal/physics"
)

// SeparationRate estimates the largest per-step growth rate of the distance
// between two nearby chains. A negative value means disturbances die out; a
// positive one means the parameters run away.
//
// a and b must have the same size; b is typically a copy of a with one
// sample nudged. Both are advanced in place. After every step b is pulled
// back to distance d0 along the separation, so the estimate does not
// overflow.
func SeparationRate(a, b *physics.Field, steps int) float64 {
	n := a.N()
	if n != b.N() || steps < 1 {
		return 0
	}

	d0 := separation(a, b)
	if d0 == 0 {
		return 0
	}

	sumLog := 0.0
	count := 0
	for k := 0; k < steps; k++ {
		a.Advance(nil)
		b.Advance(nil)

		sep := separation(a, b)
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			break
		}
		sumLog += math.Log(sep / d0)
		count++

		scale := d0 / sep
		for i := 0; i < n; i++ {
			b.SetHeight(i, a.HeightAt(i)+(b.HeightAt(i)-a.HeightAt(i))*scale)
			b.SetVelocity(i, a.VelocityAt(i)+(b.VelocityAt(i)-a.VelocityAt(i))*scale)
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / float64(count)
}

// SeparationSpectrum runs SeparationRate once per sample, nudging that
// sample's velocity by eps in a fresh pair of chains from build.
func SeparationSpectrum(build func() *physics.Field, eps float64, steps int) []float64 {
	probe := build()
	spectrum := make([]float64, probe.N())

	for i := range spectrum {
		a, b := build(), build()
		b.SetVelocity(i, b.VelocityAt(i)+eps)
		spectrum[i] = SeparationRate(a, b, steps)
	}

	return spectrum
}

func separation(a, b *physics.Field) float64 {
	sum := 0.0
	for i := 0; i < a.N(); i++ {
		dh := b.HeightAt(i) - a.HeightAt(i)
		dv := b.VelocityAt(i) - a.VelocityAt(i)
		sum += dh*dh + dv*dv
	}
	return math.Sqrt(sum)
}
