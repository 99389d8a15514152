package physics

import (
	"math"

	"github.com/san-kum/ripple/internal/dynamo"
)

// Influence is an external perturbation sampled once per sample per step.
// x is the sample's horizontal position and h its height after this step's
// integration. The returned value is added to the velocity.
type Influence interface {
	Perturb(i int, x, h float64) float64
}

// InfluenceFunc adapts a plain function to Influence.
type InfluenceFunc func(i int, x, h float64) float64

func (fn InfluenceFunc) Perturb(i int, x, h float64) float64 { return fn(i, x, h) }

// Field is a 1D chain of spring-coupled height samples on a drawing surface.
// Heights grow downward: 0 is the top edge and the surface height is the bottom.
type Field struct {
	Mode   Mode
	Params Params

	n             int
	width, height float64
	level         float64
	equilibrium   float64

	heights    []float64
	velocities []float64
	prev       []float64
}

// NewField builds a chain of n samples at rest on a width x height surface
// with the default mode, parameters and level.
func NewField(n int, width, height float64) *Field {
	if n < 1 {
		n = 1
	}
	f := &Field{
		Mode:       DefaultMode(),
		Params:     DefaultParams(),
		n:          n,
		width:      width,
		height:     height,
		level:      DefaultLevel,
		heights:    make([]float64, n),
		velocities: make([]float64, n),
		prev:       make([]float64, n),
	}
	f.Reset()
	return f
}

func (f *Field) N() int               { return f.n }
func (f *Field) Width() float64       { return f.width }
func (f *Field) Height() float64      { return f.height }
func (f *Field) Level() float64       { return f.level }
func (f *Field) Equilibrium() float64 { return f.equilibrium }

// SegmentWidth is the horizontal spacing between samples.
func (f *Field) SegmentWidth() float64 { return f.width / float64(f.n) }

// SampleX is the horizontal position sample i is drawn at.
func (f *Field) SampleX(i int) float64 { return float64(i) * f.SegmentWidth() }

// Reset puts every sample at equilibrium with zero velocity. Params and Mode are kept.
func (f *Field) Reset() {
	f.equilibrium = f.height * f.level
	for i := range f.heights {
		f.heights[i] = f.equilibrium
		f.velocities[i] = 0
	}
}

// Resize adopts a new surface size and resets the chain. In-flight
// disturbances are discarded, not rescaled.
func (f *Field) Resize(width, height float64) {
	f.width, f.height = width, height
	f.Reset()
}

// SetLevel changes the equilibrium ratio and resets the chain.
func (f *Field) SetLevel(level float64) {
	f.level = level
	f.Reset()
}

// Advance runs one simulation step. in may be nil.
func (f *Field) Advance(in Influence) {
	p := f.Params
	n := f.n
	seg := f.SegmentWidth()

	// forces come from the pre-step heights so the sweep order does not matter
	copy(f.prev, f.heights)
	for i := 0; i < n; i++ {
		h := f.prev[i]
		left, right := h, h
		if i > 0 {
			left = f.prev[i-1]
		}
		if i < n-1 {
			right = f.prev[i+1]
		}

		v := f.velocities[i] + p.Tension*(left+right-2*h) + p.Gravity
		v *= p.Damping
		v *= p.Viscosity
		h += v

		// the pointer sees the integrated height; its push moves h next step
		if in != nil {
			v += in.Perturb(i, float64(i)*seg, h)
		}

		f.velocities[i] = v
		f.heights[i] = h
		f.applyBoundary(i)
	}

	if f.Mode.ConserveVolume {
		f.conserveVolume()
	}
	if f.Mode.Pull {
		for i := range f.heights {
			f.heights[i] += p.ReturnRate * (f.equilibrium - f.heights[i])
		}
	}
	if f.Mode.Propagate {
		f.propagate()
	}
}

func (f *Field) applyBoundary(i int) {
	if f.heights[i] > f.height {
		f.heights[i] = f.height
		if f.Mode.Boundary == BoundaryBounce && f.velocities[i] > 0 {
			f.velocities[i] *= -f.Params.FloorBounce
		}
	}
	if f.Mode.Boundary != BoundaryBounce {
		return
	}
	if f.heights[i] < f.equilibrium {
		f.heights[i] = f.equilibrium
		if f.velocities[i] < 0 {
			f.velocities[i] *= -f.Params.CeilBounce
		}
	}
}

func (f *Field) conserveVolume() {
	target := f.equilibrium * float64(f.n)
	adjust := (target - f.Volume()) / float64(f.n)
	for i := range f.heights {
		f.heights[i] += adjust
	}
}

// propagate runs after all heights of the step are final; it only writes velocities.
func (f *Field) propagate() {
	spread := f.Params.Spread
	for i := 0; i < f.n; i++ {
		h := f.heights[i]
		if i > 0 {
			f.velocities[i-1] += spread * (h - f.heights[i-1])
		}
		if i < f.n-1 {
			f.velocities[i+1] += spread * (h - f.heights[i+1])
		}
	}
}

// HeightAt returns the height of sample i.
func (f *Field) HeightAt(i int) float64 { return f.heights[i] }

// VelocityAt returns the velocity of sample i.
func (f *Field) VelocityAt(i int) float64 { return f.velocities[i] }

// SetVelocity writes a single slot. Out of range indices are ignored.
func (f *Field) SetVelocity(i int, v float64) {
	if i >= 0 && i < f.n {
		f.velocities[i] = v
	}
}

// SetHeight writes a single slot. Out of range indices are ignored.
func (f *Field) SetHeight(i int, h float64) {
	if i >= 0 && i < f.n {
		f.heights[i] = h
	}
}

// Heights returns a copy of the chain.
func (f *Field) Heights() dynamo.Heights {
	return dynamo.Heights(f.heights).Clone()
}

// HeightsView returns the live slice. Callers must not hold it across ticks.
func (f *Field) HeightsView() []float64 { return f.heights }

func (f *Field) Velocities() []float64 {
	c := make([]float64, f.n)
	copy(c, f.velocities)
	return c
}

// Volume is the sum of all heights.
func (f *Field) Volume() float64 {
	return dynamo.Heights(f.heights).Sum()
}

// VolumeDrift is the displaced volume relative to a chain at rest.
func (f *Field) VolumeDrift() float64 {
	return f.Volume() - f.equilibrium*float64(f.n)
}

// Energy is kinetic energy plus spring energy between neighbors.
func (f *Field) Energy() float64 {
	ke, pe := 0.0, 0.0
	for i := 0; i < f.n; i++ {
		v := f.velocities[i]
		ke += 0.5 * v * v
		if i < f.n-1 {
			d := f.heights[i+1] - f.heights[i]
			pe += 0.5 * f.Params.Tension * d * d
		}
	}
	return ke + pe
}

// Peak is the largest distance of any sample from equilibrium.
func (f *Field) Peak() float64 {
	peak := 0.0
	for _, h := range f.heights {
		peak = math.Max(peak, math.Abs(h-f.equilibrium))
	}
	return peak
}

// IsValid reports whether every height and velocity is finite.
func (f *Field) IsValid() bool {
	return dynamo.Heights(f.heights).IsValid() && dynamo.Heights(f.velocities).IsValid()
}

// GetParams implements dynamo.Configurable. "level" is included.
func (f *Field) GetParams() map[string]float64 {
	m := f.Params.Map()
	m["level"] = f.level
	return m
}

// SetParam implements dynamo.Configurable. Setting "level" resets the chain;
// every other parameter takes effect on the next step.
func (f *Field) SetParam(name string, v float64) error {
	if name == "level" {
		f.SetLevel(v)
		return nil
	}
	return f.Params.Set(name, v)
}
