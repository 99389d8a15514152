package metrics

import (
	"math"

	"github.com/san-kum/ripple/internal/physics"
	"github.com/san-kum/ripple/internal/sim"
)

var (
	_ sim.Metric = (*Energy)(nil)
	_ sim.Metric = (*Peak)(nil)
	_ sim.Metric = (*VolumeDrift)(nil)
)

// Energy is the mean field energy over all observed ticks.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f *physics.Field, step int, t float64) {
	e.totalEnergy += f.Energy()
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// Peak is the largest displacement from equilibrium seen on any tick.
type Peak struct {
	name string
	max  float64
}

func NewPeak() *Peak {
	return &Peak{name: "peak"}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(f *physics.Field, step int, t float64) {
	p.max = math.Max(p.max, f.Peak())
}

func (p *Peak) Value() float64 { return p.max }
func (p *Peak) Reset()         { p.max = 0 }

// VolumeDrift is the largest absolute difference between the chain's volume
// and the volume at rest.
type VolumeDrift struct {
	name     string
	maxDrift float64
}

func NewVolumeDrift() *VolumeDrift {
	return &VolumeDrift{name: "volume_drift"}
}

func (v *VolumeDrift) Name() string { return v.name }

func (v *VolumeDrift) Observe(f *physics.Field, step int, t float64) {
	v.maxDrift = math.Max(v.maxDrift, math.Abs(f.VolumeDrift()))
}

func (v *VolumeDrift) Value() float64 { return v.maxDrift }
func (v *VolumeDrift) Reset()         { v.maxDrift = 0 }
