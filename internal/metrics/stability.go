package metrics

import (
	"github.com/san-kum/ripple/internal/physics"
	"github.com/san-kum/ripple/internal/sim"
)

var (
	_ sim.Metric = (*Stability)(nil)
	_ sim.Metric = (*Settle)(nil)
)

// Stability is the share of ticks on which the chain stayed finite and
// within threshold of equilibrium.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f *physics.Field, step int, t float64) {
	s.samples++
	if !f.IsValid() || f.Peak() > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Settle reports the step from which the peak displacement has stayed below
// tolerance, or -1 while the chain is still moving.
type Settle struct {
	name      string
	tolerance float64
	since     int
	settled   bool
}

func NewSettle(tolerance float64) *Settle {
	return &Settle{
		name:      "settle_step",
		tolerance: tolerance,
	}
}

func (s *Settle) Name() string { return s.name }

func (s *Settle) Observe(f *physics.Field, step int, t float64) {
	if f.IsValid() && f.Peak() < s.tolerance {
		if !s.settled {
			s.settled = true
			s.since = step
		}
		return
	}
	s.settled = false
}

func (s *Settle) Value() float64 {
	if !s.settled {
		return -1
	}
	return float64(s.since)
}

func (s *Settle) Reset() {
	s.since = 0
	s.settled = false
}

// Standard returns the metric set the CLI reports.
func Standard(threshold, tolerance float64) []sim.Metric {
	return []sim.Metric{
		NewVolumeDrift(),
		NewEnergy(),
		NewPeak(),
		NewStability(threshold),
		NewSettle(tolerance),
	}
}
