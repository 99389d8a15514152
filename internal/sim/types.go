package sim

import (
	"time"

	"github.com/san-kum/ripple/internal/control"
	"github.com/san-kum/ripple/internal/dynamo"
	"github.com/san-kum/ripple/internal/physics"
)

// Metric folds per-tick field state into one number.
type Metric interface {
	Name() string
	Observe(f *physics.Field, step int, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every tick. Renderers and recorders implement it.
type Observer interface {
	OnStep(f *physics.Field, step int, t float64)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(f *physics.Field, step int, t float64)

func (fn ObserverFunc) OnStep(f *physics.Field, step int, t float64) { fn(f, step, t) }

// Script feeds pointer events to the adapter before a given step is ticked.
type Script interface {
	Apply(step int, a *control.Adapter)
}

type Config struct {
	Steps         int
	Dt            time.Duration
	ValidateState bool
	// RecordEvery keeps one frame per n ticks; 0 records nothing but the final frame.
	RecordEvery int
}

type Result struct {
	Frames     []dynamo.Heights
	Times      []float64
	Volumes    []float64
	Energies   []float64
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Final returns the last recorded frame.
func (r *Result) Final() dynamo.Heights {
	if len(r.Frames) == 0 {
		return nil
	}
	return r.Frames[len(r.Frames)-1]
}

// Series returns the height history of one sample across recorded frames.
func (r *Result) Series(i int) []float64 {
	out := make([]float64, 0, len(r.Frames))
	for _, fr := range r.Frames {
		if i >= 0 && i < len(fr) {
			out = append(out, fr[i])
		}
	}
	return out
}
