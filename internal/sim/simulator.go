package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/ripple/internal/control"
	"github.com/san-kum/ripple/internal/dynamo"
	"github.com/san-kum/ripple/internal/physics"
)

// Simulator is the tick driver: every Tick turns pointer state into an
// influence, advances the field once and notifies metrics and observers.
type Simulator struct {
	adapter   *control.Adapter
	metrics   []Metric
	observers []Observer

	step  int
	start time.Time
}

func New(a *control.Adapter) *Simulator {
	return &Simulator{
		adapter:   a,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		start:     a.Clock().Now(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Adapter() *control.Adapter { return s.adapter }
func (s *Simulator) Field() *physics.Field     { return s.adapter.Field() }
func (s *Simulator) Step() int                 { return s.step }

// Elapsed is the time since the simulator was built or last restarted, in seconds.
func (s *Simulator) Elapsed(now time.Time) float64 { return now.Sub(s.start).Seconds() }

// Tick advances the field by one step evaluated at now.
func (s *Simulator) Tick(now time.Time) {
	f := s.adapter.Field()
	f.Advance(s.adapter.Influence(now))
	s.step++

	t := s.Elapsed(now)
	for _, m := range s.metrics {
		m.Observe(f, s.step, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(f, s.step, t)
	}
}

// Restart zeroes the step counter and metrics without touching the field.
func (s *Simulator) Restart() {
	s.step = 0
	s.start = s.adapter.Clock().Now()
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Metrics returns the current value of every registered metric.
func (s *Simulator) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Run drives cfg.Steps ticks headlessly. When the adapter runs on a
// ManualClock the clock is advanced by cfg.Dt after every tick, so runs are
// reproducible; with any other clock ticks read wall time.
func (s *Simulator) Run(ctx context.Context, cfg Config, script Script) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	s.Restart()

	f := s.adapter.Field()
	clock := s.adapter.Clock()
	manual, _ := clock.(*dynamo.ManualClock)

	result := &Result{
		Frames:   make([]dynamo.Heights, 0, frameCap(cfg)),
		Times:    make([]float64, 0, frameCap(cfg)),
		Volumes:  make([]float64, 0, cfg.Steps+1),
		Energies: make([]float64, 0, cfg.Steps+1),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}
	record := func(t float64) {
		result.Frames = append(result.Frames, f.Heights())
		result.Times = append(result.Times, t)
	}

	record(0)
	result.Volumes = append(result.Volumes, f.Volume())
	result.Energies = append(result.Energies, f.Energy())

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		if script != nil {
			script.Apply(i, s.adapter)
		}
		now := clock.Now()
		s.Tick(now)
		if manual != nil {
			manual.Advance(cfg.Dt)
		}
		result.StepsTaken++

		t := s.Elapsed(now) + cfg.Dt.Seconds()
		if !f.IsValid() {
			err := &dynamo.SimulationError{
				Step:    s.step,
				Time:    t,
				Wrapped: dynamo.SimError{Time: t, Step: s.step, Message: dynamo.ErrInvalidState.Error()},
			}
			result.Errors = append(result.Errors, err)
			if cfg.ValidateState {
				record(t)
				break
			}
		}

		result.Volumes = append(result.Volumes, f.Volume())
		result.Energies = append(result.Energies, f.Energy())
		if cfg.RecordEvery > 0 && s.step%cfg.RecordEvery == 0 {
			record(t)
		} else if i == cfg.Steps-1 {
			record(t)
		}
	}

	result.Metrics = s.Metrics()
	return result, nil
}

func frameCap(cfg Config) int {
	if cfg.RecordEvery <= 0 {
		return 2
	}
	return cfg.Steps/cfg.RecordEvery + 2
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %v: %w", cfg.Dt, dynamo.ErrInvalidConfig)
	}
	if cfg.Steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d: %w", cfg.Steps, dynamo.ErrInvalidConfig)
	}
	return nil
}

// RunWithCallback ticks until the callback returns false or ctx is canceled.
// The callback sees the field after each tick.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(f *physics.Field, step int) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	clock := s.adapter.Clock()
	manual, _ := clock.(*dynamo.ManualClock)

	for i := 0; cfg.Steps == 0 || i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.Tick(clock.Now())
		if manual != nil {
			manual.Advance(cfg.Dt)
		}
		if cfg.ValidateState && !s.Field().IsValid() {
			return fmt.Errorf("step %d: %w", s.step, dynamo.ErrInvalidState)
		}
		if !callback(s.Field(), s.step) {
			return nil
		}
	}
	return nil
}
