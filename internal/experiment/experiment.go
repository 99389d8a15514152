package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/ripple/internal/config"
	"github.com/san-kum/ripple/internal/control"
	"github.com/san-kum/ripple/internal/dynamo"
	"github.com/san-kum/ripple/internal/physics"
	"github.com/san-kum/ripple/internal/sim"
)

// Epoch is where every headless run's clock starts, so recorded times and
// pointer windows line up between runs.
var Epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Experiment is one headless run built from a session config.
type Experiment struct {
	cfg         *config.Config
	RecordEvery int

	clock     *dynamo.ManualClock
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg, RecordEvery: 1}
}

// Setup builds the field, adapter and simulator and registers metrics.
func (e *Experiment) Setup(metrics []sim.Metric) error {
	f, err := e.cfg.NewField()
	if err != nil {
		return err
	}
	e.clock = dynamo.NewManualClock(Epoch)
	a := control.NewAdapter(f, e.clock)
	a.Timeout = e.cfg.Timeout
	a.ShowIndicator = e.cfg.Indicator

	e.simulator = sim.New(a)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context, script sim.Script) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	return e.simulator.Run(ctx, SimConfig(e.cfg, e.RecordEvery), script)
}

// SimConfig is the tick schedule for a headless run of cfg.
func SimConfig(cfg *config.Config, recordEvery int) sim.Config {
	return sim.Config{
		Steps:         cfg.Steps,
		Dt:            cfg.Dt(),
		ValidateState: true,
		RecordEvery:   recordEvery,
	}
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Field() *physics.Field {
	if e.simulator == nil {
		return nil
	}
	return e.simulator.Field()
}

// Job wraps the experiment for an ensemble run.
func Job(name string, cfg *config.Config, metrics func() []sim.Metric, script sim.Script) sim.Job {
	return sim.Job{
		Name:   name,
		Script: script,
		Build: func() (*sim.Simulator, error) {
			var ms []sim.Metric
			if metrics != nil {
				ms = metrics()
			}
			exp := New(cfg)
			if err := exp.Setup(ms); err != nil {
				return nil, err
			}
			return exp.GetSimulator(), nil
		},
	}
}
