package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ripple/internal/config"
	"github.com/san-kum/ripple/internal/control"
	"github.com/san-kum/ripple/internal/dynamo"
	"github.com/san-kum/ripple/internal/experiment"
	"github.com/san-kum/ripple/internal/physics"
	"github.com/san-kum/ripple/internal/sim"
)

// Event kinds a scenario can replay.
const (
	EventMove    = "move"
	EventPress   = "press"
	EventRelease = "release"
	EventSwipe   = "swipe"
	EventResize  = "resize"
	EventSet     = "set"
)

// Scenario is a scripted pointer session replayed against a headless run.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Preset      string  `yaml:"preset"`
	Steps       int     `yaml:"steps"`
	Events      []Event `yaml:"events"`

	byStep map[int][]Event
}

// Event happens right before step At is ticked. A swipe expands into one
// move per step from (X, Y) to (X2, Y2) over Over steps.
type Event struct {
	At     int     `yaml:"at"`
	Type   string  `yaml:"type"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	X2     float64 `yaml:"x2"`
	Y2     float64 `yaml:"y2"`
	Over   int     `yaml:"over"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Param  string  `yaml:"param"`
	Value  float64 `yaml:"value"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	if err := scenario.Compile(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Compile validates the events and indexes them by step. It must be called
// after editing Events by hand.
func (s *Scenario) Compile() error {
	s.byStep = make(map[int][]Event)
	for i, ev := range s.Events {
		if ev.At < 0 {
			return fmt.Errorf("event %d: negative step %d: %w", i, ev.At, dynamo.ErrInvalidConfig)
		}
		switch ev.Type {
		case EventMove, EventPress, EventRelease:
			s.byStep[ev.At] = append(s.byStep[ev.At], ev)
		case EventSwipe:
			n := ev.Over
			if n < 1 {
				n = 1
			}
			for k := 0; k <= n; k++ {
				frac := float64(k) / float64(n)
				s.byStep[ev.At+k] = append(s.byStep[ev.At+k], Event{
					At:   ev.At + k,
					Type: EventMove,
					X:    ev.X + (ev.X2-ev.X)*frac,
					Y:    ev.Y + (ev.Y2-ev.Y)*frac,
				})
			}
		case EventResize:
			if ev.Width <= 0 || ev.Height <= 0 {
				return fmt.Errorf("event %d: resize to %vx%v: %w", i, ev.Width, ev.Height, dynamo.ErrInvalidConfig)
			}
			s.byStep[ev.At] = append(s.byStep[ev.At], ev)
		case EventSet:
			if _, ok := physics.DefaultParams().Get(ev.Param); !ok && ev.Param != "level" {
				return fmt.Errorf("event %d: %s: %w", i, ev.Param, dynamo.ErrUnknownParam)
			}
			if math.IsNaN(ev.Value) || math.IsInf(ev.Value, 0) {
				return fmt.Errorf("event %d: %s: %w", i, ev.Param, dynamo.ErrMalformedInput)
			}
			s.byStep[ev.At] = append(s.byStep[ev.At], ev)
		default:
			return fmt.Errorf("event %d: unknown type %q: %w", i, ev.Type, dynamo.ErrInvalidConfig)
		}
	}
	return nil
}

// Apply implements sim.Script. It only reads the scenario, so one scenario
// can drive many runs at once.
func (s *Scenario) Apply(step int, a *control.Adapter) {
	for _, ev := range s.byStep[step] {
		switch ev.Type {
		case EventMove:
			a.Move(ev.X, ev.Y)
		case EventPress:
			a.Press(ev.X, ev.Y)
		case EventRelease:
			a.Release()
		case EventResize:
			a.Resize(ev.Width, ev.Height)
		case EventSet:
			_ = a.Field().SetParam(ev.Param, ev.Value)
		}
	}
}

// LastStep is the step of the final event, or -1 for an empty scenario.
func (s *Scenario) LastStep() int {
	last := -1
	for step := range s.byStep {
		if step > last {
			last = step
		}
	}
	return last
}

// Config resolves the scenario's preset and step count on top of base.
func (s *Scenario) Config(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	if s.Preset != "" {
		p, err := config.GetPreset(s.Preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}
	if s.Steps > 0 {
		cfg.Steps = s.Steps
	}
	return cfg, nil
}

// RunScenario executes the scenario against a fresh field.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, metrics []sim.Metric) (*sim.Result, error) {
	if scenario.byStep == nil {
		if err := scenario.Compile(); err != nil {
			return nil, err
		}
	}
	cfg, err := scenario.Config(base)
	if err != nil {
		return nil, err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(metrics); err != nil {
		return nil, fmt.Errorf("scenario %s setup: %w", scenario.Name, err)
	}
	result, err := exp.Run(ctx, scenario)
	if err != nil {
		return result, fmt.Errorf("scenario %s run: %w", scenario.Name, err)
	}
	return result, nil
}

// Builtin returns a named scenario sized for cfg's surface.
func Builtin(name string, cfg *config.Config) (*Scenario, error) {
	w, h := cfg.Width, cfg.Height
	eq := h * cfg.Level
	var s *Scenario

	switch name {
	case "drop":
		s = &Scenario{
			Name:        "drop",
			Description: "press just above the surface at the center and let go",
			Events: []Event{
				{At: 0, Type: EventPress, X: w / 2, Y: eq - 20},
				{At: 3, Type: EventRelease},
			},
		}
	case "swipe":
		s = &Scenario{
			Name:        "swipe",
			Description: "drag across the surface from left to right",
			Events: []Event{
				{At: 0, Type: EventSwipe, X: w * 0.1, Y: eq - 15, X2: w * 0.9, Y2: eq - 15, Over: 60},
				{At: 61, Type: EventRelease},
			},
		}
	case "rain":
		rng := rand.New(rand.NewSource(cfg.Seed))
		events := make([]Event, 0, 40)
		for k := 0; k < 20; k++ {
			at := k * 15
			events = append(events,
				Event{At: at, Type: EventPress, X: rng.Float64() * w, Y: eq - 5 - rng.Float64()*10},
				Event{At: at + 2, Type: EventRelease},
			)
		}
		s = &Scenario{Name: "rain", Description: "scattered short presses", Events: events}
	default:
		return nil, fmt.Errorf("unknown scenario: %s", name)
	}

	if err := s.Compile(); err != nil {
		return nil, err
	}
	return s, nil
}

func BuiltinNames() []string {
	names := []string{"drop", "swipe", "rain"}
	sort.Strings(names)
	return names
}

// ParameterSweep runs one scenario across a range of values of one parameter
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Script    sim.Script
	Workers   int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	Final      dynamo.Heights
	MaxEnergy  float64
	MaxPeak    float64
	Metrics    map[string]float64
}

// RunSweep executes the sweep in parallel. Results are in parameter order.
func RunSweep(ctx context.Context, sweep *ParameterSweep, metrics func() []sim.Metric) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step: %w", dynamo.ErrInvalidConfig)
	}
	if _, ok := physics.DefaultParams().Get(sweep.ParamName); !ok && sweep.ParamName != "level" {
		return nil, fmt.Errorf("%s: %w", sweep.ParamName, dynamo.ErrUnknownParam)
	}

	values := Linspace(sweep.ParamMin, sweep.ParamMax, sweep.NumSteps)
	jobs := make([]sim.Job, len(values))
	for i, v := range values {
		cfg := sweep.Base.Clone()
		if sweep.ParamName == "level" {
			cfg.Level = v
		} else {
			_ = cfg.Params.Set(sweep.ParamName, v)
		}
		jobs[i] = experiment.Job(fmt.Sprintf("%s=%.4f", sweep.ParamName, v), cfg, metrics, sweep.Script)
	}

	runs, err := sim.NewEnsemble(sweep.Workers).Run(ctx, jobs, experiment.SimConfig(sweep.Base, 1))
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(runs))
	for i, r := range runs {
		results[i] = SweepResult{
			ParamValue: values[i],
			Final:      r.Final(),
			MaxEnergy:  maxOf(r.Energies),
			MaxPeak:    peakOf(r.Frames, sweep.Base.Height*levelOf(sweep, values[i])),
			Metrics:    r.Metrics,
		}
	}
	return results, nil
}

func levelOf(sweep *ParameterSweep, v float64) float64 {
	if sweep.ParamName == "level" {
		return v
	}
	return sweep.Base.Level
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

func maxOf(xs []float64) float64 {
	m := math.Inf(-1)
	for _, x := range xs {
		m = math.Max(m, x)
	}
	if math.IsInf(m, -1) {
		return 0
	}
	return m
}

func peakOf(frames []dynamo.Heights, eq float64) float64 {
	peak := 0.0
	for _, fr := range frames {
		for _, h := range fr {
			peak = math.Max(peak, math.Abs(h-eq))
		}
	}
	return peak
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Base *config.Config
	// Perturbation is the largest initial velocity given to any sample.
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// MonteCarloResult holds statistics from Monte Carlo runs
type MonteCarloResult struct {
	TrialID   int
	Initial   []float64
	Final     dynamo.Heights
	Stable    bool // stayed finite and inside the surface
	SettledAt float64
}

// RunMonteCarlo starts each trial from random initial velocities and reports
// whether the chain stayed bounded.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		exp := experiment.New(cfg.Base)
		exp.RecordEvery = 0
		m, _ := experiment.NewRegistry().GetMetric("settle_step")
		if err := exp.Setup([]sim.Metric{m}); err != nil {
			return nil, err
		}

		f := exp.Field()
		initial := make([]float64, f.N())
		for i := range initial {
			initial[i] = (rng.Float64()*2 - 1) * cfg.Perturbation
			f.SetVelocity(i, initial[i])
		}

		result, err := exp.Run(ctx, nil)
		if err != nil {
			return nil, err
		}

		final := result.Final()
		stable := len(result.Errors) == 0
		for _, h := range final {
			if h < -f.Height() || h > f.Height() {
				stable = false
				break
			}
		}

		results = append(results, MonteCarloResult{
			TrialID:   trial,
			Initial:   initial,
			Final:     final,
			Stable:    stable,
			SettledAt: result.Metrics["settle_step"],
		})
	}

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
