package automation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/san-kum/ripple/internal/config"
	"github.com/san-kum/ripple/internal/control"
	"github.com/san-kum/ripple/internal/dynamo"
	"github.com/san-kum/ripple/internal/physics"
	"github.com/san-kum/ripple/internal/sim"
)

const scenarioYAML = `
name: poke-and-tune
preset: poke
steps: 90
events:
  - {at: 0, type: move, x: 400, y: 290}
  - {at: 10, type: set, param: damping, value: 0.9}
  - {at: 20, type: swipe, x: 100, y: 300, x2: 200, y2: 300, over: 4}
  - {at: 30, type: release}
`

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if s.Name != "poke-and-tune" || s.Steps != 90 {
		t.Errorf("unexpected header: %+v", s)
	}
	if got := s.LastStep(); got != 30 {
		t.Errorf("expected last step 30, got %d", got)
	}
	if n := len(s.byStep[22]); n != 1 || s.byStep[22][0].X != 150 {
		t.Errorf("expected swipe midpoint at step 22, got %+v", s.byStep[22])
	}
}

func TestParseScenarioRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"unknown type", `events: [{at: 0, type: wiggle}]`, dynamo.ErrInvalidConfig},
		{"negative step", `events: [{at: -1, type: move}]`, dynamo.ErrInvalidConfig},
		{"bad resize", `events: [{at: 0, type: resize, width: 0, height: 10}]`, dynamo.ErrInvalidConfig},
		{"unknown param", `events: [{at: 0, type: set, param: wobble, value: 1}]`, dynamo.ErrUnknownParam},
		{"not yaml", `events: [`, dynamo.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tt.yaml)); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestScenarioApply(t *testing.T) {
	s, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	f := physics.NewField(100, 800, 600)
	f.Mode.Interaction = physics.InteractionImpulse
	a := control.NewAdapter(f, dynamo.NewManualClock(time.Unix(0, 0)))

	s.Apply(0, a)
	if f.VelocityAt(50) != f.Params.ImpulseVelocity {
		t.Errorf("expected a poke at sample 50, got %v", f.VelocityAt(50))
	}
	s.Apply(10, a)
	if f.Params.Damping != 0.9 {
		t.Errorf("expected damping 0.9, got %v", f.Params.Damping)
	}
	s.Apply(30, a)
	if a.Pointer().Active {
		t.Error("expected pointer released")
	}
}

func TestRunScenario(t *testing.T) {
	s, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	result, err := RunScenario(context.Background(), s, config.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 90 {
		t.Errorf("expected 90 steps from the scenario, got %d", result.StepsTaken)
	}
	if got := result.Series(50)[1]; got >= 300 {
		t.Errorf("expected the poke to lift sample 50 on the first tick, got %v", got)
	}
}

func TestRunScenarioUnknownPreset(t *testing.T) {
	s := &Scenario{Name: "x", Preset: "lava"}
	if _, err := RunScenario(context.Background(), s, config.DefaultConfig(), nil); !errors.Is(err, dynamo.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestBuiltins(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Steps = 120
	cfg.Seed = 3

	for _, name := range BuiltinNames() {
		t.Run(name, func(t *testing.T) {
			s, err := Builtin(name, cfg)
			if err != nil {
				t.Fatalf("builtin failed: %v", err)
			}
			result, err := RunScenario(context.Background(), s, cfg, nil)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if len(result.Errors) != 0 {
				t.Errorf("unexpected errors: %v", result.Errors)
			}
		})
	}

	if _, err := Builtin("hail", cfg); err == nil {
		t.Error("expected unknown scenario error")
	}
}

func TestRunSweep(t *testing.T) {
	base := config.DefaultConfig()
	base.Samples = 40
	base.Steps = 60
	script, _ := Builtin("drop", base)

	results, err := RunSweep(context.Background(), &ParameterSweep{
		Base:      base,
		ParamName: "strength",
		ParamMin:  0,
		ParamMax:  0.1,
		NumSteps:  3,
		Script:    script,
	}, nil)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].ParamValue != 0 || results[2].ParamValue != 0.1 {
		t.Errorf("unexpected values %v, %v", results[0].ParamValue, results[2].ParamValue)
	}
	if results[0].MaxPeak != 0 {
		t.Errorf("zero strength should leave the surface flat, got %v", results[0].MaxPeak)
	}
	if results[2].MaxPeak <= results[1].MaxPeak {
		t.Errorf("stronger pointer should disturb more: %v vs %v", results[2].MaxPeak, results[1].MaxPeak)
	}
}

func TestRunSweepRejects(t *testing.T) {
	base := config.DefaultConfig()
	if _, err := RunSweep(context.Background(), &ParameterSweep{Base: base, ParamName: "nope", NumSteps: 2}, nil); !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if _, err := RunSweep(context.Background(), &ParameterSweep{Base: base, ParamName: "damping"}, nil); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestMonteCarlo(t *testing.T) {
	base := config.DefaultConfig()
	base.Samples = 30
	base.Steps = 100

	results, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{
		Base:         base,
		Perturbation: 3,
		NumTrials:    4,
		Seed:         11,
	})
	if err != nil {
		t.Fatalf("monte carlo failed: %v", err)
	}
	stable, unstable := MonteCarloStats(results)
	if stable != 4 || unstable != 0 {
		t.Errorf("expected all default trials stable, got %d/%d", stable, unstable)
	}
	if len(results[0].Initial) != 30 {
		t.Errorf("expected 30 initial velocities, got %d", len(results[0].Initial))
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Linspace[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if one := Linspace(2, 9, 1); len(one) != 1 || one[0] != 2 {
		t.Errorf("unexpected single value %v", one)
	}
}

var _ sim.Script = (*Scenario)(nil)
