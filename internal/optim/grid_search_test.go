package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/ripple/internal/automation"
	"github.com/san-kum/ripple/internal/config"
	"github.com/san-kum/ripple/internal/experiment"
	"github.com/san-kum/ripple/internal/sim"
)

func build(params map[string]float64) (*experiment.Experiment, error) {
	cfg := config.DefaultConfig()
	cfg.Samples = 40
	cfg.Steps = 1500
	for k, v := range params {
		if err := cfg.Params.Set(k, v); err != nil {
			return nil, err
		}
	}
	m, _ := experiment.NewRegistry().GetMetric("settle_step")
	exp := experiment.New(cfg)
	exp.RecordEvery = 0
	if err := exp.Setup([]sim.Metric{m}); err != nil {
		return nil, err
	}
	exp.Field().SetVelocity(20, -6)
	return exp, nil
}

func TestGridSearchPrefersDamping(t *testing.T) {
	g := NewGridSearch([]string{"damping", "returnRate"}, [][]float64{{0.8, 0.99}, {0.005, 0.02}})
	if g.Size() != 4 {
		t.Fatalf("expected 4 grid points, got %d", g.Size())
	}

	best, score, trials, err := g.Search(context.Background(), build, nil, MetricScore("settle_step"))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(trials) != 4 {
		t.Fatalf("expected 4 trials, got %d", len(trials))
	}
	if best["returnRate"] != 0.02 {
		t.Errorf("expected the stronger pull to settle first, got %v", best)
	}
	if math.IsInf(score, 1) || score != trials[0].Score {
		t.Errorf("unexpected best score %v", score)
	}
	for i := 1; i < len(trials); i++ {
		if trials[i-1].Score > trials[i].Score {
			t.Errorf("trials not sorted: %v", trials)
		}
	}
}

func TestGridSearchSkipsBadPoints(t *testing.T) {
	g := NewGridSearch([]string{"bogus"}, [][]float64{{1, 2}})
	best, score, trials, err := g.Search(context.Background(), build, nil, MetricScore("settle_step"))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best != nil || !math.IsInf(score, 1) || len(trials) != 0 {
		t.Errorf("expected nothing evaluated, got %v %v %v", best, score, trials)
	}
}

func TestGridSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGridSearch([]string{"damping"}, [][]float64{{0.9}})
	if _, _, _, err := g.Search(ctx, build, nil, MetricScore("settle_step")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGridSearchMismatchedRanges(t *testing.T) {
	g := NewGridSearch([]string{"damping", "tension"}, [][]float64{{0.9}})
	if _, _, _, err := g.Search(context.Background(), build, nil, MetricScore("peak")); err == nil {
		t.Error("expected error for mismatched ranges")
	}
}

func TestMetricScore(t *testing.T) {
	score := MetricScore("settle_step")
	tests := []struct {
		name string
		r    *sim.Result
		want float64
	}{
		{"settled", &sim.Result{Metrics: map[string]float64{"settle_step": 40}}, 40},
		{"never settled", &sim.Result{Metrics: map[string]float64{"settle_step": -1}}, math.Inf(1)},
		{"missing", &sim.Result{Metrics: map[string]float64{}}, math.Inf(1)},
		{"diverged", &sim.Result{Metrics: map[string]float64{"settle_step": 3}, Errors: []error{errors.New("nan")}}, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := score(tt.r); got != tt.want {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGridSearchWithScript(t *testing.T) {
	cfg := config.DefaultConfig()
	script, err := automation.Builtin("drop", cfg)
	if err != nil {
		t.Fatalf("builtin failed: %v", err)
	}
	g := NewGridSearch([]string{"strength"}, [][]float64{{0.01, 0.05}})
	peak := func(params map[string]float64) (*experiment.Experiment, error) {
		c := config.DefaultConfig()
		c.Steps = 30
		c.Params.Strength = params["strength"]
		m, _ := experiment.NewRegistry().GetMetric("peak")
		exp := experiment.New(c)
		return exp, exp.Setup([]sim.Metric{m})
	}

	best, _, _, err := g.Search(context.Background(), peak, script, MetricScore("peak"))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best["strength"] != 0.01 {
		t.Errorf("weaker pointer should disturb less, got %v", best)
	}
}
