package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/ripple/internal/metrics"
	"github.com/san-kum/ripple/internal/sim"
)

const (
	DefaultStabilityThreshold = 200.0
	DefaultSettleTolerance    = 0.05
)

// Registry maps metric names to constructors so runs can pick metrics by flag.
type Registry struct {
	metrics map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func() sim.Metric),
	}

	r.metrics["volume_drift"] = func() sim.Metric { return metrics.NewVolumeDrift() }
	r.metrics["energy"] = func() sim.Metric { return metrics.NewEnergy() }
	r.metrics["peak"] = func() sim.Metric { return metrics.NewPeak() }
	r.metrics["stability"] = func() sim.Metric { return metrics.NewStability(DefaultStabilityThreshold) }
	r.metrics["settle_step"] = func() sim.Metric { return metrics.NewSettle(DefaultSettleTolerance) }

	return r
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

// Metrics builds the named metrics, or all of them when names is empty.
func (r *Registry) Metrics(names ...string) ([]sim.Metric, error) {
	if len(names) == 0 {
		names = r.ListMetrics()
	}
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		m, err := r.GetMetric(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
