package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/ripple/internal/experiment"
	"github.com/san-kum/ripple/internal/sim"
)

// Score turns a finished run into a number to minimize.
type Score func(*sim.Result) float64

// MetricScore minimizes a named metric. Runs that recorded errors or report a
// negative value (a chain that never settled) score +Inf.
func MetricScore(name string) Score {
	return func(r *sim.Result) float64 {
		v, ok := r.Metrics[name]
		if !ok || len(r.Errors) > 0 || v < 0 || math.IsNaN(v) {
			return math.Inf(1)
		}
		return v
	}
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Score  float64
}

func (g *GridSearch) Size() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search evaluates every grid point and returns the best parameters, their
// score and all trials sorted best first. Points whose build or run fails are
// skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	script sim.Script,
	score Score,
) (map[string]float64, float64, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, fmt.Errorf("grid search: %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	trials := make([]Trial, 0, g.Size())

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) {
		exp, err := buildExperiment(params)
		if err != nil {
			return
		}

		result, err := exp.Run(ctx, script)
		if err != nil {
			return
		}

		val := score(result)
		trials = append(trials, Trial{Params: params, Score: val})
		if val < best {
			best = val
			bestParams = params
		}
	})
	if err != nil {
		return bestParams, best, trials, err
	}

	sort.SliceStable(trials, func(i, j int) bool { return trials[i].Score < trials[j].Score })
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	visit func(map[string]float64),
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		visit(current)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}
