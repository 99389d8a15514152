package sim

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// Job is one independent run of an ensemble. Build must return a simulator
// with its own field, adapter and clock.
type Job struct {
	Name   string
	Build  func() (*Simulator, error)
	Script Script
}

type Ensemble struct {
	workers int
}

func NewEnsemble(workers int) *Ensemble {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Ensemble{workers: workers}
}

// Run executes every job with the same config. Results are in job order.
func (e *Ensemble) Run(ctx context.Context, jobs []Job, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	errs := make([]error, len(jobs))
	sem := make(chan struct{}, e.workers)

	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			job := jobs[idx]
			s, err := job.Build()
			if err != nil {
				errs[idx] = fmt.Errorf("%s: %w", job.Name, err)
				return
			}
			results[idx], errs[idx] = s.Run(ctx, cfg, job.Script)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
