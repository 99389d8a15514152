package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/ripple/internal/automation"
	"github.com/san-kum/ripple/internal/config"
	"github.com/san-kum/ripple/internal/dynamo"
	"github.com/san-kum/ripple/internal/experiment"
	"github.com/san-kum/ripple/internal/optim"
	"github.com/san-kum/ripple/internal/physics"
	"github.com/san-kum/ripple/internal/sim"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg, err := config.GetPreset(args[0])
		if err != nil {
			return fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
		return yaml.NewEncoder(os.Stdout).Encode(cfg)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		fmt.Fprintf(w, "%s\t%s\n", name, config.Presets[name].Description)
	}
	return w.Flush()
}

func showScript(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		cfg := config.DefaultConfig()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SCENARIO\tEVENTS\tDESCRIPTION")
		for _, name := range automation.BuiltinNames() {
			sc, err := automation.Builtin(name, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%d\t%s\n", name, len(sc.Events), sc.Description)
		}
		return w.Flush()
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := automation.Builtin(args[0], cfg)
	if err != nil {
		return err
	}
	return yaml.NewEncoder(os.Stdout).Encode(sc)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := automation.Builtin(replay, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	sweep := &automation.ParameterSweep{
		Base:      cfg,
		ParamName: args[0],
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
		Script:    sc,
		Workers:   workers,
	}
	registry := experiment.NewRegistry()
	metricsFn := func() []sim.Metric {
		ms, _ := registry.Metrics()
		return ms
	}

	fmt.Printf("sweeping %s over [%g, %g] with %q, %d values\n\n", args[0], sweepMin, sweepMax, sc.Name, sweepSteps)
	start := time.Now()
	results, err := automation.RunSweep(ctx, sweep, metricsFn)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMAX ENERGY\tMAX PEAK\tSETTLE\tSTABILITY\tDRIFT\n", strings.ToUpper(args[0]))
	for _, r := range results {
		settle := "-"
		if s := r.Metrics["settle_step"]; s >= 0 {
			settle = strconv.Itoa(int(s))
		}
		fmt.Fprintf(w, "%.4f\t%.3f\t%.2f\t%s\t%.3f\t%.3g\n",
			r.ParamValue, r.MaxEnergy, r.MaxPeak, settle, r.Metrics["stability"], r.Metrics["volume_drift"])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d runs in %v\n", len(results), time.Since(start))
	return nil
}

// parseGrid reads name=min:max:n.
func parseGrid(entry string) (string, []float64, error) {
	name, rng, ok := strings.Cut(entry, "=")
	parts := strings.Split(rng, ":")
	if !ok || len(parts) != 3 {
		return "", nil, fmt.Errorf("--grid %q: want name=min:max:n: %w", entry, dynamo.ErrMalformedInput)
	}
	lo, err1 := strconv.ParseFloat(parts[0], 64)
	hi, err2 := strconv.ParseFloat(parts[1], 64)
	n, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || n < 1 {
		return "", nil, fmt.Errorf("--grid %q: %w", entry, dynamo.ErrMalformedInput)
	}
	if _, known := physics.DefaultParams().Get(name); !known && name != "level" {
		return "", nil, fmt.Errorf("--grid %s: %w", name, dynamo.ErrUnknownParam)
	}
	return name, automation.Linspace(lo, hi, n), nil
}

func runTune(cmd *cobra.Command, args []string) error {
	if len(grid) == 0 {
		return fmt.Errorf("tune needs at least one --grid")
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := automation.Builtin(replay, cfg)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	if _, err := registry.GetMetric(metricName); err != nil {
		return err
	}

	names := make([]string, 0, len(grid))
	ranges := make([][]float64, 0, len(grid))
	for _, entry := range grid {
		name, values, err := parseGrid(entry)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	gs := optim.NewGridSearch(names, ranges)

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		c := cfg.Clone()
		for name, v := range params {
			if name == "level" {
				c.Level = v
				continue
			}
			if err := c.Params.Set(name, v); err != nil {
				return nil, err
			}
		}
		m, err := registry.GetMetric(metricName)
		if err != nil {
			return nil, err
		}
		exp := experiment.New(c)
		exp.RecordEvery = 0
		return exp, exp.Setup([]sim.Metric{m})
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("tuning %s over %d points with %q\n\n", strings.Join(names, ", "), gs.Size(), sc.Name)
	best, score, trials, err := gs.Search(ctx, build, sc, optim.MetricScore(metricName))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(metricName))
	for _, tr := range trials[:min(10, len(trials))] {
		cols := make([]string, len(names))
		for i, n := range names {
			cols[i] = fmt.Sprintf("%.4f", tr.Params[n])
		}
		fmt.Fprintf(w, "%s\t%.4g\n", strings.Join(cols, "\t"), tr.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if best == nil {
		fmt.Println("\nno grid point produced a finite score")
		return nil
	}
	fmt.Printf("\nbest %s = %.4g at %v\n", metricName, score, best)
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         cfg.Seed,
	})
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	settled, sum := 0, 0.0
	for _, r := range results {
		if r.SettledAt >= 0 {
			settled++
			sum += r.SettledAt
		}
	}
	fmt.Printf("trials: %d\n", len(results))
	fmt.Printf("bounded: %d\n", stable)
	fmt.Printf("ran away: %d\n", unstable)
	if settled > 0 {
		fmt.Printf("settled: %d, mean settle step %.1f\n", settled, sum/float64(settled))
	}
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	host := fmt.Sprintf("%s/%s, %d cpus", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		host = fmt.Sprintf("%s, %s", infos[0].ModelName, host)
	}
	fmt.Printf("host: %s\n\n", host)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SAMPLES\tSTEPS\tTIME\tSTEPS/SEC\tSAMPLES/SEC")
	for _, n := range []int{100, 1000, 10000} {
		c := cfg.Clone()
		c.Samples = n
		f, err := c.NewField()
		if err != nil {
			return err
		}
		// keep the pointer active so the influence path is measured too
		in := physics.InfluenceFunc(func(i int, x, h float64) float64 {
			return 0.01 * (f.Equilibrium() - 20 - h)
		})

		start := time.Now()
		for k := 0; k < benchSteps; k++ {
			f.Advance(in)
		}
		elapsed := time.Since(start)
		rate := float64(benchSteps) / elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.3g\n", n, benchSteps, elapsed, rate, rate*float64(n))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	jobs := make([]sim.Job, runtime.NumCPU())
	for i := range jobs {
		jobs[i] = experiment.Job(fmt.Sprintf("bench-%d", i), cfg, nil, nil)
	}
	start := time.Now()
	if _, err := sim.NewEnsemble(0).Run(context.Background(), jobs, experiment.SimConfig(cfg, 0)); err != nil {
		return err
	}
	elapsed := time.Since(start)
	fmt.Printf("\nensemble: %d runs x %d steps in %v (%.0f steps/sec)\n",
		len(jobs), cfg.Steps, elapsed, float64(len(jobs)*cfg.Steps)/elapsed.Seconds())
	return nil
}
