package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ripple/internal/analysis"
	"github.com/san-kum/ripple/internal/automation"
	"github.com/san-kum/ripple/internal/config"
	"github.com/san-kum/ripple/internal/experiment"
	"github.com/san-kum/ripple/internal/export"
	"github.com/san-kum/ripple/internal/physics"
	"github.com/san-kum/ripple/internal/sim"
	"github.com/san-kum/ripple/internal/storage"
	"github.com/san-kum/ripple/internal/tui"
	"github.com/spf13/cobra"
)

func builtinNames() []string { return automation.BuiltinNames() }

// loadScript resolves --scenario or --script against cfg. A scenario file's
// preset and step count apply unless overridden on the command line.
func loadScript(cmd *cobra.Command) (*config.Config, *automation.Scenario, error) {
	var sc *automation.Scenario
	if scenarioFile != "" {
		var err error
		if sc, err = automation.LoadScenario(scenarioFile); err != nil {
			return nil, nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		if preset == "" && sc.Preset != "" {
			preset = sc.Preset
		}
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case sc != nil:
		if err := sc.Compile(); err != nil {
			return nil, nil, err
		}
		if sc.Steps > 0 && !cmd.Flags().Changed("steps") {
			cfg.Steps = sc.Steps
		}
	case scriptName != "":
		if sc, err = automation.Builtin(scriptName, cfg); err != nil {
			return nil, nil, err
		}
	}
	return cfg, sc, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, sc, err := loadScript(cmd)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg)
	ms, err := experiment.NewRegistry().Metrics()
	if err != nil {
		return err
	}
	if err := exp.Setup(ms); err != nil {
		return err
	}

	name := cfg.Preset
	if name == "" {
		name = "custom"
	}
	var script sim.Script
	scenarioName := ""
	if sc != nil {
		script = sc
		scenarioName = sc.Name
	}

	var renderer *tui.LiveRenderer
	if watch {
		renderer = tui.NewLiveRenderer(os.Stdout, name, 30)
		renderer.Pace = true
		exp.GetSimulator().AddObserver(renderer)
		renderer.Start()
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s for %d steps...\n", name, cfg.Steps)
	start := time.Now()
	result, err := exp.Run(ctx, script)
	if renderer != nil {
		renderer.Stop()
	}
	if err != nil && result == nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	if err != nil {
		fmt.Printf("stopped early: %v\n", err)
	}
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, scenarioName, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Printf("steps: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	printMetrics(os.Stdout, result.Metrics)
	return nil
}

func printMetrics(w io.Writer, m map[string]float64) {
	fmt.Fprintln(w, "\nmetrics:")
	for _, name := range experiment.NewRegistry().ListMetrics() {
		if v, ok := m[name]; ok {
			fmt.Fprintf(w, "  %s: %.6f\n", name, v)
		}
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSCENARIO\tTIME\tSTEPS\tDT\tERRORS")

	for _, run := range runs {
		scenario := run.Scenario
		if scenario == "" {
			scenario = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%.4fs\t%d\n",
			run.ID,
			run.Name,
			scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.StepsTaken,
			run.Steps,
			run.Dt,
			len(run.Errors),
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, [][]float64, []float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	frames, times, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(frames) == 0 || len(frames[0]) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s: no frames recorded", runID)
	}
	return meta, frames, times, nil
}

func pickSample(n int) int {
	if sample < 0 || sample >= n {
		return n / 2
	}
	return sample
}

// column returns sample i of every frame as elevation above rest.
func column(frames [][]float64, i int, eq float64) []float64 {
	out := make([]float64, 0, len(frames))
	for _, fr := range frames {
		if i < len(fr) {
			out = append(out, eq-fr[i])
		}
	}
	return out
}

func restLevel(meta *storage.RunMetadata) float64 {
	return meta.Config.Height * meta.Config.Level
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	meta, frames, _, err := loadRun(runID)
	if err != nil {
		return err
	}
	volumes, energies, err := storage.New(dataDir).LoadSeries(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Name)
	fmt.Printf("frames: %d\n\n", len(frames))

	eq := restLevel(meta)
	i := pickSample(len(frames[0]))
	plots := []struct {
		data    []float64
		caption string
	}{
		{column(frames, i, eq), fmt.Sprintf("sample %d elevation vs step", i)},
		{elevation(frames[len(frames)-1], eq), "final surface elevation"},
		{energies, "energy vs step"},
		{volumes, "volume vs step"},
	}
	for _, p := range plots {
		if len(p.data) < 2 {
			continue
		}
		graph := asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func elevation(frame []float64, eq float64) []float64 {
	out := make([]float64, len(frame))
	for i, h := range frame {
		out[i] = eq - h
	}
	return out
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	meta, frames, times, err := loadRun(runID)
	if err != nil {
		return err
	}

	eq := restLevel(meta)
	i := pickSample(len(frames[0]))
	data := column(frames, i, eq)

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("sample: %d of %d\n\n", i, len(frames[0]))

	ps := analysis.PowerSpectrum(data)
	if len(ps) > 1 {
		graph := asciigraph.Plot(ps[1:],
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("power spectrum (sample %d)", i)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	dt := meta.Dt
	if len(times) > 1 {
		dt = times[1] - times[0]
	}
	freq := analysis.DominantFrequency(data, dt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	if wl := analysis.DominantWavelength(frames[len(frames)-1]); wl > 0 {
		fmt.Printf("dominant wavelength (final frame): %.1f samples\n", wl)
	}

	portrait := &analysis.PhasePortrait2D{Sample: i}
	for k := 1; k < len(data); k++ {
		portrait.Points = append(portrait.Points, analysis.Point{X: data[k], Y: data[k] - data[k-1]})
	}
	if len(portrait.Points) > 0 {
		fmt.Printf("\nphase portrait (elevation vs rise per frame):\n")
		fmt.Print(analysis.PhasePortraitToASCII(portrait, 70, 18))
		fmt.Printf("returns through rest: %d\n", len(analysis.CrossingSection(portrait)))
	}

	if separation {
		cfg := meta.Config
		build := func() *physics.Field {
			f, err := cfg.NewField()
			if err != nil {
				return physics.NewField(cfg.Samples, cfg.Width, cfg.Height)
			}
			return f
		}
		spectrum := analysis.SeparationSpectrum(build, 1e-3, 200)
		worst, mean := math.Inf(-1), 0.0
		for _, r := range spectrum {
			worst = math.Max(worst, r)
			mean += r
		}
		mean /= float64(len(spectrum))
		fmt.Printf("\nseparation rate per step: max %.5f, mean %.5f\n", worst, mean)
		if worst > 0 {
			fmt.Println("disturbances grow: these parameters run away")
		}
	}
	return nil
}

func output(name string) (io.Writer, func() error, error) {
	if name == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func loadResult(runID string) (*storage.RunMetadata, *sim.Result, error) {
	st := storage.New(dataDir)
	meta, frames, times, err := loadRun(runID)
	if err != nil {
		return nil, nil, err
	}
	volumes, energies, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, storage.ResultFromFrames(frames, times, volumes, energies, meta.Metrics), nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, result, err := loadResult(args[0])
	if err != nil {
		return err
	}
	w, done, err := output(outFile)
	if err != nil {
		return err
	}
	if err := storage.ExportCSV(w, result); err != nil {
		done()
		return err
	}
	return done()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, result, err := loadResult(args[0])
	if err != nil {
		return err
	}
	w, done, err := output(outFile)
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, meta, result); err != nil {
		done()
		return err
	}
	return done()
}

func snapshotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	meta, frames, _, err := loadRun(runID)
	if err != nil {
		return err
	}
	idx := frameIdx
	if idx < 0 || idx >= len(frames) {
		idx = len(frames) - 1
	}

	name := outFile
	if name == "" {
		name = runID + ".svg"
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	err = export.WriteSurfaceSVG(f, frames[idx], meta.Config.Width, meta.Config.Height, export.DefaultSurfaceOptions())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Printf("frame %d written to %s\n", idx, name)
	return nil
}
