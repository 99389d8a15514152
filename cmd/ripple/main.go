package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/ripple/internal/config"
	"github.com/san-kum/ripple/internal/control"
	"github.com/san-kum/ripple/internal/dynamo"
	"github.com/san-kum/ripple/internal/gui"
	"github.com/san-kum/ripple/internal/sim"
	"github.com/san-kum/ripple/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	debug      bool

	// surface and session
	samples     int
	width       float64
	height      float64
	level       float64
	fps         int
	steps       int
	seed        int64
	timeout     time.Duration
	interaction string
	boundary    string
	conserve    bool
	propagate   bool
	pull        bool
	theme       string
	noIndicator bool
	sets        []string

	// run
	scenarioFile string
	scriptName   string
	watch        bool
	noSave       bool

	// offline tools
	sample     int
	frameIdx   int
	outFile    string
	separation bool

	// sweep, tune, montecarlo, bench
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	workers    int
	replay     string
	metricName string
	grid       []string
	trials     int
	perturb    float64
	benchSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "ripple",
		Short:        "interactive 1D water surface",
		SilenceUsage: true,
		RunE:         runMenu,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".ripple", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.BoolVar(&debug, "debug", false, "log diagnostics to ripple-debug.log")
	pf.IntVar(&samples, "samples", 100, "number of height samples")
	pf.Float64Var(&width, "width", config.DefaultWidth, "surface width")
	pf.Float64Var(&height, "height", config.DefaultHeight, "surface height")
	pf.Float64Var(&level, "level", 0.5, "rest level as a fraction of the height")
	pf.IntVar(&fps, "fps", config.DefaultFPS, "ticks per second")
	pf.IntVar(&steps, "steps", config.DefaultSteps, "ticks for headless runs")
	pf.Int64Var(&seed, "seed", 0, "random seed for generated scenarios")
	pf.DurationVar(&timeout, "timeout", control.DefaultTimeout, "pointer active window")
	pf.StringVar(&interaction, "interaction", "field", "pointer interaction: field or impulse")
	pf.StringVar(&boundary, "boundary", "clamp", "boundary: clamp or bounce")
	pf.BoolVar(&conserve, "conserve", true, "keep the total volume constant")
	pf.BoolVar(&propagate, "propagate", false, "run the second propagation pass")
	pf.BoolVar(&pull, "pull", true, "pull samples back to rest")
	pf.StringVar(&theme, "theme", config.DefaultTheme, "color theme: "+strings.Join(viz.ThemeNames(), ", "))
	pf.BoolVar(&noIndicator, "no-indicator", false, "hide the pointer circle")
	pf.StringArrayVar(&sets, "set", nil, "set a parameter, name=value (repeatable)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "live terminal view (mouse over the water)",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "windowed view with sliders",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "headless run, optionally replaying a pointer scenario",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&scenarioFile, "scenario", "", "scenario file (yaml)")
	runCmd.Flags().StringVar(&scriptName, "script", "", "built-in scenario: "+strings.Join(builtinNames(), ", "))
	runCmd.Flags().BoolVar(&watch, "watch", false, "print frames while running")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&sample, "sample", -1, "sample to plot over time (default: middle)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and phase analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&sample, "sample", -1, "sample to analyze (default: middle)")
	analyzeCmd.Flags().BoolVar(&separation, "separation", false, "estimate disturbance growth from the run's config")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: stdout)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [run_id]",
		Short: "render a recorded frame as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshotRun,
	}
	snapshotCmd.Flags().IntVar(&frameIdx, "frame", -1, "frame index (default: last)")
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: <run_id>.svg)")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "run a scenario across a range of one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.8, "lowest value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1.0, "highest value")
	sweepCmd.Flags().IntVar(&sweepSteps, "n", 5, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default: NumCPU)")
	sweepCmd.Flags().StringVar(&replay, "script", "drop", "built-in scenario to replay")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search parameters that minimize a metric",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	tuneCmd.Flags().StringArrayVar(&grid, "grid", nil, "name=min:max:n (repeatable)")
	tuneCmd.Flags().StringVar(&metricName, "metric", "settle_step", "metric to minimize")
	tuneCmd.Flags().StringVar(&replay, "script", "drop", "built-in scenario to replay")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "random initial velocities, count runs that stay bounded",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 5, "largest initial velocity")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the field step",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&benchSteps, "bench-steps", 2000, "steps per measurement")

	scriptCmd := &cobra.Command{
		Use:   "script [name]",
		Short: "list built-in scenarios or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showScript,
	}

	rootCmd.AddCommand(liveCmd, guiCmd, runCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd,
		snapshotCmd, presetsCmd, sweepCmd, tuneCmd, monteCarloCmd, benchCmd, scriptCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig layers defaults, preset, config file and flags, in that
// order. A preset named in the config file applies unless --preset is set.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	name := preset

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if name == "" {
			name = loaded.Preset
		}
		cfg = loaded
	}

	if name != "" {
		p, err := config.GetPreset(name)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
		cfg = p
		if configFile != "" {
			if cfg, err = config.LoadOnto(configFile, p); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
			cfg.Preset = name
		}
	}

	flags := cmd.Flags()
	if flags.Changed("samples") {
		cfg.Samples = samples
	}
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("level") {
		cfg.Level = level
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("interaction") {
		cfg.Mode.Interaction = interaction
	}
	if flags.Changed("boundary") {
		cfg.Mode.Boundary = boundary
	}
	if flags.Changed("conserve") {
		cfg.Mode.ConserveVolume = conserve
	}
	if flags.Changed("propagate") {
		cfg.Mode.Propagate = propagate
	}
	if flags.Changed("pull") {
		cfg.Mode.Pull = pull
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}
	if flags.Changed("no-indicator") {
		cfg.Indicator = !noIndicator
	}
	for _, kv := range sets {
		if err := applySet(cfg, kv); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applySet(cfg *config.Config, kv string) error {
	name, raw, ok := strings.Cut(kv, "=")
	if !ok {
		return fmt.Errorf("--set %q: want name=value: %w", kv, dynamo.ErrMalformedInput)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("--set %s: %q: %w", name, raw, dynamo.ErrMalformedInput)
	}
	if name == "level" {
		cfg.Level = v
		return nil
	}
	return cfg.Params.Set(name, v)
}

// setupLogging sends the stdlib logger to a file with --debug and discards
// it otherwise, so full-screen views are never written over.
func setupLogging() (func(), error) {
	if !debug {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile("ripple-debug.log", "ripple")
	if err != nil {
		return nil, err
	}
	return func() { f.Close() }, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// newLiveSimulator builds a wall-clock simulator for the interactive views.
func newLiveSimulator(cfg *config.Config) (*sim.Simulator, error) {
	f, err := cfg.NewField()
	if err != nil {
		return nil, err
	}
	a := control.NewAdapter(f, dynamo.SystemClock{})
	a.Timeout = cfg.Timeout
	a.ShowIndicator = cfg.Indicator
	return sim.New(a), nil
}

func liveModel(cfg *config.Config) (viz.Model, error) {
	s, err := newLiveSimulator(cfg)
	if err != nil {
		return viz.Model{}, err
	}
	title := cfg.Preset
	if title == "" {
		title = "ripple"
	}
	log.Printf("live: preset=%s samples=%d mode=%+v", title, cfg.Samples, s.Field().Mode)
	return viz.NewModel(s, viz.Options{
		Title:       title,
		Theme:       cfg.Theme,
		FPS:         cfg.FPS,
		SnapshotDir: ".",
	}), nil
}

func runProgram(m tea.Model) error {
	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = p.Run()
	return err
}

// runMenu opens the preset menu, or the live view directly when a preset or
// config file was given.
func runMenu(cmd *cobra.Command, args []string) error {
	if preset != "" || configFile != "" {
		return runLive(cmd, args)
	}
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	app := viz.NewApp(func(name string) (viz.Model, error) {
		cfg, err := config.GetPreset(name)
		if err != nil {
			return viz.Model{}, err
		}
		cfg.Theme = base.Theme
		cfg.FPS = base.FPS
		return liveModel(cfg)
	})
	return runProgram(app)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	m, err := liveModel(cfg)
	if err != nil {
		return err
	}
	return runProgram(m)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	s, err := newLiveSimulator(cfg)
	if err != nil {
		return err
	}
	title := "ripple"
	if cfg.Preset != "" {
		title += " · " + cfg.Preset
	}
	gui.Run(s, title, cfg.FPS)
	return nil
}
