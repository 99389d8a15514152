package viz

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ripple/internal/control"
	"github.com/san-kum/ripple/internal/dynamo"
	"github.com/san-kum/ripple/internal/export"
	"github.com/san-kum/ripple/internal/physics"
	"github.com/san-kum/ripple/internal/sim"
)

const (
	// DotSize is how many surface pixels one braille dot covers.
	DotSize = 4.0

	historyCapacity = 300
	headerRows      = 1
	footerRows      = 1
	minCols         = 10
	minRows         = 4
)

type TickMsg time.Time

// Options configure a live view.
type Options struct {
	Title       string
	Theme       string
	FPS         int
	SnapshotDir string
}

// Model is the live terminal view: it ticks the simulator at a fixed rate,
// feeds mouse and resize events to the adapter and draws the surface as
// braille dots next to a stats and controls panel.
type Model struct {
	sim     *sim.Simulator
	surface *control.Surface
	opts    Options
	theme   Theme
	pal     palette

	canvas     *Canvas
	cols, rows int

	running  bool
	showHelp bool
	selected int
	editing  bool
	input    textinput.Model
	bar      progress.Model
	status   string
	failed   bool

	spring             harmonica.Spring
	ix, iy, ivx, ivy   float64
	energyHist, drifts []float64
	lastTick           time.Time
	fps                float64
}

// NewModel builds a live view over s. The surface controls capture the
// field's current parameters as their reset defaults.
func NewModel(s *sim.Simulator, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Title == "" {
		opts.Title = "ripple"
	}
	f := s.Field()

	ti := textinput.New()
	ti.Placeholder = "value"
	ti.CharLimit = 32
	ti.Width = 16
	ti.Prompt = "= "

	theme := GetTheme(opts.Theme)
	cols, rows := int(f.Width()/DotSize/2), int(f.Height()/DotSize/4)
	cols, rows = max(cols, minCols), max(rows, minRows)

	m := Model{
		sim:        s,
		surface:    control.NewSurface(f, control.DefaultControls()),
		opts:       opts,
		theme:      theme,
		pal:        paletteFor(theme),
		canvas:     NewCanvas(cols, rows),
		cols:       cols,
		rows:       rows,
		running:    true,
		input:      ti,
		bar:        newBar(theme),
		spring:     harmonica.NewSpring(harmonica.FPS(opts.FPS), 12.0, 0.8),
		energyHist: make([]float64, 0, historyCapacity),
		drifts:     make([]float64, 0, historyCapacity),
	}
	return m
}

func newBar(t Theme) progress.Model {
	return progress.New(
		progress.WithScaledGradient(t.BarFrom, t.BarTo),
		progress.WithoutPercentage(),
		progress.WithWidth(12),
	)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), tea.SetWindowTitle(m.opts.Title))
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width-statsWidth-2, msg.Height-headerRows-footerRows)
		return m, nil
	case tea.MouseMsg:
		m.mouse(msg)
		return m, nil
	case tea.KeyMsg:
		if m.editing {
			return m.editKey(msg)
		}
		return m.key(msg)
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) resize(cols, rows int) {
	cols, rows = max(cols, minCols), max(rows, minRows)
	if cols == m.cols && rows == m.rows {
		return
	}
	m.cols, m.rows = cols, rows
	m.canvas = NewCanvas(cols, rows)
	w, h := float64(cols*2)*DotSize, float64(rows*4)*DotSize
	m.sim.Adapter().Resize(w, h)
	log.Printf("resize: %dx%d cells, surface %.0fx%.0f", cols, rows, w, h)
}

// toSurface maps a terminal cell to the surface point at the center of its
// dot block. ok is false outside the canvas.
func (m Model) toSurface(cellX, cellY int) (x, y float64, ok bool) {
	row := cellY - headerRows
	if cellX < 0 || cellX >= m.cols || row < 0 || row >= m.rows {
		return 0, 0, false
	}
	f := m.sim.Field()
	x = (float64(cellX*2) + 1) / float64(m.canvas.DotWidth()) * f.Width()
	y = (float64(row*4) + 2) / float64(m.canvas.DotHeight()) * f.Height()
	return x, y, true
}

func (m *Model) mouse(msg tea.MouseMsg) {
	a := m.sim.Adapter()
	if msg.Action == tea.MouseActionRelease {
		a.Release()
		return
	}
	x, y, ok := m.toSurface(msg.X, msg.Y)
	if !ok {
		return
	}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			a.Press(x, y)
		}
	case tea.MouseActionMotion:
		a.Move(x, y)
	}
}

func (m Model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.sim.Field()
	controls := m.surface.Controls()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		f.Reset()
		m.sim.Restart()
		m.clearHistory()
	case "R":
		m.surface.Reset()
		m.setStatus("controls reset", nil)
	case "D":
		m.surface.ResetDefaults()
		m.setStatus("stock defaults restored", nil)
	case "tab":
		m.selected = (m.selected + 1) % len(controls)
	case "shift+tab":
		m.selected = (m.selected + len(controls) - 1) % len(controls)
	case "up", "k":
		m.setStatus("", m.surface.Nudge(controls[m.selected].Name, 1))
	case "down", "j":
		m.setStatus("", m.surface.Nudge(controls[m.selected].Name, -1))
	case "e", "enter":
		v, _ := m.surface.Value(controls[m.selected].Name)
		m.editing = true
		m.input.SetValue(fmt.Sprintf("%g", v))
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "i":
		if f.Mode.Interaction == physics.InteractionField {
			f.Mode.Interaction = physics.InteractionImpulse
		} else {
			f.Mode.Interaction = physics.InteractionField
		}
	case "b":
		if f.Mode.Boundary == physics.BoundaryClamp {
			f.Mode.Boundary = physics.BoundaryBounce
		} else {
			f.Mode.Boundary = physics.BoundaryClamp
		}
	case "v":
		f.Mode.ConserveVolume = !f.Mode.ConserveVolume
	case "p":
		f.Mode.Propagate = !f.Mode.Propagate
	case "o":
		f.Mode.Pull = !f.Mode.Pull
	case "h":
		a := m.sim.Adapter()
		a.ShowIndicator = !a.ShowIndicator
	case "t":
		m.theme = NextTheme(m.theme.Name)
		m.pal = paletteFor(m.theme)
		m.bar = newBar(m.theme)
	case "s":
		path, err := m.snapshot()
		m.setStatus("saved "+path, err)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Model) editKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		name := m.surface.Controls()[m.selected].Name
		err := m.surface.Set(name, m.input.Value())
		m.setStatus(fmt.Sprintf("%s = %s", name, strings.TrimSpace(m.input.Value())), err)
		m.editing = false
		m.input.Blur()
		return m, nil
	case tea.KeyEsc, tea.KeyCtrlC:
		m.editing = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) setStatus(ok string, err error) {
	if err != nil {
		m.failed = true
		switch {
		case errors.Is(err, dynamo.ErrMalformedInput):
			m.status = "not a number: " + err.Error()
		default:
			m.status = err.Error()
		}
		log.Printf("control: %v", err)
		return
	}
	m.failed = false
	m.status = ok
}

// step advances the field once and updates the indicator and history.
func (m *Model) step() {
	a := m.sim.Adapter()
	now := a.Clock().Now()
	m.sim.Tick(now)

	if !m.lastTick.IsZero() {
		if d := now.Sub(m.lastTick).Seconds(); d > 0 {
			m.fps = 0.9*m.fps + 0.1/d
		}
	}
	m.lastTick = now

	p := a.Pointer()
	m.ix, m.ivx = m.spring.Update(m.ix, m.ivx, p.X)
	m.iy, m.ivy = m.spring.Update(m.iy, m.ivy, p.Y)

	f := m.sim.Field()
	m.energyHist = appendCapped(m.energyHist, f.Energy())
	m.drifts = appendCapped(m.drifts, f.VolumeDrift())
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

func (m *Model) clearHistory() {
	m.energyHist = m.energyHist[:0]
	m.drifts = m.drifts[:0]
}

// snapshot writes the current frame as SVG.
func (m Model) snapshot() (string, error) {
	f := m.sim.Field()
	opts := export.DefaultSurfaceOptions()
	opts.Fill = string(m.theme.Water)
	if m.sim.Adapter().ShowIndicator {
		opts.Pointer = m.pointerSVG()
	}
	name := fmt.Sprintf("ripple_%s_%d.svg", time.Now().Format("20060102_150405"), m.sim.Step())
	path := filepath.Join(m.opts.SnapshotDir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	if err := export.WriteSurfaceSVG(file, f.HeightsView(), f.Width(), f.Height(), opts); err != nil {
		return "", err
	}
	return path, nil
}

func (m Model) pointerSVG() *export.Pointer {
	p := m.sim.Adapter().Pointer()
	if !p.Seen() {
		return nil
	}
	return &export.Pointer{X: p.X, Y: p.Y, Radius: m.sim.Field().Params.MouseRadius}
}

// draw renders the field into the canvas.
func (m Model) draw() {
	f := m.sim.Field()
	m.canvas.Clear()
	DrawSurface(m.canvas, f.HeightsView(), f.Width(), f.Height())
}

func (m Model) indicatorView() string {
	a := m.sim.Adapter()
	if !a.ShowIndicator || !a.Pointer().Seen() {
		return ""
	}
	f := m.sim.Field()
	ring := NewCanvas(m.cols, m.rows)
	DrawIndicator(ring, Indicator{X: m.ix, Y: m.iy, Radius: f.Params.MouseRadius}, f.Width(), f.Height())
	return ring.String()
}

// View renders the surface next to the stats panel.
func (m Model) View() string {
	m.draw()
	canvasView := m.overlay(m.canvas.String(), m.indicatorView())

	header := m.pal.header.Render(strings.ToUpper(m.opts.Title))
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	header += "  " + m.pal.muted.Render(status)

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(m.statsView()))
	footer := helpStyle.Render("space pause · r reset · R defaults · tab/↑↓ tune · e edit · ? help · q quit")
	out := header + "\n" + mainView + "\n" + footer
	if m.showHelp {
		return helpOverlay + "\n" + out
	}
	return out
}

// overlay merges the indicator ring over the water: lit ring dots inside
// the water are drawn in the indicator color, other cells keep the water color.
func (m Model) overlay(water, ring string) string {
	if ring == "" {
		return m.pal.water.Render(water)
	}
	wl, rl := strings.Split(water, "\n"), strings.Split(ring, "\n")
	var b strings.Builder
	for i, line := range wl {
		if i > 0 {
			b.WriteByte('\n')
		}
		var rr []rune
		if i < len(rl) {
			rr = []rune(rl[i])
		}
		for j, c := range []rune(line) {
			if j < len(rr) && rr[j] != blank {
				b.WriteString(m.pal.indicator.Render(string(c | rr[j])))
				continue
			}
			b.WriteString(m.pal.water.Render(string(c)))
		}
	}
	return b.String()
}

func (m Model) statsView() string {
	a := m.sim.Adapter()
	f := m.sim.Field()
	now := a.Clock().Now()
	var s strings.Builder

	mode := fmt.Sprintf("%s · %s", f.Mode.Interaction, f.Mode.Boundary)
	var flags []string
	if f.Mode.ConserveVolume {
		flags = append(flags, "volume")
	}
	if f.Mode.Pull {
		flags = append(flags, "pull")
	}
	if f.Mode.Propagate {
		flags = append(flags, "propagate")
	}
	if len(flags) > 0 {
		mode += " · " + strings.Join(flags, "+")
	}
	s.WriteString(m.pal.muted.Render(mode) + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d", m.sim.Step()))
	row("Time", fmt.Sprintf("%.2fs", m.sim.Elapsed(now)))
	row("FPS", fmt.Sprintf("%.0f", m.fps))
	row("Energy", fmt.Sprintf("%.3f", f.Energy()))
	row("Drift", fmt.Sprintf("%+.3f", f.VolumeDrift()))
	row("Peak", fmt.Sprintf("%.2f", f.Peak()))
	pointer := "idle"
	if a.Active(now) {
		p := a.Pointer()
		pointer = fmt.Sprintf("%.0f,%.0f", p.X, p.Y)
	}
	row("Pointer", pointer)
	if !f.IsValid() {
		s.WriteString(m.pal.err.Render("field diverged, press r") + "\n")
	}

	if len(m.energyHist) > 1 {
		chart := asciigraph.Plot(m.energyHist, asciigraph.Height(4), asciigraph.Width(statsWidth-10), asciigraph.Caption("Energy"))
		s.WriteString("\n" + m.pal.water.Render(chart) + "\n")
	}
	s.WriteString(labelStyle.Render("Drift") + m.pal.muted.Render(Sparkline(m.drifts, statsWidth-14)) + "\n")

	s.WriteString("\n" + m.pal.header.Render("CONTROLS") + "\n")
	for i, c := range m.surface.Controls() {
		v, _ := m.surface.Value(c.Name)
		line := fmt.Sprintf("%-9s %s %8.3f", c.Label, m.bar.ViewAs(m.surface.Fraction(c.Name)), v)
		if i == m.selected {
			s.WriteString(m.pal.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	if m.editing {
		s.WriteString("\n" + m.input.View() + "\n")
	}
	if m.status != "" {
		style := m.pal.muted
		if m.failed {
			style = m.pal.warn
		}
		s.WriteString("\n" + style.Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render(separator(statsWidth - 4)))
	return s.String()
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Mouse    - Move over the water      ║
║  Space    - Pause/Resume             ║
║  r        - Reset the water          ║
║  R        - Restore session values   ║
║  D        - Restore stock defaults   ║
║  Tab      - Next control             ║
║  Up/Down  - Tune control             ║
║  e        - Type a value             ║
║  i        - Field / impulse          ║
║  b        - Clamp / bounce           ║
║  v p o    - Volume, propagate, pull  ║
║  h        - Toggle indicator         ║
║  s        - Save SVG snapshot        ║
║  t        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  q        - Quit                     ║
╚══════════════════════════════════════╝`
