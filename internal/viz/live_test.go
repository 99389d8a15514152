package viz

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/ripple/internal/control"
	"github.com/san-kum/ripple/internal/dynamo"
	"github.com/san-kum/ripple/internal/physics"
	"github.com/san-kum/ripple/internal/sim"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (Model, *physics.Field, *dynamo.ManualClock) {
	t.Helper()
	f := physics.NewField(100, 800, 600)
	clock := dynamo.NewManualClock(t0)
	s := sim.New(control.NewAdapter(f, clock))
	return NewModel(s, Options{SnapshotDir: t.TempDir()}), f, clock
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// sized gives an 80x40 cell canvas, a 640x640 surface with rest at 320.
func sized(m Model) Model {
	return send(m, tea.WindowSizeMsg{Width: 80 + statsWidth + 2, Height: 40 + headerRows + footerRows})
}

func TestResizeFollowsTerminal(t *testing.T) {
	m, f, _ := newTestModel(t)
	f.SetHeight(3, 10)

	m = sized(m)
	if f.Width() != 640 || f.Height() != 640 {
		t.Fatalf("surface = %vx%v, want 640x640", f.Width(), f.Height())
	}
	if f.HeightAt(3) != 320 {
		t.Errorf("resize should reset the chain, h[3] = %v", f.HeightAt(3))
	}
	if m.canvas.Width != 80 || m.canvas.Height != 40 {
		t.Errorf("canvas = %dx%d", m.canvas.Width, m.canvas.Height)
	}

	m = send(m, tea.WindowSizeMsg{Width: 5, Height: 2})
	if m.cols != minCols || m.rows != minRows {
		t.Errorf("tiny terminal gave %dx%d", m.cols, m.rows)
	}
}

func TestMouseImpulse(t *testing.T) {
	m, f, _ := newTestModel(t)
	m = sized(m)
	f.Mode.Interaction = physics.InteractionImpulse

	// cell (40, 20) is surface (324, 312): sample 50, 8px above rest
	m = send(m, tea.MouseMsg{X: 40, Y: 20, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if got := f.VelocityAt(50); got != f.Params.ImpulseVelocity {
		t.Errorf("v[50] = %v, want %v", got, f.Params.ImpulseVelocity)
	}

	m = send(m, tea.MouseMsg{X: 40, Y: 20, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.sim.Adapter().Pointer().Active {
		t.Error("release should deactivate the pointer")
	}
}

func TestMouseOutsideCanvas(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = sized(m)

	m = send(m, tea.MouseMsg{X: 90, Y: 10, Action: tea.MouseActionMotion})
	m = send(m, tea.MouseMsg{X: 10, Y: 0, Action: tea.MouseActionMotion})
	if m.sim.Adapter().Pointer().Seen() {
		t.Error("events over the stats panel or header should not reach the adapter")
	}
}

func TestMouseMotionDrivesField(t *testing.T) {
	m, f, clock := newTestModel(t)
	m = sized(m)

	// surface (324, 360): 40px below rest, inside the reach
	m = send(m, tea.MouseMsg{X: 40, Y: 23, Action: tea.MouseActionMotion})
	m = send(m, TickMsg(clock.Now()))
	clock.Advance(16 * time.Millisecond)
	m = send(m, TickMsg(clock.Now()))
	if m.sim.Step() != 2 {
		t.Fatalf("step = %d", m.sim.Step())
	}
	if f.HeightAt(50) <= 320 {
		t.Errorf("water under a low pointer should be pulled down, h[50] = %v", f.HeightAt(50))
	}
}

func TestPauseStopsTicks(t *testing.T) {
	m, _, clock := newTestModel(t)
	m = send(m, tea.KeyMsg{Type: tea.KeySpace})
	m = send(m, TickMsg(clock.Now()))
	if m.sim.Step() != 0 {
		t.Errorf("paused model stepped to %d", m.sim.Step())
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view should say PAUSED")
	}
}

func TestModeKeys(t *testing.T) {
	m, f, _ := newTestModel(t)
	want := f.Mode
	for _, k := range []string{"i", "b", "v", "p", "o"} {
		m = send(m, keys(k))
	}
	want.Interaction = physics.InteractionImpulse
	want.Boundary = physics.BoundaryBounce
	want.ConserveVolume = !want.ConserveVolume
	want.Propagate = !want.Propagate
	want.Pull = !want.Pull
	if f.Mode != want {
		t.Errorf("mode = %+v, want %+v", f.Mode, want)
	}
}

func TestEditRejectsMalformed(t *testing.T) {
	m, f, _ := newTestModel(t)
	m = send(m, keys("e"))
	if !m.editing {
		t.Fatal("e should open the editor")
	}

	m.input.SetValue("abc")
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.editing {
		t.Error("enter should close the editor")
	}
	if !m.failed || !strings.Contains(m.status, "abc") {
		t.Errorf("status = %q, failed = %v", m.status, m.failed)
	}
	if f.Params.Damping != physics.DefaultParams().Damping {
		t.Errorf("damping changed to %v", f.Params.Damping)
	}

	m = send(m, keys("e"))
	m.input.SetValue("0.9")
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.failed || f.Params.Damping != 0.9 {
		t.Errorf("damping = %v, status %q", f.Params.Damping, m.status)
	}
}

func TestNudgeAndDefaults(t *testing.T) {
	m, f, _ := newTestModel(t)
	m = send(m, keys("k"))
	if f.Params.Damping <= physics.DefaultParams().Damping {
		t.Fatalf("up should raise damping, got %v", f.Params.Damping)
	}

	m = send(m, keys("R"))
	if f.Params != physics.DefaultParams() {
		t.Errorf("R should restore defaults, got %+v", f.Params)
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.selected != 1 {
		t.Errorf("selected = %d", m.selected)
	}
}

func TestResetKey(t *testing.T) {
	m, f, clock := newTestModel(t)
	f.SetHeight(10, 0)
	m = send(m, TickMsg(clock.Now()))
	m = send(m, keys("r"))
	if f.Peak() != 0 || m.sim.Step() != 0 || len(m.energyHist) != 0 {
		t.Errorf("reset left peak %v, step %d, history %d", f.Peak(), m.sim.Step(), len(m.energyHist))
	}
}

func TestRestoreKeys(t *testing.T) {
	f := physics.NewField(100, 800, 600)
	f.Params.Damping = 0.9
	s := sim.New(control.NewAdapter(f, dynamo.NewManualClock(t0)))
	m := NewModel(s, Options{SnapshotDir: t.TempDir()})

	f.Params.Damping = 0.5
	m = send(m, keys("R"))
	if f.Params.Damping != 0.9 {
		t.Errorf("R should restore the session damping 0.9, got %v", f.Params.Damping)
	}
	m = send(m, keys("D"))
	if f.Params != physics.DefaultParams() {
		t.Errorf("D should restore stock defaults, got %+v", f.Params)
	}
	if m.failed {
		t.Errorf("unexpected failure: %s", m.status)
	}
}

func TestSnapshot(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = send(m, keys("s"))
	if m.failed {
		t.Fatalf("snapshot failed: %s", m.status)
	}
	files, err := filepath.Glob(filepath.Join(m.opts.SnapshotDir, "*.svg"))
	if err != nil || len(files) != 1 {
		t.Errorf("snapshots = %v, %v", files, err)
	}
}

func TestSnapshotBadDir(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.opts.SnapshotDir = filepath.Join(t.TempDir(), "missing")
	m = send(m, keys("s"))
	if !m.failed {
		t.Error("snapshot into a missing directory should fail")
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(keys("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestViewShowsControls(t *testing.T) {
	m, _, _ := newTestModel(t)
	v := m.View()
	for _, want := range []string{"RIPPLE", "CONTROLS", "Damping", "Level"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAppOpensLiveView(t *testing.T) {
	var built string
	app := NewApp(func(preset string) (Model, error) {
		built = preset
		m, _, _ := newTestModel(t)
		return m, nil
	})
	next, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = next.(App)
	if app.live == nil || built == "" {
		t.Fatal("enter should build the live view")
	}
}

func TestAppBuildError(t *testing.T) {
	app := NewApp(func(string) (Model, error) {
		return Model{}, errors.New("boom")
	})
	next, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = next.(App)
	if app.live != nil || app.err == nil {
		t.Error("a failed build should stay on the menu")
	}
	if !strings.Contains(app.View(), "boom") {
		t.Error("the build error should be shown")
	}
}
