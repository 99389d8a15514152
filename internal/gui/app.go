package gui

import (
	"fmt"
	"log"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/ripple/internal/control"
	"github.com/san-kum/ripple/internal/physics"
	"github.com/san-kum/ripple/internal/sim"
)

const panelWidth = 260

var (
	ColBg        = rl.NewColor(10, 10, 10, 255)
	ColWater     = rl.NewColor(30, 111, 217, 255)
	ColCrest     = rl.NewColor(140, 200, 255, 255)
	ColIndicator = rl.NewColor(255, 255, 255, 150)
	ColPanel     = rl.NewColor(24, 24, 28, 255)
	ColText      = rl.NewColor(180, 180, 180, 255)
	ColTextDim   = rl.NewColor(90, 90, 90, 255)
)

// App is the raylib window: the water fills the left of the window and the
// controls sit in a fixed panel on the right.
type App struct {
	Title   string
	Running bool

	sim       *sim.Simulator
	surface   *control.Surface
	lastMouse rl.Vector2
}

func NewApp(s *sim.Simulator, title string) *App {
	return &App{
		Title:   title,
		Running: true,
		sim:     s,
		surface: control.NewSurface(s.Field(), control.DefaultControls()),
	}
}

func initWindow(w, h int32, title string, fps int) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(w, h, title)
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

// Run opens a window sized to the field plus the control panel and blocks
// until it is closed.
func Run(s *sim.Simulator, title string, fps int) {
	f := s.Field()
	initWindow(int32(f.Width())+panelWidth, int32(f.Height()), title, fps)
	defer rl.CloseWindow()

	app := NewApp(s, title)
	app.RunLoop()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			return
		}
		a.Update()
		a.Draw()
	}
}

func (a *App) surfaceSize() (float32, float32) {
	w := float32(rl.GetScreenWidth() - panelWidth)
	if w < 1 {
		w = 1
	}
	return w, float32(rl.GetScreenHeight())
}

// Update forwards window and input events to the adapter, then ticks.
func (a *App) Update() {
	adapter := a.sim.Adapter()
	f := a.sim.Field()

	if rl.IsWindowResized() {
		w, h := a.surfaceSize()
		adapter.Resize(float64(w), float64(h))
		log.Printf("resize: surface %.0fx%.0f", w, h)
	}

	w, _ := a.surfaceSize()
	mouse := rl.GetMousePosition()
	over := mouse.X >= 0 && mouse.X < w
	if over {
		x, y := float64(mouse.X), float64(mouse.Y)
		switch {
		case rl.IsMouseButtonPressed(rl.MouseLeftButton):
			adapter.Press(x, y)
		case mouse != a.lastMouse:
			adapter.Move(x, y)
		}
	}
	if rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		adapter.Release()
	}
	a.lastMouse = mouse

	a.keys(f)

	if a.Running {
		a.sim.Tick(adapter.Clock().Now())
	}
}

func (a *App) keys(f *physics.Field) {
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.Running = !a.Running
	case rl.IsKeyPressed(rl.KeyR):
		f.Reset()
		a.sim.Restart()
	case rl.IsKeyPressed(rl.KeyI):
		if f.Mode.Interaction == physics.InteractionField {
			f.Mode.Interaction = physics.InteractionImpulse
		} else {
			f.Mode.Interaction = physics.InteractionField
		}
	case rl.IsKeyPressed(rl.KeyB):
		if f.Mode.Boundary == physics.BoundaryClamp {
			f.Mode.Boundary = physics.BoundaryBounce
		} else {
			f.Mode.Boundary = physics.BoundaryClamp
		}
	case rl.IsKeyPressed(rl.KeyV):
		f.Mode.ConserveVolume = !f.Mode.ConserveVolume
	case rl.IsKeyPressed(rl.KeyP):
		f.Mode.Propagate = !f.Mode.Propagate
	case rl.IsKeyPressed(rl.KeyO):
		f.Mode.Pull = !f.Mode.Pull
	case rl.IsKeyPressed(rl.KeyH):
		a.sim.Adapter().ShowIndicator = !a.sim.Adapter().ShowIndicator
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(ColBg)

	a.drawWater()
	a.drawPanel()
}

// drawPanel lays out one slider per control. Slider moves go through the
// surface so a level change resets the chain like every other frontend.
func (a *App) drawPanel() {
	w, h := a.surfaceSize()
	x := w + 15
	rl.DrawRectangle(int32(w), 0, panelWidth, int32(h), ColPanel)

	y := float32(12)
	rl.DrawText(a.Title, int32(x), int32(y), 20, ColText)
	y += 28
	f := a.sim.Field()
	rl.DrawText(fmt.Sprintf("%s / %s  %d fps", f.Mode.Interaction, f.Mode.Boundary, rl.GetFPS()), int32(x), int32(y), 12, ColTextDim)
	y += 24

	for _, c := range a.surface.Controls() {
		v, _ := a.surface.Value(c.Name)
		rl.DrawText(c.Label, int32(x), int32(y), 12, ColTextDim)
		rl.DrawText(fmt.Sprintf("%.3f", v), int32(x+panelWidth-90), int32(y), 12, ColText)
		y += 15
		nv := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: panelWidth - 40, Height: 14}, "", "", float32(v), float32(c.Min), float32(c.Max))
		if err := a.surface.Slide(c.Name, nv); err != nil {
			log.Printf("control: %v", err)
		}
		y += 24
	}

	y += 6
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 68, Height: 28}, "Reset") {
		a.surface.Reset()
	}
	if gui.Button(rl.Rectangle{X: x + 76, Y: y, Width: 68, Height: 28}, "Defaults") {
		a.surface.ResetDefaults()
	}
	if gui.Button(rl.Rectangle{X: x + 152, Y: y, Width: 68, Height: 28}, "Calm") {
		f.Reset()
	}
	y += 40

	rl.DrawText(fmt.Sprintf("energy %.3f", f.Energy()), int32(x), int32(y), 12, ColTextDim)
	rl.DrawText(fmt.Sprintf("drift  %+.3f", f.VolumeDrift()), int32(x), int32(y+16), 12, ColTextDim)
	rl.DrawText("space pause  r reset  i b v p o h", int32(x), int32(h-20), 10, ColTextDim)
}
