package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/ripple/internal/physics"
	"github.com/san-kum/ripple/internal/viz"
)

const (
	width       = 70
	height      = 18
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is a sim.Observer that prints the water as braille frames.
// Frames are spaced by simulated time; with Pace set it also sleeps so a
// headless run plays back at wall-clock speed.
type LiveRenderer struct {
	Pace bool

	out       io.Writer
	title     string
	frameRate int
	lastT     float64
	started   time.Time
	frames    int
	canvas    *viz.Canvas
}

func NewLiveRenderer(out io.Writer, title string, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{
		out:       out,
		title:     title,
		frameRate: frameRate,
		lastT:     -1,
		canvas:    viz.NewCanvas(width, height),
	}
}

func (r *LiveRenderer) OnStep(f *physics.Field, step int, t float64) {
	if r.lastT >= 0 && t-r.lastT < 1/float64(r.frameRate) {
		return
	}
	r.lastT = t
	if r.Pace {
		r.pace(t)
	}

	r.canvas.Clear()
	viz.DrawSurface(r.canvas, f.HeightsView(), f.Width(), f.Height())
	r.render(f, step, t)
	r.frames++
}

// Frames is the number of frames printed so far.
func (r *LiveRenderer) Frames() int { return r.frames }

func (r *LiveRenderer) pace(t float64) {
	if r.started.IsZero() {
		r.started = time.Now().Add(-time.Duration(t * float64(time.Second)))
		return
	}
	if wait := time.Until(r.started.Add(time.Duration(t * float64(time.Second)))); wait > 0 {
		time.Sleep(wait)
	}
}

func (r *LiveRenderer) render(f *physics.Field, step int, t float64) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  step=%d  t=%.2fs\n", r.title, step, t))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range strings.Split(r.canvas.String(), "\n") {
		b.WriteString("  ")
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	b.WriteString(fmt.Sprintf("  energy=%.3f  drift=%+.3f  peak=%.2f\n", f.Energy(), f.VolumeDrift(), f.Peak()))

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
