package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/ripple/internal/physics"
	"github.com/san-kum/ripple/internal/sim"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds one sample's displacement (X) against velocity (Y).
type PhasePortrait2D struct {
	Sample int
	Points []Point
}

// PhaseRecorder is an observer that builds a phase portrait while a run ticks.
type PhaseRecorder struct {
	portrait PhasePortrait2D
}

var _ sim.Observer = (*PhaseRecorder)(nil)

func NewPhaseRecorder(sample int) *PhaseRecorder {
	return &PhaseRecorder{portrait: PhasePortrait2D{Sample: sample}}
}

func (r *PhaseRecorder) OnStep(f *physics.Field, step int, t float64) {
	i := r.portrait.Sample
	if i < 0 || i >= f.N() {
		return
	}
	r.portrait.Points = append(r.portrait.Points, Point{
		X: f.HeightAt(i) - f.Equilibrium(),
		Y: f.VelocityAt(i),
	})
}

func (r *PhaseRecorder) Portrait() *PhasePortrait2D { return &r.portrait }

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// axes, where they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// CrossingSection keeps the portrait points where the sample passes back
// through rest moving upward, i.e. the displacement changes sign from
// positive to non-positive. Successive velocities show how fast the
// oscillation decays.
func CrossingSection(portrait *PhasePortrait2D) []Point {
	if portrait == nil {
		return nil
	}
	out := make([]Point, 0)
	for i := 1; i < len(portrait.Points); i++ {
		prev, cur := portrait.Points[i-1], portrait.Points[i]
		if prev.X > 0 && cur.X <= 0 {
			out = append(out, cur)
		}
	}
	return out
}
