package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// drawWater fills every segment between neighboring samples down to the
// bottom edge with two triangles and strokes the surface line on top.
func (a *App) drawWater() {
	f := a.sim.Field()
	heights := f.HeightsView()
	n := len(heights)
	if n == 0 {
		return
	}
	w, bottom := float32(f.Width()), float32(f.Height())
	seg := w / float32(n)

	points := make([]rl.Vector2, 0, n+1)
	for i := 0; i < n; i++ {
		points = append(points, rl.NewVector2(float32(i)*seg, float32(heights[i])))
	}
	// the last sample runs out to the right edge
	points = append(points, rl.NewVector2(w, float32(heights[n-1])))

	for i := 0; i+1 < len(points); i++ {
		p, q := points[i], points[i+1]
		pb, qb := rl.NewVector2(p.X, bottom), rl.NewVector2(q.X, bottom)
		// counter-clockwise on screen
		rl.DrawTriangle(p, pb, qb, ColWater)
		rl.DrawTriangle(p, qb, q, ColWater)
	}
	rl.DrawLineStrip(points, ColCrest)

	adapter := a.sim.Adapter()
	if p := adapter.Pointer(); adapter.ShowIndicator && p.Seen() {
		rl.DrawCircleLines(int32(p.X), int32(p.Y), float32(f.Params.MouseRadius), ColIndicator)
	}
}
