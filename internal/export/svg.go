package export

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Pointer is the indicator overlay: a circle of the influence radius at the
// pointer position.
type Pointer struct {
	X, Y   float64
	Radius float64
}

type SurfaceOptions struct {
	Background string
	Fill       string
	Stroke     string
	Indicator  string
	Pointer    *Pointer
}

func DefaultSurfaceOptions() SurfaceOptions {
	return SurfaceOptions{
		Background: "#0a0a0a",
		Fill:       "#1e6fd9",
		Stroke:     "#8cc8ff",
		Indicator:  "#ffffff",
	}
}

// SurfaceSVG draws one frame the way the live frontends do: sample i sits
// at x = i*width/n, y = heights[i], and everything below the polyline down
// to the bottom edge is filled.
func SurfaceSVG(heights []float64, width, height float64, opts SurfaceOptions) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, opts.Background))

	if n := len(heights); n > 0 {
		seg := width / float64(n)
		var path strings.Builder
		path.WriteString(fmt.Sprintf("M0,%.2f", clampY(heights[0], height)))
		for i := 1; i < n; i++ {
			path.WriteString(fmt.Sprintf(" L%.2f,%.2f", float64(i)*seg, clampY(heights[i], height)))
		}
		// run the last sample out to the right edge so the fill spans the surface
		path.WriteString(fmt.Sprintf(" L%.2f,%.2f", width, clampY(heights[n-1], height)))
		line := path.String()

		sb.WriteString(fmt.Sprintf(`<path fill="%s" stroke="none" d="%s L%.2f,%.2f L0,%.2f Z"/>
`, opts.Fill, line, width, height, height))
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="%s"/>
`, opts.Stroke, line))
	}

	if p := opts.Pointer; p != nil && p.Radius > 0 {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="%s" stroke-opacity="0.6"/>
`, p.X, p.Y, p.Radius, opts.Indicator))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func clampY(y, height float64) float64 {
	if math.IsNaN(y) {
		return height
	}
	return math.Max(-height, math.Min(height, y))
}

// WriteSurfaceSVG writes SurfaceSVG to w.
func WriteSurfaceSVG(w io.Writer, heights []float64, width, height float64, opts SurfaceOptions) error {
	_, err := io.WriteString(w, SurfaceSVG(heights, width, height, opts))
	return err
}

// SeriesToSVG plots a scalar series, such as energy per tick, as a polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		minY = math.Min(minY, v)
		maxY = math.Max(maxY, v)
	}

	rangeX := float64(len(values) - 1)
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, v := range values {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
