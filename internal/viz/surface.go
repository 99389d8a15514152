package viz

import "math"

// Indicator is the pointer overlay in surface coordinates.
type Indicator struct {
	X, Y, Radius float64
}

// DrawSurface fills everything below the polyline through (i*width/n, h[i])
// onto c. The surface is stretched over the whole canvas. The last sample is
// held out to the right edge.
func DrawSurface(c *Canvas, heights []float64, width, height float64) {
	n := len(heights)
	if n == 0 || width <= 0 || height <= 0 {
		return
	}
	dw, dh := c.DotWidth(), c.DotHeight()
	sx := width / float64(dw)
	sy := float64(dh) / height
	seg := width / float64(n)

	for px := 0; px < dw; px++ {
		x := (float64(px) + 0.5) * sx
		y := surfaceAt(heights, x, seg)
		if math.IsNaN(y) {
			continue
		}
		c.FillBelow(px, int(math.Round(y*sy)))
	}
}

// DrawIndicator outlines the influence circle.
func DrawIndicator(c *Canvas, in Indicator, width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	kx := float64(c.DotWidth()) / width
	ky := float64(c.DotHeight()) / height
	c.Circle(int(math.Round(in.X*kx)), int(math.Round(in.Y*ky)), int(math.Round(in.Radius*kx)))
}

// surfaceAt interpolates the polyline at horizontal position x.
func surfaceAt(heights []float64, x, seg float64) float64 {
	n := len(heights)
	i := int(x / seg)
	if i < 0 {
		return heights[0]
	}
	if i >= n-1 {
		return heights[n-1]
	}
	t := (x - float64(i)*seg) / seg
	return heights[i] + t*(heights[i+1]-heights[i])
}
