package control

import (
	"math"
	"time"
)

// DefaultTimeout is how long field-mode influence lasts after the last
// pointer move or press.
const DefaultTimeout = 100 * time.Millisecond

// Pointer mirrors the last known pointer state in surface coordinates.
type Pointer struct {
	X, Y         float64
	PrevX, PrevY float64
	// VY is the vertical distance covered by the last move event.
	VY     float64
	Active bool
	Last   time.Time
	seen   bool
}

func (p *Pointer) moveTo(x, y float64, now time.Time) {
	if p.seen {
		p.PrevX, p.PrevY = p.X, p.Y
	} else {
		p.PrevX, p.PrevY = x, y
		p.seen = true
	}
	p.X, p.Y = x, y
	p.VY = p.Y - p.PrevY
	p.Active = true
	p.Last = now
}

// Seen reports whether any pointer event has arrived yet.
func (p Pointer) Seen() bool { return p.seen }

// Live reports whether the pointer is active and inside the active window at now.
func (p Pointer) Live(now time.Time, timeout time.Duration) bool {
	return p.Active && now.Sub(p.Last) < timeout
}

// IndexAt maps a horizontal position to the sample drawn nearest to its left.
// Positions outside [0, width) are rejected.
func IndexAt(x, width float64, n int) (int, bool) {
	if n < 1 || width <= 0 || math.IsNaN(x) || x < 0 || x >= width {
		return 0, false
	}
	idx := int(math.Floor(x / (width / float64(n))))
	if idx >= n {
		// x just below width can round up
		idx = n - 1
	}
	return idx, true
}
