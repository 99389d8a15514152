package control

import (
	"math"
	"time"

	"github.com/san-kum/ripple/internal/dynamo"
	"github.com/san-kum/ripple/internal/physics"
)

// Adapter translates pointer and resize events into field updates.
//
// Event handlers only touch the pointer mirror, except the impulse poke which
// writes one velocity slot. Field-mode forces are handed to Advance through
// Influence so a step always sees a consistent chain.
type Adapter struct {
	Timeout       time.Duration
	ShowIndicator bool

	field   *physics.Field
	clock   dynamo.Clock
	pointer Pointer
}

func NewAdapter(f *physics.Field, clock dynamo.Clock) *Adapter {
	if clock == nil {
		clock = dynamo.SystemClock{}
	}
	return &Adapter{
		Timeout:       DefaultTimeout,
		ShowIndicator: true,
		field:         f,
		clock:         clock,
	}
}

func (a *Adapter) Field() *physics.Field { return a.field }
func (a *Adapter) Clock() dynamo.Clock   { return a.clock }
func (a *Adapter) Pointer() Pointer      { return a.pointer }

// Move records a pointer move and re-arms the active window. Non-finite
// coordinates are dropped.
func (a *Adapter) Move(x, y float64) {
	if !finite(x) || !finite(y) {
		return
	}
	a.pointer.moveTo(x, y, a.clock.Now())
	a.poke(x, y)
}

// Press activates the pointer at (x, y).
func (a *Adapter) Press(x, y float64) {
	if !finite(x) || !finite(y) {
		return
	}
	a.pointer.moveTo(x, y, a.clock.Now())
	a.pointer.VY = 0
	a.poke(x, y)
}

// Release deactivates the pointer immediately.
func (a *Adapter) Release() {
	a.pointer.Active = false
	a.pointer.VY = 0
}

// Resize adopts the new surface size and resets the chain.
func (a *Adapter) Resize(width, height float64) {
	a.field.Resize(width, height)
}

// Active reports whether field-mode influence applies at now.
func (a *Adapter) Active(now time.Time) bool {
	return a.pointer.Live(now, a.Timeout)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func (a *Adapter) poke(x, y float64) {
	f := a.field
	if f.Mode.Interaction != physics.InteractionImpulse {
		return
	}
	idx, ok := IndexAt(x, f.Width(), f.N())
	if !ok {
		return
	}
	if math.Abs(y-f.HeightAt(idx)) < f.Params.ImpulseReach {
		f.SetVelocity(idx, f.Params.ImpulseVelocity)
	}
}

// Influence returns the perturbation for a step evaluated at now, or nil when
// the field is in impulse mode or the pointer is outside its active window.
func (a *Adapter) Influence(now time.Time) physics.Influence {
	f := a.field
	if f.Mode.Interaction != physics.InteractionField || !a.Active(now) {
		return nil
	}
	p := f.Params
	return pointerInfluence{
		x:        a.pointer.X,
		y:        a.pointer.Y,
		vy:       a.pointer.VY,
		radius:   p.MouseRadius,
		reach:    p.MaxMouseDistance,
		strength: p.Strength,
		momentum: p.Momentum,
	}
}

type pointerInfluence struct {
	x, y, vy           float64
	radius, reach      float64
	strength, momentum float64
}

// Perturb pulls samples toward the pointer with a linear vertical falloff.
func (in pointerInfluence) Perturb(_ int, x, h float64) float64 {
	if in.reach <= 0 {
		return 0
	}
	dx, dy := math.Abs(x-in.x), math.Abs(in.y-h)
	if dx >= in.radius || dy >= in.reach {
		return 0
	}
	falloff := 1 - dy/in.reach
	return in.strength*falloff*(in.y-h) + in.momentum*falloff*in.vy
}
