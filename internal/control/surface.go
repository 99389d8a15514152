package control

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/ripple/internal/dynamo"
	"github.com/san-kum/ripple/internal/physics"
)

// Control is one exposed knob: a named numeric range bound to a field parameter.
type Control struct {
	Name    string
	Label   string
	Min     float64
	Max     float64
	Default float64
	Step    float64
}

// Clamp limits v to the control's slider range.
func (c Control) Clamp(v float64) float64 {
	return math.Max(c.Min, math.Min(c.Max, v))
}

// DefaultControls are the knobs the frontends expose. Defaults are filled in
// from the field when a Surface is built.
func DefaultControls() []Control {
	return []Control{
		{Name: "damping", Label: "Damping", Min: 0.8, Max: 1.0, Step: 0.005},
		{Name: "tension", Label: "Tension", Min: 0, Max: 0.2, Step: 0.005},
		{Name: "viscosity", Label: "Viscosity", Min: 0.9, Max: 1.0, Step: 0.005},
		{Name: "gravity", Label: "Gravity", Min: -0.5, Max: 0.5, Step: 0.05},
		{Name: "returnRate", Label: "Return", Min: 0, Max: 0.05, Step: 0.001},
		{Name: "spread", Label: "Spread", Min: 0, Max: 0.5, Step: 0.01},
		{Name: "mouseRadius", Label: "Radius", Min: 5, Max: 200, Step: 5},
		{Name: "maxMouseDistance", Label: "Reach", Min: 5, Max: 200, Step: 5},
		{Name: "strength", Label: "Strength", Min: 0, Max: 0.2, Step: 0.005},
		{Name: "momentum", Label: "Momentum", Min: 0, Max: 1, Step: 0.05},
		{Name: "level", Label: "Level", Min: 0.1, Max: 0.9, Step: 0.05},
	}
}

// Surface binds controls to a field. Changes apply on the next step.
type Surface struct {
	field        *physics.Field
	controls     []Control
	index        map[string]int
	defaults     physics.Params
	defaultLevel float64
}

// NewSurface snapshots the field's current parameters as the reset defaults.
func NewSurface(f *physics.Field, controls []Control) *Surface {
	s := &Surface{
		field:        f,
		controls:     make([]Control, 0, len(controls)),
		index:        make(map[string]int, len(controls)),
		defaults:     f.Params,
		defaultLevel: f.Level(),
	}
	params := f.GetParams()
	for _, c := range controls {
		v, ok := params[c.Name]
		if !ok {
			continue
		}
		c.Default = v
		s.index[c.Name] = len(s.controls)
		s.controls = append(s.controls, c)
	}
	return s
}

func (s *Surface) Controls() []Control {
	out := make([]Control, len(s.controls))
	copy(out, s.controls)
	return out
}

func (s *Surface) Lookup(name string) (Control, bool) {
	i, ok := s.index[name]
	if !ok {
		return Control{}, false
	}
	return s.controls[i], true
}

func (s *Surface) Value(name string) (float64, error) {
	if _, ok := s.index[name]; !ok {
		return 0, fmt.Errorf("%s: %w", name, dynamo.ErrUnknownParam)
	}
	return s.field.GetParams()[name], nil
}

// Set parses raw and applies it. Malformed input leaves the previous value in place.
func (s *Surface) Set(name, raw string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("%s: %q: %w", name, raw, dynamo.ErrMalformedInput)
	}
	return s.SetValue(name, v)
}

// SetValue applies v as is. Out of range values are accepted.
func (s *Surface) SetValue(name string, v float64) error {
	if _, ok := s.index[name]; !ok {
		return fmt.Errorf("%s: %w", name, dynamo.ErrUnknownParam)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s: %v: %w", name, v, dynamo.ErrMalformedInput)
	}
	if name == "level" && v == s.field.Level() {
		return nil
	}
	return s.field.SetParam(name, v)
}

// Nudge moves a control by dir steps, staying within its slider range.
func (s *Surface) Nudge(name string, dir int) error {
	c, ok := s.Lookup(name)
	if !ok {
		return fmt.Errorf("%s: %w", name, dynamo.ErrUnknownParam)
	}
	v, _ := s.Value(name)
	return s.SetValue(name, c.Clamp(v+float64(dir)*c.Step))
}

// Slide applies a value read back from a range-limited slider widget. A
// slider that was not moved reports the clamped current value; that echo is
// ignored so parameters configured outside the range survive.
func (s *Surface) Slide(name string, slid float32) error {
	c, ok := s.Lookup(name)
	if !ok {
		return fmt.Errorf("%s: %w", name, dynamo.ErrUnknownParam)
	}
	v, _ := s.Value(name)
	if slid == float32(c.Clamp(v)) {
		return nil
	}
	return s.SetValue(name, float64(slid))
}

// Fraction is the control's position within its range, clamped to [0, 1].
func (s *Surface) Fraction(name string) float64 {
	c, ok := s.Lookup(name)
	if !ok || c.Max <= c.Min {
		return 0
	}
	v, _ := s.Value(name)
	return math.Max(0, math.Min(1, (v-c.Min)/(c.Max-c.Min)))
}

// Reset restores every parameter to the session values captured at
// construction (the preset plus any overrides) in one assignment. The chain is
// only reset if the level changes.
func (s *Surface) Reset() {
	s.restore(s.defaults, s.defaultLevel)
}

// ResetDefaults restores the documented package defaults, physics.DefaultParams
// and physics.DefaultLevel, in one assignment.
func (s *Surface) ResetDefaults() {
	s.restore(physics.DefaultParams(), physics.DefaultLevel)
}

func (s *Surface) restore(p physics.Params, level float64) {
	s.field.Params = p
	if s.field.Level() != level {
		s.field.SetLevel(level)
	}
}
