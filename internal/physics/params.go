package physics

import (
	"fmt"
	"strings"

	"github.com/san-kum/ripple/internal/dynamo"
)

// Boundary selects how samples are kept inside the surface.
type Boundary int

const (
	// BoundaryClamp pins a sample that sinks below the bottom edge.
	BoundaryClamp Boundary = iota
	// BoundaryBounce clamps at the bottom and at rest level and reflects velocity.
	BoundaryBounce
)

func (b Boundary) String() string {
	switch b {
	case BoundaryBounce:
		return "bounce"
	default:
		return "clamp"
	}
}

func ParseBoundary(s string) (Boundary, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamp", "clamp-only":
		return BoundaryClamp, nil
	case "bounce", "clamp-and-bounce":
		return BoundaryBounce, nil
	}
	return BoundaryClamp, fmt.Errorf("boundary %q: %w", s, dynamo.ErrInvalidConfig)
}

// Interaction selects what pointer activity does to the field.
type Interaction int

const (
	// InteractionField applies a continuous falloff perturbation while the pointer is active.
	InteractionField Interaction = iota
	// InteractionImpulse pokes a single sample when the pointer passes over it.
	InteractionImpulse
)

func (m Interaction) String() string {
	switch m {
	case InteractionImpulse:
		return "impulse"
	default:
		return "field"
	}
}

func ParseInteraction(s string) (Interaction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "field":
		return InteractionField, nil
	case "impulse", "poke":
		return InteractionImpulse, nil
	}
	return InteractionField, fmt.Errorf("interaction %q: %w", s, dynamo.ErrInvalidConfig)
}

// Mode enumerates the behavioral switches of a field. Every combination is valid.
type Mode struct {
	Boundary       Boundary
	Interaction    Interaction
	ConserveVolume bool
	Propagate      bool
	Pull           bool
}

// DefaultMode is the closed-basin pond: clamp, field interaction, volume
// correction and a slow pull back to rest.
func DefaultMode() Mode {
	return Mode{
		Boundary:       BoundaryClamp,
		Interaction:    InteractionField,
		ConserveVolume: true,
		Pull:           true,
	}
}

// Params are the tunable knobs. None of them are range checked.
type Params struct {
	Damping          float64 `yaml:"damping" json:"damping"`
	Tension          float64 `yaml:"tension" json:"tension"`
	Viscosity        float64 `yaml:"viscosity" json:"viscosity"` // 1 disables
	Gravity          float64 `yaml:"gravity" json:"gravity"`
	ReturnRate       float64 `yaml:"return_rate" json:"return_rate"`
	Spread           float64 `yaml:"spread" json:"spread"`
	MouseRadius      float64 `yaml:"mouse_radius" json:"mouse_radius"`
	MaxMouseDistance float64 `yaml:"max_mouse_distance" json:"max_mouse_distance"`
	Strength         float64 `yaml:"strength" json:"strength"`
	Momentum         float64 `yaml:"momentum" json:"momentum"`
	ImpulseVelocity  float64 `yaml:"impulse_velocity" json:"impulse_velocity"`
	ImpulseReach     float64 `yaml:"impulse_reach" json:"impulse_reach"`
	FloorBounce      float64 `yaml:"floor_bounce" json:"floor_bounce"`
	CeilBounce       float64 `yaml:"ceil_bounce" json:"ceil_bounce"`
}

const (
	DefaultSamples = 100
	DefaultLevel   = 0.5
)

func DefaultParams() Params {
	return Params{
		Damping:          0.95,
		Tension:          0.02,
		Viscosity:        1.0,
		Gravity:          0,
		ReturnRate:       0.005,
		Spread:           0.1,
		MouseRadius:      50,
		MaxMouseDistance: 50,
		Strength:         0.03,
		Momentum:         0,
		ImpulseVelocity:  -8,
		ImpulseReach:     20,
		FloorBounce:      0.3,
		CeilBounce:       0.5,
	}
}

// ParamNames lists the keys accepted by SetParam, in display order.
var ParamNames = []string{
	"damping", "tension", "viscosity", "gravity", "returnRate", "spread",
	"mouseRadius", "maxMouseDistance", "strength", "momentum",
	"impulseVelocity", "impulseReach", "floorBounce", "ceilBounce",
}

func (p *Params) ref(name string) *float64 {
	switch name {
	case "damping":
		return &p.Damping
	case "tension", "waveSpeed":
		return &p.Tension
	case "viscosity":
		return &p.Viscosity
	case "gravity":
		return &p.Gravity
	case "returnRate":
		return &p.ReturnRate
	case "spread":
		return &p.Spread
	case "mouseRadius":
		return &p.MouseRadius
	case "maxMouseDistance":
		return &p.MaxMouseDistance
	case "strength":
		return &p.Strength
	case "momentum":
		return &p.Momentum
	case "impulseVelocity":
		return &p.ImpulseVelocity
	case "impulseReach":
		return &p.ImpulseReach
	case "floorBounce":
		return &p.FloorBounce
	case "ceilBounce":
		return &p.CeilBounce
	}
	return nil
}

// Get returns the named parameter.
func (p Params) Get(name string) (float64, bool) {
	r := p.ref(name)
	if r == nil {
		return 0, false
	}
	return *r, true
}

// Set writes the named parameter.
func (p *Params) Set(name string, v float64) error {
	r := p.ref(name)
	if r == nil {
		return fmt.Errorf("%s: %w", name, dynamo.ErrUnknownParam)
	}
	*r = v
	return nil
}

func (p Params) Map() map[string]float64 {
	m := make(map[string]float64, len(ParamNames))
	for _, name := range ParamNames {
		m[name] = *p.ref(name)
	}
	return m
}
