package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/ripple/internal/dynamo"
	"github.com/san-kum/ripple/internal/physics"
)

type Preset struct {
	Description string
	apply       func(*Config)
}

var Presets = map[string]Preset{
	"pond": {
		Description: "closed basin: field pointer, volume correction, slow pull to rest",
		apply:       func(*Config) {},
	},
	"poke": {
		Description: "discrete taps: the pointer pokes the sample under it",
		apply: func(c *Config) {
			c.Mode.Interaction = physics.InteractionImpulse.String()
		},
	},
	"trampoline": {
		Description: "surface cannot rise above rest; pushes bounce off the floor and rest level",
		apply: func(c *Config) {
			c.Mode.Boundary = physics.BoundaryBounce.String()
			c.Mode.ConserveVolume = false
			c.Params.Strength = 0.05
		},
	},
	"basin": {
		Description: "volume correction without pull; ripples run until damping eats them",
		apply: func(c *Config) {
			c.Mode.Pull = false
			c.Params.Damping = 0.98
		},
	},
	"ripple": {
		Description: "stiffer chain with second-pass propagation and swipe momentum",
		apply: func(c *Config) {
			c.Mode.Propagate = true
			c.Params.Tension = 0.03
			c.Params.Damping = 0.98
			c.Params.Spread = 0.15
			c.Params.Momentum = 0.2
		},
	},
	"calm": {
		Description: "heavy damping and a gentle pointer",
		apply: func(c *Config) {
			c.Params.Damping = 0.9
			c.Params.Viscosity = 0.98
			c.Params.Strength = 0.015
			c.Params.ReturnRate = 0.02
		},
	},
}

// GetPreset returns a fresh config for the named preset.
func GetPreset(name string) (*Config, error) {
	p, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, dynamo.ErrUnknownPreset)
	}
	cfg := DefaultConfig()
	cfg.Preset = name
	p.apply(cfg)
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
