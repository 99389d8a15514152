package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ripple/internal/dynamo"
	"github.com/san-kum/ripple/internal/physics"
)

const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
	DefaultFPS    = 60
	DefaultSteps  = 600
	DefaultTheme  = "ocean"
)

type Config struct {
	Preset    string         `yaml:"preset,omitempty"`
	Samples   int            `yaml:"samples"`
	Width     float64        `yaml:"width"`
	Height    float64        `yaml:"height"`
	Level     float64        `yaml:"level"`
	FPS       int            `yaml:"fps"`
	Steps     int            `yaml:"steps"`
	Seed      int64          `yaml:"seed"`
	Timeout   time.Duration  `yaml:"timeout"`
	Indicator bool           `yaml:"indicator"`
	Theme     string         `yaml:"theme"`
	Mode      ModeConfig     `yaml:"mode"`
	Params    physics.Params `yaml:"params"`
}

type ModeConfig struct {
	Boundary       string `yaml:"boundary"`
	Interaction    string `yaml:"interaction"`
	ConserveVolume bool   `yaml:"conserve_volume"`
	Propagate      bool   `yaml:"propagate"`
	Pull           bool   `yaml:"pull"`
}

func DefaultConfig() *Config {
	m := physics.DefaultMode()
	return &Config{
		Samples:   physics.DefaultSamples,
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		Level:     physics.DefaultLevel,
		FPS:       DefaultFPS,
		Steps:     DefaultSteps,
		Timeout:   100 * time.Millisecond,
		Indicator: true,
		Theme:     DefaultTheme,
		Mode: ModeConfig{
			Boundary:       m.Boundary.String(),
			Interaction:    m.Interaction.String(),
			ConserveVolume: m.ConserveVolume,
			Propagate:      m.Propagate,
			Pull:           m.Pull,
		},
		Params: physics.DefaultParams(),
	}
}

// Load reads a YAML file on top of the defaults, so a partial file only
// overrides the keys it names.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	return ParseOnto(data, DefaultConfig())
}

// LoadOnto reads a YAML file on top of a copy of base. The CLI uses it to
// layer a config file over a preset.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseOnto(data, base)
}

func ParseOnto(data []byte, base *Config) (*Config, error) {
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func (c *Config) Validate() error {
	switch {
	case c.Samples < 1:
		return fmt.Errorf("samples %d: %w", c.Samples, dynamo.ErrInvalidConfig)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("surface %vx%v: %w", c.Width, c.Height, dynamo.ErrInvalidConfig)
	case c.Level < 0 || c.Level > 1:
		return fmt.Errorf("level %v: %w", c.Level, dynamo.ErrInvalidConfig)
	case c.FPS < 1:
		return fmt.Errorf("fps %d: %w", c.FPS, dynamo.ErrInvalidConfig)
	case c.Steps < 0:
		return fmt.Errorf("steps %d: %w", c.Steps, dynamo.ErrInvalidConfig)
	case c.Timeout < 0:
		return fmt.Errorf("timeout %v: %w", c.Timeout, dynamo.ErrInvalidConfig)
	}
	_, err := c.FieldMode()
	return err
}

func (c *Config) FieldMode() (physics.Mode, error) {
	b, err := physics.ParseBoundary(c.Mode.Boundary)
	if err != nil {
		return physics.Mode{}, err
	}
	in, err := physics.ParseInteraction(c.Mode.Interaction)
	if err != nil {
		return physics.Mode{}, err
	}
	return physics.Mode{
		Boundary:       b,
		Interaction:    in,
		ConserveVolume: c.Mode.ConserveVolume,
		Propagate:      c.Mode.Propagate,
		Pull:           c.Mode.Pull,
	}, nil
}

// NewField builds a field at rest from the config.
func (c *Config) NewField() (*physics.Field, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	mode, _ := c.FieldMode()
	f := physics.NewField(c.Samples, c.Width, c.Height)
	f.Mode = mode
	f.Params = c.Params
	f.SetLevel(c.Level)
	return f, nil
}

// Dt is the wall-clock time between ticks.
func (c *Config) Dt() time.Duration {
	if c.FPS < 1 {
		return time.Second / DefaultFPS
	}
	return time.Second / time.Duration(c.FPS)
}

// Duration is the wall-clock length of a headless run.
func (c *Config) Duration() time.Duration {
	return time.Duration(c.Steps) * c.Dt()
}
