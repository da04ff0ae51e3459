package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

const (
	DefaultDecelerationRate = 0.998
	DefaultFPS              = 60
	DefaultPointsPerRow     = 20.0
	DefaultDataDir          = ".nestscroll"
	DefaultLogLevel         = "info"

	// EnvPrefix marks environment overrides, e.g. NESTSCROLL_FPS=120 or
	// NESTSCROLL_LAYOUT__INNER_TOP=400.
	EnvPrefix = "NESTSCROLL_"

	maxFPS = 240
)

var (
	ErrInvalidConfig = errors.New("config: invalid configuration")
	ErrUnknownPreset = errors.New("config: unknown preset")
)

// Layout is the panel geometry in points. The TUI replaces OuterViewport with
// the terminal height.
type Layout struct {
	OuterContent  float64 `yaml:"outer_content" koanf:"outer_content"`
	OuterViewport float64 `yaml:"outer_viewport" koanf:"outer_viewport"`
	InnerTop      float64 `yaml:"inner_top" koanf:"inner_top"`
	InnerContent  float64 `yaml:"inner_content" koanf:"inner_content"`
	InnerViewport float64 `yaml:"inner_viewport" koanf:"inner_viewport"`
}

type Config struct {
	Layout           Layout  `yaml:"layout" koanf:"layout"`
	DecelerationRate float64 `yaml:"deceleration_rate" koanf:"deceleration_rate"`
	FPS              int     `yaml:"fps" koanf:"fps"`
	PointsPerRow     float64 `yaml:"points_per_row" koanf:"points_per_row"`
	ResetLockOnBegin bool    `yaml:"reset_lock_on_begin" koanf:"reset_lock_on_begin"`
	LogLevel         string  `yaml:"log_level" koanf:"log_level"`
	DataDir          string  `yaml:"data_dir" koanf:"data_dir"`
	MetricsAddr      string  `yaml:"metrics_addr" koanf:"metrics_addr"`
}

func DefaultConfig() *Config {
	return &Config{
		Layout:           Presets["default"].Layout,
		DecelerationRate: DefaultDecelerationRate,
		FPS:              DefaultFPS,
		PointsPerRow:     DefaultPointsPerRow,
		LogLevel:         DefaultLogLevel,
		DataDir:          DefaultDataDir,
	}
}

// Load layers defaults, the YAML file at path (if any) and NESTSCROLL_*
// environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func Marshal(cfg *Config) ([]byte, error) {
	return yamlv3.Marshal(cfg)
}

func (c *Config) Validate() error {
	l := c.Layout
	for name, v := range map[string]float64{
		"outer_content":  l.OuterContent,
		"outer_viewport": l.OuterViewport,
		"inner_top":      l.InnerTop,
		"inner_content":  l.InnerContent,
		"inner_viewport": l.InnerViewport,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: layout.%s must be a non-negative number, got %f", ErrInvalidConfig, name, v)
		}
	}
	if l.OuterViewport == 0 || l.InnerViewport == 0 {
		return fmt.Errorf("%w: viewports must be positive", ErrInvalidConfig)
	}
	if l.InnerTop+l.InnerViewport > l.OuterContent {
		return fmt.Errorf("%w: inner panel (top %.0f, height %.0f) overflows outer content %.0f",
			ErrInvalidConfig, l.InnerTop, l.InnerViewport, l.OuterContent)
	}
	if c.DecelerationRate <= 0 || c.DecelerationRate >= 1 {
		return fmt.Errorf("%w: deceleration_rate must be in (0, 1), got %f", ErrInvalidConfig, c.DecelerationRate)
	}
	if c.FPS <= 0 || c.FPS > maxFPS {
		return fmt.Errorf("%w: fps must be in [1, %d], got %d", ErrInvalidConfig, maxFPS, c.FPS)
	}
	if c.PointsPerRow <= 0 {
		return fmt.Errorf("%w: points_per_row must be positive, got %f", ErrInvalidConfig, c.PointsPerRow)
	}
	return nil
}

// Deceleration is the momentum deceleration magnitude in points/s².
func (c *Config) Deceleration() float64 {
	return c.DecelerationRate * 1000
}

// ApplyPreset replaces the layout (and rate, if the preset sets one).
func (c *Config) ApplyPreset(name string) error {
	p := GetPreset(name)
	if p == nil {
		return fmt.Errorf("%w: %s (available: %v)", ErrUnknownPreset, name, ListPresets())
	}
	c.Layout = p.Layout
	if p.DecelerationRate > 0 {
		c.DecelerationRate = p.DecelerationRate
	}
	return nil
}
