package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FOCUSFORGE_CONFIG is set
//  3. env (prefix FOCUSFORGE_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("FOCUSFORGE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: FOCUSFORGE_ADDR, FOCUSFORGE_TICK_INTERVAL_MS, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("FOCUSFORGE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "focusforge_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TickIntervalMS <= 0:
		return fmt.Errorf("%w: tick_interval_ms must be positive", ErrInvalidConfig)
	case c.IdleThresholdSec <= 0:
		return fmt.Errorf("%w: idle_threshold_sec must be positive", ErrInvalidConfig)
	case c.PointsPerFocusSecond < 0:
		return fmt.Errorf("%w: points_per_focus_second must not be negative", ErrInvalidConfig)
	case c.FlushEverySeconds <= 0:
		return fmt.Errorf("%w: flush_every_seconds must be positive", ErrInvalidConfig)
	}
	return nil
}
