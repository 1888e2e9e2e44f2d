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
//  2. file (YAML) if GEBEYA_CONFIG is set
//  3. env (prefix GEBEYA_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("GEBEYA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: GEBEYA_ADDR, GEBEYA_QUEUE_SIZE, ... Nested
	// weight keys use double underscore: GEBEYA_WEIGHTS__BUDGET_FULL.
	envProvider := env.Provider("GEBEYA_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "GEBEYA_"))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.Store != StoreMemory && cfg.Store != StoreSQLite:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, cfg.Store)
	case cfg.Notifier != NotifierLog && cfg.Notifier != NotifierKafka:
		return fmt.Errorf("%w: unknown notifier backend %q", ErrInvalidConfig, cfg.Notifier)
	case cfg.Notifier == NotifierKafka && len(cfg.KafkaBrokers) == 0:
		return fmt.Errorf("%w: kafka notifier needs at least one broker", ErrInvalidConfig)
	case cfg.MatchThreshold < 1 || cfg.MatchThreshold > 100:
		return fmt.Errorf("%w: match_threshold must be in [1,100]", ErrInvalidConfig)
	}
	return nil
}
