// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and SALARYQA_ env vars on top of the defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the record store: memory, sqlite3 or postgres.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is the sqlite3 file path or postgres connection string.
	StoreDSN string `koanf:"store_dsn"`

	// StoreAutoMigrate applies schema migrations when a SQL store opens.
	StoreAutoMigrate bool `koanf:"store_auto_migrate"`

	// StoreConnectTimeout bounds how long opening a SQL store retries its ping.
	StoreConnectTimeout time.Duration `koanf:"store_connect_timeout"`

	// StoreMetricsInterval is how often per-status entry gauges are refreshed.
	StoreMetricsInterval time.Duration `koanf:"store_metrics_interval"`

	// DuplicateThreshold is the similarity score at which an entry is a duplicate.
	DuplicateThreshold int `koanf:"duplicate_threshold"`

	// DuplicateCandidateLimit caps the candidates fetched per duplicate check.
	DuplicateCandidateLimit int `koanf:"duplicate_candidate_limit"`

	// DuplicateMinMatchedFields is how many fields a candidate must match to rank.
	DuplicateMinMatchedFields int `koanf:"duplicate_min_matched_fields"`

	// ComparatorLimit caps the comparators fetched per comparison level.
	ComparatorLimit int `koanf:"comparator_limit"`

	// BatchLimit is the default number of entries a re-analysis run processes.
	BatchLimit int `koanf:"batch_limit"`

	// BatchRatePerSec paces batch re-analysis; 0 disables pacing.
	BatchRatePerSec float64 `koanf:"batch_rate_per_sec"`

	// SimilarityWeights overrides per-field similarity weights. A weight of 0
	// disables a field.
	SimilarityWeights map[string]int `koanf:"similarity_weights"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                  "info",
		LogFormat:                 "text",
		Addr:                      ":9080",
		StoreDriver:               "memory",
		StoreAutoMigrate:          true,
		StoreConnectTimeout:       30 * time.Second,
		StoreMetricsInterval:      5 * time.Second,
		DuplicateThreshold:        90,
		DuplicateCandidateLimit:   100,
		DuplicateMinMatchedFields: 5,
		ComparatorLimit:           1000,
		BatchLimit:                100,
		BatchRatePerSec:           20,
	}
}

// Validate checks value ranges and driver settings.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.StoreConnectTimeout <= 0:
		return fmt.Errorf("%w: store_connect_timeout must be positive", ErrInvalidConfig)
	case c.StoreMetricsInterval <= 0:
		return fmt.Errorf("%w: store_metrics_interval must be positive", ErrInvalidConfig)
	case c.DuplicateThreshold < 1 || c.DuplicateThreshold > 100:
		return fmt.Errorf("%w: duplicate_threshold must be within 1..100, got %d", ErrInvalidConfig, c.DuplicateThreshold)
	case c.DuplicateCandidateLimit < 1:
		return fmt.Errorf("%w: duplicate_candidate_limit must be positive", ErrInvalidConfig)
	case c.DuplicateMinMatchedFields < 1:
		return fmt.Errorf("%w: duplicate_min_matched_fields must be positive", ErrInvalidConfig)
	case c.ComparatorLimit < 1:
		return fmt.Errorf("%w: comparator_limit must be positive", ErrInvalidConfig)
	case c.BatchLimit < 1:
		return fmt.Errorf("%w: batch_limit must be positive", ErrInvalidConfig)
	case c.BatchRatePerSec < 0:
		return fmt.Errorf("%w: batch_rate_per_sec must not be negative", ErrInvalidConfig)
	}

	switch strings.ToLower(c.StoreDriver) {
	case "memory":
	case "sqlite3", "postgres":
		if c.StoreDSN == "" {
			return fmt.Errorf("%w: store_dsn is required for %s", ErrInvalidConfig, c.StoreDriver)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}

	for name, w := range c.SimilarityWeights {
		if w < 0 {
			return fmt.Errorf("%w: similarity weight %s must not be negative", ErrInvalidConfig, name)
		}
	}
	return nil
}
