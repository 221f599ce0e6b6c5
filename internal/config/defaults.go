// Package config provides default configuration presets and file/env
// loading for amorsize. It mirrors the engine's own Options shape but
// lives at the process boundary: a caller loads a Config here and turns
// it into Options with ToOptions. The CLI commands do not use this
// package; they build their Options from their own flags.
package config

import "time"

// Config holds the CLI-level defaults for one amorsize invocation:
// sampling and chunking tunables, cache lifetime and location, and the
// optional distributed-cache front.
type Config struct {
	SampleSize                     int           `yaml:"sample_size" json:"sample_size"`
	TargetChunkDuration            time.Duration `yaml:"target_chunk_duration" json:"target_chunk_duration"`
	UseCache                       bool          `yaml:"use_cache" json:"use_cache"`
	CacheTTL                       time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
	CacheDir                       string        `yaml:"cache_dir" json:"cache_dir"`
	PrunePropability               float64       `yaml:"prune_probability" json:"prune_probability"`
	AutoAdjustForNestedParallelism bool          `yaml:"auto_adjust_nested_parallelism" json:"auto_adjust_nested_parallelism"`
	DistributedCacheURL            string        `yaml:"distributed_cache_url" json:"distributed_cache_url"`
	MetricsAddr                    string        `yaml:"metrics_addr" json:"metrics_addr"`
}

// DefaultConfig returns the built-in defaults, the values a CLI
// invocation falls back to when no file and no environment override
// is present.
//
// Example:
//
//	cfg := config.DefaultConfig()
//	client, err := amorsize.New(cfg.CacheDir, nil)
func DefaultConfig() Config {
	return Config{
		SampleSize:                     5,
		TargetChunkDuration:            200 * time.Millisecond,
		UseCache:                       true,
		CacheTTL:                       24 * time.Hour,
		CacheDir:                       "",
		PrunePropability:               0.05,
		AutoAdjustForNestedParallelism: true,
	}
}

// ProductionConfig tunes defaults for long-lived services: the cache
// lifetime grows to 7 days; every other field keeps its DefaultConfig
// value.
func ProductionConfig() Config {
	cfg := DefaultConfig()
	cfg.CacheTTL = 7 * 24 * time.Hour
	return cfg
}

// DevelopmentConfig favors fast iteration over cache reuse: a short
// TTL so a stale recommendation from an earlier run of the same
// binary doesn't linger across edits.
func DevelopmentConfig() Config {
	cfg := DefaultConfig()
	cfg.CacheTTL = 10 * time.Minute
	return cfg
}

// TestingConfig disables the cache entirely, the predictable
// configuration for automated tests that must not depend on
// leftover state from a prior run.
func TestingConfig() Config {
	cfg := DefaultConfig()
	cfg.UseCache = false
	return cfg
}

// Validate reports whether cfg is usable, the same checks the
// decision engine itself applies to an Options value, surfaced early
// at the configuration boundary.
func (c Config) Validate() error {
	if c.SampleSize <= 0 || c.SampleSize > 10000 {
		return newConfigError("sample_size must be in (0, 10000]")
	}
	if c.TargetChunkDuration <= 0 || c.TargetChunkDuration > time.Hour {
		return newConfigError("target_chunk_duration must be in (0, 3600s]")
	}
	if c.PrunePropability < 0 || c.PrunePropability > 1 {
		return newConfigError("prune_probability must be in [0, 1]")
	}
	return nil
}
