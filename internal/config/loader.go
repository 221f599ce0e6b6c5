// Package config also handles loading Config from YAML/JSON files with
// environment variable overrides, validation, and defaults.
//
// Example usage:
//
//	// Load from YAML file
//	cfg, err := config.LoadFromFile("amorsize.yaml")
//	if err != nil {
//	    log.Fatalf("failed to load config: %v", err)
//	}
//
//	// Load with environment overrides
//	cfg, err := config.LoadFromFileWithEnv("amorsize.yaml")
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/amorsize/amorsize/internal/amerrors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variables overriding a
// loaded Config. Environment variables follow the pattern
// AMORSIZE_SAMPLE_SIZE, AMORSIZE_CACHE_TTL, and so on.
const EnvPrefix = "AMORSIZE"

// Loader handles configuration loading from various sources.
type Loader struct {
	applyEnvOverrides bool
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{applyEnvOverrides: false}
}

// WithEnvOverrides enables environment variable overrides. When
// enabled, variables prefixed with AMORSIZE_ override values from the
// configuration file.
func (l *Loader) WithEnvOverrides() *Loader {
	l.applyEnvOverrides = true
	return l
}

// LoadFromFile loads a Config from a file (YAML or JSON), determined
// by extension (.yaml, .yml, or .json).
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, amerrors.New(amerrors.ComponentConfig, "load-from-file", amerrors.ErrorTypeValidation,
			newConfigError("config file not found: "+path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, amerrors.WrapWithType(amerrors.ComponentConfig, "read-file", amerrors.ErrorTypeValidation, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	format := "yaml"
	if ext == ".json" {
		format = "json"
	}

	return l.LoadFromBytes(data, format)
}

// LoadFromBytes loads a Config from raw bytes, format being "yaml" or
// "json".
func (l *Loader) LoadFromBytes(data []byte, format string) (*Config, error) {
	cfg := DefaultConfig()

	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, amerrors.WrapWithType(amerrors.ComponentConfig, "parse-yaml", amerrors.ErrorTypeValidation, err)
		}
	case "json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, amerrors.WrapWithType(amerrors.ComponentConfig, "parse-json", amerrors.ErrorTypeValidation, err)
		}
	default:
		return nil, amerrors.New(amerrors.ComponentConfig, "parse", amerrors.ErrorTypeValidation,
			newConfigError("unsupported format: "+format+" (use 'yaml' or 'json')"))
	}

	if l.applyEnvOverrides {
		applyEnvironmentOverrides(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, amerrors.WrapWithType(amerrors.ComponentConfig, "validate", amerrors.ErrorTypeValidation, err)
	}

	return &cfg, nil
}

// applyEnvironmentOverrides applies AMORSIZE_-prefixed environment
// variable overrides to cfg.
//
// Supported overrides:
//   - AMORSIZE_SAMPLE_SIZE
//   - AMORSIZE_TARGET_CHUNK_DURATION (Go duration syntax, e.g. "200ms")
//   - AMORSIZE_USE_CACHE ("true"/"false")
//   - AMORSIZE_CACHE_TTL
//   - AMORSIZE_CACHE_DIR
//   - AMORSIZE_PRUNE_PROBABILITY
//   - AMORSIZE_DISTRIBUTED_CACHE_URL
//   - AMORSIZE_METRICS_ADDR
func applyEnvironmentOverrides(cfg *Config) {
	if val := os.Getenv(EnvPrefix + "_SAMPLE_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.SampleSize = n
		}
	}
	if val := os.Getenv(EnvPrefix + "_TARGET_CHUNK_DURATION"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.TargetChunkDuration = d
		}
	}
	if val := os.Getenv(EnvPrefix + "_USE_CACHE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.UseCache = b
		}
	}
	if val := os.Getenv(EnvPrefix + "_CACHE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.CacheTTL = d
		}
	}
	if val := os.Getenv(EnvPrefix + "_CACHE_DIR"); val != "" {
		cfg.CacheDir = val
	}
	if val := os.Getenv(EnvPrefix + "_PRUNE_PROBABILITY"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.PrunePropability = f
		}
	}
	if val := os.Getenv(EnvPrefix + "_DISTRIBUTED_CACHE_URL"); val != "" {
		cfg.DistributedCacheURL = val
	}
	if val := os.Getenv(EnvPrefix + "_METRICS_ADDR"); val != "" {
		cfg.MetricsAddr = val
	}
}

// LoadFromFile is a convenience function that creates a loader and
// loads a config file.
func LoadFromFile(path string) (*Config, error) {
	return NewLoader().LoadFromFile(path)
}

// LoadFromFileWithEnv is a convenience function that creates a loader
// with env overrides and loads a config file.
func LoadFromFileWithEnv(path string) (*Config, error) {
	return NewLoader().WithEnvOverrides().LoadFromFile(path)
}

// LoadFromBytes is a convenience function that creates a loader and
// loads from bytes.
func LoadFromBytes(data []byte, format string) (*Config, error) {
	return NewLoader().LoadFromBytes(data, format)
}

type configErr string

func (e configErr) Error() string { return string(e) }
func newConfigError(msg string) error { return configErr(msg) }
