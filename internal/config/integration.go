// Package config also provides integration helpers that connect
// configuration loading with client construction, for callers that
// want "load a file, get a ready-to-use client" in one call.
package config

import (
	"github.com/amorsize/amorsize/internal/observability"
	"github.com/amorsize/amorsize/pkg/amorsize"
)

// ToOptions translates a Config into the Options value Optimize and
// OptimizeStreaming expect.
func (c Config) ToOptions() amorsize.Options {
	opts := amorsize.DefaultOptions()
	opts.SampleSize = c.SampleSize
	opts.TargetChunkDuration = c.TargetChunkDuration
	opts.UseCache = c.UseCache
	opts.CacheTTL = c.CacheTTL
	opts.CacheDir = c.CacheDir
	opts.AutoAdjustForNestedParallelism = c.AutoAdjustForNestedParallelism
	return opts
}

// LoadAndBuildClient loads a configuration file and builds a Client in
// one step.
func LoadAndBuildClient(path string, metrics observability.MetricsCollector) (*amorsize.Client, Config, error) {
	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, Config{}, err
	}

	client, err := amorsize.New(cfg.CacheDir, metrics)
	if err != nil {
		return nil, Config{}, err
	}

	return client, *cfg, nil
}

// LoadAndBuildClientWithEnv loads a configuration file with
// environment overrides and builds a Client in one step.
func LoadAndBuildClientWithEnv(path string, metrics observability.MetricsCollector) (*amorsize.Client, Config, error) {
	cfg, err := LoadFromFileWithEnv(path)
	if err != nil {
		return nil, Config{}, err
	}

	client, err := amorsize.New(cfg.CacheDir, metrics)
	if err != nil {
		return nil, Config{}, err
	}

	return client, *cfg, nil
}
