package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestToOptions_CarriesSampleSizeAndChunkDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleSize = 9

	opts := cfg.ToOptions()
	if opts.SampleSize != 9 {
		t.Errorf("SampleSize = %d, expected 9", opts.SampleSize)
	}
	if opts.TargetChunkDuration != cfg.TargetChunkDuration {
		t.Error("ToOptions() should carry TargetChunkDuration through unchanged")
	}
}

func TestLoadAndBuildClient(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amorsize.yaml")
	content := "sample_size: 5\ncache_dir: " + filepath.Join(dir, "cache") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	client, cfg, err := LoadAndBuildClient(path, nil)
	if err != nil {
		t.Fatalf("LoadAndBuildClient() error = %v", err)
	}
	if client == nil {
		t.Fatal("LoadAndBuildClient() returned a nil client")
	}
	if client.Store() == nil {
		t.Error("client should carry a usable cache store")
	}
	if cfg.SampleSize != 5 {
		t.Errorf("SampleSize = %d, expected 5", cfg.SampleSize)
	}
}

func TestLoadAndBuildClientWithEnv_AppliesOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amorsize.yaml")
	if err := os.WriteFile(path, []byte("sample_size: 5\n"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	t.Setenv(EnvPrefix+"_SAMPLE_SIZE", "15")

	_, cfg, err := LoadAndBuildClientWithEnv(path, nil)
	if err != nil {
		t.Fatalf("LoadAndBuildClientWithEnv() error = %v", err)
	}
	if cfg.SampleSize != 15 {
		t.Errorf("SampleSize = %d, expected env override of 15", cfg.SampleSize)
	}
}

func TestLoadAndBuildClient_MissingFileReturnsError(t *testing.T) {
	_, _, err := LoadAndBuildClient("/nonexistent/amorsize.yaml", nil)
	if err == nil {
		t.Error("LoadAndBuildClient() should error on a missing config file")
	}
}
