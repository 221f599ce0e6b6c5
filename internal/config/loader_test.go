package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if loader.applyEnvOverrides {
		t.Error("new loader should have env overrides disabled by default")
	}
}

func TestLoaderWithEnvOverrides(t *testing.T) {
	loader := NewLoader().WithEnvOverrides()
	if loader == nil {
		t.Fatal("WithEnvOverrides() should return loader")
	}
	if !loader.applyEnvOverrides {
		t.Error("WithEnvOverrides() should enable env overrides")
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amorsize.yaml")
	content := "sample_size: 8\nuse_cache: true\ntarget_chunk_duration: 150ms\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.SampleSize != 8 {
		t.Errorf("SampleSize = %d, expected 8", cfg.SampleSize)
	}
	if cfg.TargetChunkDuration != 150*time.Millisecond {
		t.Errorf("TargetChunkDuration = %v, expected 150ms", cfg.TargetChunkDuration)
	}
}

func TestLoadFromFile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amorsize.json")
	content := `{"sample_size": 12, "use_cache": false}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.SampleSize != 12 {
		t.Errorf("SampleSize = %d, expected 12", cfg.SampleSize)
	}
	if cfg.UseCache {
		t.Error("UseCache should be false")
	}
}

func TestLoadFromFile_MissingFileReturnsError(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/amorsize.yaml")
	if err == nil {
		t.Error("LoadFromFile() should error on a missing file")
	}
}

func TestLoadFromFile_UnsupportedExtensionReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amorsize.toml")
	if err := os.WriteFile(path, []byte("sample_size = 5"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	// .toml falls through LoadFromFile's extension switch to the yaml
	// parser, which will fail on non-YAML syntax rather than silently
	// succeed; this exercises that failure path.
	if _, err := LoadFromFile(path); err == nil {
		t.Error("LoadFromFile() should error parsing a .toml file as YAML")
	}
}

func TestLoadFromFileWithEnv_OverridesSampleSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amorsize.yaml")
	if err := os.WriteFile(path, []byte("sample_size: 5\n"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	t.Setenv(EnvPrefix+"_SAMPLE_SIZE", "20")

	cfg, err := LoadFromFileWithEnv(path)
	if err != nil {
		t.Fatalf("LoadFromFileWithEnv() error = %v", err)
	}
	if cfg.SampleSize != 20 {
		t.Errorf("SampleSize = %d, expected env override of 20", cfg.SampleSize)
	}
}

func TestLoadFromFileWithEnv_OverridesCacheDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amorsize.yaml")
	if err := os.WriteFile(path, []byte("sample_size: 5\n"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	t.Setenv(EnvPrefix+"_CACHE_DIR", "/tmp/amorsize-override")

	cfg, err := LoadFromFileWithEnv(path)
	if err != nil {
		t.Fatalf("LoadFromFileWithEnv() error = %v", err)
	}
	if cfg.CacheDir != "/tmp/amorsize-override" {
		t.Errorf("CacheDir = %q, expected env override", cfg.CacheDir)
	}
}

func TestLoadFromBytes_InvalidSampleSizeFailsValidation(t *testing.T) {
	_, err := LoadFromBytes([]byte("sample_size: -1\n"), "yaml")
	if err == nil {
		t.Error("LoadFromBytes() should reject an invalid sample_size")
	}
}
