package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/amorsize/amorsize/internal/amerrors"
	"gopkg.in/yaml.v3"
)

// MergeStrategy controls how Import reconciles incoming entries
// against entries already on disk.
type MergeStrategy string

const (
	MergeSkip      MergeStrategy = "skip"
	MergeOverwrite MergeStrategy = "overwrite"
	MergeUpdate    MergeStrategy = "update" // overwrite only if incoming is newer
)

// exportEnvelope is the on-disk shape of an exported cache bundle.
type exportEnvelope struct {
	Version          int     `yaml:"version"`
	ExportTimestamp  string  `yaml:"export_timestamp"`
	ExportSystem     string  `yaml:"export_system"`
	Entries          []Entry `yaml:"entries"`
}

// Export writes every valid entry in the store to path as YAML.
func (s *Store) Export(path string, exportSystem string) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, amerrors.WrapWithType(amerrors.ComponentCache, "export-list", amerrors.ErrorTypeCache, err)
	}

	envelope := exportEnvelope{
		Version:         SchemaVersion,
		ExportTimestamp: time.Now().UTC().Format(time.RFC3339),
		ExportSystem:    exportSystem,
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		if entry.SchemaVersion != SchemaVersion || time.Since(entry.CreatedAt) > s.ttl {
			continue
		}
		envelope.Entries = append(envelope.Entries, entry)
	}

	data, err := yaml.Marshal(envelope)
	if err != nil {
		return 0, amerrors.WrapWithType(amerrors.ComponentCache, "export-marshal", amerrors.ErrorTypeCache, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, amerrors.WrapWithType(amerrors.ComponentCache, "export-write", amerrors.ErrorTypeCache, err)
	}

	return len(envelope.Entries), nil
}

// Import loads an exported bundle from path and merges it into the
// store per strategy.
func (s *Store) Import(path string, strategy MergeStrategy) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, amerrors.WrapWithType(amerrors.ComponentCache, "import-read", amerrors.ErrorTypeCache, err)
	}

	var envelope exportEnvelope
	if err := yaml.Unmarshal(data, &envelope); err != nil {
		return 0, amerrors.WrapWithType(amerrors.ComponentCache, "import-unmarshal", amerrors.ErrorTypeCache, err)
	}

	imported := 0
	for _, entry := range envelope.Entries {
		existing, reason, _ := s.Load(entry.CacheKey)

		switch strategy {
		case MergeSkip:
			if reason == MissNone && existing != nil {
				continue
			}
		case MergeUpdate:
			if reason == MissNone && existing != nil && !entry.CreatedAt.After(existing.CreatedAt) {
				continue
			}
		case MergeOverwrite:
			// always proceed
		}

		if err := s.Save(entry); err == nil {
			imported++
		}
	}

	return imported, nil
}
