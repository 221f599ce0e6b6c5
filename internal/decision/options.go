// Package decision implements amorsize's batch decision engine: the
// state machine that turns a dry-run sample into a recommended
// worker count and chunk size, or a documented reason to stay serial.
package decision

import (
	"time"

	"github.com/amorsize/amorsize/internal/amerrors"
)

// Options controls one Optimize call.
type Options struct {
	SampleSize                     int
	TargetChunkDuration            time.Duration
	EnableMemoryTracking           bool
	EnableFunctionProfiling        bool
	Profile                        bool
	UseCache                       bool
	AutoAdjustForNestedParallelism bool
	CacheTTL                       time.Duration
	CacheDir                       string
}

// DefaultOptions mirrors the original implementation's defaults.
func DefaultOptions() Options {
	return Options{
		SampleSize:                     5,
		TargetChunkDuration:            200 * time.Millisecond,
		EnableMemoryTracking:           true,
		UseCache:                       true,
		AutoAdjustForNestedParallelism: true,
		CacheTTL:                       0, // 0 means cache.DefaultTTL
	}
}

// Validate checks caller-supplied Options, returning a validation
// error the engine raises rather than degrades from.
func (o Options) Validate() error {
	if o.SampleSize <= 0 || o.SampleSize > 10000 {
		return amerrors.New(amerrors.ComponentDecision, "validate", amerrors.ErrorTypeValidation,
			amErr("sample_size must be in (0, 10000]"))
	}
	if o.TargetChunkDuration <= 0 || o.TargetChunkDuration > time.Hour {
		return amerrors.New(amerrors.ComponentDecision, "validate", amerrors.ErrorTypeValidation,
			amErr("target_chunk_duration must be in (0, 3600s]"))
	}
	return nil
}

type strErr string

func (e strErr) Error() string { return string(e) }
func amErr(msg string) error   { return strErr(msg) }
