// Package amlog provides structured logging for amorsize's decision
// process. It wraps log/slog with level/format configuration,
// sensitive-field redaction, and component-scoped loggers.
package amlog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level represents the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Format selects the log encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// Config configures a Logger.
type Config struct {
	Level         Level
	Format        Format
	Output        io.Writer
	Component     string
	AddSource     bool
	SensitiveKeys []string
}

// DefaultConfig returns a production-ready configuration.
func DefaultConfig() Config {
	return Config{
		Level:         LevelInfo,
		Format:        FormatJSON,
		SensitiveKeys: defaultSensitiveKeys(),
	}
}

func defaultSensitiveKeys() []string {
	return []string{"token", "api_key", "apikey", "secret", "password", "authorization", "distributed_cache_url"}
}

// Logger wraps slog.Logger with component scoping and field redaction.
type Logger struct {
	slog          *slog.Logger
	component     string
	sensitiveKeys map[string]struct{}
}

// NewLogger builds a Logger from Config, defaulting Output to os.Stderr.
func NewLogger(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.SensitiveKeys == nil {
		cfg.SensitiveKeys = defaultSensitiveKeys()
	}

	opts := &slog.HandlerOptions{Level: cfg.Level.toSlogLevel(), AddSource: cfg.AddSource}

	var handler slog.Handler
	switch cfg.Format {
	case FormatText:
		handler = slog.NewTextHandler(cfg.Output, opts)
	default:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}

	sensitive := make(map[string]struct{}, len(cfg.SensitiveKeys))
	for _, k := range cfg.SensitiveKeys {
		sensitive[strings.ToLower(k)] = struct{}{}
	}

	base := slog.New(handler)
	if cfg.Component != "" {
		base = base.With("component", cfg.Component)
	}

	return &Logger{slog: base, component: cfg.Component, sensitiveKeys: sensitive}
}

// New returns a Logger with DefaultConfig.
func New() *Logger { return NewLogger(DefaultConfig()) }

// For returns a Logger scoped to the given component, using DefaultConfig.
func For(component string) *Logger {
	cfg := DefaultConfig()
	cfg.Component = component
	return NewLogger(cfg)
}

// WithComponent returns a copy of l scoped to a different component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{slog: l.slog.With("component", component), component: component, sensitiveKeys: l.sensitiveKeys}
}

// With returns a copy of l with extra fields attached to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(l.filterSensitive(args...)...), component: l.component, sensitiveKeys: l.sensitiveKeys}
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, l.filterSensitive(args...)...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, l.filterSensitive(args...)...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, l.filterSensitive(args...)...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, l.filterSensitive(args...)...) }

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slog.DebugContext(ctx, msg, l.filterSensitive(l.addContextFields(ctx, args...)...)...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slog.InfoContext(ctx, msg, l.filterSensitive(l.addContextFields(ctx, args...)...)...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slog.WarnContext(ctx, msg, l.filterSensitive(l.addContextFields(ctx, args...)...)...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slog.ErrorContext(ctx, msg, l.filterSensitive(l.addContextFields(ctx, args...)...)...)
}

func (l *Logger) filterSensitive(args ...any) []any {
	if len(l.sensitiveKeys) == 0 {
		return args
	}
	filtered := make([]any, len(args))
	copy(filtered, args)
	for i := 0; i < len(args)-1; i += 2 {
		if key, ok := args[i].(string); ok {
			if _, sensitive := l.sensitiveKeys[strings.ToLower(key)]; sensitive {
				filtered[i+1] = "[REDACTED]"
			}
		}
	}
	return filtered
}

func (l *Logger) addContextFields(ctx context.Context, args ...any) []any {
	if id := GetRequestID(ctx); id != "" {
		args = append(args, "request_id", id)
	}
	if id := GetCorrelationID(ctx); id != "" {
		args = append(args, "correlation_id", id)
	}
	return args
}
