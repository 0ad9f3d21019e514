// Package logging provides structured logging for weaver using zerolog.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

type ctxKey struct{}

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level (trace, debug, info, warn, error, off).
	Level string

	// Format is json or console.
	Format string

	// Output is where logs are written (defaults to stderr).
	Output io.Writer

	// File, when set, receives logs instead of Output. It is appended to.
	File string

	// NoColor disables ANSI colors in console output.
	NoColor bool

	// EnableCaller adds caller information to logs.
	EnableCaller bool
}

// DefaultConfig keeps the CLI quiet unless something goes wrong.
func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: "console",
		Output: os.Stderr,
	}
}

// Init replaces the global logger. It ignores Config.File; use Setup for
// file output.
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	Logger = newLogger(cfg, out)
}

// Setup replaces the global logger, opening Config.File when set. The
// returned function closes the file and is never nil.
func Setup(cfg Config) (func() error, error) {
	if cfg.File == "" {
		Init(cfg)
		return func() error { return nil }, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	cfg.NoColor = true
	Logger = newLogger(cfg, f)
	return f.Close, nil
}

func newLogger(cfg Config, out io.Writer) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: cfg.NoColor}
	}

	lc := zerolog.New(out).With().Timestamp()
	if cfg.EnableCaller {
		lc = lc.Caller()
	}
	return lc.Logger()
}

// parseLevel falls back to info for names zerolog does not know.
func parseLevel(level string) zerolog.Level {
	switch name := strings.ToLower(strings.TrimSpace(level)); name {
	case "warning":
		return zerolog.WarnLevel
	case "off":
		return zerolog.Disabled
	default:
		lvl, err := zerolog.ParseLevel(name)
		if err != nil || name == "" {
			return zerolog.InfoLevel
		}
		return lvl
	}
}

// WithContext returns a new context carrying logger.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored by WithContext, or the global logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return logger
	}
	return Logger
}

// Component tags the global logger with a subsystem name.
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// WithFile tags the global logger with the document being processed.
func WithFile(path string) zerolog.Logger {
	return Logger.With().Str("file", path).Logger()
}

func init() {
	Init(DefaultConfig())
}
