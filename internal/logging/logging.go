// Package logging builds the zap loggers used by the command line tools.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported encodings.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ErrUnknownFormat is returned for an encoding other than console or json.
var ErrUnknownFormat = errors.New("logging: unknown format")

// Config describes a logger.
type Config struct {
	Level  string
	Format string
	Output io.Writer
	Fields map[string]any
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig logs info and above as console text to stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: FormatConsole,
		Output: os.Stderr,
	}
}

// WithLevel sets the minimum level ("debug", "info", "warn", "error").
func WithLevel(level string) Option {
	return func(cfg *Config) {
		if level != "" {
			cfg.Level = level
		}
	}
}

// WithFormat selects console or json encoding.
func WithFormat(format string) Option {
	return func(cfg *Config) {
		if format != "" {
			cfg.Format = format
		}
	}
}

// WithOutput sets the sink.
func WithOutput(w io.Writer) Option {
	return func(cfg *Config) {
		if w != nil {
			cfg.Output = w
		}
	}
}

// WithFields attaches fields to every entry.
func WithFields(fields map[string]any) Option {
	return func(cfg *Config) {
		if cfg.Fields == nil {
			cfg.Fields = make(map[string]any, len(fields))
		}
		for k, v := range fields {
			if k != "" {
				cfg.Fields[k] = v
			}
		}
	}
}

// New builds a logger from the options.
func New(opts ...Option) (*zap.Logger, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	switch cfg.Format {
	case FormatJSON:
		enc = zapcore.NewJSONEncoder(encCfg)
	case FormatConsole:
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, cfg.Format)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(cfg.Output), level)
	logger := zap.New(core)
	if len(cfg.Fields) > 0 {
		fields := make([]zap.Field, 0, len(cfg.Fields))
		for k, v := range cfg.Fields {
			fields = append(fields, zap.Any(k, v))
		}
		logger = logger.With(fields...)
	}
	return logger, nil
}

// NewRunID returns a fresh identifier for one invocation.
func NewRunID() string {
	return uuid.NewString()
}
