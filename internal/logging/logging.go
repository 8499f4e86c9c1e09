package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a production-ready structured logger configured for JSON output.
// An empty level means info.
func New(level string) (*zap.Logger, error) {
	return build(level)
}

// NewCLI creates a logger for command line tools. Output goes to stderr, as
// with New, and stack traces are kept only for fatal entries.
func NewCLI(level string) (*zap.Logger, error) {
	logger, err := build(level)
	if err != nil {
		return nil, err
	}
	return logger.WithOptions(zap.AddStacktrace(zapcore.FatalLevel)), nil
}

func build(level string) (*zap.Logger, error) {
	atom := zap.NewAtomicLevel()
	if level != "" {
		if err := atom.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = atom
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.DisableStacktrace = false

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
