// Package logging builds the application zap logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the log level and an optional log file.
type Options struct {
	Level string
	File  string
	Dir   string
}

// New builds a production logger. Relative log files are placed under Dir.
func New(options Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if options.Level != "" {
		if err := level.UnmarshalText([]byte(options.Level)); err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", options.Level, err)
		}
	}
	config.Level = zap.NewAtomicLevelAt(level)
	if level == zapcore.DebugLevel {
		config.Development = true
	}

	if options.File != "" {
		path := options.File
		if !filepath.IsAbs(path) && options.Dir != "" {
			path = filepath.Join(options.Dir, path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		config.OutputPaths = []string{path}
		config.ErrorOutputPaths = []string{path}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
