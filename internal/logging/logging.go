// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging holds the process-wide zap logger. Log output goes to
// stderr so it never mixes with formatted results on stdout.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	global *zap.Logger
)

// Level returns the log level name for the verbose flag.
func Level(verbose bool) string {
	if verbose {
		return "debug"
	}
	return "warn"
}

// Init builds the global logger at the given level ("debug", "info",
// "warn", "error"). Development mode uses the console encoder.
func Init(level string, development bool) error {
	cfg, err := newConfig(level, development)
	if err != nil {
		return err
	}
	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	global = logger
	mu.Unlock()
	return nil
}

// newConfig returns the logger configuration. Stack traces are attached
// only at debug level.
func newConfig(level string, development bool) (zap.Config, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return zap.Config{}, err
	}

	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.DisableStacktrace = zapLevel > zapcore.DebugLevel
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg, nil
}

// Get returns the global logger, or a no-op logger before Init.
func Get() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		return zap.NewNop()
	}
	return global
}

// Sync flushes buffered log entries.
func Sync() error {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		return global.Sync()
	}
	return nil
}
