// Package logutil bootstraps the process-wide structured logger.
package logutil

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	once   sync.Once
)

// InitLogger configures the global logger. Verbose enables debug-level
// metric tracing.
func InitLogger(verbose bool) {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := cfg.Build()
		if err != nil {
			l = zap.NewNop()
		}
		logger = l
	})
}

// GetLogger returns the global logger, initializing a default one if
// InitLogger was never called.
func GetLogger() *zap.Logger {
	if logger == nil {
		InitLogger(false)
	}
	return logger
}
