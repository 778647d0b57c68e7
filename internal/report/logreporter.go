package report

import (
	"go.uber.org/zap"
)

// LogReporter writes every metric to a structured logger at debug level.
// Useful for tracing a run without attaching the TUI.
type LogReporter struct {
	logger *zap.Logger
}

// NewLogReporter wraps a zap logger as a Reporter.
func NewLogReporter(logger *zap.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report implements Reporter.
func (r *LogReporter) Report(key ResultKey, value float64) {
	r.logger.Debug("metric reported",
		zap.String("key", string(key)),
		zap.Float64("value", value))
}
