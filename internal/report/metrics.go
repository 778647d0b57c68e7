package report

import "sync"

// Metrics aggregates reported values: the latest value per key plus an HDR
// histogram of per-solution timings, so the tool can show percentiles over a
// whole run. One Metrics instance spans the session; the runner snapshots it
// per solution.
type Metrics struct {
	mu     sync.Mutex
	latest map[ResultKey]float64

	// Times records every reported TimeUS sample in microseconds.
	Times *SafeHistogram
}

// NewMetrics creates an empty metrics sink.
func NewMetrics() *Metrics {
	return &Metrics{
		latest: make(map[ResultKey]float64),
		Times:  NewSafeHistogram(),
	}
}

// Report implements Reporter.
func (m *Metrics) Report(key ResultKey, value float64) {
	m.mu.Lock()
	m.latest[key] = value
	m.mu.Unlock()

	if key == TimeUS && value >= 1 {
		m.Times.RecordValue(int64(value))
	}
}

// Value returns the latest reported value for a key.
func (m *Metrics) Value(key ResultKey) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.latest[key]
	return v, ok
}

// Snapshot copies the latest value of every reported key. Called by the
// runner after PostSolution to freeze one solution's metrics.
func (m *Metrics) Snapshot() map[ResultKey]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[ResultKey]float64, len(m.latest))
	for k, v := range m.latest {
		out[k] = v
	}
	return out
}
