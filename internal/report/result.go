package report

import "time"

// SolutionResult freezes one measured problem/solution pair.
type SolutionResult struct {
	Problem   string                `json:"problem"`
	Solution  string                `json:"solution"`
	Benchmark int                   `json:"benchmark"`
	Timestamp time.Time             `json:"timestamp"`
	Metrics   map[ResultKey]float64 `json:"metrics"`
}

// TimeUs is the measured time per enqueue in microseconds.
func (r SolutionResult) TimeUs() float64 { return r.Metrics[TimeUS] }

// GFlops is the measured throughput.
func (r SolutionResult) GFlops() float64 { return r.Metrics[SpeedGFlops] }

// Best returns the result with the highest GFLOPS, or nil when empty.
func Best(results []SolutionResult) *SolutionResult {
	var best *SolutionResult
	for i := range results {
		if best == nil || results[i].GFlops() > best.GFlops() {
			best = &results[i]
		}
	}
	return best
}

// Snapshot is pushed over the update channel while a run is in flight, for
// the live TUI and headless monitor. Values are pre-extracted so receivers
// never touch shared state.
type Snapshot struct {
	BenchmarkRun   int
	TotalRuns      int
	Problem        string
	Solution       string
	SolutionsDone  int
	SolutionsTotal int

	TimePerEnqueueUs float64
	GFlops           float64
	GFlopsPerCu      float64

	P50TimeUs float64
	P99TimeUs float64
	MaxTimeUs float64

	TotalDeviceTime time.Duration
}

// UpdateChan carries run-progress snapshots. Senders must not block: drop
// updates when the receiver lags.
type UpdateChan chan Snapshot
