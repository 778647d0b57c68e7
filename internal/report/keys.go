// Package report collects benchmark metrics. The benchmarking core writes
// fire-and-forget key/value pairs into a Reporter; implementations aggregate
// them (histograms, last-value maps), log them, or fan them out.
package report

// ResultKey names one reported metric. The set is fixed; the core never
// invents keys at runtime.
type ResultKey string

const (
	Tile0Granularity ResultKey = "tile0-granularity"
	Tile1Granularity ResultKey = "tile1-granularity"
	CuGranularity    ResultKey = "cu-granularity"
	WaveGranularity  ResultKey = "wave-granularity"
	TotalGranularity ResultKey = "total-granularity"
	NumCus           ResultKey = "num-cus"
	TilesPerCu       ResultKey = "tiles-per-cu"
	MemReadBytes     ResultKey = "mem-read-bytes"
	MemWriteBytes    ResultKey = "mem-write-bytes"
	TimeUS           ResultKey = "time-us"
	SpeedGFlops      ResultKey = "gflops"
	SpeedGFlopsPerCu ResultKey = "gflops-per-cu"
)

// AllKeys lists every reportable key in export column order.
func AllKeys() []ResultKey {
	return []ResultKey{
		Tile0Granularity, Tile1Granularity, CuGranularity, WaveGranularity,
		TotalGranularity, NumCus, TilesPerCu, MemReadBytes, MemWriteBytes,
		TimeUS, SpeedGFlops, SpeedGFlopsPerCu,
	}
}

// Reporter is the write-only sink the benchmarking core emits into.
type Reporter interface {
	Report(key ResultKey, value float64)
}

// Multi fans every report out to several sinks.
type Multi []Reporter

// Report implements Reporter.
func (m Multi) Report(key ResultKey, value float64) {
	for _, r := range m {
		r.Report(key, value)
	}
}
