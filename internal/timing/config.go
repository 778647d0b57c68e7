package timing

import "github.com/pkg/errors"

// Config is the immutable timing policy, parsed once at construction and
// read-only afterwards.
type Config struct {
	// NumWarmups is the minimum number of untimed launches per solution.
	NumWarmups int `json:"num_warmups"`

	// SyncAfterWarmups waits for the last warmup to complete before timed
	// measurement begins, so cache state and clock boost are realized.
	SyncAfterWarmups bool `json:"sync_after_warmups"`

	// NumBenchmarks is the number of full benchmark runs over all problems.
	NumBenchmarks int `json:"num_benchmarks"`

	// NumEnqueuesPerSync is the floor on launches batched between
	// synchronization points.
	NumEnqueuesPerSync int `json:"num_enqueues_per_sync"`

	// MaxEnqueuesPerSync caps the batch regardless of the FLOP threshold.
	MaxEnqueuesPerSync int `json:"max_enqueues_per_sync"`

	// MinFlopsPerSync, when > 0, grows the batch until a sync window holds
	// at least this much computational work.
	MinFlopsPerSync uint64 `json:"min_flops_per_sync"`

	// NumSyncsPerBenchmark is the number of sync batches per solution.
	NumSyncsPerBenchmark int `json:"num_syncs_per_benchmark"`

	// UseGPUTimer selects device-side event timing over host wall clock.
	UseGPUTimer bool `json:"use_gpu_timer"`

	// SleepPercent blocks after each measured batch for elapsed*pct/100,
	// a throttle against thermal skew in subsequent measurements.
	SleepPercent int `json:"sleep_percent"`
}

// DefaultConfig mirrors the stock client options.
func DefaultConfig() Config {
	return Config{
		NumWarmups:           2,
		SyncAfterWarmups:     true,
		NumBenchmarks:        1,
		NumEnqueuesPerSync:   10,
		MaxEnqueuesPerSync:   1000,
		NumSyncsPerBenchmark: 4,
		UseGPUTimer:          true,
	}
}

func (c Config) validate() error {
	if c.NumWarmups < 0 {
		return errors.Errorf("timing config: num-warmups %d must be >= 0", c.NumWarmups)
	}
	if c.NumBenchmarks <= 0 {
		return errors.Errorf("timing config: num-benchmarks %d must be > 0", c.NumBenchmarks)
	}
	if c.NumEnqueuesPerSync <= 0 {
		return errors.Errorf("timing config: num-enqueues-per-sync %d must be > 0", c.NumEnqueuesPerSync)
	}
	if c.MaxEnqueuesPerSync < c.NumEnqueuesPerSync {
		return errors.Errorf("timing config: max-enqueues-per-sync %d below num-enqueues-per-sync %d",
			c.MaxEnqueuesPerSync, c.NumEnqueuesPerSync)
	}
	if c.NumSyncsPerBenchmark <= 0 {
		return errors.Errorf("timing config: num-syncs-per-benchmark %d must be > 0", c.NumSyncsPerBenchmark)
	}
	if c.SleepPercent < 0 {
		return errors.Errorf("timing config: sleep-percent %d must be >= 0", c.SleepPercent)
	}
	return nil
}
