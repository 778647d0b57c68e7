package runner

import (
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/timing"
)

// Config describes one benchmarking session: the timing policy plus the
// problem shapes to sweep.
type Config struct {
	Timing timing.Config `json:"timing"`

	// Problem shape.
	M     int `json:"m"`
	N     int `json:"n"`
	K     int `json:"k"`
	Batch int `json:"batch"`

	// GroupCount > 1 additionally measures a grouped batch of that many
	// copies of the shape, exercising the grouped problem variant.
	GroupCount int `json:"group_count"`

	// FlushTimeUs overrides the measured flush/launch overhead when >= 0;
	// a negative value asks the runner to measure it at startup.
	FlushTimeUs float64 `json:"flush_time_us"`

	// OutPrefix, when set, triggers CSV/JSON report export after the run.
	OutPrefix string `json:"out_prefix,omitempty"`
}

// DefaultConfig is a small, fast-to-measure session.
func DefaultConfig() Config {
	return Config{
		Timing:      timing.DefaultConfig(),
		M:           512,
		N:           512,
		K:           512,
		Batch:       1,
		FlushTimeUs: -1,
	}
}
