package timing

import "github.com/pkg/errors"

// phase names the controller's position in the benchmark call sequence. The
// runner must call hooks in strict nested order; anything else is a
// contract violation, not a recoverable condition.
type phase int

const (
	phaseIdle phase = iota
	phaseInBenchmarkRun
	phaseInProblem
	phaseInSolution
	phaseInWarmup
	phaseInSyncBatch
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "Idle"
	case phaseInBenchmarkRun:
		return "InBenchmarkRun"
	case phaseInProblem:
		return "InProblem"
	case phaseInSolution:
		return "InSolution"
	case phaseInWarmup:
		return "InWarmup"
	case phaseInSyncBatch:
		return "InSyncBatch"
	default:
		return "Unknown"
	}
}

// transition moves the controller from one named phase to another, rejecting
// out-of-order hook calls.
func (t *BenchmarkTimer) transition(hook string, from, to phase) error {
	if t.phase != from {
		return errors.Errorf("benchmark timer: %s called in phase %s, want %s",
			hook, t.phase, from)
	}
	t.phase = to
	return nil
}

// require checks the current phase without moving.
func (t *BenchmarkTimer) require(hook string, want phase) error {
	if t.phase != want {
		return errors.Errorf("benchmark timer: %s called in phase %s, want %s",
			hook, t.phase, want)
	}
	return nil
}
