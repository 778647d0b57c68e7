// Package timing implements the benchmark timing controller: a phase-driven
// state machine that measures repeated kernel launches around an opaque
// launch action performed by an external runner, amortizes launch overhead
// across batches of enqueues, and converts elapsed time into normalized
// performance metrics against an analytical projection model.
package timing

import (
	"time"

	"github.com/pkg/errors"

	"github.com/chiranjeevipattigidi/hipBLASLt/internal/contraction"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/device"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/projection"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/report"
)

// BenchmarkTimer owns all mutable timing and counter state for one
// benchmarking session. It is not thread-safe: a single logical thread of
// control drives it through the fixed call sequence
//
//	PreBenchmarkRun
//	  PreProblem
//	    PreSolution
//	      SetNumWarmupRuns / PreWarmup / PostWarmup / ValidateWarmups
//	      SetNumSyncs / PreSyncs
//	        { SetNumEnqueuesPerSync / PreEnqueues / PostEnqueues / ValidateEnqueues }*
//	      PostSyncs
//	    PostSolution
//	  PostProblem
//	PostBenchmarkRun
//	FinalizeReport
//
// and out-of-order calls are rejected.
type BenchmarkTimer struct {
	cfg         Config
	hardware    device.Properties
	flushTimeUs float64

	model    projection.Model
	reporter report.Reporter

	phase phase
	meter meter

	enqueuesPerSolution int
	numBenchmarksRun    int

	problem  contraction.Problem
	solution contraction.Solution

	numEnqueuesInSolution int
	numSyncsInBenchmark   int
	curNumEnqueuesPerSync int

	timeInSolution  time.Duration
	totalDeviceTime time.Duration
}

// NewBenchmarkTimer validates the configuration and builds a controller.
// flushTimeUs is the measured constant overhead subtracted from every
// time-per-enqueue sample. Configuration errors surface here, never later.
func NewBenchmarkTimer(
	cfg Config,
	dev *device.Device,
	model projection.Model,
	reporter report.Reporter,
	flushTimeUs float64,
) (*BenchmarkTimer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, errors.New("benchmark timer: device is required")
	}
	if model == nil {
		return nil, errors.New("benchmark timer: projection model is required")
	}
	if reporter == nil {
		return nil, errors.New("benchmark timer: reporter is required")
	}
	if flushTimeUs < 0 {
		return nil, errors.Errorf("benchmark timer: flush time %g must be >= 0", flushTimeUs)
	}

	t := &BenchmarkTimer{
		cfg:                 cfg,
		hardware:            dev.Properties(),
		flushTimeUs:         flushTimeUs,
		model:               model,
		reporter:            reporter,
		enqueuesPerSolution: cfg.NumEnqueuesPerSync * cfg.NumSyncsPerBenchmark,
	}
	if cfg.UseGPUTimer {
		t.meter = &deviceMeter{}
	} else {
		t.meter = &hostMeter{dev: dev}
	}
	return t, nil
}

// NeedMoreBenchmarkRuns reports whether another full run remains.
func (t *BenchmarkTimer) NeedMoreBenchmarkRuns() bool {
	return t.numBenchmarksRun < t.cfg.NumBenchmarks
}

// PreBenchmarkRun brackets the start of one full run over all problems.
func (t *BenchmarkTimer) PreBenchmarkRun() error {
	return t.transition("PreBenchmarkRun", phaseIdle, phaseInBenchmarkRun)
}

// PostBenchmarkRun increments the completed-run counter.
func (t *BenchmarkTimer) PostBenchmarkRun() error {
	if err := t.transition("PostBenchmarkRun", phaseInBenchmarkRun, phaseIdle); err != nil {
		return err
	}
	t.numBenchmarksRun++
	return nil
}

// PreProblem stores the problem variant about to be measured. The variant
// capability is resolved here once; phase hooks never type-test again.
func (t *BenchmarkTimer) PreProblem(problem contraction.Problem) error {
	if err := t.transition("PreProblem", phaseInBenchmarkRun, phaseInProblem); err != nil {
		return err
	}
	if problem == nil {
		return errors.New("benchmark timer: failed to resolve problem to any contraction variant")
	}
	t.problem = problem
	return nil
}

// PostProblem is a no-op bracket kept for symmetry.
func (t *BenchmarkTimer) PostProblem() error {
	return t.transition("PostProblem", phaseInProblem, phaseInBenchmarkRun)
}

// PreSolution resets solution-scoped state, stores a copy of the solution
// descriptor and reports the projected granularities and static memory model
// for the active problem.
func (t *BenchmarkTimer) PreSolution(solution contraction.Solution) error {
	if err := t.transition("PreSolution", phaseInProblem, phaseInSolution); err != nil {
		return err
	}

	t.numEnqueuesInSolution = 0
	t.timeInSolution = 0
	t.solution = solution

	rep := t.problem.Representative()
	if rep == nil {
		return errors.New("benchmark timer: failed to resolve problem to any contraction variant")
	}
	pp := t.model.Project(rep, solution, t.hardware)

	t.reporter.Report(report.Tile0Granularity, pp.Granularities.Tile0)
	t.reporter.Report(report.Tile1Granularity, pp.Granularities.Tile1)
	t.reporter.Report(report.CuGranularity, pp.Granularities.Cu)
	t.reporter.Report(report.WaveGranularity, pp.Granularities.Wave)
	t.reporter.Report(report.TotalGranularity, pp.Granularities.Total)

	t.reporter.Report(report.NumCus, float64(t.hardware.ComputeUnits))
	t.reporter.Report(report.TilesPerCu, pp.Granularities.TilesPerCu)
	t.reporter.Report(report.MemReadBytes, pp.StaticModel.MemReadBytes)
	t.reporter.Report(report.MemWriteBytes, pp.StaticModel.MemWriteBytes)
	return nil
}

// PostSolution converts the accumulated solution time into per-enqueue and
// throughput metrics, reports them, and resets the solution accumulators.
//
// Precondition: at least one enqueue batch was validated for this solution.
// Calling PostSolution with zero enqueues is a contract violation by the
// runner and yields meaningless metrics.
func (t *BenchmarkTimer) PostSolution() error {
	if err := t.transition("PostSolution", phaseInSolution, phaseInProblem); err != nil {
		return err
	}

	solutionUs := float64(t.timeInSolution) / float64(time.Microsecond)
	timePerEnqueueUs := solutionUs/float64(t.numEnqueuesInSolution) - t.flushTimeUs

	rep := t.problem.Representative()
	if rep == nil {
		return errors.New("benchmark timer: failed to resolve problem to any contraction variant")
	}
	pp := t.model.Project(rep, t.solution, t.hardware)
	flopCount := rep.FlopCount()

	gflops := flopCount / timePerEnqueueUs / 1000.0
	tiles := int(pp.Granularities.TilesPerCu * float64(t.hardware.ComputeUnits))
	usedCus := tiles
	if usedCus > t.hardware.ComputeUnits {
		usedCus = t.hardware.ComputeUnits
	}
	gflopsPerCu := gflops / float64(usedCus)

	t.reporter.Report(report.TimeUS, timePerEnqueueUs)
	t.reporter.Report(report.SpeedGFlopsPerCu, gflopsPerCu)
	t.reporter.Report(report.SpeedGFlops, gflops)

	t.timeInSolution = 0
	t.numEnqueuesInSolution = 0
	return nil
}

// NeedMoreRunsInSolution reports whether the solution has reached its
// enqueue target (enqueues-per-sync times syncs-per-benchmark).
func (t *BenchmarkTimer) NeedMoreRunsInSolution() bool {
	return t.numEnqueuesInSolution < t.enqueuesPerSolution
}

// NumWarmupRuns returns the configured warmup count.
func (t *BenchmarkTimer) NumWarmupRuns() int {
	return t.cfg.NumWarmups
}

// SetNumWarmupRuns validates the warmup count the runner actually performed.
// Reporting fewer warmups than configured is a contract violation; the
// controller never silently accepts an under-count.
func (t *BenchmarkTimer) SetNumWarmupRuns(count int) error {
	if count < t.cfg.NumWarmups {
		return errors.Errorf("expected at least %d warmup runs, got %d",
			t.cfg.NumWarmups, count)
	}
	return nil
}

// PreWarmup brackets the warmup sub-phase.
func (t *BenchmarkTimer) PreWarmup() error {
	return t.transition("PreWarmup", phaseInSolution, phaseInWarmup)
}

// PostWarmup closes the warmup sub-phase.
func (t *BenchmarkTimer) PostWarmup() error {
	return t.transition("PostWarmup", phaseInWarmup, phaseInSolution)
}

// ValidateWarmups blocks until the last warmup launch completed, when
// sync-after-warmups is configured and the runner recorded stop events.
// This guarantees cache state and clock boost are realized before timed
// measurement begins. No-op otherwise.
func (t *BenchmarkTimer) ValidateWarmups(_ *contraction.Inputs, _, stopEvents TimingEvents) error {
	if err := t.require("ValidateWarmups", phaseInSolution); err != nil {
		return err
	}
	if !t.cfg.SyncAfterWarmups {
		return nil
	}
	if len(stopEvents) == 0 {
		return nil
	}
	last := stopEvents[len(stopEvents)-1]
	if len(last) == 0 {
		return nil
	}
	return last[len(last)-1].Synchronize()
}

// NumSyncs returns the configured syncs per benchmark.
func (t *BenchmarkTimer) NumSyncs() int {
	return t.cfg.NumSyncsPerBenchmark
}

// SetNumSyncs records the actual sync count the runner performed.
func (t *BenchmarkTimer) SetNumSyncs(count int) {
	t.numSyncsInBenchmark = count
}

// PreSyncs brackets the sync-batch loop.
func (t *BenchmarkTimer) PreSyncs() error {
	return t.transition("PreSyncs", phaseInSolution, phaseInSyncBatch)
}

// PostSyncs closes the sync-batch loop.
func (t *BenchmarkTimer) PostSyncs() error {
	return t.transition("PostSyncs", phaseInSyncBatch, phaseInSolution)
}

// NumEnqueuesPerSync sizes the next enqueue batch. When a minimum-FLOP
// threshold is configured, the batch grows until one sync window holds
// enough work to amortize launch overhead, then clamps to the configured
// ceiling: clamp(max(floor, ceil(minFlops/problemFlops)), ceiling).
func (t *BenchmarkTimer) NumEnqueuesPerSync() int {
	enqueuesByFlops := 0
	if t.cfg.MinFlopsPerSync > 0 && t.problem != nil {
		flopsInProblem := uint64(t.problem.TotalFlopCount())
		if flopsInProblem > 0 {
			enqueuesByFlops = int(ceilDivide(t.cfg.MinFlopsPerSync, flopsInProblem))
		}
	}

	n := t.cfg.NumEnqueuesPerSync
	if enqueuesByFlops > n {
		n = enqueuesByFlops
	}
	if n > t.cfg.MaxEnqueuesPerSync {
		n = t.cfg.MaxEnqueuesPerSync
	}
	return n
}

// SetNumEnqueuesPerSync records the batch size the runner actually used.
func (t *BenchmarkTimer) SetNumEnqueuesPerSync(count int) {
	t.curNumEnqueuesPerSync = count
}

// PreEnqueues opens the timing bracket for one enqueue batch. The host path
// forces full device synchronization before capturing a timestamp; the
// device path records a start marker on the stream and returns immediately.
func (t *BenchmarkTimer) PreEnqueues(stream *device.Stream) error {
	if err := t.require("PreEnqueues", phaseInSyncBatch); err != nil {
		return err
	}
	return t.meter.begin(stream)
}

// PostEnqueues closes the timing bracket: the host path re-synchronizes and
// timestamps, the device path records the stop marker and waits only for it.
func (t *BenchmarkTimer) PostEnqueues(_, _ TimingEvents, stream *device.Stream) error {
	if err := t.require("PostEnqueues", phaseInSyncBatch); err != nil {
		return err
	}
	return t.meter.end(stream)
}

// ValidateEnqueues reconciles the active timer path into one elapsed time
// for the batch, accumulates it into the solution and lifetime totals,
// advances the enqueue counter by the number of start-event batches, and
// applies the configured sleep throttle.
func (t *BenchmarkTimer) ValidateEnqueues(_ *contraction.Inputs, startEvents, stopEvents TimingEvents) error {
	if err := t.require("ValidateEnqueues", phaseInSyncBatch); err != nil {
		return err
	}

	total, err := t.meter.elapsed(startEvents, stopEvents)
	if err != nil {
		return err
	}

	t.timeInSolution += total
	t.totalDeviceTime += total
	t.numEnqueuesInSolution += len(startEvents)

	if t.cfg.SleepPercent > 0 {
		time.Sleep(time.Duration(float64(total) * float64(t.cfg.SleepPercent) / 100.0))
	}
	return nil
}

// FinalizeReport is a no-op hook reserved for extension.
func (t *BenchmarkTimer) FinalizeReport() error {
	return t.require("FinalizeReport", phaseIdle)
}

// Err always reports no error: the controller has no internal error state
// machine beyond the contract violations its hooks return directly.
func (t *BenchmarkTimer) Err() error {
	return nil
}

// EnqueuesPerSolution returns the derived per-solution enqueue target.
func (t *BenchmarkTimer) EnqueuesPerSolution() int {
	return t.enqueuesPerSolution
}

// NumBenchmarksRun returns the completed-run count.
func (t *BenchmarkTimer) NumBenchmarksRun() int {
	return t.numBenchmarksRun
}

// NumEnqueuesInSolution returns the enqueues accumulated for the current
// solution.
func (t *BenchmarkTimer) NumEnqueuesInSolution() int {
	return t.numEnqueuesInSolution
}

// TimeInSolution returns the elapsed time accumulated for the current
// solution.
func (t *BenchmarkTimer) TimeInSolution() time.Duration {
	return t.timeInSolution
}

// TotalDeviceTime returns the process-lifetime accumulated device time.
func (t *BenchmarkTimer) TotalDeviceTime() time.Duration {
	return t.totalDeviceTime
}

func ceilDivide(num, den uint64) uint64 {
	return (num + den - 1) / den
}
