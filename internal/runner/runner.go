// Package runner drives the benchmark timing controller through its fixed
// phase sequence over every problem/solution pair, launching kernels on a
// device stream and feeding timing events back into the controller. The
// controller measures; the runner owns everything else.
package runner

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chiranjeevipattigidi/hipBLASLt/internal/contraction"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/device"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/kernels"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/projection"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/report"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/timing"
	"github.com/chiranjeevipattigidi/hipBLASLt/pkg/logutil"
)

const flushIters = 64

// Runner owns one benchmarking session: device, controller, metrics and
// collected results.
type Runner struct {
	Cfg Config
	Dev *device.Device

	Metrics *report.Metrics
	Results []report.SolutionResult
	mu      sync.Mutex

	// Updates receives progress snapshots; sends never block.
	Updates report.UpdateChan

	FlushTimeUs float64

	logger *zap.Logger
}

// NewRunner builds a session against the given device. A nil device detects
// the host.
func NewRunner(cfg Config, dev *device.Device, updates report.UpdateChan) *Runner {
	if dev == nil {
		dev = device.Detect()
	}
	if updates == nil {
		updates = make(report.UpdateChan, 10)
	}
	return &Runner{
		Cfg:     cfg,
		Dev:     dev,
		Metrics: report.NewMetrics(),
		Updates: updates,
		logger:  logutil.GetLogger(),
	}
}

// Run executes the whole session. The controller has no cancellation; the
// context is only consulted between solutions, so an in-flight batch always
// completes before the runner stops.
func (r *Runner) Run(ctx context.Context) error {
	problems, err := r.buildProblems()
	if err != nil {
		return err
	}
	solutions := contraction.DefaultSolutions()
	stream := r.Dev.NewStream()

	r.FlushTimeUs = r.Cfg.FlushTimeUs
	if r.FlushTimeUs < 0 {
		r.FlushTimeUs = measureFlushTime(r.Dev, stream)
	}
	r.logger.Info("flush overhead",
		zap.Float64("flush_time_us", r.FlushTimeUs))

	timer, err := timing.NewBenchmarkTimer(
		r.Cfg.Timing,
		r.Dev,
		projection.NewAnalyticalModel(),
		report.Multi{r.Metrics, report.NewLogReporter(r.logger)},
		r.FlushTimeUs,
	)
	if err != nil {
		return err
	}

	inputs := make(map[contraction.Problem]*contraction.Inputs, len(problems))
	for _, p := range problems {
		inputs[p] = contraction.NewInputs(p)
	}

	solutionsTotal := len(problems) * len(solutions) * r.Cfg.Timing.NumBenchmarks
	solutionsDone := 0

	for timer.NeedMoreBenchmarkRuns() {
		if ctx.Err() != nil {
			break
		}
		if err := timer.PreBenchmarkRun(); err != nil {
			return err
		}

		for _, prb := range problems {
			if err := timer.PreProblem(prb); err != nil {
				return err
			}

			for _, sol := range solutions {
				if ctx.Err() != nil {
					break
				}
				if err := r.runSolution(timer, stream, prb, inputs[prb], sol); err != nil {
					return err
				}
				solutionsDone++
				r.collect(timer, prb, sol, solutionsDone, solutionsTotal)
			}

			if err := timer.PostProblem(); err != nil {
				return err
			}
		}

		if err := timer.PostBenchmarkRun(); err != nil {
			return err
		}
	}

	if err := timer.FinalizeReport(); err != nil {
		return err
	}
	return ctx.Err()
}

// runSolution measures one problem/solution pair: warmups, then sync
// batches until the controller's enqueue target is met.
func (r *Runner) runSolution(
	timer *timing.BenchmarkTimer,
	stream *device.Stream,
	prb contraction.Problem,
	in *contraction.Inputs,
	sol contraction.Solution,
) error {
	r.logger.Info("benchmarking solution",
		zap.String("problem", prb.String()),
		zap.String("solution", sol.String()))

	if err := timer.PreSolution(sol); err != nil {
		return err
	}

	warmups := timer.NumWarmupRuns()
	if err := timer.SetNumWarmupRuns(warmups); err != nil {
		return err
	}
	if err := timer.PreWarmup(); err != nil {
		return err
	}
	wStart, wStop := enqueueBatch(stream, prb, in, sol, warmups)
	if err := timer.PostWarmup(); err != nil {
		return err
	}
	if err := timer.ValidateWarmups(in, wStart, wStop); err != nil {
		return err
	}

	timer.SetNumSyncs(timer.NumSyncs())
	if err := timer.PreSyncs(); err != nil {
		return err
	}

	for timer.NeedMoreRunsInSolution() {
		n := timer.NumEnqueuesPerSync()
		timer.SetNumEnqueuesPerSync(n)

		if err := timer.PreEnqueues(stream); err != nil {
			return err
		}
		startEvs, stopEvs := enqueueBatch(stream, prb, in, sol, n)
		if err := timer.PostEnqueues(startEvs, stopEvs, stream); err != nil {
			return err
		}
		if err := timer.ValidateEnqueues(in, startEvs, stopEvs); err != nil {
			return err
		}
	}

	if err := timer.PostSyncs(); err != nil {
		return err
	}
	return timer.PostSolution()
}

// enqueueBatch issues n launches of the problem on the stream, recording a
// start marker before and a stop marker after each member launch. The
// returned event lists are ordered per enqueue, inner lists in member order.
func enqueueBatch(
	stream *device.Stream,
	prb contraction.Problem,
	in *contraction.Inputs,
	sol contraction.Solution,
	n int,
) (timing.TimingEvents, timing.TimingEvents) {
	startEvents := make(timing.TimingEvents, 0, n)
	stopEvents := make(timing.TimingEvents, 0, n)

	for i := 0; i < n; i++ {
		var starts, stops []*device.Event

		enqueueMember := func(g *contraction.GemmProblem, ops *contraction.Operands) {
			se := device.NewEvent()
			se.Record(stream)
			kernels.EnqueueGemm(stream, g, ops, sol)
			pe := device.NewEvent()
			pe.Record(stream)
			starts = append(starts, se)
			stops = append(stops, pe)
		}

		if grouped, ok := prb.(*contraction.GroupedProblem); ok {
			for j := range grouped.Gemms {
				enqueueMember(&grouped.Gemms[j], &in.Operands[j])
			}
		} else {
			enqueueMember(prb.Representative(), &in.Operands[0])
		}

		startEvents = append(startEvents, starts)
		stopEvents = append(stopEvents, stops)
	}
	return startEvents, stopEvents
}

// collect freezes the just-measured solution's metrics and pushes a
// progress snapshot. Sends never block; the UI acts as backpressure.
func (r *Runner) collect(
	timer *timing.BenchmarkTimer,
	prb contraction.Problem,
	sol contraction.Solution,
	done, total int,
) {
	metrics := r.Metrics.Snapshot()

	res := report.SolutionResult{
		Problem:   prb.String(),
		Solution:  sol.String(),
		Benchmark: timer.NumBenchmarksRun(),
		Timestamp: time.Now(),
		Metrics:   metrics,
	}

	r.mu.Lock()
	r.Results = append(r.Results, res)
	r.mu.Unlock()

	snap := report.Snapshot{
		BenchmarkRun:     timer.NumBenchmarksRun() + 1,
		TotalRuns:        r.Cfg.Timing.NumBenchmarks,
		Problem:          prb.String(),
		Solution:         sol.String(),
		SolutionsDone:    done,
		SolutionsTotal:   total,
		TimePerEnqueueUs: metrics[report.TimeUS],
		GFlops:           metrics[report.SpeedGFlops],
		GFlopsPerCu:      metrics[report.SpeedGFlopsPerCu],
		P50TimeUs:        float64(r.Metrics.Times.ValueAtQuantile(50)),
		P99TimeUs:        float64(r.Metrics.Times.ValueAtQuantile(99)),
		MaxTimeUs:        float64(r.Metrics.Times.Max()),
		TotalDeviceTime:  timer.TotalDeviceTime(),
	}

	select {
	case r.Updates <- snap:
	default:
	}
}

// buildProblems assembles the problem sweep from the config: the single
// shape, plus a grouped variant when requested.
func (r *Runner) buildProblems() ([]contraction.Problem, error) {
	single, err := contraction.NewGemmProblem(r.Cfg.M, r.Cfg.N, r.Cfg.K, r.Cfg.Batch)
	if err != nil {
		return nil, err
	}
	problems := []contraction.Problem{single}

	if r.Cfg.GroupCount > 1 {
		gemms := make([]contraction.GemmProblem, r.Cfg.GroupCount)
		for i := range gemms {
			gemms[i] = *single
		}
		grouped, err := contraction.NewGroupedProblem(gemms)
		if err != nil {
			return nil, err
		}
		problems = append(problems, grouped)
	}
	return problems, nil
}

// SnapshotResults returns a copy of the results collected so far.
func (r *Runner) SnapshotResults() []report.SolutionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]report.SolutionResult, len(r.Results))
	copy(out, r.Results)
	return out
}

// measureFlushTime times a burst of trivial launches with the host clock
// and attributes the average to per-enqueue launch overhead.
func measureFlushTime(dev *device.Device, stream *device.Stream) float64 {
	scratch := make([]float32, 64*1024)

	dev.Synchronize()
	start := time.Now()
	for i := 0; i < flushIters; i++ {
		kernels.EnqueueFlush(stream, scratch)
	}
	dev.Synchronize()
	elapsed := time.Since(start)

	return float64(elapsed) / float64(time.Microsecond) / float64(flushIters)
}
