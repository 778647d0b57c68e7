// Package cli runs a benchmarking session headless: progress on one line,
// a summary table at the end, optional report export and history save.
package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chiranjeevipattigidi/hipBLASLt/internal/device"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/report"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/runner"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/storage"
	"github.com/chiranjeevipattigidi/hipBLASLt/pkg/logutil"
)

// Start runs the session and blocks until it finishes.
func Start(ctx context.Context, cfg runner.Config) error {
	dev := device.Detect()
	defer dev.Close()

	printHeader(cfg, dev.Properties())

	updates := make(report.UpdateChan, 100)
	r := runner.NewRunner(cfg, dev, updates)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- r.Run(runCtx)
	}()

	var last report.Snapshot
	start := time.Now()

	for {
		select {
		case snap := <-updates:
			last = snap
			pct := 0.0
			if snap.SolutionsTotal > 0 {
				pct = float64(snap.SolutionsDone) / float64(snap.SolutionsTotal)
			}
			fmt.Printf("\r%s %3.0f%% | run %d/%d | %-24s %10.1f GFLOPS | %8.1f us/enq",
				progressBar(pct, 20), pct*100,
				snap.BenchmarkRun, snap.TotalRuns,
				snap.Problem+"/"+snap.Solution,
				snap.GFlops, snap.TimePerEnqueueUs,
			)
		case err := <-errc:
			if err != nil {
				fmt.Println()
				return err
			}
			printSummary(r, last, time.Since(start))
			handleReports(r, cfg)
			saveHistory(r, cfg, last.TotalDeviceTime)
			return nil
		}
	}
}

func printHeader(cfg runner.Config, props device.Properties) {
	fmt.Printf("\nBENCHMARKING CONTRACTION KERNELS\n")
	fmt.Printf("======================================================================\n")
	fmt.Printf("Device          : %s (%d CUs)\n", props.Name, props.ComputeUnits)
	fmt.Printf("Problem         : %dx%dx%d batch %d\n", cfg.M, cfg.N, cfg.K, max(cfg.Batch, 1))
	if cfg.GroupCount > 1 {
		fmt.Printf("Grouped variant : %d members\n", cfg.GroupCount)
	}
	fmt.Printf("Warmups         : %d (sync after: %v)\n", cfg.Timing.NumWarmups, cfg.Timing.SyncAfterWarmups)
	fmt.Printf("Benchmark runs  : %d\n", cfg.Timing.NumBenchmarks)
	fmt.Printf("Enqueues/sync   : %d..%d (min FLOPs %s)\n",
		cfg.Timing.NumEnqueuesPerSync, cfg.Timing.MaxEnqueuesPerSync,
		humanize.Comma(int64(cfg.Timing.MinFlopsPerSync)))
	fmt.Printf("Syncs/benchmark : %d\n", cfg.Timing.NumSyncsPerBenchmark)
	timer := "host"
	if cfg.Timing.UseGPUTimer {
		timer = "device events"
	}
	fmt.Printf("Timer           : %s\n", timer)
	fmt.Printf("======================================================================\n\n")
}

func progressBar(pct float64, width int) string {
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("-", width-filled) + "]"
}

func printSummary(r *runner.Runner, last report.Snapshot, wall time.Duration) {
	results := r.SnapshotResults()

	fmt.Printf("\n\nRESULTS\n")
	fmt.Printf("======================================================================\n")
	fmt.Printf("Wall time       : %s\n", wall.Round(time.Millisecond))
	fmt.Printf("Device time     : %s\n", last.TotalDeviceTime.Round(time.Microsecond))
	fmt.Printf("Flush overhead  : %.2f us/enqueue\n", r.FlushTimeUs)
	fmt.Printf("Solutions       : %d\n\n", len(results))

	sorted := append([]report.SolutionResult(nil), results...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].GFlops() > sorted[j].GFlops()
	})

	fmt.Printf("%-22s %-22s %12s %12s %10s\n",
		"PROBLEM", "SOLUTION", "TIME (us)", "GFLOPS", "GF/CU")
	for _, res := range sorted {
		fmt.Printf("%-22s %-22s %12.2f %12.1f %10.2f\n",
			res.Problem, res.Solution,
			res.TimeUs(), res.GFlops(),
			res.Metrics[report.SpeedGFlopsPerCu])
	}

	if best := report.Best(results); best != nil {
		read := best.Metrics[report.MemReadBytes]
		write := best.Metrics[report.MemWriteBytes]
		fmt.Printf("\nBest: %s on %s (%.1f GFLOPS, reads %s, writes %s)\n",
			best.Solution, best.Problem, best.GFlops(),
			humanize.Bytes(uint64(read)), humanize.Bytes(uint64(write)))
	}

	fmt.Printf("\nTime-per-enqueue distribution (us): P50 %d | P99 %d | Max %d\n",
		r.Metrics.Times.ValueAtQuantile(50),
		r.Metrics.Times.ValueAtQuantile(99),
		r.Metrics.Times.Max())
	fmt.Printf("======================================================================\n")
}

func handleReports(r *runner.Runner, cfg runner.Config) {
	if cfg.OutPrefix == "" {
		return
	}
	results := r.SnapshotResults()
	if len(results) == 0 {
		return
	}

	fmt.Printf("\nWriting reports with prefix: %s\n", cfg.OutPrefix)
	report.ExportCSV(results, cfg.OutPrefix+".csv")
	report.ExportJSON(results, cfg.OutPrefix+".json")
	report.ExportSummary(results, cfg.OutPrefix)
	fmt.Printf("Reports saved to %s.{csv,json,_summary.json}\n", cfg.OutPrefix)
}

func saveHistory(r *runner.Runner, cfg runner.Config, deviceTime time.Duration) {
	logger := logutil.GetLogger()

	store, err := storage.NewStore()
	if err != nil {
		logger.Warn("history store unavailable", zap.Error(err))
		return
	}
	defer store.Close()

	results := r.SnapshotResults()
	rec := storage.RunRecord{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Config:    cfg,
		Results:   results,
		Summary:   storage.Summarize(results, deviceTime),
	}
	if err := store.Save(rec); err != nil {
		logger.Warn("failed to save run history", zap.Error(err))
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
