package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chiranjeevipattigidi/hipBLASLt/internal/banner"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/cli"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/report"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/runner"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/storage"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/tui"
	"github.com/chiranjeevipattigidi/hipBLASLt/pkg/logutil"
)

var (
	cfgFile string
	verbose bool
	useTUI  bool

	// Problem shape flags.
	sizeM  int
	sizeN  int
	sizeK  int
	batch  int
	groups int

	// Timing policy flags, named after the stock client options.
	numWarmups           int
	syncAfterWarmups     bool
	numBenchmarks        int
	numEnqueuesPerSync   int
	maxEnqueuesPerSync   int
	minFlopsPerSync      uint64
	numSyncsPerBenchmark int
	useGPUTimer          bool
	sleepPercent         int
	flushTimeUs          float64

	outPrefix string
)

var rootCmd = &cobra.Command{
	Use:   "hipblaslt-bench",
	Short: "Benchmark tensor-contraction kernel variants",
	Long: `
hipblaslt-bench measures GEMM kernel variants against a problem shape and
reports throughput and occupancy metrics: time per enqueue, GFLOPS,
GFLOPS per compute unit and tile/wave/CU granularities.

Launches are batched between synchronization points; the batch size adapts
to a minimum-FLOP threshold so launch overhead never dominates a sample.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildConfig()
		if useTUI {
			return runTUI(cfg)
		}
		return runHeadless(cfg)
	},
}

// Execute is the entry point for the binary.
func Execute() {
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(historyCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.hipblaslt-bench.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level metric tracing")

	rootCmd.Flags().BoolVar(&useTUI, "tui", false, "interactive terminal UI")

	rootCmd.Flags().IntVarP(&sizeM, "m", "m", 512, "Problem M dimension")
	rootCmd.Flags().IntVarP(&sizeN, "n", "n", 512, "Problem N dimension")
	rootCmd.Flags().IntVarP(&sizeK, "k", "k", 512, "Problem K dimension")
	rootCmd.Flags().IntVarP(&batch, "batch", "b", 1, "Batch count")
	rootCmd.Flags().IntVar(&groups, "groups", 0, "Also measure a grouped batch of this many copies")

	rootCmd.Flags().IntVar(&numWarmups, "num-warmups", 2, "Untimed launches per solution before measuring")
	rootCmd.Flags().BoolVar(&syncAfterWarmups, "sync-after-warmups", true, "Wait for the last warmup before timing")
	rootCmd.Flags().IntVar(&numBenchmarks, "num-benchmarks", 1, "Full benchmark runs over all problems")
	rootCmd.Flags().IntVar(&numEnqueuesPerSync, "num-enqueues-per-sync", 10, "Floor on launches per sync window")
	rootCmd.Flags().IntVar(&maxEnqueuesPerSync, "max-enqueues-per-sync", 1000, "Ceiling on launches per sync window")
	rootCmd.Flags().Uint64Var(&minFlopsPerSync, "min-flops-per-sync", 0, "Minimum FLOPs per sync window (0 disables)")
	rootCmd.Flags().IntVar(&numSyncsPerBenchmark, "num-syncs-per-benchmark", 4, "Sync windows per solution")
	rootCmd.Flags().BoolVar(&useGPUTimer, "use-gpu-timer", true, "Device-event timing instead of host clock")
	rootCmd.Flags().IntVar(&sleepPercent, "sleep-percent", 0, "Throttle sleep after each batch, percent of elapsed")
	rootCmd.Flags().Float64Var(&flushTimeUs, "flush-time-us", -1, "Flush overhead override in us (negative = measure)")

	rootCmd.Flags().StringVarP(&outPrefix, "out", "o", "", "Output filename prefix for report export")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".hipblaslt-bench")
		}
	}
	viper.SetEnvPrefix("HIPBLASLT_BENCH")
	viper.AutomaticEnv()
	viper.ReadInConfig()

	logutil.InitLogger(verbose)
}

func buildConfig() runner.Config {
	cfg := runner.Config{
		M:           sizeM,
		N:           sizeN,
		K:           sizeK,
		Batch:       batch,
		GroupCount:  groups,
		FlushTimeUs: flushTimeUs,
		OutPrefix:   outPrefix,
	}
	cfg.Timing.NumWarmups = numWarmups
	cfg.Timing.SyncAfterWarmups = syncAfterWarmups
	cfg.Timing.NumBenchmarks = numBenchmarks
	cfg.Timing.NumEnqueuesPerSync = numEnqueuesPerSync
	cfg.Timing.MaxEnqueuesPerSync = maxEnqueuesPerSync
	cfg.Timing.MinFlopsPerSync = minFlopsPerSync
	cfg.Timing.NumSyncsPerBenchmark = numSyncsPerBenchmark
	cfg.Timing.UseGPUTimer = useGPUTimer
	cfg.Timing.SleepPercent = sleepPercent
	return cfg
}

// --- Runners ---

func runHeadless(cfg runner.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigch := make(chan os.Signal, 1)
		signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)
		<-sigch
		cancel()
	}()

	return cli.Start(ctx, cfg)
}

func runTUI(cfg runner.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(report.UpdateChan, 100)
	run := runner.NewRunner(cfg, nil, updates)

	done := make(chan error, 1)
	go func() {
		done <- run.Run(ctx)
	}()

	m := tui.NewModel(updates, done)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	// Stop the runner if the TUI quit early.
	cancel()

	if cfg.OutPrefix != "" {
		results := run.SnapshotResults()
		if len(results) > 0 {
			report.ExportCSV(results, cfg.OutPrefix+".csv")
			report.ExportJSON(results, cfg.OutPrefix+".json")
			report.ExportSummary(results, cfg.OutPrefix)
		}
	}
	return nil
}

// --- History subcommand ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored benchmark runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.NewStore()
		if err != nil {
			return err
		}
		defer store.Close()

		recs := store.List()
		if len(recs) == 0 {
			fmt.Println("no stored runs")
			return nil
		}
		for _, rec := range recs {
			fmt.Printf("%s  %s  %-22s %10.1f GFLOPS  (%d solutions)\n",
				rec.ID[:8],
				rec.Timestamp.Format("2006-01-02 15:04:05"),
				rec.Summary.BestSolution,
				rec.Summary.BestGFlops,
				rec.Summary.SolutionsMeasured)
		}
		return nil
	},
}
