package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/recovery-atlas/facility-cli/internal/checkpoint"
	"github.com/recovery-atlas/facility-cli/internal/fetcher"
	"github.com/recovery-atlas/facility-cli/internal/ingest"
	"github.com/recovery-atlas/facility-cli/internal/model"
	"github.com/recovery-atlas/facility-cli/internal/resilience"
	"github.com/recovery-atlas/facility-cli/internal/source"
)

var (
	runResume     bool
	runClear      bool
	runSequential bool
	runParallel   int
	runLocations  string
	runFiles      []string
	runStats      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a facility ingestion sweep",
	Long:  "Queries every configured location against the facility API (plus any flat-file units), then validates, normalizes, deduplicates, and loads the results.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.store.Migrate(ctx); err != nil {
			return err
		}

		units := ingest.DefaultLocations()
		if runLocations != "" {
			units, err = ingest.LoadLocations(runLocations)
			if err != nil {
				return err
			}
		}
		for _, f := range runFiles {
			units = append(units, model.QueryUnit{FilePath: f})
		}

		client := fetcher.NewHTTPClient(fetcher.HTTPOptions{
			UserAgent: cfg.Source.UserAgent,
			Timeout:   time.Duration(cfg.Source.TimeoutSecs) * time.Second,
			RateLimit: cfg.Source.RateLimit,
			Burst:     cfg.Source.RateBurst,
		})
		api := source.NewAPIAdapter(client, source.APIOptions{
			BaseURL:  cfg.Source.BaseURL,
			MaxPages: cfg.Source.MaxPages,
		})
		files := source.NewFileAdapter(fetcher.NewFTPClient(time.Duration(cfg.Source.TimeoutSecs) * time.Second))

		parallelism := cfg.Ingest.Parallelism
		if runParallel > 0 {
			parallelism = runParallel
		}
		if runSequential {
			parallelism = 1
		}

		statsPath := cfg.Ingest.StatsPath
		if runStats != "" {
			statsPath = runStats
		}

		retry := resilience.DefaultPolicy()
		retry.MaxRetries = cfg.Ingest.MaxRetries
		retry.BaseDelay = time.Duration(cfg.Ingest.RetryBaseSecs) * time.Second

		engine := ingest.NewEngine(api, files, env.loader, env.store,
			checkpoint.NewFile(cfg.Ingest.CheckpointPath),
			ingest.Config{
				Parallelism:     parallelism,
				PageSize:        cfg.Source.PageSize,
				CheckpointEvery: cfg.Ingest.CheckpointEvery,
				StatsPath:       statsPath,
				Retry:           retry,
			})

		report, err := engine.Run(ctx, units, ingest.RunOptions{
			Resume: runResume,
			Clear:  runClear,
		})
		if err != nil {
			return err
		}

		printReport(report)
		return nil
	},
}

func printReport(r *model.RunReport) {
	fmt.Printf("Run %s: %s in %.1fs\n", r.RunID, r.Status, r.DurationSecs)
	fmt.Printf("  units:       %d (%d failed)\n", r.Units, r.UnitsFailed)
	fmt.Printf("  processed:   %d\n", r.Counters.Processed)
	fmt.Printf("  inserted:    %d\n", r.Counters.Inserted)
	fmt.Printf("  updated:     %d\n", r.Counters.Updated)
	fmt.Printf("  duplicates:  %d\n", r.Counters.DuplicatesSkipped)
	fmt.Printf("  rejected:    %d (%d warnings)\n", r.Counters.ValidationErrors, r.Counters.ValidationWarnings)
	if r.Counters.RetryAttempts > 0 {
		fmt.Printf("  retries:     %d\n", r.Counters.RetryAttempts)
	}
	for _, f := range r.Failures {
		fmt.Printf("  FAILED %s (%s): %s\n", f.Unit, f.ErrorType, f.Error)
	}
}

func init() {
	runCmd.Flags().BoolVar(&runResume, "resume", false, "resume from the saved checkpoint")
	runCmd.Flags().BoolVar(&runClear, "clear", false, "discard any saved checkpoint before starting")
	runCmd.Flags().BoolVar(&runSequential, "sequential", false, "process one location at a time")
	runCmd.Flags().IntVar(&runParallel, "parallel", 0, "concurrent location workers (default from config)")
	runCmd.Flags().StringVar(&runLocations, "locations", "", "YAML file of locations to query (default: built-in metro list)")
	runCmd.Flags().StringArrayVar(&runFiles, "file", nil, "flat file (csv/json/xlsx, local or ftp://) to ingest; repeatable")
	runCmd.Flags().StringVar(&runStats, "stats", "", "path for the run stats JSON (default from config)")
	rootCmd.AddCommand(runCmd)
}
