package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recovery-atlas/facility-cli/internal/store"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent runs and directory stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		runs, err := env.store.ListRuns(ctx, store.RunFilter{Limit: statusLimit})
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
		}
		for _, r := range runs {
			line := fmt.Sprintf("%s  %-8s  started %s", r.ID, r.Status, r.StartedAt.Format("2006-01-02 15:04"))
			if r.Report != nil {
				line += fmt.Sprintf("  inserted=%d updated=%d failed_units=%d",
					r.Report.Counters.Inserted, r.Report.Counters.Updated, r.Report.UnitsFailed)
			}
			fmt.Println(line)
		}

		stats, err := env.store.FacilityStats(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("\nDirectory: %d facilities across %d states, %d geocoded, avg quality %.1f\n",
			stats.TotalFacilities, stats.DistinctStates, stats.WithCoordinates, stats.AvgQuality)

		return nil
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "number of runs to show")
	rootCmd.AddCommand(statusCmd)
}
