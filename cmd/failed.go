package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/recovery-atlas/facility-cli/internal/store"
)

var failedCmd = &cobra.Command{
	Use:   "failed [run-id]",
	Short: "List query units that failed in a run",
	Long:  "Without an argument, shows the failed units of the most recent run.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var runID string
		if len(args) == 1 {
			runID = args[0]
		} else {
			runs, err := env.store.ListRuns(ctx, store.RunFilter{Limit: 1})
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				return eris.New("no runs recorded")
			}
			runID = runs[0].ID
		}

		failures, err := env.store.ListUnitFailures(ctx, runID)
		if err != nil {
			return err
		}

		if len(failures) == 0 {
			fmt.Printf("Run %s: no failed units.\n", runID)
			return nil
		}

		fmt.Printf("Run %s: %d failed units\n", runID, len(failures))
		for _, f := range failures {
			fmt.Printf("  %-30s  %-9s  %s\n", f.Unit, f.ErrorType, f.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(failedCmd)
}
