package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/recovery-atlas/facility-cli/internal/grid"
)

var (
	gridShapefile string
	gridSpacing   float64
	gridOut       string
	gridNameField string
)

var gridgenCmd = &cobra.Command{
	Use:   "gridgen",
	Short: "Generate a locations file from a boundary shapefile",
	Long:  "Lays a grid of query points over each polygon in the shapefile and writes them as a locations YAML usable with run --locations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if gridShapefile == "" {
			return eris.New("--shapefile is required")
		}

		units, err := grid.Generate(gridShapefile, grid.Options{
			SpacingMiles: gridSpacing,
			NameField:    gridNameField,
		})
		if err != nil {
			return err
		}
		if len(units) == 0 {
			return eris.New("no grid points generated; check the shapefile and spacing")
		}

		if err := grid.WriteLocations(gridOut, units); err != nil {
			return err
		}
		fmt.Printf("Wrote %d grid locations to %s\n", len(units), gridOut)
		return nil
	},
}

func init() {
	gridgenCmd.Flags().StringVar(&gridShapefile, "shapefile", "", "polygon shapefile of region boundaries")
	gridgenCmd.Flags().Float64Var(&gridSpacing, "spacing", 50, "miles between grid points")
	gridgenCmd.Flags().StringVar(&gridOut, "out", "locations.yaml", "output locations YAML path")
	gridgenCmd.Flags().StringVar(&gridNameField, "name-field", "NAME", "shapefile attribute holding the region name")
	rootCmd.AddCommand(gridgenCmd)
}
