// Package store persists the run log: one row per ingestion run plus the
// query units that failed inside it. Facility rows themselves are written by
// the loader; the store only reads them back for stats.
package store

import (
	"context"

	"github.com/recovery-atlas/facility-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Stats summarizes the facility table for the status command and the
// metrics endpoint.
type Stats struct {
	TotalFacilities int64   `json:"total_facilities"`
	WithCoordinates int64   `json:"with_coordinates"`
	DistinctStates  int64   `json:"distinct_states"`
	AvgQuality      float64 `json:"avg_quality"`
}

// Store defines the persistence interface for the run log.
type Store interface {
	// Runs
	CreateRun(ctx context.Context) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, report *model.RunReport) error
	FailRun(ctx context.Context, runID string, reason string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Failed units
	RecordUnitFailure(ctx context.Context, runID string, failure model.UnitFailure) error
	ListUnitFailures(ctx context.Context, runID string) ([]model.UnitFailure, error)

	// Facility stats
	FacilityStats(ctx context.Context) (*Stats, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
