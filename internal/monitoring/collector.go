// Package monitoring exposes run and facility metrics over HTTP for
// dashboards and uptime checks.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/recovery-atlas/facility-cli/internal/model"
	"github.com/recovery-atlas/facility-cli/internal/store"
)

// MetricsSnapshot holds a point-in-time view of ingestion health.
type MetricsSnapshot struct {
	// Run metrics within the lookback window.
	RunsTotal    int     `json:"runs_total"`
	RunsComplete int     `json:"runs_complete"`
	RunsFailed   int     `json:"runs_failed"`
	RunsRunning  int     `json:"runs_running"`
	RunFailRate  float64 `json:"run_fail_rate"`

	// Totals from the most recent completed run.
	LastRunProcessed   int64      `json:"last_run_processed"`
	LastRunInserted    int64      `json:"last_run_inserted"`
	LastRunFailures    int        `json:"last_run_failures"`
	LastRunCompletedAt *time.Time `json:"last_run_completed_at,omitempty"`

	// Directory-wide facility stats.
	Facilities *store.Stats `json:"facilities"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers metrics from the run log and the facility table.
type Collector struct {
	store store.Store
}

func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	cutoff := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)

	runs, err := c.store.ListRuns(ctx, store.RunFilter{Limit: 10000})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	for _, r := range runs {
		if r.StartedAt.Before(cutoff) {
			continue
		}
		snap.RunsTotal++
		switch r.Status {
		case model.RunStatusComplete:
			snap.RunsComplete++
		case model.RunStatusFailed:
			snap.RunsFailed++
		case model.RunStatusRunning:
			snap.RunsRunning++
		}
	}

	finished := snap.RunsComplete + snap.RunsFailed
	if finished > 0 {
		snap.RunFailRate = float64(snap.RunsFailed) / float64(finished)
	}

	// Runs come back newest first; the first completed one is the latest.
	for _, r := range runs {
		if r.Status != model.RunStatusComplete || r.Report == nil {
			continue
		}
		snap.LastRunProcessed = r.Report.Counters.Processed
		snap.LastRunInserted = r.Report.Counters.Inserted
		snap.LastRunFailures = r.Report.UnitsFailed
		snap.LastRunCompletedAt = r.CompletedAt
		break
	}

	stats, err := c.store.FacilityStats(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: facility stats")
	}
	snap.Facilities = stats

	return snap, nil
}
