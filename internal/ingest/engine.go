// Package ingest orchestrates facility ingestion runs: fetch each query
// unit, validate and normalize the raw records, drop in-run duplicates, and
// load what remains. Individual unit failures are recorded and skipped; only
// store or configuration errors fail the run itself.
package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/recovery-atlas/facility-cli/internal/checkpoint"
	"github.com/recovery-atlas/facility-cli/internal/dedup"
	"github.com/recovery-atlas/facility-cli/internal/loader"
	"github.com/recovery-atlas/facility-cli/internal/model"
	"github.com/recovery-atlas/facility-cli/internal/resilience"
	"github.com/recovery-atlas/facility-cli/internal/source"
	"github.com/recovery-atlas/facility-cli/internal/store"
	"github.com/recovery-atlas/facility-cli/internal/transform"
	"github.com/recovery-atlas/facility-cli/internal/validate"
)

// Config tunes a run.
type Config struct {
	Parallelism     int // concurrent unit workers
	PageSize        int // records per API page
	CheckpointEvery int // units between checkpoint writes
	StatsPath       string
	Retry           resilience.Policy
}

// DefaultConfig returns the run settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Parallelism:     4,
		PageSize:        100,
		CheckpointEvery: 10,
		Retry:           resilience.DefaultPolicy(),
	}
}

// RunOptions control resume behavior for a single invocation.
type RunOptions struct {
	Resume bool // continue from the saved checkpoint
	Clear  bool // discard any saved checkpoint first
}

// Engine coordinates one ingestion run end to end.
type Engine struct {
	api    source.Adapter
	files  source.Adapter
	loader loader.Loader
	store  store.Store
	ckpt   *checkpoint.File
	cfg    Config
}

func NewEngine(api, files source.Adapter, l loader.Loader, s store.Store, ckpt *checkpoint.File, cfg Config) *Engine {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.CheckpointEvery <= 0 {
		cfg.CheckpointEvery = 10
	}
	return &Engine{api: api, files: files, loader: l, store: s, ckpt: ckpt, cfg: cfg}
}

// Run processes the given query units and returns the final report. The
// returned error is non-nil only for store, checkpoint, or context errors;
// unit-level failures land in the report instead.
func (e *Engine) Run(ctx context.Context, units []model.QueryUnit, opts RunOptions) (*model.RunReport, error) {
	log := zap.L().With(zap.String("component", "ingest.engine"))
	started := time.Now().UTC()

	if opts.Clear {
		if err := e.ckpt.Clear(); err != nil {
			return nil, err
		}
	}

	startIndex := 0
	var counters model.Counters
	var runID string

	if opts.Resume {
		state, err := e.ckpt.Load()
		if err != nil {
			return nil, err
		}
		if state != nil {
			runID = state.RunID
			startIndex = state.CurrentLocationIndex
			counters = state.Counters
			log.Info("resuming run",
				zap.String("run_id", runID),
				zap.Int("start_index", startIndex),
				zap.Int("total", len(units)))
		}
	}

	if runID == "" {
		run, err := e.store.CreateRun(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "ingest: create run")
		}
		runID = run.ID
		log.Info("starting run",
			zap.String("run_id", runID),
			zap.Int("units", len(units)),
			zap.Int("parallelism", e.cfg.Parallelism))
	}

	tracker := dedup.NewTracker()

	var mu sync.Mutex
	var failures []model.UnitFailure

	// Workers run detached from the caller's cancellation: a signal must not
	// interrupt a unit mid-flight. Abort is honored between batches only,
	// once every in-flight unit has finished and been counted.
	unitCtx := context.WithoutCancel(ctx)

	sinceCheckpoint := 0
	i := startIndex
	for i < len(units) {
		end := i + e.cfg.Parallelism
		if end > len(units) {
			end = len(units)
		}

		// One batch of units runs to completion before the next starts,
		// so the checkpoint index is always a true high-water mark.
		var g errgroup.Group
		g.SetLimit(e.cfg.Parallelism)

		for _, unit := range units[i:end] {
			g.Go(func() error {
				unitCounters, err := e.processUnit(unitCtx, unit, tracker)

				mu.Lock()
				defer mu.Unlock()
				counters.Add(unitCounters)

				if err != nil {
					failure := model.UnitFailure{
						Unit:      unit.Label(),
						Latitude:  unit.Latitude,
						Longitude: unit.Longitude,
						Error:     err.Error(),
						ErrorType: resilience.Classify(err),
						FailedAt:  time.Now().UTC(),
					}
					failures = append(failures, failure)
					if recErr := e.store.RecordUnitFailure(unitCtx, runID, failure); recErr != nil {
						log.Error("failed to record unit failure", zap.Error(recErr))
					}
					log.Warn("unit failed",
						zap.String("unit", unit.Label()),
						zap.String("error_type", failure.ErrorType),
						zap.Error(err))
				}
				return nil
			})
		}

		_ = g.Wait() // workers report failures through the mutex, never errors

		sinceCheckpoint += end - i
		i = end

		if err := ctx.Err(); err != nil {
			// Canceled while the batch ran: every unit in it completed, so
			// checkpoint at the boundary and stop before the next batch.
			e.saveCheckpoint(runID, i, len(units), counters, log)

			if failErr := e.store.FailRun(unitCtx, runID, err.Error()); failErr != nil {
				log.Error("failed to mark run failed", zap.Error(failErr))
			}
			return nil, eris.Wrap(err, "ingest: run interrupted")
		}

		if sinceCheckpoint >= e.cfg.CheckpointEvery {
			if err := e.saveCheckpoint(runID, i, len(units), counters, log); err != nil {
				return nil, err
			}
			sinceCheckpoint = 0
		}
	}

	completed := time.Now().UTC()
	report := &model.RunReport{
		RunID:        runID,
		Status:       model.RunStatusComplete,
		Units:        len(units),
		UnitsFailed:  len(failures),
		Counters:     counters,
		StartedAt:    started,
		CompletedAt:  completed,
		DurationSecs: completed.Sub(started).Seconds(),
		Failures:     failures,
	}

	if err := e.store.CompleteRun(ctx, runID, report); err != nil {
		return nil, eris.Wrap(err, "ingest: complete run")
	}
	if err := e.ckpt.Clear(); err != nil {
		log.Warn("failed to clear checkpoint", zap.Error(err))
	}
	if e.cfg.StatsPath != "" {
		if err := WriteStats(e.cfg.StatsPath, report); err != nil {
			log.Warn("failed to write stats file", zap.Error(err))
		}
	}

	log.Info("run complete",
		zap.String("run_id", runID),
		zap.Int64("processed", counters.Processed),
		zap.Int64("inserted", counters.Inserted),
		zap.Int64("updated", counters.Updated),
		zap.Int64("duplicates_skipped", counters.DuplicatesSkipped),
		zap.Int64("validation_errors", counters.ValidationErrors),
		zap.Int("units_failed", len(failures)),
		zap.Duration("elapsed", completed.Sub(started)))

	return report, nil
}

func (e *Engine) saveCheckpoint(runID string, index, total int, counters model.Counters, log *zap.Logger) error {
	err := e.ckpt.Save(&model.RunState{
		RunID:                runID,
		CurrentLocationIndex: index,
		TotalLocations:       total,
		Counters:             counters,
	})
	if err != nil {
		log.Error("failed to save checkpoint", zap.Error(err))
		return err
	}
	log.Debug("checkpoint saved", zap.Int("index", index), zap.Int("total", total))
	return nil
}

// processUnit fetches one query unit and pushes its records through
// validation, normalization, dedup, and load.
func (e *Engine) processUnit(ctx context.Context, unit model.QueryUnit, tracker *dedup.Tracker) (model.Counters, error) {
	log := zap.L().With(
		zap.String("component", "ingest.engine"),
		zap.String("unit", unit.Label()))

	var counters model.Counters

	adapter := e.api
	if unit.IsFile() {
		adapter = e.files
	}

	policy := e.cfg.Retry
	policy.ShouldRetry = resilience.IsTransient
	policy.OnRetry = func(attempt int, err error) {
		counters.RetryAttempts++
		log.Warn("retrying unit fetch",
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	raws, err := resilience.DoVal(ctx, policy, func(ctx context.Context) ([]model.RawRecord, error) {
		return adapter.Fetch(ctx, unit, e.cfg.PageSize)
	})
	if err != nil {
		return counters, eris.Wrapf(err, "ingest: fetch %s", unit.Label())
	}

	var accepted []*model.Facility
	now := time.Now().UTC()

	for _, raw := range raws {
		counters.Processed++

		result := validate.Validate(raw, unit)
		counters.ValidationWarnings += int64(len(result.Warnings))
		if !result.Accepted() {
			counters.ValidationErrors++
			log.Debug("record rejected",
				zap.String("reason", result.Errors[0].Error()))
			continue
		}

		f := transform.Transform(raw, unit, adapter.Name(), now)

		if tracker.Check(f.Fingerprint) {
			counters.DuplicatesSkipped++
			continue
		}
		accepted = append(accepted, f)
	}

	if len(accepted) > 0 {
		res, err := e.loader.Load(ctx, accepted)
		counters.Inserted += res.Inserted
		counters.Updated += res.Updated
		counters.Failed += res.Failed
		if err != nil {
			return counters, eris.Wrapf(err, "ingest: load %s", unit.Label())
		}
	}

	log.Info("unit processed",
		zap.Int("records", len(raws)),
		zap.Int("loaded", len(accepted)),
		zap.Int64("duplicates", counters.DuplicatesSkipped))

	return counters, nil
}
