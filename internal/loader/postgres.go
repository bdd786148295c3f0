package loader

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/recovery-atlas/facility-cli/internal/db"
	"github.com/recovery-atlas/facility-cli/internal/model"
)

const pgUniqueViolation = "23505"

// Postgres loads facilities through the temp-table bulk upsert path.
type Postgres struct {
	pool  db.Pool
	table string
	now   func() time.Time
}

type PostgresOptions struct {
	Table string // defaults to "facilities"
	Now   func() time.Time
}

func NewPostgres(pool db.Pool, opts PostgresOptions) *Postgres {
	if opts.Table == "" {
		opts.Table = "facilities"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Postgres{pool: pool, table: opts.Table, now: opts.Now}
}

// Load upserts facilities in transactions of at most MaxBatchSize rows. A
// batch that fails is halved and each half retried once; a half that fails
// again is dropped and counted as failed rather than aborting the run.
func (p *Postgres) Load(ctx context.Context, facilities []*model.Facility) (Result, error) {
	var total Result
	for _, batch := range chunk(facilities) {
		res, err := p.loadBatch(ctx, batch)
		if err == nil {
			total.add(res)
			continue
		}
		if ctx.Err() != nil {
			return total, eris.Wrap(err, "loader: postgres: load batch")
		}

		zap.L().Warn("batch load failed, halving and retrying",
			zap.String("component", "loader"),
			zap.Int("batch_size", len(batch)),
			zap.Error(err))

		for _, half := range halve(batch) {
			res, err := p.loadBatch(ctx, half)
			if err != nil {
				zap.L().Error("half-batch load failed, dropping rows",
					zap.String("component", "loader"),
					zap.Int("rows", len(half)),
					zap.Error(err))
				total.Failed += int64(len(half))
				continue
			}
			total.add(res)
		}
	}
	return total, nil
}

// collapseByID drops rows whose ID already appeared earlier in the batch.
// Distinct facilities can fingerprint differently yet derive the same stable
// ID (same name, city, and state; different street); the staged merge rejects
// a batch that touches one target row twice, so only the first survives.
func collapseByID(batch []*model.Facility) []*model.Facility {
	seen := make(map[string]bool, len(batch))
	out := make([]*model.Facility, 0, len(batch))
	for _, f := range batch {
		if seen[f.ID] {
			zap.L().Debug("collapsing duplicate stable id in batch",
				zap.String("component", "loader"),
				zap.String("id", f.ID))
			continue
		}
		seen[f.ID] = true
		out = append(out, f)
	}
	return out
}

func (p *Postgres) loadBatch(ctx context.Context, batch []*model.Facility) (Result, error) {
	batch = collapseByID(batch)
	if len(batch) == 0 {
		return Result{}, nil
	}

	ids := make([]string, len(batch))
	rows := make([][]any, len(batch))
	now := p.now()
	for i, f := range batch {
		ids[i] = f.ID
		rows[i] = facilityRow(f, now)
	}

	// Count ids already present so inserted/updated can be reported; the
	// upsert itself only returns rows affected.
	var existing int64
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM `+p.table+` WHERE id = ANY($1)`, ids).Scan(&existing)
	if err != nil {
		return Result{}, eris.Wrap(err, "loader: postgres: count existing")
	}

	affected, err := db.BulkUpsert(ctx, p.pool, db.UpsertConfig{
		Table:        p.table,
		Columns:      facilityColumns,
		ConflictKeys: []string{"id"},
		UpdateCols:   updateColumns,
	}, rows)
	if err != nil {
		// A unique violation on some secondary constraint means the row
		// already exists in an equivalent form; skip it, don't fail.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			zap.L().Warn("unique violation on load, skipping batch rows",
				zap.String("component", "loader"),
				zap.String("constraint", pgErr.ConstraintName))
			return Result{}, nil
		}
		return Result{}, err
	}

	res := Result{Updated: existing, Inserted: affected - existing}
	if res.Inserted < 0 {
		res.Inserted = 0
	}
	return res, nil
}
