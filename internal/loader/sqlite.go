package loader

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/recovery-atlas/facility-cli/internal/model"
)

// SQLite loads facilities into a local database file. Used for single-machine
// runs where standing up Postgres is not worth it; same table shape, slices
// stored as JSON text.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db, now: time.Now}
}

const sqliteUpsert = `
INSERT INTO facilities (
	id, name, street, city, state, zip,
	latitude, longitude, phone, website,
	services, insurance, programs,
	data_quality, data_source, last_updated, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	street = excluded.street,
	city = excluded.city,
	state = excluded.state,
	zip = excluded.zip,
	latitude = excluded.latitude,
	longitude = excluded.longitude,
	phone = excluded.phone,
	website = excluded.website,
	services = excluded.services,
	insurance = excluded.insurance,
	programs = excluded.programs,
	data_quality = excluded.data_quality,
	data_source = excluded.data_source,
	last_updated = excluded.last_updated`

// Load upserts facilities in transactions of at most MaxBatchSize rows, with
// the same halve-and-retry-once handling as the Postgres loader.
func (s *SQLite) Load(ctx context.Context, facilities []*model.Facility) (Result, error) {
	var total Result
	for _, batch := range chunk(facilities) {
		res, err := s.loadBatch(ctx, batch)
		if err == nil {
			total.add(res)
			continue
		}
		if ctx.Err() != nil {
			return total, eris.Wrap(err, "loader: sqlite: load batch")
		}

		zap.L().Warn("batch load failed, halving and retrying",
			zap.String("component", "loader"),
			zap.Int("batch_size", len(batch)),
			zap.Error(err))

		for _, half := range halve(batch) {
			res, err := s.loadBatch(ctx, half)
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

func (s *SQLite) loadBatch(ctx context.Context, batch []*model.Facility) (Result, error) {
	if len(batch) == 0 {
		return Result{}, nil
	}

	existing, err := s.countExisting(ctx, batch)
	if err != nil {
		return Result{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, eris.Wrap(err, "loader: sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, sqliteUpsert)
	if err != nil {
		return Result{}, eris.Wrap(err, "loader: sqlite: prepare upsert")
	}
	defer stmt.Close()

	now := s.now()
	for _, f := range batch {
		if _, err := stmt.ExecContext(ctx, facilityRow(f, now)...); err != nil {
			return Result{}, eris.Wrapf(err, "loader: sqlite: upsert %s", f.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return Result{}, eris.Wrap(err, "loader: sqlite: commit tx")
	}

	return Result{Updated: existing, Inserted: int64(len(batch)) - existing}, nil
}

func (s *SQLite) countExisting(ctx context.Context, batch []*model.Facility) (int64, error) {
	placeholders := make([]string, len(batch))
	args := make([]any, len(batch))
	for i, f := range batch {
		placeholders[i] = "?"
		args[i] = f.ID
	}

	query := "SELECT COUNT(*) FROM facilities WHERE id IN (" + strings.Join(placeholders, ", ") + ")"
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "loader: sqlite: count existing")
	}
	return n, nil
}
