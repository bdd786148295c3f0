package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/recovery-atlas/facility-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Intended for
// single-machine runs; same schema shape as Postgres with JSON stored as
// text.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}

	// Single writer; WAL keeps readers from blocking it.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	db.SetMaxOpenConns(1)

	return &SQLiteStore{db: db}, nil
}

// DB returns the underlying handle for the facility loader.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS facilities (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	street       TEXT NOT NULL DEFAULT '',
	city         TEXT NOT NULL DEFAULT '',
	state        TEXT NOT NULL DEFAULT '',
	zip          TEXT NOT NULL DEFAULT '',
	latitude     REAL,
	longitude    REAL,
	phone        TEXT NOT NULL DEFAULT '',
	website      TEXT NOT NULL DEFAULT '',
	services     TEXT NOT NULL DEFAULT '[]',
	insurance    TEXT NOT NULL DEFAULT '[]',
	programs     TEXT NOT NULL DEFAULT '[]',
	data_quality INTEGER NOT NULL DEFAULT 0,
	data_source  TEXT NOT NULL DEFAULT '',
	last_updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_facilities_state ON facilities(state);
CREATE INDEX IF NOT EXISTS idx_facilities_quality ON facilities(data_quality);

CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	status       TEXT NOT NULL DEFAULT 'running',
	report       TEXT,
	error        TEXT,
	started_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	completed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);

CREATE TABLE IF NOT EXISTS failed_units (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	unit       TEXT NOT NULL,
	latitude   REAL,
	longitude  REAL,
	error      TEXT NOT NULL,
	error_type TEXT NOT NULL DEFAULT 'transient',
	failed_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_failed_units_run_id ON failed_units(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, started_at) VALUES (?, ?, ?)`,
		id, string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return &model.Run{ID: id, Status: model.RunStatusRunning, StartedAt: now}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, report *model.RunReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal report")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, report = ?, completed_at = ? WHERE id = ?`,
		string(report.Status), string(reportJSON), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return runFound(res, runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), reason, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return runFound(res, runID)
}

func runFound(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, report, started_at, completed_at FROM runs WHERE id = ?`, runID)

	r, err := scanRun(row.Scan)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, status, report, started_at, completed_at FROM runs WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func scanRun(scan func(...any) error) (*model.Run, error) {
	var r model.Run
	var reportJSON sql.NullString
	var completedAt sql.NullTime

	if err := scan(&r.ID, &r.Status, &reportJSON, &r.StartedAt, &completedAt); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		r.CompletedAt = &completedAt.Time
	}
	if reportJSON.Valid && reportJSON.String != "" {
		r.Report = &model.RunReport{}
		if err := json.Unmarshal([]byte(reportJSON.String), r.Report); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
	}
	return &r, nil
}

func (s *SQLiteStore) RecordUnitFailure(ctx context.Context, runID string, failure model.UnitFailure) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO failed_units (id, run_id, unit, latitude, longitude, error, error_type, failed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), runID, failure.Unit, failure.Latitude, failure.Longitude,
		failure.Error, failure.ErrorType, failure.FailedAt,
	)
	return eris.Wrapf(err, "sqlite: record unit failure for run %s", runID)
}

func (s *SQLiteStore) ListUnitFailures(ctx context.Context, runID string) ([]model.UnitFailure, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT unit, latitude, longitude, error, error_type, failed_at
		 FROM failed_units WHERE run_id = ? ORDER BY failed_at`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list unit failures for run %s", runID)
	}
	defer rows.Close()

	var failures []model.UnitFailure
	for rows.Next() {
		var f model.UnitFailure
		if err := rows.Scan(&f.Unit, &f.Latitude, &f.Longitude, &f.Error, &f.ErrorType, &f.FailedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan unit failure")
		}
		failures = append(failures, f)
	}
	return failures, eris.Wrap(rows.Err(), "sqlite: list unit failures iterate")
}

func (s *SQLiteStore) FacilityStats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN latitude IS NOT NULL AND longitude IS NOT NULL THEN 1 ELSE 0 END), 0),
		        COUNT(DISTINCT state),
		        COALESCE(AVG(data_quality), 0)
		 FROM facilities`,
	).Scan(&st.TotalFacilities, &st.WithCoordinates, &st.DistinctStates, &st.AvgQuality)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &Stats{}, nil
		}
		return nil, eris.Wrap(err, "sqlite: facility stats")
	}
	return &st, nil
}
