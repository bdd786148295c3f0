package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:        "facilities",
		Columns:      []string{"id", "name"},
		ConflictKeys: []string{"id"},
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkUpsert_NoColumns(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:        "facilities",
		ConflictKeys: []string{"id"},
	}, [][]any{{1, "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestBulkUpsert_NoConflictKeys(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:   "facilities",
		Columns: []string{"id", "name"},
	}, [][]any{{1, "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestBulkUpsert_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"id", "name", "created_at"}

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "stage_facilities"`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"stage_facilities"}, cols).WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "facilities" .+ ON CONFLICT \("id"\) DO UPDATE SET "name" = EXCLUDED\."name"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	rows := [][]any{{"tx-a-1", "A", "2026-01-01"}, {"tx-b-2", "B", "2026-01-01"}}
	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "facilities",
		Columns:      cols,
		ConflictKeys: []string{"id"},
		UpdateCols:   []string{"name"}, // created_at is preserved on conflict
	}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_CopyError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"id", "name"}

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"stage_facilities"}, cols).
		WillReturnError(fmt.Errorf("copy failed"))
	mock.ExpectRollback()

	_, err = BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "facilities",
		Columns:      cols,
		ConflictKeys: []string{"id"},
	}, [][]any{{"tx-a-1", "A"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY into staging table")
}

func TestMergeSQL_DefaultsToNonKeyColumns(t *testing.T) {
	cfg := UpsertConfig{
		Table:        "facilities",
		Columns:      []string{"id", "name", "state"},
		ConflictKeys: []string{"id"},
	}
	sql := cfg.mergeSQL(cfg.stagingTable())
	assert.Contains(t, sql, `FROM "stage_facilities"`)
	assert.Contains(t, sql, `DO UPDATE SET "name" = EXCLUDED."name", "state" = EXCLUDED."state"`)
	assert.NotContains(t, sql, `"id" = EXCLUDED."id"`)
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"facilities", `"facilities"`},
		{"directory.facilities", `"directory"."facilities"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := sanitizeTable(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	result := quoteAndJoin([]string{"id", "name", "state"})
	assert.Equal(t, `"id", "name", "state"`, result)
}
