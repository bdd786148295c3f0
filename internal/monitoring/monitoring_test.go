package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recovery-atlas/facility-cli/internal/model"
	"github.com/recovery-atlas/facility-cli/internal/store"
)

type fakeStore struct {
	runs    []model.Run
	stats   store.Stats
	pingErr error
	listErr error
}

func (s *fakeStore) CreateRun(ctx context.Context) (*model.Run, error) { return nil, nil }
func (s *fakeStore) CompleteRun(ctx context.Context, runID string, report *model.RunReport) error {
	return nil
}
func (s *fakeStore) FailRun(ctx context.Context, runID string, reason string) error { return nil }
func (s *fakeStore) GetRun(ctx context.Context, runID string) (*model.Run, error)  { return nil, nil }
func (s *fakeStore) ListRuns(ctx context.Context, f store.RunFilter) ([]model.Run, error) {
	return s.runs, s.listErr
}
func (s *fakeStore) RecordUnitFailure(ctx context.Context, runID string, f model.UnitFailure) error {
	return nil
}
func (s *fakeStore) ListUnitFailures(ctx context.Context, runID string) ([]model.UnitFailure, error) {
	return nil, nil
}
func (s *fakeStore) FacilityStats(ctx context.Context) (*store.Stats, error) {
	return &s.stats, nil
}
func (s *fakeStore) Migrate(ctx context.Context) error { return nil }
func (s *fakeStore) Ping(ctx context.Context) error    { return s.pingErr }
func (s *fakeStore) Close() error                      { return nil }

func completedRun(id string, ago time.Duration, inserted int64) model.Run {
	completed := time.Now().UTC().Add(-ago)
	return model.Run{
		ID:          id,
		Status:      model.RunStatusComplete,
		StartedAt:   completed.Add(-time.Hour),
		CompletedAt: &completed,
		Report: &model.RunReport{
			Status:   model.RunStatusComplete,
			Counters: model.Counters{Processed: inserted * 2, Inserted: inserted},
		},
	}
}

func TestCollector_Collect(t *testing.T) {
	st := &fakeStore{
		runs: []model.Run{
			completedRun("run-new", time.Hour, 4200),
			{ID: "run-failed", Status: model.RunStatusFailed, StartedAt: time.Now().UTC().Add(-2 * time.Hour)},
			// Outside the 24h window, excluded from the rate.
			{ID: "run-old", Status: model.RunStatusFailed, StartedAt: time.Now().UTC().Add(-48 * time.Hour)},
		},
		stats: store.Stats{TotalFacilities: 14000, DistinctStates: 51, AvgQuality: 72.4},
	}

	snap, err := NewCollector(st).Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.RunsTotal)
	assert.Equal(t, 1, snap.RunsComplete)
	assert.Equal(t, 1, snap.RunsFailed)
	assert.InDelta(t, 0.5, snap.RunFailRate, 0.001)
	assert.Equal(t, int64(4200), snap.LastRunInserted)
	require.NotNil(t, snap.Facilities)
	assert.Equal(t, int64(14000), snap.Facilities.TotalFacilities)
}

func TestCollector_EmptyStore(t *testing.T) {
	snap, err := NewCollector(&fakeStore{}).Collect(context.Background(), 24)
	require.NoError(t, err)
	assert.Zero(t, snap.RunsTotal)
	assert.Zero(t, snap.RunFailRate)
	assert.Nil(t, snap.LastRunCompletedAt)
}

func TestServer_Healthz(t *testing.T) {
	srv := NewServer(&fakeStore{}, 0)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_ReadyzStoreDown(t *testing.T) {
	srv := NewServer(&fakeStore{pingErr: fmt.Errorf("connection refused")}, 0)
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	srv := NewServer(&fakeStore{
		runs:  []model.Run{completedRun("run-1", time.Hour, 100)},
		stats: store.Stats{TotalFacilities: 100},
	}, 0)

	req := httptest.NewRequest(http.MethodGet, "/metrics?lookback_hours=48", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var snap MetricsSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 48, snap.LookbackHours)
	assert.Equal(t, 1, snap.RunsComplete)
}

func TestServer_MetricsBadLookback(t *testing.T) {
	srv := NewServer(&fakeStore{}, 0)
	req := httptest.NewRequest(http.MethodGet, "/metrics?lookback_hours=zero", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_MetricsStoreError(t *testing.T) {
	srv := NewServer(&fakeStore{listErr: fmt.Errorf("boom")}, 0)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
