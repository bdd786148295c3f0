// Package loader persists normalized facilities. Each batch is written in a
// single transaction; a failed batch is halved and each half retried once so
// one poison row costs at most its own half, not the whole batch.
package loader

import (
	"context"
	"encoding/json"
	"time"

	"github.com/recovery-atlas/facility-cli/internal/model"
)

// MaxBatchSize caps rows per transaction. Batches above this are chunked
// before loading.
const MaxBatchSize = 500

// facilityColumns is the column order used by both drivers.
var facilityColumns = []string{
	"id", "name", "street", "city", "state", "zip",
	"latitude", "longitude", "phone", "website",
	"services", "insurance", "programs",
	"data_quality", "data_source", "last_updated", "created_at",
}

// updateColumns excludes id and created_at: the stored created_at marks when
// the facility first appeared and must survive re-runs.
var updateColumns = []string{
	"name", "street", "city", "state", "zip",
	"latitude", "longitude", "phone", "website",
	"services", "insurance", "programs",
	"data_quality", "data_source", "last_updated",
}

// Result reports what a Load call actually wrote.
type Result struct {
	Inserted int64
	Updated  int64
	Failed   int64
}

func (r *Result) add(other Result) {
	r.Inserted += other.Inserted
	r.Updated += other.Updated
	r.Failed += other.Failed
}

// Loader writes facility batches to a store.
type Loader interface {
	Load(ctx context.Context, facilities []*model.Facility) (Result, error)
}

// facilityRow flattens a facility into the column order above. Slices are
// JSON-encoded so the same row shape works for Postgres and SQLite.
func facilityRow(f *model.Facility, now time.Time) []any {
	return []any{
		f.ID, f.Name, f.Street, f.City, f.State, f.Zip,
		f.Latitude, f.Longitude, f.Phone, f.Website,
		jsonText(f.Services), jsonText(f.Insurance), jsonText(f.Programs),
		f.DataQuality, f.DataSource, f.LastUpdated, now.UTC(),
	}
}

func jsonText(ss []string) string {
	if len(ss) == 0 {
		return "[]"
	}
	b, err := json.Marshal(ss)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// chunk splits facilities into MaxBatchSize pieces.
func chunk(facilities []*model.Facility) [][]*model.Facility {
	var out [][]*model.Facility
	for len(facilities) > MaxBatchSize {
		out = append(out, facilities[:MaxBatchSize])
		facilities = facilities[MaxBatchSize:]
	}
	if len(facilities) > 0 {
		out = append(out, facilities)
	}
	return out
}

// halve splits a failed batch for the retry pass.
func halve(facilities []*model.Facility) [][]*model.Facility {
	if len(facilities) <= 1 {
		return [][]*model.Facility{facilities}
	}
	mid := len(facilities) / 2
	return [][]*model.Facility{facilities[:mid], facilities[mid:]}
}
