package model

import "time"

// RunStatus represents the lifecycle state of an ingestion run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Counters accumulates per-run tallies. All fields are cumulative across
// query units and survive checkpoint/resume.
type Counters struct {
	Processed          int64 `json:"processed"`
	Inserted           int64 `json:"inserted"`
	Updated            int64 `json:"updated"`
	Failed             int64 `json:"failed"`
	DuplicatesSkipped  int64 `json:"duplicatesSkipped"`
	ValidationErrors   int64 `json:"validationErrors"`
	ValidationWarnings int64 `json:"validationWarnings"`
	RetryAttempts      int64 `json:"retryAttempts"`
}

// Add merges another set of counters into this one.
func (c *Counters) Add(other Counters) {
	c.Processed += other.Processed
	c.Inserted += other.Inserted
	c.Updated += other.Updated
	c.Failed += other.Failed
	c.DuplicatesSkipped += other.DuplicatesSkipped
	c.ValidationErrors += other.ValidationErrors
	c.ValidationWarnings += other.ValidationWarnings
	c.RetryAttempts += other.RetryAttempts
}

// RunState is the persisted checkpoint enabling resume after interruption.
// It is written atomically after each unit batch and deleted on successful
// completion.
type RunState struct {
	RunID                string    `json:"runId"`
	CurrentLocationIndex int       `json:"currentLocationIndex"`
	TotalLocations       int       `json:"totalLocations"`
	Counters             Counters  `json:"counters"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// UnitFailure records a query unit that exhausted its retries or hit a
// non-retryable error. Failures never abort the run; they are reported so
// operators can re-run just the failed subset.
type UnitFailure struct {
	Unit      string    `json:"unit"`
	Latitude  float64   `json:"latitude,omitempty"`
	Longitude float64   `json:"longitude,omitempty"`
	Error     string    `json:"error"`
	ErrorType string    `json:"error_type"`
	FailedAt  time.Time `json:"failed_at"`
}

// RunReport is the final summary emitted when a run completes.
type RunReport struct {
	RunID        string        `json:"run_id"`
	Status       RunStatus     `json:"status"`
	Units        int           `json:"units"`
	UnitsFailed  int           `json:"units_failed"`
	Counters     Counters      `json:"counters"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  time.Time     `json:"completed_at"`
	DurationSecs float64       `json:"duration_secs"`
	Failures     []UnitFailure `json:"failures,omitempty"`
}

// Run is one row in the run log.
type Run struct {
	ID          string     `json:"id"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Report      *RunReport `json:"report,omitempty"`
}
