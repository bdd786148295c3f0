// Package source contains the adapters that extract raw facility records from
// external sources: the findtreatment.gov locator API and flat files
// (CSV/JSON/XLSX, local or FTP). Adapters are stateless and retry-free; the
// run coordinator wraps every Fetch in its retry policy.
package source

import (
	"context"
	"fmt"

	"github.com/recovery-atlas/facility-cli/internal/model"
)

// Adapter fetches raw, unvalidated records for one query unit.
type Adapter interface {
	// Name identifies the adapter in logs and in Facility.DataSource.
	Name() string

	// Fetch returns all raw records for the unit, paginating as the source
	// allows. Retryable failures are wrapped as resilience.TransientError;
	// malformed payloads as *ParseError.
	Fetch(ctx context.Context, unit model.QueryUnit, pageSize int) ([]model.RawRecord, error)
}

// ParseError marks a malformed payload. It is never retried; the unit is
// skipped immediately. PayloadSize helps diagnose truncated responses.
type ParseError struct {
	Err         error
	PayloadSize int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error (%d bytes): %v", e.PayloadSize, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
