package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/recovery-atlas/facility-cli/internal/fetcher"
	"github.com/recovery-atlas/facility-cli/internal/model"
)

// DefaultMaxPages bounds pagination per query unit so a misbehaving source
// reporting ever-growing totalPages cannot loop forever.
const DefaultMaxPages = 5

// APIAdapter fetches facility records from the findtreatment.gov locator API.
// The endpoint has shipped two response shapes over time: a bare JSON array
// of records, and {"rows": [...], "totalPages": N}. Both are handled here,
// resolved per response rather than per pipeline copy.
type APIAdapter struct {
	client   *fetcher.HTTPClient
	baseURL  string
	maxPages int
}

// APIOptions configures the API adapter.
type APIOptions struct {
	BaseURL  string
	MaxPages int // default DefaultMaxPages
}

// NewAPIAdapter creates an adapter against the given locator endpoint.
func NewAPIAdapter(client *fetcher.HTTPClient, opts APIOptions) *APIAdapter {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &APIAdapter{
		client:   client,
		baseURL:  opts.BaseURL,
		maxPages: maxPages,
	}
}

// Name implements Adapter.
func (a *APIAdapter) Name() string {
	return "findtreatment_api"
}

// pagedResponse is the current locator response shape.
type pagedResponse struct {
	Rows       []model.RawRecord `json:"rows"`
	TotalPages int               `json:"totalPages"`
}

// Fetch retrieves all pages for the unit's coordinates, up to the page cap.
// Pages are fetched in order because the "has more" signal comes from the
// prior page.
func (a *APIAdapter) Fetch(ctx context.Context, unit model.QueryUnit, pageSize int) ([]model.RawRecord, error) {
	if unit.IsFile() {
		return nil, eris.Errorf("source: api adapter got file unit %s", unit.FilePath)
	}
	if pageSize <= 0 {
		pageSize = 100
	}

	log := zap.L().With(
		zap.String("component", "source.api"),
		zap.String("unit", unit.Label()),
	)

	var records []model.RawRecord
	totalPages := 1
	for page := 1; page <= totalPages && page <= a.maxPages; page++ {
		q := url.Values{}
		q.Set("sAddr", fmt.Sprintf("%f,%f", unit.Latitude, unit.Longitude))
		q.Set("pageSize", strconv.Itoa(pageSize))
		q.Set("page", strconv.Itoa(page))

		body, err := a.client.Get(ctx, a.baseURL, q)
		if err != nil {
			return nil, eris.Wrapf(err, "source: fetch page %d for %s", page, unit.Label())
		}

		rows, reported, err := parsePage(body)
		if err != nil {
			return nil, err
		}
		if reported > totalPages {
			totalPages = reported
		}

		records = append(records, rows...)
		log.Debug("fetched page",
			zap.Int("page", page),
			zap.Int("records", len(rows)),
			zap.Int("total_pages", totalPages),
		)

		if len(rows) == 0 {
			break
		}
	}

	if totalPages > a.maxPages {
		log.Warn("page cap reached, truncating results",
			zap.Int("total_pages", totalPages),
			zap.Int("max_pages", a.maxPages),
		)
	}

	return records, nil
}

// parsePage decodes one response body, resolving the legacy bare-array shape
// and the {rows,totalPages} shape. The legacy shape carries no paging signal,
// so its reported page count is 1.
func parsePage(body []byte) (rows []model.RawRecord, totalPages int, err error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, 0, &ParseError{Err: eris.New("empty response body"), PayloadSize: len(body)}
	}

	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, 0, &ParseError{Err: eris.Wrap(err, "decode record array"), PayloadSize: len(body)}
		}
		return rows, 1, nil
	case '{':
		var resp pagedResponse
		if err := json.Unmarshal(trimmed, &resp); err != nil {
			return nil, 0, &ParseError{Err: eris.Wrap(err, "decode paged response"), PayloadSize: len(body)}
		}
		return resp.Rows, resp.TotalPages, nil
	default:
		return nil, 0, &ParseError{Err: eris.Errorf("unexpected payload start %q", trimmed[0]), PayloadSize: len(body)}
	}
}
