// Package fetcher provides low-level retrieval and parsing of source data:
// rate-limited HTTP, FTP, and streaming CSV/JSON/XLSX readers. Retry lives in
// the run coordinator, not here; every call is a single attempt so the
// adapters stay stateless and trivially testable.
package fetcher

import (
	"io"
	"net/http"
	"net/url"
	"time"

	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/recovery-atlas/facility-cli/internal/resilience"
)

// HTTPOptions configures the HTTP client.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	// RateLimit is the sustained request rate against the source host
	// (requests per second). Zero disables limiting.
	RateLimit float64
	Burst     int
}

// HTTPClient is a rate-limited, single-attempt HTTP GET client. Failures that
// are safe to retry (connection errors, timeouts, 408/429/5xx) come back
// wrapped as resilience.TransientError so the coordinator's policy retries
// them; other non-2xx statuses are permanent.
type HTTPClient struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// NewHTTPClient creates a new HTTPClient with the given options.
func NewHTTPClient(opts HTTPOptions) *HTTPClient {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "facility-cli/1.0"
	}
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPClient{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		userAgent: opts.UserAgent,
		limiter:   limiter,
	}
}

// Get performs one GET against rawURL with the given query parameters and
// returns the response body.
func (c *HTTPClient) Get(ctx context.Context, rawURL string, query url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: rate limiter wait")
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse url %s", rawURL)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrapf(err, "fetcher: GET %s", u.Host), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := eris.Errorf("fetcher: http %d from %s", resp.StatusCode, u.Host)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "fetcher: read body"), 0)
	}

	return body, nil
}
