package query

import (
	"context"
	"time"

	"github.com/ziadkadry99/logscope/internal/backend"
)

// Client executes one query against one scope and normalizes whatever shape
// the backend answers with. The include-descendants flag is passed through
// honestly here; the root-scope workaround lives in the Federator.
type Client struct {
	transport Transport
	limiter   *backend.RateLimiter
}

// NewClient creates a single-scope query client. The limiter must be the same
// instance the transport paces with, so backoff decisions and pacing share
// one view of the backend's mood.
func NewClient(transport Transport, limiter *backend.RateLimiter) *Client {
	return &Client{transport: transport, limiter: limiter}
}

// Query runs spec against its scope. On a rate-limit answer it backs off via
// the shared limiter and retries the call exactly once; the limiter's retry
// ceiling, not this method, decides when to give up for good. Every other
// error propagates untouched.
func (c *Client) Query(ctx context.Context, spec QuerySpec) (*Result, error) {
	req := backend.QueryRequest{
		ScopeID:            spec.Scope,
		Query:              spec.Text,
		TimeStart:          spec.Start.UTC().Format(time.RFC3339),
		TimeEnd:            spec.End.UTC().Format(time.RFC3339),
		IncludeDescendants: spec.IncludeDescendants,
		MaxRows:            spec.MaxResults,
	}

	resp, err := c.transport.Query(ctx, req)
	if err != nil {
		if !backend.IsRateLimit(err) {
			return nil, err
		}
		if berr := c.limiter.HandleRateLimit(ctx); berr != nil {
			return nil, berr
		}
		resp, err = c.transport.Query(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	return normalize(resp), nil
}
