package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// Client is a REST client for the log-analytics backend. Every outbound call
// passes through the shared RateLimiter before it touches the network, so the
// limiter stays the single throttle for queries, directory listings, and
// schema reads alike.
type Client struct {
	endpoint string
	token    string
	client   *http.Client
	limiter  *RateLimiter
}

// NewClient creates a backend client for the given endpoint. The token is sent
// as a bearer credential on every request; obtaining it is the caller's
// problem.
func NewClient(endpoint, token string, timeout time.Duration, limiter *RateLimiter) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if limiter == nil {
		limiter = NewRateLimiter(DefaultRateLimiterConfig())
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		client:   &http.Client{Timeout: timeout},
		limiter:  limiter,
	}
}

// Limiter returns the rate limiter shared by this client's calls.
func (c *Client) Limiter() *RateLimiter {
	return c.limiter
}

// Query executes one search call against a single scope and returns the raw
// response. Rate-limit answers come back as an *APIError recognized by
// IsRateLimit; retrying is the caller's decision.
func (c *Client) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	var resp QueryResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/query", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListScopes fetches one page of the scope directory under req.Root.
func (c *Client) ListScopes(ctx context.Context, req ListScopesRequest) (*ScopeList, error) {
	params := url.Values{}
	if req.Root != "" {
		params.Set("root", req.Root)
	}
	if req.ActiveOnly {
		params.Set("state", ScopeActive)
	}
	if req.Page != "" {
		params.Set("page", req.Page)
	}
	if req.Limit > 0 {
		params.Set("limit", strconv.Itoa(req.Limit))
	}

	var list ScopeList
	if err := c.do(ctx, http.MethodGet, "/api/v1/scopes", params, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListSources fetches log source definitions, optionally filtered by name.
func (c *Client) ListSources(ctx context.Context, filter string) ([]Source, error) {
	var resp struct {
		Items []Source `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/schema/sources", filterParams(filter), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// ListFields fetches queryable field definitions, optionally filtered by name.
func (c *Client) ListFields(ctx context.Context, filter string) ([]Field, error) {
	var resp struct {
		Items []Field `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/schema/fields", filterParams(filter), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// ListLabels fetches label definitions, optionally filtered by name.
func (c *Client) ListLabels(ctx context.Context, filter string) ([]Label, error) {
	var resp struct {
		Items []Label `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/schema/labels", filterParams(filter), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// ListParsers fetches parser definitions, optionally filtered by name.
func (c *Client) ListParsers(ctx context.Context, filter string) ([]Parser, error) {
	var resp struct {
		Items []Parser `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/schema/parsers", filterParams(filter), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Ping checks that the backend is reachable and the credential is accepted.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/v1/ping", nil, nil, nil)
}

func filterParams(filter string) url.Values {
	if filter == "" {
		return nil
	}
	params := url.Values{}
	params.Set("filter", filter)
	return params
}

// do issues one HTTP call: acquire the rate limiter, send, decode. A 2xx
// answer resets the limiter's retry counter; any other status decodes into an
// *APIError.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	if err := c.limiter.Acquire(ctx); err != nil {
		return err
	}

	u := c.endpoint + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling %s request: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	c.limiter.Reset()

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshaling %s response: %w", path, err)
	}
	return nil
}
