// Package query is the execution core: a single-scope client that normalizes
// backend responses, a scatter/gather federator that works around the backend
// ignoring include-descendants on the hierarchy root, and the engine that ties
// caching, execution, and audit logging together.
package query

import (
	"context"
	"time"

	"github.com/ziadkadry99/logscope/internal/backend"
)

// Source values on a Response.
const (
	SourceCache = "cache"
	SourceLive  = "live"
)

// Column describes one result column. Name is the backend's internal name and
// the key object rows are aligned by; DisplayName is what tables print.
type Column struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Type        string `json:"type,omitempty"`
}

// Display returns the name a human-facing table should use.
func (c Column) Display() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Name
}

// Result is the canonical table every execution path produces. Rows are
// fixed-width: len(Rows[i]) == len(Columns) always holds after normalization.
//
// For a federated result TotalCount is the sum of per-scope totals. That sum
// is an approximation: a scope whose own total already reflects truncation
// contributes its truncated figure, so the sum can diverge from the true
// hierarchy-wide count.
type Result struct {
	Columns    []Column `json:"columns"`
	Rows       [][]any  `json:"rows"`
	TotalCount int      `json:"totalCount"`
	IsPartial  bool     `json:"isPartial"`

	// Federation bookkeeping, populated only by the federator.
	Federated     bool `json:"federated,omitempty"`
	ScopesQueried int  `json:"scopesQueried,omitempty"`
	ScopesFailed  int  `json:"scopesFailed,omitempty"`
}

// QuerySpec is one fully-resolved single-scope query: text, a concrete UTC
// window, the target scope, and the honest include-descendants flag.
type QuerySpec struct {
	Text               string
	Start              time.Time
	End                time.Time
	Scope              string
	MaxResults         int
	IncludeDescendants bool
}

// Request is what callers hand the engine. Time parameters follow the
// timerange rules: absolute bounds win, otherwise the named range (or the
// engine default) anchored at now. An empty Scope means the engine's
// configured default; there is no process-global mutable scope state.
type Request struct {
	Query              string `json:"query"`
	Scope              string `json:"scope,omitempty"`
	IncludeDescendants bool   `json:"includeDescendants,omitempty"`
	TimeStart          string `json:"timeStart,omitempty"`
	TimeEnd            string `json:"timeEnd,omitempty"`
	TimeRange          string `json:"timeRange,omitempty"`
	MaxResults         int    `json:"maxResults,omitempty"`
	NoCache            bool   `json:"noCache,omitempty"`
}

// Metadata describes how a Response was produced. ExecutionTime is only set
// on live calls.
type Metadata struct {
	Query              string  `json:"query"`
	Scope              string  `json:"scope"`
	TimeStart          string  `json:"timeStart"`
	TimeEnd            string  `json:"timeEnd"`
	IncludeDescendants bool    `json:"includeDescendants"`
	ExecutionTime      float64 `json:"executionTimeSeconds,omitempty"`
}

// Response pairs a Result with where it came from.
type Response struct {
	Source   string   `json:"source"`
	Data     *Result  `json:"data"`
	Metadata Metadata `json:"metadata"`
}

// BatchResult is one slot of an ExecuteBatch answer, positionally aligned
// with the request list.
type BatchResult struct {
	Success  bool
	Response *Response
	Err      error
}

// Transport is the slice of the backend API the query layer consumes.
type Transport interface {
	Query(ctx context.Context, req backend.QueryRequest) (*backend.QueryResponse, error)
}

// DirectoryLister enumerates the scope hierarchy one page at a time.
type DirectoryLister interface {
	ListScopes(ctx context.Context, req backend.ListScopesRequest) (*backend.ScopeList, error)
}

// LogEntry is one execution record handed to the audit logger.
type LogEntry struct {
	Query         string
	Scope         string
	TimeStart     time.Time
	TimeEnd       time.Time
	Duration      time.Duration
	RowCount      int
	Success       bool
	Error         string
	Federated     bool
	ScopesQueried int
	ScopesFailed  int
}

// Logger records executions. The engine calls it fire-and-forget and never
// reads results back.
type Logger interface {
	LogQuery(ctx context.Context, entry LogEntry)
}
