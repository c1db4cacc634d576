// Package querylog persists a history of executed queries so past work can
// be inspected, re-run, and summarized.
package querylog

import "time"

// Record is one executed query as recorded in the history log.
type Record struct {
	ID            string    `json:"id"`
	ExecutedAt    time.Time `json:"executed_at"`
	Query         string    `json:"query"`
	Scope         string    `json:"scope,omitempty"`
	TimeStart     time.Time `json:"time_start"`
	TimeEnd       time.Time `json:"time_end"`
	DurationMS    int64     `json:"duration_ms"`
	RowCount      int       `json:"row_count"`
	Success       bool      `json:"success"`
	Error         string    `json:"error,omitempty"`
	Federated     bool      `json:"federated,omitempty"`
	ScopesQueried int       `json:"scopes_queried,omitempty"`
	ScopesFailed  int       `json:"scopes_failed,omitempty"`
}

// ListFilter controls which records List returns.
type ListFilter struct {
	Scope    string
	Contains string // substring match against the query text
	Success  *bool
	Since    *time.Time
	Until    *time.Time
	Limit    int
	Offset   int
}

// ScopeCount pairs a scope with how many logged queries targeted it.
type ScopeCount struct {
	Scope string `json:"scope"`
	Count int    `json:"count"`
}

// QueryCount pairs a query text with how often it was executed.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// Stats summarizes the whole history log.
type Stats struct {
	Total         int          `json:"total"`
	Succeeded     int          `json:"succeeded"`
	Failed        int          `json:"failed"`
	SuccessRate   float64      `json:"success_rate"`
	Federated     int          `json:"federated"`
	AvgDurationMS float64      `json:"avg_duration_ms"`
	TopScopes     []ScopeCount `json:"top_scopes,omitempty"`
	TopQueries    []QueryCount `json:"top_queries,omitempty"`
}
