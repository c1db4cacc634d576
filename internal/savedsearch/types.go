// Package savedsearch stores named, reusable query definitions.
package savedsearch

import (
	"time"

	"github.com/ziadkadry99/logscope/internal/query"
)

// SavedSearch is a query definition kept under a stable name so it can be
// re-run without retyping scope, window, and text.
type SavedSearch struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Description        string     `json:"description,omitempty"`
	Query              string     `json:"query"`
	Scope              string     `json:"scope,omitempty"`
	TimeRange          string     `json:"time_range,omitempty"`
	IncludeDescendants bool       `json:"include_descendants,omitempty"`
	MaxResults         int        `json:"max_results,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	LastRun            *time.Time `json:"last_run,omitempty"`
	RunCount           int        `json:"run_count"`
}

// Request converts the search into an executable request. Empty saved
// fields stay empty so engine defaults apply.
func (s SavedSearch) Request() query.Request {
	return query.Request{
		Query:              s.Query,
		Scope:              s.Scope,
		TimeRange:          s.TimeRange,
		IncludeDescendants: s.IncludeDescendants,
		MaxResults:         s.MaxResults,
	}
}

// ListFilter controls which searches List returns.
type ListFilter struct {
	Contains string // substring match against name and description
	Scope    string
	Limit    int
	Offset   int
}
