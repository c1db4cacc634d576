// Package guide holds the embedded query language reference and the
// curated example queries exposed over MCP and the HTTP docs page.
package guide

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed guide.md
var guideMarkdown string

// Markdown returns the raw markdown source of the reference.
func Markdown() string {
	return guideMarkdown
}

// HTML renders the reference to a standalone HTML fragment.
func HTML() (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(guideMarkdown), &buf); err != nil {
		return "", fmt.Errorf("rendering guide: %w", err)
	}
	return buf.String(), nil
}

// Example is a ready-to-run query with a short description of what it shows.
type Example struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Query       string `json:"query"`
	TimeRange   string `json:"time_range,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Examples returns the curated example queries, most broadly useful first.
func Examples() []Example {
	return []Example{
		{
			Name:        "errors_last_hour",
			Description: "All error and critical records in the last hour",
			Query:       "'Severity' in ('error', 'critical')",
			TimeRange:   "last_1_hour",
		},
		{
			Name:        "top_hosts_by_volume",
			Description: "Hosts producing the most records",
			Query:       "* | stats count by 'Host Name' | sort -count | head 10",
			Notes:       "Swap 'Host Name' for any field to rank by it.",
		},
		{
			Name:        "trend_over_time",
			Description: "Record volume bucketed by hour",
			Query:       "* | timestats count span=1hour",
			TimeRange:   "last_24_hours",
			Notes:       "Use span=1day for multi-week windows.",
		},
		{
			Name:        "search_keyword",
			Description: "Keyword search across all sources",
			Query:       "'connection timeout'",
			Notes:       "Quote multi-word phrases.",
		},
		{
			Name:        "filter_by_severity",
			Description: "Count error records per source",
			Query:       "'Severity' = 'error' | stats count by 'Log Source'",
		},
		{
			Name:        "errors_by_host",
			Description: "Which hosts are producing errors",
			Query:       "'Severity' = 'error' | stats count by 'Host Name' | sort -count",
			TimeRange:   "last_6_hours",
		},
		{
			Name:        "recent_records",
			Description: "Newest records first",
			Query:       "* | sort -Time | head 50",
			TimeRange:   "last_15_min",
		},
		{
			Name:        "volume_by_source",
			Description: "Record volume per log source",
			Query:       "* | stats count by 'Log Source' | sort -count",
			TimeRange:   "last_24_hours",
			Notes:       "A quick inventory of what is actually logging.",
		},
	}
}

// ExampleByName returns the named example, or nil when it does not exist.
func ExampleByName(name string) *Example {
	for _, ex := range Examples() {
		if ex.Name == name {
			return &ex
		}
	}
	return nil
}
