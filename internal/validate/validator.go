// Package validate checks queries before execution: syntax problems,
// unknown field references with fuzzy suggestions, and a coarse cost
// estimate so expensive scans can be flagged up front.
package validate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Cost is a coarse estimate of how expensive a query will be to run.
type Cost string

const (
	CostLow    Cost = "low"
	CostMedium Cost = "medium"
	CostHigh   Cost = "high"
)

// Operators lists the pipeline operators of the query language.
var Operators = []string{
	"where", "stats", "timestats", "sort", "head", "tail", "fields",
	"rename", "eval", "lookup", "join", "dedup", "rex", "replace",
	"cluster", "classify", "link", "bucket",
}

// Report is the outcome of validating one query.
type Report struct {
	Valid         bool     `json:"valid"`
	Errors        []string `json:"errors,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	Suggestions   []string `json:"suggestions,omitempty"`
	EstimatedCost Cost     `json:"estimated_cost"`
	SuggestedFix  string   `json:"suggested_fix,omitempty"`
}

// FieldLister supplies the known field names. The schema service satisfies it.
type FieldLister interface {
	FieldNames(ctx context.Context) ([]string, error)
}

// Validator checks queries against syntax rules and the backend schema.
type Validator struct {
	fields FieldLister
}

// NewValidator creates a validator. fields may be nil, in which case field
// references are not checked.
func NewValidator(fields FieldLister) *Validator {
	return &Validator{fields: fields}
}

// fieldRef matches quoted field references like 'Log Source'.
var fieldRef = regexp.MustCompile(`'([^']+)'`)

// typoFixes maps common operator misspellings to their correction.
var typoFixes = [][2]string{
	{"wehre", "where"},
	{"stast", "stats"},
	{"timestas", "timestats"},
	{"felds", "fields"},
}

// Validate inspects a query and its resolved time window. Syntax and field
// problems become errors; an over-wide window or an expensive shape becomes
// a warning. When the schema is unreachable, field checks are skipped and
// the syntax checks still run.
func (v *Validator) Validate(ctx context.Context, query string, start, end time.Time) Report {
	if strings.TrimSpace(query) == "" {
		return Report{
			Valid:         false,
			Errors:        []string{"Query cannot be empty"},
			Suggestions:   []string{"Enter a search term, or use * to match all records"},
			EstimatedCost: CostLow,
		}
	}

	report := Report{Valid: true}

	fieldErrors, suggestions, fixed := v.checkFields(ctx, query)
	report.Errors = append(report.Errors, fieldErrors...)
	report.Suggestions = append(report.Suggestions, suggestions...)
	if fixed != query {
		report.SuggestedFix = fixed
	}

	report.Errors = append(report.Errors, checkSyntax(query)...)

	if !start.IsZero() && !end.IsZero() {
		if window := end.Sub(start); window > 7*24*time.Hour {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"Time range spans %d days. Consider reducing it for better performance.",
				int(window.Hours()/24)))
		}
	}

	report.EstimatedCost = estimateCost(query)
	if report.EstimatedCost == CostHigh {
		report.Warnings = append(report.Warnings,
			"Query may return a large result set or take significant time. Add filters or reduce the time range.")
	}

	report.Valid = len(report.Errors) == 0
	return report
}

// checkFields verifies every quoted field reference against the schema and
// builds a corrected query from the best fuzzy matches.
func (v *Validator) checkFields(ctx context.Context, query string) (errors, suggestions []string, fixed string) {
	fixed = query
	if v.fields == nil {
		return nil, nil, fixed
	}

	matches := fieldRef.FindAllStringSubmatch(query, -1)
	if len(matches) == 0 {
		return nil, nil, fixed
	}

	available, err := v.fields.FieldNames(ctx)
	if err != nil || len(available) == 0 {
		// Schema unavailable; syntax validation still applies.
		return nil, nil, fixed
	}

	known := make(map[string]bool, len(available))
	for _, name := range available {
		known[strings.ToLower(name)] = true
	}

	for _, m := range matches {
		ref := m[1]
		if known[strings.ToLower(ref)] {
			continue
		}
		similar := SimilarFields(ref, available, 3)
		if len(similar) == 0 {
			errors = append(errors, fmt.Sprintf("Field '%s' not found and no similar fields exist", ref))
			continue
		}
		best := similar[0]
		errors = append(errors, fmt.Sprintf("Field '%s' not found. Did you mean '%s'?", ref, best))
		suggestions = append(suggestions, fmt.Sprintf("Replace '%s' with '%s'", ref, best))
		fixed = strings.ReplaceAll(fixed, "'"+ref+"'", "'"+best+"'")
	}
	return errors, suggestions, fixed
}

func checkSyntax(query string) []string {
	var errors []string

	if strings.Count(query, "'")%2 != 0 {
		errors = append(errors, "Unbalanced single quotes in query")
	}
	if strings.Count(query, "(") != strings.Count(query, ")") {
		errors = append(errors, "Unbalanced parentheses in query")
	}
	if strings.Contains(query, "| |") || strings.HasSuffix(strings.TrimSpace(query), "|") {
		errors = append(errors, "Empty pipe segment in query")
	}

	lower := strings.ToLower(query)
	for _, fix := range typoFixes {
		if strings.Contains(lower, fix[0]) {
			errors = append(errors, fmt.Sprintf("Possible typo: '%s' should be '%s'", fix[0], fix[1]))
		}
	}
	return errors
}

func estimateCost(query string) Cost {
	lower := strings.ToLower(query)

	hasFilter := strings.Contains(lower, "where") || strings.Contains(query, "=")
	hasAggregation := strings.Contains(lower, "stats") || strings.Contains(lower, "count")
	wildcardOnly := strings.TrimSpace(query) == "*"
	hasLimit := strings.Contains(lower, "head") || strings.Contains(lower, "tail")

	switch {
	case wildcardOnly && !hasLimit:
		return CostHigh
	case hasAggregation && hasFilter:
		return CostLow
	case hasFilter || hasLimit:
		return CostLow
	case hasAggregation:
		return CostMedium
	default:
		return CostMedium
	}
}
