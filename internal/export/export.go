// Package export renders query results as CSV or JSON for files and
// downstream tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ziadkadry99/logscope/internal/query"
)

// Render dispatches to the named format, "csv" or "json".
func Render(res *query.Result, format string, includeMetadata bool) (string, error) {
	switch format {
	case "csv":
		return CSV(res)
	case "json":
		return JSON(res, includeMetadata)
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
}

// CSV renders the result with a header row. Cells are stringified; nil
// becomes an empty cell.
func CSV(res *query.Result) (string, error) {
	names := columnNames(res)
	if len(names) == 0 && len(res.Rows) == 0 {
		return "", nil
	}

	var buf strings.Builder
	w := csv.NewWriter(&buf)

	if err := w.Write(names); err != nil {
		return "", fmt.Errorf("writing csv header: %w", err)
	}
	record := make([]string, len(names))
	for _, row := range res.Rows {
		for i := range record {
			if i < len(row) {
				record[i] = cellString(row[i])
			} else {
				record[i] = ""
			}
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing csv: %w", err)
	}
	return buf.String(), nil
}

// jsonEnvelope wraps exported records with result metadata.
type jsonEnvelope struct {
	Metadata jsonMetadata     `json:"metadata"`
	Data     []map[string]any `json:"data"`
}

type jsonMetadata struct {
	TotalCount int            `json:"total_count"`
	IsPartial  bool           `json:"is_partial"`
	Columns    []query.Column `json:"columns"`
}

// JSON renders the result as an indented array of column-keyed objects.
// With includeMetadata the array is wrapped in an envelope carrying the
// total count, partial flag, and column descriptors.
func JSON(res *query.Result, includeMetadata bool) (string, error) {
	names := columnNames(res)

	records := make([]map[string]any, 0, len(res.Rows))
	for _, row := range res.Rows {
		record := make(map[string]any, len(names))
		for i, name := range names {
			if i < len(row) {
				record[name] = row[i]
			} else {
				record[name] = nil
			}
		}
		records = append(records, record)
	}

	var out any = records
	if includeMetadata {
		out = jsonEnvelope{
			Metadata: jsonMetadata{
				TotalCount: res.TotalCount,
				IsPartial:  res.IsPartial,
				Columns:    res.Columns,
			},
			Data: records,
		}
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling export: %w", err)
	}
	return string(b), nil
}

// columnNames returns the result's column names, synthesizing col_0..col_N
// from the first row's width when the result carries none.
func columnNames(res *query.Result) []string {
	if len(res.Columns) > 0 {
		names := make([]string, len(res.Columns))
		for i, col := range res.Columns {
			names[i] = col.Name
		}
		return names
	}
	if len(res.Rows) == 0 {
		return nil
	}
	names := make([]string, len(res.Rows[0]))
	for i := range names {
		names[i] = fmt.Sprintf("col_%d", i)
	}
	return names
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
