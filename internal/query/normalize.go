package query

import (
	"fmt"
	"sort"

	"github.com/ziadkadry99/logscope/internal/backend"
)

// RowValuer is the accessor row shape: a value that yields its cells on
// demand instead of being a slice or a map.
type RowValuer interface {
	Values() []any
}

// normalize is the single boundary where the backend's loose response shapes
// become the canonical fixed-width table. Past this point a row is always a
// []any exactly as wide as the column list.
func normalize(resp *backend.QueryResponse) *Result {
	columns := make([]Column, 0, len(resp.Columns))
	for _, col := range resp.Columns {
		columns = append(columns, Column{
			Name:        col.Name,
			DisplayName: col.DisplayName,
			Type:        col.Type,
		})
	}

	// No descriptors but data present: synthesize col_0..col_{n-1} from the
	// first row's width.
	synthetic := false
	if len(columns) == 0 && len(resp.Rows) > 0 {
		synthetic = true
		width := rawWidth(resp.Rows[0])
		for i := 0; i < width; i++ {
			columns = append(columns, Column{Name: fmt.Sprintf("col_%d", i)})
		}
	}

	rows := make([][]any, 0, len(resp.Rows))
	for _, raw := range resp.Rows {
		rows = append(rows, normalizeRow(raw, columns, synthetic))
	}

	total := resp.TotalCount
	if total < len(rows) {
		total = len(rows)
	}

	return &Result{
		Columns:    columns,
		Rows:       rows,
		TotalCount: total,
		IsPartial:  resp.Partial,
	}
}

// normalizeRow coerces one raw row into a []any aligned to columns. Ordered
// rows are padded or truncated to the column width; object rows align by
// column name with nil for missing keys; accessor rows are materialized
// first. Anything else becomes a single-cell row.
func normalizeRow(raw any, columns []Column, synthetic bool) []any {
	width := len(columns)

	switch v := raw.(type) {
	case []any:
		return fitWidth(v, width)
	case map[string]any:
		return mapRow(v, columns, synthetic)
	case RowValuer:
		return fitWidth(v.Values(), width)
	case nil:
		return fitWidth(nil, width)
	default:
		return fitWidth([]any{v}, width)
	}
}

func fitWidth(values []any, width int) []any {
	if width == 0 {
		width = len(values)
	}
	row := make([]any, width)
	copy(row, values)
	return row
}

func mapRow(v map[string]any, columns []Column, synthetic bool) []any {
	// Synthetic columns carry no names to align by; sorted key order keeps
	// the output deterministic.
	if synthetic {
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make([]any, 0, len(keys))
		for _, k := range keys {
			values = append(values, v[k])
		}
		return fitWidth(values, len(columns))
	}

	row := make([]any, len(columns))
	for i, col := range columns {
		if cell, ok := v[col.Name]; ok {
			row[i] = cell
		} else if cell, ok := v[col.DisplayName]; ok {
			row[i] = cell
		}
	}
	return row
}

func rawWidth(raw any) int {
	switch v := raw.(type) {
	case []any:
		return len(v)
	case map[string]any:
		return len(v)
	case RowValuer:
		return len(v.Values())
	case nil:
		return 0
	default:
		return 1
	}
}
