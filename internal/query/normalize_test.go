package query

import (
	"reflect"
	"testing"

	"github.com/ziadkadry99/logscope/internal/backend"
)

type accessorRow struct {
	vals []any
}

func (r accessorRow) Values() []any { return r.vals }

func TestNormalizeRowShapesAgree(t *testing.T) {
	columns := []backend.ColumnDesc{{Name: "host"}, {Name: "count"}, {Name: "ok"}}
	want := []any{"web-1", 7.0, true}

	shapes := map[string]any{
		"list":     []any{"web-1", 7.0, true},
		"map":      map[string]any{"host": "web-1", "count": 7.0, "ok": true},
		"accessor": accessorRow{vals: []any{"web-1", 7.0, true}},
	}

	for name, raw := range shapes {
		t.Run(name, func(t *testing.T) {
			res := normalize(&backend.QueryResponse{Columns: columns, Rows: []any{raw}})
			if len(res.Rows) != 1 {
				t.Fatalf("rows = %d, want 1", len(res.Rows))
			}
			if !reflect.DeepEqual(res.Rows[0], want) {
				t.Errorf("row = %v, want %v", res.Rows[0], want)
			}
		})
	}
}

func TestNormalizeSyntheticColumns(t *testing.T) {
	res := normalize(&backend.QueryResponse{
		Rows: []any{[]any{"a", "b", "c"}, []any{"d", "e", "f"}},
	})

	if len(res.Columns) != 3 {
		t.Fatalf("columns = %d, want 3", len(res.Columns))
	}
	for i, want := range []string{"col_0", "col_1", "col_2"} {
		if res.Columns[i].Name != want {
			t.Errorf("column %d = %q, want %q", i, res.Columns[i].Name, want)
		}
	}
}

func TestNormalizeSyntheticColumnsMapRows(t *testing.T) {
	// With no descriptors, object rows align by sorted key so output stays
	// deterministic.
	res := normalize(&backend.QueryResponse{
		Rows: []any{map[string]any{"b": 2.0, "a": 1.0}},
	})

	if len(res.Columns) != 2 {
		t.Fatalf("columns = %d, want 2", len(res.Columns))
	}
	if !reflect.DeepEqual(res.Rows[0], []any{1.0, 2.0}) {
		t.Errorf("row = %v, want sorted-key order [1 2]", res.Rows[0])
	}
}

func TestNormalizeFixedWidth(t *testing.T) {
	columns := []backend.ColumnDesc{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	// A short row, a long row, a sparse map row, a stray scalar, and a nil
	// row all come out exactly three cells wide.
	res := normalize(&backend.QueryResponse{
		Columns: columns,
		Rows: []any{
			[]any{1.0},
			[]any{1.0, 2.0, 3.0, 4.0},
			map[string]any{"a": 1.0},
			"scalar",
			nil,
		},
	})

	for i, row := range res.Rows {
		if len(row) != 3 {
			t.Errorf("row %d width = %d, want 3", i, len(row))
		}
	}
	if res.Rows[0][1] != nil {
		t.Errorf("padded cell = %v, want nil", res.Rows[0][1])
	}
	if res.Rows[1][2] != 3.0 {
		t.Errorf("truncated row kept %v at index 2, want 3", res.Rows[1][2])
	}
	if res.Rows[2][0] != 1.0 || res.Rows[2][1] != nil {
		t.Errorf("sparse map row = %v", res.Rows[2])
	}
	if res.Rows[3][0] != "scalar" {
		t.Errorf("scalar row = %v", res.Rows[3])
	}
}

func TestNormalizeMapAlignsByDisplayName(t *testing.T) {
	res := normalize(&backend.QueryResponse{
		Columns: []backend.ColumnDesc{{Name: "hname", DisplayName: "Host Name"}},
		Rows:    []any{map[string]any{"Host Name": "web-1"}},
	})
	if res.Rows[0][0] != "web-1" {
		t.Errorf("row = %v, want display-name fallback to land web-1", res.Rows[0])
	}
}

func TestNormalizeTotalCountFloor(t *testing.T) {
	res := normalize(&backend.QueryResponse{
		Columns: []backend.ColumnDesc{{Name: "a"}},
		Rows:    []any{[]any{1.0}, []any{2.0}},
	})
	if res.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want floor at row count", res.TotalCount)
	}

	res = normalize(&backend.QueryResponse{
		Columns:    []backend.ColumnDesc{{Name: "a"}},
		Rows:       []any{[]any{1.0}},
		TotalCount: 500,
	})
	if res.TotalCount != 500 {
		t.Errorf("TotalCount = %d, want backend-reported 500", res.TotalCount)
	}
}

func TestNormalizeEmptyResponse(t *testing.T) {
	res := normalize(&backend.QueryResponse{})
	if len(res.Columns) != 0 || len(res.Rows) != 0 || res.TotalCount != 0 {
		t.Errorf("empty response normalized to %+v", res)
	}
	if res.IsPartial {
		t.Error("empty response should not be partial")
	}
}

func TestNormalizeCarriesPartialFlag(t *testing.T) {
	res := normalize(&backend.QueryResponse{
		Columns: []backend.ColumnDesc{{Name: "a"}},
		Rows:    []any{[]any{1.0}},
		Partial: true,
	})
	if !res.IsPartial {
		t.Error("partial flag dropped during normalization")
	}
}
