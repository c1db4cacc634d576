package validate

import (
	"testing"
)

func TestSimilarFieldsExactFirst(t *testing.T) {
	got := SimilarFields("host", []string{"hostname", "host", "host_name"}, 3)
	if len(got) == 0 || got[0] != "host" {
		t.Errorf("got = %v, want exact match first", got)
	}
}

func TestSimilarFieldsTypo(t *testing.T) {
	available := []string{"Severity", "Host Name", "Log Source"}
	got := SimilarFields("severty", available, 3)
	if len(got) != 1 || got[0] != "Severity" {
		t.Errorf("got = %v, want [Severity]", got)
	}
}

func TestSimilarFieldsContainmentOutranksEdits(t *testing.T) {
	got := SimilarFields("time", []string{"tier", "timestamp"}, 3)
	if len(got) != 2 {
		t.Fatalf("got = %v, want 2 matches", got)
	}
	if got[0] != "timestamp" {
		t.Errorf("got = %v, want timestamp ranked first", got)
	}
}

func TestSimilarFieldsThreshold(t *testing.T) {
	got := SimilarFields("zzz_qqq", []string{"host", "severity", "timestamp"}, 3)
	if len(got) != 0 {
		t.Errorf("got = %v, want nothing above the threshold", got)
	}
}

func TestSimilarFieldsLimit(t *testing.T) {
	available := []string{"field_a", "field_b", "field_c", "field_d"}
	got := SimilarFields("field", available, 2)
	if len(got) != 2 {
		t.Errorf("got = %v, want 2", got)
	}
}

func TestSimilarFieldsEmptyInput(t *testing.T) {
	if got := SimilarFields("x", nil, 3); got != nil {
		t.Errorf("got = %v, want nil for empty field list", got)
	}
	if got := SimilarFields("x", []string{"y"}, 0); got != nil {
		t.Errorf("got = %v, want nil for zero limit", got)
	}
}
