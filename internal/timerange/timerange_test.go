package timerange

import (
	"strings"
	"testing"
	"time"
)

var anchor = time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC)

func TestResolveNamedRange(t *testing.T) {
	tests := []struct {
		name string
		span time.Duration
	}{
		{"last_15_min", 15 * time.Minute},
		{"last_1_hour", time.Hour},
		{"last_24_hours", 24 * time.Hour},
		{"last_7_days", 7 * 24 * time.Hour},
		{"last_30_days", 30 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := Resolve("", "", tt.name, anchor)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if !end.Equal(anchor) {
				t.Errorf("end = %v, want anchor", end)
			}
			if got := end.Sub(start); got != tt.span {
				t.Errorf("span = %v, want %v", got, tt.span)
			}
		})
	}
}

func TestResolveDefaultsToLastHour(t *testing.T) {
	start, end, err := Resolve("", "", "", anchor)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := end.Sub(start); got != time.Hour {
		t.Errorf("default span = %v, want 1h", got)
	}
}

func TestResolveAbsolutePair(t *testing.T) {
	start, end, err := Resolve("2026-08-01T00:00:00Z", "2026-08-02T00:00:00Z", "", anchor)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if start.Day() != 1 || end.Day() != 2 {
		t.Errorf("window = [%v, %v)", start, end)
	}
	// Absolute bounds beat a named range when both are given.
	s2, e2, err := Resolve("2026-08-01T00:00:00Z", "2026-08-02T00:00:00Z", "last_15_min", anchor)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !s2.Equal(start) || !e2.Equal(end) {
		t.Error("named range should be ignored when absolute bounds are set")
	}
}

func TestResolveStartOnly(t *testing.T) {
	start, end, err := Resolve("2026-08-22T10:00:00Z", "", "", anchor)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if start.Hour() != 10 {
		t.Errorf("start hour = %d, want 10", start.Hour())
	}
	if !end.Equal(anchor) {
		t.Errorf("end = %v, want anchor (now)", end)
	}
}

func TestResolveEndOnly(t *testing.T) {
	start, end, err := Resolve("", "2026-08-22T06:00:00Z", "", anchor)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !end.Equal(time.Date(2026, 8, 22, 6, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", end)
	}
	if got := end.Sub(start); got != time.Hour {
		t.Errorf("span before lone end = %v, want default 1h", got)
	}
}

func TestResolveUnknownName(t *testing.T) {
	_, _, err := Resolve("", "", "last_year", anchor)
	if err == nil {
		t.Fatal("expected error for unknown range name")
	}
	if !strings.Contains(err.Error(), "last_1_hour") {
		t.Errorf("error should list valid options, got: %v", err)
	}
}

func TestParseTimeLenientFormats(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-08-22T10:30:00Z", time.Date(2026, 8, 22, 10, 30, 0, 0, time.UTC)},
		{"2026-08-22T10:30:00+02:00", time.Date(2026, 8, 22, 8, 30, 0, 0, time.UTC)},
		{"2026-08-22T10:30:00", time.Date(2026, 8, 22, 10, 30, 0, 0, time.UTC)},
		{"2026-08-22 10:30:00", time.Date(2026, 8, 22, 10, 30, 0, 0, time.UTC)},
		{"2026-08-22", time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseTime(tt.in)
		if err != nil {
			t.Errorf("ParseTime(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseTime("yesterday"); err == nil {
		t.Error("expected error for unparseable time")
	}
}

func TestValid(t *testing.T) {
	if !Valid("last_7_days") {
		t.Error("last_7_days should be valid")
	}
	if Valid("last_century") {
		t.Error("last_century should not be valid")
	}
}

func TestNamesSortedBySpan(t *testing.T) {
	names := Names()
	if len(names) != 11 {
		t.Fatalf("len(Names()) = %d, want 11", len(names))
	}
	if names[0] != "last_15_min" {
		t.Errorf("first = %s, want last_15_min", names[0])
	}
	if names[len(names)-1] != "last_30_days" {
		t.Errorf("last = %s, want last_30_days", names[len(names)-1])
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		span time.Duration
		want string
	}{
		{45 * time.Second, "45 second(s)"},
		{30 * time.Minute, "30 minute(s)"},
		{3 * time.Hour, "3 hour(s)"},
		{48 * time.Hour, "2 day(s)"},
	}
	for _, tt := range tests {
		if got := FormatDuration(anchor.Add(-tt.span), anchor); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.span, got, tt.want)
		}
	}
}
