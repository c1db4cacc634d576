// Package timerange resolves the time window of a query: either an absolute
// start/end pair or a named relative range ("last_1_hour") anchored at now.
package timerange

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultRange is used when a request carries no time parameters at all.
const DefaultRange = "last_1_hour"

var namedRanges = map[string]time.Duration{
	"last_15_min":   15 * time.Minute,
	"last_30_min":   30 * time.Minute,
	"last_1_hour":   time.Hour,
	"last_3_hours":  3 * time.Hour,
	"last_6_hours":  6 * time.Hour,
	"last_12_hours": 12 * time.Hour,
	"last_24_hours": 24 * time.Hour,
	"last_2_days":   48 * time.Hour,
	"last_7_days":   7 * 24 * time.Hour,
	"last_14_days":  14 * 24 * time.Hour,
	"last_30_days":  30 * 24 * time.Hour,
}

var descriptions = map[string]string{
	"last_15_min":   "Last 15 minutes",
	"last_30_min":   "Last 30 minutes",
	"last_1_hour":   "Last 1 hour",
	"last_3_hours":  "Last 3 hours",
	"last_6_hours":  "Last 6 hours",
	"last_12_hours": "Last 12 hours",
	"last_24_hours": "Last 24 hours",
	"last_2_days":   "Last 2 days",
	"last_7_days":   "Last 7 days",
	"last_14_days":  "Last 14 days",
	"last_30_days":  "Last 30 days",
}

// Accepted absolute formats besides RFC3339. Values without a zone are read
// as UTC.
var laxFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Resolve turns request time parameters into a concrete [start, end) window
// in UTC, anchored at now. Rules: both absolute bounds win; a lone start runs
// to now; a lone end covers the default range before it; otherwise the named
// range (or the default when name is empty) is anchored at now.
func Resolve(start, end, name string, now time.Time) (time.Time, time.Time, error) {
	now = now.UTC()

	if start != "" && end != "" {
		s, err := ParseTime(start)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		e, err := ParseTime(end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return s, e, nil
	}

	if start != "" {
		s, err := ParseTime(start)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return s, now, nil
	}

	if end != "" {
		e, err := ParseTime(end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return e.Add(-namedRanges[DefaultRange]), e, nil
	}

	if name == "" {
		name = DefaultRange
	}
	span, ok := namedRanges[name]
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid time range %q, valid options: %s", name, strings.Join(Names(), ", "))
	}
	return now.Add(-span), now, nil
}

// ParseTime parses an absolute timestamp: RFC3339 first, then the lenient
// formats assumed to be UTC.
func ParseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range laxFormats {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", value)
}

// Valid reports whether name is a known named range.
func Valid(name string) bool {
	_, ok := namedRanges[name]
	return ok
}

// Names lists the named ranges in ascending span order.
func Names() []string {
	names := make([]string, 0, len(namedRanges))
	for name := range namedRanges {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return namedRanges[names[i]] < namedRanges[names[j]]
	})
	return names
}

// Options maps each named range to its human description, for the CLI and the
// tool surfaces.
func Options() map[string]string {
	out := make(map[string]string, len(descriptions))
	for k, v := range descriptions {
		out[k] = v
	}
	return out
}

// FormatDuration renders a window span for humans.
func FormatDuration(start, end time.Time) string {
	d := end.Sub(start)
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%d day(s)", int(d.Hours())/24)
	case d >= time.Hour:
		return fmt.Sprintf("%d hour(s)", int(d.Hours()))
	case d >= time.Minute:
		return fmt.Sprintf("%d minute(s)", int(d.Minutes()))
	default:
		return fmt.Sprintf("%d second(s)", int(d.Seconds()))
	}
}
