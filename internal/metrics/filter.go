package metrics

import (
	"strings"
	"time"
)

// Day normalizes t to local midnight so that comparisons are insensitive to
// whatever time component the store attached to the calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// MonthToDateRange returns the window from the first day of now's month
// through now.
func MonthToDateRange(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, Day(now)
}

// FilterByDateRange keeps records whose day falls inside the inclusive
// window. Either bound may be nil to leave that side open. Records with a
// zero date are excluded rather than reported as an error: one bad row must
// not abort a report.
func FilterByDateRange(records []Record, start, end *time.Time) []Record {
	var startDay, endDay time.Time
	if start != nil {
		startDay = Day(*start)
	}
	if end != nil {
		endDay = Day(*end)
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		day := Day(r.Date)
		if start != nil && day.Before(startDay) {
			continue
		}
		if end != nil && day.After(endDay) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterByDay keeps records on exactly the given calendar day.
func FilterByDay(records []Record, day time.Time) []Record {
	target := Day(day)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		if Day(r.Date).Equal(target) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByMetricPrefix keeps records whose metric name starts with prefix,
// e.g. "DDS" to narrow a report to one product line.
func FilterByMetricPrefix(records []Record, prefix string) []Record {
	if prefix == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if strings.HasPrefix(r.Metric, prefix) {
			out = append(out, r)
		}
	}
	return out
}
