package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Fixed patterns observed in the CMBD exports, tried in order. Values are
// calendar times in the hospital's local zone, not UTC.
var (
	dmyTimeRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})\s+(\d{1,2}):(\d{2})$`)
	dmyRe     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	ymdRe     = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
)

// Layouts for free-form values that slip past the fixed patterns.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02-01-2006",
	"2 January 2006",
	"January 2, 2006",
}

// ParseDate parses a heterogeneous date string into a local-time timestamp.
// Returns nil for empty or unparseable input; never panics.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if m := dmyTimeRe.FindStringSubmatch(s); m != nil {
		return makeDate(atoi(m[3]), atoi(m[2]), atoi(m[1]), atoi(m[4]), atoi(m[5]))
	}
	if m := dmyRe.FindStringSubmatch(s); m != nil {
		return makeDate(atoi(m[3]), atoi(m[2]), atoi(m[1]), 0, 0)
	}
	if m := ymdRe.FindStringSubmatch(s); m != nil {
		return makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), 0, 0)
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t
		}
	}
	return nil
}

// DaysBetween returns the stay length in whole days between two timestamps,
// rounding partial days up. Never negative.
func DaysBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	d := end.Sub(start)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// makeDate builds a local timestamp, rejecting values like 32/01 that
// time.Date would silently normalize into the next month.
func makeDate(year, month, day, hour, minute int) *time.Time {
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local)
	// Hour may legitimately shift across a DST boundary, so only the
	// calendar date is checked.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return nil
	}
	return &t
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
