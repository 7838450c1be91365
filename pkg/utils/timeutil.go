package utils

import (
	"sort"
	"strings"
	"time"
)

// dateLayouts are the date formats seen across upstream providers.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// ParseDate parses a date in any known upstream layout.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate re-renders any known upstream date layout as YYYY-MM-DD.
// Unparseable input is returned unchanged.
func NormalizeDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return strings.TrimSpace(s)
	}
	return t.Format("2006-01-02")
}

// OptionalDate normalizes s like NormalizeDate but returns "" for
// placeholders such as "None" or "0000-00-00".
func OptionalDate(s string) string {
	t, ok := ParseDate(s)
	if !ok || t.Year() < 1900 {
		return ""
	}
	return t.Format("2006-01-02")
}

// UnixDate converts a unix timestamp in seconds to YYYY-MM-DD (UTC).
func UnixDate(sec int64) string {
	if sec <= 0 {
		return ""
	}
	return time.Unix(sec, 0).UTC().Format("2006-01-02")
}

// LocalDate returns the calendar date of t in its own location.
func LocalDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FiscalYear returns the leading four-digit year of a YYYY-MM-DD date string.
func FiscalYear(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// SortNewestFirst orders items by descending YYYY-MM-DD date. Ties keep
// their upstream order.
func SortNewestFirst[T any](items []T, date func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return date(items[i]) > date(items[j])
	})
}
