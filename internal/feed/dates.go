package feed

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is the half-open date interval [Day, NextDay). Both bounds are
// YYYY-MM-DD, so lexicographic comparison is date comparison.
type Window struct {
	Day     string
	NextDay string
}

// DayWindow returns the window covering exactly one UTC calendar day.
func DayWindow(day time.Time) Window {
	d := day.UTC()
	return Window{
		Day:     d.Format("2006-01-02"),
		NextDay: d.AddDate(0, 0, 1).Format("2006-01-02"),
	}
}

// ParseDay builds the window for a YYYY-MM-DD string.
func ParseDay(day string) (Window, error) {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return Window{}, fmt.Errorf("parse day %q: %w", day, err)
	}
	return DayWindow(t), nil
}

// Contains reports whether a canonical date lies inside the window. Empty
// dates mean "unknown" and are never tested here; callers keep them.
func (w Window) Contains(date string) bool {
	return date >= w.Day && date < w.NextDay
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NormalizeDate converts an upstream date value into canonical YYYY-MM-DD.
// Accepted inputs: YYYY, YYYY-MM, YYYY-MM-DD (missing parts default to 01)
// and RFC-3339 / Atom timestamps. Anything else normalizes to "" (unknown),
// never to a guess.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "T ") {
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC().Format("2006-01-02")
			}
		}
	}
	parts := strings.SplitN(s, "-", 3)
	nums := make([]int, 0, 3)
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return ""
		}
		nums = append(nums, n)
	}
	year := nums[0]
	month, day := 1, 1
	if len(nums) > 1 {
		month = nums[1]
	}
	if len(nums) > 2 {
		day = nums[2]
	}
	if year < 1000 || year > 9999 || month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// DateFromMillis converts an epoch-millisecond timestamp to a canonical date.
func DateFromMillis(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}

// MillisFromDate converts a canonical date to epoch milliseconds at UTC
// midnight, for upstreams that window on millisecond timestamps.
func MillisFromDate(date string) int64 {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}
