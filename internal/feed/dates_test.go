package feed

import (
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-03-07", "2025-03-07"},
		{"2025-03", "2025-03-01"},
		{"2025", "2025-01-01"},
		{"2025-3-7", "2025-03-07"},
		{"2025-10-23T17:31:15Z", "2025-10-23"},
		{"2025-10-23T17:31:15+02:00", "2025-10-23"},
		{"2025-10-23 17:31:15", "2025-10-23"},
		{"", ""},
		{"unknown", ""},
		{"Mar 2025", ""},
		{"2025-13", ""},
		{"2025-00-01", ""},
		{"99", ""},
	}
	for _, tt := range tests {
		if got := NormalizeDate(tt.in); got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWindowContains(t *testing.T) {
	win := DayWindow(time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC))
	if win.Day != "2025-03-07" || win.NextDay != "2025-03-08" {
		t.Fatalf("unexpected window: %+v", win)
	}
	tests := []struct {
		date string
		want bool
	}{
		{"2025-03-07", true},  // lower bound inclusive
		{"2025-03-08", false}, // upper bound exclusive
		{"2025-03-06", false},
		{"2025-03-09", false},
	}
	for _, tt := range tests {
		if got := win.Contains(tt.date); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestParseDay(t *testing.T) {
	win, err := ParseDay("2024-12-31")
	if err != nil {
		t.Fatalf("ParseDay: %v", err)
	}
	if win.NextDay != "2025-01-01" {
		t.Errorf("NextDay = %q, want year rollover", win.NextDay)
	}
	if _, err := ParseDay("31/12/2024"); err == nil {
		t.Error("expected error for non-canonical day")
	}
}

func TestDateFromMillis(t *testing.T) {
	ms := time.Date(2025, 3, 7, 23, 59, 0, 0, time.UTC).UnixMilli()
	if got := DateFromMillis(ms); got != "2025-03-07" {
		t.Errorf("DateFromMillis = %q", got)
	}
	if got := DateFromMillis(0); got != "" {
		t.Errorf("DateFromMillis(0) = %q, want empty", got)
	}
}

func TestMillisRoundTrip(t *testing.T) {
	if got := DateFromMillis(MillisFromDate("2025-03-07")); got != "2025-03-07" {
		t.Errorf("round trip = %q", got)
	}
}
