package feed

import (
	"strings"
	"testing"
)

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://doi.org/10.1234/ABC", "10.1234/abc"},
		{"http://dx.doi.org/10.1234/abc", "10.1234/abc"},
		{"doi:10.1234/abc", "10.1234/abc"},
		{"10.1234/abc", "10.1234/abc"},
		{"  10.1234/ABC  ", "10.1234/abc"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeDOI(tt.in); got != tt.want {
			t.Errorf("NormalizeDOI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRecordNormalize(t *testing.T) {
	r := Record{Title: "  A Title \n", DOI: "https://doi.org/10.1/X"}.Normalize("OpenAlex")
	if r.Title != "A Title" {
		t.Errorf("Title = %q", r.Title)
	}
	if r.DOI != "10.1/x" {
		t.Errorf("DOI = %q", r.DOI)
	}
	if r.Source != "OpenAlex" {
		t.Errorf("Source = %q", r.Source)
	}

	// an already-stamped source is kept
	r2 := Record{Source: "arXiv"}.Normalize("OpenAlex")
	if r2.Source != "arXiv" {
		t.Errorf("Source overwritten: %q", r2.Source)
	}
}

func TestDedupKeyPrecedence(t *testing.T) {
	withDOI := Record{ID: "x1", DOI: "10.1/A", Title: "T", Date: "2025-01-01"}
	if got := withDOI.DedupKey(); got != "doi:10.1/a" {
		t.Errorf("doi key = %q", got)
	}
	withID := Record{ID: "x1", Title: "T", Date: "2025-01-01"}
	if got := withID.DedupKey(); got != "x1" {
		t.Errorf("id key = %q", got)
	}
	bare := Record{Title: "Some Title", Date: "2025-01-01"}
	if got := bare.DedupKey(); got != "t:some title|d:2025-01-01" {
		t.Errorf("fallback key = %q", got)
	}
}

func TestDedupKeyTitleTruncation(t *testing.T) {
	long := strings.Repeat("ä", 150)
	r := Record{Title: long, Date: "2025-01-01"}
	key := r.DedupKey()
	want := "t:" + strings.Repeat("ä", 120) + "|d:2025-01-01"
	if key != want {
		t.Errorf("truncated key has %d runes in title part", len([]rune(key)))
	}

	// same first 120 runes, different tails: same work
	other := Record{Title: long + "-v2", Date: "2025-01-01"}
	if other.DedupKey() != key {
		t.Error("long titles sharing a 120-rune prefix should collide")
	}
}
