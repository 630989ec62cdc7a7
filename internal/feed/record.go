// Package feed implements the daily paper collection engine: the normalized
// Record every upstream emits, the date-window helpers, the shared paginated
// fetch loop, the ordered source registry with its params router, and the
// aggregator that merges per-source piles into one deduplicated corpus.
package feed

import "strings"

// Record is the canonical shape every source emits. All fields are plain
// strings and default to empty; Date, when set, is YYYY-MM-DD and lies inside
// the requested window.
type Record struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	DOI      string `json:"doi"`
	URL      string `json:"url"`
	Venue    string `json:"venue"`
	Date     string `json:"date"`
	Source   string `json:"source"`
}

var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
}

// NormalizeDOI lower-cases a DOI and strips any resolver URL or "doi:" prefix.
func NormalizeDOI(doi string) string {
	doi = strings.ToLower(strings.TrimSpace(doi))
	for _, p := range doiPrefixes {
		doi = strings.TrimPrefix(doi, p)
	}
	return doi
}

// Normalize trims the free-text fields, canonicalizes the DOI, and stamps the
// source name. Every record passes through here before leaving a source.
func (r Record) Normalize(source string) Record {
	r.ID = strings.TrimSpace(r.ID)
	r.Title = strings.TrimSpace(r.Title)
	r.Abstract = strings.TrimSpace(r.Abstract)
	r.DOI = NormalizeDOI(r.DOI)
	r.URL = strings.TrimSpace(r.URL)
	r.Venue = strings.TrimSpace(r.Venue)
	if r.Source == "" {
		r.Source = source
	}
	return r
}

// DedupKey identifies the underlying work across sources. DOI is the
// strongest signal, then the source-native id, then a title-prefix plus date
// fingerprint for records that carry neither.
func (r Record) DedupKey() string {
	if r.DOI != "" {
		return "doi:" + strings.ToLower(r.DOI)
	}
	if r.ID != "" {
		return r.ID
	}
	title := strings.ToLower(r.Title)
	if runes := []rune(title); len(runes) > 120 {
		title = string(runes[:120])
	}
	return "t:" + title + "|d:" + r.Date
}
