package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// openAlexSource pulls works from the OpenAlex /works endpoint using cursor
// pagination and the publication-date filter. Abstracts arrive as an
// inverted index and are reconstructed locally.
type openAlexSource struct{}

func (openAlexSource) Name() string { return "OpenAlex" }

func (s openAlexSource) Fetch(ctx context.Context, win Window, params Params) (Result, error) {
	base, err := params.Str("base_url", "https://api.openalex.org")
	if err != nil {
		return Result{}, err
	}
	perPage, err := params.Int("per_page", 200)
	if err != nil {
		return Result{}, err
	}
	maxPages, err := params.Int("max_pages", 6)
	if err != nil {
		return Result{}, err
	}
	mailto, err := params.Str("mailto", "")
	if err != nil {
		return Result{}, err
	}

	ps := &pagedSource{
		name:     s.Name(),
		pageSize: perPage,
		maxPages: maxPages,
		build: func(ctx context.Context, win Window, st pageState) (*http.Request, error) {
			q := url.Values{}
			q.Set("filter", fmt.Sprintf("from_publication_date:%s,to_publication_date:%s", win.Day, win.Day))
			q.Set("per-page", strconv.Itoa(perPage))
			q.Set("cursor", st.cursor)
			if mailto != "" {
				q.Set("mailto", mailto)
			}
			return http.NewRequestWithContext(ctx, http.MethodGet, base+"/works?"+q.Encode(), nil)
		},
		parse: parseOpenAlexPage,
	}
	// "*" seeds OpenAlex cursor pagination.
	return fetched(ps.run(ctx, win, "*")), nil
}

type openAlexWork struct {
	ID                    string           `json:"id"`
	Title                 string           `json:"title"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
	DOI                   string           `json:"doi"`
	PublicationDate       string           `json:"publication_date"`
	HostVenue             struct {
		DisplayName string `json:"display_name"`
	} `json:"host_venue"`
	PrimaryLocation struct {
		LandingPageURL string `json:"landing_page_url"`
		Source         struct {
			DisplayName string `json:"display_name"`
		} `json:"source"`
	} `json:"primary_location"`
}

func parseOpenAlexPage(body []byte, _ pageState) (page, error) {
	var resp struct {
		Meta struct {
			NextCursor string `json:"next_cursor"`
		} `json:"meta"`
		Results []openAlexWork `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return page{}, err
	}
	records := make([]Record, 0, len(resp.Results))
	for _, w := range resp.Results {
		doi := NormalizeDOI(w.DOI)
		link := w.PrimaryLocation.LandingPageURL
		if link == "" && doi != "" {
			link = "https://doi.org/" + doi
		}
		venue := w.HostVenue.DisplayName
		if venue == "" {
			venue = w.PrimaryLocation.Source.DisplayName
		}
		records = append(records, Record{
			ID:       w.ID,
			Title:    w.Title,
			Abstract: reconstructAbstract(w.AbstractInvertedIndex),
			DOI:      doi,
			URL:      link,
			Venue:    venue,
			Date:     NormalizeDate(w.PublicationDate),
		})
	}
	return page{
		records: records,
		cursor:  resp.Meta.NextCursor,
		last:    resp.Meta.NextCursor == "",
	}, nil
}

// reconstructAbstract rebuilds plain text from OpenAlex's inverted index
// (word -> list of positions).
func reconstructAbstract(inv map[string][]int) string {
	if len(inv) == 0 {
		return ""
	}
	total := 0
	for _, positions := range inv {
		total += len(positions)
	}
	words := make([]string, total)
	for word, positions := range inv {
		for _, p := range positions {
			if p >= 0 && p < total {
				words[p] = word
			}
		}
	}
	return normalizeSpace(strings.Join(words, " "))
}
