package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// rxivSource covers bioRxiv and medRxiv, which share the Cold Spring Harbor
// details API: /details/{server}/{from}/{to}/{cursor}. The cursor is a plain
// record offset and pages are fixed at 100 entries.
type rxivSource struct {
	server string // "biorxiv" or "medrxiv"
}

const rxivPageSize = 100

func (s rxivSource) Name() string {
	if s.server == "medrxiv" {
		return "medRxiv"
	}
	return "bioRxiv"
}

func (s rxivSource) Fetch(ctx context.Context, win Window, params Params) (Result, error) {
	base, err := params.Str("base_url", "https://api.biorxiv.org")
	if err != nil {
		return Result{}, err
	}
	maxPages, err := params.Int("max_pages", 10)
	if err != nil {
		return Result{}, err
	}

	ps := &pagedSource{
		name:     s.Name(),
		pageSize: rxivPageSize,
		maxPages: maxPages,
		build: func(ctx context.Context, win Window, st pageState) (*http.Request, error) {
			u := fmt.Sprintf("%s/details/%s/%s/%s/%d", base, s.server, win.Day, win.Day, st.offset)
			return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		},
		parse: s.parsePage,
	}
	return fetched(ps.run(ctx, win, "")), nil
}

func (s rxivSource) parsePage(body []byte, _ pageState) (page, error) {
	var resp struct {
		Collection []struct {
			DOI      string `json:"doi"`
			Title    string `json:"title"`
			Abstract string `json:"abstract"`
			Date     string `json:"date"`
			Category string `json:"category"`
			Version  string `json:"version"`
		} `json:"collection"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return page{}, err
	}
	records := make([]Record, 0, len(resp.Collection))
	for _, p := range resp.Collection {
		records = append(records, Record{
			ID:       s.server + ":" + p.DOI,
			Title:    p.Title,
			Abstract: p.Abstract,
			DOI:      p.DOI,
			URL:      "https://doi.org/" + NormalizeDOI(p.DOI),
			Venue:    s.Name() + " " + p.Category,
			Date:     NormalizeDate(p.Date),
		})
	}
	return page{records: records}, nil
}
