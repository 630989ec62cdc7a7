package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
)

// nasaADSSource queries the NASA ADS Solr endpoint. A bearer token is
// mandatory (param or ADS_API_TOKEN env); without one the source reports
// itself unavailable. ADS pubdates are month-granular (YYYY-MM-00), so most
// records normalize to the first of the month and the window check only
// keeps them on that day; the fq filter still trims server-side.
type nasaADSSource struct{}

func (nasaADSSource) Name() string { return "NASA ADS" }

func (s nasaADSSource) Fetch(ctx context.Context, win Window, params Params) (Result, error) {
	token, err := params.Str("api_token", "")
	if err != nil {
		return Result{}, err
	}
	if token == "" {
		token = os.Getenv("ADS_API_TOKEN")
	}
	if token == "" {
		return unavailable(), nil
	}
	base, err := params.Str("base_url", "https://api.adsabs.harvard.edu/v1/search/query")
	if err != nil {
		return Result{}, err
	}
	query, err := params.Str("query", "*:*")
	if err != nil {
		return Result{}, err
	}
	rows, err := params.Int("rows", 200)
	if err != nil {
		return Result{}, err
	}
	maxPages, err := params.Int("max_pages", 5)
	if err != nil {
		return Result{}, err
	}

	ps := &pagedSource{
		name:     s.Name(),
		pageSize: rows,
		maxPages: maxPages,
		build: func(ctx context.Context, win Window, st pageState) (*http.Request, error) {
			q := url.Values{}
			q.Set("q", query)
			q.Set("fq", fmt.Sprintf("pubdate:[%s TO %s]", win.Day, win.Day))
			q.Set("fl", "bibcode,title,abstract,doi,pub,pubdate")
			q.Set("rows", strconv.Itoa(rows))
			q.Set("start", strconv.Itoa(st.offset))
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Authorization", "Bearer "+token)
			return req, nil
		},
		parse: parseADSPage,
	}
	return fetched(ps.run(ctx, win, "")), nil
}

func parseADSPage(body []byte, _ pageState) (page, error) {
	var resp struct {
		Response struct {
			Docs []struct {
				Bibcode  string   `json:"bibcode"`
				Title    []string `json:"title"`
				Abstract string   `json:"abstract"`
				DOI      []string `json:"doi"`
				Pub      string   `json:"pub"`
				PubDate  string   `json:"pubdate"`
			} `json:"docs"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return page{}, err
	}
	docs := resp.Response.Docs
	records := make([]Record, 0, len(docs))
	for _, d := range docs {
		title := ""
		if len(d.Title) > 0 {
			title = d.Title[0]
		}
		doi := ""
		if len(d.DOI) > 0 {
			doi = d.DOI[0]
		}
		records = append(records, Record{
			ID:       "ads:" + d.Bibcode,
			Title:    title,
			Abstract: d.Abstract,
			DOI:      doi,
			URL:      "https://ui.adsabs.harvard.edu/abs/" + d.Bibcode,
			Venue:    d.Pub,
			Date:     normalizeADSDate(d.PubDate),
		})
	}
	return page{records: records}, nil
}

// normalizeADSDate maps ADS "YYYY-MM-00" pubdates onto the common form.
func normalizeADSDate(raw string) string {
	if len(raw) == 10 && raw[8:] == "00" {
		raw = raw[:8] + "01"
	}
	return NormalizeDate(raw)
}
