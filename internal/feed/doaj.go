package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// doajSource queries the DOAJ article search with page-number pagination.
// Records hide inside a bibjson envelope and the DOI has to be dug out of a
// typed identifier list.
type doajSource struct{}

func (doajSource) Name() string { return "DOAJ" }

func (s doajSource) Fetch(ctx context.Context, win Window, params Params) (Result, error) {
	base, err := params.Str("base_url", "https://doaj.org/api/search/articles")
	if err != nil {
		return Result{}, err
	}
	pageSize, err := params.Int("page_size", 100)
	if err != nil {
		return Result{}, err
	}
	maxPages, err := params.Int("max_pages", 5)
	if err != nil {
		return Result{}, err
	}

	search := fmt.Sprintf("created_date:[%s TO %s]", win.Day, win.NextDay)

	ps := &pagedSource{
		name:     s.Name(),
		pageSize: pageSize,
		maxPages: maxPages,
		build: func(ctx context.Context, win Window, st pageState) (*http.Request, error) {
			q := url.Values{}
			q.Set("pageSize", strconv.Itoa(pageSize))
			q.Set("page", strconv.Itoa(st.page+1)) // 1-based
			u := base + "/" + url.PathEscape(search) + "?" + q.Encode()
			return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		},
		parse: parseDOAJPage,
	}
	return fetched(ps.run(ctx, win, "")), nil
}

func parseDOAJPage(body []byte, _ pageState) (page, error) {
	var resp struct {
		Results []struct {
			ID      string `json:"id"`
			BibJSON struct {
				Title    string `json:"title"`
				Abstract string `json:"abstract"`
				Year     string `json:"year"`
				Month    string `json:"month"`
				Journal  struct {
					Title string `json:"title"`
				} `json:"journal"`
				Identifier []struct {
					Type string `json:"type"`
					ID   string `json:"id"`
				} `json:"identifier"`
				Link []struct {
					Type string `json:"type"`
					URL  string `json:"url"`
				} `json:"link"`
			} `json:"bibjson"`
			CreatedDate string `json:"created_date"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return page{}, err
	}
	records := make([]Record, 0, len(resp.Results))
	for _, r := range resp.Results {
		b := r.BibJSON
		doi := ""
		for _, id := range b.Identifier {
			if id.Type == "doi" && id.ID != "" {
				doi = id.ID
				break
			}
		}
		link := ""
		for _, l := range b.Link {
			if l.Type == "fulltext" && l.URL != "" {
				link = l.URL
				break
			}
		}
		if link == "" && doi != "" {
			link = "https://doi.org/" + NormalizeDOI(doi)
		}
		date := NormalizeDate(r.CreatedDate)
		if date == "" && b.Year != "" {
			raw := b.Year
			if b.Month != "" {
				raw += "-" + b.Month
			}
			date = NormalizeDate(raw)
		}
		records = append(records, Record{
			ID:       "doaj:" + r.ID,
			Title:    b.Title,
			Abstract: b.Abstract,
			DOI:      doi,
			URL:      link,
			Venue:    b.Journal.Title,
			Date:     date,
		})
	}
	return page{records: records}, nil
}
