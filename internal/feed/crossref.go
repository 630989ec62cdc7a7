package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// crossrefSource queries the Crossref /works endpoint with cursor pagination
// and a server-side publication date filter. Abstracts arrive as JATS XML
// and are stripped to plain text.
type crossrefSource struct{}

func (crossrefSource) Name() string { return "Crossref" }

func (s crossrefSource) Fetch(ctx context.Context, win Window, params Params) (Result, error) {
	base, err := params.Str("base_url", "https://api.crossref.org")
	if err != nil {
		return Result{}, err
	}
	rows, err := params.Int("rows", 200)
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
		pageSize: rows,
		maxPages: maxPages,
		build: func(ctx context.Context, win Window, st pageState) (*http.Request, error) {
			q := url.Values{}
			q.Set("filter", fmt.Sprintf("from-pub-date:%s,until-pub-date:%s", win.Day, win.Day))
			q.Set("rows", strconv.Itoa(rows))
			q.Set("cursor", st.cursor)
			if mailto != "" {
				q.Set("mailto", mailto)
			}
			return http.NewRequestWithContext(ctx, http.MethodGet, base+"/works?"+q.Encode(), nil)
		},
		parse: parseCrossrefPage,
	}
	return fetched(ps.run(ctx, win, "*")), nil
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

// canonical turns Crossref date-parts into YYYY-MM-DD, zero-padding and
// defaulting missing month/day to 01.
func (d crossrefDate) canonical() string {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return ""
	}
	parts := d.DateParts[0]
	year := parts[0]
	month, day := 1, 1
	if len(parts) > 1 {
		month = parts[1]
	}
	if len(parts) > 2 {
		day = parts[2]
	}
	if year < 1000 || month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

type crossrefWork struct {
	DOI             string       `json:"DOI"`
	URL             string       `json:"URL"`
	Title           []string     `json:"title"`
	Abstract        string       `json:"abstract"`
	ContainerTitle  []string     `json:"container-title"`
	Issued          crossrefDate `json:"issued"`
	PublishedPrint  crossrefDate `json:"published-print"`
	PublishedOnline crossrefDate `json:"published-online"`
}

func parseCrossrefPage(body []byte, _ pageState) (page, error) {
	var resp struct {
		Message struct {
			NextCursor string         `json:"next-cursor"`
			Items      []crossrefWork `json:"items"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return page{}, err
	}
	records := make([]Record, 0, len(resp.Message.Items))
	for _, w := range resp.Message.Items {
		title := ""
		if len(w.Title) > 0 {
			title = w.Title[0]
		}
		venue := ""
		if len(w.ContainerTitle) > 0 {
			venue = w.ContainerTitle[0]
		}
		date := w.PublishedOnline.canonical()
		if date == "" {
			date = w.PublishedPrint.canonical()
		}
		if date == "" {
			date = w.Issued.canonical()
		}
		records = append(records, Record{
			ID:       "crossref:" + w.DOI,
			Title:    title,
			Abstract: stripMarkup(w.Abstract),
			DOI:      w.DOI,
			URL:      w.URL,
			Venue:    venue,
			Date:     date,
		})
	}
	return page{
		records: records,
		cursor:  resp.Message.NextCursor,
		last:    resp.Message.NextCursor == "",
	}, nil
}
