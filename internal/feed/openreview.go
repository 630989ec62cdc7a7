package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// openReviewSource pulls notes from the OpenReview API v1. The API's date
// windowing is inconsistent across deployments: /notes/search takes
// mintcdate/maxtcdate on some, mindate/maxdate on others, and some honor
// neither. The source therefore walks an ordered list of strategies and
// short-circuits on the first one that yields in-window notes; the last
// strategy requests unwindowed notes and relies purely on the client-side
// cdate filter.
type openReviewSource struct{}

func (openReviewSource) Name() string { return "OpenReview" }

type openReviewStrategy struct {
	path   string // "/notes/search" or "/notes"
	window map[string]string
}

func (s openReviewSource) Fetch(ctx context.Context, win Window, params Params) (Result, error) {
	base, err := params.Str("base_url", "https://api.openreview.net")
	if err != nil {
		return Result{}, err
	}
	term, err := params.Str("term", "")
	if err != nil {
		return Result{}, err
	}
	pageSize, err := params.Int("page_size", 200)
	if err != nil {
		return Result{}, err
	}
	maxPages, err := params.Int("max_pages", 5)
	if err != nil {
		return Result{}, err
	}

	minMs := strconv.FormatInt(MillisFromDate(win.Day), 10)
	maxMs := strconv.FormatInt(MillisFromDate(win.NextDay), 10)

	var strategies []openReviewStrategy
	if term != "" {
		strategies = append(strategies,
			openReviewStrategy{"/notes/search", map[string]string{"mintcdate": minMs, "maxtcdate": maxMs}},
			openReviewStrategy{"/notes/search", map[string]string{"mindate": minMs, "maxdate": maxMs}},
		)
	}
	strategies = append(strategies,
		openReviewStrategy{"/notes", map[string]string{"mintcdate": minMs, "maxtcdate": maxMs}},
		openReviewStrategy{"/notes", map[string]string{"mindate": minMs, "maxdate": maxMs}},
		openReviewStrategy{"/notes", nil}, // unwindowed fallback
	)

	for _, strat := range strategies {
		ps := &pagedSource{
			name:     s.Name(),
			pageSize: pageSize,
			maxPages: maxPages,
			build: func(ctx context.Context, win Window, st pageState) (*http.Request, error) {
				q := url.Values{}
				q.Set("limit", strconv.Itoa(pageSize))
				q.Set("offset", strconv.Itoa(st.offset))
				if strat.path == "/notes/search" {
					q.Set("term", term)
					q.Set("content", "all")
				}
				for k, v := range strat.window {
					q.Set(k, v)
				}
				return http.NewRequestWithContext(ctx, http.MethodGet, base+strat.path+"?"+q.Encode(), nil)
			},
			parse: parseOpenReviewPage,
		}
		if records := ps.run(ctx, win, ""); len(records) > 0 {
			return fetched(records), nil
		}
		if ctx.Err() != nil {
			break
		}
	}
	return fetched(nil), nil
}

type openReviewNote struct {
	ID      string `json:"id"`
	Forum   string `json:"forum"`
	CDate   int64  `json:"cdate"`
	Content struct {
		Title    string `json:"title"`
		Abstract string `json:"abstract"`
		TLDR     string `json:"TL;DR"`
		Venue    string `json:"venue"`
		Venueid  string `json:"venueid"`
	} `json:"content"`
}

func parseOpenReviewPage(body []byte, _ pageState) (page, error) {
	var resp struct {
		Notes []openReviewNote `json:"notes"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return page{}, err
	}
	records := make([]Record, 0, len(resp.Notes))
	for _, n := range resp.Notes {
		abstract := n.Content.Abstract
		if abstract == "" {
			abstract = n.Content.TLDR
		}
		venue := n.Content.Venue
		if venue == "" {
			venue = n.Content.Venueid
		}
		forum := n.Forum
		if forum == "" {
			forum = n.ID
		}
		records = append(records, Record{
			ID:       "openreview:" + n.ID,
			Title:    n.Content.Title,
			Abstract: abstract,
			URL:      "https://openreview.net/forum?id=" + forum,
			Venue:    venue,
			Date:     DateFromMillis(n.CDate),
		})
	}
	return page{records: records}, nil
}
