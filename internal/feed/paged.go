package feed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// httpClient is shared by every source. The overall per-source budget comes
// from the aggregator's context; this timeout only bounds a single stuck call.
var httpClient = &http.Client{Timeout: 60 * time.Second}

const userAgent = "paperbot/1.0 (+https://github.com/paperbot-dev/paperbot)"

// pageState tracks where pagination currently stands. The three counters
// cover the upstream styles in play: page numbers (DOAJ, OpenAIRE), record
// offsets (arXiv, DBLP, Semantic Scholar, IEEE, NASA ADS, CORE, OpenReview)
// and opaque cursors (OpenAlex, Crossref, Europe PMC, bioRxiv).
type pageState struct {
	page   int    // 0-based page index
	offset int    // records consumed so far
	cursor string // next cursor token, seeded by the source
}

// page is one parsed upstream response.
type page struct {
	records []Record // mapped, not yet normalized or window-checked
	cursor  string   // next cursor; "" when the upstream offered none
	last    bool     // upstream explicitly signalled the final page
}

// pagedSource runs the pagination loop shared by the upstreams that fit the
// request/parse mold. A source supplies the request builder and the page
// parser; the stop conditions, failure containment, normalization and
// client-side window re-validation are common. Upstream date filters are
// requested where available but never trusted: every non-empty date is
// re-checked against the window here.
type pagedSource struct {
	name string

	// dateDesc marks feeds sorted by publication date descending, which lets
	// the loop stop as soon as a page crosses below the window.
	dateDesc bool

	pageSize int
	maxPages int

	build func(ctx context.Context, win Window, st pageState) (*http.Request, error)
	parse func(body []byte, st pageState) (page, error)
}

// run executes the loop. Upstream failures end it and return the pile
// gathered so far; they never surface as errors.
func (s *pagedSource) run(ctx context.Context, win Window, seedCursor string) []Record {
	st := pageState{cursor: seedCursor}
	var out []Record
	for st.page < s.maxPages {
		req, err := s.build(ctx, win, st)
		if err != nil {
			slog.Warn("bad request", "source", s.name, "error", err)
			break
		}
		body, ok := doRequest(req)
		if !ok {
			break
		}
		pg, err := s.parse(body, st)
		if err != nil {
			slog.Warn("page parse failed", "source", s.name, "page", st.page, "error", err)
			break
		}
		if len(pg.records) == 0 {
			break
		}
		crossedBelow := false
		for _, rec := range pg.records {
			rec = rec.Normalize(s.name)
			if rec.Date != "" && !win.Contains(rec.Date) {
				if s.dateDesc && rec.Date < win.Day {
					crossedBelow = true
				}
				continue
			}
			out = append(out, rec)
		}
		st.offset += len(pg.records)
		st.page++
		if pg.last || (s.dateDesc && crossedBelow) || len(pg.records) < s.pageSize {
			break
		}
		if pg.cursor != "" {
			if pg.cursor == st.cursor {
				break // upstream repeating itself
			}
			st.cursor = pg.cursor
		} else if seedCursor != "" {
			break // cursor-driven feed ran out of cursors
		}
	}
	return out
}

// doRequest performs one upstream call. Transport errors and non-200
// statuses are logged and reported as not-ok so the caller stops paginating.
func doRequest(req *http.Request) ([]byte, bool) {
	req.Header.Set("User-Agent", userAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Warn("request failed", "host", req.URL.Host, "error", err)
		return nil, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		slog.Warn("unexpected status", "host", req.URL.Host, "status", resp.StatusCode)
		return nil, false
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("read body failed", "host", req.URL.Host, "error", err)
		return nil, false
	}
	return body, true
}
