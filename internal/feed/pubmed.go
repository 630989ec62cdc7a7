package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// pubmedSource runs the NCBI E-utilities two-phase flow: esearch pages of
// PMIDs filtered on publication date, then esummary in batches of 50 ids.
// It does not fit the shared pagination template because the record data
// lives behind the second phase.
type pubmedSource struct{}

func (pubmedSource) Name() string { return "PubMed" }

const pubmedSummaryBatch = 50

func (s pubmedSource) Fetch(ctx context.Context, win Window, params Params) (Result, error) {
	base, err := params.Str("base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	if err != nil {
		return Result{}, err
	}
	term, err := params.Str("term", "")
	if err != nil {
		return Result{}, err
	}
	retmax, err := params.Int("retmax", 200)
	if err != nil {
		return Result{}, err
	}
	maxPages, err := params.Int("max_pages", 10)
	if err != nil {
		return Result{}, err
	}
	apiKey, err := params.Str("api_key", "")
	if err != nil {
		return Result{}, err
	}

	ids := s.searchIDs(ctx, base, term, apiKey, win, retmax, maxPages)
	if len(ids) == 0 {
		return fetched(nil), nil
	}

	var out []Record
	for start := 0; start < len(ids); start += pubmedSummaryBatch {
		end := min(start+pubmedSummaryBatch, len(ids))
		batch, ok := s.summarize(ctx, base, apiKey, ids[start:end])
		if !ok {
			break
		}
		for _, rec := range batch {
			rec = rec.Normalize(s.Name())
			if rec.Date != "" && !win.Contains(rec.Date) {
				continue
			}
			out = append(out, rec)
		}
	}
	return fetched(out), nil
}

// searchIDs pages through esearch until the id list is exhausted.
func (s pubmedSource) searchIDs(ctx context.Context, base, term, apiKey string, win Window, retmax, maxPages int) []string {
	var ids []string
	for page := 0; page < maxPages; page++ {
		q := url.Values{}
		q.Set("db", "pubmed")
		q.Set("retmode", "json")
		q.Set("datetype", "pdat")
		q.Set("mindate", strings.ReplaceAll(win.Day, "-", "/"))
		q.Set("maxdate", strings.ReplaceAll(win.Day, "-", "/"))
		q.Set("retmax", strconv.Itoa(retmax))
		q.Set("retstart", strconv.Itoa(len(ids)))
		if term != "" {
			q.Set("term", term)
		} else {
			q.Set("term", "all[sb]")
		}
		if apiKey != "" {
			q.Set("api_key", apiKey)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/esearch.fcgi?"+q.Encode(), nil)
		if err != nil {
			break
		}
		body, ok := doRequest(req)
		if !ok {
			break
		}
		var resp struct {
			ESearchResult struct {
				Count  string   `json:"count"`
				IDList []string `json:"idlist"`
			} `json:"esearchresult"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			break
		}
		if len(resp.ESearchResult.IDList) == 0 {
			break
		}
		ids = append(ids, resp.ESearchResult.IDList...)
		count, _ := strconv.Atoi(resp.ESearchResult.Count)
		if len(resp.ESearchResult.IDList) < retmax || len(ids) >= count {
			break
		}
	}
	return ids
}

// summarize fetches esummary for one id batch. The result object is a map
// keyed by PMID with a "uids" sidecar, hence the RawMessage decoding.
func (s pubmedSource) summarize(ctx context.Context, base, apiKey string, ids []string) ([]Record, bool) {
	q := url.Values{}
	q.Set("db", "pubmed")
	q.Set("retmode", "json")
	q.Set("id", strings.Join(ids, ","))
	if apiKey != "" {
		q.Set("api_key", apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/esummary.fcgi?"+q.Encode(), nil)
	if err != nil {
		return nil, false
	}
	body, ok := doRequest(req)
	if !ok {
		return nil, false
	}
	var resp struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false
	}
	var uids []string
	if raw, ok := resp.Result["uids"]; ok {
		_ = json.Unmarshal(raw, &uids)
	}
	records := make([]Record, 0, len(uids))
	for _, uid := range uids {
		raw, ok := resp.Result[uid]
		if !ok {
			continue
		}
		var doc struct {
			UID         string `json:"uid"`
			Title       string `json:"title"`
			FullJournal string `json:"fulljournalname"`
			PubDate     string `json:"pubdate"`
			// esummary carries no abstract; the elocation line (usually the
			// DOI statement) is the only free text available without a
			// second efetch round trip per article.
			ELocationID string `json:"elocationid"`
			ArticleIDs  []struct {
				IDType string `json:"idtype"`
				Value  string `json:"value"`
			} `json:"articleids"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		doi := ""
		for _, aid := range doc.ArticleIDs {
			if aid.IDType == "doi" {
				doi = aid.Value
				break
			}
		}
		records = append(records, Record{
			ID:       "pmid:" + doc.UID,
			Title:    doc.Title,
			Abstract: doc.ELocationID,
			DOI:      doi,
			URL:      "https://pubmed.ncbi.nlm.nih.gov/" + doc.UID + "/",
			Venue:    doc.FullJournal,
			Date:     normalizePubmedDate(doc.PubDate),
		})
	}
	return records, true
}

var pubmedDateLayouts = []string{"2006 Jan 2", "2006 Jan", "2006"}

// normalizePubmedDate handles the "2025 Mar 15" style esummary dates before
// falling back to the common normalizer.
func normalizePubmedDate(raw string) string {
	s := strings.TrimSpace(raw)
	for _, layout := range pubmedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return NormalizeDate(s)
}
