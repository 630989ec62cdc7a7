package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseOpenAlexPage(t *testing.T) {
	body := []byte(`{
		"meta": {"next_cursor": "abc123"},
		"results": [{
			"id": "https://openalex.org/W1",
			"title": "Graph Learning",
			"abstract_inverted_index": {"Deep": [0], "graphs": [2], "learning": [1], "rock": [3]},
			"doi": "https://doi.org/10.1234/GL",
			"publication_date": "2025-03-07",
			"host_venue": {"display_name": "NeurIPS"},
			"primary_location": {"landing_page_url": "https://example.org/w1"}
		}]
	}`)
	pg, err := parseOpenAlexPage(body, pageState{})
	if err != nil {
		t.Fatal(err)
	}
	if pg.cursor != "abc123" || pg.last {
		t.Errorf("cursor handling: %+v", pg)
	}
	r := pg.records[0]
	if r.Abstract != "Deep learning graphs rock" {
		t.Errorf("inverted index reconstruction = %q", r.Abstract)
	}
	if r.DOI != "10.1234/gl" {
		t.Errorf("doi = %q", r.DOI)
	}
	if r.Venue != "NeurIPS" || r.Date != "2025-03-07" {
		t.Errorf("record = %+v", r)
	}
}

func TestParseArxivFeed(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <entry>
    <id>http://arxiv.org/abs/2503.01234v1</id>
    <title>Attention Is Enough,
      Actually</title>
    <summary>We revisit attention.</summary>
    <published>2025-03-07T01:02:03Z</published>
    <arxiv:doi>10.48550/arXiv.2503.01234</arxiv:doi>
    <arxiv:primary_category term="cs.LG"/>
    <link href="http://arxiv.org/abs/2503.01234v1" rel="alternate" type="text/html"/>
  </entry>
</feed>`)
	pg, err := parseArxivFeed(body, pageState{})
	if err != nil {
		t.Fatal(err)
	}
	r := pg.records[0]
	if r.Title != "Attention Is Enough, Actually" {
		t.Errorf("title whitespace not collapsed: %q", r.Title)
	}
	if r.Date != "2025-03-07" {
		t.Errorf("date = %q", r.Date)
	}
	if r.Venue != "arXiv cs.LG" {
		t.Errorf("venue = %q", r.Venue)
	}
	if r.DOI != "10.48550/arXiv.2503.01234" {
		t.Errorf("doi = %q", r.DOI)
	}
}

func TestParseCrossrefPage(t *testing.T) {
	body := []byte(`{
		"message": {
			"next-cursor": "next",
			"items": [{
				"DOI": "10.1/a",
				"URL": "https://doi.org/10.1/a",
				"title": ["On Things"],
				"abstract": "<jats:p>Something <jats:italic>fancy</jats:italic>.</jats:p>",
				"container-title": ["Journal of Things"],
				"issued": {"date-parts": [[2025]]},
				"published-online": {"date-parts": [[2025, 3, 7]]}
			}]
		}
	}`)
	pg, err := parseCrossrefPage(body, pageState{})
	if err != nil {
		t.Fatal(err)
	}
	r := pg.records[0]
	if r.Date != "2025-03-07" {
		t.Errorf("published-online should win over issued: %q", r.Date)
	}
	if r.Abstract != "Something fancy ." && r.Abstract != "Something fancy." {
		t.Errorf("jats not stripped: %q", r.Abstract)
	}
	if r.Title != "On Things" || r.Venue != "Journal of Things" {
		t.Errorf("record = %+v", r)
	}
}

func TestCrossrefDateParts(t *testing.T) {
	tests := []struct {
		parts [][]int
		want  string
	}{
		{[][]int{{2025, 3, 7}}, "2025-03-07"},
		{[][]int{{2025, 3}}, "2025-03-01"},
		{[][]int{{2025}}, "2025-01-01"},
		{[][]int{}, ""},
		{[][]int{{}}, ""},
	}
	for _, tt := range tests {
		d := crossrefDate{DateParts: tt.parts}
		if got := d.canonical(); got != tt.want {
			t.Errorf("canonical(%v) = %q, want %q", tt.parts, got, tt.want)
		}
	}
}

func TestParseDBLPPage(t *testing.T) {
	body := []byte(`{
		"result": {"hits": {"hit": [{
			"info": {
				"key": "conf/nips/Doe25",
				"title": "A DBLP Paper",
				"venue": ["NeurIPS", "CoRR"],
				"year": "2025",
				"ee": "https://example.org/paper",
				"doi": "10.5/DBLP"
			}
		}]}}
	}`)
	pg, err := parseDBLPPage(body, pageState{})
	if err != nil {
		t.Fatal(err)
	}
	r := pg.records[0]
	if r.Date != "2025-01-01" {
		t.Errorf("year should default to Jan 1: %q", r.Date)
	}
	if r.Venue != "NeurIPS" {
		t.Errorf("venue array not unwrapped: %q", r.Venue)
	}
	if r.ID != "dblp:conf/nips/Doe25" {
		t.Errorf("id = %q", r.ID)
	}
}

func TestParseOpenReviewPage(t *testing.T) {
	ms := MillisFromDate("2025-03-07")
	body := []byte(`{"notes": [{
		"id": "abc",
		"forum": "xyz",
		"cdate": ` + jsonInt(ms) + `,
		"content": {"title": "A Note", "TL;DR": "short version", "venueid": "ICLR.cc/2025"}
	}]}`)
	pg, err := parseOpenReviewPage(body, pageState{})
	if err != nil {
		t.Fatal(err)
	}
	r := pg.records[0]
	if r.Date != "2025-03-07" {
		t.Errorf("cdate not converted: %q", r.Date)
	}
	if r.Abstract != "short version" {
		t.Errorf("TL;DR fallback missing: %q", r.Abstract)
	}
	if r.URL != "https://openreview.net/forum?id=xyz" {
		t.Errorf("url = %q", r.URL)
	}
	if r.Venue != "ICLR.cc/2025" {
		t.Errorf("venue = %q", r.Venue)
	}
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestParseDOAJPage(t *testing.T) {
	body := []byte(`{"results": [{
		"id": "doaj1",
		"created_date": "2025-03-07T10:00:00Z",
		"bibjson": {
			"title": "Open Access Things",
			"abstract": "All about it.",
			"journal": {"title": "OA Journal"},
			"identifier": [{"type": "pissn", "id": "1234-5678"}, {"type": "doi", "id": "10.7/OA"}],
			"link": [{"type": "fulltext", "url": "https://example.org/full"}]
		}
	}]}`)
	pg, err := parseDOAJPage(body, pageState{})
	if err != nil {
		t.Fatal(err)
	}
	r := pg.records[0]
	if r.DOI != "10.7/OA" {
		t.Errorf("doi not found in identifier list: %q", r.DOI)
	}
	if r.URL != "https://example.org/full" {
		t.Errorf("fulltext link = %q", r.URL)
	}
	if r.Date != "2025-03-07" {
		t.Errorf("date = %q", r.Date)
	}
}

func TestParseOpenAIREPage(t *testing.T) {
	body := []byte(`{"response": {"results": {"result": [{
		"header": {"dri:objIdentifier": {"$": "oa::1"}},
		"metadata": {"oaf:entity": {"oaf:result": {
			"title": [{"$": "Main Title"}, {"$": "Alt Title"}],
			"description": {"$": "An <b>abstract</b>."},
			"dateofacceptance": {"$": "2025-03-07"},
			"publisher": {"$": "Big Pub"},
			"pid": {"@classid": "doi", "$": "10.2/OAIRE"}
		}}}
	}]}}}`)
	pg, err := parseOpenAIREPage(body, pageState{})
	if err != nil {
		t.Fatal(err)
	}
	r := pg.records[0]
	if r.Title != "Main Title" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Abstract != "An abstract ." && r.Abstract != "An abstract." {
		t.Errorf("abstract = %q", r.Abstract)
	}
	if r.DOI != "10.2/OAIRE" {
		t.Errorf("pid doi = %q", r.DOI)
	}
	if r.Date != "2025-03-07" || r.Venue != "Big Pub" {
		t.Errorf("record = %+v", r)
	}
}

func TestNormalizePubmedDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025 Mar 15", "2025-03-15"},
		{"2025 Mar", "2025-03-01"},
		{"2025", "2025-01-01"},
		{"2025-03-15", "2025-03-15"},
		{"garbage", ""},
	}
	for _, tt := range tests {
		if got := normalizePubmedDate(tt.in); got != tt.want {
			t.Errorf("normalizePubmedDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIEEEUnavailableWithoutKey(t *testing.T) {
	t.Setenv("IEEE_API_KEY", "")
	res, err := ieeeSource{}.Fetch(context.Background(), testWindow(), Params{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusUnavailable {
		t.Errorf("status = %v, want unavailable", res.Status)
	}
}

func TestNASAADSUnavailableWithoutToken(t *testing.T) {
	t.Setenv("ADS_API_TOKEN", "")
	res, err := nasaADSSource{}.Fetch(context.Background(), testWindow(), Params{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusUnavailable {
		t.Errorf("status = %v, want unavailable", res.Status)
	}
}

func TestSourceParamTypeErrorEscapes(t *testing.T) {
	_, err := openAlexSource{}.Fetch(context.Background(), testWindow(), Params{
		"per_page": []any{"not", "an", "int"},
	})
	if err == nil {
		t.Fatal("wrong-typed param should escape Fetch as an error")
	}
}

func TestOpenAlexAgainstFakeServer(t *testing.T) {
	var gotCursor []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := r.URL.Query().Get("cursor")
		gotCursor = append(gotCursor, cur)
		if cur == "*" {
			w.Write([]byte(`{"meta": {"next_cursor": "c2"}, "results": [
				{"id": "W1", "title": "One", "publication_date": "2025-03-07"},
				{"id": "W2", "title": "Two", "publication_date": "2025-03-07"}
			]}`))
			return
		}
		w.Write([]byte(`{"meta": {"next_cursor": ""}, "results": [
			{"id": "W3", "title": "Three", "publication_date": "2025-03-08"}
		]}`))
	}))
	defer srv.Close()

	res, err := openAlexSource{}.Fetch(context.Background(), testWindow(), Params{
		"base_url": srv.URL,
		"per_page": 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(gotCursor) != 2 || gotCursor[0] != "*" || gotCursor[1] != "c2" {
		t.Errorf("cursors = %v", gotCursor)
	}
	// W3 is on the next day: re-validated away despite the server filter
	if len(res.Records) != 2 {
		t.Fatalf("records = %+v", res.Records)
	}
	if res.Records[0].Source != "OpenAlex" {
		t.Errorf("source stamp missing: %+v", res.Records[0])
	}
}
