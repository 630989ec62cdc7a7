package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// openaireSource queries the OpenAIRE search API. The JSON is a thin wrapper
// around their XML model: every value hides behind "oaf:entity"/"oaf:result"
// and "$" keys, and several fields flip between object and array, hence the
// flex decoding.
type openaireSource struct{}

func (openaireSource) Name() string { return "OpenAIRE" }

func (s openaireSource) Fetch(ctx context.Context, win Window, params Params) (Result, error) {
	base, err := params.Str("base_url", "https://api.openaire.eu/search/publications")
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

	ps := &pagedSource{
		name:     s.Name(),
		pageSize: pageSize,
		maxPages: maxPages,
		build: func(ctx context.Context, win Window, st pageState) (*http.Request, error) {
			q := url.Values{}
			q.Set("format", "json")
			q.Set("fromDateAccepted", win.Day)
			q.Set("toDateAccepted", win.Day)
			q.Set("size", strconv.Itoa(pageSize))
			q.Set("page", strconv.Itoa(st.page+1)) // 1-based
			return http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
		},
		parse: parseOpenAIREPage,
	}
	return fetched(ps.run(ctx, win, "")), nil
}

type openaireResult struct {
	Title          json.RawMessage `json:"title"`
	Description    json.RawMessage `json:"description"`
	DateOfAccept   json.RawMessage `json:"dateofacceptance"`
	Publisher      json.RawMessage `json:"publisher"`
	PID            json.RawMessage `json:"pid"`
	FullTextURL    json.RawMessage `json:"fulltext"`
}

func parseOpenAIREPage(body []byte, _ pageState) (page, error) {
	var resp struct {
		Response struct {
			Results struct {
				Result []struct {
					Header struct {
						ObjIdentifier struct {
							Value string `json:"$"`
						} `json:"dri:objIdentifier"`
					} `json:"header"`
					Metadata struct {
						Entity struct {
							Result openaireResult `json:"oaf:result"`
						} `json:"oaf:entity"`
					} `json:"metadata"`
				} `json:"result"`
			} `json:"results"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return page{}, err
	}
	items := resp.Response.Results.Result
	records := make([]Record, 0, len(items))
	for _, item := range items {
		r := item.Metadata.Entity.Result
		doi := ""
		for _, raw := range flexList(r.PID) {
			var pid struct {
				Type  string `json:"@classid"`
				Value string `json:"$"`
			}
			if err := json.Unmarshal(raw, &pid); err != nil {
				continue
			}
			if pid.Type == "doi" && pid.Value != "" {
				doi = pid.Value
				break
			}
		}
		link := ""
		if doi != "" {
			link = "https://doi.org/" + NormalizeDOI(doi)
		} else {
			link = flexString(r.FullTextURL)
		}
		records = append(records, Record{
			ID:       "openaire:" + item.Header.ObjIdentifier.Value,
			Title:    flexString(r.Title),
			Abstract: stripMarkup(flexString(r.Description)),
			DOI:      doi,
			URL:      link,
			Venue:    flexString(r.Publisher),
			Date:     NormalizeDate(flexString(r.DateOfAccept)),
		})
	}
	return page{records: records}, nil
}
