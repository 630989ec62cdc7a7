package feed

import "encoding/json"

// Some upstreams (OpenAIRE especially, DBLP occasionally) serve fields that
// are sometimes a scalar, sometimes an object with a "$" value, sometimes an
// array of either. These helpers decode those shapes leniently: anything
// unrecognized collapses to the zero value rather than failing the page.

// flexString extracts a string from a raw JSON fragment that may be a
// string, a {"$": "..."} object, or an array whose first element is either.
func flexString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"$"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Value != "" {
		return obj.Value
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) > 0 {
		return flexString(arr[0])
	}
	return ""
}

// flexList normalizes a value-or-array fragment to a slice of fragments.
func flexList(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr
	}
	return []json.RawMessage{raw}
}
