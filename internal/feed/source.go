package feed

import "context"

// Status tells the aggregator whether a source actually ran.
type Status int

const (
	// StatusFetched means the source ran; Records holds whatever it gathered,
	// possibly nothing, possibly a partial pile cut short by upstream trouble.
	StatusFetched Status = iota
	// StatusUnavailable means the source could not run at all, typically
	// because a required credential is missing. Not an error.
	StatusUnavailable
)

func (s Status) String() string {
	if s == StatusUnavailable {
		return "unavailable"
	}
	return "fetched"
}

// Result is the outcome of one source's Fetch.
type Result struct {
	Status  Status
	Records []Record
}

// Source is the capability every upstream provides: produce normalized,
// window-validated records for one calendar day.
//
// Transient upstream trouble (bad status, malformed page, timeout) is
// contained inside Fetch: pagination stops and the partial Result comes back
// with a nil error. A non-nil error means a programming or configuration
// mistake, such as a wrong-typed param, and is handled at the aggregator
// boundary.
type Source interface {
	Name() string
	Fetch(ctx context.Context, win Window, params Params) (Result, error)
}

func fetched(records []Record) Result { return Result{Status: StatusFetched, Records: records} }

func unavailable() Result { return Result{Status: StatusUnavailable} }
