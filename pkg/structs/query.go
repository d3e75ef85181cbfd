package structs

const (
	queryLimitDefault = 100
	queryLimitMax     = 1000
)

// Query filters job / dataset lookups.
type Query struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Filters
	JobIDs   []string `json:"job_ids,omitempty"`
	OwnerIDs []string `json:"owner_ids,omitempty"`
	Tools    []string `json:"tools,omitempty"`
	Statuses []Status `json:"statuses,omitempty"`
}

func (q *Query) Sanitize() {
	if q.Limit <= 0 {
		q.Limit = queryLimitDefault
	}
	if q.Limit > queryLimitMax {
		q.Limit = queryLimitMax
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if len(q.JobIDs) == 0 {
		q.JobIDs = nil
	}
	if len(q.OwnerIDs) == 0 {
		q.OwnerIDs = nil
	}
	if len(q.Tools) == 0 {
		q.Tools = nil
	}
	if len(q.Statuses) == 0 {
		q.Statuses = nil
	}
}
