package models

import "time"

// Filter is the request scoped listing filter: a free text term and an
// inclusive date range. A nil bound is unbounded on that side.
type Filter struct {
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
}

const dateLayout = "2006-01-02"

// StartDateString echoes the start bound as YYYY-MM-DD, nil when unbounded.
func (f Filter) StartDateString() *string { return formatDay(f.StartDate) }

// EndDateString echoes the end bound as YYYY-MM-DD, nil when unbounded.
func (f Filter) EndDateString() *string { return formatDay(f.EndDate) }

func formatDay(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
