package query

import (
	"strings"
	"time"

	"github.com/mamadbah2/bizdesk/internal/apperror"
	"github.com/mamadbah2/bizdesk/internal/domain/models"
)

// DateLayout is the calendar day format accepted and echoed by the API.
const DateLayout = "2006-01-02"

// ParseFilter normalizes raw search/startDate/endDate query parameters.
// Empty values stay unbounded; no default range is invented.
func ParseFilter(search, startDate, endDate string) (models.Filter, error) {
	f := models.Filter{Search: strings.TrimSpace(search)}

	if v := strings.TrimSpace(startDate); v != "" {
		day, err := ParseDay(v)
		if err != nil {
			return models.Filter{}, apperror.Validation("startDate must be YYYY-MM-DD")
		}
		f.StartDate = &day
	}

	if v := strings.TrimSpace(endDate); v != "" {
		day, err := ParseDay(v)
		if err != nil {
			return models.Filter{}, apperror.Validation("endDate must be YYYY-MM-DD")
		}
		f.EndDate = &day
	}

	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return models.Filter{}, apperror.Validation("endDate must not be before startDate")
	}

	return f, nil
}

// ParseDay accepts YYYY-MM-DD or RFC3339 and returns midnight UTC of that day.
func ParseDay(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		t, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, err
		}
		t = t.UTC()
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
