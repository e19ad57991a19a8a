// Package nlp turns a free-text question into a structured query.
package nlp

import (
	"context"
	"time"
)

type Intent string

const (
	IntentWhereToday         Intent = "where_today"
	IntentWhereTomorrow      Intent = "where_tomorrow"
	IntentWhichLocationToday Intent = "which_location_today"
	IntentUseCalendar        Intent = "use_calendar"
	IntentFreeForm           Intent = "free_form"
)

// ParsedQuery is what the parser understood. City, when set, is always one
// of the allowed cities. DateTime is ISO 8601 in the local timezone.
type ParsedQuery struct {
	Intent   Intent  `json:"intent"`
	City     *string `json:"city"`
	DateTime *string `json:"datetime"`
	Raw      string  `json:"raw"`
}

type Parser interface {
	Parse(ctx context.Context, question string, allowedCities []string, now time.Time) ParsedQuery
}
