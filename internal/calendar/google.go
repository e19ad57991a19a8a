package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleProvider reads events from a Google Calendar.
type GoogleProvider struct {
	svc        *gcal.Service
	calendarID string
	loc        *time.Location
	now        func() time.Time
}

// NewGoogleProvider builds a read-only calendar client. Pass
// option.WithCredentialsFile in production.
func NewGoogleProvider(ctx context.Context, calendarID string, loc *time.Location, opts ...option.ClientOption) (*GoogleProvider, error) {
	opts = append([]option.ClientOption{option.WithScopes(gcal.CalendarReadonlyScope)}, opts...)
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleProvider{svc: svc, calendarID: calendarID, loc: loc, now: time.Now}, nil
}

func (g *GoogleProvider) Upcoming(ctx context.Context, maxResults int) ([]Event, error) {
	res, err := g.svc.Events.List(g.calendarID).
		TimeMin(g.now().Format(time.RFC3339)).
		MaxResults(int64(maxResults)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing calendar events: %w", err)
	}

	events := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		e, ok := toEvent(item, g.loc)
		if !ok {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func toEvent(item *gcal.Event, loc *time.Location) (Event, bool) {
	if item == nil || item.Start == nil {
		return Event{}, false
	}
	if item.Start.DateTime != "" {
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return Event{}, false
		}
		return Event{Start: start.In(loc), Summary: item.Summary}, true
	}
	if item.Start.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", item.Start.Date, loc)
		if err != nil {
			return Event{}, false
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), AllDayHour, AllDayMinute, 0, 0, loc)
		return Event{Start: start, Summary: item.Summary, AllDay: true}, true
	}
	return Event{}, false
}
