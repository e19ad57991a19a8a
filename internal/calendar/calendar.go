// Package calendar reads scheduled runs from a calendar.
package calendar

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/i474232898/runbuddy/internal/common"
)

// Event is one calendar entry reduced to what run planning needs.
type Event struct {
	Start   time.Time `json:"start"`
	Summary string    `json:"summary"`
	AllDay  bool      `json:"all_day"`
}

// Provider lists upcoming events, soonest first.
type Provider interface {
	Upcoming(ctx context.Context, maxResults int) ([]Event, error)
}

// All-day events are treated as starting at this local time.
const (
	AllDayHour   = 7
	AllDayMinute = 0
)

// IsRunEvent reports whether an event looks like a planned run.
func IsRunEvent(e Event) bool {
	return common.HasAnyFold(e.Summary, "run", "jog")
}

// Static serves a fixed event list, from tests or LoadStatic.
type Static []Event

func (s Static) Upcoming(_ context.Context, maxResults int) ([]Event, error) {
	out := make([]Event, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}

// Finder answers the two questions the time resolver asks of a calendar.
type Finder struct {
	provider   Provider
	loc        *time.Location
	maxResults int
	now        func() time.Time
	logger     *slog.Logger
}

// NewFinder wraps provider. A nil now uses time.Now.
func NewFinder(provider Provider, loc *time.Location, maxResults int, now func() time.Time, logger *slog.Logger) *Finder {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	if maxResults <= 0 {
		maxResults = 25
	}
	return &Finder{provider: provider, loc: loc, maxResults: maxResults, now: now, logger: logger}
}

func (f *Finder) runs(ctx context.Context) ([]Event, error) {
	events, err := f.provider.Upcoming(ctx, f.maxResults)
	if err != nil {
		return nil, err
	}
	runs := make([]Event, 0, len(events))
	for _, e := range events {
		if IsRunEvent(e) {
			runs = append(runs, e)
		}
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Start.Before(runs[j].Start) })
	f.logger.Debug("calendar runs loaded", "events", len(events), "runs", len(runs))
	return runs, nil
}

// OnDate returns the start of the first run event on day's local date.
func (f *Finder) OnDate(ctx context.Context, day time.Time) (time.Time, bool, error) {
	runs, err := f.runs(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	y, m, d := day.In(f.loc).Date()
	for _, e := range runs {
		start := e.Start.In(f.loc)
		if ey, em, ed := start.Date(); ey == y && em == m && ed == d {
			return start, true, nil
		}
	}
	return time.Time{}, false, nil
}

// Today is OnDate for the current local date.
func (f *Finder) Today(ctx context.Context) (time.Time, bool, error) {
	return f.OnDate(ctx, f.now())
}

// Next returns the soonest run event that has not started yet.
func (f *Finder) Next(ctx context.Context) (time.Time, bool, error) {
	runs, err := f.runs(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	now := f.now()
	for _, e := range runs {
		if !e.Start.Before(now) {
			return e.Start.In(f.loc), true, nil
		}
	}
	return time.Time{}, false, nil
}
