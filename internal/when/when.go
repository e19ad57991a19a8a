// Package when decides the instant a run is planned for.
package when

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

var explicitTime = regexp.MustCompile(`(?i)\b\d{1,2}(:\d{2})?\s*(am|pm)\b|\b\d{1,2}:\d{2}\b|\b\d{1,2}\s*(h|hr|hrs)\b|\b(noon|midnight|morning|afternoon|evening|night|tonight)\b`)

// HasExplicitTime reports whether the question names a time of day.
func HasExplicitTime(question string) bool {
	return explicitTime.MatchString(question)
}

// CalendarLookup is the subset of calendar.Finder the resolver needs.
type CalendarLookup interface {
	OnDate(ctx context.Context, day time.Time) (time.Time, bool, error)
	Today(ctx context.Context) (time.Time, bool, error)
	Next(ctx context.Context) (time.Time, bool, error)
}

// Source is one tier of the fallback chain.
type Source struct {
	Name   string
	Lookup func(ctx context.Context) (time.Time, bool, error)
}

// Config configures a Resolver.
type Config struct {
	Location      *time.Location
	EveningHour   int
	EveningMinute int
	Now           func() time.Time
}

// Resolver turns a question and an optional parsed datetime into one
// instant. It never fails.
type Resolver struct {
	cfg      Config
	calendar CalendarLookup
	logger   *slog.Logger
}

// NewResolver returns a Resolver. calendar may be nil.
func NewResolver(cfg Config, calendar CalendarLookup, logger *slog.Logger) *Resolver {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{cfg: cfg, calendar: calendar, logger: logger}
}

// Resolve walks the sources in order and returns the first hit, in the
// configured location.
func (r *Resolver) Resolve(ctx context.Context, question string, datetime *string) time.Time {
	for _, src := range r.Sources(question, datetime) {
		at, ok, err := src.Lookup(ctx)
		if err != nil {
			r.logger.Warn("time source unavailable", "source", src.Name, "error", err)
			continue
		}
		if ok {
			at = at.In(r.cfg.Location)
			r.logger.Debug("run time resolved", "source", src.Name, "at", at.Format(time.RFC3339))
			return at
		}
	}
	// unreachable: the last source always answers
	return r.cfg.Now().Add(time.Hour).In(r.cfg.Location)
}

// Sources builds the ordered fallback chain for one question.
func (r *Resolver) Sources(question string, datetime *string) []Source {
	parsed, parseErr := r.parsed(datetime)
	usable := parseErr == nil && !parsed.IsZero()
	dateOnly := usable && isMidnight(parsed) && !HasExplicitTime(question)

	sources := []Source{
		{Name: "parsed", Lookup: func(context.Context) (time.Time, bool, error) {
			if parseErr != nil {
				return time.Time{}, false, parseErr
			}
			return parsed, usable && !dateOnly, nil
		}},
	}

	if r.calendar != nil {
		sources = append(sources, Source{Name: "calendar-on-date", Lookup: func(ctx context.Context) (time.Time, bool, error) {
			if !dateOnly {
				return time.Time{}, false, nil
			}
			return r.calendar.OnDate(ctx, parsed)
		}})
	}

	sources = append(sources, Source{Name: "default-evening", Lookup: func(context.Context) (time.Time, bool, error) {
		if !dateOnly {
			return time.Time{}, false, nil
		}
		return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), r.cfg.EveningHour, r.cfg.EveningMinute, 0, 0, r.cfg.Location), true, nil
	}})

	if r.calendar != nil {
		sources = append(sources,
			Source{Name: "calendar-today", Lookup: func(ctx context.Context) (time.Time, bool, error) {
				if usable {
					return time.Time{}, false, nil
				}
				return r.calendar.Today(ctx)
			}},
			Source{Name: "calendar-next", Lookup: func(ctx context.Context) (time.Time, bool, error) {
				if usable {
					return time.Time{}, false, nil
				}
				return r.calendar.Next(ctx)
			}},
		)
	}

	return append(sources, Source{Name: "in-an-hour", Lookup: func(context.Context) (time.Time, bool, error) {
		return r.cfg.Now().Add(time.Hour), true, nil
	}})
}

func (r *Resolver) parsed(datetime *string) (time.Time, error) {
	if datetime == nil || strings.TrimSpace(*datetime) == "" {
		return time.Time{}, nil
	}
	t, err := ParseInstant(*datetime, r.cfg.Location)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(r.cfg.Location), nil
}

var zonedLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04Z07:00"}

var naiveLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"}

// ParseInstant reads an ISO 8601 value. Values without an offset are
// taken to be in loc.
func ParseInstant(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed datetime %q", s)
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
}

// ParseClock reads "HH:MM".
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}
