package calendar

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type fileEvent struct {
	Summary string `yaml:"summary"`
	Start   string `yaml:"start"` // local date and time
	Date    string `yaml:"date"`  // all-day
}

var startLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04"}

// LoadStatic reads a YAML run plan for offline use:
//
//	events:
//	  - summary: Evening run
//	    start: 2025-06-02T18:30
//	  - summary: Long run
//	    date: 2025-06-07
//
// Times without an offset are read in loc.
func LoadStatic(path string, loc *time.Location) (Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading calendar file: %w", err)
	}
	var doc struct {
		Events []fileEvent `yaml:"events"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing calendar file: %w", err)
	}

	out := make(Static, 0, len(doc.Events))
	for i, fe := range doc.Events {
		ev, err := fe.event(loc)
		if err != nil {
			return nil, fmt.Errorf("calendar event %d: %w", i+1, err)
		}
		out = append(out, ev)
	}
	return out, nil
}

func (fe fileEvent) event(loc *time.Location) (Event, error) {
	if start := strings.TrimSpace(fe.Start); start != "" {
		for _, layout := range startLayouts {
			if t, err := time.ParseInLocation(layout, start, loc); err == nil {
				return Event{Start: t.In(loc), Summary: fe.Summary}, nil
			}
		}
		return Event{}, fmt.Errorf("invalid start %q", fe.Start)
	}
	if date := strings.TrimSpace(fe.Date); date != "" {
		d, err := time.ParseInLocation("2006-01-02", date, loc)
		if err != nil {
			return Event{}, fmt.Errorf("invalid date %q", fe.Date)
		}
		start := time.Date(d.Year(), d.Month(), d.Day(), AllDayHour, AllDayMinute, 0, 0, loc)
		return Event{Start: start, Summary: fe.Summary, AllDay: true}, nil
	}
	return Event{}, fmt.Errorf("event %q has neither start nor date", fe.Summary)
}
