package nlp

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/runbuddy/internal/common"
)

// Clock is an hour and minute of the day.
type Clock struct {
	Hour   int
	Minute int
}

// DefaultPartsOfDay maps part-of-day words to the time they stand for.
var DefaultPartsOfDay = map[string]Clock{
	"morning":   {7, 30},
	"noon":      {12, 0},
	"afternoon": {15, 0},
	"evening":   {18, 30},
	"night":     {21, 30},
	"tonight":   {21, 30},
	"midnight":  {0, 0},
}

var (
	clock12    = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	clock24    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	partOfDay  = regexp.MustCompile(`(?i)\b(morning|afternoon|evening|tonight|midnight|night|noon)\b`)
	weekdayRef = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
)

// TimeExtractor finds a time expression in text. Duckling is one.
type TimeExtractor interface {
	Extract(ctx context.Context, text string, now time.Time) (time.Time, bool, error)
}

// RuleParser is a keyword and pattern based Parser.
type RuleParser struct {
	loc        *time.Location
	partsOfDay map[string]Clock
	extractor  TimeExtractor
	logger     *slog.Logger
}

// NewRuleParser returns a parser for loc. extractor may be nil.
func NewRuleParser(loc *time.Location, extractor TimeExtractor, logger *slog.Logger) *RuleParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleParser{loc: loc, partsOfDay: DefaultPartsOfDay, extractor: extractor, logger: logger}
}

func (p *RuleParser) Parse(ctx context.Context, question string, allowedCities []string, now time.Time) ParsedQuery {
	q := ParsedQuery{
		Intent: ClassifyIntent(question),
		City:   MatchCity(question, allowedCities),
		Raw:    question,
	}
	if at, ok := p.extractTime(ctx, question, now.In(p.loc)); ok {
		s := at.In(p.loc).Format(time.RFC3339)
		q.DateTime = &s
	}
	return q
}

func (p *RuleParser) extractTime(ctx context.Context, text string, now time.Time) (time.Time, bool) {
	if p.extractor != nil {
		at, ok, err := p.extractor.Extract(ctx, text, now)
		if err != nil {
			p.logger.Warn("time extractor failed, using rules", "error", err)
		} else if ok {
			return at, true
		}
	}

	day, hasDate := p.date(text, now)
	clock, hasClock := p.clock(text)
	switch {
	case !hasDate && !hasClock:
		return time.Time{}, false
	case !hasDate:
		day = now
	}
	if !hasClock {
		clock = Clock{}
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, clock.Hour, clock.Minute, 0, 0, p.loc), true
}

func (p *RuleParser) date(text string, now time.Time) (time.Time, bool) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "day after tomorrow"):
		return now.AddDate(0, 0, 2), true
	case strings.Contains(lower, "tomorrow"):
		return now.AddDate(0, 0, 1), true
	case common.HasAny(lower, "today", "tonight"):
		return now, true
	}
	if m := weekdayRef.FindStringSubmatch(lower); m != nil {
		want := weekdays[m[1]]
		ahead := (int(want) - int(now.Weekday()) + 7) % 7
		if ahead == 0 && strings.Contains(lower, "next "+m[1]) {
			ahead = 7
		}
		return now.AddDate(0, 0, ahead), true
	}
	return time.Time{}, false
}

func (p *RuleParser) clock(text string) (Clock, bool) {
	if m := clock12.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour >= 1 && hour <= 12 && minute < 60 {
			hour %= 12
			if strings.EqualFold(m[3], "pm") {
				hour += 12
			}
			return Clock{hour, minute}, true
		}
	}
	if m := clock24.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 24 && minute < 60 {
			return Clock{hour, minute}, true
		}
	}
	if m := partOfDay.FindStringSubmatch(text); m != nil {
		c, ok := p.partsOfDay[strings.ToLower(m[1])]
		return c, ok
	}
	return Clock{}, false
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ClassifyIntent labels a question by keyword.
func ClassifyIntent(text string) Intent {
	t := strings.ToLower(text)
	switch {
	case common.HasAny(t, "calendar", "scheduled", "next run"):
		return IntentUseCalendar
	case strings.Contains(t, "tomorrow") && strings.Contains(t, "run"):
		return IntentWhereTomorrow
	case common.HasAny(t, "today", "tonight") && common.HasAny(t, "which location", "what running location"):
		return IntentWhichLocationToday
	case common.HasAny(t, "today", "tonight") && common.HasAny(t, "where should i run", "where do i run", "trail", "running spot"):
		return IntentWhereToday
	default:
		return IntentFreeForm
	}
}

// MatchCity returns the first allowed city named in text.
func MatchCity(text string, allowed []string) *string {
	lower := strings.ToLower(text)
	for _, c := range allowed {
		if c != "" && strings.Contains(lower, strings.ToLower(c)) {
			city := c
			return &city
		}
	}
	return nil
}
