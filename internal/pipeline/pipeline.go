// Package pipeline answers a run question end to end: when, where, which
// trails, and finally which one.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/runbuddy/internal/nlp"
	"github.com/i474232898/runbuddy/internal/recommend"
	"github.com/i474232898/runbuddy/internal/trails"
	"github.com/i474232898/runbuddy/internal/weather"
)

// NextRunQuestion is what the watcher asks on every tick.
const NextRunQuestion = "Where should I run for my next scheduled run?"

// Answer is the full result of one question.
type Answer struct {
	ID         uuid.UUID                `json:"id"`
	Intent     nlp.Intent               `json:"intent"`
	Question   string                   `json:"question"`
	At         time.Time                `json:"at"`
	When       recommend.Slot           `json:"when"`
	City       string                   `json:"city"`
	Weather    weather.Snapshot         `json:"weather"`
	Candidates int                      `json:"candidates"`
	Result     recommend.Recommendation `json:"result"`
	CreatedAt  time.Time                `json:"created_at"`
}

// TimeResolver is satisfied by *when.Resolver.
type TimeResolver interface {
	Resolve(ctx context.Context, question string, datetime *string) time.Time
}

// WeatherSource is satisfied by *weather.Aggregator.
type WeatherSource interface {
	CityWeather(ctx context.Context, at time.Time) weather.CityWeather
}

// Recommender is satisfied by *recommend.Invoker.
type Recommender interface {
	Recommend(ctx context.Context, slot recommend.Slot, snap weather.Snapshot, candidates []trails.Record) (recommend.Recommendation, error)
}

// Deps are the collaborators of a Service.
type Deps struct {
	Parser      nlp.Parser
	Resolver    TimeResolver
	Weather     WeatherSource
	Catalog     trails.Catalog
	Filter      *trails.Filter
	Recommender Recommender
	Cities      weather.Cities
	Location    *time.Location
	Now         func() time.Time
	Logger      *slog.Logger
}

type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps}
}

// Answer runs one question through the pipeline. The caller gets either a
// complete Answer or an error.
func (s *Service) Answer(ctx context.Context, question string) (Answer, error) {
	d := s.deps
	reqID := uuid.New()
	logger := d.Logger.With("request_id", reqID.String())

	parsed := d.Parser.Parse(ctx, question, d.Cities.Names(), d.Now())
	logger.Debug("question parsed", "intent", parsed.Intent, "city", deref(parsed.City), "datetime", deref(parsed.DateTime))

	at := d.Resolver.Resolve(ctx, question, parsed.DateTime).In(d.Location)
	cw := d.Weather.CityWeather(ctx, at)
	city, snap := weather.ResolveCity(deref(parsed.City), cw, d.Cities)
	logger.Info("run resolved", "at", at.Format(time.RFC3339), "city", city, "cities_with_weather", len(cw),
		"temperature", snap.Temperature, "precipitation", snap.Precipitation)

	all, err := d.Catalog.Load(ctx)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: loading catalog: %w", trails.ErrNoCandidates, err)
	}
	sel, err := d.Filter.SelectCandidates(all, city, snap)
	if err != nil {
		return Answer{}, err
	}

	slot := recommend.SlotAt(at)
	rec, err := d.Recommender.Recommend(ctx, slot, snap, sel.Candidates)
	if err != nil {
		return Answer{}, err
	}
	if rec.TrailName != nil && rec.Location == nil {
		loc := sel.City
		rec.Location = &loc
	}

	return Answer{
		ID:         reqID,
		Intent:     parsed.Intent,
		Question:   question,
		At:         at,
		When:       slot,
		City:       sel.City,
		Weather:    snap,
		Candidates: len(sel.Candidates),
		Result:     rec,
		CreatedAt:  d.Now().UTC(),
	}, nil
}

// CityWeather exposes the aggregator for the weather endpoint.
func (s *Service) CityWeather(ctx context.Context, at time.Time) weather.CityWeather {
	return s.deps.Weather.CityWeather(ctx, at.In(s.deps.Location))
}

// Cities returns the configured city table.
func (s *Service) Cities() weather.Cities {
	return s.deps.Cities
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
