package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/runbuddy/internal/calendar"
	"github.com/i474232898/runbuddy/internal/llm"
	"github.com/i474232898/runbuddy/internal/nlp"
	"github.com/i474232898/runbuddy/internal/recommend"
	"github.com/i474232898/runbuddy/internal/trails"
	"github.com/i474232898/runbuddy/internal/weather"
	"github.com/i474232898/runbuddy/internal/when"
)

var (
	loc = time.FixedZone("EST", -5*3600)
	now = time.Date(2025, 6, 2, 9, 0, 0, 0, loc)

	cities = weather.Cities{
		{Name: "Scarborough", Coordinates: weather.Coordinates{Lat: 43.77, Lon: -79.25}},
		{Name: "Markham", Coordinates: weather.Coordinates{Lat: 43.88, Lon: -79.27}},
		{Name: "Pickering", Coordinates: weather.Coordinates{Lat: 43.84, Lon: -79.03}},
	}
)

type staticCatalog struct {
	records []trails.Record
	err     error
}

func (c staticCatalog) Load(context.Context) ([]trails.Record, error) {
	out := make([]trails.Record, len(c.records))
	copy(out, c.records)
	return out, c.err
}

type latProvider map[float64][2]float64

func (p latProvider) Name() string { return "fixed" }

func (p latProvider) Forecast(_ context.Context, at weather.Coordinates, _ time.Time) (weather.Reading, error) {
	v, ok := p[at.Lat]
	if !ok {
		return weather.Reading{}, weather.ErrNoData
	}
	temp, precip := v[0], v[1]
	return weather.Reading{TemperatureC: &temp, PrecipMm: &precip}, nil
}

type scriptedLLM struct {
	reply   string
	prompts []string
}

func (s *scriptedLLM) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	s.prompts = append(s.prompts, req.UserPrompt)
	return &llm.GenerateResponse{Text: s.reply}, nil
}

func (s *scriptedLLM) Available(context.Context) bool { return true }

type fixture struct {
	svc *Service
	llm *scriptedLLM
}

func newFixture(t *testing.T, provider weather.Provider, cal calendar.Static, records []trails.Record, reply string) fixture {
	t.Helper()
	clock := func() time.Time { return now }
	finder := calendar.NewFinder(cal, loc, 25, clock, nil)
	model := &scriptedLLM{reply: reply}

	svc := NewService(Deps{
		Parser:      nlp.NewRuleParser(loc, nil, nil),
		Resolver:    when.NewResolver(when.Config{Location: loc, EveningHour: 19, Now: clock}, finder, nil),
		Weather:     weather.NewAggregator(provider, cities, weather.AggregatorConfig{Concurrency: 3, Timeout: time.Second}),
		Catalog:     staticCatalog{records: records},
		Filter:      trails.NewFilter(cities.Names(), 8, 28, nil),
		Recommender: recommend.NewInvoker(model, nil),
		Cities:      cities,
		Location:    loc,
		Now:         clock,
	})
	return fixture{svc: svc, llm: model}
}

var catalog = []trails.Record{
	{Name: "Rouge Valley", Location: "Scarborough", MudRainRisk: "High", ShadeCoverage: "Mixed"},
	{Name: "Milne Dam", Location: "Markham", MudRainRisk: "Low", ShadeCoverage: "High"},
	{Name: "Toogood Pond", Location: "Markham", MudRainRisk: "Medium", ShadeCoverage: "Low"},
}

func sentPayload(t *testing.T, f fixture) recommend.Payload {
	t.Helper()
	require.Len(t, f.llm.prompts, 1)
	var p recommend.Payload
	require.NoError(t, json.Unmarshal([]byte(f.llm.prompts[0]), &p))
	return p
}

func TestAnswer_ExplicitTimePicksDriestCity(t *testing.T) {
	provider := latProvider{43.77: {20, 5}, 43.88: {15, 0}}
	f := newFixture(t, provider, nil, catalog, `{"trail_name":"Milne Dam","location":"Markham","reason":"Dry and shaded.","cautions":null}`)

	ans, err := f.svc.Answer(context.Background(), "Where should I run today at 6:30pm?")
	require.NoError(t, err)

	assert.Equal(t, nlp.IntentWhereToday, ans.Intent)
	assert.Equal(t, recommend.Slot{Date: "2025-06-02", Time: "18:30"}, ans.When)
	assert.Equal(t, "Markham", ans.City)
	assert.Equal(t, 15.0, ans.Weather.Temperature)
	assert.Equal(t, 2, ans.Candidates)
	assert.Equal(t, "Milne Dam", *ans.Result.TrailName)
	assert.NotEqual(t, uuid.Nil, ans.ID)

	p := sentPayload(t, f)
	for _, tr := range p.TrailConditions {
		assert.Equal(t, "Markham", tr.Location)
		require.NotNil(t, tr.Forecast)
	}
}

func TestAnswer_DateOnlyUsesDefaultEvening(t *testing.T) {
	provider := latProvider{43.77: {20, 0}, 43.88: {15, 3}}
	f := newFixture(t, provider, nil, catalog, `{"trail_name":"Milne Dam","location":null,"reason":"Low mud risk.","cautions":null}`)

	ans, err := f.svc.Answer(context.Background(), "I'm going to Markham tomorrow")
	require.NoError(t, err)

	assert.Equal(t, recommend.Slot{Date: "2025-06-03", Time: "19:00"}, ans.When)
	assert.Equal(t, "Markham", ans.City, "explicit city wins over drier Scarborough")
	assert.Equal(t, 3.0, ans.Weather.Precipitation)
	require.NotNil(t, ans.Result.Location)
	assert.Equal(t, "Markham", *ans.Result.Location, "location filled from city")
}

func TestAnswer_DateOnlyUsesCalendarEvent(t *testing.T) {
	cal := calendar.Static{{Start: time.Date(2025, 6, 3, 6, 15, 0, 0, loc), Summary: "Morning run"}}
	f := newFixture(t, latProvider{43.88: {12, 0}}, cal, catalog, `{"trail_name":null,"location":null,"reason":"Nothing safe.","cautions":null}`)

	ans, err := f.svc.Answer(context.Background(), "I'm going to Markham tomorrow")
	require.NoError(t, err)
	assert.Equal(t, "06:15", ans.When.Time)
	assert.Nil(t, ans.Result.TrailName)
	assert.Nil(t, ans.Result.Location, "null trail keeps null location")
}

func TestAnswer_ExplicitCityWithoutWeatherBorrowsBest(t *testing.T) {
	provider := latProvider{43.77: {19, 0}}
	f := newFixture(t, provider, nil, catalog, `{"trail_name":"Milne Dam","location":"Markham","reason":"ok","cautions":null}`)

	ans, err := f.svc.Answer(context.Background(), "run in markham at 7pm")
	require.NoError(t, err)
	assert.Equal(t, "Markham", ans.City)
	assert.Equal(t, 19.0, ans.Weather.Temperature)
}

func TestAnswer_SubstitutesCityWithTrails(t *testing.T) {
	provider := latProvider{43.84: {10, 0}}
	f := newFixture(t, provider, nil, catalog, `{"trail_name":"Rouge Valley","location":"Scarborough","reason":"ok","cautions":null}`)

	ans, err := f.svc.Answer(context.Background(), "where should i run tonight")
	require.NoError(t, err)
	assert.Equal(t, "Scarborough", ans.City)
	assert.Equal(t, 1, ans.Candidates)
}

func TestAnswer_NoWeatherAnywhereUsesDefaults(t *testing.T) {
	f := newFixture(t, latProvider{}, nil, catalog, `{"trail_name":"Rouge Valley","location":"Scarborough","reason":"ok","cautions":null}`)

	ans, err := f.svc.Answer(context.Background(), "where to run?")
	require.NoError(t, err)
	assert.Equal(t, weather.DefaultSnapshot(), ans.Weather)
	assert.Equal(t, "Scarborough", ans.City)
	assert.Equal(t, "10:00", ans.When.Time)
}

func TestAnswer_EmptyCatalog(t *testing.T) {
	f := newFixture(t, latProvider{}, nil, nil, "")

	_, err := f.svc.Answer(context.Background(), "where to run?")
	assert.ErrorIs(t, err, trails.ErrNoCandidates)
	assert.Empty(t, f.llm.prompts)
}

func TestAnswer_CatalogErrorIsNoCandidates(t *testing.T) {
	f := newFixture(t, latProvider{}, nil, nil, "")
	f.svc.deps.Catalog = staticCatalog{err: errors.New("sheet unavailable")}

	_, err := f.svc.Answer(context.Background(), "where to run?")
	assert.ErrorIs(t, err, trails.ErrNoCandidates)
}

func TestAnswer_MalformedReply(t *testing.T) {
	f := newFixture(t, latProvider{}, nil, catalog, "sorry, no idea")

	_, err := f.svc.Answer(context.Background(), "where to run?")
	assert.ErrorIs(t, err, recommend.ErrMalformedRecommendation)
}
