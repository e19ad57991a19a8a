package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/runbuddy/internal/weather"
)

var testLoc = time.FixedZone("EST", -5*3600)

var fastBackoff = BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}

func TestOpenMeteo_PicksMatchingHour(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hourly":{
			"time":["2025-06-01T17:00","2025-06-01T18:00"],
			"temperature_2m":[21.5,20.1],
			"precipitation":[0.0,0.4],
			"windspeed_10m":[10,12]}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), testLoc)
	p.baseURL = srv.URL

	when := time.Date(2025, 6, 1, 18, 30, 0, 0, testLoc)
	r, err := p.Forecast(context.Background(), weather.Coordinates{Lat: 43.88, Lon: -79.27}, when)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "start_date=2025-06-01")
	assert.Contains(t, gotQuery, "end_date=2025-06-01")
	assert.Equal(t, "openmeteo", r.ProviderName)
	require.NotNil(t, r.TemperatureC)
	require.NotNil(t, r.PrecipMm)
	assert.Equal(t, 20.1, *r.TemperatureC)
	assert.Equal(t, 0.4, *r.PrecipMm)
	assert.Equal(t, 12.0, r.WindSpeedKmh)

	snap, ok := r.Snapshot()
	require.True(t, ok)
	assert.Equal(t, weather.ConditionLightRain, snap.Condition)
}

func TestOpenMeteo_MissingHourIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hourly":{"time":["2025-06-01T01:00"],"temperature_2m":[1],"precipitation":[0]}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), testLoc)
	p.baseURL = srv.URL

	_, err := p.Forecast(context.Background(), weather.Coordinates{}, time.Date(2025, 6, 1, 9, 0, 0, 0, testLoc))
	assert.ErrorIs(t, err, weather.ErrNoData)
}

func TestOpenMeteo_NullValuesAreIncomplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hourly":{"time":["2025-06-01T09:00"],"temperature_2m":[null],"precipitation":[0]}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), testLoc)
	p.baseURL = srv.URL

	r, err := p.Forecast(context.Background(), weather.Coordinates{}, time.Date(2025, 6, 1, 9, 0, 0, 0, testLoc))
	require.NoError(t, err)
	_, ok := r.Snapshot()
	assert.False(t, ok)
}

func TestResilience_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"hourly":{"time":["2025-06-01T09:00"],"temperature_2m":[10],"precipitation":[0]}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), testLoc)
	p.baseURL = srv.URL
	p.client.cfg.Backoff = fastBackoff

	_, err := p.Forecast(context.Background(), weather.Coordinates{}, time.Date(2025, 6, 1, 9, 0, 0, 0, testLoc))
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestResilience_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), testLoc)
	p.baseURL = srv.URL
	p.client.cfg.Backoff = fastBackoff

	_, err := p.Forecast(context.Background(), weather.Coordinates{}, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnexpected)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestWeatherAPI_RequiresKey(t *testing.T) {
	p := NewWeatherAPIProvider(http.DefaultClient, "", testLoc)
	_, err := p.Forecast(context.Background(), weather.Coordinates{}, time.Now())
	assert.ErrorIs(t, err, errNoAPIKey)
}

func TestWeatherAPI_MatchesHourEpoch(t *testing.T) {
	when := time.Date(2025, 6, 1, 7, 45, 0, 0, testLoc)
	hour := time.Date(2025, 6, 1, 7, 0, 0, 0, testLoc)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "7", r.URL.Query().Get("hour"))
		_, _ = w.Write([]byte(`{"forecast":{"forecastday":[{"hour":[
			{"time_epoch":` + itoa(hour.Unix()) + `,"temp_c":-2,"precip_mm":1.2,"wind_kph":20,"condition":{"text":"Light snow"}}
		]}]}}`))
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), "secret", testLoc)
	p.baseURL = srv.URL

	r, err := p.Forecast(context.Background(), weather.Coordinates{}, when)
	require.NoError(t, err)
	assert.Equal(t, weather.ConditionSnow, r.Condition)
	assert.Equal(t, -2.0, *r.TemperatureC)
}

func TestOpenWeather_NearestBucketWithinWindow(t *testing.T) {
	when := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	early := when.Add(-2 * time.Hour).Unix()
	near := when.Add(time.Hour).Unix()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"list":[
			{"dt":` + itoa(early) + `,"main":{"temp":25},"weather":[{"main":"Clear"}]},
			{"dt":` + itoa(near) + `,"main":{"temp":22},"rain":{"3h":3},"wind":{"speed":5},"weather":[{"main":"Rain"}]}
		]}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "k")
	p.baseURL = srv.URL

	r, err := p.Forecast(context.Background(), weather.Coordinates{}, when)
	require.NoError(t, err)
	assert.Equal(t, 22.0, *r.TemperatureC)
	assert.InDelta(t, 1.0, *r.PrecipMm, 1e-9)
	assert.InDelta(t, 18.0, r.WindSpeedKmh, 1e-9)
	assert.Equal(t, weather.ConditionRain, r.Condition)

	_, err = p.Forecast(context.Background(), weather.Coordinates{}, when.Add(48*time.Hour))
	assert.ErrorIs(t, err, weather.ErrNoData)
}

type stubProvider struct {
	name    string
	reading weather.Reading
	err     error
}

func (s stubProvider) Name() string { return s.name }

func (s stubProvider) Forecast(context.Context, weather.Coordinates, time.Time) (weather.Reading, error) {
	return s.reading, s.err
}

func reading(temp, precip float64) weather.Reading {
	return weather.Reading{TemperatureC: &temp, PrecipMm: &precip}
}

func TestChain_FallsThroughToNextProvider(t *testing.T) {
	boom := errors.New("boom")
	c := Chain{
		stubProvider{name: "a", err: boom},
		stubProvider{name: "b", reading: weather.Reading{}},
		stubProvider{name: "c", reading: reading(12, 0)},
	}

	r, err := c.Forecast(context.Background(), weather.Coordinates{}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 12.0, *r.TemperatureC)
	assert.Equal(t, "chain(a,b,c)", c.Name())
}

func TestChain_AllFailJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	c := Chain{stubProvider{name: "a", err: boom}, stubProvider{name: "b", err: weather.ErrNoData}}

	_, err := c.Forecast(context.Background(), weather.Coordinates{}, time.Now())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, weather.ErrNoData)
}

func TestEnsemble_MergesSuccessfulReadings(t *testing.T) {
	e := Ensemble{
		stubProvider{name: "a", reading: reading(10, 0)},
		stubProvider{name: "b", reading: reading(20, 2)},
		stubProvider{name: "c", err: errors.New("down")},
	}

	r, err := e.Forecast(context.Background(), weather.Coordinates{}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 15.0, *r.TemperatureC)
	assert.Equal(t, 1.0, *r.PrecipMm)
	assert.Equal(t, "ensemble", r.ProviderName)
}

func TestBuild(t *testing.T) {
	p, err := Build(nil, http.DefaultClient, testLoc, Keys{}, false)
	require.NoError(t, err)
	assert.Equal(t, "openmeteo", p.Name())

	p, err = Build([]string{"openmeteo", "weatherapi"}, http.DefaultClient, testLoc, Keys{}, false)
	require.NoError(t, err)
	assert.IsType(t, Chain{}, p)

	p, err = Build([]string{"openmeteo", "openweather"}, http.DefaultClient, testLoc, Keys{}, true)
	require.NoError(t, err)
	assert.IsType(t, Ensemble{}, p)

	_, err = Build([]string{"darksky"}, http.DefaultClient, testLoc, Keys{}, false)
	assert.Error(t, err)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
