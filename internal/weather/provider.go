package weather

import (
	"context"
	"errors"
	"time"
)

// ErrNoData is returned by a provider that answered but has no entry for the
// requested hour.
var ErrNoData = errors.New("no forecast data for requested hour")

// ErrIncompleteReading marks a reading lacking temperature or precipitation.
var ErrIncompleteReading = errors.New("incomplete weather reading")

// Reading is a single provider's answer for one coordinate and hour.
// Temperature and precipitation are pointers so a missing field can be told
// apart from a genuine zero.
type Reading struct {
	ProviderName string
	Timestamp    time.Time

	TemperatureC *float64
	PrecipMm     *float64
	WindSpeedKmh float64
	Condition    Condition
}

// Snapshot converts the reading, deriving the condition when the provider
// did not supply one. ok is false for incomplete readings.
func (r Reading) Snapshot() (Snapshot, bool) {
	if r.TemperatureC == nil || r.PrecipMm == nil {
		return Snapshot{}, false
	}
	cond := r.Condition
	if cond == "" || cond == ConditionUnknown {
		cond = DeriveCondition(*r.TemperatureC, *r.PrecipMm)
	}
	return Snapshot{
		Temperature:   *r.TemperatureC,
		Precipitation: *r.PrecipMm,
		Condition:     cond,
	}, true
}

// Provider abstracts a forecast source (Open-Meteo, WeatherAPI, OpenWeatherMap).
type Provider interface {
	Name() string
	Forecast(ctx context.Context, at Coordinates, when time.Time) (Reading, error)
}
