package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/runbuddy/internal/weather"
)

// OpenMeteoProvider reads the hourly Open-Meteo forecast. No API key needed.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	loc     *time.Location
	client  *resilientClient
}

func NewOpenMeteoProvider(client *http.Client, loc *time.Location) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		loc:     loc,
		client:  newResilientClient("openmeteo", client),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoHourly struct {
	Hourly struct {
		Time          []string   `json:"time"`
		Temperature2m []*float64 `json:"temperature_2m"`
		Precipitation []*float64 `json:"precipitation"`
		Windspeed10m  []*float64 `json:"windspeed_10m"`
	} `json:"hourly"`
}

// Forecast returns the hourly entry whose local hour matches when.
func (p *OpenMeteoProvider) Forecast(ctx context.Context, at weather.Coordinates, when time.Time) (weather.Reading, error) {
	hour := hourStart(when, p.loc)
	day := hour.Format("2006-01-02")

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", at.Lat))
		values.Set("longitude", fmt.Sprintf("%f", at.Lon))
		values.Set("hourly", "temperature_2m,precipitation,windspeed_10m")
		values.Set("start_date", day)
		values.Set("end_date", day)
		values.Set("timezone", p.loc.String())

		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}

	var payload openMeteoHourly
	if err := p.client.getJSON(ctx, buildRequest, &payload); err != nil {
		return weather.Reading{}, err
	}

	key := hour.Format("2006-01-02T15:04")
	h := payload.Hourly
	for i, ts := range h.Time {
		if ts != key {
			continue
		}
		r := weather.Reading{
			ProviderName: p.name,
			Timestamp:    hour,
			TemperatureC: valueAt(h.Temperature2m, i),
			PrecipMm:     valueAt(h.Precipitation, i),
		}
		if w := valueAt(h.Windspeed10m, i); w != nil {
			r.WindSpeedKmh = *w
		}
		return r, nil
	}
	return weather.Reading{}, weather.ErrNoData
}

// valueAt indexes a nullable series; short series read as missing.
func valueAt(series []*float64, i int) *float64 {
	if i < 0 || i >= len(series) {
		return nil
	}
	return series[i]
}
