package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/runbuddy/internal/weather"
)

// bucketWindow is how far a 3-hourly bucket may be from the requested instant.
const bucketWindow = 90 * time.Minute

// OpenWeatherProvider reads the 5 day / 3 hour forecast from OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *resilientClient
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/forecast",
		client:  newResilientClient("openweather", client),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type openWeatherItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		ThreeH float64 `json:"3h"`
	} `json:"rain"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

func (p *OpenWeatherProvider) Forecast(ctx context.Context, at weather.Coordinates, when time.Time) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, fmt.Errorf("openweather: %w", errNoAPIKey)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("lat", fmt.Sprintf("%f", at.Lat))
		values.Set("lon", fmt.Sprintf("%f", at.Lon))

		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}

	var payload struct {
		List []openWeatherItem `json:"list"`
	}
	if err := p.client.getJSON(ctx, buildRequest, &payload); err != nil {
		return weather.Reading{}, err
	}

	var (
		best     *openWeatherItem
		bestDiff time.Duration
	)
	for i := range payload.List {
		item := &payload.List[i]
		diff := time.Unix(item.Dt, 0).Sub(when).Abs()
		if diff > bucketWindow {
			continue
		}
		if best == nil || diff < bestDiff {
			best, bestDiff = item, diff
		}
	}
	if best == nil {
		return weather.Reading{}, weather.ErrNoData
	}

	// 3h accumulation spread evenly to an hourly rate.
	precip := best.Rain.ThreeH / 3
	return weather.Reading{
		ProviderName: p.name,
		Timestamp:    time.Unix(best.Dt, 0).UTC(),
		TemperatureC: best.Main.Temp,
		PrecipMm:     &precip,
		WindSpeedKmh: best.Wind.Speed * 3.6,
		Condition:    mapOpenWeatherCondition(best.Weather),
	}, nil
}

func mapOpenWeatherCondition(items []struct {
	Main string `json:"main"`
}) weather.Condition {
	if len(items) == 0 {
		return weather.ConditionUnknown
	}
	switch items[0].Main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Drizzle":
		return weather.ConditionLightRain
	case "Rain":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}
