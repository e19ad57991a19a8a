package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/runbuddy/internal/common"
	"github.com/i474232898/runbuddy/internal/weather"
)

// WeatherAPIProvider reads hourly forecasts from WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	loc     *time.Location
	client  *resilientClient
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, loc *time.Location) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/forecast.json",
		loc:     loc,
		client:  newResilientClient("weatherapi", client),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPIForecast struct {
	Forecast struct {
		Forecastday []struct {
			Hour []struct {
				TimeEpoch int64    `json:"time_epoch"`
				TempC     *float64 `json:"temp_c"`
				PrecipMm  *float64 `json:"precip_mm"`
				WindKph   float64  `json:"wind_kph"`
				Condition struct {
					Text string `json:"text"`
				} `json:"condition"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (p *WeatherAPIProvider) Forecast(ctx context.Context, at weather.Coordinates, when time.Time) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, fmt.Errorf("weatherapi: %w", errNoAPIKey)
	}
	hour := hourStart(when, p.loc)

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", fmt.Sprintf("%f,%f", at.Lat, at.Lon))
		values.Set("dt", hour.Format("2006-01-02"))
		values.Set("hour", fmt.Sprintf("%d", hour.Hour()))

		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}

	var payload weatherAPIForecast
	if err := p.client.getJSON(ctx, buildRequest, &payload); err != nil {
		return weather.Reading{}, err
	}

	for _, day := range payload.Forecast.Forecastday {
		for _, h := range day.Hour {
			if h.TimeEpoch != hour.Unix() {
				continue
			}
			return weather.Reading{
				ProviderName: p.name,
				Timestamp:    hour,
				TemperatureC: h.TempC,
				PrecipMm:     h.PrecipMm,
				WindSpeedKmh: h.WindKph,
				Condition:    mapWeatherAPICondition(h.Condition.Text),
			}, nil
		}
	}
	return weather.Reading{}, weather.ErrNoData
}

func mapWeatherAPICondition(text string) weather.Condition {
	switch {
	case text == "":
		return weather.ConditionUnknown
	case common.HasAnyFold(text, "thunder", "storm"):
		return weather.ConditionStorm
	case common.HasAnyFold(text, "light rain", "drizzle", "light shower"):
		return weather.ConditionLightRain
	case common.HasAnyFold(text, "rain", "shower"):
		return weather.ConditionRain
	case common.HasAnyFold(text, "snow", "sleet", "blizzard"):
		return weather.ConditionSnow
	case common.HasAnyFold(text, "cloud", "overcast"):
		return weather.ConditionCloudy
	case common.HasAnyFold(text, "sunny", "clear"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}
