package providers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/i474232898/runbuddy/internal/weather"
)

// Keys carries the optional API keys for keyed providers.
type Keys struct {
	OpenWeather string
	WeatherAPI  string
}

// Build turns a list of provider names into a single weather.Provider.
// A single name yields that provider; several are chained in order, or
// merged when ensemble is set.
func Build(names []string, client *http.Client, loc *time.Location, keys Keys, ensemble bool) (weather.Provider, error) {
	var list []weather.Provider
	for _, raw := range names {
		switch name := strings.ToLower(strings.TrimSpace(raw)); name {
		case "":
			continue
		case "openmeteo", "open-meteo":
			list = append(list, NewOpenMeteoProvider(client, loc))
		case "weatherapi":
			list = append(list, NewWeatherAPIProvider(client, keys.WeatherAPI, loc))
		case "openweather", "openweathermap":
			list = append(list, NewOpenWeatherProvider(client, keys.OpenWeather))
		default:
			return nil, fmt.Errorf("unknown weather provider %q", raw)
		}
	}

	switch {
	case len(list) == 0:
		return NewOpenMeteoProvider(client, loc), nil
	case len(list) == 1:
		return list[0], nil
	case ensemble:
		return Ensemble(list), nil
	default:
		return Chain(list), nil
	}
}
