package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/i474232898/runbuddy/internal/llm"
	"github.com/i474232898/runbuddy/internal/weather"
	"github.com/i474232898/runbuddy/internal/when"
)

type AppConfig struct {
	LocalTZ        string   `envconfig:"LOCAL_TZ" default:"America/Toronto" validate:"required"`
	DefaultEvening string   `envconfig:"DEFAULT_EVENING" default:"19:00" validate:"required"`
	Cities         CityList `envconfig:"CITIES" default:"Scarborough:43.77:-79.25,Markham:43.88:-79.27,Pickering:43.84:-79.03" validate:"min=1"`

	MaxTrails     int     `envconfig:"MAX_TRAILS" default:"8" validate:"gte=1,lte=50"`
	HotThresholdC float64 `envconfig:"HOT_THRESHOLD_C" default:"28"`

	HTTPTimeout        time.Duration `envconfig:"HTTP_TIMEOUT" default:"5s" validate:"gt=0"`
	WeatherProviders   []string      `envconfig:"WEATHER_PROVIDERS" default:"openmeteo"`
	WeatherEnsemble    bool          `envconfig:"WEATHER_ENSEMBLE" default:"false"`
	WeatherConcurrency int           `envconfig:"WEATHER_CONCURRENCY" default:"4" validate:"gte=1"`
	OpenWeatherAPIKey  string        `envconfig:"OPENWEATHER_API_KEY"`
	WeatherAPIKey      string        `envconfig:"WEATHERAPI_API_KEY"`
	GeocoderAPIKey     string        `envconfig:"GEOCODER_API_KEY"`
	GeocoderCountry    string        `envconfig:"GEOCODER_COUNTRY" default:"Canada"`

	CalendarSource     string `envconfig:"CALENDAR_SOURCE" default:"none" validate:"oneof=google file none"`
	CalendarPath       string `envconfig:"CALENDAR_PATH" default:"runs.yaml"`
	CalendarMaxResults int    `envconfig:"CALENDAR_MAX_RESULTS" default:"25" validate:"gte=1"`
	GoogleCalendarID   string `envconfig:"GOOGLE_CALENDAR_ID" default:"primary"`

	CatalogSource         string `envconfig:"CATALOG_SOURCE" default:"yaml" validate:"oneof=sheets yaml sqlite"`
	CatalogPath           string `envconfig:"CATALOG_PATH" default:"trails.yaml"`
	GoogleCredentialsFile string `envconfig:"GOOGLE_CREDENTIALS_FILE"`
	GoogleSheetID         string `envconfig:"GOOGLE_SHEET_ID" validate:"required_if=CatalogSource sheets"`
	SheetRange            string `envconfig:"SHEET_RANGE" default:"Sheet1!A1:L999"`

	DucklingURL string `envconfig:"DUCKLING_URL" validate:"omitempty,url"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`

	Port            string        `envconfig:"PORT" default:"8080"`
	WatchInterval   time.Duration `envconfig:"WATCH_INTERVAL" default:"30m" validate:"gt=0"`
	StoreMaxHistory int           `envconfig:"STORE_MAX_HISTORY" default:"96"` // 0 = unlimited
	StoreMaxAge     time.Duration `envconfig:"STORE_MAX_AGE" default:"24h"`    // 0 = unlimited

	LLM        llm.Config
	GroqAPIKey string     `envconfig:"GROQ_API_KEY"` // used when RUNBUDDY_LLM_API_KEY is unset

	// Derived after loading.
	Location      *time.Location `ignored:"true"`
	EveningHour   int            `ignored:"true"`
	EveningMinute int            `ignored:"true"`
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	loc, err := time.LoadLocation(cfg.LocalTZ)
	if err != nil {
		return nil, fmt.Errorf("invalid LOCAL_TZ: %w", err)
	}
	cfg.Location = loc

	cfg.EveningHour, cfg.EveningMinute, err = when.ParseClock(cfg.DefaultEvening)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_EVENING: %w", err)
	}

	if err := cfg.Cities.resolve(cfg.GeocoderAPIKey, cfg.GeocoderCountry); err != nil {
		return nil, fmt.Errorf("invalid CITIES: %w", err)
	}

	if cfg.CalendarSource == "google" || cfg.CatalogSource == "sheets" {
		if cfg.GoogleCredentialsFile == "" {
			return nil, fmt.Errorf("GOOGLE_CREDENTIALS_FILE is required for google calendar or sheets")
		}
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = cfg.GroqAPIKey
	}
	cfg.LLM.Resolve()
	return cfg, nil
}

// CityList is the ordered allowed-city table, read from
// "Name:lat:lon,Name:lat:lon". A bare name is geocoded at load time.
type CityList []weather.City

// Decode implements envconfig.Decoder.
func (c *CityList) Decode(value string) error {
	var out CityList
	seen := map[string]bool{}
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		city := weather.City{Name: strings.TrimSpace(parts[0])}
		switch len(parts) {
		case 1:
		case 3:
			lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
			if err != nil {
				return fmt.Errorf("city %q: bad latitude: %w", city.Name, err)
			}
			lon, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
			if err != nil {
				return fmt.Errorf("city %q: bad longitude: %w", city.Name, err)
			}
			city.Coordinates = weather.Coordinates{Lat: lat, Lon: lon}
		default:
			return fmt.Errorf("city entry %q: want Name or Name:lat:lon", entry)
		}
		if city.Name == "" {
			return fmt.Errorf("city entry %q has no name", entry)
		}
		key := strings.ToLower(city.Name)
		if seen[key] {
			return fmt.Errorf("city %q listed twice", city.Name)
		}
		seen[key] = true
		out = append(out, city)
	}
	*c = out
	return nil
}

// Table returns the cities as the immutable table components receive.
func (c CityList) Table() weather.Cities {
	out := make(weather.Cities, len(c))
	copy(out, c)
	return out
}

func (c CityList) resolve(apiKey, country string) error {
	for i, city := range c {
		if city.Coordinates != (weather.Coordinates{}) {
			continue
		}
		if apiKey == "" {
			return fmt.Errorf("city %q has no coordinates and GEOCODER_API_KEY is not set", city.Name)
		}
		coords, err := geocode(apiKey, city.Name, country)
		if err != nil {
			return fmt.Errorf("geocoding %q: %w", city.Name, err)
		}
		c[i].Coordinates = coords
	}
	return nil
}
