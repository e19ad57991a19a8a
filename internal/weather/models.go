package weather

import "strings"

// Condition is a normalized weather label handed to the reasoning step.
type Condition string

const (
	ConditionUnknown   Condition = "unknown"
	ConditionClear     Condition = "clear"
	ConditionCloudy    Condition = "cloudy"
	ConditionLightRain Condition = "light rain"
	ConditionRain      Condition = "rain"
	ConditionSnow      Condition = "snow"
	ConditionStorm     Condition = "storm"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// City is one of the allowed cities together with where to ask for its weather.
type City struct {
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
}

// Cities is the ordered, allowed city table. Order matters: it is the
// fallback order used when a city has no trails or no weather.
type Cities []City

// Names returns the city names in table order.
func (c Cities) Names() []string {
	names := make([]string, len(c))
	for i, city := range c {
		names[i] = city.Name
	}
	return names
}

// Lookup finds a city by name, ignoring case.
func (c Cities) Lookup(name string) (City, bool) {
	for _, city := range c {
		if strings.EqualFold(city.Name, name) {
			return city, true
		}
	}
	return City{}, false
}

// Snapshot is the point-in-time weather reading the pipeline reasons with.
type Snapshot struct {
	Temperature   float64   `json:"temperature"`
	Precipitation float64   `json:"precipitation"`
	Condition     Condition `json:"condition"`
}

// DefaultSnapshot is used whenever no city produced weather data.
func DefaultSnapshot() Snapshot {
	return Snapshot{Temperature: 18, Precipitation: 0, Condition: ConditionClear}
}

// DeriveCondition labels a reading from temperature (C) and precipitation (mm).
func DeriveCondition(temperature, precipitation float64) Condition {
	switch {
	case precipitation <= 0:
		return ConditionClear
	case temperature <= 0:
		return ConditionSnow
	case precipitation < 2:
		return ConditionLightRain
	default:
		return ConditionRain
	}
}

// CityWeather maps city name to its snapshot. Cities whose fetch failed are
// absent, never zero-valued.
type CityWeather map[string]Snapshot
