// Package trails holds the trail catalog model and the candidate filter.
package trails

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/i474232898/runbuddy/internal/weather"
)

// Record is one trail from the catalog.
type Record struct {
	Name               string            `json:"name" yaml:"name"`
	Location           string            `json:"location" yaml:"location"`
	LengthKm           float64           `json:"length_km" yaml:"length_km"`
	Difficulty         string            `json:"difficulty" yaml:"difficulty"`
	TerrainType        string            `json:"terrain_type" yaml:"terrain_type"`
	WeatherSensitivity string            `json:"weather_sensitivity" yaml:"weather_sensitivity"`
	ShadeCoverage      string            `json:"shade_coverage" yaml:"shade_coverage"`
	MudRainRisk        string            `json:"mud_rain_risk" yaml:"mud_rain_risk"`
	ElevationGain      string            `json:"elevation_gain" yaml:"elevation_gain"`
	Hazards            string            `json:"hazards" yaml:"hazards"`
	Forecast           *weather.Snapshot `json:"forecast,omitempty" yaml:"-"`
}

// Catalog loads the full trail list. Implementations live in trails/sources.
type Catalog interface {
	Load(ctx context.Context) ([]Record, error)
}

type headerAlias struct {
	field string
	rank  int // higher wins when a row carries several spellings of one field
}

// headerAliases maps every accepted column spelling, lowercased, to a field.
// The snake_case key ranks highest.
var headerAliases = map[string]headerAlias{
	"name":                {"name", 3},
	"trail name":          {"name", 2},
	"trail":               {"name", 1},
	"location":            {"location", 2},
	"city":                {"location", 1},
	"length_km":           {"length_km", 3},
	"length (km)":         {"length_km", 2},
	"length":              {"length_km", 1},
	"difficulty":          {"difficulty", 1},
	"terrain_type":        {"terrain_type", 3},
	"terrain type":        {"terrain_type", 2},
	"terrain":             {"terrain_type", 1},
	"weather_sensitivity": {"weather_sensitivity", 2},
	"weather sensitivity": {"weather_sensitivity", 1},
	"shade_coverage":      {"shade_coverage", 3},
	"shade coverage":      {"shade_coverage", 2},
	"shade":               {"shade_coverage", 1},
	"mud_rain_risk":       {"mud_rain_risk", 3},
	"mud/rain risk":       {"mud_rain_risk", 2},
	"mud risk":            {"mud_rain_risk", 1},
	"elevation_gain":      {"elevation_gain", 2},
	"elevation gain":      {"elevation_gain", 1},
	"hazards":             {"hazards", 4},
	"notes & hazards":     {"hazards", 3},
	"notes and hazards":   {"hazards", 2},
	"notes":               {"hazards", 1},
}

// NormalizeRow maps a row keyed by any accepted header spelling onto a
// Record. Unknown columns are ignored. When several spellings of a field
// carry a value, the highest-ranked one wins; keys differing only in case
// resolve in sorted key order.
func NormalizeRow(row map[string]string) Record {
	var r Record
	taken := make(map[string]int, len(row))
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		alias, ok := headerAliases[strings.ToLower(strings.TrimSpace(key))]
		if !ok || taken[alias.field] >= alias.rank {
			continue
		}
		value := strings.TrimSpace(row[key])
		if value == "" {
			continue
		}
		if alias.field == "length_km" {
			km := parseKm(value)
			if km == 0 {
				continue
			}
			r.LengthKm = km
		} else {
			*r.text(alias.field) = value
		}
		taken[alias.field] = alias.rank
	}
	return r
}

func (r *Record) text(field string) *string {
	switch field {
	case "name":
		return &r.Name
	case "location":
		return &r.Location
	case "difficulty":
		return &r.Difficulty
	case "terrain_type":
		return &r.TerrainType
	case "weather_sensitivity":
		return &r.WeatherSensitivity
	case "shade_coverage":
		return &r.ShadeCoverage
	case "mud_rain_risk":
		return &r.MudRainRisk
	case "elevation_gain":
		return &r.ElevationGain
	default:
		return &r.Hazards
	}
}

// FromRows treats the first row as the header row. Short rows read the
// missing cells as empty; rows without a trail name are dropped.
func FromRows(rows [][]string) []Record {
	if len(rows) == 0 {
		return nil
	}
	headers := rows[0]
	out := make([]Record, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		r := NormalizeRow(row)
		if r.Name == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// parseKm accepts "5", "5.2", "5,2" and "5.2 km".
func parseKm(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.ToLower(s), "km"))
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
