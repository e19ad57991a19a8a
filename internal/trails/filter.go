package trails

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/i474232898/runbuddy/internal/common"
	"github.com/i474232898/runbuddy/internal/weather"
)

// ErrNoCandidates means the catalog had nothing to offer at all.
var ErrNoCandidates = errors.New("no trail candidates")

const (
	DefaultMaxTrails    = 8
	DefaultHotThreshold = 28.0
)

// Selection is the filter's output: the city the candidates belong to,
// which differs from the requested city when a substitution happened.
type Selection struct {
	City        string   `json:"city"`
	Candidates  []Record `json:"candidates"`
	Substituted bool     `json:"substituted"`
}

// Filter narrows a catalog to a bounded, ranked candidate list.
type Filter struct {
	allowed      []string
	maxTrails    int
	hotThreshold float64
	logger       *slog.Logger
}

func NewFilter(allowed []string, maxTrails int, hotThreshold float64, logger *slog.Logger) *Filter {
	if maxTrails <= 0 {
		maxTrails = DefaultMaxTrails
	}
	if hotThreshold == 0 {
		hotThreshold = DefaultHotThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{allowed: allowed, maxTrails: maxTrails, hotThreshold: hotThreshold, logger: logger}
}

// SelectCandidates filters all by city with cross-city fallback, attaches
// snap as each candidate's forecast, ranks by penalty and caps the list.
// all is never modified.
func (f *Filter) SelectCandidates(all []Record, city string, snap weather.Snapshot) (Selection, error) {
	if len(all) == 0 {
		return Selection{}, ErrNoCandidates
	}

	sel := Selection{City: city}
	subset := inCity(all, city)
	if len(subset) == 0 {
		for _, alt := range f.allowed {
			if alt == city {
				continue
			}
			if subset = inCity(all, alt); len(subset) > 0 {
				f.logger.Info("no trails for city, substituting", "requested", city, "using", alt)
				sel.City, sel.Substituted = alt, true
				break
			}
		}
	}
	if len(subset) == 0 {
		f.logger.Info("no trails for any allowed city, using full catalog", "requested", city, "trails", len(all))
		subset = all
	}

	type scored struct {
		rec   Record
		score int
	}
	ranked := make([]scored, len(subset))
	for i, rec := range subset {
		forecast := snap
		rec.Forecast = &forecast
		ranked[i] = scored{rec: rec, score: f.Score(rec, snap)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score < ranked[j].score })

	n := min(len(ranked), f.maxTrails)
	sel.Candidates = make([]Record, n)
	for i := 0; i < n; i++ {
		sel.Candidates[i] = ranked[i].rec
	}
	return sel, nil
}

// Score is the non-negative penalty for running rec in snap. Lower is better.
func (f *Filter) Score(rec Record, snap weather.Snapshot) int {
	score := 0
	if snap.Precipitation > 0 {
		switch {
		case common.HasAnyFold(rec.MudRainRisk, "high"):
			score += 2
		case common.HasAnyFold(rec.MudRainRisk, "medium"):
			score++
		}
	}
	if snap.Temperature >= f.hotThreshold {
		switch {
		case common.HasAnyFold(rec.ShadeCoverage, "low", "none"):
			score += 2
		case common.HasAnyFold(rec.ShadeCoverage, "mixed", "moderate"):
			score++
		}
	}
	return score
}

func inCity(all []Record, city string) []Record {
	if city == "" {
		return nil
	}
	var out []Record
	for _, r := range all {
		if r.Location == city {
			out = append(out, r)
		}
	}
	return out
}
