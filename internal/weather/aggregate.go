package weather

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// FailureReporter observes per-city fetch failures. Failures never abort an
// aggregation; they only leave the city out of the result.
type FailureReporter interface {
	ReportFailure(city string, err error)
}

// LogReporter reports failures as slog warnings.
type LogReporter struct {
	Logger *slog.Logger
}

func (r LogReporter) ReportFailure(city string, err error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("weather fetch failed", "city", city, "error", err)
}

// AggregatorConfig tunes the per-city fan-out.
type AggregatorConfig struct {
	Timeout     time.Duration // per provider call; 0 means no extra deadline
	Concurrency int           // max in-flight city fetches; <= 0 means 1
	Reporter    FailureReporter
}

// Aggregator asks one provider for every configured city at a given instant.
type Aggregator struct {
	provider Provider
	cities   Cities
	cfg      AggregatorConfig
}

// NewAggregator creates an Aggregator over the given city table.
func NewAggregator(provider Provider, cities Cities, cfg AggregatorConfig) *Aggregator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Reporter == nil {
		cfg.Reporter = LogReporter{}
	}
	return &Aggregator{provider: provider, cities: cities, cfg: cfg}
}

// CityWeather fetches a snapshot for every city at the given instant.
// Cities that fail, time out, or return incomplete data are omitted.
func (a *Aggregator) CityWeather(ctx context.Context, at time.Time) CityWeather {
	var (
		mu     sync.Mutex
		result = make(CityWeather, len(a.cities))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)

	for _, city := range a.cities {
		city := city
		g.Go(func() error {
			snap, err := a.fetch(gctx, city, at)
			if err != nil {
				// Isolated per city: siblings keep running.
				a.cfg.Reporter.ReportFailure(city.Name, err)
				return nil
			}
			mu.Lock()
			result[city.Name] = snap
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return result
}

func (a *Aggregator) fetch(ctx context.Context, city City, at time.Time) (Snapshot, error) {
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	r, err := a.provider.Forecast(ctx, city.Coordinates, at)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", a.provider.Name(), err)
	}
	snap, ok := r.Snapshot()
	if !ok {
		return Snapshot{}, fmt.Errorf("%s: %w", a.provider.Name(), ErrIncompleteReading)
	}
	return snap, nil
}

// MergeReadings combines readings from several providers for the same hour.
// Numeric fields are averaged over the readings that carry them; the
// condition is the majority label, ties going to the earliest reading.
func MergeReadings(readings []Reading) Reading {
	if len(readings) == 0 {
		return Reading{Condition: ConditionUnknown}
	}

	var (
		sumTemp, sumPrecip, sumWind float64
		nTemp, nPrecip              int
	)
	conditionCounts := make(map[Condition]int)
	var order []Condition
	var newest time.Time
	names := make([]string, 0, len(readings))

	for _, r := range readings {
		if r.TemperatureC != nil {
			sumTemp += *r.TemperatureC
			nTemp++
		}
		if r.PrecipMm != nil {
			sumPrecip += *r.PrecipMm
			nPrecip++
		}
		sumWind += r.WindSpeedKmh

		if r.Condition != "" && r.Condition != ConditionUnknown {
			if conditionCounts[r.Condition] == 0 {
				order = append(order, r.Condition)
			}
			conditionCounts[r.Condition]++
		}
		if r.Timestamp.After(newest) {
			newest = r.Timestamp
		}
		names = append(names, r.ProviderName)
	}

	merged := Reading{
		ProviderName: fmt.Sprintf("merged%v", names),
		Timestamp:    newest,
		WindSpeedKmh: sumWind / float64(len(readings)),
	}
	if nTemp > 0 {
		v := sumTemp / float64(nTemp)
		merged.TemperatureC = &v
	}
	if nPrecip > 0 {
		v := sumPrecip / float64(nPrecip)
		merged.PrecipMm = &v
	}

	best := 0
	for _, c := range order {
		if conditionCounts[c] > best {
			best = conditionCounts[c]
			merged.Condition = c
		}
	}
	return merged
}
