package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/runbuddy/internal/weather"
)

// Chain asks each provider in order and returns the first usable reading.
type Chain []weather.Provider

func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c Chain) Forecast(ctx context.Context, at weather.Coordinates, when time.Time) (weather.Reading, error) {
	if len(c) == 0 {
		return weather.Reading{}, weather.ErrNoData
	}
	var errs []error
	for _, p := range c {
		r, err := p.Forecast(ctx, at, when)
		if err == nil {
			if _, ok := r.Snapshot(); ok {
				return r, nil
			}
			err = weather.ErrIncompleteReading
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return weather.Reading{}, errors.Join(errs...)
}

// Ensemble asks every provider concurrently and merges what came back.
type Ensemble []weather.Provider

func (e Ensemble) Name() string {
	return "ensemble"
}

func (e Ensemble) Forecast(ctx context.Context, at weather.Coordinates, when time.Time) (weather.Reading, error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings []weather.Reading
		errs     []error
	)

	for _, p := range e {
		wg.Add(1)
		go func(p weather.Provider) {
			defer wg.Done()

			r, err := p.Forecast(ctx, at, when)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
				return
			}
			readings = append(readings, r)
		}(p)
	}
	wg.Wait()

	if len(readings) == 0 {
		if len(errs) == 0 {
			return weather.Reading{}, weather.ErrNoData
		}
		return weather.Reading{}, errors.Join(errs...)
	}
	merged := weather.MergeReadings(readings)
	merged.ProviderName = e.Name()
	return merged, nil
}
