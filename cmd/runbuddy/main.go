package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"google.golang.org/api/option"

	httpapi "github.com/i474232898/runbuddy/internal/api/http"
	"github.com/i474232898/runbuddy/internal/calendar"
	"github.com/i474232898/runbuddy/internal/cli"
	"github.com/i474232898/runbuddy/internal/cli/formatter"
	"github.com/i474232898/runbuddy/internal/config"
	"github.com/i474232898/runbuddy/internal/llm"
	"github.com/i474232898/runbuddy/internal/logging"
	"github.com/i474232898/runbuddy/internal/nlp"
	"github.com/i474232898/runbuddy/internal/pipeline"
	"github.com/i474232898/runbuddy/internal/recommend"
	"github.com/i474232898/runbuddy/internal/scheduler"
	"github.com/i474232898/runbuddy/internal/store"
	"github.com/i474232898/runbuddy/internal/trails"
	"github.com/i474232898/runbuddy/internal/trails/sources"
	"github.com/i474232898/runbuddy/internal/weather"
	"github.com/i474232898/runbuddy/internal/weather/providers"
	"github.com/i474232898/runbuddy/internal/when"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, level := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	loc := cfg.Location
	cities := cfg.Cities.Table()

	provider, err := providers.Build(cfg.WeatherProviders, httpClient, loc, providers.Keys{
		OpenWeather: cfg.OpenWeatherAPIKey,
		WeatherAPI:  cfg.WeatherAPIKey,
	}, cfg.WeatherEnsemble)
	if err != nil {
		return err
	}
	aggregator := weather.NewAggregator(provider, cities, weather.AggregatorConfig{
		Timeout:     cfg.HTTPTimeout,
		Concurrency: cfg.WeatherConcurrency,
		Reporter:    weather.LogReporter{Logger: logger},
	})

	var googleOpts []option.ClientOption
	if cfg.GoogleCredentialsFile != "" {
		googleOpts = append(googleOpts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	}

	var runs when.CalendarLookup
	switch cfg.CalendarSource {
	case "google":
		gp, err := calendar.NewGoogleProvider(ctx, cfg.GoogleCalendarID, loc, googleOpts...)
		if err != nil {
			return err
		}
		runs = calendar.NewFinder(gp, loc, cfg.CalendarMaxResults, time.Now, logger)
	case "file":
		plan, err := calendar.LoadStatic(cfg.CalendarPath, loc)
		if err != nil {
			return err
		}
		runs = calendar.NewFinder(plan, loc, cfg.CalendarMaxResults, time.Now, logger)
	}
	resolver := when.NewResolver(when.Config{
		Location:      loc,
		EveningHour:   cfg.EveningHour,
		EveningMinute: cfg.EveningMinute,
	}, runs, logger)

	var extractor nlp.TimeExtractor
	if cfg.DucklingURL != "" {
		extractor = nlp.NewDucklingClient(cfg.DucklingURL, loc, httpClient)
	}
	parser := nlp.NewRuleParser(loc, extractor, logger)

	catalog, closeCatalog, err := openCatalog(ctx, cfg, googleOpts)
	if err != nil {
		return err
	}
	defer closeCatalog.Close()

	var observer llm.Observer = llm.NoopObserver{}
	if cfg.LLM.LogCalls {
		observer = llm.NewLogObserver(logger)
	}
	invoker := recommend.NewInvoker(llm.NewClient(cfg.LLM, observer), logger)

	svc := pipeline.NewService(pipeline.Deps{
		Parser:      parser,
		Resolver:    resolver,
		Weather:     aggregator,
		Catalog:     catalog,
		Filter:      trails.NewFilter(cities.Names(), cfg.MaxTrails, cfg.HotThresholdC, logger),
		Recommender: invoker,
		Cities:      cities,
		Location:    loc,
		Logger:      logger,
	})

	// In-memory answer history with configured retention.
	history := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	app := &cli.App{
		Answerer: svc,
		Catalog:  catalog,
		Level:    level,
		Serve: func(ctx context.Context) error {
			return serve(ctx, httpapi.NewServer(svc, history, logger), cfg.Port, logger)
		},
		Watch: func(ctx context.Context) error {
			sched := scheduler.New(scheduler.Config{Interval: cfg.WatchInterval, Location: loc}, svc, history, logger)
			sched.OnAnswer = func(a pipeline.Answer) {
				fmt.Fprintln(os.Stdout, formatter.FormatAnswer(a))
			}
			if err := sched.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer sched.Stop()
			<-ctx.Done()
			return nil
		},
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

func openCatalog(ctx context.Context, cfg *config.AppConfig, googleOpts []option.ClientOption) (trails.Catalog, io.Closer, error) {
	switch cfg.CatalogSource {
	case "sheets":
		c, err := sources.NewSheetCatalog(ctx, cfg.GoogleSheetID, cfg.SheetRange, googleOpts...)
		return c, nopCloser{}, err
	case "sqlite":
		c, err := sources.OpenSQLiteCatalog(cfg.CatalogPath)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	default:
		return sources.NewYAMLCatalog(cfg.CatalogPath), nopCloser{}, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// serve runs the fiber app until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, app *fiber.App, port string, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "port", port)
		errCh <- app.Listen(":" + port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
	return nil
}
