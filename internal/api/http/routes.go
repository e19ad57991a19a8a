package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/runbuddy/internal/llm"
	"github.com/i474232898/runbuddy/internal/pipeline"
	"github.com/i474232898/runbuddy/internal/recommend"
	"github.com/i474232898/runbuddy/internal/store"
	"github.com/i474232898/runbuddy/internal/trails"
	"github.com/i474232898/runbuddy/internal/weather"
)

var validate = validator.New()

// Answerer is satisfied by *pipeline.Service.
type Answerer interface {
	Answer(ctx context.Context, question string) (pipeline.Answer, error)
	CityWeather(ctx context.Context, at time.Time) weather.CityWeather
	Cities() weather.Cities
}

// History is satisfied by *store.MemoryStore.
type History interface {
	Save(answer pipeline.Answer)
	Latest(city string) (pipeline.Answer, error)
	Range(city string, from, to time.Time) ([]pipeline.Answer, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc Answerer, history History, logger *slog.Logger) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/recommendation", func(c *fiber.Ctx) error {
		q := questionQuery{Question: strings.TrimSpace(c.Query("q"))}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "q query parameter is required")
		}

		answer, err := svc.Answer(c.UserContext(), q.Question)
		if err != nil {
			logger.Warn("recommendation failed", "question", q.Question, "error", err)
			return answerError(err)
		}
		history.Save(answer)
		return c.JSON(answer)
	})

	v1.Get("/weather", func(c *fiber.Ctx) error {
		at := time.Now()
		if s := c.Query("at"); s != "" {
			ts, err := parseTime(s)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			at = ts
		}

		cw := svc.CityWeather(c.UserContext(), at)
		// Cities without a snapshot are listed under missing.
		missing := []string{}
		for _, name := range svc.Cities().Names() {
			if _, ok := cw[name]; !ok {
				missing = append(missing, name)
			}
		}
		resp := fiber.Map{"at": at, "cities": cw, "missing": missing}
		if city, snap, ok := weather.PickBest(cw); ok {
			resp["best"] = fiber.Map{"city": city, "weather": snap}
		}
		return c.JSON(resp)
	})

	v1.Get("/recommendations/latest", func(c *fiber.Ctx) error {
		q := cityQuery{City: c.Query("city")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "city query parameter is required")
		}

		answer, err := history.Latest(q.City)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no recommendations for requested city")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read recommendations")
		}
		return c.JSON(answer)
	})

	v1.Get("/recommendations/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		answers, err := history.Range(req.City, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no recommendations for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read recommendations")
		}

		return c.JSON(fiber.Map{
			"city":    req.City,
			"from":    req.From,
			"to":      req.To,
			"answers": answers,
		})
	})
}

// answerError maps pipeline failures onto HTTP statuses.
func answerError(err error) error {
	switch {
	case errors.Is(err, trails.ErrNoCandidates):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, llm.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, "recommendation service timed out")
	case errors.Is(err, llm.ErrProviderUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, "recommendation service unavailable")
	case errors.Is(err, recommend.ErrMalformedRecommendation), errors.Is(err, llm.ErrRetryExhausted):
		return fiber.NewError(fiber.StatusBadGateway, "recommendation service returned an unusable answer")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to answer question")
	}
}

type questionQuery struct {
	Question string `validate:"required"`
}

type cityQuery struct {
	City string `validate:"required"`
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	City string    `validate:"required"`
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.City = c.Query("city")

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
