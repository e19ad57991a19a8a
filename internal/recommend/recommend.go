// Package recommend asks the reasoning service to pick one trail from the
// prepared candidates.
package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/runbuddy/internal/llm"
	"github.com/i474232898/runbuddy/internal/trails"
	"github.com/i474232898/runbuddy/internal/weather"
)

// ErrMalformedRecommendation means the service reply could not be used.
// It is terminal for the request and is not retried.
var ErrMalformedRecommendation = errors.New("malformed recommendation")

// Slot is the resolved run date and time of day.
type Slot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// SlotAt formats t, already in the local zone, as a Slot.
func SlotAt(t time.Time) Slot {
	return Slot{Date: t.Format("2006-01-02"), Time: t.Format("15:04")}
}

// Recommendation is the service's answer. Null TrailName and Location mean
// no trail was safe, which is a valid answer.
type Recommendation struct {
	TrailName *string `json:"trail_name"`
	Location  *string `json:"location"`
	Reason    string  `json:"reason" validate:"required"`
	Cautions  *string `json:"cautions"`
}

// Payload is the user message sent to the service.
type Payload struct {
	CalendarEvent   Slot             `json:"calendar_event"`
	WeatherForecast weather.Snapshot `json:"weather_forecast"`
	TrailConditions []trails.Record  `json:"trail_conditions"`
}

// Invoker builds requests and validates replies.
type Invoker struct {
	client   llm.Client
	validate *validator.Validate
	logger   *slog.Logger
}

func NewInvoker(client llm.Client, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{client: client, validate: validator.New(), logger: logger}
}

func (i *Invoker) Recommend(ctx context.Context, slot Slot, snap weather.Snapshot, candidates []trails.Record) (Recommendation, error) {
	if len(candidates) == 0 {
		return Recommendation{}, trails.ErrNoCandidates
	}

	payload, err := json.Marshal(Payload{CalendarEvent: slot, WeatherForecast: snap, TrailConditions: candidates})
	if err != nil {
		return Recommendation{}, fmt.Errorf("encoding payload: %w", err)
	}
	i.logger.Debug("recommendation request", "payload", string(payload))

	resp, err := i.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskRecommend,
		SystemPrompt: SystemPrompt,
		UserPrompt:   string(payload),
	})
	if err != nil {
		return Recommendation{}, fmt.Errorf("asking for recommendation: %w", err)
	}
	i.logger.Debug("recommendation reply", "model", resp.Model, "text", resp.Text)

	rec, err := llm.ExtractJSON[Recommendation](resp.Text, i.check)
	if err != nil {
		return Recommendation{}, fmt.Errorf("%w: %w", ErrMalformedRecommendation, err)
	}
	rec.Reason = strings.TrimSpace(rec.Reason)
	rec.TrailName = blankToNil(rec.TrailName)
	rec.Location = blankToNil(rec.Location)
	rec.Cautions = blankToNil(rec.Cautions)
	return rec, nil
}

func (i *Invoker) check(r Recommendation) error {
	r.Reason = strings.TrimSpace(r.Reason)
	return i.validate.Struct(r)
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
