package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/runbuddy/internal/pipeline"
)

// Answerer is satisfied by *pipeline.Service.
type Answerer interface {
	Answer(ctx context.Context, question string) (pipeline.Answer, error)
}

// Recorder is satisfied by *store.MemoryStore.
type Recorder interface {
	Save(answer pipeline.Answer)
}

// Config tunes the watch job.
type Config struct {
	Interval time.Duration
	Timeout  time.Duration // per run; defaults to one minute
	Question string        // defaults to pipeline.NextRunQuestion
	Location *time.Location
}

// Scheduler periodically asks the pipeline about the next scheduled run
// and records the answer.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cfg       Config
	answerer  Answerer
	recorder  Recorder
	logger    *slog.Logger

	// OnAnswer, when set, is called after every successful run.
	OnAnswer func(pipeline.Answer)
}

// New creates a new Scheduler. recorder may be nil.
func New(cfg Config, answerer Answerer, recorder Recorder, logger *slog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	if cfg.Question == "" {
		cfg.Question = pipeline.NextRunQuestion
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(cfg.Location),
		cfg:       cfg,
		answerer:  answerer,
		recorder:  recorder,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.cfg.Interval).SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		defer cancel()
		_, _ = s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("watch started", "interval", s.cfg.Interval.String(), "question", s.cfg.Question)
	return nil
}

// RunOnce answers the configured question and records the result.
func (s *Scheduler) RunOnce(ctx context.Context) (pipeline.Answer, error) {
	s.logger.Debug("watch: running job")

	ans, err := s.answerer.Answer(ctx, s.cfg.Question)
	if err != nil {
		s.logger.Error("watch: run failed", "error", err)
		return pipeline.Answer{}, err
	}
	if s.recorder != nil {
		s.recorder.Save(ans)
	}

	trail := "none"
	if ans.Result.TrailName != nil {
		trail = *ans.Result.TrailName
	}
	s.logger.Info("watch: recommendation", "when", ans.When.Date+" "+ans.When.Time, "city", ans.City, "trail", trail)
	if s.OnAnswer != nil {
		s.OnAnswer(ans)
	}
	return ans, nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
