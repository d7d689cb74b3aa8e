package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/todays-weather/internal/observability"
	"github.com/i474232898/todays-weather/internal/weather"
)

// Checker is the subset of weather.Service the probe exercises.
type Checker interface {
	Forecast(ctx context.Context) ([]weather.Reading, error)
	Narrative(ctx context.Context) ([]weather.Paragraph, error)
	Observations(ctx context.Context) (any, error)
}

// Scheduler periodically probes the upstream operations and records whether
// they succeed. Results are logged and dropped; nothing is kept between runs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	checker   Checker
	interval  time.Duration
	timeout   time.Duration
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// New creates a new Scheduler. timeout bounds each probe run.
func New(checker Checker, interval, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		checker:   checker,
		interval:  interval,
		timeout:   timeout,
		metrics:   metrics,
		logger:    logger,
	}
}

// Start schedules the probe job and starts the underlying scheduler.
// A zero interval leaves the probe disabled.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduler: probe disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.Run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler: probe started", "interval", s.interval)
	return nil
}

// Run performs one probe of every operation.
func (s *Scheduler) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.logger.Debug("scheduler: running upstream probe")

	readings, err := s.checker.Forecast(ctx)
	s.record("forecast", err, "readings", len(readings))

	paragraphs, err := s.checker.Narrative(ctx)
	s.record("narrative", err, "paragraphs", len(paragraphs))

	_, err = s.checker.Observations(ctx)
	s.record("observations", err)

	if s.metrics != nil {
		s.metrics.ProbeRuns.Inc()
	}
}

func (s *Scheduler) record(op string, err error, attrs ...any) {
	up := 1.0
	if err != nil {
		up = 0
		s.logger.Warn("scheduler: probe failed", "operation", op, "error", err)
	} else {
		s.logger.Info("scheduler: probe ok", append([]any{"operation", op}, attrs...)...)
	}
	if s.metrics != nil {
		s.metrics.UpstreamUp.WithLabelValues(op).Set(up)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
