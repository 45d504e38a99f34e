// Package scheduler drives the daily pipeline on a cron expression.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"AIDailyNews/internal/ports"
)

var _ ports.Scheduler = (*CronScheduler)(nil)

// CronScheduler runs a job on a standard five-field cron expression in a
// fixed timezone.
type CronScheduler struct {
	expression string
	location   *time.Location
	logger     *slog.Logger

	runner *cron.Cron
}

// NewCronScheduler creates a scheduler for the given expression and
// timezone.
func NewCronScheduler(expression string, location *time.Location, logger *slog.Logger) *CronScheduler {
	if location == nil {
		location = time.UTC
	}
	return &CronScheduler{
		expression: expression,
		location:   location,
		logger:     logger,
	}
}

// Start registers job under the configured expression and begins firing
// it. The job receives the trigger time in the scheduler's timezone.
func (s *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if s.runner != nil {
		return fmt.Errorf("scheduler already started")
	}

	runner := cron.New(cron.WithLocation(s.location))
	_, err := runner.AddFunc(s.expression, func() {
		if ctx.Err() != nil {
			return
		}
		job(time.Now().In(s.location))
	})
	if err != nil {
		return fmt.Errorf("register cron %q: %w", s.expression, err)
	}

	s.runner = runner
	runner.Start()
	s.info("scheduler started",
		slog.String("expression", s.expression),
		slog.String("timezone", s.location.String()),
	)
	return nil
}

// Stop halts the cron runner and waits for an in-flight job to finish or
// the context to expire.
func (s *CronScheduler) Stop(ctx context.Context) error {
	if s.runner == nil {
		return nil
	}

	done := s.runner.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	s.runner = nil
	s.info("scheduler stopped")
	return nil
}

func (s *CronScheduler) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
