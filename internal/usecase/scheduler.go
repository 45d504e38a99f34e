package usecase

import (
	"context"
	"log/slog"
	"time"

	"AIDailyNews/internal/ports"
)

// ScheduledRunner binds the pipeline to a scheduler so runs fire
// unattended.
type ScheduledRunner struct {
	pipeline  *Pipeline
	scheduler ports.Scheduler
	logger    *slog.Logger
}

// NewScheduledRunner wires the pipeline to the scheduler.
func NewScheduledRunner(pipeline *Pipeline, scheduler ports.Scheduler, logger *slog.Logger) *ScheduledRunner {
	return &ScheduledRunner{pipeline: pipeline, scheduler: scheduler, logger: logger}
}

// Start begins scheduled execution. Each trigger runs the pipeline for the
// trigger time; run failures are logged and do not stop the schedule.
func (r *ScheduledRunner) Start(ctx context.Context) error {
	return r.scheduler.Start(ctx, func(firedAt time.Time) {
		if _, err := r.pipeline.Run(ctx, firedAt); err != nil {
			if r.logger != nil {
				r.logger.Error("scheduled run failed",
					slog.String("date", firedAt.Format("2006-01-02")),
					slog.String("error", err.Error()),
				)
			}
		}
	})
}

// Stop halts scheduled execution.
func (r *ScheduledRunner) Stop(ctx context.Context) error {
	return r.scheduler.Stop(ctx)
}
