package ports

import (
	"context"
	"time"

	"AIDailyNews/internal/domain"
)

// Collector pulls fresh records from one upstream source. Implementations
// must return only valid records and are expected to throttle their own
// outbound calls.
type Collector interface {
	Name() string
	Collect(ctx context.Context) ([]domain.Record, error)
}

// LLMClient is the language-model collaborator used by the analyzer. Every
// call may fail; callers must be able to degrade without it.
type LLMClient interface {
	Summarize(ctx context.Context, content string) (string, error)
	Analyze(ctx context.Context, digest string) (string, error)
	ComposeReport(ctx context.Context, date, summary, analysis string) (string, error)
}

// Notifier delivers the finished report to subscribers.
type Notifier interface {
	SendReport(ctx context.Context, reportPath string) error
}

// RunRepository archives completed runs for audit and history queries.
type RunRepository interface {
	SaveRun(ctx context.Context, run domain.RunRecord) error
	RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
