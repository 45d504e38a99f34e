// Package usecase coordinates the daily aggregation run: collect in
// parallel, dedupe, classify, filter by age, synthesize narrative and
// persist the report.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"AIDailyNews/internal/analyze"
	"AIDailyNews/internal/classify"
	"AIDailyNews/internal/dedup"
	"AIDailyNews/internal/domain"
	"AIDailyNews/internal/ports"
	"AIDailyNews/internal/report"
)

// PipelineDeps lists the collaborators a Pipeline needs. Repository and
// Notifier may be nil; those stages are then skipped.
type PipelineDeps struct {
	Collectors   []ports.Collector
	Deduplicator *dedup.Deduplicator
	Classifier   *classify.Classifier
	Analyzer     *analyze.Analyzer
	Assembler    *report.Assembler
	Repository   ports.RunRepository
	Notifier     ports.Notifier
	MaxAge       time.Duration
	Logger       *slog.Logger
}

// Pipeline executes one full aggregation run per call.
type Pipeline struct {
	deps PipelineDeps
}

// NewPipeline wires the run pipeline.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.MaxAge <= 0 {
		deps.MaxAge = 24 * time.Hour
	}
	return &Pipeline{deps: deps}
}

// Run performs a complete run for the given date and returns the markdown
// report path. An empty collection result ends the run early with an empty
// path and no error; only report persistence failures abort the run.
func (p *Pipeline) Run(ctx context.Context, date time.Time) (string, error) {
	started := time.Now()
	p.info("pipeline run started", slog.String("date", date.Format("2006-01-02")))

	records := p.collectAll(ctx)
	if len(records) == 0 {
		p.warn("no records collected, skipping report")
		return "", nil
	}

	records = p.deps.Deduplicator.Dedupe(records)
	records = p.deps.Classifier.ClassifyAll(records)
	records = domain.FilterFresh(records, p.deps.MaxAge, date)
	if len(records) == 0 {
		p.warn("no records within freshness window, skipping report")
		return "", nil
	}

	analysis := p.deps.Analyzer.Analyze(ctx, records)
	document := p.deps.Analyzer.ComposeReport(ctx, records, analysis, date)

	reportPath, err := p.deps.Assembler.Save(document, records, date)
	if err != nil {
		return "", fmt.Errorf("persist report: %w", err)
	}

	p.archiveRun(ctx, date, reportPath, len(records))
	p.notify(ctx, reportPath)

	p.info("pipeline run finished",
		slog.String("report", reportPath),
		slog.Int("records", len(records)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return reportPath, nil
}

// collectAll fans out to every collector and merges their records in
// collector order. A failing collector is logged and contributes nothing.
func (p *Pipeline) collectAll(ctx context.Context) []domain.Record {
	results := make([][]domain.Record, len(p.deps.Collectors))

	g, gctx := errgroup.WithContext(ctx)
	for i, collector := range p.deps.Collectors {
		i, collector := i, collector
		g.Go(func() error {
			records, err := collector.Collect(gctx)
			if err != nil {
				p.warn("collector failed",
					slog.String("collector", collector.Name()),
					slog.String("error", err.Error()),
				)
				return nil
			}
			results[i] = records
			p.info("collector finished",
				slog.String("collector", collector.Name()),
				slog.Int("records", len(records)),
			)
			return nil
		})
	}
	g.Wait()

	var merged []domain.Record
	for _, records := range results {
		for _, rec := range records {
			if rec.Valid() {
				merged = append(merged, rec)
			}
		}
	}
	return merged
}

func (p *Pipeline) archiveRun(ctx context.Context, date time.Time, reportPath string, total int) {
	if p.deps.Repository == nil {
		return
	}
	run := domain.RunRecord{
		RunDate:     date,
		ReportPath:  reportPath,
		TotalItems:  total,
		GeneratedAt: time.Now().UTC(),
	}
	if err := p.deps.Repository.SaveRun(ctx, run); err != nil {
		p.warn("run archive failed", slog.String("error", err.Error()))
	}
}

func (p *Pipeline) notify(ctx context.Context, reportPath string) {
	if p.deps.Notifier == nil {
		return
	}
	if err := p.deps.Notifier.SendReport(ctx, reportPath); err != nil {
		p.warn("report notification failed", slog.String("error", err.Error()))
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.deps.Logger != nil {
		p.deps.Logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.deps.Logger != nil {
		p.deps.Logger.Warn(msg, args...)
	}
}
