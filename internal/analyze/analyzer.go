// Package analyze turns a day's records into narrative text. It prefers the
// language-model collaborator and degrades to a deterministic composer on
// any failure, so a run never aborts at this stage.
package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"AIDailyNews/internal/domain"
	"AIDailyNews/internal/ports"
	"AIDailyNews/pkg/textutil"
)

// NoActivityText is returned by Analyze for an empty record list.
const NoActivityText = "No notable AI industry activity today."

const (
	digestPerCategory = 5
	digestContentCap  = 1000
	summaryItemCap    = 15
	summaryContentCap = 600
	summaryAbstract   = 150
)

// Analyzer orchestrates narrative synthesis.
type Analyzer struct {
	llm    ports.LLMClient
	logger *slog.Logger
}

// New wires the collaborator; a nil client means every synthesis call uses
// the deterministic fallback.
func New(llm ports.LLMClient, logger *slog.Logger) *Analyzer {
	return &Analyzer{llm: llm, logger: logger}
}

// Analyze produces the grouped-by-category narrative. It never fails: LLM
// errors degrade to the deterministic fallback analysis.
func (a *Analyzer) Analyze(ctx context.Context, records []domain.Record) string {
	if len(records) == 0 {
		return NoActivityText
	}

	if a.llm != nil {
		digest := formatDigest(records)
		analysis, err := a.llm.Analyze(ctx, digest)
		if err == nil && strings.TrimSpace(analysis) != "" {
			return analysis
		}
		a.warn("llm analysis failed, composing fallback", "error", err, "records", len(records))
	}

	return fallbackAnalysis(records)
}

// ComposeReport assembles the full document for the given date. LLM errors
// degrade to the deterministic report template.
func (a *Analyzer) ComposeReport(ctx context.Context, records []domain.Record, analysis string, date time.Time) string {
	dateStr := date.Format("2006-01-02")

	if a.llm != nil {
		summary := prepareSummary(records)
		report, err := a.llm.ComposeReport(ctx, dateStr, summary, analysis)
		if err == nil && strings.TrimSpace(report) != "" {
			return report
		}
		a.warn("llm report composition failed, composing fallback", "error", err, "date", dateStr)
	}

	return fallbackReport(records, analysis, dateStr)
}

// Summarize attaches an LLM summary to the record, at most once. On failure
// the record keeps a truncated content excerpt instead.
func (a *Analyzer) Summarize(ctx context.Context, rec *domain.Record) string {
	if rec.Summary != "" {
		return rec.Summary
	}

	if a.llm != nil {
		summary, err := a.llm.Summarize(ctx, rec.Content)
		if err == nil && strings.TrimSpace(summary) != "" {
			rec.Summary = summary
			return summary
		}
		a.warn("llm summarize failed", "error", err, "title", rec.Title)
	}

	return textutil.TruncateWithEllipsis(rec.Content, 200)
}

// formatDigest renders records grouped by category for the analysis prompt.
// Category sections appear in first-encounter order; up to five items each.
func formatDigest(records []domain.Record) string {
	grouped := map[domain.Category][]domain.Record{}
	var order []domain.Category
	for _, rec := range records {
		if _, seen := grouped[rec.Category]; !seen {
			order = append(order, rec.Category)
		}
		grouped[rec.Category] = append(grouped[rec.Category], rec)
	}

	var b strings.Builder
	for _, category := range order {
		fmt.Fprintf(&b, "\n## %s\n", category)
		items := grouped[category]
		if len(items) > digestPerCategory {
			items = items[:digestPerCategory]
		}
		for i, rec := range items {
			fmt.Fprintf(&b, "\n### %d. %s\n", i+1, rec.Title)
			fmt.Fprintf(&b, "Source: %s\n", rec.Source)
			if rec.URL != "" {
				fmt.Fprintf(&b, "Link: %s\n", rec.URL)
			}
			if rec.Content != "" {
				fmt.Fprintf(&b, "\n%s\n", textutil.TruncateWithEllipsis(rec.Content, digestContentCap))
			}
			if desc := extraString(rec.Extra, "description"); desc != "" {
				fmt.Fprintf(&b, "\nProject description: %s\n", desc)
			}
			if stars := extraString(rec.Extra, "stars"); stars != "" {
				fmt.Fprintf(&b, "Stars: %s\n", stars)
			}
		}
	}
	return b.String()
}

// prepareSummary renders the top records, importance first, for the report
// prompt.
func prepareSummary(records []domain.Record) string {
	sorted := domain.SortForSummary(records)
	if len(sorted) > summaryItemCap {
		sorted = sorted[:summaryItemCap]
	}

	var b strings.Builder
	for _, rec := range sorted {
		fmt.Fprintf(&b, "\n### [%s] %s\n", rec.Category, rec.Title)
		fmt.Fprintf(&b, "Source: %s\n", rec.Source)
		if rec.URL != "" {
			fmt.Fprintf(&b, "Link: %s\n", rec.URL)
		}
		if rec.Content != "" {
			fmt.Fprintf(&b, "\n%s\n", textutil.TruncateWithEllipsis(rec.Content, summaryContentCap))
		}
		if rec.Summary != "" {
			fmt.Fprintf(&b, "\nAbstract: %s\n", textutil.TruncateWithEllipsis(rec.Summary, summaryAbstract))
		}
	}
	return b.String()
}

func extraString(extra map[string]any, key string) string {
	if extra == nil {
		return ""
	}
	if value, ok := extra[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func (a *Analyzer) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
