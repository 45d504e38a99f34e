package analyze

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"AIDailyNews/internal/domain"
)

// stubLLM scripts the collaborator. A nil field means the call fails.
type stubLLM struct {
	summarize func(string) (string, error)
	analyze   func(string) (string, error)
	compose   func(date, summary, analysis string) (string, error)
}

func (s *stubLLM) Summarize(_ context.Context, content string) (string, error) {
	if s.summarize == nil {
		return "", errors.New("summarize unavailable")
	}
	return s.summarize(content)
}

func (s *stubLLM) Analyze(_ context.Context, digest string) (string, error) {
	if s.analyze == nil {
		return "", errors.New("analyze unavailable")
	}
	return s.analyze(digest)
}

func (s *stubLLM) ComposeReport(_ context.Context, date, summary, analysis string) (string, error) {
	if s.compose == nil {
		return "", errors.New("compose unavailable")
	}
	return s.compose(date, summary, analysis)
}

func sampleRecords() []domain.Record {
	return []domain.Record{
		{
			Title:    "GitHub Trending: acme/agentkit",
			Content:  "Project summary for the trending repository block.",
			URL:      "https://github.com/acme/agentkit",
			Source:   SourceTrending,
			Category: domain.CategoryOpenSource,
			Extra: map[string]any{
				"repo_path":   "acme/agentkit",
				"description": "Toolkit for building agents",
				"stars":       "12,400",
				"today_stars": "320 stars today",
				"language":    "Go",
			},
		},
		{
			Title:    "Vendor ships new reasoning model",
			Content:  "The vendor announced a new frontier model with stronger reasoning benchmarks.",
			URL:      "https://example.com/news",
			Source:   "Example Wire",
			Category: domain.CategoryModelProgress,
		},
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	t.Parallel()

	a := New(nil, nil)
	if got := a.Analyze(context.Background(), nil); got != NoActivityText {
		t.Fatalf("expected no-activity sentinel, got %q", got)
	}
}

func TestAnalyzeUsesLLMResult(t *testing.T) {
	t.Parallel()

	llm := &stubLLM{analyze: func(digest string) (string, error) {
		if !strings.Contains(digest, "Vendor ships new reasoning model") {
			t.Fatalf("digest missing record title: %q", digest)
		}
		return "llm analysis text", nil
	}}

	a := New(llm, nil)
	if got := a.Analyze(context.Background(), sampleRecords()); got != "llm analysis text" {
		t.Fatalf("expected llm result passed through, got %q", got)
	}
}

func TestAnalyzeFallsBackOnLLMFailure(t *testing.T) {
	t.Parallel()

	a := New(&stubLLM{}, nil)
	got := a.Analyze(context.Background(), sampleRecords())

	if !strings.Contains(got, "## 🔥 Trending Open-Source Picks") {
		t.Fatalf("fallback missing project section: %q", got)
	}
	if !strings.Contains(got, "## 📰 Industry Briefs") {
		t.Fatalf("fallback missing briefs section: %q", got)
	}
	if !strings.Contains(got, "[acme/agentkit](https://github.com/acme/agentkit)") {
		t.Fatalf("fallback missing project link: %q", got)
	}
	if !strings.Contains(got, "👍 **Why it matters**") {
		t.Fatalf("expected steady-growth annotation for +320 stars: %q", got)
	}
}

func TestAnalyzeFallbackDeterministic(t *testing.T) {
	t.Parallel()

	a := New(nil, nil)
	first := a.Analyze(context.Background(), sampleRecords())
	second := a.Analyze(context.Background(), sampleRecords())
	if first != second {
		t.Fatalf("fallback analysis must be deterministic")
	}
}

func TestComposeReportFallback(t *testing.T) {
	t.Parallel()

	a := New(&stubLLM{}, nil)
	date := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	records := sampleRecords()
	analysis := a.Analyze(context.Background(), records)
	report := a.ComposeReport(context.Background(), records, analysis, date)

	if !strings.HasPrefix(report, "# 🤖 AI Daily | 2026-03-14") {
		t.Fatalf("report header missing: %q", report[:60])
	}
	if !strings.Contains(report, "## ✨ Highlights") {
		t.Fatalf("highlights section missing")
	}
	if !strings.Contains(report, "**2** items collected today") {
		t.Fatalf("item count missing: %q", report)
	}
	if !strings.Contains(report, "## 📎 Today's Links") {
		t.Fatalf("link section missing")
	}
	if !strings.Contains(report, analysis) {
		t.Fatalf("analysis body must be embedded verbatim")
	}
}

func TestComposeReportUsesLLMResult(t *testing.T) {
	t.Parallel()

	llm := &stubLLM{compose: func(date, summary, analysis string) (string, error) {
		if date != "2026-03-14" {
			t.Fatalf("unexpected date %q", date)
		}
		return "composed by llm", nil
	}}

	a := New(llm, nil)
	date := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	got := a.ComposeReport(context.Background(), sampleRecords(), "analysis", date)
	if got != "composed by llm" {
		t.Fatalf("expected llm composition, got %q", got)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	llm := &stubLLM{summarize: func(string) (string, error) { return "short summary", nil }}
	a := New(llm, nil)

	rec := domain.NewRecord("Title", "Content body that is long enough for the pipeline.", "", "test")
	if got := a.Summarize(context.Background(), &rec); got != "short summary" {
		t.Fatalf("expected llm summary, got %q", got)
	}
	if rec.Summary != "short summary" {
		t.Fatalf("summary must be written back to the record")
	}

	llm.summarize = func(string) (string, error) { t.Fatal("must not re-summarize"); return "", nil }
	if got := a.Summarize(context.Background(), &rec); got != "short summary" {
		t.Fatalf("second call must reuse the stored summary, got %q", got)
	}
}

func TestSummarizeFallbackTruncates(t *testing.T) {
	t.Parallel()

	a := New(&stubLLM{}, nil)
	rec := domain.NewRecord("Title", strings.Repeat("word ", 100), "", "test")

	got := a.Summarize(context.Background(), &rec)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncated excerpt, got %q", got)
	}
	if len([]rune(got)) > 203 {
		t.Fatalf("excerpt exceeds cap: %d runes", len([]rune(got)))
	}
	if rec.Summary != "" {
		t.Fatalf("fallback excerpt must not be stored as the summary")
	}
}
