package notify

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"AIDailyNews/internal/config"
)

func TestSendReportSkipsWhenUnconfigured(t *testing.T) {
	t.Parallel()

	n := NewEmailNotifier(config.EmailConfig{Enabled: true}, nil)
	if err := n.SendReport(context.Background(), "/nonexistent/report.md"); err != nil {
		t.Fatalf("unconfigured notifier must be a no-op, got %v", err)
	}
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	n := NewEmailNotifier(config.EmailConfig{
		Username:   "mailer@example.com",
		Password:   "secret",
		Recipients: []string{"a@example.com", "b@example.com"},
	}, nil)

	msg, err := n.buildMessage("AI Daily Report 2026-03-14", "# Report\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	s := string(msg)

	if !strings.Contains(s, "From: mailer@example.com") {
		t.Fatalf("from header missing:\n%s", s)
	}
	if !strings.Contains(s, "To: a@example.com, b@example.com") {
		t.Fatalf("to header missing:\n%s", s)
	}
	if !strings.Contains(s, "Subject: AI Daily Report 2026-03-14") {
		t.Fatalf("subject missing:\n%s", s)
	}
	if !strings.Contains(s, "multipart/alternative") {
		t.Fatalf("multipart content type missing:\n%s", s)
	}
	if !strings.Contains(s, "text/plain; charset=utf-8") || !strings.Contains(s, "text/html; charset=utf-8") {
		t.Fatalf("expected both body parts:\n%s", s)
	}
	if !strings.Contains(s, "# Report") {
		t.Fatalf("raw markdown part missing:\n%s", s)
	}
	if !strings.Contains(s, "<h1>Report</h1>") {
		t.Fatalf("rendered html part missing:\n%s", s)
	}
}

func TestMarkdownToHTML(t *testing.T) {
	t.Parallel()

	md := "# Title\n\n## Section\n\n**bold** and [link](https://example.com)\n\n> quoted line\n\n- bullet item\n\n---"
	html := markdownToHTML(md)

	for _, want := range []string{
		"<h1>Title</h1>",
		"<h2>Section</h2>",
		"<strong>bold</strong>",
		`<a href="https://example.com">link</a>`,
		"<blockquote>quoted line</blockquote>",
		"<li>bullet item</li>",
		"<hr>",
		"<html><body",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("html missing %q:\n%s", want, html)
		}
	}
}

func TestReportDate(t *testing.T) {
	t.Parallel()

	path := filepath.Join("data", "reports", "2026-03-14", "ai_daily_2026-03-14.md")
	if got := reportDate(path); got != "2026-03-14" {
		t.Fatalf("expected run date from directory, got %q", got)
	}
}
