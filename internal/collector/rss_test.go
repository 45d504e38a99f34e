package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

const testFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test AI Feed</title>
    <item>
      <title>Vendor announces reasoning model</title>
      <link>https://example.com/reasoning</link>
      <description>&lt;p&gt;The vendor announced a reasoning model today.&lt;/p&gt;</description>
      <pubDate>Sat, 14 Mar 2026 08:00:00 GMT</pubDate>
      <author>editor@example.com (Sam Editor)</author>
      <category>ai</category>
      <category>models</category>
    </item>
    <item>
      <title>Untitled filler</title>
      <link>https://example.com/short</link>
      <description>tiny</description>
    </item>
  </channel>
</rss>`

func TestRSSCollect(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != rssUserAgent {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeedXML))
	}))
	defer srv.Close()

	c := NewRSS(srv.Client(), []Feed{{Name: "Test Feed", URL: srv.URL, Enabled: true}}, time.Millisecond, nil)
	records, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 valid record, got %d", len(records))
	}

	rec := records[0]
	if rec.Title != "Vendor announces reasoning model" {
		t.Fatalf("unexpected title %q", rec.Title)
	}
	if rec.URL != "https://example.com/reasoning" {
		t.Fatalf("unexpected link %q", rec.URL)
	}
	if rec.Source != "Test Feed" {
		t.Fatalf("unexpected source %q", rec.Source)
	}
	if rec.Content != "The vendor announced a reasoning model today." {
		t.Fatalf("html not stripped from content: %q", rec.Content)
	}
	if rec.PublishedAt == nil || rec.PublishedAt.UTC().Hour() != 8 {
		t.Fatalf("publish time not parsed: %v", rec.PublishedAt)
	}
	if len(rec.Tags) != 2 || rec.Tags[0] != "ai" {
		t.Fatalf("categories not mapped to tags: %v", rec.Tags)
	}
}

func TestRSSCollectSkipsDisabledAndFailing(t *testing.T) {
	t.Parallel()

	var disabledHit bool
	disabled := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		disabledHit = true
	}))
	defer disabled.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer failing.Close()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testFeedXML))
	}))
	defer healthy.Close()

	feeds := []Feed{
		{Name: "Disabled", URL: disabled.URL, Enabled: false},
		{Name: "Failing", URL: failing.URL, Enabled: true},
		{Name: "Healthy", URL: healthy.URL, Enabled: true},
	}

	c := NewRSS(http.DefaultClient, feeds, time.Millisecond, nil)
	records, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if disabledHit {
		t.Fatalf("disabled feed must not be fetched")
	}
	if len(records) != 1 || records[0].Source != "Healthy" {
		t.Fatalf("expected only the healthy feed's record, got %v", records)
	}
}

func TestParseFeedEntryFallsBackToDescription(t *testing.T) {
	t.Parallel()

	entry := &gofeed.Item{
		Title:       "  Padded title  ",
		Description: "Description body used when content is empty.",
		Link:        "https://example.com/x",
	}

	rec, ok := parseFeedEntry(entry, "Feed")
	if !ok {
		t.Fatalf("expected entry to parse")
	}
	if rec.Title != "Padded title" {
		t.Fatalf("title not trimmed: %q", rec.Title)
	}
	if rec.Content != "Description body used when content is empty." {
		t.Fatalf("description fallback missing: %q", rec.Content)
	}
}

func TestParseFeedEntryRejectsUntitled(t *testing.T) {
	t.Parallel()

	if _, ok := parseFeedEntry(&gofeed.Item{Title: "   ", Description: "body"}, "Feed"); ok {
		t.Fatalf("blank title must be rejected")
	}
}
