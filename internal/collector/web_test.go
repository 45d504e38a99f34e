package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testBlogHTML = `<html><body>
<article><h2>First launch announcement</h2><p>Details about the first launch announcement.</p><a href="/posts/1">read</a></article>
<article><h2>Second launch announcement</h2><p>Details about the second launch announcement.</p><a href="/posts/2">read</a></article>
<article><h2>Third launch announcement</h2><p>Details about the third launch announcement.</p><a href="/posts/3">read</a></article>
</body></html>`

func TestWebCollect(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Language") == "" {
			t.Errorf("accept-language header missing")
		}
		w.Write([]byte(testBlogHTML))
	}))
	defer srv.Close()

	sources := []BlogSource{{Name: "Example Blog", URL: srv.URL, Enabled: true}}
	c := NewWeb(srv.Client(), sources, NewParserRegistry(), time.Millisecond, nil)

	records, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Source != "Example Blog" {
		t.Fatalf("unexpected source %q", records[0].Source)
	}
	if records[0].URL != srv.URL+"/posts/1" {
		t.Fatalf("link not resolved against source url: %q", records[0].URL)
	}
}

func TestWebCollectSourceFailureIsolated(t *testing.T) {
	t.Parallel()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testBlogHTML))
	}))
	defer healthy.Close()

	sources := []BlogSource{
		{Name: "Failing Blog", URL: failing.URL, Enabled: true},
		{Name: "Healthy Blog", URL: healthy.URL, Enabled: true},
	}
	c := NewWeb(http.DefaultClient, sources, NewParserRegistry(), time.Millisecond, nil)

	records, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected records from the healthy blog only, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Source != "Healthy Blog" {
			t.Fatalf("unexpected source %q", rec.Source)
		}
	}
}
