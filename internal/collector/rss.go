package collector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"AIDailyNews/internal/domain"
	"AIDailyNews/internal/ports"
)

const (
	feedEntryLimit = 15
	feedContentCap = 2000
	feedTagLimit   = 5
	rssUserAgent   = "AIDailyNews/1.0 RSS Reader"
)

// Feed is one syndicated source.
type Feed struct {
	Name    string
	URL     string
	Enabled bool
}

// RSSCollector pulls the newest entries from each configured feed.
type RSSCollector struct {
	client   *http.Client
	feeds    []Feed
	throttle time.Duration
	parser   *gofeed.Parser
	logger   *slog.Logger
}

var _ ports.Collector = (*RSSCollector)(nil)

// NewRSS wires an HTTP client; nil gets a default with timeout.
func NewRSS(client *http.Client, feeds []Feed, throttle time.Duration, logger *slog.Logger) *RSSCollector {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	return &RSSCollector{
		client:   client,
		feeds:    feeds,
		throttle: throttle,
		parser:   gofeed.NewParser(),
		logger:   logger,
	}
}

// Name identifies the source in logs and failure isolation.
func (c *RSSCollector) Name() string { return "rss" }

// Collect walks the enabled feeds in order, throttling between them.
// Per-feed failures are logged and contribute zero records.
func (c *RSSCollector) Collect(ctx context.Context) ([]domain.Record, error) {
	var records []domain.Record

	for _, feed := range c.feeds {
		if !feed.Enabled {
			continue
		}

		items, err := c.collectFeed(ctx, feed)
		if err != nil {
			c.warn("feed collection failed", "feed", feed.Name, "error", err)
		} else {
			records = append(records, items...)
		}

		if err := pause(ctx, c.throttle); err != nil {
			return records, nil
		}
	}

	c.info("rss collection done", "count", len(records))
	return records, nil
}

func (c *RSSCollector) collectFeed(ctx context.Context, feed Feed) ([]domain.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", rssUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	parsed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	entries := parsed.Items
	if len(entries) > feedEntryLimit {
		entries = entries[:feedEntryLimit]
	}

	var records []domain.Record
	for _, entry := range entries {
		rec, ok := parseFeedEntry(entry, feed.Name)
		if ok && rec.Valid() {
			records = append(records, rec)
		}
	}
	return records, nil
}

// parseFeedEntry normalizes one feed item into a Record.
func parseFeedEntry(entry *gofeed.Item, sourceName string) (domain.Record, bool) {
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		return domain.Record{}, false
	}

	content := entry.Content
	if content == "" {
		content = entry.Description
	}
	content = stripHTML(content)
	content = firstRunes(content, feedContentCap)

	rec := domain.NewRecord(title, content, entry.Link, sourceName)

	if entry.PublishedParsed != nil {
		published := entry.PublishedParsed.UTC()
		rec.PublishedAt = &published
	} else if entry.UpdatedParsed != nil {
		updated := entry.UpdatedParsed.UTC()
		rec.PublishedAt = &updated
	}

	if entry.Author != nil {
		rec.Author = entry.Author.Name
	}

	tags := entry.Categories
	if len(tags) > feedTagLimit {
		tags = tags[:feedTagLimit]
	}
	rec.Tags = tags

	return rec, true
}

// stripHTML reduces feed markup to its text, one line per block element.
func stripHTML(content string) string {
	if content == "" || !strings.Contains(content, "<") {
		return strings.TrimSpace(content)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return strings.TrimSpace(content)
	}

	var lines []string
	doc.Find("body").Contents().Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	if len(lines) == 0 {
		return strings.TrimSpace(doc.Text())
	}
	return strings.Join(lines, "\n")
}

func (c *RSSCollector) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *RSSCollector) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
