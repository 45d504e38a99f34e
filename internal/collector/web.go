package collector

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"AIDailyNews/internal/domain"
	"AIDailyNews/internal/ports"
)

// BlogSource is one scraped blog listing page.
type BlogSource struct {
	Name    string
	URL     string
	Parser  string
	Enabled bool
}

// WebCollector scrapes vendor blog pages through per-source parser
// strategies resolved from the registry.
type WebCollector struct {
	client   *http.Client
	sources  []BlogSource
	registry *ParserRegistry
	throttle time.Duration
	logger   *slog.Logger
}

var _ ports.Collector = (*WebCollector)(nil)

// NewWeb wires an HTTP client and parser registry; nil values get defaults.
func NewWeb(client *http.Client, sources []BlogSource, registry *ParserRegistry, throttle time.Duration, logger *slog.Logger) *WebCollector {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if registry == nil {
		registry = NewParserRegistry()
	}
	if throttle <= 0 {
		throttle = 5 * time.Second
	}
	return &WebCollector{
		client:   client,
		sources:  sources,
		registry: registry,
		throttle: throttle,
		logger:   logger,
	}
}

// Name identifies the source in logs and failure isolation.
func (c *WebCollector) Name() string { return "web" }

// Collect scrapes each enabled blog in order, throttling between sources.
// Per-source failures are logged and contribute zero records.
func (c *WebCollector) Collect(ctx context.Context) ([]domain.Record, error) {
	var records []domain.Record

	for _, source := range c.sources {
		if !source.Enabled {
			continue
		}

		items, err := c.collectSource(ctx, source)
		if err != nil {
			c.warn("blog collection failed", "source", source.Name, "error", err)
		} else {
			records = append(records, items...)
		}

		if err := pause(ctx, c.throttle); err != nil {
			return records, nil
		}
	}

	c.info("web collection done", "count", len(records))
	return records, nil
}

func (c *WebCollector) collectSource(ctx context.Context, source BlogSource) ([]domain.Record, error) {
	headers := map[string]string{
		"User-Agent":      randomUserAgent(),
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	}

	doc, err := fetchDocument(ctx, c.client, source.URL, headers)
	if err != nil {
		return nil, err
	}

	strategy := source.Parser
	if strategy == "" {
		strategy = source.Name
	}
	parser := c.registry.Resolve(strategy)

	records := parser.Parse(doc, source.Name, source.URL)
	c.debug("blog parsed", "source", source.Name, "parser", parser.Name(), "count", len(records))
	return records, nil
}

func (c *WebCollector) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *WebCollector) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *WebCollector) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
