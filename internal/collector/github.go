package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"AIDailyNews/internal/analyze"
	"AIDailyNews/internal/domain"
	"AIDailyNews/internal/ports"
)

const (
	trendingURL = "https://github.com/trending"
	apiBase     = "https://api.github.com"

	topicLimit        = 3
	perTopicLimit     = 5
	generalScanLimit  = 20
	repoLimit         = 10
	readmeSnippetCap  = 800
	releaseFreshness  = 48 * time.Hour
	readmePauseFactor = 4
)

// aiKeywords filters the general trending page down to AI-adjacent repos.
var aiKeywords = []string{"ai", "llm", "gpt", "model", "ml", "deep", "neural", "agent"}

// GitHubConfig selects what the collector scrapes.
type GitHubConfig struct {
	Topics       []string
	Repositories []string
	Since        string
	Throttle     time.Duration
}

// GitHubCollector scrapes the trending page per topic, enriches entries with
// README excerpts, and collects fresh releases of watched repositories.
type GitHubCollector struct {
	client *http.Client
	cfg    GitHubConfig
	logger *slog.Logger
}

var _ ports.Collector = (*GitHubCollector)(nil)

// NewGitHub wires an HTTP client; nil gets a default with timeout.
func NewGitHub(client *http.Client, cfg GitHubConfig, logger *slog.Logger) *GitHubCollector {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if cfg.Since == "" {
		cfg.Since = "daily"
	}
	if cfg.Throttle <= 0 {
		cfg.Throttle = 2 * time.Second
	}
	return &GitHubCollector{client: client, cfg: cfg, logger: logger}
}

// Name identifies the source in logs and failure isolation.
func (c *GitHubCollector) Name() string { return "github" }

// Collect gathers trending entries and watched-repo releases. Page-level
// failures are logged and skipped; the method fails only when nothing at
// all could be fetched.
func (c *GitHubCollector) Collect(ctx context.Context) ([]domain.Record, error) {
	records, err := c.collectTrending(ctx)
	if err != nil {
		return nil, err
	}

	if len(c.cfg.Repositories) > 0 {
		records = append(records, c.collectReleases(ctx)...)
	}

	c.info("github collection done", "count", len(records))
	return records, nil
}

func (c *GitHubCollector) collectTrending(ctx context.Context) ([]domain.Record, error) {
	var records []domain.Record
	var lastErr error

	topics := c.cfg.Topics
	if len(topics) > topicLimit {
		topics = topics[:topicLimit]
	}

	for _, topic := range topics {
		pageURL := fmt.Sprintf("%s?since=%s&spoken_language_code=&topic=%s", trendingURL, c.cfg.Since, url.QueryEscape(topic))
		doc, err := fetchDocument(ctx, c.client, pageURL, map[string]string{"User-Agent": randomUserAgent()})
		if err != nil {
			lastErr = err
			c.warn("trending topic fetch failed", "topic", topic, "error", err)
			continue
		}

		topicRecords := c.parseTrendingDoc(ctx, doc, topic)
		if len(topicRecords) > perTopicLimit {
			topicRecords = topicRecords[:perTopicLimit]
		}
		records = append(records, topicRecords...)

		if err := pause(ctx, c.cfg.Throttle); err != nil {
			return records, err
		}
	}

	generalURL := fmt.Sprintf("%s?since=%s", trendingURL, c.cfg.Since)
	doc, err := fetchDocument(ctx, c.client, generalURL, map[string]string{"User-Agent": randomUserAgent()})
	if err != nil {
		lastErr = err
		c.warn("general trending fetch failed", "error", err)
	} else {
		general := c.parseTrendingDoc(ctx, doc, "general")
		if len(general) > generalScanLimit {
			general = general[:generalScanLimit]
		}
		for _, rec := range general {
			if looksAIRelated(rec.Title) {
				records = append(records, rec)
			}
		}
	}

	if len(records) == 0 && lastErr != nil {
		return nil, fmt.Errorf("github trending: %w", lastErr)
	}
	return records, nil
}

// parseTrendingDoc extracts repository rows from a trending page and
// enriches each with a README excerpt.
func (c *GitHubCollector) parseTrendingDoc(ctx context.Context, doc *goquery.Document, topic string) []domain.Record {
	var records []domain.Record

	doc.Find("article.Box-row").Each(func(_ int, row *goquery.Selection) {
		href, _ := row.Find("h2 a").First().Attr("href")
		repoPath := strings.Trim(strings.TrimSpace(href), "/")
		if repoPath == "" {
			return
		}
		repoURL := "https://github.com/" + repoPath

		description := strings.TrimSpace(row.Find("p").First().Text())

		language := strings.TrimSpace(row.Find("[itemprop='programmingLanguage']").First().Text())
		if language == "" {
			language = "Unknown"
		}

		stars := strings.TrimSpace(row.Find("a[href$='/stargazers']").First().Text())
		if stars == "" {
			stars = "0"
		}

		todayStars := strings.TrimSpace(row.Find("span.d-inline-block.float-sm-right").First().Text())

		readme := c.fetchReadmeSnippet(ctx, repoPath)
		_ = pause(ctx, c.cfg.Throttle/readmePauseFactor)

		content := buildTrendingContent(repoPath, repoURL, description, language, stars, todayStars, topic, readme)

		published := time.Now().UTC()
		rec := domain.NewRecord("GitHub Trending: "+repoPath, content, repoURL, analyze.SourceTrending)
		rec.PublishedAt = &published
		rec.Category = domain.CategoryOpenSource
		rec.Tags = []string{"github", "trending", topic, strings.ToLower(language)}
		rec.Extra = map[string]any{
			"repo_path":      repoPath,
			"language":       language,
			"stars":          stars,
			"today_stars":    todayStars,
			"topic":          topic,
			"description":    description,
			"readme_snippet": readme,
		}

		if rec.Valid() {
			records = append(records, rec)
		}
	})

	return records
}

func buildTrendingContent(repoPath, repoURL, description, language, stars, todayStars, topic, readme string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", repoPath)
	fmt.Fprintf(&b, "Link: %s\n", repoURL)
	if description != "" {
		fmt.Fprintf(&b, "About: %s\n", description)
	}
	fmt.Fprintf(&b, "Language: %s | Stars: %s", language, stars)
	if todayStars != "" {
		fmt.Fprintf(&b, " | Today: %s", todayStars)
	}
	fmt.Fprintf(&b, "\nTopic: %s\n", topic)
	if readme != "" {
		fmt.Fprintf(&b, "\nProject details:\n%s\n", readme)
	}
	return strings.TrimSpace(b.String())
}

// fetchReadmeSnippet pulls the raw README head for a repository; failures
// degrade to an empty snippet.
func (c *GitHubCollector) fetchReadmeSnippet(ctx context.Context, repoPath string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"/repos/"+repoPath+"/readme", nil)
	if err != nil {
		return ""
	}
	req.Header.Set("Accept", "application/vnd.github.v3.raw")
	req.Header.Set("User-Agent", "AIDailyNews/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		c.debug("readme fetch failed", "repo", repoPath, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return ""
	}

	return trimReadme(string(body))
}

// trimReadme drops badge, image and layout-markup lines and caps the text.
func trimReadme(readme string) string {
	var kept []string
	for _, line := range strings.Split(readme, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "![") || strings.HasPrefix(stripped, "[![") || strings.HasPrefix(stripped, "<img") {
			continue
		}
		if strings.HasPrefix(stripped, "<p align") || strings.HasPrefix(stripped, "</p>") {
			continue
		}
		kept = append(kept, line)
	}

	text := strings.TrimSpace(strings.Join(kept, "\n"))
	runes := []rune(text)
	if len(runes) > readmeSnippetCap {
		return string(runes[:readmeSnippetCap])
	}
	return text
}

// collectReleases fetches the latest release of each watched repository and
// keeps those published inside the freshness window. Per-repo failures are
// logged and skipped.
func (c *GitHubCollector) collectReleases(ctx context.Context) []domain.Record {
	var records []domain.Record

	repos := c.cfg.Repositories
	if len(repos) > repoLimit {
		repos = repos[:repoLimit]
	}

	for _, repo := range repos {
		rec, ok := c.fetchLatestRelease(ctx, repo)
		if ok {
			records = append(records, rec)
		}
		if err := pause(ctx, c.cfg.Throttle/2); err != nil {
			return records
		}
	}
	return records
}

func (c *GitHubCollector) fetchLatestRelease(ctx context.Context, repo string) (domain.Record, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"/repos/"+repo+"/releases/latest", nil)
	if err != nil {
		return domain.Record{}, false
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "AIDailyNews/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		c.debug("release fetch failed", "repo", repo, "error", err)
		return domain.Record{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Record{}, false
	}

	var release struct {
		TagName     string    `json:"tag_name"`
		Name        string    `json:"name"`
		Body        string    `json:"body"`
		HTMLURL     string    `json:"html_url"`
		PublishedAt time.Time `json:"published_at"`
		Prerelease  bool      `json:"prerelease"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		c.debug("release decode failed", "repo", repo, "error", err)
		return domain.Record{}, false
	}

	if time.Since(release.PublishedAt) > releaseFreshness {
		return domain.Record{}, false
	}

	body := release.Body
	if body == "" {
		body = "No release notes."
	}
	content := fmt.Sprintf("Version: %s\nName: %s\nPublished: %s\n\nChanges:\n%s",
		release.TagName, release.Name,
		release.PublishedAt.Format("2006-01-02 15:04"),
		firstRunes(body, 500))

	releaseURL := release.HTMLURL
	if releaseURL == "" {
		releaseURL = "https://github.com/" + repo
	}

	published := release.PublishedAt.UTC()
	rec := domain.NewRecord(
		fmt.Sprintf("%s released %s", repo, release.TagName),
		content, releaseURL, "GitHub - "+repo)
	rec.PublishedAt = &published
	rec.Category = domain.CategoryOpenSource
	rec.Tags = []string{"github", "release", strings.SplitN(repo, "/", 2)[0]}
	rec.Extra = map[string]any{
		"repo":       repo,
		"version":    release.TagName,
		"prerelease": release.Prerelease,
	}

	return rec, rec.Valid()
}

func looksAIRelated(title string) bool {
	lower := strings.ToLower(title)
	for _, keyword := range aiKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func firstRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}

func (c *GitHubCollector) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *GitHubCollector) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *GitHubCollector) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
