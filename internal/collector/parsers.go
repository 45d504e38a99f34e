package collector

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"AIDailyNews/internal/domain"
)

// PageParser extracts records from one fetched blog page. Each known vendor
// gets its own strategy; everything else falls through to the generic one.
type PageParser interface {
	Name() string
	Parse(doc *goquery.Document, sourceName, baseURL string) []domain.Record
}

// ParserRegistry maps strategy names to their implementations.
type ParserRegistry struct {
	parsers map[string]PageParser
}

// NewParserRegistry builds a registry with all built-in strategies.
func NewParserRegistry() *ParserRegistry {
	r := &ParserRegistry{parsers: map[string]PageParser{}}
	r.Register(anthropicParser{})
	r.Register(googleParser{})
	r.Register(genericParser{})
	return r
}

// Register adds or replaces a strategy.
func (r *ParserRegistry) Register(p PageParser) {
	if r.parsers == nil {
		r.parsers = map[string]PageParser{}
	}
	r.parsers[p.Name()] = p
}

// Resolve returns the strategy for name, falling back to the generic parser.
func (r *ParserRegistry) Resolve(name string) PageParser {
	if p, ok := r.parsers[strings.ToLower(name)]; ok {
		return p
	}
	return genericParser{}
}

const blogArticleLimit = 10

// anthropicParser handles the Anthropic news listing.
type anthropicParser struct{}

func (anthropicParser) Name() string { return "anthropic" }

func (anthropicParser) Parse(doc *goquery.Document, sourceName, baseURL string) []domain.Record {
	var records []domain.Record

	doc.Find("article, .post-card, [class*='blog-post']").EachWithBreak(func(i int, article *goquery.Selection) bool {
		if i >= blogArticleLimit {
			return false
		}

		title := firstText(article, "h2", "h3", ".title", "[class*='title']")
		if title == "" {
			return true
		}

		link := resolveLink(article, baseURL)
		summary := firstText(article, "p", ".excerpt", ".summary", "[class*='description']")

		rec := domain.NewRecord(title, summary, link, "Anthropic Blog")
		rec.Category = domain.CategoryModelProgress
		rec.Tags = []string{"anthropic", "claude"}
		if published := extractDate(article); published != nil {
			rec.PublishedAt = published
		}

		if rec.Valid() {
			records = append(records, rec)
		}
		return true
	})

	return records
}

// googleParser handles the Google AI blog listing.
type googleParser struct{}

func (googleParser) Name() string { return "google" }

func (googleParser) Parse(doc *goquery.Document, sourceName, baseURL string) []domain.Record {
	var records []domain.Record

	doc.Find("article, .uni-blog-article, [class*='article']").EachWithBreak(func(i int, article *goquery.Selection) bool {
		if i >= blogArticleLimit {
			return false
		}

		title := firstText(article, "h2", "h3", ".title")
		if title == "" {
			return true
		}

		link := resolveLink(article, baseURL)
		summary := firstText(article, "p", ".snippet")

		rec := domain.NewRecord(title, summary, link, "Google AI Blog")
		rec.Category = domain.CategoryModelProgress
		rec.Tags = []string{"google", "gemini"}

		if rec.Valid() {
			records = append(records, rec)
		}
		return true
	})

	return records
}

// genericParser tries common article containers on arbitrary pages.
type genericParser struct{}

func (genericParser) Name() string { return "generic" }

func (genericParser) Parse(doc *goquery.Document, sourceName, baseURL string) []domain.Record {
	selectors := []string{
		"article",
		"[class*='post']",
		"[class*='article']",
		"[class*='blog']",
		"[class*='card']",
		".news-item",
		".list-item",
	}

	var articles *goquery.Selection
	for _, selector := range selectors {
		found := doc.Find(selector)
		if found.Length() >= 3 {
			articles = found
			break
		}
	}
	if articles == nil {
		return nil
	}

	var records []domain.Record
	articles.EachWithBreak(func(i int, article *goquery.Selection) bool {
		if i >= blogArticleLimit {
			return false
		}

		title := firstText(article, "h1", "h2", "h3", "h4", "[class*='title']", "a")
		if len([]rune(title)) < 5 {
			return true
		}

		link := resolveLink(article, baseURL)
		summary := firstText(article, "p")
		if summary == "" {
			summary = title
		}

		rec := domain.NewRecord(title, summary, link, sourceName)
		rec.Tags = []string{strings.ReplaceAll(strings.ToLower(sourceName), " ", "-")}

		if rec.Valid() {
			records = append(records, rec)
		}
		return true
	})

	return records
}

// firstText returns the trimmed text of the first selector that matches.
func firstText(sel *goquery.Selection, selectors ...string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(sel.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// resolveLink finds the first anchor href and resolves it against baseURL.
func resolveLink(sel *goquery.Selection, baseURL string) string {
	href, ok := sel.Find("a[href]").First().Attr("href")
	if !ok || href == "" {
		return baseURL
	}
	if strings.HasPrefix(href, "http") {
		return href
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	ref, err := url.Parse(href)
	if err != nil {
		return baseURL
	}
	return base.ResolveReference(ref).String()
}

var blogDateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// extractDate reads a publish time from a time element or dated text node.
func extractDate(sel *goquery.Selection) *time.Time {
	dateEl := sel.Find("time, .date, [class*='date']").First()
	if dateEl.Length() == 0 {
		return nil
	}

	text, ok := dateEl.Attr("datetime")
	if !ok {
		text = dateEl.Text()
	}
	text = strings.TrimSpace(text)

	for _, format := range blogDateFormats {
		if parsed, err := time.Parse(format, text); err == nil {
			parsed = parsed.UTC()
			return &parsed
		}
	}
	return nil
}
