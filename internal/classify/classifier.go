// Package classify assigns a topical category to records by keyword scoring.
package classify

import (
	"log/slog"
	"sort"
	"strings"

	"AIDailyNews/internal/domain"
)

// Rule binds one category to its keyword set. The position of a rule in the
// classifier's list is its priority: ties in keyword count resolve to the
// earliest rule.
type Rule struct {
	Category domain.Category
	Keywords []string
}

// DefaultRules is the built-in ordered table. Order here is the documented
// tie-break, not an accident of map iteration.
func DefaultRules() []Rule {
	return []Rule{
		{domain.CategoryModelProgress, []string{
			"gpt", "claude", "gemini", "llama", "qwen", "deepseek", "mistral",
			"llm", "language model", "foundation model", "frontier model",
			"benchmark", "reasoning", "pretrain", "fine-tun", "parameters",
		}},
		{domain.CategoryMultimodal, []string{
			"multimodal", "vision", "image", "video", "audio", "speech",
			"sora", "text-to-image", "text-to-video", "diffusion",
			"image generation", "voice",
		}},
		{domain.CategoryAgentEcosystem, []string{
			"agent", "tool use", "function calling", "mcp", "autonomous",
			"workflow", "computer use", "browser automation", "orchestration",
			"multi-agent",
		}},
		{domain.CategoryOpenSource, []string{
			"open source", "open-source", "github", "release", "apache",
			"mit license", "model weights", "huggingface", "repository",
			"open weights",
		}},
		{domain.CategoryBusiness, []string{
			"launch", "product", "funding", "valuation", "acquisition",
			"partnership", "enterprise", "api", "subscription", "pricing",
			"revenue",
		}},
	}
}

// Classifier scores records against an ordered keyword table. Stateless per
// call; safe for reuse across runs.
type Classifier struct {
	rules  []Rule
	logger *slog.Logger
}

// New merges caller-supplied keyword additions into the default table.
// Known labels extend the matching rule in place; unknown labels become new
// trailing rules, appended in sorted-label order so priority never depends
// on map iteration.
func New(custom map[string][]string, logger *slog.Logger) *Classifier {
	rules := DefaultRules()

	if len(custom) > 0 {
		index := make(map[domain.Category]int, len(rules))
		for i, rule := range rules {
			index[rule.Category] = i
		}

		labels := make([]string, 0, len(custom))
		for label := range custom {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		for _, label := range labels {
			if i, ok := index[domain.Category(label)]; ok {
				rules[i].Keywords = append(rules[i].Keywords, custom[label]...)
				continue
			}
			rules = append(rules, Rule{Category: domain.Category(label), Keywords: custom[label]})
		}
	}

	return NewWithRules(rules, logger)
}

// NewWithRules builds a classifier over an explicit rule table, used by
// callers that need the priority order pinned.
func NewWithRules(rules []Rule, logger *slog.Logger) *Classifier {
	return &Classifier{rules: rules, logger: logger}
}

// Classify scores the record and mutates its category. Idempotent: a record
// already carrying a non-default category is returned untouched.
func (c *Classifier) Classify(rec *domain.Record) *domain.Record {
	if rec.Category != domain.CategoryOther {
		return rec
	}

	text := strings.ToLower(rec.Title + " " + rec.Content)

	best := domain.CategoryOther
	bestScore := 0
	for _, rule := range c.rules {
		score := 0
		for _, keyword := range rule.Keywords {
			if strings.Contains(text, strings.ToLower(keyword)) {
				score++
			}
		}
		// strictly greater: earlier rules win ties
		if score > bestScore {
			best = rule.Category
			bestScore = score
		}
	}

	rec.Category = best
	return rec
}

// ClassifyAll classifies every record in place and logs the resulting
// category histogram.
func (c *Classifier) ClassifyAll(records []domain.Record) []domain.Record {
	counts := map[domain.Category]int{}
	for i := range records {
		c.Classify(&records[i])
		counts[records[i].Category]++
	}

	if c.logger != nil {
		args := make([]any, 0, 2*len(counts))
		for _, rule := range c.rules {
			if n, ok := counts[rule.Category]; ok {
				args = append(args, string(rule.Category), n)
			}
		}
		if n, ok := counts[domain.CategoryOther]; ok {
			args = append(args, string(domain.CategoryOther), n)
		}
		c.logger.Info("classification complete", args...)
	}

	return records
}
