package analyze

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"AIDailyNews/internal/domain"
	"AIDailyNews/pkg/textutil"
)

// SourceTrending marks records scraped off the GitHub trending page; the
// fallback composer treats them as project items with richer blocks.
const SourceTrending = "GitHub Trending"

const (
	readmeExcerptBudget = 300
	briefExcerptBudget  = 200

	// recommend tiers on daily star growth
	hotDailyStars    = 500
	steadyDailyStars = 100

	fallbackProjectCap  = 5
	fallbackBriefCap    = 8
	highlightProjectCap = 3
	linkProjectCap      = 6
	linkReadingCap      = 5
)

var (
	digitsExpr     = regexp.MustCompile(`\d+`)
	hnNoiseExpr    = regexp.MustCompile(`(?m)^(Article URL|Comments URL):\s*\n?\s*\S+\s*$`)
	hnCountersExpr = regexp.MustCompile(`(?m)^(Points:\s*\d+|#?\s*Comments:\s*\d+)\s*$`)
)

// fallbackAnalysis is the deterministic replacement for the LLM analysis:
// a trending-projects section followed by compact industry briefs.
func fallbackAnalysis(records []domain.Record) string {
	projects, general := partitionRecords(records)

	var b strings.Builder

	if len(projects) > 0 {
		b.WriteString("## 🔥 Trending Open-Source Picks\n\n")
		fmt.Fprintf(&b, "**%d** AI-related projects made GitHub Trending today. The ones worth a look:\n\n", len(projects))
		for _, rec := range capRecords(projects, fallbackProjectCap) {
			b.WriteString(projectBlock(rec))
		}
	}

	if len(general) > 0 {
		b.WriteString("## 📰 Industry Briefs\n\n")
		for i, rec := range capRecords(general, fallbackBriefCap) {
			b.WriteString(briefBlock(rec, i+1))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// fallbackReport is the deterministic replacement for the LLM-composed
// document: header, highlights, analysis body, link roundup, footer.
func fallbackReport(records []domain.Record, analysis, dateStr string) string {
	projects, general := partitionRecords(records)

	lines := []string{
		"# 🤖 AI Daily | " + dateStr,
		"",
		"> A curated daily digest of notable AI projects and industry news.",
		"",
		"## ✨ Highlights",
		"",
		fmt.Sprintf("**%d** items collected today: %s.", len(records), categoryBreakdown(records)),
		"",
	}

	for _, rec := range capRecords(projects, highlightProjectCap) {
		repoPath := extraString(rec.Extra, "repo_path")
		if repoPath == "" {
			repoPath = rec.Title
		}
		bullet := fmt.Sprintf("- 🔥 **%s**", repoPath)
		if desc := extraString(rec.Extra, "description"); desc != "" {
			bullet += ": " + desc
		}
		if delta, ok := dailyStarCount(rec.Extra); ok {
			bullet += fmt.Sprintf(" (+%d ⭐ today)", delta)
		}
		lines = append(lines, bullet)
	}
	if len(projects) > 0 {
		lines = append(lines, "")
	}

	lines = append(lines, "---", "")

	if analysis != "" {
		lines = append(lines, analysis, "", "---", "")
	}

	lines = append(lines, "## 📎 Today's Links", "")

	if len(projects) > 0 {
		lines = append(lines, "**Open-source projects**:")
		for _, rec := range capRecords(projects, linkProjectCap) {
			repoPath := extraString(rec.Extra, "repo_path")
			if repoPath == "" || rec.URL == "" {
				continue
			}
			entry := fmt.Sprintf("- [%s](%s)", repoPath, rec.URL)
			if stars := extraString(rec.Extra, "stars"); stars != "" {
				entry += fmt.Sprintf(" (⭐ %s)", stars)
			}
			lines = append(lines, entry)
		}
		lines = append(lines, "")
	}

	if len(general) > 0 {
		lines = append(lines, "**Further reading**:")
		for _, rec := range capRecords(general, linkReadingCap) {
			if rec.URL == "" {
				continue
			}
			title := strings.TrimPrefix(rec.Title, "Show HN: ")
			title = strings.TrimPrefix(title, "Ask HN: ")
			lines = append(lines, fmt.Sprintf("- [%s](%s)", title, rec.URL))
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		"---",
		"",
		fmt.Sprintf("*Compiled automatically on %s from public AI industry sources.*", dateStr),
	)

	return strings.Join(lines, "\n")
}

// projectBlock renders one trending repository: heading with link, metrics
// line, description, cleaned README excerpt, recommend annotation.
func projectBlock(rec domain.Record) string {
	repoPath := extraString(rec.Extra, "repo_path")
	if repoPath == "" {
		repoPath = rec.Title
	}
	url := rec.URL
	if url == "" {
		url = "https://github.com/" + repoPath
	}

	lines := []string{fmt.Sprintf("### 📌 [%s](%s)", repoPath, url), ""}

	stars := extraString(rec.Extra, "stars")
	if stars == "" {
		stars = "N/A"
	}
	metrics := fmt.Sprintf("⭐ **%s** stars", stars)
	if delta, ok := dailyStarCount(rec.Extra); ok {
		metrics += fmt.Sprintf("  |  📈 **+%d** today", delta)
	}
	if lang := extraString(rec.Extra, "language"); lang != "" && lang != "Unknown" {
		metrics += "  |  💻 " + lang
	}
	lines = append(lines, metrics, "")

	if desc := extraString(rec.Extra, "description"); desc != "" {
		lines = append(lines, "**About**: "+desc, "")
	}

	if readme := textutil.CleanScraped(extraString(rec.Extra, "readme_snippet")); readme != "" {
		lines = append(lines, "**Details**: "+textutil.TruncateAtBoundary(readme, readmeExcerptBudget), "")
	}

	if delta, ok := dailyStarCount(rec.Extra); ok {
		switch {
		case delta > hotDailyStars:
			lines = append(lines, fmt.Sprintf("🔥 **Why it matters**: star growth is surging (+%d today); the community is paying close attention.", delta), "")
		case delta > steadyDailyStars:
			lines = append(lines, fmt.Sprintf("👍 **Why it matters**: +%d stars today keeps it among the steadily trending projects.", delta), "")
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// briefBlock renders one general news item: index, title, source, cleaned
// excerpt, link.
func briefBlock(rec domain.Record, index int) string {
	content := stripAggregatorNoise(rec.Content)
	content = textutil.CleanScraped(content)

	var brief string
	if len([]rune(content)) > 20 {
		brief = textutil.TruncateWithEllipsis(content, briefExcerptBudget)
	}

	lines := []string{fmt.Sprintf("**%d. %s**", index, rec.Title)}
	if rec.Source != "" {
		lines = append(lines, fmt.Sprintf("*Source: %s*", rec.Source))
	}
	lines = append(lines, "")
	if brief != "" {
		lines = append(lines, "> "+brief, "")
	}
	if rec.URL != "" {
		lines = append(lines, fmt.Sprintf("🔗 [Read more](%s)", rec.URL))
	}
	lines = append(lines, "", "")
	return strings.Join(lines, "\n")
}

// partitionRecords splits project items from general news, preserving order.
func partitionRecords(records []domain.Record) (projects, general []domain.Record) {
	for _, rec := range records {
		if rec.Source == SourceTrending {
			projects = append(projects, rec)
		} else {
			general = append(general, rec)
		}
	}
	return projects, general
}

// categoryBreakdown formats the category→count histogram, descending by
// count with label order breaking ties.
func categoryBreakdown(records []domain.Record) string {
	counts := map[domain.Category]int{}
	for _, rec := range records {
		counts[rec.Category]++
	}

	type entry struct {
		label string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for category, count := range counts {
		entries = append(entries, entry{string(category), count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].label < entries[j].label
	})

	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s (%d)", e.label, e.count)
	}
	return strings.Join(parts, ", ")
}

// dailyStarCount extracts the numeric daily star delta from the scraped
// "today stars" text, e.g. "1,024 stars today".
func dailyStarCount(extra map[string]any) (int, bool) {
	raw := extraString(extra, "today_stars")
	if raw == "" {
		return 0, false
	}
	match := digitsExpr.FindString(strings.ReplaceAll(raw, ",", ""))
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

func capRecords(records []domain.Record, limit int) []domain.Record {
	if len(records) > limit {
		return records[:limit]
	}
	return records
}

// stripAggregatorNoise removes Hacker News style boilerplate lines that add
// no information to an excerpt.
func stripAggregatorNoise(content string) string {
	content = hnNoiseExpr.ReplaceAllString(content, "")
	content = hnCountersExpr.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}
