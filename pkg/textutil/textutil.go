// Package textutil holds the text cleaning rules applied wherever raw
// scraped or generated markup is surfaced in report output. The transforms
// are deterministic; identical input always yields identical output.
package textutil

import (
	"regexp"
	"strings"
)

var (
	htmlTagExpr    = regexp.MustCompile(`<[^>]+>`)
	badgeExpr      = regexp.MustCompile(`\[!\[[^\]]*\]\([^)]*\)\]\([^)]*\)`)
	imageExpr      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkExpr       = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	headingExpr    = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	boldExpr       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicExpr     = regexp.MustCompile(`\*([^*]+)\*`)
	underBoldExpr  = regexp.MustCompile(`__([^_]+)__`)
	underItalExpr  = regexp.MustCompile("_([^_]+)_")
	codeBlockExpr  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeExpr = regexp.MustCompile("`([^`]*)`")
	blankLinesExpr = regexp.MustCompile(`\n{3,}`)
)

// CleanScraped normalizes raw scraped text for report surfacing: HTML tags
// and badge/image syntax removed, links reduced to their text, heading
// markers stripped, runs of blank lines collapsed.
func CleanScraped(s string) string {
	s = badgeExpr.ReplaceAllString(s, "")
	s = htmlTagExpr.ReplaceAllString(s, "")
	s = imageExpr.ReplaceAllString(s, "")
	s = linkExpr.ReplaceAllString(s, "$1")
	s = headingExpr.ReplaceAllString(s, "")
	s = blankLinesExpr.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// StripMarkdown turns a markdown document into plain text: images removed,
// links reduced to their text, heading/emphasis/code markers removed, code
// blocks dropped, excess blank lines collapsed.
func StripMarkdown(s string) string {
	s = codeBlockExpr.ReplaceAllString(s, "")
	s = imageExpr.ReplaceAllString(s, "")
	s = linkExpr.ReplaceAllString(s, "$1")
	s = headingExpr.ReplaceAllString(s, "")
	s = boldExpr.ReplaceAllString(s, "$1")
	s = italicExpr.ReplaceAllString(s, "$1")
	s = underBoldExpr.ReplaceAllString(s, "$1")
	s = underItalExpr.ReplaceAllString(s, "$1")
	s = inlineCodeExpr.ReplaceAllString(s, "$1")
	s = blankLinesExpr.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// TruncateAtBoundary caps s at max runes, preferring a sentence end past the
// halfway mark, then a line break, then a word break with an ellipsis. It
// never cuts mid-word.
func TruncateAtBoundary(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	head := runes[:max]
	if cut := lastIndexRune(head, '.'); cut > max/2 {
		return string(head[:cut+1])
	}
	if cut := lastIndexRune(head, '\n'); cut > max/2 {
		return strings.TrimRight(string(head[:cut]), "\n")
	}
	if cut := lastIndexRune(head, ' '); cut > max/2 {
		return strings.TrimRight(string(head[:cut]), " ") + "..."
	}
	return string(head) + "..."
}

// TruncateWithEllipsis caps s at max runes on a word boundary, appending an
// ellipsis when anything was removed.
func TruncateWithEllipsis(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	head := runes[:max]
	if cut := lastIndexRune(head, ' '); cut > 0 {
		head = head[:cut]
	}
	return strings.TrimSpace(string(head)) + "..."
}

func lastIndexRune(runes []rune, target rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == target {
			return i
		}
	}
	return -1
}
