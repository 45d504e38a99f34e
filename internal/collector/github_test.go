package collector

import (
	"strings"
	"testing"
)

func TestTrimReadme(t *testing.T) {
	t.Parallel()

	readme := `<p align="center">
[![CI](https://ci.example.com/badge.svg)](https://ci.example.com)
![logo](assets/logo.png)
</p>
# Project

A toolkit for building things.`

	out := trimReadme(readme)
	if strings.Contains(out, "badge.svg") || strings.Contains(out, "logo.png") {
		t.Fatalf("badge and image lines must be dropped: %q", out)
	}
	if strings.Contains(out, "<p align") || strings.Contains(out, "</p>") {
		t.Fatalf("wrapper markup must be dropped: %q", out)
	}
	if !strings.Contains(out, "A toolkit for building things.") {
		t.Fatalf("prose lost: %q", out)
	}
}

func TestTrimReadmeCapsLength(t *testing.T) {
	t.Parallel()

	out := trimReadme(strings.Repeat("x", readmeSnippetCap+500))
	if len([]rune(out)) != readmeSnippetCap {
		t.Fatalf("expected cap at %d runes, got %d", readmeSnippetCap, len([]rune(out)))
	}
}

func TestLooksAIRelated(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"owner/llm-server":        true,
		"owner/Agent-Framework":   true,
		"acme/neural-net-utils":   true,
		"owner/terraform-modules": false,
	}
	for title, want := range cases {
		if got := looksAIRelated(title); got != want {
			t.Fatalf("looksAIRelated(%q) = %v, want %v", title, got, want)
		}
	}
}

func TestBuildTrendingContent(t *testing.T) {
	t.Parallel()

	content := buildTrendingContent(
		"acme/agentkit",
		"https://github.com/acme/agentkit",
		"Toolkit for building agents",
		"Go",
		"12,400",
		"320 stars today",
		"llm",
		"Project prose here.",
	)

	for _, want := range []string{
		"Project: acme/agentkit",
		"Link: https://github.com/acme/agentkit",
		"About: Toolkit for building agents",
		"Language: Go | Stars: 12,400 | Today: 320 stars today",
		"Topic: llm",
		"Project details:\nProject prose here.",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("content missing %q:\n%s", want, content)
		}
	}
}

func TestBuildTrendingContentOmitsEmptySections(t *testing.T) {
	t.Parallel()

	content := buildTrendingContent("a/b", "https://github.com/a/b", "", "Python", "5", "", "ml", "")
	if strings.Contains(content, "About:") {
		t.Fatalf("empty description must be omitted: %q", content)
	}
	if strings.Contains(content, "Today:") || strings.Contains(content, "Project details:") {
		t.Fatalf("empty optional sections must be omitted: %q", content)
	}
}

func TestFirstRunes(t *testing.T) {
	t.Parallel()

	if got := firstRunes("héllo wörld", 5); got != "héllo" {
		t.Fatalf("rune-based cut expected, got %q", got)
	}
	if got := firstRunes("short", 50); got != "short" {
		t.Fatalf("short input must pass through, got %q", got)
	}
}
