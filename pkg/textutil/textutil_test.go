package textutil

import (
	"strings"
	"testing"
)

func TestCleanScraped(t *testing.T) {
	t.Parallel()

	in := "# Project\n\n[![build](https://img.shields.io/badge.svg)](https://ci.example.com)\n\n" +
		"<p align=\"center\">intro</p>\n\n![logo](logo.png)\n\nSee the [docs](https://example.com/docs).\n\n\n\nEnd."
	out := CleanScraped(in)

	if strings.Contains(out, "shields.io") {
		t.Fatalf("badge survived cleaning: %q", out)
	}
	if strings.Contains(out, "<p") || strings.Contains(out, "</p>") {
		t.Fatalf("html tags survived cleaning: %q", out)
	}
	if strings.Contains(out, "logo.png") {
		t.Fatalf("image survived cleaning: %q", out)
	}
	if !strings.Contains(out, "See the docs.") {
		t.Fatalf("link text not preserved: %q", out)
	}
	if strings.Contains(out, "#") {
		t.Fatalf("heading marker survived cleaning: %q", out)
	}
	if strings.Contains(out, "\n\n\n") {
		t.Fatalf("blank lines not collapsed: %q", out)
	}
}

func TestStripMarkdown(t *testing.T) {
	t.Parallel()

	in := "# Title\n\nSome **bold** and *italic* and __strong__ text with `code`.\n\n" +
		"```go\nfmt.Println(\"dropped\")\n```\n\nA [link](https://example.com) and ![img](x.png)."
	out := StripMarkdown(in)

	want := "Title\n\nSome bold and italic and strong text with code.\n\nA link and ."
	if out != want {
		t.Fatalf("StripMarkdown mismatch:\ngot  %q\nwant %q", out, want)
	}
}

func TestTruncateAtBoundarySentence(t *testing.T) {
	t.Parallel()

	in := "First sentence is long enough. Second sentence keeps going and going well past the limit"
	out := TruncateAtBoundary(in, 40)

	if out != "First sentence is long enough." {
		t.Fatalf("expected sentence boundary cut, got %q", out)
	}
}

func TestTruncateAtBoundaryWord(t *testing.T) {
	t.Parallel()

	in := "word another word yet more words without any sentence end here"
	out := TruncateAtBoundary(in, 30)

	if !strings.HasSuffix(out, "...") {
		t.Fatalf("expected ellipsis, got %q", out)
	}
	if strings.Contains(out, "  ") || len([]rune(out)) > 33 {
		t.Fatalf("unexpected truncation result %q", out)
	}
}

func TestTruncateAtBoundaryShortInput(t *testing.T) {
	t.Parallel()

	if got := TruncateAtBoundary("short", 100); got != "short" {
		t.Fatalf("short input must pass through, got %q", got)
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	t.Parallel()

	in := "alpha beta gamma delta epsilon"
	out := TruncateWithEllipsis(in, 12)

	if out != "alpha beta..." {
		t.Fatalf("expected word-boundary cut with ellipsis, got %q", out)
	}
	if got := TruncateWithEllipsis("tiny", 12); got != "tiny" {
		t.Fatalf("short input must pass through, got %q", got)
	}
}
