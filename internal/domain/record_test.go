package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestRecordValid(t *testing.T) {
	t.Parallel()

	rec := NewRecord("Model release", "A new model with better reasoning.", "https://example.com", "test")
	if !rec.Valid() {
		t.Fatalf("expected record to be valid")
	}

	blank := NewRecord("   ", "A new model with better reasoning.", "", "test")
	if blank.Valid() {
		t.Fatalf("blank title must be invalid")
	}

	thin := NewRecord("Title", "  short  ", "", "test")
	if thin.Valid() {
		t.Fatalf("content under 10 characters must be invalid")
	}
}

func TestNewRecordDefaults(t *testing.T) {
	t.Parallel()

	rec := NewRecord("Title", "Some content here.", "", "test")
	if rec.Category != CategoryOther {
		t.Fatalf("expected default category other, got %s", rec.Category)
	}
	if rec.Importance != ImportanceMedium {
		t.Fatalf("expected default importance medium, got %s", rec.Importance)
	}
	if rec.CollectedAt.IsZero() {
		t.Fatalf("expected collection timestamp to be set")
	}
}

func TestRecordJSONRoundTrip(t *testing.T) {
	t.Parallel()

	published := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	rec := Record{
		Title:       "Agent framework 2.0",
		Content:     "Release notes for the agent framework.",
		URL:         "https://example.com/release",
		Source:      "Example Blog",
		PublishedAt: &published,
		CollectedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Category:    CategoryAgentEcosystem,
		Tags:        []string{"agents", "release"},
		Author:      "Jordan",
		Summary:     "A framework release.",
		Importance:  ImportanceHigh,
		Extra:       map[string]any{"stars": "1200"},
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("unmarshal wire map: %v", err)
	}
	if wire["category"] != "agent-ecosystem" {
		t.Fatalf("expected category label, got %v", wire["category"])
	}
	if wire["published_at"] != "2026-03-14T09:30:00Z" {
		t.Fatalf("unexpected published_at %v", wire["published_at"])
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if back.Title != rec.Title || back.Category != rec.Category || back.Author != rec.Author {
		t.Fatalf("round trip mismatch: %+v", back)
	}
	if back.PublishedAt == nil || !back.PublishedAt.Equal(published) {
		t.Fatalf("published_at lost in round trip: %v", back.PublishedAt)
	}
	if len(back.Tags) != 2 || back.Tags[0] != "agents" {
		t.Fatalf("tags lost in round trip: %v", back.Tags)
	}
}

func TestRecordJSONOptionals(t *testing.T) {
	t.Parallel()

	rec := NewRecord("Title", "Ten characters at least.", "", "test")
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	s := string(data)
	if !strings.Contains(s, `"published_at":null`) {
		t.Fatalf("expected null published_at: %s", s)
	}
	if !strings.Contains(s, `"author":null`) || !strings.Contains(s, `"summary":null`) {
		t.Fatalf("expected null author and summary: %s", s)
	}
	if !strings.Contains(s, `"tags":[]`) {
		t.Fatalf("expected empty tags array, not null: %s", s)
	}
}

func TestRecordUnmarshalRestoresDefaults(t *testing.T) {
	t.Parallel()

	raw := `{"title":"T","content":"C","url":"","source":"s","published_at":null,` +
		`"collected_at":"2026-03-14T10:00:00Z","category":"","tags":null,` +
		`"author":null,"summary":null,"importance":"","extra":null}`

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Category != CategoryOther {
		t.Fatalf("expected default category, got %s", rec.Category)
	}
	if rec.Importance != ImportanceMedium {
		t.Fatalf("expected default importance, got %s", rec.Importance)
	}
}

func TestFilterFresh(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	old := now.Add(-30 * time.Hour)
	recent := now.Add(-2 * time.Hour)

	records := []Record{
		{Title: "old", PublishedAt: &old},
		{Title: "recent", PublishedAt: &recent},
		{Title: "undated"},
	}

	fresh := FilterFresh(records, 24*time.Hour, now)
	if len(fresh) != 2 {
		t.Fatalf("expected 2 fresh records, got %d", len(fresh))
	}
	if fresh[0].Title != "recent" || fresh[1].Title != "undated" {
		t.Fatalf("unexpected survivors: %s, %s", fresh[0].Title, fresh[1].Title)
	}
}

func TestSortForSummary(t *testing.T) {
	t.Parallel()

	records := []Record{
		{Title: "b-low", Importance: ImportanceLow, Category: CategoryBusiness},
		{Title: "a-high", Importance: ImportanceHigh, Category: CategoryMultimodal},
		{Title: "c-high", Importance: ImportanceHigh, Category: CategoryBusiness},
		{Title: "d-med", Importance: ImportanceMedium, Category: CategoryOther},
	}

	sorted := SortForSummary(records)

	want := []string{"c-high", "a-high", "d-med", "b-low"}
	for i, title := range want {
		if sorted[i].Title != title {
			t.Fatalf("position %d: expected %s, got %s", i, title, sorted[i].Title)
		}
	}
	if records[0].Title != "b-low" {
		t.Fatalf("input slice must not be reordered")
	}
}
