package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Category buckets a record by topic. Values double as the JSON labels.
type Category string

const (
	CategoryModelProgress  Category = "model-progress"
	CategoryMultimodal     Category = "multimodal"
	CategoryAgentEcosystem Category = "agent-ecosystem"
	CategoryOpenSource     Category = "open-source"
	CategoryBusiness       Category = "business"
	CategoryOther          Category = "other"
)

// Importance ranks how prominently a record should surface in the report.
type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

// rank orders importance for summary sorting; high first.
func (i Importance) rank() int {
	switch i {
	case ImportanceHigh:
		return 0
	case ImportanceMedium:
		return 1
	default:
		return 2
	}
}

// Record is the normalized unit flowing through every pipeline stage.
// Collectors create it, the Classifier sets Category at most once, the
// Analyzer sets Summary at most once, and the report assembler serializes
// it verbatim.
type Record struct {
	Title   string
	Content string
	URL     string
	Source  string

	PublishedAt *time.Time
	CollectedAt time.Time

	Category Category
	Tags     []string

	Author     string
	Summary    string
	Importance Importance

	Extra map[string]any
}

// NewRecord stamps collection time and default classification.
func NewRecord(title, content, url, source string) Record {
	return Record{
		Title:       title,
		Content:     content,
		URL:         url,
		Source:      source,
		CollectedAt: time.Now().UTC(),
		Category:    CategoryOther,
		Importance:  ImportanceMedium,
	}
}

// Valid reports whether the record may enter the pipeline: a non-blank
// title and at least 10 characters of trimmed content.
func (r Record) Valid() bool {
	if strings.TrimSpace(r.Title) == "" {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(r.Content)) >= 10
}

// recordJSON is the wire shape: category as label string, timestamps in
// ISO-8601, absent optionals as null.
type recordJSON struct {
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	URL         string         `json:"url"`
	Source      string         `json:"source"`
	PublishedAt *string        `json:"published_at"`
	CollectedAt string         `json:"collected_at"`
	Category    string         `json:"category"`
	Tags        []string       `json:"tags"`
	Author      *string        `json:"author"`
	Summary     *string        `json:"summary"`
	Importance  string         `json:"importance"`
	Extra       map[string]any `json:"extra"`
}

// MarshalJSON implements the artifact contract for raw_data snapshots.
func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{
		Title:       r.Title,
		Content:     r.Content,
		URL:         r.URL,
		Source:      r.Source,
		CollectedAt: r.CollectedAt.Format(time.RFC3339Nano),
		Category:    string(r.Category),
		Tags:        r.Tags,
		Importance:  string(r.Importance),
		Extra:       r.Extra,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if r.PublishedAt != nil {
		published := r.PublishedAt.Format(time.RFC3339Nano)
		out.PublishedAt = &published
	}
	if r.Author != "" {
		out.Author = &r.Author
	}
	if r.Summary != "" {
		out.Summary = &r.Summary
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a record from its snapshot form.
func (r *Record) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	collected, err := time.Parse(time.RFC3339Nano, in.CollectedAt)
	if err != nil {
		return fmt.Errorf("parse collected_at: %w", err)
	}

	*r = Record{
		Title:       in.Title,
		Content:     in.Content,
		URL:         in.URL,
		Source:      in.Source,
		CollectedAt: collected,
		Category:    Category(in.Category),
		Tags:        in.Tags,
		Importance:  Importance(in.Importance),
		Extra:       in.Extra,
	}
	if in.PublishedAt != nil {
		published, err := time.Parse(time.RFC3339Nano, *in.PublishedAt)
		if err != nil {
			return fmt.Errorf("parse published_at: %w", err)
		}
		r.PublishedAt = &published
	}
	if in.Author != nil {
		r.Author = *in.Author
	}
	if in.Summary != nil {
		r.Summary = *in.Summary
	}
	if r.Category == "" {
		r.Category = CategoryOther
	}
	if r.Importance == "" {
		r.Importance = ImportanceMedium
	}
	return nil
}

// FilterFresh drops records whose reported publish time is older than
// maxAge relative to now. Records without a publish time are always kept.
func FilterFresh(records []Record, maxAge time.Duration, now time.Time) []Record {
	cutoff := now.Add(-maxAge)
	fresh := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.PublishedAt == nil || !rec.PublishedAt.Before(cutoff) {
			fresh = append(fresh, rec)
		}
	}
	return fresh
}

// SortForSummary orders records for digest assembly: importance first,
// category label second. Stable, so collection order breaks further ties.
func SortForSummary(records []Record) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Importance.rank() != sorted[j].Importance.rank() {
			return sorted[i].Importance.rank() < sorted[j].Importance.rank()
		}
		return sorted[i].Category < sorted[j].Category
	})
	return sorted
}

// RunRecord is the audit row persisted after a successful run.
type RunRecord struct {
	RunDate     time.Time
	ReportPath  string
	TotalItems  int
	GeneratedAt time.Time
}
