// Package dedup removes exact and near-duplicate records from the merged
// collection stream.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"

	"AIDailyNews/internal/domain"
)

// DefaultThreshold is the title similarity above which a record counts as a
// near-duplicate of an already accepted one.
const DefaultThreshold = 0.7

// Deduplicator filters a record stream first-seen-wins. State spans the
// process lifetime so scheduled runs do not re-report yesterday's leftovers.
// Single-writer: not safe for concurrent runs without a fresh instance.
type Deduplicator struct {
	threshold  float64
	seenHashes map[string]struct{}
	seenTitles []string
	logger     *slog.Logger
}

// New builds a deduplicator; threshold values outside (0,1] fall back to
// DefaultThreshold.
func New(threshold float64, logger *slog.Logger) *Deduplicator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Deduplicator{
		threshold:  threshold,
		seenHashes: map[string]struct{}{},
		logger:     logger,
	}
}

// Dedupe returns the unique records in input order. Accepting a record can
// never retroactively drop a previously accepted one.
func (d *Deduplicator) Dedupe(records []domain.Record) []domain.Record {
	unique := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if d.isDuplicate(rec) {
			d.debug("dropped duplicate", "title", clipTitle(rec.Title))
			continue
		}
		d.remember(rec)
		unique = append(unique, rec)
	}
	d.info("dedup complete", "in", len(records), "out", len(unique))
	return unique
}

// Reset clears the seen state.
func (d *Deduplicator) Reset() {
	d.seenHashes = map[string]struct{}{}
	d.seenTitles = nil
}

func (d *Deduplicator) isDuplicate(rec domain.Record) bool {
	if _, ok := d.seenHashes[Fingerprint(rec.Content)]; ok {
		return true
	}
	for _, title := range d.seenTitles {
		if SimilarityRatio(rec.Title, title) >= d.threshold {
			return true
		}
	}
	return false
}

func (d *Deduplicator) remember(rec domain.Record) {
	d.seenHashes[Fingerprint(rec.Content)] = struct{}{}
	d.seenTitles = append(d.seenTitles, rec.Title)
}

// Fingerprint hashes content after lower-casing and collapsing internal
// whitespace, so case and spacing variants collide.
func Fingerprint(content string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(content)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// SimilarityRatio computes a character-level similarity in [0,1] between two
// titles: 2·LCS/(len(a)+len(b)) over lower-cased runes.
func SimilarityRatio(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}

func clipTitle(title string) string {
	runes := []rune(title)
	if len(runes) > 50 {
		return string(runes[:50]) + "..."
	}
	return title
}

func (d *Deduplicator) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}

func (d *Deduplicator) info(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Info(msg, args...)
	}
}
