// Package report persists the composed document and the raw record snapshot
// as per-day artifacts, and retrieves historical reports. No content logic
// lives here.
package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"AIDailyNews/internal/domain"
	"AIDailyNews/pkg/textutil"
)

// Assembler writes three artifacts per run date under its base directory:
// ai_daily_<d>.md, ai_daily_<d>.txt and raw_data_<d>.json.
type Assembler struct {
	baseDir string
	logger  *slog.Logger
	now     func() time.Time
}

// rawSnapshot is the raw_data JSON envelope.
type rawSnapshot struct {
	GeneratedAt string          `json:"generated_at"`
	TotalItems  int             `json:"total_items"`
	Items       []domain.Record `json:"items"`
}

// NewAssembler builds an assembler rooted at baseDir.
func NewAssembler(baseDir string, logger *slog.Logger) *Assembler {
	return &Assembler{baseDir: baseDir, logger: logger, now: time.Now}
}

// Save writes the per-day artifact set and returns the markdown path. Each
// artifact is written temp-then-rename so cancellation never leaves a
// partially written file behind. Any write error is fatal to the run.
func (a *Assembler) Save(document string, records []domain.Record, date time.Time) (string, error) {
	dateStr := date.Format("2006-01-02")
	dir := filepath.Join(a.baseDir, dateStr)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	mdPath := filepath.Join(dir, "ai_daily_"+dateStr+".md")
	if err := writeFileAtomic(mdPath, []byte(document)); err != nil {
		return "", fmt.Errorf("write markdown report: %w", err)
	}

	txtPath := filepath.Join(dir, "ai_daily_"+dateStr+".txt")
	if err := writeFileAtomic(txtPath, []byte(textutil.StripMarkdown(document))); err != nil {
		return "", fmt.Errorf("write text report: %w", err)
	}

	items := records
	if items == nil {
		items = []domain.Record{}
	}
	snapshot := rawSnapshot{
		GeneratedAt: a.now().UTC().Format(time.RFC3339Nano),
		TotalItems:  len(records),
		Items:       items,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal raw snapshot: %w", err)
	}
	jsonPath := filepath.Join(dir, "raw_data_"+dateStr+".json")
	if err := writeFileAtomic(jsonPath, data); err != nil {
		return "", fmt.Errorf("write raw snapshot: %w", err)
	}

	a.info("report saved", "dir", dir, "items", len(records))
	return mdPath, nil
}

// Latest returns the markdown document of the most recent date directory,
// or an empty string when no report exists yet.
func (a *Assembler) Latest() (string, error) {
	dirs, err := a.dateDirs()
	if err != nil || len(dirs) == 0 {
		return "", err
	}

	matches, err := filepath.Glob(filepath.Join(a.baseDir, dirs[0], "*.md"))
	if err != nil {
		return "", fmt.Errorf("glob reports: %w", err)
	}
	if len(matches) == 0 {
		return "", nil
	}

	content, err := os.ReadFile(matches[0])
	if err != nil {
		return "", fmt.Errorf("read latest report: %w", err)
	}
	return string(content), nil
}

// List returns up to limit markdown report paths, most recent date first.
func (a *Assembler) List(limit int) ([]string, error) {
	dirs, err := a.dateDirs()
	if err != nil {
		return nil, err
	}

	var reports []string
	for _, dir := range dirs {
		if len(reports) >= limit {
			break
		}
		matches, err := filepath.Glob(filepath.Join(a.baseDir, dir, "*.md"))
		if err != nil {
			return nil, fmt.Errorf("glob reports: %w", err)
		}
		if len(matches) > 0 {
			reports = append(reports, matches[0])
		}
	}
	return reports, nil
}

// dateDirs lists date directories under baseDir, newest first. A missing
// base directory is an empty history, not an error.
func (a *Assembler) dateDirs() ([]string, error) {
	entries, err := os.ReadDir(a.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read report base dir: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))
	return dirs, nil
}

// writeFileAtomic writes via a temp file in the target directory and renames
// into place, removing the temp file on every failure path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func (a *Assembler) info(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Info(msg, args...)
	}
}
