// Package storage archives pipeline runs in Postgres.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"

	"AIDailyNews/internal/domain"
	"AIDailyNews/internal/ports"
)

var _ ports.RunRepository = (*PostgresRunRepository)(nil)

// PostgresRunRepository stores one row per run date in the report_runs
// table. Re-running the same date overwrites the previous row.
type PostgresRunRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	logger  *slog.Logger
}

// NewPostgresRunRepository creates a repository over an open connection.
func NewPostgresRunRepository(db *sql.DB, logger *slog.Logger) *PostgresRunRepository {
	return &PostgresRunRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger:  logger,
	}
}

// EnsureSchema creates the report_runs table when it does not exist.
func (r *PostgresRunRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS report_runs (
			run_date     date PRIMARY KEY,
			report_path  text NOT NULL,
			total_items  integer NOT NULL,
			generated_at timestamptz NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure report_runs schema: %w", err)
	}
	return nil
}

// SaveRun upserts the archive row for run.RunDate.
func (r *PostgresRunRepository) SaveRun(ctx context.Context, run domain.RunRecord) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("report_runs").
		Columns("run_date", "report_path", "total_items", "generated_at").
		Values(run.RunDate, run.ReportPath, run.TotalItems, run.GeneratedAt).
		Suffix(`ON CONFLICT (run_date) DO UPDATE SET
			report_path = EXCLUDED.report_path,
			total_items = EXCLUDED.total_items,
			generated_at = EXCLUDED.generated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save run %s: %w", run.RunDate.Format("2006-01-02"), err)
	}
	r.debug("run archived", slog.String("date", run.RunDate.Format("2006-01-02")))
	return nil
}

// RecentRuns returns up to limit archived runs, newest first.
func (r *PostgresRunRepository) RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if r.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	query, args, err := r.builder.
		Select("run_date", "report_path", "total_items", "generated_at").
		From("report_runs").
		OrderBy("run_date DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent runs query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord
	for rows.Next() {
		var run domain.RunRecord
		if err := rows.Scan(&run.RunDate, &run.ReportPath, &run.TotalItems, &run.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

func (r *PostgresRunRepository) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
