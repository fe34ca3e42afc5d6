// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/tilegrab/internal/ports/secondary"
)

// LedgerRepository implements secondary.LedgerWriter and
// secondary.RunRepository with SQLite.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new SQLite ledger repository.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// StartRun persists a new run row.
func (r *LedgerRepository) StartRun(ctx context.Context, run *secondary.RunRecord) error {
	var params sql.NullString
	if run.Params != "" {
		params = sql.NullString{String: run.Params, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, root, params, total) VALUES (?, ?, ?, ?)`,
		run.ID,
		run.Root,
		params,
		run.Total,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// RecordTile appends a tile event.
func (r *LedgerRepository) RecordTile(ctx context.Context, event *secondary.TileEventRecord) error {
	var errText sql.NullString
	if event.Error != "" {
		errText = sql.NullString{String: event.Error, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tile_events (run_id, tile_key, outcome, ratio, error, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		event.RunID,
		event.TileKey,
		event.Outcome,
		event.Ratio,
		errText,
		event.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("failed to record tile event: %w", err)
	}
	return nil
}

// FinishRun stamps the run as finished with its final counts.
func (r *LedgerRepository) FinishRun(ctx context.Context, run *secondary.RunRecord) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = CURRENT_TIMESTAMP, total = ?, saved = ?, skipped = ?, rejected = ?, failed = ? WHERE id = ?`,
		run.Total,
		run.Saved,
		run.Skipped,
		run.Rejected,
		run.Failed,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}
	return nil
}

// List retrieves the most recent runs, newest first.
func (r *LedgerRepository) List(ctx context.Context, limit int) ([]*secondary.RunRecord, error) {
	query := `SELECT id, root, params, started_at, finished_at, total, saved, skipped, rejected, failed FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*secondary.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetByID retrieves a run by its ID.
func (r *LedgerRepository) GetByID(ctx context.Context, id string) (*secondary.RunRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, root, params, started_at, finished_at, total, saved, skipped, rejected, failed FROM runs WHERE id = ?`,
		id,
	)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// OutcomeCounts returns the number of tile events per outcome for a run.
func (r *LedgerRepository) OutcomeCounts(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT outcome, COUNT(*) FROM tile_events WHERE run_id = ? GROUP BY outcome`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*secondary.RunRecord, error) {
	var (
		params     sql.NullString
		startedAt  time.Time
		finishedAt sql.NullTime
	)
	run := &secondary.RunRecord{}
	err := s.Scan(&run.ID,
		&run.Root,
		&params,
		&startedAt,
		&finishedAt,
		&run.Total,
		&run.Saved,
		&run.Skipped,
		&run.Rejected,
		&run.Failed)
	if err != nil {
		return nil, err
	}
	run.Params = params.String
	run.StartedAt = startedAt.Format(time.RFC3339)
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time.Format(time.RFC3339)
	}
	return run, nil
}

// Ensure LedgerRepository implements the interfaces
var (
	_ secondary.LedgerWriter  = (*LedgerRepository)(nil)
	_ secondary.RunRepository = (*LedgerRepository)(nil)
)
