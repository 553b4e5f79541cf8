package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ RunRepository = (*SQLRunRepository)(nil)

// SQLRunRepository handles the append-only ingestion audit trail
type SQLRunRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *SQLRunRepository {
	return &SQLRunRepository{db: db}
}

func (r *SQLRunRepository) StartRun(runID string, startedAt time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO runs (id, started_at, status) VALUES (?, ?, 'running')
	`, runID, startedAt)

	if err != nil {
		return fmt.Errorf("failed to start run record: %w", err)
	}

	return nil
}

func (r *SQLRunRepository) FinishRun(runID string, status string, finishedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE runs SET status = ?, finished_at = ? WHERE id = ?
	`, status, finishedAt, runID)

	if err != nil {
		return fmt.Errorf("failed to finish run record: %w", err)
	}

	return nil
}

func (r *SQLRunRepository) GetLastRun() (*Run, error) {
	var run Run
	err := r.db.QueryRow(`
		SELECT id, started_at, finished_at, status
		FROM runs
		ORDER BY started_at DESC
		LIMIT 1
	`).Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last run: %w", err)
	}

	return &run, nil
}

func (r *SQLRunRepository) GetRunCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get run count: %w", err)
	}
	return count, nil
}

func (r *SQLRunRepository) RecordFeedError(feedID string, occurredAt time.Time, message string) error {
	_, err := r.db.Exec(`
		INSERT INTO feed_errors (feed_id, occurred_at, message) VALUES (?, ?, ?)
	`, feedID, occurredAt, message)

	if err != nil {
		return fmt.Errorf("failed to record feed error: %w", err)
	}

	return nil
}
