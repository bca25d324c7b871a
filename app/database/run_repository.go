package database

import (
	"database/sql"
	"fmt"
	"time"
)

type runRepository struct {
	db *DB
}

func NewRunRepository(db *DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) RecordRun(run Run) error {
	_, err := r.db.Exec(`
		INSERT INTO scrape_runs (
			id, kind, started_at, finished_at,
			start_page, pages, candidates, added, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Trigger, run.StartedAt.UTC().Unix(), run.FinishedAt.UTC().Unix(),
		run.StartPage, run.Pages, run.Candidates, run.Added, run.Error)
	if err != nil {
		return fmt.Errorf("failed to record scrape run: %w", err)
	}
	return nil
}

func (r *runRepository) GetRecentRuns(limit int) ([]Run, error) {
	rows, err := r.db.Query(`
		SELECT id, kind, started_at, finished_at,
		       start_page, pages, candidates, added, error
		FROM scrape_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scrape runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt, finishedAt int64

		err := rows.Scan(&run.ID, &run.Trigger, &startedAt, &finishedAt,
			&run.StartPage, &run.Pages, &run.Candidates, &run.Added, &run.Error)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scrape run: %w", err)
		}

		run.StartedAt = time.Unix(startedAt, 0).UTC()
		run.FinishedAt = time.Unix(finishedAt, 0).UTC()
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scrape runs: %w", err)
	}

	return runs, nil
}

func (r *runRepository) GetRunStats() (RunStats, error) {
	var stats RunStats
	var lastRun sql.NullInt64

	err := r.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(added), 0),
			COALESCE(SUM(CASE WHEN error != '' THEN 1 ELSE 0 END), 0),
			MAX(started_at)
		FROM scrape_runs
	`).Scan(&stats.TotalRuns, &stats.TotalAdded, &stats.FailedRuns, &lastRun)
	if err != nil {
		return RunStats{}, fmt.Errorf("failed to get run stats: %w", err)
	}

	if lastRun.Valid {
		t := time.Unix(lastRun.Int64, 0).UTC()
		stats.LastRunAt = &t
	}

	return stats, nil
}
