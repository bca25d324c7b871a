package database

import (
	"time"
)

type Session struct {
	ID        string
	Cursor    int // next listing page to fetch
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Run struct {
	ID         string
	Trigger    string // scrape, schedule, load_more
	StartedAt  time.Time
	FinishedAt time.Time
	StartPage  int
	Pages      int
	Candidates int
	Added      int
	Error      string
}

type RunStats struct {
	TotalRuns  int
	TotalAdded int
	FailedRuns int
	LastRunAt  *time.Time
}
