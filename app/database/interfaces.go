package database

import (
	"time"
)

// SessionRepository persists browsing sessions: the deep-search cursor and
// the set of releases marked as seen.
type SessionRepository interface {
	GetSession(id string) (*Session, error)
	CreateSession(id string, cursor int) (*Session, error)
	UpdateCursor(id string, cursor int) error

	GetSeen(sessionID string) (map[string]struct{}, error)
	MarkSeen(sessionID string, releaseIDs []string, seenAt time.Time) error
}

type RunRepository interface {
	RecordRun(run Run) error
	GetRecentRuns(limit int) ([]Run, error)
	GetRunStats() (RunStats, error)
}
