package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type sessionRepository struct {
	db *DB
}

func NewSessionRepository(db *DB) SessionRepository {
	return &sessionRepository{db: db}
}

// GetSession returns nil without error when the session does not exist.
func (r *sessionRepository) GetSession(id string) (*Session, error) {
	var s Session
	var createdAt, updatedAt int64

	err := r.db.QueryRow(`
		SELECT id, cursor, created_at, updated_at
		FROM sessions
		WHERE id = ?
	`, id).Scan(&s.ID, &s.Cursor, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	s.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &s, nil
}

func (r *sessionRepository) CreateSession(id string, cursor int) (*Session, error) {
	now := time.Now().UTC().Truncate(time.Second)

	_, err := r.db.Exec(`
		INSERT INTO sessions (id, cursor, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, id, cursor, now.Unix(), now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return r.GetSession(id)
}

func (r *sessionRepository) UpdateCursor(id string, cursor int) error {
	res, err := r.db.Exec(`
		UPDATE sessions
		SET cursor = ?, updated_at = ?
		WHERE id = ?
	`, cursor, time.Now().UTC().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update session cursor: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	return nil
}

func (r *sessionRepository) GetSeen(sessionID string) (map[string]struct{}, error) {
	rows, err := r.db.Query(`
		SELECT release_id
		FROM seen_releases
		WHERE session_id = ?
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seen releases: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan seen release: %w", err)
		}
		seen[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seen releases: %w", err)
	}

	return seen, nil
}

func (r *sessionRepository) MarkSeen(sessionID string, releaseIDs []string, seenAt time.Time) error {
	if len(releaseIDs) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO seen_releases (session_id, release_id, seen_at)
		VALUES (?, ?, ?)
		ON CONFLICT (session_id, release_id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range releaseIDs {
		if _, err := stmt.Exec(sessionID, id, seenAt.UTC().Unix()); err != nil {
			return fmt.Errorf("failed to mark release as seen: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seen releases: %w", err)
	}

	return nil
}
