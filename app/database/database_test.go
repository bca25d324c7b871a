package database

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "radar.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	if version != 1 || dirty {
		t.Fatalf("Expected clean version 1, got: %d dirty=%v", version, dirty)
	}

	return db
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Expected no error on second run, got: %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("Expected clean version 1, got: %d dirty=%v", version, dirty)
	}
}

func TestSessionLifecycle(t *testing.T) {
	repo := NewSessionRepository(openTestDB(t))

	missing, err := repo.GetSession("nope")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for missing session, got: %+v", missing)
	}

	s, err := repo.CreateSession("abc", 2)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if s.ID != "abc" || s.Cursor != 2 {
		t.Errorf("Expected session abc at cursor 2, got: %+v", s)
	}

	if err := repo.UpdateCursor("abc", 7); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	s, _ = repo.GetSession("abc")
	if s.Cursor != 7 {
		t.Errorf("Expected cursor 7, got: %d", s.Cursor)
	}

	again, err := repo.CreateSession("abc", 1)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if again.Cursor != 7 {
		t.Errorf("Expected existing session to be kept, got cursor: %d", again.Cursor)
	}

	if err := repo.UpdateCursor("missing", 3); err == nil {
		t.Error("Expected error updating missing session, got nil")
	}
}

func TestMarkSeen(t *testing.T) {
	repo := NewSessionRepository(openTestDB(t))
	if _, err := repo.CreateSession("s1", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateSession("s2", 1); err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	if err := repo.MarkSeen("s1", []string{"A / One", "B / Two"}, now); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := repo.MarkSeen("s1", []string{"A / One"}, now); err != nil {
		t.Fatalf("Expected duplicate mark to be ignored, got: %v", err)
	}
	if err := repo.MarkSeen("s1", nil, now); err != nil {
		t.Fatalf("Expected empty mark to be a no-op, got: %v", err)
	}

	seen, err := repo.GetSeen("s1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(seen) != 2 {
		t.Errorf("Expected 2 seen releases, got: %d", len(seen))
	}
	if _, ok := seen["B / Two"]; !ok {
		t.Error("Expected B / Two to be seen")
	}

	other, err := repo.GetSeen("s2")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Expected seen markers to be per session, got: %d", len(other))
	}
}

func TestRunHistory(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))

	stats, err := repo.GetRunStats()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if stats.TotalRuns != 0 || stats.LastRunAt != nil {
		t.Errorf("Expected empty stats, got: %+v", stats)
	}

	base := time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)
	runs := []Run{
		{ID: "r1", Trigger: "scrape", StartedAt: base, FinishedAt: base.Add(time.Minute), StartPage: 1, Pages: 1, Candidates: 10, Added: 3},
		{ID: "r2", Trigger: "schedule", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour), StartPage: 1, Pages: 1, Error: "boom"},
		{ID: "r3", Trigger: "load_more", StartedAt: base.Add(2 * time.Hour), FinishedAt: base.Add(2 * time.Hour), StartPage: 2, Pages: 4, Candidates: 40, Added: 8},
	}
	for _, run := range runs {
		if err := repo.RecordRun(run); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	recent, err := repo.GetRecentRuns(2)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "r3" || recent[1].ID != "r2" {
		t.Errorf("Expected newest runs first, got: %+v", recent)
	}
	if !recent[0].StartedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("Expected start time to round trip, got: %v", recent[0].StartedAt)
	}

	stats, err = repo.GetRunStats()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if stats.TotalRuns != 3 || stats.TotalAdded != 11 || stats.FailedRuns != 1 {
		t.Errorf("Expected 3 runs, 11 added, 1 failed, got: %+v", stats)
	}
	if stats.LastRunAt == nil || !stats.LastRunAt.Equal(base.Add(2*time.Hour)) {
		t.Errorf("Expected last run time, got: %v", stats.LastRunAt)
	}
}
