package radar

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lysyi3m/release-radar/app/database"
	"github.com/lysyi3m/release-radar/app/notify"
	"github.com/lysyi3m/release-radar/app/release"
	"github.com/lysyi3m/release-radar/app/store"
)

func rel(id string) release.Release {
	artist, album := release.SplitTitle(id)
	return release.Release{
		ID:        id,
		Artist:    artist,
		Album:     album,
		DateFound: "2025-06-01",
		Genres:    []string{},
		Links:     release.SearchLinks(artist, album),
	}
}

func ids(releases []release.Release) []string {
	out := make([]string, 0, len(releases))
	for _, r := range releases {
		out = append(out, r.ID)
	}
	return out
}

// fakeScraper serves fixed pages; pages beyond the map are empty.
type fakeScraper struct {
	pages     map[int][]string
	fetched   []int
	scrapeErr error
}

func (f *fakeScraper) ScrapePage(ctx context.Context, page int, deep bool) ([]release.Release, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.fetched = append(f.fetched, page)
	out := []release.Release{}
	for _, id := range f.pages[page] {
		out = append(out, rel(id))
	}
	return out, nil
}

func (f *fakeScraper) Scrape(ctx context.Context, pages, startPage int, deep bool) ([]release.Release, error) {
	if f.scrapeErr != nil {
		return nil, f.scrapeErr
	}
	var all []release.Release
	for p := startPage; p < startPage+pages; p++ {
		batch, err := f.ScrapePage(ctx, p, deep)
		if err != nil {
			return all, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
	}
	return all, nil
}

type memStore struct {
	releases []release.Release
	saves    int
	saveErr  error
}

func (m *memStore) Load() ([]release.Release, error) {
	out := make([]release.Release, len(m.releases))
	copy(out, m.releases)
	return out, nil
}

func (m *memStore) Save(releases []release.Release) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.releases = releases
	return nil
}

type recordingNotifier struct {
	calls [][]release.Release
	err   error
}

func (n *recordingNotifier) Notify(ctx context.Context, releases []release.Release) error {
	n.calls = append(n.calls, releases)
	return n.err
}

type recordingMirror struct {
	published [][]byte
}

func (m *recordingMirror) Publish(ctx context.Context, data []byte) error {
	m.published = append(m.published, data)
	return nil
}

type memRuns struct {
	runs []database.Run
}

func (m *memRuns) RecordRun(run database.Run) error {
	m.runs = append(m.runs, run)
	return nil
}

func (m *memRuns) GetRecentRuns(limit int) ([]database.Run, error) {
	return m.runs, nil
}

func (m *memRuns) GetRunStats() (database.RunStats, error) {
	return database.RunStats{TotalRuns: len(m.runs)}, nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*database.Session
	seen     map[string]map[string]struct{}
}

func newMemSessions() *memSessions {
	return &memSessions{
		sessions: make(map[string]*database.Session),
		seen:     make(map[string]map[string]struct{}),
	}
}

func (m *memSessions) GetSession(id string) (*database.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) CreateSession(id string, cursor int) (*database.Session, error) {
	m.mu.Lock()
	if _, ok := m.sessions[id]; !ok {
		m.sessions[id] = &database.Session{ID: id, Cursor: cursor, CreatedAt: time.Now()}
	}
	m.mu.Unlock()
	return m.GetSession(id)
}

func (m *memSessions) UpdateCursor(id string, cursor int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return errors.New("session not found")
	}
	s.Cursor = cursor
	return nil
}

func (m *memSessions) GetSeen(sessionID string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]struct{})
	for id := range m.seen[sessionID] {
		out[id] = struct{}{}
	}
	return out, nil
}

func (m *memSessions) MarkSeen(sessionID string, releaseIDs []string, seenAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[sessionID] == nil {
		m.seen[sessionID] = make(map[string]struct{})
	}
	for _, id := range releaseIDs {
		m.seen[sessionID][id] = struct{}{}
	}
	return nil
}

var fixedNow = time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

// newTestRadar keeps nil fakes as nil interfaces.
func newTestRadar(s *fakeScraper, st *memStore, n *recordingNotifier, m *recordingMirror, runs *memRuns) *Radar {
	var notifier notify.Notifier
	if n != nil {
		notifier = n
	}
	var mirror store.Mirror
	if m != nil {
		mirror = m
	}
	var runRepo database.RunRepository
	if runs != nil {
		runRepo = runs
	}

	r := New(s, st, mirror, notifier, runRepo, Options{PageDelay: time.Second})
	r.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	r.now = func() time.Time { return fixedNow }
	return r
}
