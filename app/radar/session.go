package radar

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lysyi3m/release-radar/app/database"
	"github.com/lysyi3m/release-radar/app/release"
)

// DefaultMaxLiveSessions bounds how many sessions are cached in memory.
const DefaultMaxLiveSessions = 1024

// Session is the browsing state of one client: the next listing page a deep
// search starts from, the releases marked as seen and the collection snapshot
// being paged through.
type Session struct {
	mu         sync.Mutex
	ID         string
	Cursor     int
	Seen       map[string]struct{}
	Collection []release.Release
}

// SeenSet returns a copy of the seen markers.
func (s *Session) SeenSet() map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.Seen))
	for id := range s.Seen {
		seen[id] = struct{}{}
	}
	return seen
}

func (s *Session) CurrentCursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Cursor
}

// Snapshot returns the collection the session is paging through, if any.
func (s *Session) Snapshot() ([]release.Release, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Collection, s.Collection != nil
}

// SetCollection replaces the session's collection snapshot.
func (s *Session) SetCollection(releases []release.Release) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Collection = releases
}

type liveSession struct {
	sess     *Session
	lastUsed time.Time
}

// Sessions loads and persists sessions through a SessionRepository and
// caches recently used ones in memory.
type Sessions struct {
	mu            sync.Mutex
	repo          database.SessionRepository
	initialCursor int
	maxLive       int
	live          map[string]*liveSession
	now           func() time.Time
}

// NewSessions creates a session manager. initialCursor is the first page a
// new session's deep search fetches, normally the page after the regular
// scrape window.
func NewSessions(repo database.SessionRepository, initialCursor int) *Sessions {
	if initialCursor < 1 {
		initialCursor = 1
	}
	return &Sessions{
		repo:          repo,
		initialCursor: initialCursor,
		maxLive:       DefaultMaxLiveSessions,
		live:          make(map[string]*liveSession),
		now:           time.Now,
	}
}

// Get returns the stored session for id. Unknown, empty or malformed ids get
// a transient session that is neither persisted nor cached; it keeps id when
// id is a valid UUID so a later Open can adopt it.
func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := uuid.Parse(id); err != nil {
		return s.transient(uuid.New().String()), nil
	}

	sess, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return s.transient(id), nil
	}
	return sess, nil
}

// Open returns the session for id, creating and persisting it when id is
// unknown. Empty or malformed ids are replaced with a fresh UUID, so the
// returned session's ID may differ from id.
func (s *Sessions) Open(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := uuid.Parse(id); err != nil {
		id = uuid.New().String()
	}

	sess, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		return sess, nil
	}

	record, err := s.repo.CreateSession(id, s.initialCursor)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	sess = &Session{ID: record.ID, Cursor: record.Cursor, Seen: make(map[string]struct{})}
	s.cache(sess)
	return sess, nil
}

// load returns a cached or stored session, or nil when id is unknown.
// Callers hold s.mu.
func (s *Sessions) load(id string) (*Session, error) {
	if entry, ok := s.live[id]; ok {
		entry.lastUsed = s.now()
		return entry.sess, nil
	}

	record, err := s.repo.GetSession(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if record == nil {
		return nil, nil
	}

	seen, err := s.repo.GetSeen(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load seen releases: %w", err)
	}

	sess := &Session{ID: record.ID, Cursor: record.Cursor, Seen: seen}
	s.cache(sess)
	return sess, nil
}

// cache adds sess to the live set, evicting the least recently used entry
// when full. Evicted sessions are reloaded from the repository on next use.
func (s *Sessions) cache(sess *Session) {
	if len(s.live) >= s.maxLive {
		var oldest string
		var oldestUsed time.Time
		for id, entry := range s.live {
			if oldest == "" || entry.lastUsed.Before(oldestUsed) {
				oldest, oldestUsed = id, entry.lastUsed
			}
		}
		delete(s.live, oldest)
	}
	s.live[sess.ID] = &liveSession{sess: sess, lastUsed: s.now()}
}

func (s *Sessions) transient(id string) *Session {
	return &Session{ID: id, Cursor: s.initialCursor, Seen: make(map[string]struct{})}
}

// LiveCount reports how many sessions are cached in memory.
func (s *Sessions) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// MarkSeen records ids as seen for the session.
func (s *Sessions) MarkSeen(sess *Session, ids []string) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	var fresh []string
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := sess.Seen[id]; ok {
			continue
		}
		fresh = append(fresh, id)
	}

	if err := s.repo.MarkSeen(sess.ID, fresh, s.now()); err != nil {
		return err
	}

	for _, id := range fresh {
		sess.Seen[id] = struct{}{}
	}
	return nil
}

// SaveCursor persists the session's current cursor.
func (s *Sessions) SaveCursor(sess *Session) error {
	return s.repo.UpdateCursor(sess.ID, sess.CurrentCursor())
}
