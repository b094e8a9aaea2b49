package memory

import (
	"sync"
	"time"

	"industrial-ai-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionStore owns all conversational session state. Sessions are
// process-local with a bounded lifetime; nothing survives a restart.
//
// Mutations on the same session are serialized through a per-session
// mutex so unrelated sessions never contend on a single global lock.
type SessionStore struct {
	cache      *cache.Cache
	windowSize int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSessionStore(windowSize int) *SessionStore {
	if windowSize <= 0 {
		windowSize = 10
	}
	// Sessions idle for an hour are purged every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionStore{
		cache:      c,
		windowSize: windowSize,
		locks:      make(map[string]*sync.Mutex),
	}
}

func (s *SessionStore) lockFor(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

// load returns the live record without copying. Callers must hold the
// session lock.
func (s *SessionStore) load(sessionID string) *store.Session {
	if x, found := s.cache.Get(sessionID); found {
		return x.(*store.Session)
	}
	return nil
}

func (s *SessionStore) loadOrCreate(sessionID string) *store.Session {
	session := s.load(sessionID)
	if session == nil {
		session = &store.Session{ID: sessionID}
		s.cache.Set(sessionID, session, cache.DefaultExpiration)
	}
	return session
}

// GetOrCreate returns a snapshot of the session, creating an empty record
// on first access. The returned value is a copy; the store keeps ownership
// of the live record.
func (s *SessionStore) GetOrCreate(sessionID string) store.Session {
	l := s.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()

	session := s.loadOrCreate(sessionID)
	return snapshot(session)
}

// AppendTurn appends a question/answer turn and truncates the history to
// the most recent windowSize turns.
func (s *SessionStore) AppendTurn(sessionID, question, answer string) {
	l := s.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()

	session := s.loadOrCreate(sessionID)
	session.Turns = append(session.Turns, store.Turn{
		Question:  question,
		Answer:    answer,
		Timestamp: time.Now(),
	})
	if len(session.Turns) > s.windowSize {
		trimmed := make([]store.Turn, s.windowSize)
		copy(trimmed, session.Turns[len(session.Turns)-s.windowSize:])
		session.Turns = trimmed
	}
	s.cache.Set(sessionID, session, cache.DefaultExpiration)
}

// RecentContext returns a read-only snapshot of the last m turns,
// oldest first. Does not create the session.
func (s *SessionStore) RecentContext(sessionID string, m int) []store.Turn {
	l := s.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()

	session := s.load(sessionID)
	if session == nil || m <= 0 {
		return nil
	}

	turns := session.Turns
	if len(turns) > m {
		turns = turns[len(turns)-m:]
	}
	out := make([]store.Turn, len(turns))
	copy(out, turns)
	return out
}

// TryConsumeWebSearch atomically increments the session's web search count
// if it is still below max. The increment is committed before the provider
// call is issued, so an abandoned request never under-counts quota.
// Returns false once the ceiling is reached.
func (s *SessionStore) TryConsumeWebSearch(sessionID string, max int) bool {
	l := s.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()

	session := s.loadOrCreate(sessionID)
	if session.WebSearchCount >= max {
		return false
	}
	session.WebSearchCount++
	s.cache.Set(sessionID, session, cache.DefaultExpiration)
	return true
}

// WebSearchesUsed reports the web search count without creating the session.
func (s *SessionStore) WebSearchesUsed(sessionID string) int {
	l := s.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()

	session := s.load(sessionID)
	if session == nil {
		return 0
	}
	return session.WebSearchCount
}

// Delete removes the session entirely. Idempotent.
//
// The lock entry stays in the map: a waiter that already fetched it via
// lockFor must still serialize against writers arriving after the delete.
// Entries are a single mutex each, bounded by the set of session ids seen.
func (s *SessionStore) Delete(sessionID string) {
	l := s.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()
	s.cache.Delete(sessionID)
}

func snapshot(session *store.Session) store.Session {
	out := store.Session{
		ID:             session.ID,
		WebSearchCount: session.WebSearchCount,
	}
	out.Turns = make([]store.Turn, len(session.Turns))
	copy(out.Turns, session.Turns)
	return out
}
