package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	loggerpkg "github.com/minhyannv/chat-assistant-go/pkg/logger"
)

// Store isolates transcripts per session identifier.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	completer Completer
	opts      []Option
	deps      sessionDeps
}

// NewStore creates an empty store whose sessions share one Completer.
func NewStore(completer Completer, opts ...Option) *Store {
	deps := sessionDeps{logger: loggerpkg.NopLogger{}, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}
	return &Store{
		sessions:  make(map[string]*Session),
		completer: completer,
		opts:      opts,
		deps:      deps,
	}
}

// Create starts a new session under a fresh random identifier.
func (s *Store) Create() *Session {
	sess := NewSession(uuid.NewString(), s.completer, s.opts...)
	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	loggerpkg.Debug(s.deps.verbose, s.deps.logger, "session created", map[string]any{
		"session":  sess.ID(),
		"sessions": n,
	})
	return sess
}

// Get returns the session for id.
func (s *Store) Get(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
// created reports whether a new session was made.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	if sess, ok := s.Get(id); ok {
		return sess, false
	}
	return s.Create(), true
}

// Delete drops a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes idle sessions that have not changed for maxIdle and are not
// waiting on a reply. It returns the number removed.
func (s *Store) Sweep(maxIdle time.Duration) int {
	cutoff := s.deps.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.State() != StateIdle || sess.LastActive().After(cutoff) {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	if removed > 0 {
		loggerpkg.Debug(s.deps.verbose, s.deps.logger, "idle sessions swept", map[string]any{
			"removed":   removed,
			"remaining": len(s.sessions),
		})
	}
	return removed
}
