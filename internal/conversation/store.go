package conversation

import "sync"

// Store is the concurrent mapping from user identifier to session. All
// mutation flows through Do, which serializes read-modify-write cycles per
// user while letting distinct users proceed in parallel. The raw map is never
// handed out.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Do runs fn with the session for userID, creating an idle session on first
// contact. fn executes under the session's own lock, so two concurrent
// messages from the same user cannot interleave, and sessions for other users
// stay untouched.
func (s *Store) Do(userID string, fn func(*Session) error) error {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = NewSession(userID)
		s.sessions[userID] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess)
}

// Get returns the session for userID when one exists.
func (s *Store) Get(userID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

// Delete removes the session for userID.
func (s *Store) Delete(userID string) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}

// Len reports the number of tracked sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SweepAll unconditionally discards every session, regardless of progress,
// and reports how many were dropped. Partial records are never persisted;
// abandoned conversations simply vanish.
func (s *Store) SweepAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := len(s.sessions)
	s.sessions = make(map[string]*Session)
	return dropped
}
