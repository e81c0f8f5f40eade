package server

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/matzehuels/astlens/pkg/errors"
	"github.com/matzehuels/astlens/pkg/pipeline"
	"github.com/matzehuels/astlens/pkg/viewer"
)

// ErrTooManySessions is returned when the store is full of live sessions.
var ErrTooManySessions = errors.New("too many viewer sessions")

// session is one browser viewer. Its mutex serializes every request that
// touches the viewer; distinct sessions never share state.
type session struct {
	mu     sync.Mutex
	id     string
	v      *viewer.Viewer
	runner *pipeline.Runner

	createdAt time.Time
	expiresAt atomic.Int64 // unix nanoseconds
}

func newSession(v *viewer.Viewer, runner *pipeline.Runner, ttl time.Duration) *session {
	now := time.Now()
	s := &session{id: uuid.NewString(), v: v, runner: runner, createdAt: now}
	s.expiresAt.Store(now.Add(ttl).UnixNano())
	return s
}

// touch extends the session's lifetime by ttl from now.
func (s *session) touch(ttl time.Duration) {
	s.expiresAt.Store(time.Now().Add(ttl).UnixNano())
}

func (s *session) expired(now time.Time) bool {
	return now.UnixNano() > s.expiresAt.Load()
}

// =============================================================================
// Store
// =============================================================================

// store holds the live sessions in memory.
type store struct {
	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration
	max      int
}

func newStore(ttl time.Duration, max int) *store {
	return &store{sessions: make(map[string]*session), ttl: ttl, max: max}
}

// get returns a live session and extends its lifetime. Malformed ids are
// INVALID_INPUT; unknown or expired ones are SESSION_NOT_FOUND.
func (st *store) get(id string) (*session, error) {
	if err := apperrors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok || s.expired(time.Now()) {
		return nil, apperrors.New(apperrors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	s.touch(st.ttl)
	return s, nil
}

// add stores s, evicting expired sessions first when the store is full.
func (st *store) add(s *session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.max > 0 && len(st.sessions) >= st.max {
		st.cleanupLocked(time.Now())
		if len(st.sessions) >= st.max {
			return ErrTooManySessions
		}
	}
	st.sessions[s.id] = s
	return nil
}

// remove deletes a session and reports whether it existed.
func (st *store) remove(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	return ok
}

// cleanup removes expired sessions and returns how many were removed.
func (st *store) cleanup(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cleanupLocked(now)
}

func (st *store) cleanupLocked(now time.Time) int {
	n := 0
	for id, s := range st.sessions {
		if s.expired(now) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

func (st *store) len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
