package cache

import (
	"sync"
	"time"

	"blogpulse/internal/observability/metrics"
)

// SessionEntry is one question/answer exchange recorded in a session log.
// The answer itself is not retained, only its shape.
type SessionEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	Question     string    `json:"question"`
	AnswerLength int       `json:"answer_length"`
	DocCount     int       `json:"doc_count"`
}

type session struct {
	lastTouched time.Time
	log         []SessionEntry
}

// SessionManager tracks per-session query logs. Sessions are identified by
// an opaque caller-provided id, expire after an idle TTL, and keep a bounded
// log of recent exchanges with the oldest dropped first.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	logMax   int
	now      func() time.Time
}

// NewSessionManager creates a session manager with the given idle TTL and
// per-session log bound.
func NewSessionManager(ttl time.Duration, logMax int) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*session),
		ttl:      ttl,
		logMax:   logMax,
		now:      time.Now,
	}
}

// Record appends one exchange to the session's log, creating the session if
// needed. Any activity resets the idle clock.
func (m *SessionManager) Record(sessionID string, entry SessionEntry) {
	if sessionID == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.expireLocked()

	s, ok := m.sessions[sessionID]
	if !ok {
		s = &session{}
		m.sessions[sessionID] = s
	}
	s.lastTouched = m.now()

	s.log = append(s.log, entry)
	if len(s.log) > m.logMax {
		s.log = s.log[len(s.log)-m.logMax:]
	}

	metrics.UpdateActiveSessions(len(m.sessions))
}

// Log returns a copy of the session's recorded exchanges, oldest first.
// An unknown or expired session yields an empty log.
func (m *SessionManager) Log(sessionID string) []SessionEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expireLocked()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	s.lastTouched = m.now()

	out := make([]SessionEntry, len(s.log))
	copy(out, s.log)
	return out
}

// ActiveCount returns the number of unexpired sessions.
func (m *SessionManager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expireLocked()
	return len(m.sessions)
}

// expireLocked drops sessions idle past the TTL. Caller holds mu.
func (m *SessionManager) expireLocked() {
	cutoff := m.now().Add(-m.ttl)
	for id, s := range m.sessions {
		if s.lastTouched.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
	metrics.UpdateActiveSessions(len(m.sessions))
}
