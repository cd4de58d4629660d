package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxSessions bounds a Manager created with a non-positive size.
const DefaultMaxSessions = 256

// Factory builds a new session with the given id.
type Factory func(id string) *Session

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithIdleTimeout drops sessions unused for longer than d on lookup.
func WithIdleTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.idleTimeout = d
	}
}

// WithManagerLogger sets the manager logger.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Manager keeps the most recently used sessions, evicting the least recently
// used one once the bound is reached.
type Manager struct {
	cache       *lru.Cache[string, *Session]
	factory     Factory
	idleTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewManager creates a manager holding at most size sessions.
func NewManager(size int, factory Factory, opts ...ManagerOption) (*Manager, error) {
	if factory == nil {
		return nil, errors.New("session: factory is nil")
	}
	if size <= 0 {
		size = DefaultMaxSessions
	}

	m := &Manager{
		factory: factory,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	cache, err := lru.NewWithEvict[string, *Session](size, func(id string, _ *Session) {
		m.logger.Debug("session: evicted", "session", id)
	})
	if err != nil {
		return nil, fmt.Errorf("session: create cache: %w", err)
	}
	m.cache = cache
	return m, nil
}

// Get returns a live session. Idle sessions are removed and reported missing.
func (m *Manager) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	sess, ok := m.cache.Get(id)
	if !ok {
		return nil, false
	}
	if m.idleTimeout > 0 && sess.IdleFor(m.now()) > m.idleTimeout {
		m.cache.Remove(id)
		return nil, false
	}
	sess.Touch()
	return sess, true
}

// GetOrCreate returns the session for id, or a new one when id is unknown
// or expired. The bool reports whether a session was created.
func (m *Manager) GetOrCreate(id string) (*Session, bool) {
	if sess, ok := m.Get(id); ok {
		return sess, false
	}
	return m.Create(), true
}

// Create builds and stores a new session.
func (m *Manager) Create() *Session {
	sess := m.factory("")
	m.cache.Add(sess.ID(), sess)
	m.logger.Debug("session: created", "session", sess.ID())
	return sess
}

// Remove drops a session.
func (m *Manager) Remove(id string) {
	m.cache.Remove(id)
}

// Len reports how many sessions are held.
func (m *Manager) Len() int {
	return m.cache.Len()
}
