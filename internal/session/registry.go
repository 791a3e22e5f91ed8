package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"taleweaver/internal/game/director"
)

var ErrNotFound = errors.New("session not found")

// Factory builds the Director for a new session.
type Factory func() *director.Director

// Session is one player's story. Do serializes access to its Director.
type Session struct {
	ID      string
	Created time.Time

	mu       sync.Mutex
	director *director.Director
	touched  atomic.Int64
	now      func() time.Time
}

func (s *Session) Do(fn func(d *director.Director) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched.Store(s.now().UnixNano())
	return fn(s.director)
}

func (s *Session) lastUsed() time.Time {
	return time.Unix(0, s.touched.Load())
}

// Registry holds live sessions keyed by id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  Factory
	newID    func() string
	now      func() time.Time
}

func NewRegistry(factory Factory) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		factory:  factory,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

func (r *Registry) Create() *Session {
	now := r.now()
	s := &Session{
		ID:       r.newID(),
		Created:  now,
		director: r.factory(),
		now:      r.now,
	}
	s.touched.Store(now.UnixNano())

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Prune drops sessions idle for longer than maxIdle and returns how many
// were removed.
func (r *Registry) Prune(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.lastUsed().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
