package state

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
)

const (
	defaultIdleTTL       = 30 * time.Minute
	defaultSweepInterval = 5 * time.Minute
)

// Session bundles one conversation's transcript and structured state. All
// access must happen between Lock and Unlock; the mutex is what serializes
// concurrent turns on the same session id.
type Session struct {
	mu       sync.Mutex
	State    *SessionState
	History  []*schema.Message
	lastSeen time.Time
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// AppendHistory adds turns to the transcript. Caller must hold the lock.
func (s *Session) AppendHistory(msgs ...*schema.Message) {
	s.History = append(s.History, msgs...)
}

// Registry is an in-process session store: lazily created sessions keyed by
// caller-supplied id, bounded by an idle TTL sweep rather than growing for
// the life of the process.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl time.Duration
	now func() time.Time
}

type RegistryOption func(*Registry)

func WithIdleTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		ttl:      defaultIdleTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// GetOrCreate returns the session for id, constructing state and an empty
// transcript on first sight. The same pointer is returned for the same id
// until the sweeper evicts it.
func (r *Registry) GetOrCreate(sessionID string) *Session {
	now := r.now()

	r.mu.RLock()
	sess, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if ok {
		r.touch(sess, now)
		return sess
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if sess, ok := r.sessions[sessionID]; ok {
		sess.lastSeen = now
		return sess
	}
	sess = &Session{
		State:    NewSessionState(sessionID, now),
		lastSeen: now,
	}
	r.sessions[sessionID] = sess
	log.Debug().Str("session_id", sessionID).Msg("session created")
	return sess
}

func (r *Registry) touch(sess *Session, now time.Time) {
	r.mu.Lock()
	sess.lastSeen = now
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle longer than the TTL and reports how many went.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, sess := range r.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		log.Info().Int("evicted", evicted).Int("remaining", len(r.sessions)).Msg("session sweep")
	}
	return evicted
}

// StartSweeper runs Sweep on a ticker until ctx is done.
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	}()
}
