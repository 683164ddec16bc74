// Package ratelimit throttles per-session outbound calls. The dispatcher
// applies it to DevTools actions issued on behalf of a session, so a
// client hammering the widget inspector cannot monopolize the VM Service
// connection or the dispatcher's worker pool; other VM Service RPCs are
// not throttled by it. This is distinct from the engine's own
// inbound message limiter (internal/engine.Engine.limiter), which guards
// the single-threaded update loop against a flood of incoming messages
// regardless of which session they target.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/flutter-demon/fdemon/internal/protocol"
)

// DefaultMaxSessions bounds the limiter's tracked-session table so a churn
// of spawned-and-stopped sessions cannot grow it unboundedly.
const DefaultMaxSessions = 256

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter is a thread-safe per-session token bucket with LRU eviction once
// it reaches its tracked-session capacity, adapted from the reference
// implementation's LRURateLimiter.
type Limiter struct {
	mu          sync.Mutex
	maxSize     int
	limit       rate.Limit
	burst       int
	entries     map[protocol.SessionID]*entry
	accessOrder []protocol.SessionID
}

// New constructs a limiter allowing requestsPerSecond sustained calls
// (burst allowed in a single instant) per session, tracking at most
// maxSessions sessions at once.
func New(requestsPerSecond float64, burst, maxSessions int) *Limiter {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Limiter{
		maxSize: maxSessions,
		limit:   rate.Limit(requestsPerSecond),
		burst:   burst,
		entries: make(map[protocol.SessionID]*entry),
	}
}

// Allow reports whether sessionID may issue a call right now, creating and
// tracking a fresh bucket for sessions seen for the first time.
func (l *Limiter) Allow(sessionID protocol.SessionID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[sessionID]
	if !ok {
		if len(l.entries) >= l.maxSize {
			l.evictOldestLocked()
		}
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[sessionID] = e
		l.accessOrder = append(l.accessOrder, sessionID)
	} else {
		l.touchLocked(sessionID)
	}
	e.lastAccess = time.Now()
	return e.limiter.Allow()
}

// Forget drops a session's bucket, called once its session is removed so
// the table doesn't carry dead entries until the next eviction.
func (l *Limiter) Forget(sessionID protocol.SessionID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[sessionID]; !ok {
		return
	}
	delete(l.entries, sessionID)
	for i, id := range l.accessOrder {
		if id == sessionID {
			l.accessOrder = append(l.accessOrder[:i], l.accessOrder[i+1:]...)
			break
		}
	}
}

// Size reports the number of sessions currently tracked.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Limiter) evictOldestLocked() {
	if len(l.accessOrder) == 0 {
		return
	}
	oldest := l.accessOrder[0]
	delete(l.entries, oldest)
	l.accessOrder = l.accessOrder[1:]
}

func (l *Limiter) touchLocked(sessionID protocol.SessionID) {
	for i, id := range l.accessOrder {
		if id == sessionID {
			l.accessOrder = append(l.accessOrder[:i], l.accessOrder[i+1:]...)
			break
		}
	}
	l.accessOrder = append(l.accessOrder, sessionID)
}
