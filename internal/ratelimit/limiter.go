// Package ratelimit implements a sliding-window admission controller.
// The window is computed relative to "now" on every check, so a burst
// cannot slip through by straddling bucket boundaries the way it can
// with fixed, clock-aligned buckets.
package ratelimit

import (
	"hash/fnv"
	"sync"
	"time"
)

// Defaults match the service's public API policy.
const (
	DefaultWindow = 500 * time.Millisecond
	DefaultMax    = 10
)

const shardCount = 32

// client holds the admitted-request timestamps for one caller. Each
// client carries its own mutex so the prune-check-append sequence is a
// single critical section without serializing unrelated clients.
type client struct {
	mu     sync.Mutex
	admits []time.Time
}

type shard struct {
	mu      sync.RWMutex
	clients map[string]*client
}

// Limiter admits or rejects requests per client over a sliding window.
// The zero value is not usable; construct with New.
type Limiter struct {
	window time.Duration
	max    int
	shards [shardCount]*shard
}

// New creates a limiter allowing at most max admitted requests per
// client within a trailing window.
func New(window time.Duration, max int) *Limiter {
	l := &Limiter{window: window, max: max}
	for i := range l.shards {
		l.shards[i] = &shard{clients: make(map[string]*client)}
	}
	return l
}

// Admit reports whether a request from clientID at time now may
// proceed. Rejected attempts leave no trace: they do not extend the
// client's window. Rejection is expected control flow, not an error.
func (l *Limiter) Admit(clientID string, now time.Time) bool {
	c := l.client(clientID)

	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := now.Add(-l.window)

	// Lazy prune: drop everything that has left the window.
	kept := c.admits[:0]
	for _, ts := range c.admits {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	c.admits = kept

	if len(c.admits) >= l.max {
		return false
	}

	c.admits = append(c.admits, now)
	return true
}

// client returns the per-client record, creating it on first use.
func (l *Limiter) client(clientID string) *client {
	s := l.shards[shardIndex(clientID)]

	s.mu.RLock()
	c, ok := s.clients[clientID]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok = s.clients[clientID]; ok {
		return c
	}
	c = &client{}
	s.clients[clientID] = c
	return c
}

func shardIndex(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32() % shardCount
}
