// Package cache provides a file-backed, read-through response cache.
// One key maps to one JSON file under the cache directory; entries are
// never expired or evicted by the service itself (housekeeping is an
// operational concern). Every read or write failure degrades to a cache
// miss or a no-op so the surrounding request never fails on cache I/O.
package cache

import (
	"encoding/json"
	"hash/fnv"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

const lockStripes = 64

// Store is a content-addressed cache of serialized JSON responses.
// Safe for concurrent use; keys are striped over a fixed set of locks
// rather than one global mutex so unrelated requests do not serialize.
type Store struct {
	dir    string
	logger *slog.Logger
	locks  [lockStripes]sync.RWMutex
}

// New creates a cache store rooted at dir, creating the directory if
// needed. A directory that cannot be created still yields a usable
// store; it will simply miss on every read and drop every write.
func New(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("cache directory unavailable, running without cache", "dir", dir, "error", err)
	}
	return &Store{dir: dir, logger: logger}
}

// SearchKey derives the cache signature for a search request. The
// caller passes the normalized query so incidental formatting upstream
// (URL encoding, stray whitespace) cannot split the key space.
func SearchKey(normalizedQuery string) string {
	return "search:" + normalizedQuery
}

// CollabsKey derives the cache signature for a collaboration-graph
// request.
func CollabsKey(gid string) string {
	return "collabs:" + gid
}

// Get returns the cached value for key, or ok=false when the entry is
// absent, unreadable, or not valid JSON.
func (s *Store) Get(key string) ([]byte, bool) {
	mu := &s.locks[stripe(key)]
	mu.RLock()
	defer mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	if !json.Valid(data) {
		s.logger.Warn("discarding malformed cache entry", "key", key)
		return nil, false
	}
	return data, true
}

// Put stores value under key. Concurrent writers for the same key are
// last-write-wins; failures are logged and swallowed.
func (s *Store) Put(key string, value []byte) {
	mu := &s.locks[stripe(key)]
	mu.Lock()
	defer mu.Unlock()

	if err := os.WriteFile(s.path(key), value, 0o644); err != nil {
		s.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// path maps a key to its file, escaping so arbitrary key characters
// cannot walk out of the cache directory.
func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+".json")
}

func stripe(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32() % lockStripes
}
