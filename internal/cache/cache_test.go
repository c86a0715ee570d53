package cache

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(t.TempDir(), nil)
}

func TestPutThenGet(t *testing.T) {
	s := newTestStore(t)

	value := []byte(`{"nodes":[{"id":"x","label":"X"}],"edges":[]}`)
	s.Put(CollabsKey("x"), value)

	got, ok := s.Get(CollabsKey("x"))
	if !ok {
		t.Fatal("expected cache hit after put")
	}
	if !bytes.Equal(got, value) {
		t.Errorf("cached value mismatch: got %s", got)
	}
}

func TestGetUnknownKey(t *testing.T) {
	s := newTestStore(t)

	if _, ok := s.Get(SearchKey("never stored")); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestMalformedEntryDegradesToMiss(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, nil)

	key := SearchKey("broken")
	s.Put(key, []byte(`{"ok":true}`))

	// Corrupt the entry on disk behind the store's back.
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one cache file, got %v (%v)", matches, err)
	}
	if err := os.WriteFile(matches[0], []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.Get(key); ok {
		t.Error("expected malformed entry to read as a miss")
	}
}

func TestUnavailableDirectoryIsHarmless(t *testing.T) {
	// A path that cannot be created: below an existing file.
	file := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(filepath.Join(file, "cache"), nil)

	s.Put(SearchKey("q"), []byte(`{}`)) // must not panic
	if _, ok := s.Get(SearchKey("q")); ok {
		t.Error("expected miss when the cache directory does not exist")
	}
}

func TestKeysWithHostileCharacters(t *testing.T) {
	s := newTestStore(t)

	key := SearchKey("../../../etc/passwd ?&=")
	s.Put(key, []byte(`"safe"`))

	got, ok := s.Get(key)
	if !ok || string(got) != `"safe"` {
		t.Errorf("expected roundtrip for escaped key, got %q ok=%v", got, ok)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := SearchKey(fmt.Sprintf("query-%d", n%8))
			s.Put(key, []byte(fmt.Sprintf(`{"n":%d}`, n)))
			if v, ok := s.Get(key); ok && len(v) == 0 {
				t.Errorf("got empty hit for %s", key)
			}
		}(i)
	}
	wg.Wait()
}

func TestKeySignatures(t *testing.T) {
	if SearchKey("daft punk") != "search:daft punk" {
		t.Errorf("unexpected search key: %s", SearchKey("daft punk"))
	}
	if CollabsKey("abc") != "collabs:abc" {
		t.Errorf("unexpected collabs key: %s", CollabsKey("abc"))
	}
}
