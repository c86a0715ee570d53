// Package memory provides an in-memory QuerySource used by tests and
// small demo datasets.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/fidde/collab_graph/internal/ranking"
	"github.com/fidde/collab_graph/pkg/models"
)

// Store is an in-memory query source.
type Store struct {
	mu      sync.RWMutex
	artists []models.ArtistCandidate
	byGID   map[string]models.Artist
	collabs map[int64][]models.CollabRow
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		byGID:   make(map[string]models.Artist),
		collabs: make(map[int64][]models.CollabRow),
	}
}

// AddArtist registers an artist candidate.
func (s *Store) AddArtist(a models.ArtistCandidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artists = append(s.artists, a)
	s.byGID[a.GID] = a.Artist
}

// AddCollabRow appends a raw collaboration row for the given seed
// artist's internal key.
func (s *Store) AddCollabRow(artistID int64, row models.CollabRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collabs[artistID] = append(s.collabs[artistID], row)
}

// SearchCandidates returns artists whose folded name or any alias
// contains the query text. The set is broad and unranked on purpose.
func (s *Store) SearchCandidates(ctx context.Context, text string) ([]models.ArtistCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := ranking.Normalize(text)
	if needle == "" {
		return nil, nil
	}

	var out []models.ArtistCandidate
	for _, a := range s.artists {
		if strings.Contains(ranking.Normalize(a.Name), needle) {
			out = append(out, a)
			continue
		}
		for _, alias := range a.Aliases {
			if strings.Contains(ranking.Normalize(alias), needle) {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

// ArtistByGID fetches one artist by external identifier.
func (s *Store) ArtistByGID(ctx context.Context, gid string) (models.Artist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byGID[gid]
	if !ok {
		return models.Artist{}, models.ErrNotFound
	}
	return a, nil
}

// CollabRows returns the raw rows registered for an artist.
func (s *Store) CollabRows(ctx context.Context, artistID int64) ([]models.CollabRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.collabs[artistID]
	out := make([]models.CollabRow, len(rows))
	copy(out, rows)
	return out, nil
}

// Ping always succeeds for the in-memory store.
func (s *Store) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }
