package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fidde/collab_graph/internal/cache"
	"github.com/fidde/collab_graph/internal/graph"
	"github.com/fidde/collab_graph/internal/ranking"
	"github.com/fidde/collab_graph/pkg/models"
)

// searchArtists handles GET /api/artists?q=<text>: a ranked artist
// search, cached per normalized query.
func (s *Server) searchArtists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		s.respondError(w, http.StatusBadRequest, "Query parameter 'q' is required.")
		return
	}

	// Normalizing before key derivation keeps "Beyoncé", "beyonce" and
	// "beyonce%20" from splitting the cache key space.
	normalized := ranking.Normalize(q)
	if normalized == "" {
		s.respondError(w, http.StatusBadRequest, "Query parameter 'q' is required.")
		return
	}

	key := cache.SearchKey(normalized)
	if body, ok := s.cache.Get(key); ok {
		s.respondRaw(w, http.StatusOK, body)
		return
	}

	candidates, err := s.source.SearchCandidates(ctx, normalized)
	if err != nil {
		s.logger.Error("artist search failed", "query", normalized, "error", err)
		s.respondError(w, http.StatusInternalServerError, "artist search unavailable")
		return
	}

	ranked := ranking.Rank(normalized, candidates)
	if ranked == nil {
		ranked = []models.Artist{}
	}

	body, err := json.Marshal(ranked)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.cache.Put(key, body)
	s.respondRaw(w, http.StatusOK, body)
}

// getCollabGraph handles GET /api/artists/{gid}/collabs: the node/edge
// collaboration graph rooted at the seed artist.
func (s *Server) getCollabGraph(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	parsed, err := uuid.Parse(chi.URLParam(r, "gid"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid artist identifier")
		return
	}
	// Canonical string form, so casing or bracing variants of the same
	// identifier share one cache entry.
	gid := parsed.String()

	key := cache.CollabsKey(gid)
	if body, ok := s.cache.Get(key); ok {
		s.respondRaw(w, http.StatusOK, body)
		return
	}

	// The collaboration fetch keys off the resolved seed's internal
	// identifier, so these two calls are strictly sequential.
	seed, err := s.source.ArtistByGID(ctx, gid)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "artist not found")
			return
		}
		s.logger.Error("seed artist lookup failed", "gid", gid, "error", err)
		s.respondError(w, http.StatusInternalServerError, "artist lookup unavailable")
		return
	}

	rows, err := s.source.CollabRows(ctx, seed.ID)
	if err != nil {
		s.logger.Error("collaboration fetch failed", "gid", gid, "error", err)
		s.respondError(w, http.StatusInternalServerError, "collaboration data unavailable")
		return
	}

	g := graph.Build(seed, rows)

	body, err := json.Marshal(g)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Only complete, successful results are cached; not-found and
	// upstream failures never poison the key.
	s.cache.Put(key, body)
	s.respondRaw(w, http.StatusOK, body)
}
