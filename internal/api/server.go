// Package api provides the REST API for artist search and
// collaboration graphs.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fidde/collab_graph/internal/cache"
	"github.com/fidde/collab_graph/internal/musicdb"
	"github.com/fidde/collab_graph/internal/ratelimit"
)

// Server is the REST API server.
type Server struct {
	source  musicdb.QuerySource
	cache   *cache.Store
	limiter *ratelimit.Limiter
	logger  *slog.Logger
	router  *chi.Mux
	server  *http.Server

	// now is stubbed in tests to drive the admission window.
	now func() time.Time
}

// Options configures optional server behavior.
type Options struct {
	// StaticDir is served with an index.html SPA fallback when set.
	StaticDir string
}

// NewServer creates a new API server.
func NewServer(addr string, source musicdb.QuerySource, respCache *cache.Store, limiter *ratelimit.Limiter, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		source:  source,
		cache:   respCache,
		limiter: limiter,
		logger:  logger,
		router:  chi.NewRouter(),
		now:     time.Now,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(s.admit)
			r.Get("/artists", s.searchArtists)
			r.Get("/artists/{gid}/collabs", s.getCollabGraph)
		})
	})

	if opts.StaticDir != "" {
		s.serveStatic(opts.StaticDir)
	}

	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	return s
}

// Start starts the API server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// admit is the rate-limiting middleware. Rejection is normal control
// flow: it produces a 429, never an error log.
func (s *Server) admit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := clientAddr(r)
		if !s.limiter.Admit(clientID, s.now()) {
			s.logger.Debug("request rejected by rate limiter", "client", clientID, "path", r.URL.Path)
			s.respondError(w, http.StatusTooManyRequests, "Too many requests. Please wait before trying again.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientAddr extracts the client identifier. RealIP middleware has
// already folded forwarding headers into RemoteAddr.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// serveStatic serves front end assets with an index.html fallback for
// SPA routing.
func (s *Server) serveStatic(dir string) {
	fileServer := http.FileServer(http.Dir(dir))

	s.router.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	})
}

// respondJSON writes a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondRaw writes an already-serialized JSON body.
func (s *Server) respondRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// respondError writes an error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}
