// Package sqlite provides a SQLite-backed QuerySource over a local
// mirror of the music credits tables.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fidde/collab_graph/pkg/models"
	_ "modernc.org/sqlite"
)

//go:embed migrations/001_initial_schema.up.sql
var migrationSQL string

// candidateFetchLimit bounds the broad search fetch. Ranking caps the
// final result at 100; the fetch stays wider so the ranker has real
// material to order.
const candidateFetchLimit = 500

// Store is a SQLite-backed query source.
type Store struct {
	db *sql.DB
}

// Config holds SQLite store configuration.
type Config struct {
	DBPath string
}

// New opens the database, applies pragmas and ensures the schema
// exists.
func New(cfg Config) (*Store, error) {
	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000", // 64MB cache
		"PRAGMA temp_store=MEMORY",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	if _, err := db.Exec(migrationSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// DB exposes the underlying handle for import tooling and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SearchCandidates returns a broad candidate set: artists whose name or
// any credited alias contains the query text, case-insensitively.
// Accent folding and ranking happen in the ranker, not in SQL.
func (s *Store) SearchCandidates(ctx context.Context, text string) ([]models.ArtistCandidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT a.id, a.gid, a.name, a.comment, a.last_updated
		FROM artist a
		LEFT JOIN artist_credit_name acn ON acn.artist = a.id
		WHERE LOWER(a.name) LIKE '%' || LOWER(?1) || '%'
		   OR LOWER(acn.name) LIKE '%' || LOWER(?1) || '%'
		LIMIT ?2
	`, text, candidateFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("searching artists: %w", err)
	}
	defer rows.Close()

	var candidates []models.ArtistCandidate
	var ids []int64
	for rows.Next() {
		var c models.ArtistCandidate
		var updated string
		if err := rows.Scan(&c.ID, &c.GID, &c.Name, &c.Comment, &updated); err != nil {
			return nil, fmt.Errorf("scanning artist row: %w", err)
		}
		c.LastUpdated = parseTimestamp(updated)
		candidates = append(candidates, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating artist rows: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	aliases, err := s.creditedNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		candidates[i].Aliases = aliases[candidates[i].ID]
	}
	return candidates, nil
}

// creditedNames fetches the credited name forms for a set of artists.
// Names equal to the canonical one are harmless; the ranker's exact
// tier wins before the alias tier is consulted.
func (s *Store) creditedNames(ctx context.Context, ids []int64) (map[int64][]string, error) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT artist, name
		FROM artist_credit_name
		WHERE artist IN (%s)
	`, strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching credited names: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]string, len(ids))
	for rows.Next() {
		var artistID int64
		var name string
		if err := rows.Scan(&artistID, &name); err != nil {
			return nil, fmt.Errorf("scanning credited name: %w", err)
		}
		out[artistID] = append(out[artistID], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating credited names: %w", err)
	}
	return out, nil
}

// ArtistByGID fetches one artist by external identifier.
func (s *Store) ArtistByGID(ctx context.Context, gid string) (models.Artist, error) {
	var a models.Artist
	err := s.db.QueryRowContext(ctx, `
		SELECT id, gid, name, comment
		FROM artist
		WHERE gid = ?
		LIMIT 1
	`, gid).Scan(&a.ID, &a.GID, &a.Name, &a.Comment)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Artist{}, fmt.Errorf("artist %s: %w", gid, models.ErrNotFound)
	}
	if err != nil {
		return models.Artist{}, fmt.Errorf("fetching artist %s: %w", gid, err)
	}
	return a, nil
}

// CollabRows returns every (collaborator, track) join row for the seed
// artist's internal key. The length filter here is an optimization; the
// aggregator re-applies it. Duplicate track records for the same track
// name survive on purpose, each with its credit occurrence count.
func (s *Store) CollabRows(ctx context.Context, artistID int64) ([]models.CollabRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a2.id, a2.gid, a2.name, a2.comment,
		       t.id, t.gid, t.name,
		       COUNT(*) AS occurrences
		FROM artist_credit_name acn
		JOIN artist_credit_name acn2
		  ON acn2.artist_credit = acn.artist_credit AND acn2.artist <> acn.artist
		JOIN artist a2 ON a2.id = acn2.artist
		JOIN track t ON t.artist_credit = acn.artist_credit
		WHERE acn.artist = ?
		  AND LENGTH(t.name) <= 50
		GROUP BY a2.id, t.id
	`, artistID)
	if err != nil {
		return nil, fmt.Errorf("fetching collaboration rows: %w", err)
	}
	defer rows.Close()

	var out []models.CollabRow
	for rows.Next() {
		var row models.CollabRow
		if err := rows.Scan(
			&row.Artist.ID, &row.Artist.GID, &row.Artist.Name, &row.Artist.Comment,
			&row.Track.ID, &row.Track.GID, &row.Track.Name,
			&row.Occurrences,
		); err != nil {
			return nil, fmt.Errorf("scanning collaboration row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collaboration rows: %w", err)
	}
	return out, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// parseTimestamp handles the formats SQLite datetime() and imports
// produce. Unparseable values become the zero time, which simply loses
// the recency tie-break.
func parseTimestamp(v string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
