// Package clickhouse provides a QuerySource over a read-only ClickHouse
// mirror of the music credits tables. The mirror exists for large
// datasets where the collaboration join is too heavy for SQLite; the
// table shapes match the SQLite schema.
package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/fidde/collab_graph/pkg/models"
)

const candidateFetchLimit = 500

// Store is a ClickHouse-backed query source.
type Store struct {
	conn   driver.Conn
	logger *slog.Logger
}

// New connects to ClickHouse (with retry) and returns a store.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (*Store, error) {
	conn, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to clickhouse", "addr", cfg.Addr, "database", cfg.Database)
	return &Store{conn: conn, logger: logger}, nil
}

// SearchCandidates returns a broad, unranked candidate set with
// credited names aggregated per artist.
func (s *Store) SearchCandidates(ctx context.Context, text string) ([]models.ArtistCandidate, error) {
	query := `
		SELECT a.id, a.gid, a.name, a.comment, a.last_updated,
		       groupUniqArray(acn.name) AS credited_names
		FROM artist AS a
		LEFT JOIN artist_credit_name AS acn ON acn.artist = a.id
		WHERE positionCaseInsensitive(a.name, ?) > 0
		   OR positionCaseInsensitive(acn.name, ?) > 0
		GROUP BY a.id, a.gid, a.name, a.comment, a.last_updated
		LIMIT ?
	`

	start := time.Now()
	rows, err := s.conn.Query(ctx, query, text, text, uint32(candidateFetchLimit))
	if err != nil {
		return nil, fmt.Errorf("searching artists: %w", err)
	}
	defer rows.Close()

	var out []models.ArtistCandidate
	for rows.Next() {
		var c models.ArtistCandidate
		if err := rows.Scan(&c.ID, &c.GID, &c.Name, &c.Comment, &c.LastUpdated, &c.Aliases); err != nil {
			return nil, fmt.Errorf("scanning artist row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating artist rows: %w", err)
	}

	s.logger.Debug("search candidates fetched", "query", text, "count", len(out), "took", time.Since(start))
	return out, nil
}

// ArtistByGID fetches one artist by external identifier.
func (s *Store) ArtistByGID(ctx context.Context, gid string) (models.Artist, error) {
	query := `
		SELECT id, gid, name, comment
		FROM artist
		WHERE gid = ?
		LIMIT 1
	`

	var a models.Artist
	if err := s.conn.QueryRow(ctx, query, gid).Scan(&a.ID, &a.GID, &a.Name, &a.Comment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Artist{}, fmt.Errorf("artist %s: %w", gid, models.ErrNotFound)
		}
		return models.Artist{}, fmt.Errorf("fetching artist %s: %w", gid, err)
	}
	return a, nil
}

// CollabRows returns raw (collaborator, track) join rows for a seed
// artist. Duplicated track records survive; the aggregator dedups.
func (s *Store) CollabRows(ctx context.Context, artistID int64) ([]models.CollabRow, error) {
	query := `
		SELECT a2.id, a2.gid, a2.name, a2.comment,
		       t.id, t.gid, t.name,
		       count() AS occurrences
		FROM artist_credit_name AS acn
		INNER JOIN artist_credit_name AS acn2
		   ON acn2.artist_credit = acn.artist_credit AND acn2.artist != acn.artist
		INNER JOIN artist AS a2 ON a2.id = acn2.artist
		INNER JOIN track AS t ON t.artist_credit = acn.artist_credit
		WHERE acn.artist = ?
		  AND lengthUTF8(t.name) <= 50
		GROUP BY a2.id, a2.gid, a2.name, a2.comment, t.id, t.gid, t.name
	`

	start := time.Now()
	rows, err := s.conn.Query(ctx, query, artistID)
	if err != nil {
		return nil, fmt.Errorf("fetching collaboration rows: %w", err)
	}
	defer rows.Close()

	var out []models.CollabRow
	for rows.Next() {
		var row models.CollabRow
		var occurrences uint64
		if err := rows.Scan(
			&row.Artist.ID, &row.Artist.GID, &row.Artist.Name, &row.Artist.Comment,
			&row.Track.ID, &row.Track.GID, &row.Track.Name,
			&occurrences,
		); err != nil {
			return nil, fmt.Errorf("scanning collaboration row: %w", err)
		}
		row.Occurrences = int64(occurrences)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collaboration rows: %w", err)
	}

	s.logger.Debug("collaboration rows fetched", "artist_id", artistID, "count", len(out), "took", time.Since(start))
	return out, nil
}

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
