// Package musicdb defines the narrow, read-only query interface over
// the music credits database and a factory for its backends.
package musicdb

import (
	"context"

	"github.com/fidde/collab_graph/pkg/models"
)

// QuerySource answers the three questions the service needs. Row sets
// come back unordered and unranked; ranking and aggregation happen in
// code. Implementations must be safe for concurrent use.
type QuerySource interface {
	// SearchCandidates returns a broad, unranked candidate set for a
	// normalized text query: artists whose canonical name or any
	// credited alias matches, with aliases and recency attached.
	SearchCandidates(ctx context.Context, text string) ([]models.ArtistCandidate, error)

	// ArtistByGID fetches one artist by external identifier. Returns
	// models.ErrNotFound (possibly wrapped) when the gid does not
	// resolve.
	ArtistByGID(ctx context.Context, gid string) (models.Artist, error)

	// CollabRows returns every raw (collaborator, track) join row for
	// the artist with the given internal key. Duplicate underlying
	// track records are returned as-is; deduplication is the
	// aggregator's job.
	CollabRows(ctx context.Context, artistID int64) ([]models.CollabRow, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
