// Package models contains the typed records exchanged between the query
// layer, the ranking/aggregation code and the REST API.
package models

import "time"

// Artist is a single artist row as stored in the credits database.
// ID is the stable internal key, GID the globally unique external
// identifier used in all API-facing references.
type Artist struct {
	ID      int64  `json:"id"`
	GID     string `json:"gid"`
	Name    string `json:"name"`
	Comment string `json:"comment,omitempty"`
}

// ArtistCandidate is an artist as returned by a broad search fetch,
// carrying the extra attributes the ranker needs: alternate credited
// names and record recency. The candidate set is unranked; ordering is
// the ranker's job.
type ArtistCandidate struct {
	Artist

	// Aliases holds alternate credited names. May be empty.
	Aliases []string

	// LastUpdated is the recency of the underlying record, used as the
	// final tie-break when ranking.
	LastUpdated time.Time
}

// Track is a single track row. Track names longer than 50 characters
// are treated as data-quality noise and never reach collaboration
// results.
type Track struct {
	ID   int64  `json:"id"`
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// CollabRow is one raw (collaborating artist, track) join row for a
// seed artist. The same collaborator appears once per shared track, and
// the same (collaborator, track name) pair may appear more than once
// when upstream data duplicates the underlying track record.
type CollabRow struct {
	Artist Artist `json:"artist"`
	Track  Track  `json:"track"`

	// Occurrences is how many times this particular track record was
	// credited, when the backend can report it. Zero means unknown; the
	// aggregator then falls back to the lowest track ID tie-break.
	Occurrences int64 `json:"occurrences,omitempty"`
}
