// Package graph turns flat (collaborator, track) join rows into a
// deduplicated node/edge graph for visualization. Raw rows over-count:
// one creative work can surface as several underlying track records, so
// the aggregator resolves a single canonical track instance per
// (collaborator, track name) pair before counting anything.
package graph

import (
	"unicode/utf8"

	"github.com/fidde/collab_graph/pkg/models"
)

// MaxTrackNameLen is the cut-off above which a track name is treated as
// data-quality noise and excluded from collaboration results.
const MaxTrackNameLen = 50

// pairKey identifies an edge by its unordered artist pair, so the same
// collaboration encountered from either direction maps to one edge.
type pairKey struct {
	low, high string
}

func newPairKey(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{low: a, high: b}
}

// trackKey identifies a logical track per collaborator: duplicated
// underlying records for the same track name collapse onto one key.
type trackKey struct {
	artistGID string
	trackName string
}

// Build aggregates rows into a graph rooted at seed. The seed is always
// node zero, even without collaborators. Nodes and edges appear in
// discovery order; for a fixed row set the node and edge sets are
// identical regardless of row order.
func Build(seed models.Artist, rows []models.CollabRow) models.Graph {
	// Over-length names are dropped before canonical-instance selection
	// so they cannot influence tie-breaks among valid records.
	qualified := rows[:0:0]
	for _, row := range rows {
		if utf8.RuneCountInString(row.Track.Name) <= MaxTrackNameLen {
			qualified = append(qualified, row)
		}
	}

	// Resolve the canonical track instance per (collaborator, name):
	// highest occurrence count wins when available, lowest track ID
	// otherwise. First-occurrence order of each key is preserved.
	retained := make(map[trackKey]models.CollabRow, len(qualified))
	keyOrder := make([]trackKey, 0, len(qualified))
	for _, row := range qualified {
		key := trackKey{artistGID: row.Artist.GID, trackName: row.Track.Name}
		current, seen := retained[key]
		if !seen {
			retained[key] = row
			keyOrder = append(keyOrder, key)
			continue
		}
		if betterInstance(row, current) {
			retained[key] = row
		}
	}

	g := models.Graph{
		Nodes: []models.Node{{ID: seed.GID, Label: seed.Name, Comment: seed.Comment}},
		Edges: []models.Edge{},
	}
	seenNodes := map[string]struct{}{seed.GID: {}}
	edgeIndex := make(map[pairKey]int)
	edgeTracks := make(map[pairKey]map[string]struct{})

	for _, key := range keyOrder {
		row := retained[key]

		if _, ok := seenNodes[row.Artist.GID]; !ok {
			seenNodes[row.Artist.GID] = struct{}{}
			g.Nodes = append(g.Nodes, models.Node{
				ID:      row.Artist.GID,
				Label:   row.Artist.Name,
				Comment: row.Artist.Comment,
			})
		}

		pk := newPairKey(seed.GID, row.Artist.GID)
		idx, ok := edgeIndex[pk]
		if !ok {
			idx = len(g.Edges)
			edgeIndex[pk] = idx
			edgeTracks[pk] = make(map[string]struct{})
			g.Edges = append(g.Edges, models.Edge{
				From:   seed.GID,
				To:     row.Artist.GID,
				Tracks: []models.TrackRef{},
			})
		}

		if _, dup := edgeTracks[pk][row.Track.GID]; dup {
			continue
		}
		edgeTracks[pk][row.Track.GID] = struct{}{}
		g.Edges[idx].Value++
		g.Edges[idx].Tracks = append(g.Edges[idx].Tracks, models.TrackRef{
			GID:  row.Track.GID,
			Name: row.Track.Name,
		})
	}

	return g
}

// betterInstance reports whether candidate should replace current as
// the canonical record for a track key.
func betterInstance(candidate, current models.CollabRow) bool {
	if candidate.Occurrences != current.Occurrences {
		return candidate.Occurrences > current.Occurrences
	}
	return candidate.Track.ID < current.Track.ID
}
