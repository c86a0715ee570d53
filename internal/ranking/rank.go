// Package ranking orders broad artist search candidates into a
// deterministic, explainable relevance ranking. The query layer fetches
// candidates unranked; this package classifies each one into a tier and
// sorts within tiers, so the ranking logic stays testable without a
// database.
package ranking

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fidde/collab_graph/pkg/models"
)

// MaxResults caps the ranked output.
const MaxResults = 100

// Relevance tiers; lower means more relevant.
const (
	tierExact      = 1 // canonical name equals the query
	tierAliasExact = 2 // an alternate credited name is a near-exact match
	tierName       = 3 // canonical name contains or fuzzy-matches the query
	tierFallback   = 4 // candidate fetch matched, tiers 1-3 did not
)

const (
	// fuzzyThreshold is the minimum similarity for a fuzzy name match.
	fuzzyThreshold = 0.7
	// aliasNearExact is the minimum similarity for an alias to count as
	// a near-exact credited-name match.
	aliasNearExact = 0.9
)

type scoredCandidate struct {
	cand models.ArtistCandidate
	tier int
	sim  float64
}

// Rank classifies and orders candidates by relevance to query.
// Ordering: tier ascending, similarity descending, canonical name
// length ascending, record recency descending. Output is capped at
// MaxResults. Callers are expected to reject empty queries before
// ranking; an empty normalized query yields nil.
func Rank(query string, candidates []models.ArtistCandidate) []models.Artist {
	q := Normalize(query)
	if q == "" {
		return nil
	}

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		tier, sim := classify(q, c)
		scored = append(scored, scoredCandidate{cand: c, tier: tier, sim: sim})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.tier != b.tier {
			return a.tier < b.tier
		}
		if a.sim != b.sim {
			return a.sim > b.sim
		}
		la := utf8.RuneCountInString(a.cand.Name)
		lb := utf8.RuneCountInString(b.cand.Name)
		if la != lb {
			return la < lb
		}
		return a.cand.LastUpdated.After(b.cand.LastUpdated)
	})

	if len(scored) > MaxResults {
		scored = scored[:MaxResults]
	}

	out := make([]models.Artist, len(scored))
	for i, s := range scored {
		out[i] = s.cand.Artist
	}
	return out
}

// classify assigns a candidate its relevance tier and the similarity
// score backing that tier. A candidate with no aliases simply skips the
// alias tier.
func classify(q string, c models.ArtistCandidate) (int, float64) {
	name := Normalize(c.Name)
	nameSim := similarity(q, name)

	if name == q {
		return tierExact, 1
	}

	var bestAlias float64
	for _, alias := range c.Aliases {
		if s := similarity(q, Normalize(alias)); s > bestAlias {
			bestAlias = s
		}
	}
	if bestAlias >= aliasNearExact {
		return tierAliasExact, bestAlias
	}

	if strings.Contains(name, q) || nameSim >= fuzzyThreshold {
		return tierName, nameSim
	}

	sim := nameSim
	if bestAlias > sim {
		sim = bestAlias
	}
	return tierFallback, sim
}
