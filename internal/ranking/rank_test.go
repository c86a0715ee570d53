package ranking

import (
	"fmt"
	"testing"
	"time"

	"github.com/fidde/collab_graph/pkg/models"
)

func candidate(id int64, name string, aliases ...string) models.ArtistCandidate {
	return models.ArtistCandidate{
		Artist: models.Artist{
			ID:   id,
			GID:  fmt.Sprintf("00000000-0000-0000-0000-%012d", id),
			Name: name,
		},
		Aliases: aliases,
	}
}

func TestRank_TierOrdering(t *testing.T) {
	candidates := []models.ArtistCandidate{
		candidate(1, "Prince and the Revolution"),            // substring
		candidate(2, "Prince"),                               // exact
		candidate(3, "Christopher Tracy", "Prince"),          // alias exact
		candidate(4, "Totally Unrelated", "Nothing Alike X"), // fallback
	}

	got := Rank("prince", candidates)
	if len(got) != 4 {
		t.Fatalf("expected 4 results, got %d", len(got))
	}

	wantOrder := []int64{2, 3, 1, 4}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("position %d: expected artist %d, got %d (%s)", i, want, got[i].ID, got[i].Name)
		}
	}
}

func TestRank_ExactMatchIgnoresCaseAndAccents(t *testing.T) {
	tests := []struct {
		name  string
		query string
		cand  string
	}{
		{"plain case fold", "PRINCE", "prince"},
		{"accented name", "beyonce", "Beyoncé"},
		{"accented query", "Beyoncé", "Beyonce"},
		{"mixed", "bjork", "Björk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates := []models.ArtistCandidate{
				candidate(1, tt.cand),
				candidate(2, tt.cand+" Tribute Band"),
			}
			got := Rank(tt.query, candidates)
			if len(got) == 0 || got[0].ID != 1 {
				t.Fatalf("expected %q to rank first for query %q, got %+v", tt.cand, tt.query, got)
			}
		})
	}
}

func TestRank_ShorterNamesFirstWithinTier(t *testing.T) {
	candidates := []models.ArtistCandidate{
		candidate(1, "Nickelback Cover Collective"),
		candidate(2, "Nickelbackers"),
	}

	got := Rank("nickelback", candidates)
	if got[0].ID != 2 {
		t.Errorf("expected shorter name first, got %q", got[0].Name)
	}
}

func TestRank_RecencyBreaksTies(t *testing.T) {
	older := candidate(1, "Duplicate")
	older.LastUpdated = time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := candidate(2, "Duplicate")
	newer.LastUpdated = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	got := Rank("duplicate", []models.ArtistCandidate{older, newer})
	if got[0].ID != 2 {
		t.Errorf("expected most recently updated record first, got artist %d", got[0].ID)
	}
}

func TestRank_CapsAtMaxResults(t *testing.T) {
	candidates := make([]models.ArtistCandidate, 0, 250)
	for i := int64(0); i < 250; i++ {
		candidates = append(candidates, candidate(i, fmt.Sprintf("Band %03d", i)))
	}

	got := Rank("band", candidates)
	if len(got) != MaxResults {
		t.Errorf("expected %d results, got %d", MaxResults, len(got))
	}
}

func TestRank_NoAliasesOnlySkipsAliasTier(t *testing.T) {
	// A candidate without aliases must still classify into other tiers.
	got := Rank("cher", []models.ArtistCandidate{candidate(1, "Cher")})
	if len(got) != 1 {
		t.Fatalf("expected alias-less candidate to survive, got %d results", len(got))
	}
}

func TestRank_EmptyNormalizedQuery(t *testing.T) {
	got := Rank(" , ,, ", []models.ArtistCandidate{candidate(1, "Anyone")})
	if got != nil {
		t.Errorf("expected nil for punctuation-only query, got %+v", got)
	}
}
