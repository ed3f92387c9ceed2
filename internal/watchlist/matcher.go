// Package watchlist provides standalone fuzzy screening of entity
// names against the uploaded watchlist for the customer overview. The
// screening rule in internal/rules raises alerts; this matcher reports
// the match details themselves.
package watchlist

import (
	"math"
	"sort"
	"strings"

	"github.com/compliance/aml-engine/internal/fuzzy"
	"github.com/compliance/aml-engine/internal/models"
)

// topCandidates caps how many watchlist candidates are considered per
// entity name.
const topCandidates = 5

// Matcher screens entity names against watchlist entries using
// token-sort fuzzy matching.
type Matcher struct {
	minScore float64
}

// NewMatcher creates a matcher reporting matches at or above minScore.
func NewMatcher(minScore float64) *Matcher {
	return &Matcher{minScore: minScore}
}

// Match screens names against the watchlist. matchField labels the
// source field ("sender" or "receiver") and indicesByEntity maps
// lowered entity names to the transaction indices where they appear.
// Each (entity, entry) pair is reported at most once per call.
func (m *Matcher) Match(names []string, entries []models.WatchlistEntry, matchField string, indicesByEntity map[string][]int) []models.WatchlistMatch {
	watchlistNames := make([]string, 0, len(entries))
	for i := range entries {
		if name := strings.TrimSpace(entries[i].Name); name != "" {
			watchlistNames = append(watchlistNames, name)
		}
	}
	if len(watchlistNames) == 0 || len(names) == 0 {
		return nil
	}

	var matches []models.WatchlistMatch
	seen := make(map[[2]string]bool)

	for _, entityName := range names {
		entity := strings.TrimSpace(entityName)
		if entity == "" {
			continue
		}

		for _, cand := range topMatches(entity, watchlistNames) {
			if cand.score < m.minScore {
				continue
			}
			key := [2]string{strings.ToLower(entity), strings.ToLower(cand.name)}
			if seen[key] {
				continue
			}
			seen[key] = true

			indices := indicesByEntity[strings.ToLower(entity)]
			if indices == nil {
				indices = []int{}
			}
			matches = append(matches, models.WatchlistMatch{
				MatchedEntity:      entity,
				WatchlistEntry:     cand.name,
				MatchScore:         math.Round(cand.score*10) / 10,
				MatchField:         matchField,
				TransactionIndices: indices,
			})
		}
	}
	return matches
}

type candidate struct {
	name  string
	score float64
}

// topMatches scores every watchlist name and keeps the best
// topCandidates, ties resolved by watchlist order.
func topMatches(entity string, watchlistNames []string) []candidate {
	cands := make([]candidate, len(watchlistNames))
	for i, name := range watchlistNames {
		cands[i] = candidate{name: name, score: fuzzy.TokenSortRatio(entity, name)}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})
	if len(cands) > topCandidates {
		cands = cands[:topCandidates]
	}
	return cands
}
