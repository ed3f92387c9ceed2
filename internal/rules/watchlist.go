package rules

import (
	"fmt"
	"strings"

	"github.com/compliance/aml-engine/internal/fuzzy"
	"github.com/compliance/aml-engine/internal/models"
)

// WatchlistRule screens sender and receiver names against the watchlist
// with token-sort fuzzy matching.
type WatchlistRule struct {
	cfg Config
}

func NewWatchlistRule(cfg Config) *WatchlistRule {
	return &WatchlistRule{cfg: cfg}
}

func (r *WatchlistRule) Name() string { return "Watchlist Match" }

func (r *WatchlistRule) Description() string {
	return "Matches transaction sender/receiver names against the watchlist using fuzzy matching."
}

func (r *WatchlistRule) Evaluate(txns []models.Transaction, ctx Context) []models.Alert {
	var alerts []models.Alert

	var names []string
	for _, e := range ctx.Watchlist {
		if name := strings.TrimSpace(e.Name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 || len(txns) == 0 {
		return alerts
	}

	// One alert per (entity, watchlist entry) pair; repeated sightings
	// only extend the affected index list of the existing alert.
	byPair := make(map[[2]string]int)

	fields := []struct {
		label string
		value func(*models.Transaction) string
	}{
		{"sender", func(t *models.Transaction) string { return t.Sender }},
		{"receiver", func(t *models.Transaction) string { return t.Receiver }},
	}

	for _, field := range fields {
		for i := range txns {
			entity := strings.TrimSpace(field.value(&txns[i]))
			if entity == "" {
				continue
			}
			for _, wlName := range names {
				score := fuzzy.TokenSortRatio(entity, wlName)
				if score < r.cfg.FuzzyMatchMedium {
					continue
				}

				key := [2]string{strings.ToLower(entity), strings.ToLower(wlName)}
				if pos, ok := byPair[key]; ok {
					if !containsIndex(alerts[pos].AffectedTransactionIndices, i) {
						alerts[pos].AffectedTransactionIndices = append(alerts[pos].AffectedTransactionIndices, i)
					}
					continue
				}

				severity := models.SeverityMedium
				if score >= r.cfg.FuzzyMatchHigh {
					severity = models.SeverityHigh
				}
				byPair[key] = len(alerts)
				alerts = append(alerts, newAlert(r.Name(), models.AlertTypeWatchlistMatch, severity,
					fmt.Sprintf("Watchlist match: '%s' (%s) matches watchlist entry '%s' with score %.0f%%.",
						entity, field.label, wlName, score),
					[]int{i}))
			}
		}
	}

	return alerts
}

func containsIndex(indices []int, idx int) bool {
	for _, v := range indices {
		if v == idx {
			return true
		}
	}
	return false
}
