package rules

import (
	"fmt"
	"time"

	"github.com/compliance/aml-engine/internal/models"
)

// Structuring detects smurfing: clusters of transactions kept just below
// the reporting threshold inside a rolling window.
type Structuring struct {
	cfg Config
}

func NewStructuring(cfg Config) *Structuring {
	return &Structuring{cfg: cfg}
}

func (r *Structuring) Name() string { return "Structuring Detection" }

func (r *Structuring) Description() string {
	return fmt.Sprintf(
		"Detects potential structuring where multiple transactions are kept below %s within a rolling %d-day window.",
		formatConfigValue(r.cfg.StructuringThreshold), r.cfg.StructuringWindowDays)
}

func (r *Structuring) Evaluate(txns []models.Transaction, _ Context) []models.Alert {
	var alerts []models.Alert

	view := dateSorted(txns)
	if len(view) == 0 {
		return alerts
	}

	var band []int
	for i, tx := range view {
		if tx.Amount >= r.cfg.StructuringLowerBound && tx.Amount < r.cfg.StructuringThreshold {
			band = append(band, i)
		}
	}
	if len(band) < r.cfg.StructuringMinTxns {
		return alerts
	}

	window := time.Duration(r.cfg.StructuringWindowDays) * 24 * time.Hour
	var flagged []map[int]bool

	for i, idx := range band {
		windowEnd := view[idx].Date.Add(window)

		var cluster []int
		total := 0.0
		for _, jdx := range band[i:] {
			if view[jdx].Date.After(windowEnd) {
				break
			}
			cluster = append(cluster, jdx)
			total += view[jdx].Amount
		}

		if len(cluster) < r.cfg.StructuringMinTxns || total <= r.cfg.StructuringThreshold {
			continue
		}
		// Skip clusters fully contained in an already flagged one.
		if coveredByAny(flagged, cluster) {
			continue
		}
		set := make(map[int]bool, len(cluster))
		for _, v := range cluster {
			set[v] = true
		}
		flagged = append(flagged, set)

		amounts := make([]float64, len(cluster))
		for k, c := range cluster {
			amounts[k] = view[c].Amount
		}
		first := view[cluster[0]].Date.Format(dateLayout)
		last := view[cluster[len(cluster)-1]].Date.Format(dateLayout)
		alerts = append(alerts, newAlert(r.Name(), models.AlertTypeStructuring, models.SeverityHigh,
			fmt.Sprintf(
				"Potential structuring detected: %d transactions between %s and %s totalling %s EUR. Individual amounts: %s",
				len(cluster), first, last, formatAmount(total), formatAmountList(amounts)),
			cluster))
	}

	return alerts
}

func coveredByAny(sets []map[int]bool, cluster []int) bool {
	for _, set := range sets {
		all := true
		for _, v := range cluster {
			if !set[v] {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
