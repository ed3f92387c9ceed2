package rules

import (
	"fmt"
	"math"
	"time"

	"github.com/compliance/aml-engine/internal/models"
)

// FlowThrough flags windows where inbound volume is mirrored by outbound
// volume, indicating pass-through layering.
type FlowThrough struct {
	cfg Config
}

func NewFlowThrough(cfg Config) *FlowThrough {
	return &FlowThrough{cfg: cfg}
}

func (r *FlowThrough) Name() string { return "Flow-Through Detection" }

func (r *FlowThrough) Description() string {
	return fmt.Sprintf(
		"Detects pass-through activity where incoming ~ outgoing (within %s variance) over a %d-day window, totalling > %s EUR.",
		formatPercent(r.cfg.FlowThroughVariance, 0), r.cfg.FlowThroughWindowDays, formatConfigValue(r.cfg.FlowThroughMinAmount))
}

func (r *FlowThrough) Evaluate(txns []models.Transaction, _ Context) []models.Alert {
	var alerts []models.Alert

	view := dateSorted(txns)
	if len(view) < 2 {
		return alerts
	}

	// Non-overlapping windows tiled from the first transaction.
	window := time.Duration(r.cfg.FlowThroughWindowDays) * 24 * time.Hour
	endDate := *view[len(view)-1].Date

	for start := *view[0].Date; !start.After(endDate); start = start.Add(window) {
		windowEnd := start.Add(window)

		var indices []int
		totalIn, totalOut := 0.0, 0.0
		for j := range view {
			if view[j].Date.Before(start) || !view[j].Date.Before(windowEnd) {
				continue
			}
			indices = append(indices, j)
			if direction(&view[j]) == directionIn {
				totalIn += math.Abs(view[j].Amount)
			} else {
				totalOut += math.Abs(view[j].Amount)
			}
		}

		if len(indices) < 2 {
			continue
		}
		total := math.Max(totalIn, totalOut)
		if total < r.cfg.FlowThroughMinAmount || totalIn <= 0 || totalOut <= 0 {
			continue
		}
		variance := math.Abs(totalIn-totalOut) / total
		if variance > r.cfg.FlowThroughVariance {
			continue
		}
		alerts = append(alerts, newAlert(r.Name(), models.AlertTypeFlowThrough, models.SeverityHigh,
			fmt.Sprintf(
				"Potential flow-through activity: incoming %s EUR vs outgoing %s EUR (%s variance) between %s and %s (%d transactions).",
				formatAmount(totalIn), formatAmount(totalOut), formatPercent(variance, 1),
				start.Format(dateLayout), windowEnd.Format(dateLayout), len(indices)),
			indices))
	}

	return alerts
}
