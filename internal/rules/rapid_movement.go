package rules

import (
	"fmt"
	"math"

	"github.com/compliance/aml-engine/internal/models"
)

// RapidMovement flags near-equal inbound and outbound transfers that
// occur within a short window of each other.
type RapidMovement struct {
	cfg Config
}

func NewRapidMovement(cfg Config) *RapidMovement {
	return &RapidMovement{cfg: cfg}
}

func (r *RapidMovement) Name() string { return "Rapid Fund Movement" }

func (r *RapidMovement) Description() string {
	return fmt.Sprintf("Detects rapid in-out fund movements >= %s EUR within %s hours.",
		formatConfigValue(r.cfg.RapidMovementThreshold), formatConfigValue(r.cfg.RapidMovementWindowHours))
}

func (r *RapidMovement) Evaluate(txns []models.Transaction, _ Context) []models.Alert {
	var alerts []models.Alert

	view := dateSorted(txns)
	if len(view) < 2 {
		return alerts
	}

	var inbound, outbound []int
	for i := range view {
		if direction(&view[i]) == directionIn {
			inbound = append(inbound, i)
		} else {
			outbound = append(outbound, i)
		}
	}

	flagged := make(map[[2]int]bool)

	// Inbound paired with any outbound inside the window.
	for _, in := range inbound {
		inAmt := math.Abs(view[in].Amount)
		if inAmt < r.cfg.RapidMovementThreshold {
			continue
		}
		for _, out := range outbound {
			outAmt := math.Abs(view[out].Amount)
			if outAmt < r.cfg.RapidMovementThreshold {
				continue
			}
			pair := pairKey(in, out)
			if flagged[pair] {
				continue
			}
			hours := math.Abs(view[out].Date.Sub(*view[in].Date).Hours())
			if hours > r.cfg.RapidMovementWindowHours {
				continue
			}
			if inAmt == 0 {
				continue
			}
			ratio := math.Abs(inAmt-outAmt) / inAmt
			if ratio > r.cfg.RapidMovementTolerance {
				continue
			}
			flagged[pair] = true
			label := "sent then received"
			if !view[in].Date.After(*view[out].Date) {
				label = "received then sent"
			}
			alerts = append(alerts, newAlert(r.Name(), models.AlertTypeRapidMovement, models.SeverityHigh,
				fmt.Sprintf(
					"Rapid fund movement: %s. In: %s EUR on %s, Out: %s EUR on %s (%.1f hours apart, %s variance).",
					label, formatAmount(inAmt), view[in].Date.Format(dateTimeLayout),
					formatAmount(outAmt), view[out].Date.Format(dateTimeLayout),
					hours, formatPercent(ratio, 1)),
				[]int{in, out}))
		}
	}

	// Outbound later refunded by inbound. Not redundant with the pass
	// above: the variance denominator is the outbound amount here.
	for _, out := range outbound {
		outAmt := math.Abs(view[out].Amount)
		if outAmt < r.cfg.RapidMovementThreshold {
			continue
		}
		for _, in := range inbound {
			inAmt := math.Abs(view[in].Amount)
			if inAmt < r.cfg.RapidMovementThreshold {
				continue
			}
			if !view[in].Date.After(*view[out].Date) {
				continue
			}
			pair := pairKey(out, in)
			if flagged[pair] {
				continue
			}
			hours := view[in].Date.Sub(*view[out].Date).Hours()
			if hours > r.cfg.RapidMovementWindowHours {
				continue
			}
			if outAmt == 0 {
				continue
			}
			ratio := math.Abs(outAmt-inAmt) / outAmt
			if ratio > r.cfg.RapidMovementTolerance {
				continue
			}
			flagged[pair] = true
			alerts = append(alerts, newAlert(r.Name(), models.AlertTypeRapidMovement, models.SeverityHigh,
				fmt.Sprintf(
					"Rapid fund movement: sent then received. Out: %s EUR on %s, In: %s EUR on %s (%.1f hours apart, %s variance).",
					formatAmount(outAmt), view[out].Date.Format(dateTimeLayout),
					formatAmount(inAmt), view[in].Date.Format(dateTimeLayout),
					hours, formatPercent(ratio, 1)),
				[]int{out, in}))
		}
	}

	return alerts
}

func pairKey(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}
