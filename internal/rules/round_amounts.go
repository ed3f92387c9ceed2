package rules

import (
	"fmt"
	"math"
	"strings"

	"github.com/compliance/aml-engine/internal/models"
)

// RoundAmount flags customers with a high share of round amounts and
// runs of consecutive round amounts.
type RoundAmount struct {
	cfg Config
}

func NewRoundAmount(cfg Config) *RoundAmount {
	return &RoundAmount{cfg: cfg}
}

func (r *RoundAmount) Name() string { return "Round Amount Pattern" }

func (r *RoundAmount) Description() string {
	return fmt.Sprintf(
		"Detects high ratio of round-amount transactions (divisible by %s) or %d+ consecutive round amounts.",
		strings.Join(r.divisorStrings(), "/"), r.cfg.RoundAmountConsecutiveMin)
}

func (r *RoundAmount) divisorStrings() []string {
	out := make([]string, len(r.cfg.RoundAmountDivisors))
	for i, d := range r.cfg.RoundAmountDivisors {
		out[i] = formatConfigValue(d)
	}
	return out
}

func (r *RoundAmount) isRound(amount float64) bool {
	abs := math.Abs(amount)
	if abs == 0 {
		return false
	}
	for _, d := range r.cfg.RoundAmountDivisors {
		if math.Mod(abs, d) == 0 {
			return true
		}
	}
	return false
}

func (r *RoundAmount) Evaluate(txns []models.Transaction, _ Context) []models.Alert {
	var alerts []models.Alert

	total := len(txns)
	if total == 0 {
		return alerts
	}

	var roundIndices []int
	for i, tx := range txns {
		if r.isRound(tx.Amount) {
			roundIndices = append(roundIndices, i)
		}
	}

	ratio := float64(len(roundIndices)) / float64(total)
	if ratio > r.cfg.RoundAmountRatio && total >= 3 {
		alerts = append(alerts, newAlert(r.Name(), models.AlertTypeRoundAmount, models.SeverityMedium,
			fmt.Sprintf(
				"High round-amount ratio: %s of transactions (%d/%d) are round amounts (divisible by %s).",
				formatPercent(ratio, 0), len(roundIndices), total, strings.Join(r.divisorStrings(), " or ")),
			roundIndices))
	}

	// Consecutive runs are evaluated in date order; undated rows keep
	// their relative position at the end.
	view := dateSortedKeepUndated(txns)

	runStart := -1
	runLen := 0
	flush := func() {
		if runLen >= r.cfg.RoundAmountConsecutiveMin {
			indices := make([]int, runLen)
			amounts := make([]float64, runLen)
			for k := 0; k < runLen; k++ {
				indices[k] = runStart + k
				amounts[k] = view[runStart+k].Amount
			}
			alerts = append(alerts, newAlert(r.Name(), models.AlertTypeRoundAmount, models.SeverityMedium,
				fmt.Sprintf("%d consecutive round-amount transactions detected: %s.",
					runLen, formatAmountList(amounts)),
				indices))
		}
		runStart = -1
		runLen = 0
	}

	for i := range view {
		if r.isRound(view[i].Amount) {
			if runStart < 0 {
				runStart = i
			}
			runLen++
		} else {
			flush()
		}
	}
	flush()

	return alerts
}
