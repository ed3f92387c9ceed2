package rules

import (
	"fmt"
	"sort"

	"github.com/compliance/aml-engine/internal/models"
)

// ProfileDeviation flags transactions far above the customer's average
// amount and months with abnormal transaction frequency.
type ProfileDeviation struct {
	cfg Config
}

func NewProfileDeviation(cfg Config) *ProfileDeviation {
	return &ProfileDeviation{cfg: cfg}
}

func (r *ProfileDeviation) Name() string { return "Profile Deviation" }

func (r *ProfileDeviation) Description() string {
	return fmt.Sprintf("Flags transactions exceeding %.1fx the historical average amount or monthly frequency.",
		r.cfg.ProfileDeviationMultiplier)
}

func (r *ProfileDeviation) Evaluate(txns []models.Transaction, _ Context) []models.Alert {
	var alerts []models.Alert

	if len(txns) == 0 {
		return alerts
	}

	// Amount deviation. The average includes the outliers themselves.
	sum := 0.0
	for _, tx := range txns {
		sum += tx.Amount
	}
	avg := sum / float64(len(txns))
	if avg > 0 {
		threshold := avg * r.cfg.ProfileDeviationMultiplier
		for i, tx := range txns {
			if tx.Amount <= threshold {
				continue
			}
			alerts = append(alerts, newAlert(r.Name(), models.AlertTypeProfileDeviation, models.SeverityMedium,
				fmt.Sprintf(
					"Amount deviation: transaction of %s EUR on %s is %.1fx the historical average of %s EUR (threshold: %.1fx).",
					formatAmount(tx.Amount), formatDate(tx.Date), tx.Amount/avg,
					formatAmount(avg), r.cfg.ProfileDeviationMultiplier),
				[]int{i}))
		}
	}

	// Frequency deviation across calendar months.
	monthIndices := make(map[string][]int)
	for i, tx := range txns {
		if tx.Date == nil {
			continue
		}
		month := tx.Date.Format("2006-01")
		monthIndices[month] = append(monthIndices[month], i)
	}
	if len(monthIndices) < 2 {
		return alerts
	}

	months := make([]string, 0, len(monthIndices))
	totalCount := 0
	for m, indices := range monthIndices {
		months = append(months, m)
		totalCount += len(indices)
	}
	sort.Strings(months)

	avgFreq := float64(totalCount) / float64(len(monthIndices))
	freqThreshold := avgFreq * r.cfg.ProfileDeviationMultiplier
	for _, m := range months {
		count := len(monthIndices[m])
		if float64(count) <= freqThreshold {
			continue
		}
		alerts = append(alerts, newAlert(r.Name(), models.AlertTypeProfileDeviation, models.SeverityMedium,
			fmt.Sprintf(
				"Frequency deviation: %d transactions in %s is %.1fx the average monthly frequency of %.1f (threshold: %.1fx).",
				count, m, float64(count)/avgFreq, avgFreq, r.cfg.ProfileDeviationMultiplier),
			monthIndices[m]))
	}

	return alerts
}
