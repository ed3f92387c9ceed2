package rules

import (
	"fmt"

	"github.com/compliance/aml-engine/internal/models"
)

// Threshold flags individual transactions at or above the reporting
// threshold.
type Threshold struct {
	cfg Config
}

func NewThreshold(cfg Config) *Threshold {
	return &Threshold{cfg: cfg}
}

func (r *Threshold) Name() string { return "Large Transaction Threshold" }

func (r *Threshold) Description() string {
	return fmt.Sprintf("Flags individual transactions >= %s EUR.", formatConfigValue(r.cfg.LargeTxThreshold))
}

func (r *Threshold) Evaluate(txns []models.Transaction, _ Context) []models.Alert {
	var alerts []models.Alert

	for i, tx := range txns {
		if tx.Amount < r.cfg.LargeTxThreshold {
			continue
		}
		alerts = append(alerts, newAlert(r.Name(), models.AlertTypeThreshold, models.SeverityMedium,
			fmt.Sprintf(
				"Transaction of %s EUR on %s exceeds threshold of %s EUR. Sender: %s, Receiver: %s.",
				formatAmount(tx.Amount), formatDate(tx.Date), formatConfigAmount(r.cfg.LargeTxThreshold),
				partyName(tx.Sender), partyName(tx.Receiver)),
			[]int{i}))
	}

	return alerts
}
