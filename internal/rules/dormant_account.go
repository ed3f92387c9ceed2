package rules

import (
	"fmt"
	"time"

	"github.com/compliance/aml-engine/internal/models"
)

// DormantAccount flags burst activity following a long inactivity gap.
type DormantAccount struct {
	cfg Config
}

func NewDormantAccount(cfg Config) *DormantAccount {
	return &DormantAccount{cfg: cfg}
}

func (r *DormantAccount) Name() string { return "Dormant Account Activity" }

func (r *DormantAccount) Description() string {
	return fmt.Sprintf("Flags accounts with no activity for %d+ days followed by %d+ transactions within %d days.",
		r.cfg.DormantInactivityDays, r.cfg.DormantBurstCount, r.cfg.DormantBurstWindowDays)
}

func (r *DormantAccount) Evaluate(txns []models.Transaction, _ Context) []models.Alert {
	var alerts []models.Alert

	view := dateSorted(txns)
	if len(view) < r.cfg.DormantBurstCount+1 {
		return alerts
	}

	window := time.Duration(r.cfg.DormantBurstWindowDays) * 24 * time.Hour

	for i := 1; i < len(view); i++ {
		gapDays := int(view[i].Date.Sub(*view[i-1].Date) / (24 * time.Hour))
		if gapDays < r.cfg.DormantInactivityDays {
			continue
		}

		burstStart := *view[i].Date
		burstEnd := burstStart.Add(window)

		var indices []int
		total := 0.0
		for j := range view {
			if view[j].Date.Before(burstStart) || view[j].Date.After(burstEnd) {
				continue
			}
			indices = append(indices, j)
			total += view[j].Amount
		}

		if len(indices) < r.cfg.DormantBurstCount {
			continue
		}
		alerts = append(alerts, newAlert(r.Name(), models.AlertTypeDormantAccount, models.SeverityMedium,
			fmt.Sprintf(
				"Dormant account reactivation: %d days of inactivity (last activity %s), followed by %d transactions within %d days starting %s, totalling %s EUR.",
				gapDays, view[i-1].Date.Format(dateLayout), len(indices), r.cfg.DormantBurstWindowDays,
				burstStart.Format(dateLayout), formatAmount(total)),
			indices))
	}

	return alerts
}
