package rules

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/compliance/aml-engine/internal/models"
)

// CounterpartyConcentration flags fan-in and fan-out bursts: many unique
// counterparties moving a large aggregate inside a short window.
type CounterpartyConcentration struct {
	cfg Config
}

func NewCounterpartyConcentration(cfg Config) *CounterpartyConcentration {
	return &CounterpartyConcentration{cfg: cfg}
}

func (r *CounterpartyConcentration) Name() string { return "Counterparty Concentration" }

func (r *CounterpartyConcentration) Description() string {
	return fmt.Sprintf("Detects fan-in/fan-out patterns: %d+ unique counterparties within %d days with aggregate > %s EUR.",
		r.cfg.CounterpartyUniqueMin, r.cfg.CounterpartyWindowDays, formatConfigValue(r.cfg.CounterpartyAggregate))
}

func (r *CounterpartyConcentration) Evaluate(txns []models.Transaction, _ Context) []models.Alert {
	var alerts []models.Alert

	view := dateSorted(txns)
	if len(view) == 0 {
		return alerts
	}

	alerts = append(alerts, r.checkDirection(view, senderOf, "Fan-in concentration")...)
	alerts = append(alerts, r.checkDirection(view, receiverOf, "Fan-out concentration")...)

	return alerts
}

// checkDirection reports at most one window per direction: the earliest
// window that clears both the uniqueness and the aggregate bar.
func (r *CounterpartyConcentration) checkDirection(view []models.Transaction, counterparty func(*models.Transaction) string, label string) []models.Alert {
	var alerts []models.Alert

	window := time.Duration(r.cfg.CounterpartyWindowDays) * 24 * time.Hour

	for i := range view {
		windowStart := *view[i].Date
		windowEnd := windowStart.Add(window)

		var indices []int
		var unique []string
		seen := make(map[string]bool)
		aggregate := 0.0
		for j := range view {
			if view[j].Date.Before(windowStart) || view[j].Date.After(windowEnd) {
				continue
			}
			indices = append(indices, j)
			aggregate += view[j].Amount
			name := strings.ToLower(strings.TrimSpace(counterparty(&view[j])))
			if name != "" && !seen[name] {
				seen[name] = true
				unique = append(unique, name)
			}
		}

		if len(unique) < r.cfg.CounterpartyUniqueMin {
			continue
		}
		if aggregate <= r.cfg.CounterpartyAggregate {
			continue
		}

		listed := append([]string(nil), unique...)
		sort.Strings(listed)
		if len(listed) > 10 {
			listed = listed[:10]
		}
		alerts = append(alerts, newAlert(r.Name(), models.AlertTypeCounterparty, models.SeverityHigh,
			fmt.Sprintf(
				"%s: %d unique counterparties within %d days (%s to %s), aggregate %s EUR. Counterparties: %s.",
				label, len(unique), r.cfg.CounterpartyWindowDays,
				windowStart.Format(dateLayout), windowEnd.Format(dateLayout),
				formatAmount(aggregate), strings.Join(listed, ", ")),
			indices))
		break
	}

	return alerts
}

func senderOf(t *models.Transaction) string   { return t.Sender }
func receiverOf(t *models.Transaction) string { return t.Receiver }
