package rules

import (
	"fmt"
	"strings"

	"github.com/compliance/aml-engine/internal/models"
)

// HighRiskCountryRule flags transactions whose IBAN or BIC points at a
// jurisdiction in the country risk registry. A transaction can raise two
// alerts when IBAN and BIC both match.
type HighRiskCountryRule struct{}

func NewHighRiskCountryRule() *HighRiskCountryRule {
	return &HighRiskCountryRule{}
}

func (r *HighRiskCountryRule) Name() string { return "High Risk Country" }

func (r *HighRiskCountryRule) Description() string {
	return "Flags transactions involving IBANs or BICs from high-risk countries."
}

func (r *HighRiskCountryRule) Evaluate(txns []models.Transaction, ctx Context) []models.Alert {
	var alerts []models.Alert

	lookup := make(map[string]models.HighRiskCountry, len(ctx.HighRiskCountries))
	for _, c := range ctx.HighRiskCountries {
		code := strings.ToUpper(strings.TrimSpace(c.CountryCode))
		if code != "" {
			lookup[code] = c
		}
	}
	if len(lookup) == 0 {
		return alerts
	}

	type hit struct {
		code   string
		source string
	}

	for i := range txns {
		tx := &txns[i]

		var found []hit
		if cc := tx.IBANCountry(); cc != "" {
			if _, ok := lookup[cc]; ok {
				found = append(found, hit{cc, "IBAN"})
			}
		}
		if cc := tx.BICCountry(); cc != "" {
			if _, ok := lookup[cc]; ok {
				found = append(found, hit{cc, "BIC"})
			}
		}

		for _, f := range found {
			entry := lookup[f.code]
			severity := models.SeverityMedium
			label := "Greylisted"
			if entry.IsBlacklisted() {
				severity = models.SeverityHigh
				label = "Blacklisted"
			}
			alerts = append(alerts, newAlert(r.Name(), models.AlertTypeHighRiskCountry, severity,
				fmt.Sprintf(
					"%s country %s detected via %s on transaction dated %s, amount %s EUR. Sender: %s, Receiver: %s.",
					label, f.code, f.source, formatDate(tx.Date), formatAmount(tx.Amount),
					partyName(tx.Sender), partyName(tx.Receiver)),
				[]int{i}))
		}
	}

	return alerts
}
