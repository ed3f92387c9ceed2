// Package scoring turns rule alerts into one weighted customer risk
// assessment.
package scoring

import (
	"fmt"

	"github.com/compliance/aml-engine/internal/models"
)

// Scorer computes a capped weighted risk score from alerts. Each weight
// key contributes at most once, no matter how many alerts share it.
type Scorer struct {
	weights map[string]int
	cap     int
}

// NewScorer returns a scorer with the shipped weights and a cap of 100.
func NewScorer() *Scorer {
	return &Scorer{
		weights: map[string]int{
			"structuring":                 30,
			"high_risk_country_blacklist": 20,
			"high_risk_country_greylist":  10,
			"watchlist_high":              25,
			"watchlist_medium":            10,
			"threshold":                   5,
			"rapid_movement":              20,
			"round_amount":                10,
			"dormant":                     15,
			"counterparty":                20,
			"profile_deviation":           10,
			"flow_through":                25,
		},
		cap: 100,
	}
}

// Score walks the alerts in order; the first alert per weight key adds
// its weight and one contributing-factor line, later ones add nothing.
func (s *Scorer) Score(alerts []models.Alert) models.RiskAssessment {
	triggered := make(map[string]bool)
	factors := []string{}
	total := 0

	for i := range alerts {
		key, ok := weightKey(&alerts[i])
		if !ok || triggered[key] {
			continue
		}
		triggered[key] = true
		weight := s.weights[key]
		total += weight
		factors = append(factors, fmt.Sprintf("%s (%s): +%d points", alerts[i].RuleName, alerts[i].Severity, weight))
	}

	if total > s.cap {
		total = s.cap
	}
	return models.RiskAssessment{
		OverallScore:        float64(total),
		RiskLevel:           scoreToLevel(total),
		ContributingFactors: factors,
	}
}

// weightKey maps an alert to its weight table key. High-severity country
// and watchlist alerts carry heavier keys than their medium variants.
func weightKey(alert *models.Alert) (string, bool) {
	switch alert.AlertType {
	case models.AlertTypeStructuring:
		return "structuring", true
	case models.AlertTypeThreshold:
		return "threshold", true
	case models.AlertTypeHighRiskCountry:
		if alert.Severity == models.SeverityHigh {
			return "high_risk_country_blacklist", true
		}
		return "high_risk_country_greylist", true
	case models.AlertTypeWatchlistMatch:
		if alert.Severity == models.SeverityHigh {
			return "watchlist_high", true
		}
		return "watchlist_medium", true
	case models.AlertTypeRapidMovement:
		return "rapid_movement", true
	case models.AlertTypeRoundAmount:
		return "round_amount", true
	case models.AlertTypeDormantAccount:
		return "dormant", true
	case models.AlertTypeCounterparty:
		return "counterparty", true
	case models.AlertTypeProfileDeviation:
		return "profile_deviation", true
	case models.AlertTypeFlowThrough:
		return "flow_through", true
	}
	return "", false
}

func scoreToLevel(score int) string {
	switch {
	case score <= 25:
		return models.RiskLevelLow
	case score <= 50:
		return models.RiskLevelMedium
	case score <= 75:
		return models.RiskLevelHigh
	default:
		return models.RiskLevelCritical
	}
}
