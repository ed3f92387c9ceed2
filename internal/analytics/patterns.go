// Package analytics computes aggregate transaction statistics for the
// customer overview.
package analytics

import (
	"math"
	"strings"

	"github.com/compliance/aml-engine/internal/models"
)

// AnalyzePatterns aggregates a customer's transactions into volume,
// type, currency and exposure statistics. Maps are always initialized
// so an empty history serializes as {} rather than null.
func AnalyzePatterns(txns []models.Transaction, countries []models.HighRiskCountry) models.PatternData {
	patterns := models.PatternData{
		ByMonth:    map[string]float64{},
		ByType:     map[string]float64{},
		ByCurrency: map[string]float64{},
	}
	if len(txns) == 0 {
		return patterns
	}

	var total float64
	var roundCount int
	for i := range txns {
		tx := &txns[i]
		total += tx.Amount
		if isRoundAmount(tx.Amount) {
			roundCount++
		}
		if tx.Date != nil {
			patterns.ByMonth[tx.Date.Format("2006-01")] += tx.Amount
		}
		if strings.TrimSpace(tx.TransactionType) != "" {
			patterns.ByType[tx.TransactionType] += tx.Amount
		}
		if strings.TrimSpace(tx.Currency) != "" {
			patterns.ByCurrency[tx.Currency] += tx.Amount
		}
	}
	for k, v := range patterns.ByMonth {
		patterns.ByMonth[k] = round2(v)
	}
	for k, v := range patterns.ByType {
		patterns.ByType[k] = round2(v)
	}
	for k, v := range patterns.ByCurrency {
		patterns.ByCurrency[k] = round2(v)
	}

	patterns.RoundAmountRatio = round4(float64(roundCount) / float64(len(txns)))
	patterns.AvgTransactionSize = round2(total / float64(len(txns)))

	codes := make(map[string]bool, len(countries))
	for i := range countries {
		code := strings.ToUpper(strings.TrimSpace(countries[i].CountryCode))
		if code != "" {
			codes[code] = true
		}
	}
	if len(codes) > 0 {
		var exposed int
		for i := range txns {
			if codes[txns[i].IBANCountry()] || codes[txns[i].BICCountry()] {
				exposed++
			}
		}
		patterns.HighRiskCountryExposure = round4(float64(exposed) / float64(len(txns)))
	}

	return patterns
}

func isRoundAmount(amount float64) bool {
	abs := math.Abs(amount)
	if abs == 0 {
		return false
	}
	return math.Mod(abs, 1000) == 0 || math.Mod(abs, 500) == 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
