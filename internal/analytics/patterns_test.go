package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliance/aml-engine/internal/models"
)

func day(s string) *time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return &d
}

func TestAnalyzePatterns_EmptyHistory(t *testing.T) {
	patterns := AnalyzePatterns(nil, nil)

	require.NotNil(t, patterns.ByMonth)
	require.NotNil(t, patterns.ByType)
	require.NotNil(t, patterns.ByCurrency)
	assert.Empty(t, patterns.ByMonth)
	assert.Zero(t, patterns.RoundAmountRatio)
	assert.Zero(t, patterns.AvgTransactionSize)
	assert.Zero(t, patterns.HighRiskCountryExposure)
}

func TestAnalyzePatterns_Aggregation(t *testing.T) {
	txns := []models.Transaction{
		{Date: day("2024-01-10"), Amount: 1000, TransactionType: "Credit", Currency: "EUR"},
		{Date: day("2024-01-20"), Amount: 250.55, TransactionType: "Credit", Currency: "EUR"},
		{Date: day("2024-02-05"), Amount: 2000, TransactionType: "Debit", Currency: "USD"},
	}

	patterns := AnalyzePatterns(txns, nil)

	assert.InDelta(t, 1250.55, patterns.ByMonth["2024-01"], 0.001)
	assert.InDelta(t, 2000, patterns.ByMonth["2024-02"], 0.001)
	assert.InDelta(t, 1250.55, patterns.ByType["Credit"], 0.001)
	assert.InDelta(t, 2000, patterns.ByType["Debit"], 0.001)
	assert.InDelta(t, 1250.55, patterns.ByCurrency["EUR"], 0.001)
	assert.InDelta(t, 2000, patterns.ByCurrency["USD"], 0.001)
	assert.InDelta(t, 1083.52, patterns.AvgTransactionSize, 0.001)
	assert.InDelta(t, 0.6667, patterns.RoundAmountRatio, 0.0001)
}

func TestAnalyzePatterns_SkipsBlankAndUndatedRows(t *testing.T) {
	txns := []models.Transaction{
		{Amount: 100, TransactionType: "  ", Currency: ""},
	}

	patterns := AnalyzePatterns(txns, nil)

	assert.Empty(t, patterns.ByMonth)
	assert.Empty(t, patterns.ByType)
	assert.Empty(t, patterns.ByCurrency)
	assert.InDelta(t, 100, patterns.AvgTransactionSize, 0.001)
	assert.Zero(t, patterns.RoundAmountRatio)
}

func TestAnalyzePatterns_HighRiskExposure(t *testing.T) {
	countries := []models.HighRiskCountry{
		{CountryCode: "IR", CountryName: "Iran", RiskLevel: "Blacklist"},
		{CountryCode: " tr ", CountryName: "Turkey", RiskLevel: "Greylist"},
	}
	txns := []models.Transaction{
		{Amount: 100, IBAN: "IR060550000000123456789"},
		{Amount: 200, BIC: "AKBNTR33"},
		{Amount: 300, IBAN: "NL91ABNA0417164300"},
		{Amount: 400},
	}

	patterns := AnalyzePatterns(txns, countries)

	assert.InDelta(t, 0.5, patterns.HighRiskCountryExposure, 0.0001)
}
