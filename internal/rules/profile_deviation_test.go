package rules

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliance/aml-engine/internal/models"
)

func TestProfileDeviation_AmountOutlier(t *testing.T) {
	rule := NewProfileDeviation(DefaultConfig())
	txns := []models.Transaction{
		{Date: day("2024-01-01"), Amount: 1000},
		{Date: day("2024-01-02"), Amount: 1000},
		{Date: day("2024-01-03"), Amount: 1000},
		{Date: day("2024-01-04"), Amount: 10000},
	}

	alerts := rule.Evaluate(txns, Context{})

	require.Len(t, alerts, 1)
	alert := alerts[0]
	assert.Equal(t, "Profile Deviation", alert.RuleName)
	assert.Equal(t, models.SeverityMedium, alert.Severity)
	assert.Equal(t, models.AlertTypeProfileDeviation, alert.AlertType)
	assert.Equal(t, []int{3}, alert.AffectedTransactionIndices)
	assert.Equal(t,
		"Amount deviation: transaction of 10,000.00 EUR on 2024-01-04 is 3.1x the historical average of 3,250.00 EUR (threshold: 3.0x).",
		alert.Description)
}

func TestProfileDeviation_AverageIncludesOutlier(t *testing.T) {
	rule := NewProfileDeviation(DefaultConfig())
	txns := []models.Transaction{
		{Date: day("2024-01-01"), Amount: 1000},
		{Date: day("2024-01-02"), Amount: 1000},
		{Date: day("2024-01-03"), Amount: 1000},
		{Date: day("2024-01-04"), Amount: 5000},
	}

	// 5000 is 2.5x the self-inclusive average of 2000 and stays under
	// the 3x bar.
	assert.Empty(t, rule.Evaluate(txns, Context{}))
}

func TestProfileDeviation_NonPositiveAverage(t *testing.T) {
	rule := NewProfileDeviation(DefaultConfig())
	txns := []models.Transaction{
		{Date: day("2024-01-01"), Amount: -5000},
		{Date: day("2024-01-02"), Amount: 100},
		{Date: day("2024-01-03"), Amount: -200},
	}

	assert.Empty(t, rule.Evaluate(txns, Context{}))
}

func TestProfileDeviation_FrequencySpike(t *testing.T) {
	rule := NewProfileDeviation(DefaultConfig())
	txns := []models.Transaction{
		{Date: day("2024-01-15"), Amount: 100},
		{Date: day("2024-02-15"), Amount: 100},
		{Date: day("2024-03-15"), Amount: 100},
	}
	for i := 1; i <= 13; i++ {
		txns = append(txns, models.Transaction{
			Date:   day(fmt.Sprintf("2024-04-%02d", i)),
			Amount: 100,
		})
	}

	alerts := rule.Evaluate(txns, Context{})

	require.Len(t, alerts, 1)
	alert := alerts[0]
	assert.Equal(t, []int{3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, alert.AffectedTransactionIndices)
	assert.Equal(t,
		"Frequency deviation: 13 transactions in 2024-04 is 3.2x the average monthly frequency of 4.0 (threshold: 3.0x).",
		alert.Description)
}

func TestProfileDeviation_SingleMonthSkipsFrequency(t *testing.T) {
	rule := NewProfileDeviation(DefaultConfig())
	var txns []models.Transaction
	for i := 1; i <= 20; i++ {
		txns = append(txns, models.Transaction{
			Date:   day(fmt.Sprintf("2024-01-%02d", i)),
			Amount: 100,
		})
	}

	assert.Empty(t, rule.Evaluate(txns, Context{}))
}
