package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliance/aml-engine/internal/models"
)

func TestStructuring_FlagsSubThresholdCluster(t *testing.T) {
	rule := NewStructuring(DefaultConfig())
	txns := []models.Transaction{
		{Date: day("2024-01-05"), Amount: 9500},
		{Date: day("2024-01-06"), Amount: 9200},
		{Date: day("2024-01-07"), Amount: 9800},
		{Date: day("2024-01-09"), Amount: 8500},
	}

	alerts := rule.Evaluate(txns, Context{})

	require.Len(t, alerts, 1)
	alert := alerts[0]
	assert.Equal(t, "Structuring Detection", alert.RuleName)
	assert.Equal(t, models.SeverityHigh, alert.Severity)
	assert.Equal(t, models.AlertTypeStructuring, alert.AlertType)
	assert.Equal(t, []int{0, 1, 2, 3}, alert.AffectedTransactionIndices)
	assert.Equal(t,
		"Potential structuring detected: 4 transactions between 2024-01-05 and 2024-01-09 totalling 37,000.00 EUR. Individual amounts: 9,500.00, 9,200.00, 9,800.00, 8,500.00",
		alert.Description)
}

func TestStructuring_WindowSeparatesClusters(t *testing.T) {
	rule := NewStructuring(DefaultConfig())
	txns := []models.Transaction{
		{Date: day("2024-01-01"), Amount: 9000},
		{Date: day("2024-01-02"), Amount: 9100},
		{Date: day("2024-01-10"), Amount: 9200},
		{Date: day("2024-01-11"), Amount: 9300},
	}

	alerts := rule.Evaluate(txns, Context{})

	assert.Empty(t, alerts)
}

func TestStructuring_BandBoundaries(t *testing.T) {
	rule := NewStructuring(DefaultConfig())
	txns := []models.Transaction{
		{Date: day("2024-01-01"), Amount: 10000},
		{Date: day("2024-01-02"), Amount: 7999.99},
		{Date: day("2024-01-03"), Amount: 8000},
		{Date: day("2024-01-04"), Amount: 9999.99},
		{Date: day("2024-01-05"), Amount: 8500},
	}

	alerts := rule.Evaluate(txns, Context{})

	require.Len(t, alerts, 1)
	assert.Equal(t, []int{2, 3, 4}, alerts[0].AffectedTransactionIndices)
}

func TestStructuring_OverlappingClustersBothReported(t *testing.T) {
	rule := NewStructuring(DefaultConfig())
	txns := []models.Transaction{
		{Date: day("2024-01-01"), Amount: 8100},
		{Date: day("2024-01-05"), Amount: 8200},
		{Date: day("2024-01-08"), Amount: 8300},
		{Date: day("2024-01-12"), Amount: 8400},
	}

	alerts := rule.Evaluate(txns, Context{})

	require.Len(t, alerts, 2)
	assert.Equal(t, []int{0, 1, 2}, alerts[0].AffectedTransactionIndices)
	assert.Equal(t, []int{1, 2, 3}, alerts[1].AffectedTransactionIndices)
}

func TestStructuring_IgnoresUndatedRows(t *testing.T) {
	rule := NewStructuring(DefaultConfig())
	txns := []models.Transaction{
		{Amount: 9500},
		{Amount: 9200},
		{Amount: 9800},
	}

	alerts := rule.Evaluate(txns, Context{})

	assert.Empty(t, alerts)
}
