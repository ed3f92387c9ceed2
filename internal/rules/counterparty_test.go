package rules

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliance/aml-engine/internal/models"
)

func TestCounterparty_FanIn(t *testing.T) {
	rule := NewCounterpartyConcentration(DefaultConfig())
	var txns []models.Transaction
	for i := 0; i < 8; i++ {
		txns = append(txns, models.Transaction{
			Date:     day(fmt.Sprintf("2024-04-%02d", 10+i)),
			Amount:   3000 + float64(i)*500,
			Sender:   fmt.Sprintf("Sender_%c Corp", 'A'+i),
			Receiver: "Ahmed Al-Rashid",
		})
	}

	alerts := rule.Evaluate(txns, Context{})

	require.Len(t, alerts, 1)
	alert := alerts[0]
	assert.Equal(t, "Counterparty Concentration", alert.RuleName)
	assert.Equal(t, models.SeverityHigh, alert.Severity)
	assert.Equal(t, models.AlertTypeCounterparty, alert.AlertType)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, alert.AffectedTransactionIndices)
	assert.Equal(t,
		"Fan-in concentration: 8 unique counterparties within 14 days (2024-04-10 to 2024-04-24), aggregate 38,000.00 EUR. Counterparties: sender_a corp, sender_b corp, sender_c corp, sender_d corp, sender_e corp, sender_f corp, sender_g corp, sender_h corp.",
		alert.Description)
}

func TestCounterparty_FanOut(t *testing.T) {
	rule := NewCounterpartyConcentration(DefaultConfig())
	var txns []models.Transaction
	for i := 0; i < 5; i++ {
		txns = append(txns, models.Transaction{
			Date:     day(fmt.Sprintf("2024-04-%02d", 10+i)),
			Amount:   3200,
			Sender:   "Jan de Vries",
			Receiver: fmt.Sprintf("Payee %d", i),
		})
	}

	alerts := rule.Evaluate(txns, Context{})

	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Description, "Fan-out concentration: 5 unique counterparties")
	assert.Equal(t, []int{0, 1, 2, 3, 4}, alerts[0].AffectedTransactionIndices)
}

func TestCounterparty_OneWindowPerDirection(t *testing.T) {
	rule := NewCounterpartyConcentration(DefaultConfig())
	var txns []models.Transaction
	for i := 0; i < 5; i++ {
		txns = append(txns, models.Transaction{
			Date:   day(fmt.Sprintf("2024-04-%02d", 1+i)),
			Amount: 4000,
			Sender: fmt.Sprintf("April Sender %d", i),
		})
	}
	for i := 0; i < 5; i++ {
		txns = append(txns, models.Transaction{
			Date:   day(fmt.Sprintf("2024-05-%02d", 1+i)),
			Amount: 4000,
			Sender: fmt.Sprintf("May Sender %d", i),
		})
	}

	alerts := rule.Evaluate(txns, Context{})

	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Description, "(2024-04-01 to 2024-04-15)")
}

func TestCounterparty_AggregateBoundaryIsExclusive(t *testing.T) {
	rule := NewCounterpartyConcentration(DefaultConfig())
	var txns []models.Transaction
	for i := 0; i < 5; i++ {
		txns = append(txns, models.Transaction{
			Date:   day(fmt.Sprintf("2024-04-%02d", 1+i)),
			Amount: 3000,
			Sender: fmt.Sprintf("Sender %d", i),
		})
	}

	// Aggregate of exactly 15,000 does not clear the bar.
	assert.Empty(t, rule.Evaluate(txns, Context{}))
}

func TestCounterparty_NeedsFiveUniqueNames(t *testing.T) {
	rule := NewCounterpartyConcentration(DefaultConfig())
	var txns []models.Transaction
	for i := 0; i < 8; i++ {
		txns = append(txns, models.Transaction{
			Date:   day(fmt.Sprintf("2024-04-%02d", 1+i)),
			Amount: 5000,
			Sender: fmt.Sprintf("Sender %d", i%4),
		})
	}

	assert.Empty(t, rule.Evaluate(txns, Context{}))
}

func TestCounterparty_ListTruncatedToTen(t *testing.T) {
	rule := NewCounterpartyConcentration(DefaultConfig())
	var txns []models.Transaction
	for i := 0; i < 12; i++ {
		txns = append(txns, models.Transaction{
			Date:   day(fmt.Sprintf("2024-04-%02d", 1+i)),
			Amount: 2000,
			Sender: fmt.Sprintf("Vendor %02d", i+1),
		})
	}

	alerts := rule.Evaluate(txns, Context{})

	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Description, "12 unique counterparties")
	assert.Contains(t, alerts[0].Description,
		"Counterparties: vendor 01, vendor 02, vendor 03, vendor 04, vendor 05, vendor 06, vendor 07, vendor 08, vendor 09, vendor 10.")
}
