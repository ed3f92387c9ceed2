package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliance/aml-engine/internal/models"
)

func seedSearchStore() *Store {
	s := New()
	s.SetTransactions([]models.Transaction{
		{BusinessContactNumber: "X001", Sender: "Beta Trading", Amount: 10},
		{BusinessContactNumber: "001-A", Sender: "Alpha BV", Amount: 20},
		{BusinessContactNumber: "001-A", Sender: "Alpha BV", Amount: 30},
		{BusinessContactNumber: "ZZZ", Sender: "Shop 0019", Amount: 40},
		{BusinessContactNumber: "ZZZ", Sender: "Unrelated", Amount: 50},
		{BusinessContactNumber: "ZZZ", Sender: "Shop 0017", Amount: 60},
		{BusinessContactNumber: "AAA", Sender: "Nobody", Amount: 70},
	})
	return s
}

func TestSearchBCN_TierOrdering(t *testing.T) {
	s := seedSearchStore()

	results := s.SearchBCN("001")

	require.Len(t, results, 3)
	assert.Equal(t, "001-A", results[0].BCN)
	assert.Equal(t, "Alpha BV", results[0].Name)
	assert.Equal(t, 2, results[0].TransactionCount)
	assert.Equal(t, "X001", results[1].BCN)
	assert.Equal(t, "Beta Trading", results[1].Name)
	assert.Equal(t, 1, results[1].TransactionCount)
	assert.Equal(t, "ZZZ", results[2].BCN)
	assert.Equal(t, "Shop 0019", results[2].Name)
	assert.Equal(t, 2, results[2].TransactionCount)
}

func TestSearchBCN_SortsWithinTierByBCN(t *testing.T) {
	s := New()
	s.SetTransactions([]models.Transaction{
		{BusinessContactNumber: "BCN-002", Sender: "Maria Petrova"},
		{BusinessContactNumber: "BCN-001", Sender: "Jan de Vries"},
	})

	results := s.SearchBCN("bcn")

	require.Len(t, results, 2)
	assert.Equal(t, "BCN-001", results[0].BCN)
	assert.Equal(t, "BCN-002", results[1].BCN)
}

func TestSearchBCN_CaseInsensitiveAndTrimmed(t *testing.T) {
	s := New()
	s.SetTransactions([]models.Transaction{
		{BusinessContactNumber: "BCN-001", Sender: "Jan de Vries"},
	})

	results := s.SearchBCN("  bcn-0 ")

	require.Len(t, results, 1)
	assert.Equal(t, "BCN-001", results[0].BCN)
}

func TestSearchBCN_EmptyQuery(t *testing.T) {
	s := seedSearchStore()

	assert.Empty(t, s.SearchBCN(""))
	assert.Empty(t, s.SearchBCN("   "))
}

func TestCustomerTransactions_ExactMatch(t *testing.T) {
	s := New()
	s.SetTransactions([]models.Transaction{
		{BusinessContactNumber: "BCN-001", Amount: 1},
		{BusinessContactNumber: "BCN-0011", Amount: 2},
		{BusinessContactNumber: "BCN-001", Amount: 3},
	})

	txns := s.CustomerTransactions("BCN-001")

	require.Len(t, txns, 2)
	assert.Equal(t, 1.0, txns[0].Amount)
	assert.Equal(t, 3.0, txns[1].Amount)
	assert.Empty(t, s.CustomerTransactions("BCN-999"))
}

func TestStatusAndClear(t *testing.T) {
	s := New()

	status := s.Status()
	assert.False(t, status.Transactions)
	assert.False(t, status.Watchlist)

	s.SetTransactions([]models.Transaction{{BusinessContactNumber: "BCN-001"}})
	s.SetWatchlist([]models.WatchlistEntry{})

	status = s.Status()
	assert.True(t, status.Transactions)
	assert.True(t, status.Watchlist)
	assert.False(t, status.HighRiskCountries)
	assert.False(t, status.WorkInstructions)

	s.Clear()

	status = s.Status()
	assert.False(t, status.Transactions)
	assert.False(t, status.Watchlist)
	assert.Empty(t, s.CustomerTransactions("BCN-001"))
}
