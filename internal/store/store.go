// Package store holds the uploaded reference tables in memory. Tables
// are replaced wholesale on upload and never mutated in place, so
// readers always observe a complete snapshot, never a torn one.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/compliance/aml-engine/internal/models"
)

// Store is the shared in-memory table store. The loaded flags track
// table presence independently of emptiness: an uploaded empty sheet
// still counts as loaded.
type Store struct {
	mu sync.RWMutex

	transactions      []models.Transaction
	watchlist         []models.WatchlistEntry
	highRiskCountries []models.HighRiskCountry
	workInstructions  []models.WorkInstruction

	transactionsLoaded      bool
	watchlistLoaded         bool
	highRiskCountriesLoaded bool
	workInstructionsLoaded  bool
}

func New() *Store {
	return &Store{}
}

// SetTransactions replaces the transaction table.
func (s *Store) SetTransactions(txns []models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = txns
	s.transactionsLoaded = true
}

// SetWatchlist replaces the watchlist table.
func (s *Store) SetWatchlist(entries []models.WatchlistEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchlist = entries
	s.watchlistLoaded = true
}

// SetHighRiskCountries replaces the country risk registry.
func (s *Store) SetHighRiskCountries(countries []models.HighRiskCountry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highRiskCountries = countries
	s.highRiskCountriesLoaded = true
}

// SetWorkInstructions replaces the work instruction table.
func (s *Store) SetWorkInstructions(instructions []models.WorkInstruction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workInstructions = instructions
	s.workInstructionsLoaded = true
}

// Watchlist returns the current watchlist snapshot.
func (s *Store) Watchlist() []models.WatchlistEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watchlist
}

// HighRiskCountries returns the current country registry snapshot.
func (s *Store) HighRiskCountries() []models.HighRiskCountry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.highRiskCountries
}

// WorkInstructions returns the current work instruction snapshot.
func (s *Store) WorkInstructions() []models.WorkInstruction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workInstructions
}

// CustomerTransactions returns the rows whose business contact number
// equals bcn exactly, in upload order. Positions in the returned slice
// are the per-customer indices that alerts refer to.
func (s *Store) CustomerTransactions(bcn string) []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Transaction
	for _, tx := range s.transactions {
		if tx.BusinessContactNumber == bcn {
			out = append(out, tx)
		}
	}
	return out
}

// SearchBCN finds customers by BCN prefix, BCN substring, or sender
// substring, case-insensitively. A customer lands in the strongest tier
// any of its rows matches; tiers are returned in order, each sorted by
// BCN ascending. The transaction count covers the matched rows only.
func (s *Store) SearchBCN(query string) []models.SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []models.SearchResult{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type group struct {
		name  string
		count int
		tier  int
	}
	groups := make(map[string]*group)

	for i := range s.transactions {
		tx := &s.transactions[i]
		bcnLower := strings.ToLower(tx.BusinessContactNumber)

		var tier int
		switch {
		case strings.HasPrefix(bcnLower, q):
			tier = 1
		case strings.Contains(bcnLower, q):
			tier = 2
		case strings.Contains(strings.ToLower(tx.Sender), q):
			tier = 3
		default:
			continue
		}

		g, ok := groups[tx.BusinessContactNumber]
		if !ok {
			g = &group{name: tx.Sender, tier: tier}
			groups[tx.BusinessContactNumber] = g
		}
		g.count++
		if tier < g.tier {
			g.tier = tier
		}
	}

	results := make([]models.SearchResult, 0, len(groups))
	for bcn, g := range groups {
		results = append(results, models.SearchResult{
			BCN:              bcn,
			Name:             g.name,
			TransactionCount: g.count,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		ti := groups[results[i].BCN].tier
		tj := groups[results[j].BCN].tier
		if ti != tj {
			return ti < tj
		}
		return results[i].BCN < results[j].BCN
	})
	return results
}

// Status reports which tables are currently loaded.
func (s *Store) Status() models.UploadStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.UploadStatus{
		Transactions:      s.transactionsLoaded,
		Watchlist:         s.watchlistLoaded,
		HighRiskCountries: s.highRiskCountriesLoaded,
		WorkInstructions:  s.workInstructionsLoaded,
	}
}

// Clear drops every table.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = nil
	s.watchlist = nil
	s.highRiskCountries = nil
	s.workInstructions = nil
	s.transactionsLoaded = false
	s.watchlistLoaded = false
	s.highRiskCountriesLoaded = false
	s.workInstructionsLoaded = false
}
