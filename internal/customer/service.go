// Package customer assembles the analysis surface for a single
// customer: search, the full overview, and the alert and risk views.
package customer

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/compliance/aml-engine/internal/analytics"
	"github.com/compliance/aml-engine/internal/engine"
	"github.com/compliance/aml-engine/internal/models"
	"github.com/compliance/aml-engine/internal/rules"
	"github.com/compliance/aml-engine/internal/scoring"
	"github.com/compliance/aml-engine/internal/store"
	"github.com/compliance/aml-engine/internal/watchlist"
)

// ErrNoTransactions is returned when a BCN has no transactions on file.
var ErrNoTransactions = errors.New("no transactions found")

// Service runs the analysis pipeline over the shared reference tables.
type Service struct {
	store   *store.Store
	engine  *engine.Engine
	scorer  *scoring.Scorer
	matcher *watchlist.Matcher
}

// NewService creates a new customer analysis service.
func NewService(store *store.Store, engine *engine.Engine, scorer *scoring.Scorer, matcher *watchlist.Matcher) *Service {
	return &Service{
		store:   store,
		engine:  engine,
		scorer:  scorer,
		matcher: matcher,
	}
}

// Search finds customers by BCN or sender name.
func (s *Service) Search(query string) []models.SearchResult {
	return s.store.SearchBCN(query)
}

// Overview runs the full pipeline for one customer: rule evaluation,
// risk scoring, pattern analysis, watchlist screening and work
// instruction lookup.
func (s *Service) Overview(bcn string) (*models.CustomerOverview, error) {
	txns := s.store.CustomerTransactions(bcn)
	if len(txns) == 0 {
		return nil, ErrNoTransactions
	}

	start := time.Now()
	ruleCtx := rules.Context{
		Watchlist:         s.store.Watchlist(),
		HighRiskCountries: s.store.HighRiskCountries(),
	}

	alerts := s.engine.Analyze(txns, ruleCtx)
	assessment := s.scorer.Score(alerts)
	patterns := analytics.AnalyzePatterns(txns, ruleCtx.HighRiskCountries)
	matches := s.watchlistMatches(txns, ruleCtx.Watchlist)
	instructions := s.workInstructions(bcn)

	log.Info().
		Str("bcn", bcn).
		Int("transactions", len(txns)).
		Int("alerts", len(alerts)).
		Float64("risk_score", assessment.OverallScore).
		Dur("processing_time", time.Since(start)).
		Msg("Customer overview built")

	return &models.CustomerOverview{
		BusinessContactNumber: bcn,
		CustomerName:          txns[0].Sender,
		RiskAssessment:        assessment,
		Transactions:          flagTransactions(txns, alerts),
		Alerts:                alerts,
		Patterns:              patterns,
		WatchlistMatches:      matches,
		WorkInstructions:      instructions,
	}, nil
}

// Alerts evaluates the rule set for one customer.
func (s *Service) Alerts(bcn string) ([]models.Alert, error) {
	txns := s.store.CustomerTransactions(bcn)
	if len(txns) == 0 {
		return nil, ErrNoTransactions
	}
	ruleCtx := rules.Context{
		Watchlist:         s.store.Watchlist(),
		HighRiskCountries: s.store.HighRiskCountries(),
	}
	return s.engine.Analyze(txns, ruleCtx), nil
}

// RiskBreakdown evaluates the rule set and scores the result.
func (s *Service) RiskBreakdown(bcn string) (*models.RiskAssessment, error) {
	alerts, err := s.Alerts(bcn)
	if err != nil {
		return nil, err
	}
	assessment := s.scorer.Score(alerts)
	return &assessment, nil
}

// watchlistMatches screens sender and receiver names field by field.
func (s *Service) watchlistMatches(txns []models.Transaction, entries []models.WatchlistEntry) []models.WatchlistMatch {
	matches := []models.WatchlistMatch{}
	if len(entries) == 0 {
		return matches
	}

	fields := []struct {
		name  string
		value func(*models.Transaction) string
	}{
		{"sender", func(tx *models.Transaction) string { return tx.Sender }},
		{"receiver", func(tx *models.Transaction) string { return tx.Receiver }},
	}

	for _, field := range fields {
		var names []string
		seen := make(map[string]bool)
		indices := make(map[string][]int)
		for i := range txns {
			name := strings.TrimSpace(field.value(&txns[i]))
			if name == "" {
				continue
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			key := strings.ToLower(name)
			indices[key] = append(indices[key], i)
		}
		matches = append(matches, s.matcher.Match(names, entries, field.name, indices)...)
	}
	return matches
}

// workInstructions returns the instructions tagged for the BCN. When no
// row is tagged for it, every instruction is returned so generic
// process steps still reach the analyst.
func (s *Service) workInstructions(bcn string) []string {
	all := s.store.WorkInstructions()
	if len(all) == 0 {
		return []string{}
	}

	var tagged int
	matched := []string{}
	for i := range all {
		if all[i].BusinessContactNumber != bcn {
			continue
		}
		tagged++
		if text := strings.TrimSpace(all[i].Instruction); text != "" {
			matched = append(matched, text)
		}
	}
	if tagged > 0 {
		return matched
	}

	instructions := []string{}
	for i := range all {
		if text := strings.TrimSpace(all[i].Instruction); text != "" {
			instructions = append(instructions, text)
		}
	}
	return instructions
}

// flagTransactions projects transactions into API rows annotated with
// the names of the rules that flagged them.
func flagTransactions(txns []models.Transaction, alerts []models.Alert) []models.FlaggedTransaction {
	flagsByIndex := make(map[int][]string)
	for _, alert := range alerts {
		for _, idx := range alert.AffectedTransactionIndices {
			flagsByIndex[idx] = append(flagsByIndex[idx], alert.RuleName)
		}
	}

	flagged := make([]models.FlaggedTransaction, len(txns))
	for i := range txns {
		tx := &txns[i]
		date := ""
		if tx.Date != nil {
			date = tx.Date.Format("2006-01-02")
		}
		flags := flagsByIndex[i]
		if flags == nil {
			flags = []string{}
		}
		flagged[i] = models.FlaggedTransaction{
			Index:           i,
			Date:            date,
			Amount:          tx.Amount,
			Sender:          tx.Sender,
			Receiver:        tx.Receiver,
			IBAN:            tx.IBAN,
			BIC:             tx.BIC,
			Currency:        tx.Currency,
			Description:     tx.Description,
			TransactionType: tx.TransactionType,
			Flags:           flags,
		}
	}
	return flagged
}
