// Package engine orchestrates the AML rule set over one customer's
// transactions.
package engine

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/compliance/aml-engine/internal/models"
	"github.com/compliance/aml-engine/internal/rules"
)

// severityRank orders alerts highest severity first; unknown severities
// sort last.
var severityRank = map[string]int{
	models.SeverityHigh:   0,
	models.SeverityMedium: 1,
	models.SeverityLow:    2,
}

// Engine runs every registered rule against one customer's transactions
// and returns the combined alerts sorted by severity. The engine holds
// no per-request state and is safe for concurrent use.
type Engine struct {
	rules []rules.Rule
}

// New builds an engine with the full rule set in evaluation order.
func New(cfg rules.Config) *Engine {
	e := &Engine{
		rules: []rules.Rule{
			rules.NewStructuring(cfg),
			rules.NewThreshold(cfg),
			rules.NewHighRiskCountryRule(),
			rules.NewWatchlistRule(cfg),
			rules.NewRapidMovement(cfg),
			rules.NewRoundAmount(cfg),
			rules.NewDormantAccount(cfg),
			rules.NewCounterpartyConcentration(cfg),
			rules.NewProfileDeviation(cfg),
			rules.NewFlowThrough(cfg),
		},
	}
	log.Info().Int("rules", len(e.rules)).Msg("AML engine initialized")
	return e
}

// Analyze evaluates all rules in registration order. A failing rule is
// logged and skipped; it never blocks the remaining rules.
func (e *Engine) Analyze(txns []models.Transaction, ctx rules.Context) []models.Alert {
	all := []models.Alert{}

	for _, rule := range e.rules {
		all = append(all, e.evaluate(rule, txns, ctx)...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return rankOf(all[i].Severity) < rankOf(all[j].Severity)
	})
	return all
}

func (e *Engine) evaluate(rule rules.Rule, txns []models.Transaction, ctx rules.Context) (alerts []models.Alert) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Str("rule", rule.Name()).
				Interface("panic", rec).
				Msg("Rule evaluation failed")
			alerts = nil
		}
	}()
	return rule.Evaluate(txns, ctx)
}

func rankOf(severity string) int {
	if rank, ok := severityRank[severity]; ok {
		return rank
	}
	return 99
}
