package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliance/aml-engine/internal/models"
	"github.com/compliance/aml-engine/internal/rules"
)

type stubRule struct {
	name   string
	alerts []models.Alert
	panics bool
}

func (s *stubRule) Name() string        { return s.name }
func (s *stubRule) Description() string { return "stub" }

func (s *stubRule) Evaluate([]models.Transaction, rules.Context) []models.Alert {
	if s.panics {
		panic("boom")
	}
	return s.alerts
}

func alert(severity, description string) models.Alert {
	return models.Alert{Severity: severity, Description: description}
}

func TestAnalyze_PanicDoesNotBlockOtherRules(t *testing.T) {
	e := &Engine{rules: []rules.Rule{
		&stubRule{name: "low", alerts: []models.Alert{alert(models.SeverityLow, "low finding")}},
		&stubRule{name: "broken", panics: true},
		&stubRule{name: "high", alerts: []models.Alert{alert(models.SeverityHigh, "high finding")}},
	}}

	alerts := e.Analyze(nil, rules.Context{})

	require.Len(t, alerts, 2)
	assert.Equal(t, "high finding", alerts[0].Description)
	assert.Equal(t, "low finding", alerts[1].Description)
}

func TestAnalyze_SortsBySeverityKeepingRuleOrder(t *testing.T) {
	e := &Engine{rules: []rules.Rule{
		&stubRule{name: "first", alerts: []models.Alert{
			alert(models.SeverityMedium, "a1"),
			alert(models.SeverityLow, "a2"),
		}},
		&stubRule{name: "second", alerts: []models.Alert{
			alert(models.SeverityHigh, "b1"),
			alert(models.SeverityMedium, "b2"),
			alert("WEIRD", "b3"),
		}},
	}}

	alerts := e.Analyze(nil, rules.Context{})

	require.Len(t, alerts, 5)
	got := make([]string, len(alerts))
	for i, a := range alerts {
		got[i] = a.Description
	}
	assert.Equal(t, []string{"b1", "a1", "b2", "a2", "b3"}, got)
}

func TestNew_RegistersRulesInOrder(t *testing.T) {
	e := New(rules.DefaultConfig())

	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name()
	}
	assert.Equal(t, []string{
		"Structuring Detection",
		"Large Transaction Threshold",
		"High Risk Country",
		"Watchlist Match",
		"Rapid Fund Movement",
		"Round Amount Pattern",
		"Dormant Account Activity",
		"Counterparty Concentration",
		"Profile Deviation",
		"Flow-Through Detection",
	}, names)
}

func TestAnalyze_EmptyInputReturnsEmptySlice(t *testing.T) {
	e := New(rules.DefaultConfig())

	alerts := e.Analyze(nil, rules.Context{})

	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}
