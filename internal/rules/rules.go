// Package rules contains the AML detection rules run by the analysis
// engine. Every rule inspects one customer's transactions plus the shared
// reference tables and emits alerts; rules hold no state between calls.
package rules

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/compliance/aml-engine/internal/models"
)

// Context carries the reference tables shared by all rules.
type Context struct {
	Watchlist         []models.WatchlistEntry
	HighRiskCountries []models.HighRiskCountry
}

// Rule is implemented by every detection rule. Evaluate must tolerate
// empty input, absent reference tables, and rows without dates.
type Rule interface {
	Name() string
	Description() string
	Evaluate(txns []models.Transaction, ctx Context) []models.Alert
}

// Config carries the tunable thresholds for every rule.
type Config struct {
	StructuringThreshold  float64
	StructuringLowerBound float64
	StructuringWindowDays int
	StructuringMinTxns    int

	LargeTxThreshold float64

	RapidMovementThreshold   float64
	RapidMovementWindowHours float64
	RapidMovementTolerance   float64

	RoundAmountDivisors       []float64
	RoundAmountRatio          float64
	RoundAmountConsecutiveMin int

	DormantInactivityDays  int
	DormantBurstCount      int
	DormantBurstWindowDays int

	CounterpartyUniqueMin  int
	CounterpartyWindowDays int
	CounterpartyAggregate  float64

	ProfileDeviationMultiplier float64

	FlowThroughVariance   float64
	FlowThroughWindowDays int
	FlowThroughMinAmount  float64

	FuzzyMatchHigh   float64
	FuzzyMatchMedium float64
}

// DefaultConfig returns the shipped rule thresholds.
func DefaultConfig() Config {
	return Config{
		StructuringThreshold:  10000,
		StructuringLowerBound: 8000,
		StructuringWindowDays: 7,
		StructuringMinTxns:    3,

		LargeTxThreshold: 10000,

		RapidMovementThreshold:   5000,
		RapidMovementWindowHours: 48,
		RapidMovementTolerance:   0.20,

		RoundAmountDivisors:       []float64{1000, 500},
		RoundAmountRatio:          0.60,
		RoundAmountConsecutiveMin: 3,

		DormantInactivityDays:  90,
		DormantBurstCount:      3,
		DormantBurstWindowDays: 7,

		CounterpartyUniqueMin:  5,
		CounterpartyWindowDays: 14,
		CounterpartyAggregate:  15000,

		ProfileDeviationMultiplier: 3.0,

		FlowThroughVariance:   0.10,
		FlowThroughWindowDays: 30,
		FlowThroughMinAmount:  10000,

		FuzzyMatchHigh:   85,
		FuzzyMatchMedium: 70,
	}
}

func newAlert(ruleName, alertType, severity, description string, indices []int) models.Alert {
	return models.Alert{
		ID:                         uuid.NewString(),
		RuleName:                   ruleName,
		Severity:                   severity,
		Description:                description,
		AffectedTransactionIndices: indices,
		AlertType:                  alertType,
	}
}

// dateSorted returns the transactions that carry a date, stably sorted
// ascending. Positions in the returned slice are the index space for
// alerts raised by time-based rules.
func dateSorted(txns []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(txns))
	for _, tx := range txns {
		if tx.Date != nil {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(*out[j].Date)
	})
	return out
}

// dateSortedKeepUndated sorts all transactions by date with undated rows
// last, preserving relative order on ties.
func dateSortedKeepUndated(txns []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(txns))
	copy(out, txns)
	sort.SliceStable(out, func(i, j int) bool {
		switch {
		case out[i].Date == nil:
			return false
		case out[j].Date == nil:
			return true
		default:
			return out[i].Date.Before(*out[j].Date)
		}
	})
	return out
}

// Direction labels for fund movement classification
const (
	directionIn  = "in"
	directionOut = "out"
)

var inboundTypes = map[string]bool{
	"credit":   true,
	"incoming": true,
	"deposit":  true,
	"receive":  true,
	"received": true,
}

var outboundTypes = map[string]bool{
	"debit":        true,
	"outgoing":     true,
	"withdrawal":   true,
	"send":         true,
	"sent":         true,
	"transfer_out": true,
}

// direction classifies a transaction by its type, falling back on the
// amount sign for unknown types.
func direction(tx *models.Transaction) string {
	tt := strings.ToLower(strings.TrimSpace(tx.TransactionType))
	if inboundTypes[tt] {
		return directionIn
	}
	if outboundTypes[tt] {
		return directionOut
	}
	if tx.Amount >= 0 {
		return directionIn
	}
	return directionOut
}

// Date layouts used in alert descriptions
const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// formatAmount renders an amount with comma-grouped thousands and two
// decimals: 9500 -> "9,500.00".
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	dot := strings.IndexByte(s, '.')
	return groupThousands(s[:dot]) + s[dot:]
}

// formatAmountList joins amounts with ", " for alert descriptions.
func formatAmountList(amounts []float64) string {
	parts := make([]string, len(amounts))
	for i, a := range amounts {
		parts[i] = formatAmount(a)
	}
	return strings.Join(parts, ", ")
}

// formatConfigAmount renders a configured threshold with grouping but
// without forcing decimals: 10000 -> "10,000".
func formatConfigAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		return groupThousands(s[:dot]) + s[dot:]
	}
	return groupThousands(s)
}

// formatConfigValue renders a configured threshold plainly: 10000 ->
// "10000", 0.5 -> "0.5".
func formatConfigValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}

// formatPercent renders a ratio as a percentage with the given number of
// decimals: 0.025 -> "2.5%" at one decimal.
func formatPercent(ratio float64, decimals int) string {
	return strconv.FormatFloat(ratio*100, 'f', decimals, 64) + "%"
}

// formatDate renders an alert date, "unknown date" when missing.
func formatDate(t *time.Time) string {
	if t == nil {
		return "unknown date"
	}
	return t.Format(dateLayout)
}

// partyName substitutes "N/A" for blank sender and receiver values.
func partyName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "N/A"
	}
	return name
}
