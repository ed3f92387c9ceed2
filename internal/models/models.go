package models

import (
	"strings"
	"time"
)

// Transaction represents a single parsed transaction row.
// Date is nil when the source cell could not be parsed; such rows are
// excluded from temporal analyses but still count everywhere else.
type Transaction struct {
	Date                  *time.Time `json:"date"`
	Amount                float64    `json:"amount"`
	Sender                string     `json:"sender"`
	Receiver              string     `json:"receiver"`
	IBAN                  string     `json:"iban,omitempty"`
	BIC                   string     `json:"bic,omitempty"`
	Currency              string     `json:"currency"`
	Description           string     `json:"description,omitempty"`
	TransactionType       string     `json:"transaction_type,omitempty"`
	BusinessContactNumber string     `json:"business_contact_number"`
}

// IBANCountry returns the two-letter country prefix of the IBAN,
// or "" when the field is empty or does not start with two letters.
func (t *Transaction) IBANCountry() string {
	iban := strings.ToUpper(strings.TrimSpace(t.IBAN))
	if len(iban) < 2 || !isAlpha(iban[:2]) {
		return ""
	}
	return iban[:2]
}

// BICCountry returns the country code at positions 5-6 of the BIC,
// or "" when the field is too short or those positions are not letters.
func (t *Transaction) BICCountry() string {
	bic := strings.ToUpper(strings.TrimSpace(t.BIC))
	if len(bic) < 6 || !isAlpha(bic[4:6]) {
		return ""
	}
	return bic[4:6]
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// WatchlistEntry represents one screened entity
type WatchlistEntry struct {
	Name      string `json:"name"`
	EntryType string `json:"entry_type,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// HighRiskCountry represents one row of the country risk registry
type HighRiskCountry struct {
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
	RiskLevel   string `json:"risk_level"`
}

// IsBlacklisted reports whether the registry row marks a blacklisted
// jurisdiction. Any risk level containing "blacklist" qualifies.
func (c *HighRiskCountry) IsBlacklisted() bool {
	return strings.Contains(strings.ToLower(c.RiskLevel), "blacklist")
}

// WorkInstruction represents one analyst handling instruction
type WorkInstruction struct {
	BusinessContactNumber string `json:"business_contact_number"`
	Instruction           string `json:"instruction"`
	Step                  string `json:"step,omitempty"`
	Category              string `json:"category,omitempty"`
}

// Alert represents a single rule finding for one customer's transactions
type Alert struct {
	ID                         string `json:"id"`
	RuleName                   string `json:"rule_name"`
	Severity                   string `json:"severity"`
	Description                string `json:"description"`
	AffectedTransactionIndices []int  `json:"affected_transaction_indices"`
	AlertType                  string `json:"alert_type"`
}

// AlertSeverity enum values
const (
	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
	SeverityLow    = "LOW"
)

// AlertType enum values
const (
	AlertTypeStructuring      = "STRUCTURING"
	AlertTypeThreshold        = "THRESHOLD"
	AlertTypeHighRiskCountry  = "HIGH_RISK_COUNTRY"
	AlertTypeWatchlistMatch   = "WATCHLIST_MATCH"
	AlertTypeRapidMovement    = "RAPID_MOVEMENT"
	AlertTypeRoundAmount      = "ROUND_AMOUNT"
	AlertTypeDormantAccount   = "DORMANT_ACCOUNT"
	AlertTypeCounterparty     = "COUNTERPARTY_CONCENTRATION"
	AlertTypeProfileDeviation = "PROFILE_DEVIATION"
	AlertTypeFlowThrough      = "FLOW_THROUGH"
)

// RiskAssessment represents the aggregated customer risk score
type RiskAssessment struct {
	OverallScore        float64  `json:"overall_score"` // 0-100
	RiskLevel           string   `json:"risk_level"`
	ContributingFactors []string `json:"contributing_factors"`
}

// RiskLevel enum values
const (
	RiskLevelLow      = "LOW"
	RiskLevelMedium   = "MEDIUM"
	RiskLevelHigh     = "HIGH"
	RiskLevelCritical = "CRITICAL"
)

// PatternData represents aggregate transaction statistics for one customer
type PatternData struct {
	ByMonth                 map[string]float64 `json:"by_month"`
	ByType                  map[string]float64 `json:"by_type"`
	ByCurrency              map[string]float64 `json:"by_currency"`
	RoundAmountRatio        float64            `json:"round_amount_ratio"`
	AvgTransactionSize      float64            `json:"avg_transaction_size"`
	HighRiskCountryExposure float64            `json:"high_risk_country_exposure"`
}

// WatchlistMatch represents a fuzzy match between a transaction party
// and a watchlist entry
type WatchlistMatch struct {
	MatchedEntity      string  `json:"matched_entity"`
	WatchlistEntry     string  `json:"watchlist_entry"`
	MatchScore         float64 `json:"match_score"`
	MatchField         string  `json:"match_field"` // sender, receiver
	TransactionIndices []int   `json:"transaction_indices"`
}

// FlaggedTransaction is a transaction row enriched with the names of the
// rules whose alerts cover it
type FlaggedTransaction struct {
	Index           int      `json:"index"`
	Date            string   `json:"date"` // YYYY-MM-DD, "" when unknown
	Amount          float64  `json:"amount"`
	Sender          string   `json:"sender"`
	Receiver        string   `json:"receiver"`
	IBAN            string   `json:"iban,omitempty"`
	BIC             string   `json:"bic,omitempty"`
	Currency        string   `json:"currency"`
	Description     string   `json:"description,omitempty"`
	TransactionType string   `json:"transaction_type,omitempty"`
	Flags           []string `json:"flags"`
}

// CustomerOverview is the full analysis result for one BCN
type CustomerOverview struct {
	BusinessContactNumber string               `json:"business_contact_number"`
	CustomerName          string               `json:"customer_name,omitempty"`
	RiskAssessment        RiskAssessment       `json:"risk_assessment"`
	Transactions          []FlaggedTransaction `json:"transactions"`
	Alerts                []Alert              `json:"alerts"`
	Patterns              PatternData          `json:"patterns"`
	WatchlistMatches      []WatchlistMatch     `json:"watchlist_matches"`
	WorkInstructions      []string             `json:"work_instructions"`
}

// SearchResult represents one customer in BCN search output
type SearchResult struct {
	BCN              string `json:"bcn"`
	Name             string `json:"name"`
	TransactionCount int    `json:"transaction_count"`
}

// UploadStatus reports which reference tables are currently loaded
type UploadStatus struct {
	Transactions      bool `json:"transactions"`
	Watchlist         bool `json:"watchlist"`
	HighRiskCountries bool `json:"high_risk_countries"`
	WorkInstructions  bool `json:"work_instructions"`
}

// UploadResponse summarizes an accepted file upload
type UploadResponse struct {
	Status      string   `json:"status"`
	RecordCount int      `json:"record_count"`
	Warnings    []string `json:"warnings"`
}
