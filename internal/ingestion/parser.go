package ingestion

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/compliance/aml-engine/internal/models"
)

// Required columns per workbook type. Missing columns only produce
// warnings; the upload still succeeds with whatever data is present.
var (
	requiredTransactionColumns = []string{
		"date", "amount", "sender", "receiver", "iban", "bic",
		"currency", "description", "transaction_type", "business_contact_number",
	}
	requiredWatchlistColumns   = []string{"name"}
	requiredCountryColumns     = []string{"country_code", "country_name", "risk_level"}
	requiredInstructionColumns = []string{"business_contact_number", "instruction"}
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// dateLayouts are tried in order before falling back to Excel serial
// numbers. Ambiguous numeric layouts are interpreted month-first.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/06 15:04",
	"01-02-06 15:04",
}

// ParseTransactions reads the first sheet of an Excel workbook into
// transactions. Unparseable dates become nil and unparseable amounts
// become 0; both are reported through warnings rather than errors.
func ParseTransactions(r io.Reader) ([]models.Transaction, []string, error) {
	rows, err := readSheet(r)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return []models.Transaction{}, nil, nil
	}

	cols := columnIndex(rows[0])
	warnings := missingColumnsWarning(cols, requiredTransactionColumns)
	_, hasDate := cols["date"]

	txns := make([]models.Transaction, 0, len(rows)-1)
	var badDates int
	for _, row := range rows[1:] {
		date := parseDate(cell(row, cols, "date"))
		if hasDate && date == nil {
			badDates++
		}

		currency := strings.TrimSpace(cell(row, cols, "currency"))
		if currency == "" {
			currency = "EUR"
		}

		txns = append(txns, models.Transaction{
			Date:                  date,
			Amount:                parseAmount(cell(row, cols, "amount")),
			Sender:                strings.TrimSpace(cell(row, cols, "sender")),
			Receiver:              strings.TrimSpace(cell(row, cols, "receiver")),
			IBAN:                  strings.TrimSpace(cell(row, cols, "iban")),
			BIC:                   strings.TrimSpace(cell(row, cols, "bic")),
			Currency:              currency,
			Description:           strings.TrimSpace(cell(row, cols, "description")),
			TransactionType:       strings.TrimSpace(cell(row, cols, "transaction_type")),
			BusinessContactNumber: strings.TrimSpace(cell(row, cols, "business_contact_number")),
		})
	}
	if hasDate && badDates > 0 {
		warnings = append(warnings, fmt.Sprintf("%d rows have unparseable dates", badDates))
	}
	return txns, warnings, nil
}

// ParseWatchlist reads watchlist entries from an Excel workbook.
func ParseWatchlist(r io.Reader) ([]models.WatchlistEntry, []string, error) {
	rows, err := readSheet(r)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return []models.WatchlistEntry{}, nil, nil
	}

	cols := columnIndex(rows[0])
	warnings := missingColumnsWarning(cols, requiredWatchlistColumns)

	entries := make([]models.WatchlistEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		entries = append(entries, models.WatchlistEntry{
			Name:      strings.TrimSpace(cell(row, cols, "name")),
			EntryType: strings.TrimSpace(cell(row, cols, "type")),
			Notes:     strings.TrimSpace(cell(row, cols, "notes")),
		})
	}
	return entries, warnings, nil
}

// ParseHighRiskCountries reads the country risk registry from an Excel
// workbook. Country codes are upper-cased.
func ParseHighRiskCountries(r io.Reader) ([]models.HighRiskCountry, []string, error) {
	rows, err := readSheet(r)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return []models.HighRiskCountry{}, nil, nil
	}

	cols := columnIndex(rows[0])
	warnings := missingColumnsWarning(cols, requiredCountryColumns)

	countries := make([]models.HighRiskCountry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		countries = append(countries, models.HighRiskCountry{
			CountryCode: strings.ToUpper(strings.TrimSpace(cell(row, cols, "country_code"))),
			CountryName: strings.TrimSpace(cell(row, cols, "country_name")),
			RiskLevel:   strings.TrimSpace(cell(row, cols, "risk_level")),
		})
	}
	return countries, warnings, nil
}

// ParseWorkInstructions reads work instructions from an Excel workbook.
func ParseWorkInstructions(r io.Reader) ([]models.WorkInstruction, []string, error) {
	rows, err := readSheet(r)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return []models.WorkInstruction{}, nil, nil
	}

	cols := columnIndex(rows[0])
	warnings := missingColumnsWarning(cols, requiredInstructionColumns)

	instructions := make([]models.WorkInstruction, 0, len(rows)-1)
	for _, row := range rows[1:] {
		instructions = append(instructions, models.WorkInstruction{
			BusinessContactNumber: strings.TrimSpace(cell(row, cols, "business_contact_number")),
			Instruction:           strings.TrimSpace(cell(row, cols, "instruction")),
			Step:                  strings.TrimSpace(cell(row, cols, "step")),
			Category:              strings.TrimSpace(cell(row, cols, "category")),
		})
	}
	return instructions, warnings, nil
}

func readSheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// columnIndex maps normalized header names to their column positions.
// Duplicate headers keep the first occurrence.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := normalizeHeader(name)
		if key == "" {
			continue
		}
		if _, ok := cols[key]; !ok {
			cols[key] = i
		}
	}
	return cols
}

// normalizeHeader trims, lower-cases and snake_cases a column name.
func normalizeHeader(name string) string {
	return whitespaceRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
}

func missingColumnsWarning(cols map[string]int, required []string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := cols[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return []string{"Missing expected columns: " + strings.Join(missing, ", ")}
}

// cell returns the raw value at the named column, or "" when the column
// is absent or the row is shorter than the header.
func cell(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parseDate tries the known layouts, then interprets the value as an
// Excel serial number. Returns nil when nothing fits.
func parseDate(value string) *time.Time {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return &t
		}
	}
	return nil
}

// parseAmount coerces a cell to a number, tolerating thousands
// separators. Unparseable values become 0.
func parseAmount(value string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if s == "" {
		return 0
	}
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return amount
}
