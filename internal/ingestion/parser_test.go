package ingestion

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/compliance/aml-engine/internal/store"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellRef, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func TestParseTransactions_NormalizesAndCoerces(t *testing.T) {
	wb := workbook(t, [][]interface{}{
		{"Date", " Amount ", "Sender", "Receiver", "IBAN", "BIC", "Currency", "Description", "Transaction Type", "Business Contact Number"},
		{"2024-01-05 00:00:00", 9500, "Jan de Vries", "Alpha Trading", "NL91ABNA0417164300", "ABNANL2A", "EUR", "invoice", "Credit", "BCN-001"},
		{"not-a-date", "abc", " Maria Petrova ", "Beta BV", "", "", "", "", "", " BCN-002 "},
	})

	txns, warnings, err := ParseTransactions(wb)

	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, []string{"1 rows have unparseable dates"}, warnings)

	require.NotNil(t, txns[0].Date)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), *txns[0].Date)
	assert.Equal(t, 9500.0, txns[0].Amount)
	assert.Equal(t, "Jan de Vries", txns[0].Sender)
	assert.Equal(t, "BCN-001", txns[0].BusinessContactNumber)

	assert.Nil(t, txns[1].Date)
	assert.Equal(t, 0.0, txns[1].Amount)
	assert.Equal(t, "Maria Petrova", txns[1].Sender)
	assert.Equal(t, "EUR", txns[1].Currency)
	assert.Equal(t, "BCN-002", txns[1].BusinessContactNumber)
}

func TestParseTransactions_MissingColumns(t *testing.T) {
	wb := workbook(t, [][]interface{}{
		{"Date", "Amount"},
		{"2024-01-05", 100},
	})

	txns, warnings, err := ParseTransactions(wb)

	require.NoError(t, err)
	require.Len(t, txns, 1)
	require.Len(t, warnings, 1)
	assert.Equal(t,
		"Missing expected columns: sender, receiver, iban, bic, currency, description, transaction_type, business_contact_number",
		warnings[0])
}

func TestParseTransactions_ExcelSerialDates(t *testing.T) {
	wb := workbook(t, [][]interface{}{
		{"Date", "Amount", "Business Contact Number"},
		{"45292", 100, "BCN-001"},
	})

	txns, _, err := ParseTransactions(wb)

	require.NoError(t, err)
	require.Len(t, txns, 1)
	require.NotNil(t, txns[0].Date)
	assert.Equal(t, 2024, txns[0].Date.Year())
	assert.Equal(t, time.January, txns[0].Date.Month())
	assert.Equal(t, 1, txns[0].Date.Day())
}

func TestParseWatchlist(t *testing.T) {
	wb := workbook(t, [][]interface{}{
		{"Name", "Type", "Notes"},
		{"  Volkov Enterprises  ", "Organization", "Shell company network"},
	})

	entries, warnings, err := ParseWatchlist(wb)

	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, entries, 1)
	assert.Equal(t, "Volkov Enterprises", entries[0].Name)
	assert.Equal(t, "Organization", entries[0].EntryType)
	assert.Equal(t, "Shell company network", entries[0].Notes)
}

func TestParseHighRiskCountries_UppercasesCodes(t *testing.T) {
	wb := workbook(t, [][]interface{}{
		{"Country Name", "Country Code", "Risk Level"},
		{"Iran", "ir", "Blacklist"},
	})

	countries, warnings, err := ParseHighRiskCountries(wb)

	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, countries, 1)
	assert.Equal(t, "IR", countries[0].CountryCode)
	assert.Equal(t, "Iran", countries[0].CountryName)
	assert.Equal(t, "Blacklist", countries[0].RiskLevel)
}

func TestParseWorkInstructions_WithoutBCNColumn(t *testing.T) {
	wb := workbook(t, [][]interface{}{
		{"Step", "Category", "Instruction"},
		{"1", "Review", "Verify the customer profile against KYC records."},
	})

	instructions, warnings, err := ParseWorkInstructions(wb)

	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "business_contact_number")
	require.Len(t, instructions, 1)
	assert.Equal(t, "", instructions[0].BusinessContactNumber)
	assert.Equal(t, "Verify the customer profile against KYC records.", instructions[0].Instruction)
}

func TestUpload_FilenameValidation(t *testing.T) {
	svc := NewService(store.New())

	_, err := svc.UploadTransactions("", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoFilename)

	_, err = svc.UploadTransactions("data.txt", strings.NewReader(""))
	require.Error(t, err)
	assert.Equal(t, "Invalid file type '.txt'. Only .xlsx and .xls are accepted.", err.Error())

	_, err = svc.UploadTransactions("data", strings.NewReader(""))
	require.Error(t, err)
	assert.Equal(t, "Invalid file type ''. Only .xlsx and .xls are accepted.", err.Error())
}

func TestUpload_RoundTrip(t *testing.T) {
	svc := NewService(store.New())
	wb := workbook(t, [][]interface{}{
		{"Date", "Amount", "Sender", "Receiver", "IBAN", "BIC", "Currency", "Description", "Transaction Type", "Business Contact Number"},
		{"2024-01-05 00:00:00", 9500, "Jan de Vries", "Alpha Trading", "", "", "EUR", "", "Credit", "BCN-001"},
	})

	resp, err := svc.UploadTransactions("transactions.XLSX", wb)

	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 1, resp.RecordCount)
	require.NotNil(t, resp.Warnings)
	assert.Empty(t, resp.Warnings)

	status := svc.Status()
	assert.True(t, status.Transactions)
	assert.False(t, status.Watchlist)

	svc.Clear()
	assert.False(t, svc.Status().Transactions)
}

func TestUpload_UnreadableWorkbook(t *testing.T) {
	svc := NewService(store.New())

	_, err := svc.UploadWatchlist("watchlist.xlsx", strings.NewReader("definitely not a zip archive"))
	assert.ErrorIs(t, err, ErrUnreadableWorkbook)
}
