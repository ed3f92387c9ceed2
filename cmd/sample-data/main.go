// Command sample-data writes the demo Excel workbooks used to exercise
// the AML analysis API: five customers covering every detection rule, a
// watchlist, a country risk registry, and analyst work instructions.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

func main() {
	out := flag.String("out", "sample_data", "output directory for the generated workbooks")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", *out).Msg("Failed to create output directory")
	}

	files := []struct {
		name    string
		headers []string
		rows    [][]interface{}
	}{
		{"transactions.xlsx", transactionHeaders, transactionRows()},
		{"watchlist.xlsx", watchlistHeaders, watchlistRows()},
		{"high_risk_countries.xlsx", countryHeaders, countryRows()},
		{"work_instructions.xlsx", instructionHeaders, instructionRows()},
	}
	for _, file := range files {
		path := filepath.Join(*out, file.name)
		if err := writeWorkbook(path, file.headers, file.rows); err != nil {
			log.Fatal().Err(err).Str("file", path).Msg("Failed to write workbook")
		}
		log.Info().Str("file", path).Int("rows", len(file.rows)).Msg("Workbook written")
	}
}

func writeWorkbook(path string, headers []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

var transactionHeaders = []string{
	"Date", "Amount", "Sender", "Receiver", "IBAN", "BIC",
	"Currency", "Description", "Transaction Type", "Business Contact Number",
}

type txRow struct {
	date     time.Time
	amount   float64
	sender   string
	receiver string
	iban     string
	bic      string
	desc     string
	txType   string
	bcn      string
}

func (r txRow) cells() []interface{} {
	return []interface{}{
		r.date.Format("2006-01-02 15:04:05"),
		r.amount,
		r.sender,
		r.receiver,
		r.iban,
		r.bic,
		"EUR",
		r.desc,
		r.txType,
		r.bcn,
	}
}

func transactionRows() [][]interface{} {
	var rows []txRow
	rows = append(rows, structuringCustomer()...)
	rows = append(rows, highRiskCustomer()...)
	rows = append(rows, watchlistCustomer()...)
	rows = append(rows, dormantCustomer()...)
	rows = append(rows, cleanCustomer()...)

	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		out[i] = r.cells()
	}
	return out
}

// BCN-001: deposits split just below the reporting threshold, one large
// transfer, and a long run of round amounts.
func structuringCustomer() []txRow {
	base := time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)
	day := func(days int) time.Time { return base.AddDate(0, 0, days) }

	rows := []txRow{
		{date: day(0), amount: 9500, receiver: "Alpha Trading", desc: "Invoice 2024-0113"},
		{date: day(1), amount: 9200, receiver: "Alpha Trading", desc: "Invoice 2024-0114"},
		{date: day(2), amount: 9800, receiver: "Beta Logistics", desc: "Invoice 2024-0115"},
		{date: day(4), amount: 8500, receiver: "Alpha Trading", desc: "Invoice 2024-0117"},
		{date: day(20), amount: 25000, receiver: "Gamma Holdings", desc: "Equipment purchase"},
	}
	for i := 0; i < 8; i++ {
		rows = append(rows, txRow{date: day(30 + 3*i), amount: 5000, receiver: "Delta Corp", desc: "Consulting retainer"})
	}
	for i := 0; i < 5; i++ {
		rows = append(rows, txRow{date: day(60 + 7*i), amount: 1234.56 + float64(i)*100, receiver: "Local Shop BV", desc: "Weekly supplies"})
	}
	for i := range rows {
		rows[i].sender = "Jan de Vries"
		rows[i].iban = "NL91ABNA0417164300"
		rows[i].bic = "ABNANL2A"
		rows[i].txType = "Credit"
		rows[i].bcn = "BCN-001"
	}
	return rows
}

// BCN-002: sanctioned jurisdictions, two rapid in-out pairs, and a
// month of mirrored pass-through volume.
func highRiskCustomer() []txRow {
	base := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	day := func(days int) time.Time { return base.AddDate(0, 0, days) }

	rows := []txRow{
		{date: day(0), amount: 15000, receiver: "Tehran Import Company", iban: "IR060550000000123456789", bic: "BMJIIRTH", desc: "Trade settlement", txType: "Credit"},
		{date: day(5), amount: 12000, receiver: "Damascus Textiles", iban: "SY0501200000000123456789", desc: "Import payment", txType: "Credit"},
		{date: day(10), amount: 8150, receiver: "Minsk Machinery", iban: "BY13NBRB3600900000002Z00AB00", desc: "Parts order", txType: "Credit"},
		{date: day(20), amount: 20000, receiver: "Volga Exports", desc: "Incoming wire", txType: "Credit"},
		{date: day(20).Add(18 * time.Hour), amount: 19400, receiver: "Cyprus Holdings", desc: "Outgoing wire", txType: "Debit"},
		{date: day(30), amount: 15000, receiver: "Volga Exports", desc: "Incoming wire", txType: "Credit"},
		{date: day(30).Add(6 * time.Hour), amount: 14200, receiver: "Cyprus Holdings", desc: "Outgoing wire", txType: "Debit"},
	}
	for i := 0; i < 6; i++ {
		rows = append(rows, txRow{date: day(40 + 4*i), amount: 5000 + float64(i)*200, receiver: "Volga Exports", desc: "Settlement in", txType: "Credit"})
	}
	for i := 0; i < 5; i++ {
		rows = append(rows, txRow{date: day(42 + 5*i), amount: 6000 + float64(i)*100, receiver: "Baltic Ventures", desc: "Settlement out", txType: "Debit"})
	}
	for i := range rows {
		rows[i].sender = "Maria Petrova"
		rows[i].bcn = "BCN-002"
	}
	return rows
}

// BCN-003: watchlist hits, a fan-in burst from eight counterparties,
// and purchases far above the historical profile.
func watchlistCustomer() []txRow {
	base := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
	day := func(days int) time.Time { return base.AddDate(0, 0, days) }

	var rows []txRow
	receivers := []string{"Corner Grocery", "Utility Co"}
	for i := 0; i < 12; i++ {
		rows = append(rows, txRow{
			date:     day(7 * i),
			amount:   250 + float64(i)*50,
			sender:   "Ahmed Al-Rashid",
			receiver: receivers[i%2],
			desc:     "Card payment",
			txType:   "Debit",
		})
	}
	rows = append(rows,
		txRow{date: day(90), amount: 7500, sender: "Ahmed Al-Rashid", receiver: "Volkov Enterprises LLC", desc: "Trade payment", txType: "Debit"},
		txRow{date: day(92), amount: 3000, sender: "Dimitri Volkov Trading", receiver: "Ahmed Al-Rashid", desc: "Refund", txType: "Credit"},
	)
	for i := 0; i < 8; i++ {
		rows = append(rows, txRow{
			date:     day(100 + i),
			amount:   3000 + float64(i)*500,
			sender:   string(rune('A'+i)) + " Group Holdings",
			receiver: "Ahmed Al-Rashid",
			desc:     "Collection",
			txType:   "Credit",
		})
	}
	rows = append(rows,
		txRow{date: day(110), amount: 30000, sender: "Ahmed Al-Rashid", receiver: "Emirates Trade FZE", iban: "AE070331234567890123456", desc: "Transfer abroad", txType: "Debit"},
		txRow{date: day(120), amount: 50000, sender: "Ahmed Al-Rashid", receiver: "Luxury Cars Import", desc: "Vehicle purchase", txType: "Debit"},
		txRow{date: day(122), amount: 35000, sender: "Gulf Ventures FZE", receiver: "Ahmed Al-Rashid", desc: "Incoming transfer", txType: "Credit"},
	)
	for i := range rows {
		rows[i].bcn = "BCN-003"
	}
	return rows
}

// BCN-004: five months of silence followed by a spending burst that
// touches a greylisted jurisdiction.
func dormantCustomer() []txRow {
	base := time.Date(2023, 6, 1, 8, 0, 0, 0, time.UTC)
	day := func(days int) time.Time { return base.AddDate(0, 0, days) }

	rows := []txRow{
		{date: day(0), amount: 1500, receiver: "Hausverwaltung GmbH", desc: "Rent", txType: "Debit"},
		{date: day(15), amount: 800, receiver: "Stadtwerke", desc: "Utilities", txType: "Debit"},
		{date: day(150), amount: 12000, receiver: "Sophie Mueller", desc: "Incoming transfer", txType: "Credit"},
		{date: day(151), amount: 8000, receiver: "Reisebuero Sonne", desc: "Travel booking", txType: "Debit"},
		{date: day(152), amount: 5000, receiver: "Sophie Mueller", desc: "Cash withdrawal", txType: "Withdrawal"},
		{date: day(153), amount: 9500, receiver: "Istanbul Estates", iban: "TR330006100519786457841326", bic: "AKBNTR33", desc: "Property deposit", txType: "Debit"},
		{date: day(155), amount: 7000, receiver: "Antique Dealer KG", desc: "Purchase", txType: "Debit"},
	}
	for i := range rows {
		rows[i].sender = "Sophie Mueller"
		rows[i].bcn = "BCN-004"
	}
	return rows
}

// BCN-005: an unremarkable business account that should stay at LOW.
func cleanCustomer() []txRow {
	base := time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)
	day := func(days int) time.Time { return base.AddDate(0, 0, days) }

	var rows []txRow
	receivers := []string{"Utility Co", "Office Rent", "Supplier XY", "Insurance AG", "Tax Office"}
	for i := 0; i < 20; i++ {
		rows = append(rows, txRow{
			date:     day(14 * i),
			amount:   1500 + float64(i%5)*300 + float64(i*17%100),
			receiver: receivers[i%5],
			desc:     "Recurring payment",
			txType:   "Debit",
		})
	}
	for i := 0; i < 10; i++ {
		rows = append(rows, txRow{
			date:     day(7 + 28*i),
			amount:   2200 + float64(i)*50,
			receiver: "Clean Customer BV",
			desc:     "Client invoice",
			txType:   "Credit",
		})
	}
	for i := range rows {
		rows[i].sender = "Clean Customer BV"
		rows[i].iban = "NL20INGB0001234567"
		rows[i].bic = "INGBNL2A"
		rows[i].bcn = "BCN-005"
	}
	return rows
}

var watchlistHeaders = []string{"Name", "Type", "Notes"}

func watchlistRows() [][]interface{} {
	return [][]interface{}{
		{"Volkov Enterprises", "Organization", "OFAC SDN listed entity"},
		{"Dimitri Volkov", "Individual", "Associated with Volkov Enterprises"},
		{"Tehran Import Company", "Organization", "Sanctioned trade company"},
		{"Al-Qaeda Finance Network", "Organization", "UN sanctions list"},
		{"Caribbean Holdings Ltd", "Organization", "Shell company"},
		{"Offshore Investments Ltd", "Organization", "Shell company"},
		{"Golden Dragon Trading", "Organization", "Trade-based laundering suspect"},
		{"Ivan Petrov", "Individual", "Politically exposed person"},
		{"Maria Sokolov", "Individual", "Fraud conviction 2019"},
		{"Hassan Ali Ibrahim", "Individual", "Interpol notice"},
	}
}

var countryHeaders = []string{"Country Name", "Country Code", "Risk Level"}

func countryRows() [][]interface{} {
	return [][]interface{}{
		{"Iran", "IR", "Blacklist"},
		{"North Korea", "KP", "Blacklist"},
		{"Syria", "SY", "Blacklist"},
		{"Myanmar", "MM", "Blacklist"},
		{"Afghanistan", "AF", "Blacklist"},
		{"Turkey", "TR", "Greylist"},
		{"South Africa", "ZA", "Greylist"},
		{"United Arab Emirates", "AE", "Greylist"},
		{"Nigeria", "NG", "Greylist"},
		{"Pakistan", "PK", "Greylist"},
		{"Belarus", "BY", "Greylist"},
		{"Panama", "PA", "Greylist"},
	}
}

var instructionHeaders = []string{"Step", "Category", "Instruction"}

func instructionRows() [][]interface{} {
	return [][]interface{}{
		{1, "Initial Review", "Open the customer overview and note the overall risk score before reviewing individual alerts."},
		{2, "Initial Review", "Check whether the customer has prior filings in the case management system."},
		{3, "Structuring", "For structuring alerts, review all transactions in the flagged window, including those below the band."},
		{4, "Structuring", "Confirm whether the aggregate over the window would have triggered a threshold report."},
		{5, "Watchlist", "Treat fuzzy watchlist matches above 85% as presumptive hits pending manual confirmation."},
		{6, "Watchlist", "Document false-positive watchlist matches with a short justification."},
		{7, "High Risk Country", "Verify IBAN and BIC country codes against the current registry revision."},
		{8, "Rapid Movement", "Request source-of-funds documentation when in-out pairs exceed EUR 10,000."},
		{9, "Flow-Through", "Map the full counterparty chain for flow-through windows before closing the alert."},
		{10, "Dormant", "Contact the relationship manager for reactivated dormant accounts."},
		{11, "Counterparty", "List all counterparties from concentration alerts in the case file."},
		{12, "Escalation", "Escalate CRITICAL risk customers to the senior analyst queue the same business day."},
		{13, "Escalation", "HIGH risk customers require a four-eyes review before closure."},
		{14, "Documentation", "Record the final disposition and retention date before archiving the case."},
	}
}
