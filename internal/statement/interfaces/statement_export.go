package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math/big"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	statement "ledger-cloud/internal/statement/domain"
)

const (
	transactionsSheet = "transactions"
	monthlySheet      = "monthly"
)

var transactionHeader = []string{"Date", "Type", "Reference", "Description", "Debit", "Credit", "Balance", "Status", "Payment Method"}

// BuildStatementXLSX renders a statement workbook with summary, transactions and monthly sheets.
func BuildStatementXLSX(stmt *statement.Statement, sheetName string) ([]byte, error) {
	if stmt == nil {
		return nil, fmt.Errorf("export xlsx: nil statement")
	}
	if sheetName == "" || sheetName == transactionsSheet || sheetName == monthlySheet {
		sheetName = "statement"
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(transactionsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(monthlySheet); err != nil {
		return nil, err
	}

	summary := stmt.Summary
	rows := [][2]any{
		{"Customer Statement", nil},
		{nil, nil},
		{"Customer", stmt.Customer.Name},
		{"Customer ID", stmt.Customer.ID},
		{"Tax ID", stmt.Customer.TaxID},
		{"From", statement.FormatDate(stmt.FromDate)},
		{"To", statement.FormatDate(stmt.ToDate)},
		{"Opening Balance", amountValue(stmt.OpeningBalance)},
		{"Total Debits", amountValue(summary.TotalDebits)},
		{"Total Credits", amountValue(summary.TotalCredits)},
		{"Net Change", amountValue(summary.NetChange)},
		{"Closing Balance", amountValue(stmt.ClosingBalance)},
		{"Transactions", summary.TotalTransactions},
		{"Average Transaction", summary.AverageTransaction.InexactFloat64()},
	}
	for i, row := range rows {
		r := i + 1
		if row[0] != nil {
			_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", r), row[0])
		}
		if row[1] != nil {
			_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", r), row[1])
		}
	}

	for i, title := range transactionHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(transactionsSheet, cell, title)
	}
	for i, tx := range stmt.Transactions {
		row := i + 2
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("A%d", row), statement.FormatDate(tx.Date))
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("B%d", row), tx.Kind.String())
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("C%d", row), tx.Reference)
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("D%d", row), tx.Description)
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("E%d", row), amountValue(tx.Debit))
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("F%d", row), amountValue(tx.Credit))
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("G%d", row), amountValue(tx.Balance))
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("H%d", row), tx.Status)
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("I%d", row), tx.PaymentMethod)
	}

	_ = f.SetCellValue(monthlySheet, "A1", "Year")
	_ = f.SetCellValue(monthlySheet, "B1", "Month")
	_ = f.SetCellValue(monthlySheet, "C1", "Debits")
	_ = f.SetCellValue(monthlySheet, "D1", "Credits")
	_ = f.SetCellValue(monthlySheet, "E1", "Net")
	_ = f.SetCellValue(monthlySheet, "F1", "Transactions")
	for i, month := range summary.MonthlyActivity {
		row := i + 2
		_ = f.SetCellValue(monthlySheet, fmt.Sprintf("A%d", row), month.Year)
		_ = f.SetCellValue(monthlySheet, fmt.Sprintf("B%d", row), month.Month)
		_ = f.SetCellValue(monthlySheet, fmt.Sprintf("C%d", row), amountValue(month.Debits))
		_ = f.SetCellValue(monthlySheet, fmt.Sprintf("D%d", row), amountValue(month.Credits))
		_ = f.SetCellValue(monthlySheet, fmt.Sprintf("E%d", row), amountValue(month.Net))
		_ = f.SetCellValue(monthlySheet, fmt.Sprintf("F%d", row), month.TransactionCount)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// float64 round-trips up to 15 significant digits.
const maxFloatDigits = 15

// amountValue keeps amounts numeric when a float64 cell holds them exactly and
// falls back to the exact decimal text otherwise.
func amountValue(d decimal.Decimal) any {
	if len(new(big.Int).Abs(d.Coefficient()).String()) <= maxFloatDigits {
		return d.InexactFloat64()
	}
	return d.String()
}

// WriteStatementCSV writes the opening row, one row per transaction and the closing row.
// Amounts keep their exact decimal representation.
func WriteStatementCSV(w io.Writer, stmt *statement.Statement) error {
	if stmt == nil {
		return fmt.Errorf("export csv: nil statement")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(transactionHeader); err != nil {
		return err
	}
	opening := []string{statement.FormatDate(stmt.FromDate), "", "", "Opening balance", "", "", stmt.OpeningBalance.String(), "", ""}
	if err := cw.Write(opening); err != nil {
		return err
	}
	for _, tx := range stmt.Transactions {
		record := []string{
			statement.FormatDate(tx.Date),
			tx.Kind.String(),
			tx.Reference,
			tx.Description,
			tx.Debit.String(),
			tx.Credit.String(),
			tx.Balance.String(),
			tx.Status,
			tx.PaymentMethod,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	closing := []string{statement.FormatDate(stmt.ToDate), "", "", "Closing balance", "", "", stmt.ClosingBalance.String(), "", ""}
	if err := cw.Write(closing); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
