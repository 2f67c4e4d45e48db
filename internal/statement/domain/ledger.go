package statement

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// BuildStatement merges the window's invoices and receipts, annotates running
// balances from opening and folds the result into a summary.
func BuildStatement(customer Customer, window Window, opening decimal.Decimal, invoices []Invoice, receipts []Receipt, includeZero bool) *Statement {
	txs := MergeTransactions(window, invoices, receipts, includeZero)
	closing := ApplyRunningBalance(opening, txs)
	return &Statement{
		Customer:                       customer,
		FromDate:                       window.From,
		ToDate:                         window.To,
		IncludeZeroBalanceTransactions: includeZero,
		OpeningBalance:                 opening,
		ClosingBalance:                 closing,
		Transactions:                   txs,
		Summary:                        Summarize(txs),
	}
}

// MergeTransactions maps both streams to statement lines, drops rows outside
// the window (and exact-zero amounts unless includeZero) and sorts the result.
func MergeTransactions(window Window, invoices []Invoice, receipts []Receipt, includeZero bool) []StatementTransaction {
	txs := make([]StatementTransaction, 0, len(invoices)+len(receipts))
	for _, inv := range invoices {
		if !window.Contains(inv.IssueDate) {
			continue
		}
		if !includeZero && inv.Total.IsZero() {
			continue
		}
		txs = append(txs, InvoiceTransaction(inv))
	}
	for _, rcp := range receipts {
		if !window.Contains(rcp.PaymentDate) {
			continue
		}
		if !includeZero && rcp.Amount.IsZero() {
			continue
		}
		txs = append(txs, ReceiptTransaction(rcp))
	}
	SortTransactions(txs)
	return txs
}

// SortTransactions orders by date, then kind label, then source id.
func SortTransactions(txs []StatementTransaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return transactionLess(txs[i], txs[j])
	})
}

func transactionLess(a, b StatementTransaction) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if a.Kind != b.Kind {
		return a.Kind.String() < b.Kind.String()
	}
	return a.SourceID < b.SourceID
}

// ApplyRunningBalance sets each transaction's post-transaction balance and
// returns the closing balance.
func ApplyRunningBalance(opening decimal.Decimal, txs []StatementTransaction) decimal.Decimal {
	balance := opening
	for i := range txs {
		balance = balance.Add(txs[i].Debit).Sub(txs[i].Credit)
		txs[i].Balance = balance
	}
	return balance
}

type monthKey struct {
	year  int
	month int
}

// Summarize folds transactions into totals and monthly buckets in one pass.
func Summarize(txs []StatementTransaction) StatementSummary {
	summary := StatementSummary{
		TotalDebits:        decimal.Zero,
		TotalCredits:       decimal.Zero,
		NetChange:          decimal.Zero,
		AverageTransaction: decimal.Zero,
		TotalTransactions:  len(txs),
	}
	magnitude := decimal.Zero
	buckets := make(map[monthKey]*MonthlyActivity)
	for _, tx := range txs {
		summary.TotalDebits = summary.TotalDebits.Add(tx.Debit)
		summary.TotalCredits = summary.TotalCredits.Add(tx.Credit)
		magnitude = magnitude.Add(tx.Net().Abs())

		key := monthKey{year: tx.Date.Year(), month: int(tx.Date.Month())}
		bucket, ok := buckets[key]
		if !ok {
			bucket = &MonthlyActivity{
				Year:    key.year,
				Month:   key.month,
				Debits:  decimal.Zero,
				Credits: decimal.Zero,
				Net:     decimal.Zero,
			}
			buckets[key] = bucket
		}
		bucket.Debits = bucket.Debits.Add(tx.Debit)
		bucket.Credits = bucket.Credits.Add(tx.Credit)
		bucket.Net = bucket.Debits.Sub(bucket.Credits)
		bucket.TransactionCount++
	}
	summary.NetChange = summary.TotalDebits.Sub(summary.TotalCredits)
	if len(txs) > 0 {
		summary.AverageTransaction = magnitude.Div(decimal.NewFromInt(int64(len(txs))))
	}

	summary.MonthlyActivity = make([]MonthlyActivity, 0, len(buckets))
	for _, bucket := range buckets {
		summary.MonthlyActivity = append(summary.MonthlyActivity, *bucket)
	}
	sort.Slice(summary.MonthlyActivity, func(i, j int) bool {
		a, b := summary.MonthlyActivity[i], summary.MonthlyActivity[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})
	return summary
}

// Verify recomputes the ledger invariants of a statement.
func (s *Statement) Verify() error {
	if s == nil {
		return fmt.Errorf("%w: nil statement", ErrUnbalanced)
	}
	window := s.Window()
	balance := s.OpeningBalance
	debits := decimal.Zero
	credits := decimal.Zero
	for i, tx := range s.Transactions {
		if !window.Contains(tx.Date) {
			return fmt.Errorf("%w: transaction %d dated %s outside %s..%s", ErrUnbalanced, i, FormatDate(tx.Date), FormatDate(window.From), FormatDate(window.To))
		}
		if i > 0 && transactionLess(tx, s.Transactions[i-1]) {
			return fmt.Errorf("%w: transaction %d out of order", ErrUnbalanced, i)
		}
		balance = balance.Add(tx.Debit).Sub(tx.Credit)
		if !balance.Equal(tx.Balance) {
			return fmt.Errorf("%w: transaction %d balance %s, expected %s", ErrUnbalanced, i, tx.Balance, balance)
		}
		debits = debits.Add(tx.Debit)
		credits = credits.Add(tx.Credit)
	}
	if !balance.Equal(s.ClosingBalance) {
		return fmt.Errorf("%w: closing balance %s, expected %s", ErrUnbalanced, s.ClosingBalance, balance)
	}
	if !s.OpeningBalance.Add(debits).Sub(credits).Equal(s.ClosingBalance) {
		return fmt.Errorf("%w: opening + debits - credits != closing", ErrUnbalanced)
	}
	if !s.Summary.TotalDebits.Equal(debits) || !s.Summary.TotalCredits.Equal(credits) {
		return fmt.Errorf("%w: summary totals differ from transactions", ErrUnbalanced)
	}
	if s.Summary.TotalTransactions != len(s.Transactions) {
		return fmt.Errorf("%w: summary counts %d transactions, statement has %d", ErrUnbalanced, s.Summary.TotalTransactions, len(s.Transactions))
	}
	if !s.Summary.NetChange.Equal(debits.Sub(credits)) {
		return fmt.Errorf("%w: net change %s, expected %s", ErrUnbalanced, s.Summary.NetChange, debits.Sub(credits))
	}
	expected := Summarize(s.Transactions)
	if !s.Summary.AverageTransaction.Equal(expected.AverageTransaction) {
		return fmt.Errorf("%w: average transaction %s, expected %s", ErrUnbalanced, s.Summary.AverageTransaction, expected.AverageTransaction)
	}
	return verifyMonthly(s.Summary.MonthlyActivity, expected.MonthlyActivity)
}

// verifyMonthly compares buckets field by field; both slices are in (year, month) order.
func verifyMonthly(got, want []MonthlyActivity) error {
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if cur.Year < prev.Year || (cur.Year == prev.Year && cur.Month <= prev.Month) {
			return fmt.Errorf("%w: monthly bucket %d-%02d out of order", ErrUnbalanced, cur.Year, cur.Month)
		}
	}
	if len(got) != len(want) {
		return fmt.Errorf("%w: %d monthly buckets, expected %d", ErrUnbalanced, len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Year != w.Year || g.Month != w.Month {
			return fmt.Errorf("%w: monthly bucket %d-%02d, expected %d-%02d", ErrUnbalanced, g.Year, g.Month, w.Year, w.Month)
		}
		if g.TransactionCount != w.TransactionCount {
			return fmt.Errorf("%w: monthly bucket %d-%02d counts %d transactions, expected %d", ErrUnbalanced, g.Year, g.Month, g.TransactionCount, w.TransactionCount)
		}
		if !g.Debits.Equal(w.Debits) || !g.Credits.Equal(w.Credits) || !g.Net.Equal(w.Net) {
			return fmt.Errorf("%w: monthly bucket %d-%02d totals differ from transactions", ErrUnbalanced, g.Year, g.Month)
		}
	}
	return nil
}
