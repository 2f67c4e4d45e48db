package statement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Statement is a balance-annotated customer ledger for a date window.
type Statement struct {
	Customer                       Customer               `json:"customer"`
	FromDate                       time.Time              `json:"from_date"`
	ToDate                         time.Time              `json:"to_date"`
	IncludeZeroBalanceTransactions bool                   `json:"include_zero_balance_transactions"`
	OpeningBalance                 decimal.Decimal        `json:"opening_balance"`
	ClosingBalance                 decimal.Decimal        `json:"closing_balance"`
	Transactions                   []StatementTransaction `json:"transactions"`
	Summary                        StatementSummary       `json:"summary"`
}

// Window returns the statement date range.
func (s *Statement) Window() Window {
	return Window{From: s.FromDate, To: s.ToDate}
}

// StatementSummary aggregates the transactions of a statement.
type StatementSummary struct {
	TotalDebits        decimal.Decimal   `json:"total_debits"`
	TotalCredits       decimal.Decimal   `json:"total_credits"`
	NetChange          decimal.Decimal   `json:"net_change"`
	TotalTransactions  int               `json:"total_transactions"`
	AverageTransaction decimal.Decimal   `json:"average_transaction"`
	MonthlyActivity    []MonthlyActivity `json:"monthly_activity"`
}

// MonthlyActivity holds the totals of one calendar month.
type MonthlyActivity struct {
	Year             int             `json:"year"`
	Month            int             `json:"month"`
	Debits           decimal.Decimal `json:"debits"`
	Credits          decimal.Decimal `json:"credits"`
	Net              decimal.Decimal `json:"net"`
	TransactionCount int             `json:"transaction_count"`
}
