package interfaces

import statement "ledger-cloud/internal/statement/domain"

type customerResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

type transactionResponse struct {
	Date          string `json:"date"`
	Type          string `json:"type"`
	SourceID      int64  `json:"source_id"`
	Reference     string `json:"reference"`
	Description   string `json:"description"`
	Debit         string `json:"debit"`
	Credit        string `json:"credit"`
	Balance       string `json:"balance"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

type monthlyResponse struct {
	Year             int    `json:"year"`
	Month            int    `json:"month"`
	Debits           string `json:"debits"`
	Credits          string `json:"credits"`
	Net              string `json:"net"`
	TransactionCount int    `json:"transaction_count"`
}

type summaryResponse struct {
	TotalDebits        string            `json:"total_debits"`
	TotalCredits       string            `json:"total_credits"`
	NetChange          string            `json:"net_change"`
	TotalTransactions  int               `json:"total_transactions"`
	AverageTransaction string            `json:"average_transaction"`
	MonthlyActivity    []monthlyResponse `json:"monthly_activity"`
}

type statementResponse struct {
	Customer                       customerResponse      `json:"customer"`
	FromDate                       string                `json:"from_date"`
	ToDate                         string                `json:"to_date"`
	IncludeZeroBalanceTransactions bool                  `json:"include_zero_balance_transactions"`
	OpeningBalance                 string                `json:"opening_balance"`
	ClosingBalance                 string                `json:"closing_balance"`
	Transactions                   []transactionResponse `json:"transactions"`
	Summary                        summaryResponse       `json:"summary"`
}

func newStatementResponse(stmt *statement.Statement) statementResponse {
	resp := statementResponse{
		Customer: customerResponse{
			ID:      stmt.Customer.ID,
			Name:    stmt.Customer.Name,
			Address: stmt.Customer.Address,
			Phone:   stmt.Customer.Phone,
			Email:   stmt.Customer.Email,
			TaxID:   stmt.Customer.TaxID,
		},
		FromDate:                       statement.FormatDate(stmt.FromDate),
		ToDate:                         statement.FormatDate(stmt.ToDate),
		IncludeZeroBalanceTransactions: stmt.IncludeZeroBalanceTransactions,
		OpeningBalance:                 stmt.OpeningBalance.String(),
		ClosingBalance:                 stmt.ClosingBalance.String(),
		Transactions:                   make([]transactionResponse, 0, len(stmt.Transactions)),
		Summary: summaryResponse{
			TotalDebits:        stmt.Summary.TotalDebits.String(),
			TotalCredits:       stmt.Summary.TotalCredits.String(),
			NetChange:          stmt.Summary.NetChange.String(),
			TotalTransactions:  stmt.Summary.TotalTransactions,
			AverageTransaction: stmt.Summary.AverageTransaction.String(),
			MonthlyActivity:    make([]monthlyResponse, 0, len(stmt.Summary.MonthlyActivity)),
		},
	}
	for _, tx := range stmt.Transactions {
		resp.Transactions = append(resp.Transactions, transactionResponse{
			Date:          statement.FormatDate(tx.Date),
			Type:          tx.Kind.String(),
			SourceID:      tx.SourceID,
			Reference:     tx.Reference,
			Description:   tx.Description,
			Debit:         tx.Debit.String(),
			Credit:        tx.Credit.String(),
			Balance:       tx.Balance.String(),
			Status:        tx.Status,
			PaymentMethod: tx.PaymentMethod,
		})
	}
	for _, m := range stmt.Summary.MonthlyActivity {
		resp.Summary.MonthlyActivity = append(resp.Summary.MonthlyActivity, monthlyResponse{
			Year:             m.Year,
			Month:            m.Month,
			Debits:           m.Debits.String(),
			Credits:          m.Credits.String(),
			Net:              m.Net.String(),
			TransactionCount: m.TransactionCount,
		})
	}
	return resp
}
