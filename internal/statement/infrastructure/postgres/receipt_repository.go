package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	statement "ledger-cloud/internal/statement/domain"
)

// ReceiptRepository reads invoice-linked receipts for statements.
type ReceiptRepository struct {
	db     DBTX
	tables tables
}

// NewReceiptRepository constructs a repository.
func NewReceiptRepository(db DBTX, opts ...Option) *ReceiptRepository {
	return &ReceiptRepository{db: db, tables: buildTables(opts)}
}

// SumReceiptsBefore sums receipts paid before the given day against the customer's invoices.
func (r *ReceiptRepository) SumReceiptsBefore(ctx context.Context, tenantID, customerID int64, before time.Time) (decimal.Decimal, error) {
	if r == nil || r.db == nil {
		return decimal.Zero, errors.New("receipt repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT COALESCE(SUM(r.amount), 0)
FROM %s r
JOIN %s i ON i.id = r.invoice_id
WHERE i.tenant_id = $1 AND i.customer_id = $2 AND r.payment_date < $3`, r.tables.receipts, r.tables.invoices)

	var sum decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, tenantID, customerID, statement.DateOnly(before)).Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// ListReceiptsBetween lists receipts paid within [from, to], ordered by date then id.
func (r *ReceiptRepository) ListReceiptsBetween(ctx context.Context, tenantID, customerID int64, from, to time.Time) ([]statement.Receipt, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("receipt repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT r.id, i.tenant_id, r.invoice_id, i.number, r.number, r.payment_date, r.amount, r.payment_method
FROM %s r
JOIN %s i ON i.id = r.invoice_id
WHERE i.tenant_id = $1 AND i.customer_id = $2 AND r.payment_date >= $3 AND r.payment_date <= $4
ORDER BY r.payment_date ASC, r.id ASC`, r.tables.receipts, r.tables.invoices)

	rows, err := r.db.QueryContext(ctx, query, tenantID, customerID, statement.DateOnly(from), statement.DateOnly(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []statement.Receipt
	for rows.Next() {
		var rcp statement.Receipt
		var method sql.NullString
		if err := rows.Scan(&rcp.ID, &rcp.TenantID, &rcp.InvoiceID, &rcp.InvoiceNumber, &rcp.Number, &rcp.PaymentDate, &rcp.Amount, &method); err != nil {
			return nil, err
		}
		rcp.PaymentDate = statement.DateOnly(rcp.PaymentDate)
		rcp.PaymentMethod = method.String
		result = append(result, rcp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
