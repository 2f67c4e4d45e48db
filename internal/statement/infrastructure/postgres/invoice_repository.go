package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	statement "ledger-cloud/internal/statement/domain"
)

// InvoiceRepository reads invoices for statements.
type InvoiceRepository struct {
	db     DBTX
	tables tables
}

// NewInvoiceRepository constructs a repository.
func NewInvoiceRepository(db DBTX, opts ...Option) *InvoiceRepository {
	return &InvoiceRepository{db: db, tables: buildTables(opts)}
}

// SumInvoicesBefore sums invoice totals issued before the given day.
func (r *InvoiceRepository) SumInvoicesBefore(ctx context.Context, tenantID, customerID int64, before time.Time) (decimal.Decimal, error) {
	if r == nil || r.db == nil {
		return decimal.Zero, errors.New("invoice repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT COALESCE(SUM(total), 0)
FROM %s
WHERE tenant_id = $1 AND customer_id = $2 AND issue_date < $3`, r.tables.invoices)

	var sum decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, tenantID, customerID, statement.DateOnly(before)).Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// ListInvoicesBetween lists invoices issued within [from, to], ordered by date then id.
func (r *InvoiceRepository) ListInvoicesBetween(ctx context.Context, tenantID, customerID int64, from, to time.Time) ([]statement.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, tenant_id, customer_id, number, issue_date, total, status
FROM %s
WHERE tenant_id = $1 AND customer_id = $2 AND issue_date >= $3 AND issue_date <= $4
ORDER BY issue_date ASC, id ASC`, r.tables.invoices)

	rows, err := r.db.QueryContext(ctx, query, tenantID, customerID, statement.DateOnly(from), statement.DateOnly(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []statement.Invoice
	for rows.Next() {
		var inv statement.Invoice
		var status string
		if err := rows.Scan(&inv.ID, &inv.TenantID, &inv.CustomerID, &inv.Number, &inv.IssueDate, &inv.Total, &status); err != nil {
			return nil, err
		}
		inv.IssueDate = statement.DateOnly(inv.IssueDate)
		inv.Status = statement.InvoiceStatus(status)
		result = append(result, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
