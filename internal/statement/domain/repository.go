package statement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CustomerSource resolves customers within a tenant. A missing customer is (nil, nil).
type CustomerSource interface {
	FindCustomer(ctx context.Context, tenantID, customerID int64) (*Customer, error)
}

// InvoiceSource reads a customer's invoices.
type InvoiceSource interface {
	SumInvoicesBefore(ctx context.Context, tenantID, customerID int64, before time.Time) (decimal.Decimal, error)
	ListInvoicesBetween(ctx context.Context, tenantID, customerID int64, from, to time.Time) ([]Invoice, error)
}

// ReceiptSource reads receipts linked to a customer's invoices.
type ReceiptSource interface {
	SumReceiptsBefore(ctx context.Context, tenantID, customerID int64, before time.Time) (decimal.Decimal, error)
	ListReceiptsBetween(ctx context.Context, tenantID, customerID int64, from, to time.Time) ([]Receipt, error)
}

// Sources bundles the three ledger collaborators.
type Sources struct {
	Customers CustomerSource
	Invoices  InvoiceSource
	Receipts  ReceiptSource
}

// SnapshotReader runs fn against sources that observe one consistent snapshot.
type SnapshotReader interface {
	ReadSnapshot(ctx context.Context, fn func(ctx context.Context, sources Sources) error) error
}
