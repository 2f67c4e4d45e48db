package postgres

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	defaultCustomersTable = "customers"
	defaultInvoicesTable  = "invoices"
	defaultReceiptsTable  = "receipts"
)

type tables struct {
	customers string
	invoices  string
	receipts  string
}

func defaultTables() tables {
	return tables{
		customers: defaultCustomersTable,
		invoices:  defaultInvoicesTable,
		receipts:  defaultReceiptsTable,
	}
}

// Option overrides table names.
type Option func(*tables)

// WithCustomerTable overrides the customers table name.
func WithCustomerTable(table string) Option {
	return func(t *tables) {
		if table != "" {
			t.customers = table
		}
	}
}

// WithInvoiceTable overrides the invoices table name.
func WithInvoiceTable(table string) Option {
	return func(t *tables) {
		if table != "" {
			t.invoices = table
		}
	}
}

// WithReceiptTable overrides the receipts table name.
func WithReceiptTable(table string) Option {
	return func(t *tables) {
		if table != "" {
			t.receipts = table
		}
	}
}

func buildTables(opts []Option) tables {
	t := defaultTables()
	for _, opt := range opts {
		opt(&t)
	}
	return t
}
