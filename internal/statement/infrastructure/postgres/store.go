package postgres

import (
	"context"
	"database/sql"
	"errors"

	statement "ledger-cloud/internal/statement/domain"
)

// Store bundles the ledger repositories over one database.
type Store struct {
	db        *sql.DB
	opts      []Option
	Customers *CustomerRepository
	Invoices  *InvoiceRepository
	Receipts  *ReceiptRepository
}

// NewStore constructs repositories sharing db.
func NewStore(db *sql.DB, opts ...Option) *Store {
	return &Store{
		db:        db,
		opts:      opts,
		Customers: NewCustomerRepository(db, opts...),
		Invoices:  NewInvoiceRepository(db, opts...),
		Receipts:  NewReceiptRepository(db, opts...),
	}
}

// ReadSnapshot runs fn in a read-only repeatable-read transaction so the
// opening balance and window reads see the same data.
func (s *Store) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, sources statement.Sources) error) error {
	if s == nil || s.db == nil {
		return errors.New("statement store: nil db")
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return err
	}
	sources := statement.Sources{
		Customers: NewCustomerRepository(tx, s.opts...),
		Invoices:  NewInvoiceRepository(tx, s.opts...),
		Receipts:  NewReceiptRepository(tx, s.opts...),
	}
	if err := fn(ctx, sources); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
