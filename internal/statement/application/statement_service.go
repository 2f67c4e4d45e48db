package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"ledger-cloud/internal/observability/metrics"
	statement "ledger-cloud/internal/statement/domain"
)

// StatementQuery selects a customer's ledger window.
type StatementQuery struct {
	CustomerID                     int64
	TenantID                       int64
	From                           time.Time
	To                             time.Time
	IncludeZeroBalanceTransactions bool
}

// DefaultQuery builds a query that keeps zero-amount transactions.
func DefaultQuery(customerID, tenantID int64, from, to time.Time) StatementQuery {
	return StatementQuery{
		CustomerID:                     customerID,
		TenantID:                       tenantID,
		From:                           from,
		To:                             to,
		IncludeZeroBalanceTransactions: true,
	}
}

// StatementService computes customer statements from ledger sources.
type StatementService struct {
	sources  statement.Sources
	snapshot statement.SnapshotReader
}

// Option configures the service.
type Option func(*StatementService)

// WithSnapshot runs all reads of one statement inside a consistent snapshot.
func WithSnapshot(reader statement.SnapshotReader) Option {
	return func(s *StatementService) {
		s.snapshot = reader
	}
}

// NewStatementService constructs a service.
func NewStatementService(customers statement.CustomerSource, invoices statement.InvoiceSource, receipts statement.ReceiptSource, opts ...Option) (*StatementService, error) {
	if customers == nil || invoices == nil || receipts == nil {
		return nil, errors.New("statement service: nil source")
	}
	svc := &StatementService{sources: statement.Sources{Customers: customers, Invoices: invoices, Receipts: receipts}}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// GetStatement builds the customer's statement for [From, To].
func (s *StatementService) GetStatement(ctx context.Context, q StatementQuery) (*statement.Statement, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveStatementGenerate(result, time.Since(start))
	}()

	if q.CustomerID <= 0 || q.TenantID <= 0 {
		result = metrics.ResultNotFound
		return nil, statement.ErrCustomerNotFound
	}

	var stmt *statement.Statement
	build := func(ctx context.Context, sources statement.Sources) error {
		var err error
		stmt, err = computeStatement(ctx, sources, q)
		return err
	}

	var err error
	if s.snapshot != nil {
		err = s.snapshot.ReadSnapshot(ctx, build)
	} else {
		err = build(ctx, s.sources)
	}
	if err != nil {
		result = metrics.ResultError
		if errors.Is(err, statement.ErrCustomerNotFound) {
			result = metrics.ResultNotFound
		}
		return nil, err
	}
	metrics.ObserveStatementTransactions(len(stmt.Transactions))
	return stmt, nil
}

func computeStatement(ctx context.Context, sources statement.Sources, q StatementQuery) (*statement.Statement, error) {
	if sources.Customers == nil || sources.Invoices == nil || sources.Receipts == nil {
		return nil, statement.ErrNilSource
	}
	customer, err := sources.Customers.FindCustomer(ctx, q.TenantID, q.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.TenantID != q.TenantID {
		return nil, statement.ErrCustomerNotFound
	}

	window := statement.NewWindow(q.From, q.To)
	opening, err := openingBalance(ctx, sources, q.TenantID, q.CustomerID, window.From)
	if err != nil {
		return nil, err
	}

	var invoices []statement.Invoice
	var receipts []statement.Receipt
	if !window.Empty() {
		invoices, err = sources.Invoices.ListInvoicesBetween(ctx, q.TenantID, q.CustomerID, window.From, window.To)
		if err != nil {
			return nil, err
		}
		receipts, err = sources.Receipts.ListReceiptsBetween(ctx, q.TenantID, q.CustomerID, window.From, window.To)
		if err != nil {
			return nil, err
		}
	}

	return statement.BuildStatement(*customer, window, opening, invoices, receipts, q.IncludeZeroBalanceTransactions), nil
}

// openingBalance aggregates all history before from; the zero filter never applies here.
func openingBalance(ctx context.Context, sources statement.Sources, tenantID, customerID int64, from time.Time) (decimal.Decimal, error) {
	debits, err := sources.Invoices.SumInvoicesBefore(ctx, tenantID, customerID, from)
	if err != nil {
		return decimal.Zero, err
	}
	credits, err := sources.Receipts.SumReceiptsBefore(ctx, tenantID, customerID, from)
	if err != nil {
		return decimal.Zero, err
	}
	return debits.Sub(credits), nil
}
