package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	statement "ledger-cloud/internal/statement/domain"
)

var (
	errInvalidCustomer = errors.New("memory ledger: invalid customer")
	errUnknownCustomer = errors.New("memory ledger: unknown customer")
	errTenantMismatch  = errors.New("memory ledger: tenant mismatch")
	errInvalidID       = errors.New("memory ledger: invalid id")
)

// Ledger is an in-memory implementation of the customer, invoice and receipt sources.
type Ledger struct {
	mu        sync.RWMutex
	customers map[int64]statement.Customer
	invoices  map[int64]statement.Invoice
	receipts  map[int64]statement.Receipt
}

// NewLedger constructs an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		customers: make(map[int64]statement.Customer),
		invoices:  make(map[int64]statement.Invoice),
		receipts:  make(map[int64]statement.Receipt),
	}
}

// AddCustomer stores or replaces a customer.
func (l *Ledger) AddCustomer(customer statement.Customer) error {
	if customer.ID <= 0 || customer.TenantID <= 0 {
		return errInvalidCustomer
	}
	l.mu.Lock()
	l.customers[customer.ID] = customer
	l.mu.Unlock()
	return nil
}

// AddInvoice stores an invoice. The tenant defaults to the customer's tenant.
func (l *Ledger) AddInvoice(inv statement.Invoice) error {
	if inv.ID <= 0 {
		return errInvalidID
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	customer, ok := l.customers[inv.CustomerID]
	if !ok {
		return errUnknownCustomer
	}
	if inv.TenantID == 0 {
		inv.TenantID = customer.TenantID
	}
	if inv.TenantID != customer.TenantID {
		return errTenantMismatch
	}
	l.invoices[inv.ID] = inv
	return nil
}

// AddReceipt stores a receipt. Receipts without a known invoice are kept but
// never appear in any customer's ledger.
func (l *Ledger) AddReceipt(rcp statement.Receipt) error {
	if rcp.ID <= 0 {
		return errInvalidID
	}
	l.mu.Lock()
	l.receipts[rcp.ID] = rcp
	l.mu.Unlock()
	return nil
}

// FindCustomer returns the customer when it belongs to tenantID.
func (l *Ledger) FindCustomer(ctx context.Context, tenantID, customerID int64) (*statement.Customer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return view{l}.FindCustomer(ctx, tenantID, customerID)
}

// SumInvoicesBefore sums invoice totals dated before the given day.
func (l *Ledger) SumInvoicesBefore(ctx context.Context, tenantID, customerID int64, before time.Time) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return view{l}.SumInvoicesBefore(ctx, tenantID, customerID, before)
}

// ListInvoicesBetween lists invoices dated within [from, to].
func (l *Ledger) ListInvoicesBetween(ctx context.Context, tenantID, customerID int64, from, to time.Time) ([]statement.Invoice, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return view{l}.ListInvoicesBetween(ctx, tenantID, customerID, from, to)
}

// SumReceiptsBefore sums invoice-linked receipts paid before the given day.
func (l *Ledger) SumReceiptsBefore(ctx context.Context, tenantID, customerID int64, before time.Time) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return view{l}.SumReceiptsBefore(ctx, tenantID, customerID, before)
}

// ListReceiptsBetween lists invoice-linked receipts paid within [from, to].
func (l *Ledger) ListReceiptsBetween(ctx context.Context, tenantID, customerID int64, from, to time.Time) ([]statement.Receipt, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return view{l}.ListReceiptsBetween(ctx, tenantID, customerID, from, to)
}

// ReadSnapshot holds the read lock while fn runs, so every read observes the same data.
func (l *Ledger) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, sources statement.Sources) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v := view{l}
	return fn(ctx, statement.Sources{Customers: v, Invoices: v, Receipts: v})
}

// view reads the ledger maps without locking; callers hold l.mu.
type view struct {
	l *Ledger
}

func (v view) FindCustomer(ctx context.Context, tenantID, customerID int64) (*statement.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	customer, ok := v.l.customers[customerID]
	if !ok || customer.TenantID != tenantID {
		return nil, nil
	}
	return &customer, nil
}

func (v view) SumInvoicesBefore(ctx context.Context, tenantID, customerID int64, before time.Time) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	cutoff := statement.DateOnly(before)
	sum := decimal.Zero
	for _, inv := range v.l.invoices {
		if inv.TenantID == tenantID && inv.CustomerID == customerID && statement.DateOnly(inv.IssueDate).Before(cutoff) {
			sum = sum.Add(inv.Total)
		}
	}
	return sum, nil
}

func (v view) ListInvoicesBetween(ctx context.Context, tenantID, customerID int64, from, to time.Time) ([]statement.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	window := statement.NewWindow(from, to)
	var result []statement.Invoice
	for _, inv := range v.l.invoices {
		if inv.TenantID == tenantID && inv.CustomerID == customerID && window.Contains(inv.IssueDate) {
			result = append(result, inv)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].IssueDate.Equal(result[j].IssueDate) {
			return result[i].IssueDate.Before(result[j].IssueDate)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (v view) SumReceiptsBefore(ctx context.Context, tenantID, customerID int64, before time.Time) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	cutoff := statement.DateOnly(before)
	sum := decimal.Zero
	for _, rcp := range v.l.receipts {
		if _, ok := v.linkedInvoice(rcp, tenantID, customerID); ok && statement.DateOnly(rcp.PaymentDate).Before(cutoff) {
			sum = sum.Add(rcp.Amount)
		}
	}
	return sum, nil
}

func (v view) ListReceiptsBetween(ctx context.Context, tenantID, customerID int64, from, to time.Time) ([]statement.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	window := statement.NewWindow(from, to)
	var result []statement.Receipt
	for _, rcp := range v.l.receipts {
		inv, ok := v.linkedInvoice(rcp, tenantID, customerID)
		if !ok || !window.Contains(rcp.PaymentDate) {
			continue
		}
		rcp.TenantID = inv.TenantID
		rcp.InvoiceNumber = inv.Number
		result = append(result, rcp)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].PaymentDate.Equal(result[j].PaymentDate) {
			return result[i].PaymentDate.Before(result[j].PaymentDate)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (v view) linkedInvoice(rcp statement.Receipt, tenantID, customerID int64) (statement.Invoice, bool) {
	inv, ok := v.l.invoices[rcp.InvoiceID]
	if !ok || inv.TenantID != tenantID || inv.CustomerID != customerID {
		return statement.Invoice{}, false
	}
	return inv, true
}
