package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	statement "ledger-cloud/internal/statement/domain"
	"ledger-cloud/internal/statement/infrastructure/memory"
)

const (
	tenantID   int64 = 1
	customerID int64 = 7
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seededLedger(t *testing.T) *memory.Ledger {
	t.Helper()
	ledger := memory.NewLedger()
	steps := []error{
		ledger.AddCustomer(statement.Customer{ID: customerID, TenantID: tenantID, Name: "Customer C", Email: "c@example.com"}),
		ledger.AddCustomer(statement.Customer{ID: 8, TenantID: 2, Name: "Elsewhere"}),
		ledger.AddInvoice(statement.Invoice{ID: 1, CustomerID: customerID, Number: "INV-1", IssueDate: day(2024, time.January, 10), Total: decimal.NewFromInt(1000), Status: statement.InvoiceStatusPaid}),
		ledger.AddInvoice(statement.Invoice{ID: 2, CustomerID: customerID, Number: "INV-2", IssueDate: day(2024, time.February, 15), Total: decimal.NewFromInt(500), Status: statement.InvoiceStatusSent}),
		ledger.AddInvoice(statement.Invoice{ID: 3, CustomerID: customerID, Number: "INV-3", IssueDate: day(2023, time.December, 1), Total: decimal.Zero, Status: statement.InvoiceStatusCancelled}),
		ledger.AddInvoice(statement.Invoice{ID: 4, CustomerID: customerID, Number: "INV-4", IssueDate: day(2024, time.February, 1), Total: decimal.Zero, Status: statement.InvoiceStatusDraft}),
		ledger.AddReceipt(statement.Receipt{ID: 11, InvoiceID: 1, Number: "RCP-11", PaymentDate: day(2024, time.February, 20), Amount: decimal.NewFromInt(1000), PaymentMethod: "bank_transfer"}),
	}
	for _, err := range steps {
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return ledger
}

func newService(t *testing.T, ledger *memory.Ledger, opts ...Option) *StatementService {
	t.Helper()
	svc, err := NewStatementService(ledger, ledger, ledger, opts...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewStatementService_RequiresSources(t *testing.T) {
	ledger := memory.NewLedger()
	if _, err := NewStatementService(nil, ledger, ledger); err == nil {
		t.Fatalf("expected error for nil customers")
	}
}

func TestGetStatement_ExampleScenarios(t *testing.T) {
	svc := newService(t, seededLedger(t))
	ctx := context.Background()

	wide, err := svc.GetStatement(ctx, DefaultQuery(customerID, tenantID, day(2024, time.January, 1), day(2024, time.February, 28)))
	if err != nil {
		t.Fatalf("wide window: %v", err)
	}
	if !wide.OpeningBalance.IsZero() {
		t.Fatalf("opening: %s", wide.OpeningBalance)
	}
	// INV-4 is a zero invoice kept by default.
	if len(wide.Transactions) != 4 {
		t.Fatalf("expected 4 transactions, got %d", len(wide.Transactions))
	}
	if !wide.ClosingBalance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("closing: %s", wide.ClosingBalance)
	}
	if wide.Customer.Name != "Customer C" {
		t.Fatalf("customer snapshot missing")
	}

	q := DefaultQuery(customerID, tenantID, day(2024, time.February, 1), day(2024, time.February, 28))
	q.IncludeZeroBalanceTransactions = false
	narrow, err := svc.GetStatement(ctx, q)
	if err != nil {
		t.Fatalf("narrow window: %v", err)
	}
	if !narrow.OpeningBalance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("opening: %s", narrow.OpeningBalance)
	}
	if len(narrow.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(narrow.Transactions))
	}
	if narrow.Transactions[0].Reference != "INV-2" || narrow.Transactions[1].Kind != statement.KindReceipt {
		t.Fatalf("unexpected transactions: %+v", narrow.Transactions)
	}
	if narrow.Transactions[1].Description != "Payment for invoice INV-1" || narrow.Transactions[1].PaymentMethod != "bank_transfer" {
		t.Fatalf("receipt line mismatch: %+v", narrow.Transactions[1])
	}
	if !narrow.ClosingBalance.Equal(wide.ClosingBalance) {
		t.Fatalf("closing balances differ: %s vs %s", narrow.ClosingBalance, wide.ClosingBalance)
	}
	for _, stmt := range []*statement.Statement{wide, narrow} {
		if err := stmt.Verify(); err != nil {
			t.Fatalf("verify: %v", err)
		}
	}
}

func TestGetStatement_ZeroFilterLeavesOpeningBalance(t *testing.T) {
	svc := newService(t, seededLedger(t))
	ctx := context.Background()
	q := DefaultQuery(customerID, tenantID, day(2024, time.February, 10), day(2024, time.March, 31))

	with, err := svc.GetStatement(ctx, q)
	if err != nil {
		t.Fatalf("include zero: %v", err)
	}
	q.IncludeZeroBalanceTransactions = false
	without, err := svc.GetStatement(ctx, q)
	if err != nil {
		t.Fatalf("exclude zero: %v", err)
	}
	if !with.OpeningBalance.Equal(without.OpeningBalance) {
		t.Fatalf("opening depends on zero filter: %s vs %s", with.OpeningBalance, without.OpeningBalance)
	}
}

func TestGetStatement_CustomerOutsideTenant(t *testing.T) {
	svc := newService(t, seededLedger(t))
	ctx := context.Background()
	cases := []StatementQuery{
		DefaultQuery(8, tenantID, day(2024, time.January, 1), day(2024, time.January, 31)),
		DefaultQuery(999, tenantID, day(2024, time.January, 1), day(2024, time.January, 31)),
		DefaultQuery(customerID, 0, day(2024, time.January, 1), day(2024, time.January, 31)),
		DefaultQuery(-1, tenantID, day(2024, time.January, 1), day(2024, time.January, 31)),
	}
	for _, q := range cases {
		if _, err := svc.GetStatement(ctx, q); !errors.Is(err, statement.ErrCustomerNotFound) {
			t.Fatalf("query %+v: expected ErrCustomerNotFound, got %v", q, err)
		}
	}
}

func TestGetStatement_ReversedWindow(t *testing.T) {
	svc := newService(t, seededLedger(t))
	stmt, err := svc.GetStatement(context.Background(), DefaultQuery(customerID, tenantID, day(2024, time.March, 1), day(2024, time.January, 1)))
	if err != nil {
		t.Fatalf("reversed window: %v", err)
	}
	if len(stmt.Transactions) != 0 {
		t.Fatalf("expected no transactions")
	}
	if !stmt.OpeningBalance.Equal(decimal.NewFromInt(500)) || !stmt.ClosingBalance.Equal(stmt.OpeningBalance) {
		t.Fatalf("opening/closing: %s / %s", stmt.OpeningBalance, stmt.ClosingBalance)
	}
}

func TestGetStatement_Deterministic(t *testing.T) {
	svc := newService(t, seededLedger(t))
	q := DefaultQuery(customerID, tenantID, day(2023, time.January, 1), day(2024, time.December, 31))
	first, err := svc.GetStatement(context.Background(), q)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.GetStatement(context.Background(), q)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	for i := range first.Transactions {
		a, b := first.Transactions[i], second.Transactions[i]
		if a.Kind != b.Kind || a.SourceID != b.SourceID || !a.Balance.Equal(b.Balance) {
			t.Fatalf("transaction %d differs", i)
		}
	}
}

type recordingSnapshot struct {
	ledger *memory.Ledger
	calls  int
}

func (r *recordingSnapshot) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, sources statement.Sources) error) error {
	r.calls++
	return r.ledger.ReadSnapshot(ctx, fn)
}

func TestGetStatement_UsesSnapshot(t *testing.T) {
	ledger := seededLedger(t)
	snapshot := &recordingSnapshot{ledger: ledger}
	svc := newService(t, ledger, WithSnapshot(snapshot))
	if _, err := svc.GetStatement(context.Background(), DefaultQuery(customerID, tenantID, day(2024, time.January, 1), day(2024, time.February, 28))); err != nil {
		t.Fatalf("get statement: %v", err)
	}
	if snapshot.calls != 1 {
		t.Fatalf("expected one snapshot read, got %d", snapshot.calls)
	}
}

type failingInvoices struct {
	err error
}

func (f failingInvoices) SumInvoicesBefore(context.Context, int64, int64, time.Time) (decimal.Decimal, error) {
	return decimal.Zero, f.err
}

func (f failingInvoices) ListInvoicesBetween(context.Context, int64, int64, time.Time, time.Time) ([]statement.Invoice, error) {
	return nil, f.err
}

func TestGetStatement_PropagatesSourceErrors(t *testing.T) {
	ledger := seededLedger(t)
	boom := errors.New("connection reset")
	svc, err := NewStatementService(ledger, failingInvoices{err: boom}, ledger)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = svc.GetStatement(context.Background(), DefaultQuery(customerID, tenantID, day(2024, time.January, 1), day(2024, time.January, 31)))
	if !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}
