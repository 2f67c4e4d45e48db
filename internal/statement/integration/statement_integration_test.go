package integration_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"ledger-cloud/internal/audit"
	statementapp "ledger-cloud/internal/statement/application"
	statement "ledger-cloud/internal/statement/domain"
	statementrepo "ledger-cloud/internal/statement/infrastructure/postgres"
	statementinterfaces "ledger-cloud/internal/statement/interfaces"
)

const tenantID int64 = 9001

func TestStatement_PostgresEndToEnd(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := applyMigrations(db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	ctx := context.Background()
	cleanup(ctx, t, db)
	defer cleanup(ctx, t, db)

	customerID := insertCustomer(ctx, t, db, tenantID, "Customer C")
	otherTenantCustomer := insertCustomer(ctx, t, db, tenantID+1, "Elsewhere")
	inv1 := insertInvoice(ctx, t, db, tenantID, customerID, "INV-1", day(2024, time.January, 10), "1000.00")
	insertInvoice(ctx, t, db, tenantID, customerID, "INV-2", day(2024, time.February, 15), "500.00")
	insertInvoice(ctx, t, db, tenantID, customerID, "INV-3", day(2023, time.December, 1), "0")
	insertInvoice(ctx, t, db, tenantID, customerID, "INV-4", day(2024, time.February, 1), "0")
	insertReceipt(ctx, t, db, tenantID, sql.NullInt64{Int64: inv1, Valid: true}, "RCP-1", day(2024, time.February, 20), "1000.00")
	// Receipts without an invoice link never reach a statement.
	insertReceipt(ctx, t, db, tenantID, sql.NullInt64{}, "RCP-ORPHAN", day(2024, time.February, 5), "75.00")

	store := statementrepo.NewStore(db)
	svc, err := statementapp.NewStatementService(store.Customers, store.Invoices, store.Receipts, statementapp.WithSnapshot(store))
	if err != nil {
		t.Fatalf("statement service: %v", err)
	}

	wide, err := svc.GetStatement(ctx, statementapp.DefaultQuery(customerID, tenantID, day(2024, time.January, 1), day(2024, time.February, 28)))
	if err != nil {
		t.Fatalf("wide statement: %v", err)
	}
	if !wide.OpeningBalance.IsZero() || !wide.ClosingBalance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("unexpected balances %s -> %s", wide.OpeningBalance, wide.ClosingBalance)
	}
	if len(wide.Transactions) != 4 {
		t.Fatalf("expected 4 transactions, got %d", len(wide.Transactions))
	}
	if err := wide.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if wide.Transactions[3].Description != "Payment for invoice INV-1" {
		t.Fatalf("unexpected receipt description %q", wide.Transactions[3].Description)
	}

	narrowQuery := statementapp.DefaultQuery(customerID, tenantID, day(2024, time.February, 1), day(2024, time.February, 28))
	narrowQuery.IncludeZeroBalanceTransactions = false
	narrow, err := svc.GetStatement(ctx, narrowQuery)
	if err != nil {
		t.Fatalf("narrow statement: %v", err)
	}
	if !narrow.OpeningBalance.Equal(decimal.NewFromInt(1000)) || len(narrow.Transactions) != 2 {
		t.Fatalf("unexpected narrow statement opening=%s txs=%d", narrow.OpeningBalance, len(narrow.Transactions))
	}

	if _, err := svc.GetStatement(ctx, statementapp.DefaultQuery(otherTenantCustomer, tenantID, day(2024, time.January, 1), day(2024, time.February, 28))); err != statement.ErrCustomerNotFound {
		t.Fatalf("expected not found for other tenant, got %v", err)
	}

	auditRepo := audit.NewRepository(db)
	handler, err := statementinterfaces.NewStatementHandler(svc, auditRepo, statementinterfaces.WithDefaultTenant(tenantID))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	router := statementinterfaces.NewRouter(handler, statementinterfaces.RouterOptions{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+itoa(customerID)+"/statement?from=2024-01-01&to=2024-02-28", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("json status %d: %s", resp.Code, resp.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["closing_balance"] != "500" {
		t.Fatalf("unexpected closing balance %v", body["closing_balance"])
	}

	xlsxReq := httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+itoa(customerID)+"/statement.xlsx?from=2024-01-01&to=2024-02-28", nil)
	xlsxResp := httptest.NewRecorder()
	router.ServeHTTP(xlsxResp, xlsxReq)
	if xlsxResp.Code != http.StatusOK || len(xlsxResp.Body.Bytes()) == 0 {
		t.Fatalf("xlsx status %d", xlsxResp.Code)
	}

	var auditCount int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs WHERE tenant_id = $1 AND customer_id = $2`, tenantID, customerID).Scan(&auditCount); err != nil {
		t.Fatalf("count audit logs: %v", err)
	}
	if auditCount != 2 {
		t.Fatalf("expected 2 audit rows, got %d", auditCount)
	}
}

func applyMigrations(db *sql.DB) error {
	files, err := filepath.Glob(filepath.Join(projectRoot(), "migrations", "*.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := db.Exec(string(content)); err != nil {
			return err
		}
	}
	return nil
}

func cleanup(ctx context.Context, t *testing.T, db *sql.DB) {
	t.Helper()
	stmts := []string{
		`DELETE FROM audit_logs WHERE tenant_id IN ($1, $2)`,
		`DELETE FROM receipts WHERE tenant_id IN ($1, $2)`,
		`DELETE FROM invoices WHERE tenant_id IN ($1, $2)`,
		`DELETE FROM customers WHERE tenant_id IN ($1, $2)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt, tenantID, tenantID+1); err != nil {
			t.Fatalf("cleanup: %v", err)
		}
	}
}

func insertCustomer(ctx context.Context, t *testing.T, db *sql.DB, tenant int64, name string) int64 {
	t.Helper()
	var id int64
	if err := db.QueryRowContext(ctx, `INSERT INTO customers (tenant_id, name) VALUES ($1, $2) RETURNING id`, tenant, name).Scan(&id); err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	return id
}

func insertInvoice(ctx context.Context, t *testing.T, db *sql.DB, tenant, customerID int64, number string, issued time.Time, total string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRowContext(ctx, `
INSERT INTO invoices (tenant_id, customer_id, number, issue_date, total, status)
VALUES ($1, $2, $3, $4, $5, 'Sent') RETURNING id`, tenant, customerID, number, issued, decimal.RequireFromString(total)).Scan(&id)
	if err != nil {
		t.Fatalf("insert invoice: %v", err)
	}
	return id
}

func insertReceipt(ctx context.Context, t *testing.T, db *sql.DB, tenant int64, invoiceID sql.NullInt64, number string, paid time.Time, amount string) {
	t.Helper()
	_, err := db.ExecContext(ctx, `
INSERT INTO receipts (tenant_id, invoice_id, number, payment_date, amount, payment_method)
VALUES ($1, $2, $3, $4, $5, 'bank_transfer')`, tenant, invoiceID, number, paid, decimal.RequireFromString(amount))
	if err != nil {
		t.Fatalf("insert receipt: %v", err)
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return filepath.Clean(filepath.Join(dir, "..", "..", ".."))
}
