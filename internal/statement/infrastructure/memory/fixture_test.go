package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const sampleFixture = `
customers:
  - id: 7
    tenant_id: 1
    name: Customer C
invoices:
  - id: 1
    customer_id: 7
    number: INV-1
    issue_date: "2024-01-10"
    total: "1000.00"
    status: Paid
  - id: 2
    customer_id: 7
    number: INV-2
    issue_date: "2024-02-15"
    total: "500"
receipts:
  - id: 11
    invoice_id: 1
    number: RCP-11
    payment_date: "2024-02-20"
    amount: "1000"
    payment_method: bank_transfer
`

func TestLoadFixture(t *testing.T) {
	ledger := NewLedger()
	if err := ledger.LoadFixture(strings.NewReader(sampleFixture)); err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	ctx := context.Background()
	customer, err := ledger.FindCustomer(ctx, 1, 7)
	if err != nil || customer == nil || customer.Name != "Customer C" {
		t.Fatalf("unexpected customer %+v (%v)", customer, err)
	}
	invoices, err := ledger.ListInvoicesBetween(ctx, 1, 7, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	if err != nil || len(invoices) != 2 {
		t.Fatalf("expected 2 invoices, got %d (%v)", len(invoices), err)
	}
	if invoices[1].Status != "Sent" || invoices[1].TenantID != 1 {
		t.Fatalf("expected defaulted status and tenant, got %+v", invoices[1])
	}
	receipts, err := ledger.SumReceiptsBefore(ctx, 1, 7, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil || !receipts.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("unexpected receipt sum %s (%v)", receipts, err)
	}
}

func TestLoadFixture_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad date":         "customers: [{id: 1, tenant_id: 1, name: A}]\ninvoices: [{id: 1, customer_id: 1, issue_date: \"10/01/2024\", total: \"1\"}]\n",
		"bad amount":       "customers: [{id: 1, tenant_id: 1, name: A}]\ninvoices: [{id: 1, customer_id: 1, issue_date: \"2024-01-10\", total: \"ten\"}]\n",
		"bad status":       "customers: [{id: 1, tenant_id: 1, name: A}]\ninvoices: [{id: 1, customer_id: 1, issue_date: \"2024-01-10\", total: \"1\", status: Lost}]\n",
		"unknown customer": "invoices: [{id: 1, customer_id: 9, issue_date: \"2024-01-10\", total: \"1\"}]\n",
		"missing tenant":   "customers: [{id: 1, name: A}]\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if err := NewLedger().LoadFixture(strings.NewReader(content)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFixtureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	if err := os.WriteFile(path, []byte(sampleFixture), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	ledger, err := LoadFixtureFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if customer, _ := ledger.FindCustomer(context.Background(), 1, 7); customer == nil {
		t.Fatalf("expected customer from file")
	}
	if _, err := LoadFixtureFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadFixtureFile_Demo(t *testing.T) {
	ledger, err := LoadFixtureFile(filepath.Join("..", "..", "..", "..", "fixtures", "demo_ledger.yaml"))
	if err != nil {
		t.Fatalf("load demo fixture: %v", err)
	}
	customer, err := ledger.FindCustomer(context.Background(), 1, 1)
	if err != nil || customer == nil {
		t.Fatalf("expected demo customer 1 in tenant 1, got %+v (%v)", customer, err)
	}
}
