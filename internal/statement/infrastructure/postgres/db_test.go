package postgres

import (
	"context"
	"testing"
	"time"
)

func TestBuildTables(t *testing.T) {
	tbl := buildTables(nil)
	if tbl.customers != "customers" || tbl.invoices != "invoices" || tbl.receipts != "receipts" {
		t.Fatalf("unexpected defaults %+v", tbl)
	}
	tbl = buildTables([]Option{WithInvoiceTable("billing.invoices"), WithReceiptTable(""), WithCustomerTable("crm.customers")})
	if tbl.invoices != "billing.invoices" || tbl.customers != "crm.customers" || tbl.receipts != "receipts" {
		t.Fatalf("unexpected overrides %+v", tbl)
	}
}

func TestRepositories_NilDB(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	if _, err := NewCustomerRepository(nil).FindCustomer(ctx, 1, 1); err == nil {
		t.Fatalf("expected customer repo error")
	}
	if _, err := NewInvoiceRepository(nil).SumInvoicesBefore(ctx, 1, 1, now); err == nil {
		t.Fatalf("expected invoice repo error")
	}
	if _, err := NewReceiptRepository(nil).ListReceiptsBetween(ctx, 1, 1, now, now); err == nil {
		t.Fatalf("expected receipt repo error")
	}
	if err := NewStore(nil).ReadSnapshot(ctx, nil); err == nil {
		t.Fatalf("expected store error")
	}
}
