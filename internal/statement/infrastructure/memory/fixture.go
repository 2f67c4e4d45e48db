package memory

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	statement "ledger-cloud/internal/statement/domain"
)

// Fixture is the YAML layout of a seeded ledger. Dates are YYYY-MM-DD and
// amounts are decimal strings.
type Fixture struct {
	Customers []fixtureCustomer `yaml:"customers"`
	Invoices  []fixtureInvoice  `yaml:"invoices"`
	Receipts  []fixtureReceipt  `yaml:"receipts"`
}

type fixtureCustomer struct {
	ID       int64  `yaml:"id"`
	TenantID int64  `yaml:"tenant_id"`
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
	Phone    string `yaml:"phone"`
	Email    string `yaml:"email"`
	TaxID    string `yaml:"tax_id"`
}

type fixtureInvoice struct {
	ID         int64  `yaml:"id"`
	TenantID   int64  `yaml:"tenant_id"`
	CustomerID int64  `yaml:"customer_id"`
	Number     string `yaml:"number"`
	IssueDate  string `yaml:"issue_date"`
	Total      string `yaml:"total"`
	Status     string `yaml:"status"`
}

type fixtureReceipt struct {
	ID            int64  `yaml:"id"`
	InvoiceID     int64  `yaml:"invoice_id"`
	Number        string `yaml:"number"`
	PaymentDate   string `yaml:"payment_date"`
	Amount        string `yaml:"amount"`
	PaymentMethod string `yaml:"payment_method"`
}

// LoadFixtureFile builds a ledger from a YAML fixture file.
func LoadFixtureFile(path string) (*Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("memory fixture: %w", err)
	}
	defer f.Close()
	ledger := NewLedger()
	if err := ledger.LoadFixture(f); err != nil {
		return nil, fmt.Errorf("memory fixture %s: %w", path, err)
	}
	return ledger, nil
}

// LoadFixture decodes a YAML fixture and adds its rows. Customers load first,
// then invoices, then receipts.
func (l *Ledger) LoadFixture(r io.Reader) error {
	var fx Fixture
	if err := yaml.NewDecoder(r).Decode(&fx); err != nil && err != io.EOF {
		return fmt.Errorf("decode: %w", err)
	}
	for _, c := range fx.Customers {
		err := l.AddCustomer(statement.Customer{
			ID:       c.ID,
			TenantID: c.TenantID,
			Name:     c.Name,
			Address:  c.Address,
			Phone:    c.Phone,
			Email:    c.Email,
			TaxID:    c.TaxID,
		})
		if err != nil {
			return fmt.Errorf("customer %d: %w", c.ID, err)
		}
	}
	for _, inv := range fx.Invoices {
		issued, err := statement.ParseDate(inv.IssueDate)
		if err != nil {
			return fmt.Errorf("invoice %d issue_date: %w", inv.ID, err)
		}
		total, err := parseAmount(inv.Total)
		if err != nil {
			return fmt.Errorf("invoice %d total: %w", inv.ID, err)
		}
		status := statement.InvoiceStatus(inv.Status)
		if inv.Status == "" {
			status = statement.InvoiceStatusSent
		}
		if !status.Valid() {
			return fmt.Errorf("invoice %d: unknown status %q", inv.ID, inv.Status)
		}
		err = l.AddInvoice(statement.Invoice{
			ID:         inv.ID,
			TenantID:   inv.TenantID,
			CustomerID: inv.CustomerID,
			Number:     inv.Number,
			IssueDate:  issued,
			Total:      total,
			Status:     status,
		})
		if err != nil {
			return fmt.Errorf("invoice %d: %w", inv.ID, err)
		}
	}
	for _, rcp := range fx.Receipts {
		paid, err := statement.ParseDate(rcp.PaymentDate)
		if err != nil {
			return fmt.Errorf("receipt %d payment_date: %w", rcp.ID, err)
		}
		amount, err := parseAmount(rcp.Amount)
		if err != nil {
			return fmt.Errorf("receipt %d amount: %w", rcp.ID, err)
		}
		err = l.AddReceipt(statement.Receipt{
			ID:            rcp.ID,
			InvoiceID:     rcp.InvoiceID,
			Number:        rcp.Number,
			PaymentDate:   paid,
			Amount:        amount,
			PaymentMethod: rcp.PaymentMethod,
		})
		if err != nil {
			return fmt.Errorf("receipt %d: %w", rcp.ID, err)
		}
	}
	return nil
}

func parseAmount(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}
