package statement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a read-only snapshot of the billed party.
type Customer struct {
	ID       int64  `json:"id"`
	TenantID int64  `json:"tenant_id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	TaxID    string `json:"tax_id,omitempty"`
}

// InvoiceStatus is the lifecycle status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "Draft"
	InvoiceStatusSent      InvoiceStatus = "Sent"
	InvoiceStatusPaid      InvoiceStatus = "Paid"
	InvoiceStatusOverdue   InvoiceStatus = "Overdue"
	InvoiceStatusCancelled InvoiceStatus = "Cancelled"
)

// Valid reports whether the status is one of the known values.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	default:
		return false
	}
}

// Invoice is a debit on the customer's account.
type Invoice struct {
	ID         int64
	TenantID   int64
	CustomerID int64
	Number     string
	IssueDate  time.Time
	Total      decimal.Decimal
	Status     InvoiceStatus
}

// Receipt is a payment against an invoice.
type Receipt struct {
	ID            int64
	TenantID      int64
	InvoiceID     int64
	InvoiceNumber string
	Number        string
	PaymentDate   time.Time
	Amount        decimal.Decimal
	PaymentMethod string
}
