package statement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind discriminates the two ledger streams merged into a statement.
type TransactionKind uint8

const (
	KindInvoice TransactionKind = iota + 1
	KindReceipt
)

// String returns the kind label. Labels take part in the ordering of same-day transactions.
func (k TransactionKind) String() string {
	switch k {
	case KindInvoice:
		return "Invoice"
	case KindReceipt:
		return "Receipt"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the kind as its label.
func (k TransactionKind) MarshalText() ([]byte, error) {
	switch k {
	case KindInvoice, KindReceipt:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("statement: unknown transaction kind %d", uint8(k))
	}
}

// UnmarshalText decodes a kind label.
func (k *TransactionKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Invoice":
		*k = KindInvoice
	case "Receipt":
		*k = KindReceipt
	default:
		return fmt.Errorf("statement: unknown transaction kind %q", string(text))
	}
	return nil
}

// ReceiptStatus is the status reported for every receipt line.
const ReceiptStatus = "Completed"

// StatementTransaction is one invoice or receipt as it appears on a statement.
type StatementTransaction struct {
	Date          time.Time       `json:"date"`
	Kind          TransactionKind `json:"kind"`
	SourceID      int64           `json:"source_id"`
	Reference     string          `json:"reference"`
	Description   string          `json:"description"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Balance       decimal.Decimal `json:"balance"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method,omitempty"`
}

// InvoiceTransaction maps an invoice to a debit line.
func InvoiceTransaction(inv Invoice) StatementTransaction {
	ref := invoiceReference(inv.ID, inv.Number)
	return StatementTransaction{
		Date:        DateOnly(inv.IssueDate),
		Kind:        KindInvoice,
		SourceID:    inv.ID,
		Reference:   ref,
		Description: "Invoice " + ref,
		Debit:       inv.Total,
		Credit:      decimal.Zero,
		Status:      string(inv.Status),
	}
}

// ReceiptTransaction maps a receipt to a credit line.
func ReceiptTransaction(rcp Receipt) StatementTransaction {
	ref := rcp.Number
	if ref == "" {
		ref = fmt.Sprintf("RCP-%d", rcp.ID)
	}
	return StatementTransaction{
		Date:          DateOnly(rcp.PaymentDate),
		Kind:          KindReceipt,
		SourceID:      rcp.ID,
		Reference:     ref,
		Description:   "Payment for invoice " + invoiceReference(rcp.InvoiceID, rcp.InvoiceNumber),
		Debit:         decimal.Zero,
		Credit:        rcp.Amount,
		Status:        ReceiptStatus,
		PaymentMethod: rcp.PaymentMethod,
	}
}

func invoiceReference(id int64, number string) string {
	if number != "" {
		return number
	}
	return fmt.Sprintf("INV-%d", id)
}

// Net returns debit minus credit.
func (t StatementTransaction) Net() decimal.Decimal {
	return t.Debit.Sub(t.Credit)
}
