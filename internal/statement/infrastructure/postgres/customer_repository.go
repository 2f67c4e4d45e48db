package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	statement "ledger-cloud/internal/statement/domain"
)

// CustomerRepository reads customer snapshots.
type CustomerRepository struct {
	db     DBTX
	tables tables
}

// NewCustomerRepository constructs a repository.
func NewCustomerRepository(db DBTX, opts ...Option) *CustomerRepository {
	return &CustomerRepository{db: db, tables: buildTables(opts)}
}

// FindCustomer loads a customer scoped to the tenant. Returns nil when absent.
func (r *CustomerRepository) FindCustomer(ctx context.Context, tenantID, customerID int64) (*statement.Customer, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("customer repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, tenant_id, name, address, phone, email, tax_id
FROM %s
WHERE id = $1 AND tenant_id = $2
LIMIT 1`, r.tables.customers)

	var customer statement.Customer
	var address, phone, email, taxID sql.NullString
	err := r.db.QueryRowContext(ctx, query, customerID, tenantID).Scan(
		&customer.ID,
		&customer.TenantID,
		&customer.Name,
		&address,
		&phone,
		&email,
		&taxID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	customer.Address = address.String
	customer.Phone = phone.String
	customer.Email = email.String
	customer.TaxID = taxID.String
	return &customer, nil
}
