package statement

import "errors"

var (
	// ErrCustomerNotFound is returned when the customer does not exist for the tenant.
	ErrCustomerNotFound = errors.New("statement: customer not found or not in tenant")
	// ErrInvalidCustomerID indicates a malformed customer id.
	ErrInvalidCustomerID = errors.New("statement: invalid customer id")
	// ErrInvalidTenantID indicates a missing or malformed tenant id.
	ErrInvalidTenantID = errors.New("statement: invalid tenant id")
	// ErrNilSource is returned when a required ledger source is missing.
	ErrNilSource = errors.New("statement: nil source")
	// ErrUnbalanced is returned by Verify when a statement breaks a ledger invariant.
	ErrUnbalanced = errors.New("statement: ledger does not reconcile")
)
