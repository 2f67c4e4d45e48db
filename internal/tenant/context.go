package tenant

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// DefaultHeader carries the tenant id set by the gateway.
const DefaultHeader = "X-Tenant-ID"

// ErrInvalidTenant indicates a malformed tenant id.
var ErrInvalidTenant = errors.New("tenant: invalid tenant id")

type contextKey string

const contextKeyTenant contextKey = "tenant.id"

// WithTenant stores the tenant id in context.
func WithTenant(ctx context.Context, tenantID int64) context.Context {
	return context.WithValue(ctx, contextKeyTenant, tenantID)
}

// FromContext extracts the tenant id from context.
func FromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	tenantID, ok := ctx.Value(contextKeyTenant).(int64)
	if !ok || tenantID <= 0 {
		return 0, false
	}
	return tenantID, true
}

// Parse parses a positive tenant id.
func Parse(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidTenant
	}
	return id, nil
}

// Middleware copies the tenant header into the request context.
// Requests without the header pass through untouched.
func Middleware(header string) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(header)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			tenantID, err := Parse(raw)
			if err != nil {
				http.Error(w, "invalid tenant id", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), tenantID)))
		})
	}
}
