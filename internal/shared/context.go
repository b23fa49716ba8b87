package shared

import "context"

// Tenant identifies the company a request acts on and the user acting.
type Tenant struct {
	CompanyID int64
	UserID    int64
}

// Valid reports whether the tenant names a company.
func (t Tenant) Valid() bool {
	return t.CompanyID > 0
}

type tenantContextKey struct{}

// ContextWithTenant stores the tenant resolved by the HTTP layer.
func ContextWithTenant(ctx context.Context, tenant Tenant) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, tenant)
}

// TenantFromContext extracts the tenant placed by ContextWithTenant.
func TenantFromContext(ctx context.Context) (Tenant, bool) {
	tenant, ok := ctx.Value(tenantContextKey{}).(Tenant)
	return tenant, ok
}
