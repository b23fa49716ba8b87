package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTenantContextRoundTrip(t *testing.T) {
	_, ok := TenantFromContext(context.Background())
	require.False(t, ok)

	ctx := ContextWithTenant(context.Background(), Tenant{CompanyID: 7, UserID: 3})
	tenant, ok := TenantFromContext(ctx)
	require.True(t, ok)
	require.True(t, tenant.Valid())
	require.Equal(t, int64(3), tenant.UserID)
	require.False(t, Tenant{}.Valid())
}

func TestPaginationOffset(t *testing.T) {
	p := NewPagination(3, 25, 80)
	require.Equal(t, 4, p.TotalPages)
	require.Equal(t, 50, p.Offset())
	require.Equal(t, 0, NewPagination(0, 0, 0).Offset())
}
