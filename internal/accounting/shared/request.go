package shared

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

// DateLayout is the wire format of ledger dates.
const DateLayout = "2006-01-02"

// RequireTenant fetches the request tenant or writes a 400 problem.
func RequireTenant(w http.ResponseWriter, r *http.Request) (platformshared.Tenant, bool) {
	tenant, ok := platformshared.TenantFromContext(r.Context())
	if !ok || !tenant.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Tenant Required", "X-Company-ID header missing")
		return platformshared.Tenant{}, false
	}
	return tenant, true
}

// URLID parses a positive integer path parameter.
func URLID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", httpx.ErrValidation, name)
	}
	return id, nil
}

// QueryDate parses an optional YYYY-MM-DD query parameter.
func QueryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", httpx.ErrValidation, name)
	}
	return &parsed, nil
}

// QueryID parses an optional positive integer query parameter.
func QueryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: invalid %s", httpx.ErrValidation, name)
	}
	return &id, nil
}
