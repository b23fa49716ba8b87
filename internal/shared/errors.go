package shared

import "errors"

// ErrTenantRequired indicates a call without a company scope.
var ErrTenantRequired = errors.New("tenant company required")
