package shared

import "errors"

// Error taxonomy for the subsystem. Transient infrastructure failures are
// plain errors from the underlying clients and resolve via process restart
// or bus redelivery, never via an in-process retry loop.
var (
	// ErrTenantUnresolved required tenant context missing, fail fast with a client error
	ErrTenantUnresolved = errors.New("tenant: cannot resolve tenant from request context")

	// ErrNotFound canonical entity missing at fetch time, benign no-op on the reconcile path
	ErrNotFound = errors.New("canonical entity not found")

	// ErrMalformedEvent undecodable or incomplete event payload, logged and acknowledged without action
	ErrMalformedEvent = errors.New("event envelope missing required fields")

	// ErrPaginationOutOfRange requested window exceeds the index engine retrievable hits cap
	ErrPaginationOutOfRange = errors.New("requested page is beyond the maximum retrievable results")
)
