package tenant

import (
	"context"
	"net/http"

	"github.com/blogdesk/search-service/config/env"
	"github.com/blogdesk/search-service/helper"
	"github.com/blogdesk/search-service/shared"
)

// Tenant resolved per request or event, never persisted by this subsystem
type Tenant struct {
	ID          string
	DisplayName string
}

type contextKey string

const tenantContextKey contextKey = "tenant"

// WithContext inject resolved tenant to context
func WithContext(ctx context.Context, t Tenant) context.Context {
	return context.WithValue(ctx, tenantContextKey, t)
}

// FromContext get resolved tenant from context
func FromContext(ctx context.Context) (Tenant, bool) {
	t, ok := ctx.Value(tenantContextKey).(Tenant)
	return t, ok
}

// ResolveFromHTTP derive tenant identity from request context.
// Precedence: x-tenant-id header (authoritative), x-tenant-name,
// host subdomain, then DEFAULT_TENANT_ID environment fallback.
func ResolveFromHTTP(req *http.Request) (Tenant, error) {
	t := Tenant{DisplayName: req.Header.Get(helper.HeaderTenantName)}

	if id := req.Header.Get(helper.HeaderTenantID); id != "" {
		t.ID = id
		return t, nil
	}
	if name := req.Header.Get(helper.HeaderTenantName); name != "" {
		t.ID = name
		return t, nil
	}
	if sub := helper.SubdomainFromHost(req.Host); sub != "" {
		t.ID = sub
		return t, nil
	}
	if fallback := env.BaseEnv().DefaultTenantID; fallback != "" {
		t.ID = fallback
		return t, nil
	}

	return t, shared.ErrTenantUnresolved
}

// ResolveFromEvent derive tenant identity from a domain event envelope
func ResolveFromEvent(e shared.EventEnvelope) (Tenant, error) {
	if e.TenantID == "" {
		return Tenant{}, shared.ErrTenantUnresolved
	}
	return Tenant{ID: e.TenantID}, nil
}
