package tenant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blogdesk/search-service/helper"
	"github.com/blogdesk/search-service/logger"
	"github.com/blogdesk/search-service/shared"
)

// StoreConn handle to a tenant backing store. Replaced wholesale on
// configuration change, never mutated in place.
type StoreConn interface {
	// URI the connection string this handle was dialed with
	URI() string
	// Release gracefully close the underlying client
	Release(ctx context.Context) error
}

// ConnectorFunc dial a backing store, injected so tests can fake the handle
type ConnectorFunc func(ctx context.Context, uri string) (StoreConn, error)

// ResolverFunc layered lookup from tenant id to backing store url,
// second return is false when the tenant is unknown and has no default
type ResolverFunc func(tenantID string) (uri string, ok bool)

type connEntry struct {
	uri      string
	conn     StoreConn
	lastUsed time.Time
}

// Router maps a tenant identifier to a cached backing store handle,
// at most one active handle per tenant
type Router struct {
	mu      sync.Mutex
	connect ConnectorFunc
	resolve ResolverFunc
	entries map[string]*connEntry
}

// NewRouter router constructor
func NewRouter(resolve ResolverFunc, connect ConnectorFunc) *Router {
	return &Router{
		connect: connect,
		resolve: resolve,
		entries: make(map[string]*connEntry),
	}
}

// Get return the cached handle for the tenant, dialing lazily on first use
// and rotating the handle when the resolved url has changed. The new handle
// is stored before the old one is released, callers are never left without
// a usable handle.
func (r *Router) Get(ctx context.Context, tenantID string) (StoreConn, error) {
	if tenantID == "" {
		return nil, shared.ErrTenantUnresolved
	}
	uri, ok := r.resolve(tenantID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown tenant %q", shared.ErrTenantUnresolved, tenantID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, exists := r.entries[tenantID]; exists && entry.uri == uri {
		entry.lastUsed = time.Now()
		return entry.conn, nil
	}

	conn, err := r.connect(ctx, uri)
	if err != nil {
		return nil, err
	}

	if old, exists := r.entries[tenantID]; exists {
		logger.LogYellow(fmt.Sprintf("tenant router: rotating connection for tenant %q (%s -> %s)",
			tenantID, helper.MaskingPasswordURL(old.uri), helper.MaskingPasswordURL(uri)))
		go r.releaseOld(tenantID, old.conn)
	} else {
		logger.LogGreen(fmt.Sprintf("tenant router: new connection for tenant %q (%s)",
			tenantID, helper.MaskingPasswordURL(uri)))
	}

	r.entries[tenantID] = &connEntry{uri: uri, conn: conn, lastUsed: time.Now()}
	return conn, nil
}

// releaseOld best effort graceful release, failure is logged and non fatal
func (r *Router) releaseOld(tenantID string, conn StoreConn) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.Release(ctx); err != nil {
		logger.LogEf("tenant router: release previous connection for tenant %s: %v", tenantID, err)
	}
}

// ReleaseAll release every cached handle, must be awaited before process
// shutdown completes
func (r *Router) ReleaseAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mErrs := helper.NewMultiError()
	for tenantID, entry := range r.entries {
		mErrs.Append(tenantID, entry.conn.Release(ctx))
		delete(r.entries, tenantID)
	}
	if mErrs.HasError() {
		return mErrs
	}
	return nil
}
