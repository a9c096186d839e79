package synchronizer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gojektech/heimdall/v6"
	"github.com/gojektech/heimdall/v6/httpclient"

	"github.com/blogdesk/search-service/helper"
	"github.com/blogdesk/search-service/shared"
	"github.com/blogdesk/search-service/tracer"
)

// CanonicalAccessor fetch the authoritative entity representation from the
// owning service. The event payload is never trusted as state, reconcile
// always goes through this accessor.
type CanonicalAccessor interface {
	FetchPost(ctx context.Context, tenantID, entityID string) (*shared.Post, error)
}

// ContentAccessor canonical accessor backed by the content service internal endpoint
type ContentAccessor struct {
	client  *httpclient.Client
	baseURL string
}

// NewContentAccessor constructor, bounded retry with constant backoff
func NewContentAccessor(baseURL string, timeout time.Duration) *ContentAccessor {
	backoff := heimdall.NewConstantBackoff(500*time.Millisecond, 5*time.Millisecond)
	retrier := heimdall.NewRetrier(backoff)

	return &ContentAccessor{
		baseURL: baseURL,
		client: httpclient.NewClient(
			httpclient.WithHTTPTimeout(timeout),
			httpclient.WithRetrier(retrier),
			httpclient.WithRetryCount(2),
		),
	}
}

// FetchPost get canonical post, 404 means authoritative absence (ErrNotFound),
// any other failure is transient infrastructure
func (a *ContentAccessor) FetchPost(ctx context.Context, tenantID, entityID string) (post *shared.Post, err error) {
	url := fmt.Sprintf("%s/internal/entities/%s", a.baseURL, entityID)

	trace := tracer.StartTrace(ctx, "content_service:fetch_post")
	defer func() {
		trace.SetError(err)
		trace.Finish()
	}()
	trace.SetTag("tenant_id", tenantID)
	trace.SetTag("entity_id", entityID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(helper.HeaderInternalRequest, "true")
	req.Header.Set(helper.HeaderTenantID, tenantID)
	trace.InjectHTTPHeader(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// normalize the transport shape to one owned byte buffer at the boundary
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	trace.SetTag("response.code", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, shared.ErrNotFound
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("content service: %s", resp.Status)
	}

	var payload struct {
		Data shared.Post `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if payload.Data.ID == "" {
		return nil, fmt.Errorf("content service: unexpected response shape for entity %s", entityID)
	}
	return &payload.Data, nil
}
