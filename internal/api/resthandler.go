package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"

	"github.com/blogdesk/search-service/config/env"
	"github.com/blogdesk/search-service/helper"
	"github.com/blogdesk/search-service/internal/searchengine"
	"github.com/blogdesk/search-service/internal/synchronizer"
	"github.com/blogdesk/search-service/logger"
	"github.com/blogdesk/search-service/shared"
	"github.com/blogdesk/search-service/tenant"
	"github.com/blogdesk/search-service/tracer"
	"github.com/blogdesk/search-service/wrapper"
)

// QueryEngine read side of the search index consumed by the rest surface
type QueryEngine interface {
	Search(ctx context.Context, params searchengine.SearchParams) (*searchengine.SearchResult, error)
	GetStats(ctx context.Context) (*searchengine.Stats, error)
}

// TenantReindexer full reindex recovery operation
type TenantReindexer interface {
	ReindexTenant(ctx context.Context, tenantID string) (synchronizer.ReindexReport, error)
}

// EventPublisher write side of the event bus
type EventPublisher interface {
	PublishEvent(ctx context.Context, event shared.EventEnvelope) error
}

// RestHandler search rest api
type RestHandler struct {
	engine    QueryEngine
	reindexer TenantReindexer
	publisher EventPublisher
	validate  *validator.Validate
}

// NewRestHandler create new rest handler, publisher may be nil when the
// deployment has no interest in reindex completion events
func NewRestHandler(engine QueryEngine, reindexer TenantReindexer, publisher EventPublisher) *RestHandler {
	return &RestHandler{
		engine:    engine,
		reindexer: reindexer,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// Mount v1 routes, every route requires a resolved tenant
func (h *RestHandler) Mount(root *echo.Group) {
	search := root.Group("/search", TenantMiddleware)
	search.GET("", h.search)
	search.GET("/stats", h.stats)
	search.POST("/reindex", h.reindex)
}

type searchRequest struct {
	Query     string `json:"q"`
	Page      int    `json:"page" validate:"min=1"`
	Limit     int    `json:"limit" validate:"min=1,max=100"`
	Category  string `json:"category"`
	Tag       string `json:"tag"`
	SortBy    string `json:"sortBy" validate:"omitempty,oneof=relevance publishedAt viewCount likeCount"`
	SortOrder string `json:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type searchMeta struct {
	Query            string `json:"query"`
	ProcessingTimeMs int64  `json:"processingTimeMs"`
}

type searchResponse struct {
	Data       []searchengine.SearchHit `json:"data"`
	Pagination shared.Meta              `json:"pagination"`
	Meta       searchMeta               `json:"meta"`
}

func parseSearchRequest(c echo.Context) (req searchRequest, err error) {
	req = searchRequest{
		Query:     c.QueryParam("q"),
		Page:      1,
		Limit:     10,
		Category:  c.QueryParam("category"),
		Tag:       c.QueryParam("tag"),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}
	if raw := c.QueryParam("page"); raw != "" {
		if req.Page, err = strconv.Atoi(raw); err != nil {
			return req, echo.NewHTTPError(http.StatusBadRequest, "page must be numeric")
		}
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if req.Limit, err = strconv.Atoi(raw); err != nil {
			return req, echo.NewHTTPError(http.StatusBadRequest, "limit must be numeric")
		}
	}
	return req, nil
}

func (h *RestHandler) search(c echo.Context) error {
	trace := tracer.StartTrace(c.Request().Context(), "DeliveryREST:Search")
	defer trace.Finish()
	ctx := trace.Context()

	tnt, ok := tenant.FromContext(ctx)
	if !ok {
		return wrapper.NewHTTPResponse(http.StatusBadRequest, "Missing tenant context", shared.ErrTenantUnresolved).JSON(c.Response())
	}
	trace.SetTag("tenant_id", tnt.ID)

	req, err := parseSearchRequest(c)
	if err != nil {
		return wrapper.NewHTTPResponse(http.StatusBadRequest, "Invalid search parameter", err).JSON(c.Response())
	}
	if err := h.validate.Struct(req); err != nil {
		return wrapper.NewHTTPResponse(http.StatusBadRequest, "Invalid search parameter", err).JSON(c.Response())
	}

	result, err := h.engine.Search(ctx, searchengine.SearchParams{
		TenantID:  tnt.ID,
		Query:     req.Query,
		Page:      req.Page,
		Limit:     req.Limit,
		Category:  req.Category,
		Tag:       req.Tag,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		trace.SetError(err)
		if err == shared.ErrPaginationOutOfRange {
			return wrapper.NewHTTPResponse(http.StatusBadRequest, "Requested window exceeds the retrievable hits", err).JSON(c.Response())
		}
		return h.serverError(c, "Search failed", err)
	}

	hits := result.Hits
	if hits == nil {
		hits = []searchengine.SearchHit{}
	}
	return c.JSON(http.StatusOK, searchResponse{
		Data:       hits,
		Pagination: shared.NewMeta(req.Page, req.Limit, int(result.EstimatedTotal)),
		Meta: searchMeta{
			Query:            req.Query,
			ProcessingTimeMs: result.ProcessingTimeMs,
		},
	})
}

func (h *RestHandler) stats(c echo.Context) error {
	trace := tracer.StartTrace(c.Request().Context(), "DeliveryREST:SearchStats")
	defer trace.Finish()

	stats, err := h.engine.GetStats(trace.Context())
	if err != nil {
		trace.SetError(err)
		return h.serverError(c, "Fetch index stats failed", err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *RestHandler) reindex(c echo.Context) error {
	trace := tracer.StartTrace(c.Request().Context(), "DeliveryREST:Reindex")
	defer trace.Finish()
	ctx := trace.Context()

	if c.Request().Header.Get(helper.HeaderInternalRequest) != "true" {
		return wrapper.NewHTTPResponse(http.StatusForbidden, "Forbidden").JSON(c.Response())
	}
	tnt, ok := tenant.FromContext(ctx)
	if !ok {
		return wrapper.NewHTTPResponse(http.StatusBadRequest, "Missing tenant context", shared.ErrTenantUnresolved).JSON(c.Response())
	}
	trace.SetTag("tenant_id", tnt.ID)

	report, err := h.reindexer.ReindexTenant(ctx, tnt.ID)
	if err != nil {
		trace.SetError(err)
		return h.serverError(c, "Reindex failed", err)
	}

	if h.publisher != nil {
		event := shared.NewEventEnvelope(shared.EventReindexCompleted, tnt.ID, tnt.ID)
		event.Data.Extra = map[string]interface{}{"indexed": report.Indexed, "failed": report.Failed}
		if err := h.publisher.PublishEvent(ctx, event); err != nil {
			// completion event is advisory, reindex itself already succeeded
			logger.LogEf("reindex: publish completion event: %v", err)
		}
	}
	return wrapper.NewHTTPResponse(http.StatusOK, "Reindex complete", report).JSON(c.Response())
}

// serverError internal failure detail stays in the log, the response body only
// carries it on debug deployments
func (h *RestHandler) serverError(c echo.Context, message string, err error) error {
	logger.LogE(message + ": " + err.Error())
	if env.BaseEnv().DebugMode {
		return wrapper.NewHTTPResponse(http.StatusInternalServerError, message, err).JSON(c.Response())
	}
	return wrapper.NewHTTPResponse(http.StatusInternalServerError, message).JSON(c.Response())
}
