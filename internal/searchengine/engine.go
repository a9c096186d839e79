package searchengine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meilisearch/meilisearch-go"

	"github.com/blogdesk/search-service/config/env"
	"github.com/blogdesk/search-service/logger"
	"github.com/blogdesk/search-service/shared"
	"github.com/blogdesk/search-service/tracer"
)

// FormattedHit highlighted projection of a hit. The engine stringifies every
// value inside _formatted, so this carries only the highlighted text
// attributes and none of the numeric document fields.
type FormattedHit struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content"`
}

// SearchHit index document plus its highlighted projection
type SearchHit struct {
	shared.IndexDocument
	Formatted *FormattedHit `json:"_formatted,omitempty"`
}

// SearchResult ranked hits with estimated total and measured engine latency
type SearchResult struct {
	Hits             []SearchHit
	EstimatedTotal   int64
	ProcessingTimeMs int64
}

// Stats index level statistics
type Stats struct {
	NumberOfDocuments int64            `json:"numberOfDocuments"`
	IsIndexing        bool             `json:"isIndexing"`
	FieldDistribution map[string]int64 `json:"fieldDistribution"`
}

// Engine meilisearch backed search query engine and index writer.
// One index per deployment environment tier, tenants share it and are
// isolated purely by the mandatory query time tenant filter.
type Engine struct {
	client       *meilisearch.Client
	index        *meilisearch.Index
	maxTotalHits int64
}

// NewEngine setup meilisearch client and index settings, configuration from
// MEILISEARCH_* environment
func NewEngine() *Engine {
	deferFunc := logger.LogWithDefer("Load Meilisearch engine configuration... ")
	defer deferFunc()

	cfg := env.BaseEnv().Meilisearch
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   cfg.Host,
		APIKey: cfg.APIKey,
	})

	engine := &Engine{
		client:       client,
		index:        client.Index(cfg.IndexName),
		maxTotalHits: cfg.MaxTotalHits,
	}
	engine.ensureIndex(cfg.IndexName)
	return engine
}

func (e *Engine) ensureIndex(indexName string) {
	if task, err := e.client.CreateIndex(&meilisearch.IndexConfig{
		Uid: indexName, PrimaryKey: "id",
	}); err == nil {
		// task fails with index_already_exists on every boot after the first
		e.client.WaitForTask(task.TaskUID)
	}

	task, err := e.index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: []string{"title", "excerpt", "content", "tags", "categoryName", "authorName"},
		FilterableAttributes: []string{"tenantId", "status", "categorySlug", "tags"},
		SortableAttributes:   []string{"publishedAt", "viewCount", "likeCount"},
		Pagination: &meilisearch.Pagination{
			MaxTotalHits: e.maxTotalHits,
		},
	})
	if err != nil {
		panic("Meilisearch update settings: " + err.Error())
	}
	if _, err := e.client.WaitForTask(task.TaskUID); err != nil {
		panic("Meilisearch apply settings: " + err.Error())
	}
}

// Upsert enqueue add-or-replace for one document, primary key id
func (e *Engine) Upsert(ctx context.Context, doc shared.IndexDocument) (err error) {
	trace := tracer.StartTrace(ctx, "meilisearch:upsert_document")
	defer func() {
		trace.SetError(err)
		trace.Finish()
	}()
	trace.SetTag("document_id", doc.ID)

	_, err = e.index.AddDocuments([]shared.IndexDocument{doc}, "id")
	return err
}

// Delete enqueue document deletion, deleting an absent id is not an error
func (e *Engine) Delete(ctx context.Context, id string) (err error) {
	trace := tracer.StartTrace(ctx, "meilisearch:delete_document")
	defer func() {
		trace.SetError(err)
		trace.Finish()
	}()
	trace.SetTag("document_id", id)

	_, err = e.index.DeleteDocument(id)
	return err
}

// BulkIndex submit one batch and block until the engine reports the task
// complete, only used by the full reindex recovery path
func (e *Engine) BulkIndex(ctx context.Context, docs []shared.IndexDocument) (err error) {
	trace := tracer.StartTrace(ctx, "meilisearch:bulk_index")
	defer func() {
		trace.SetError(err)
		trace.Finish()
	}()
	trace.SetTag("batch_size", len(docs))

	task, err := e.index.AddDocuments(docs, "id")
	if err != nil {
		return err
	}
	finished, err := e.client.WaitForTask(task.TaskUID)
	if err != nil {
		return err
	}
	if finished.Status != meilisearch.TaskStatusSucceeded {
		return fmt.Errorf("meilisearch: bulk task %d finished with status %s: %s",
			task.TaskUID, finished.Status, finished.Error.Message)
	}
	return nil
}

// Search run a tenant and visibility scoped query, ranked by the engine
// unless an explicit sort field is requested
func (e *Engine) Search(ctx context.Context, params SearchParams) (result *SearchResult, err error) {
	if params.TenantID == "" {
		return nil, shared.ErrTenantUnresolved
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 10
	}
	offset := int64(params.Page-1) * int64(params.Limit)
	if offset+int64(params.Limit) > e.maxTotalHits {
		// beyond the retrievable hits cap, rejected rather than silently wrapped
		return nil, shared.ErrPaginationOutOfRange
	}

	trace := tracer.StartTrace(ctx, "meilisearch:search")
	defer func() {
		trace.SetError(err)
		trace.Finish()
	}()
	trace.SetTag("tenant_id", params.TenantID)
	trace.SetTag("query", params.Query)

	resp, err := e.index.Search(params.Query, &meilisearch.SearchRequest{
		Offset:                offset,
		Limit:                 int64(params.Limit),
		Filter:                BuildFilter(params),
		Sort:                  BuildSort(params),
		AttributesToHighlight: []string{"title", "excerpt", "content"},
		HighlightPreTag:       "<em>",
		HighlightPostTag:      "</em>",
	})
	if err != nil {
		return nil, err
	}

	result = &SearchResult{
		EstimatedTotal:   resp.EstimatedTotalHits,
		ProcessingTimeMs: resp.ProcessingTimeMs,
	}
	if result.Hits, err = decodeHits(resp.Hits); err != nil {
		return nil, err
	}
	return result, nil
}

// decodeHits decode raw engine hits into the explicit document type before
// trusting shape
func decodeHits(rawHits []interface{}) ([]SearchHit, error) {
	raw, err := json.Marshal(rawHits)
	if err != nil {
		return nil, err
	}
	var hits []SearchHit
	if err := json.Unmarshal(raw, &hits); err != nil {
		return nil, err
	}
	return hits, nil
}

// GetStats index statistics for the stats surface
func (e *Engine) GetStats(ctx context.Context) (*Stats, error) {
	trace := tracer.StartTrace(ctx, "meilisearch:get_stats")
	defer trace.Finish()

	stats, err := e.index.GetStats()
	if err != nil {
		trace.SetError(err)
		return nil, err
	}
	return &Stats{
		NumberOfDocuments: stats.NumberOfDocuments,
		IsIndexing:        stats.IsIndexing,
		FieldDistribution: stats.FieldDistribution,
	}, nil
}
