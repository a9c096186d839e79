package synchronizer

import (
	"context"
	"errors"
	"time"

	"github.com/blogdesk/search-service/logger"
	"github.com/blogdesk/search-service/shared"
)

// Indexer write path of the search index engine
type Indexer interface {
	Upsert(ctx context.Context, doc shared.IndexDocument) error
	Delete(ctx context.Context, id string) error
	// BulkIndex submit one batch and block until the engine reports it complete
	BulkIndex(ctx context.Context, docs []shared.IndexDocument) error
}

// Synchronizer converts domain events into canonical-fetch-and-reconcile
// operations against the search index. Any two deliveries for the same entity
// converge to the same index document because both re-derive it from the same
// canonical source.
type Synchronizer struct {
	accessor     CanonicalAccessor
	engine       Indexer
	fetchTimeout time.Duration
}

// New synchronizer constructor
func New(accessor CanonicalAccessor, engine Indexer, fetchTimeout time.Duration) *Synchronizer {
	return &Synchronizer{
		accessor:     accessor,
		engine:       engine,
		fetchTimeout: fetchTimeout,
	}
}

// HandlePostUpserted consume post.created, post.updated and post.published events
func (s *Synchronizer) HandlePostUpserted(ctx context.Context, message []byte) error {
	event, err := shared.DecodeEventEnvelope(message)
	if err != nil {
		// malformed payload, log and acknowledge without action
		logger.LogEf("synchronizer: drop malformed event: %v", err)
		return nil
	}
	return s.reconcile(ctx, event)
}

// HandlePostDeleted consume post.deleted events, unconditionally delete the
// index document. Deleting a non existent document is not an error.
func (s *Synchronizer) HandlePostDeleted(ctx context.Context, message []byte) error {
	event, err := shared.DecodeEventEnvelope(message)
	if err != nil {
		logger.LogEf("synchronizer: drop malformed event: %v", err)
		return nil
	}
	return s.engine.Delete(ctx, event.Data.EntityID)
}

func (s *Synchronizer) reconcile(ctx context.Context, event shared.EventEnvelope) error {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	post, err := s.accessor.FetchPost(fetchCtx, event.TenantID, event.Data.EntityID)
	if errors.Is(err, shared.ErrNotFound) {
		// entity may have been deleted after the event was queued, a later
		// deleted event converges state
		logger.LogIf("synchronizer: entity %s not found for event %s, skipping", event.Data.EntityID, event.EventID)
		return nil
	}
	if err != nil {
		// transient failure, never interpreted as a deletion signal
		return err
	}

	if !post.IsVisible() {
		return s.engine.Delete(ctx, post.ID)
	}
	return s.engine.Upsert(ctx, TransformPost(post))
}
