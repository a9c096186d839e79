package synchronizer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogdesk/search-service/shared"
)

// fakeAccessor canonical source of truth for tests
type fakeAccessor struct {
	posts    map[string]*shared.Post
	fetchErr error
	calls    int
}

func (f *fakeAccessor) FetchPost(ctx context.Context, tenantID, entityID string) (*shared.Post, error) {
	f.calls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	post, ok := f.posts[entityID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *post
	return &copied, nil
}

// fakeEngine in-memory index
type fakeEngine struct {
	docs      map[string]shared.IndexDocument
	upsertErr error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{docs: make(map[string]shared.IndexDocument)}
}

func (f *fakeEngine) Upsert(ctx context.Context, doc shared.IndexDocument) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeEngine) Delete(ctx context.Context, id string) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeEngine) BulkIndex(ctx context.Context, docs []shared.IndexDocument) error {
	for _, doc := range docs {
		f.docs[doc.ID] = doc
	}
	return nil
}

func eventBody(t *testing.T, eventType, tenantID, entityID string) []byte {
	t.Helper()
	body, err := json.Marshal(shared.NewEventEnvelope(eventType, tenantID, entityID))
	require.NoError(t, err)
	return body
}

func visiblePost(id, tenantID, title string) *shared.Post {
	publishedAt := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	return &shared.Post{
		ID:          id,
		TenantID:    tenantID,
		Title:       title,
		Content:     "<p>" + title + " body</p>",
		Status:      shared.PostStatusPublished,
		Visibility:  shared.PostVisibilityPublic,
		PublishedAt: &publishedAt,
	}
}

func newTestSynchronizer(accessor *fakeAccessor, engine *fakeEngine) *Synchronizer {
	return New(accessor, engine, time.Second)
}

func TestUpsertIdempotence(t *testing.T) {
	accessor := &fakeAccessor{posts: map[string]*shared.Post{"post-1": visiblePost("post-1", "t1", "Hello")}}
	engine := newFakeEngine()
	sync := newTestSynchronizer(accessor, engine)

	body := eventBody(t, shared.EventPostCreated, "t1", "post-1")
	require.NoError(t, sync.HandlePostUpserted(context.Background(), body))
	stateAfterFirst := engine.docs["post-1"]

	// same event delivered twice, index state is unchanged
	require.NoError(t, sync.HandlePostUpserted(context.Background(), body))
	assert.Equal(t, stateAfterFirst, engine.docs["post-1"])
	assert.Len(t, engine.docs, 1)
}

func TestConvergenceUnderReordering(t *testing.T) {
	post := visiblePost("post-1", "t1", "Final title")
	accessor := &fakeAccessor{posts: map[string]*shared.Post{"post-1": post}}

	// updated then created, logically out of order
	reordered := newFakeEngine()
	sync := newTestSynchronizer(accessor, reordered)
	require.NoError(t, sync.HandlePostUpserted(context.Background(), eventBody(t, shared.EventPostUpdated, "t1", "post-1")))
	require.NoError(t, sync.HandlePostUpserted(context.Background(), eventBody(t, shared.EventPostCreated, "t1", "post-1")))

	// correct order
	ordered := newFakeEngine()
	sync = newTestSynchronizer(accessor, ordered)
	require.NoError(t, sync.HandlePostUpserted(context.Background(), eventBody(t, shared.EventPostCreated, "t1", "post-1")))
	require.NoError(t, sync.HandlePostUpserted(context.Background(), eventBody(t, shared.EventPostUpdated, "t1", "post-1")))

	// both re-derive from the same canonical source, end state is identical
	assert.Equal(t, ordered.docs, reordered.docs)
}

func TestNotFoundIsBenignNoOp(t *testing.T) {
	accessor := &fakeAccessor{posts: map[string]*shared.Post{}}
	engine := newFakeEngine()
	sync := newTestSynchronizer(accessor, engine)

	err := sync.HandlePostUpserted(context.Background(), eventBody(t, shared.EventPostCreated, "t1", "ghost"))
	assert.NoError(t, err, "missing canonical entity must be acknowledged, not dead lettered")
	assert.Empty(t, engine.docs)
}

func TestTransientFetchFailurePropagates(t *testing.T) {
	accessor := &fakeAccessor{fetchErr: errors.New("content service unreachable")}
	engine := newFakeEngine()
	sync := newTestSynchronizer(accessor, engine)

	err := sync.HandlePostUpserted(context.Background(), eventBody(t, shared.EventPostUpdated, "t1", "post-1"))
	assert.Error(t, err, "transient failure must reach the consumer so the message is dead lettered")
	assert.Empty(t, engine.docs, "a fetch failure is never interpreted as a deletion signal")
}

func TestVisibilityInvariant(t *testing.T) {
	post := visiblePost("post-1", "t1", "Hello")
	accessor := &fakeAccessor{posts: map[string]*shared.Post{"post-1": post}}
	engine := newFakeEngine()
	sync := newTestSynchronizer(accessor, engine)

	require.NoError(t, sync.HandlePostUpserted(context.Background(), eventBody(t, shared.EventPostPublished, "t1", "post-1")))
	assert.Contains(t, engine.docs, "post-1")

	// canonical entity becomes private, the next event flips index membership
	post.Visibility = "private"
	require.NoError(t, sync.HandlePostUpserted(context.Background(), eventBody(t, shared.EventPostUpdated, "t1", "post-1")))
	assert.NotContains(t, engine.docs, "post-1")

	post.Visibility = shared.PostVisibilityPublic
	require.NoError(t, sync.HandlePostUpserted(context.Background(), eventBody(t, shared.EventPostUpdated, "t1", "post-1")))
	assert.Contains(t, engine.docs, "post-1")
}

func TestDeleteIdempotence(t *testing.T) {
	accessor := &fakeAccessor{posts: map[string]*shared.Post{}}
	engine := newFakeEngine()
	sync := newTestSynchronizer(accessor, engine)

	err := sync.HandlePostDeleted(context.Background(), eventBody(t, shared.EventPostDeleted, "t1", "never-indexed"))
	assert.NoError(t, err, "deleting a non indexed id is a no-op")
}

func TestMalformedEventAcknowledged(t *testing.T) {
	accessor := &fakeAccessor{posts: map[string]*shared.Post{}}
	engine := newFakeEngine()
	sync := newTestSynchronizer(accessor, engine)

	assert.NoError(t, sync.HandlePostUpserted(context.Background(), []byte(`not json`)))
	assert.NoError(t, sync.HandlePostUpserted(context.Background(), []byte(`{"eventType":"post.created"}`)))
	assert.NoError(t, sync.HandlePostDeleted(context.Background(), []byte(`{`)))
	assert.Zero(t, accessor.calls)
}

func TestScenarioPost42(t *testing.T) {
	post := visiblePost("post-42", "t1", "Hello")
	accessor := &fakeAccessor{posts: map[string]*shared.Post{"post-42": post}}
	engine := newFakeEngine()
	sync := newTestSynchronizer(accessor, engine)

	// post.created triggers fetch and upsert
	require.NoError(t, sync.HandlePostUpserted(context.Background(), eventBody(t, shared.EventPostCreated, "t1", "post-42")))
	doc := engine.docs["post-42"]
	assert.Equal(t, "post-42", doc.ID)
	assert.Equal(t, "t1", doc.TenantID)
	assert.Equal(t, "Hello", doc.Title)

	// no-op update re-applies the same upsert, index unchanged
	require.NoError(t, sync.HandlePostUpserted(context.Background(), eventBody(t, shared.EventPostUpdated, "t1", "post-42")))
	assert.Equal(t, doc, engine.docs["post-42"])

	// entity becomes private, next update deletes the document
	post.Visibility = "private"
	require.NoError(t, sync.HandlePostUpserted(context.Background(), eventBody(t, shared.EventPostUpdated, "t1", "post-42")))
	assert.NotContains(t, engine.docs, "post-42")
}
