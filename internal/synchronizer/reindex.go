package synchronizer

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/blogdesk/search-service/logger"
	"github.com/blogdesk/search-service/shared"
	"github.com/blogdesk/search-service/tenant"
)

// ReindexReport per item outcome of a bulk reindex
type ReindexReport struct {
	TenantID string            `json:"tenantId"`
	Indexed  int               `json:"indexed"`
	Failed   int               `json:"failed"`
	Failures map[string]string `json:"failures,omitempty"`
}

// Reindexer full reindex recovery path. Reads every canonical post from the
// tenant backing store and submits one bulk index operation, never used on
// the streaming path.
type Reindexer struct {
	router *tenant.Router
	engine Indexer
}

// NewReindexer constructor
func NewReindexer(router *tenant.Router, engine Indexer) *Reindexer {
	return &Reindexer{router: router, engine: engine}
}

// postSource subset of mongo.Cursor used by the reindexer
type postSource interface {
	Next(ctx context.Context) bool
	Decode(val interface{}) error
	Err() error
	Close(ctx context.Context) error
}

// ReindexTenant rebuild the tenant slice of the search index from the
// primary store. Blocks until the index engine reports the batch complete,
// callers should impose an external timeout through ctx.
func (r *Reindexer) ReindexTenant(ctx context.Context, tenantID string) (ReindexReport, error) {
	report := ReindexReport{TenantID: tenantID}

	conn, err := r.router.Get(ctx, tenantID)
	if err != nil {
		return report, err
	}
	mongoConn, ok := conn.(*tenant.MongoConn)
	if !ok {
		return report, errors.New("reindex: store handle is not mongo backed")
	}

	cursor, err := mongoConn.DB().Collection("posts").Find(ctx, bson.M{"tenantId": tenantID})
	if err != nil {
		return report, err
	}

	docs, err := r.collect(ctx, cursor, &report)
	if err != nil {
		return report, err
	}
	if len(docs) == 0 {
		return report, nil
	}

	if err := r.engine.BulkIndex(ctx, docs); err != nil {
		return report, err
	}
	report.Indexed = len(docs)
	logger.LogIf("reindex: tenant %s indexed %d documents, %d failed", tenantID, report.Indexed, report.Failed)
	return report, nil
}

// collect drain the cursor, a single document decode failure is counted and
// reported per item, never aborts the batch
func (r *Reindexer) collect(ctx context.Context, cursor postSource, report *ReindexReport) ([]shared.IndexDocument, error) {
	defer cursor.Close(ctx)

	var docs []shared.IndexDocument
	var position int
	for cursor.Next(ctx) {
		position++
		var post shared.Post
		if err := cursor.Decode(&post); err != nil {
			report.Failed++
			if report.Failures == nil {
				report.Failures = make(map[string]string)
			}
			report.Failures[fmt.Sprintf("document#%d", position)] = err.Error()
			continue
		}
		if !post.IsVisible() {
			continue
		}
		docs = append(docs, TransformPost(&post))
	}
	return docs, cursor.Err()
}
