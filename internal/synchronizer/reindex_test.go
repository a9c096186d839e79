package synchronizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogdesk/search-service/shared"
)

type fakePostSource struct {
	posts     []*shared.Post
	decodeErr map[int]error
	pos       int
	closed    bool
}

func (f *fakePostSource) Next(ctx context.Context) bool {
	return f.pos < len(f.posts)
}

func (f *fakePostSource) Decode(val interface{}) error {
	idx := f.pos
	f.pos++
	if err := f.decodeErr[idx]; err != nil {
		return err
	}
	*(val.(*shared.Post)) = *f.posts[idx]
	return nil
}

func (f *fakePostSource) Err() error              { return nil }
func (f *fakePostSource) Close(context.Context) error { f.closed = true; return nil }

func TestCollectSkipsFailedDocuments(t *testing.T) {
	source := &fakePostSource{
		posts: []*shared.Post{
			visiblePost("post-1", "t1", "First"),
			visiblePost("post-2", "t1", "Broken"),
			visiblePost("post-3", "t1", "Third"),
		},
		decodeErr: map[int]error{1: errors.New("corrupt bson document")},
	}

	reindexer := &Reindexer{engine: newFakeEngine()}
	report := ReindexReport{TenantID: "t1"}
	docs, err := reindexer.collect(context.Background(), source, &report)

	require.NoError(t, err, "a single document failure must not abort the batch")
	assert.Len(t, docs, 2)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Failures, "document#2")
	assert.True(t, source.closed)
}

func TestCollectSkipsNonVisiblePosts(t *testing.T) {
	private := visiblePost("post-2", "t1", "Hidden")
	private.Visibility = "private"
	source := &fakePostSource{
		posts: []*shared.Post{visiblePost("post-1", "t1", "Public"), private},
	}

	reindexer := &Reindexer{engine: newFakeEngine()}
	report := ReindexReport{TenantID: "t1"}
	docs, err := reindexer.collect(context.Background(), source, &report)

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "post-1", docs[0].ID)
	assert.Zero(t, report.Failed)
}
