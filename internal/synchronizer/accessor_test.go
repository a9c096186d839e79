package synchronizer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/blogdesk/search-service/helper"
	"github.com/blogdesk/search-service/shared"
)

func TestFetchPost(t *testing.T) {
	var gotHeader http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		switch r.URL.Path {
		case "/internal/entities/post-42":
			w.Header().Set(helper.HeaderContentType, helper.HeaderMIMEApplicationJSON)
			w.Write([]byte(`{"data": {"id": "post-42", "tenantId": "tenant-1", "title": "Hello", "status": "published", "visibility": "public"}}`))
		case "/internal/entities/gone":
			w.WriteHeader(http.StatusNotFound)
		case "/internal/entities/broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "/internal/entities/weird":
			w.Write([]byte(`{"data": {}}`))
		}
	}))
	defer srv.Close()

	accessor := NewContentAccessor(srv.URL, 2*time.Second)

	t.Run("Testcase #1: fetch canonical entity", func(t *testing.T) {
		post, err := accessor.FetchPost(context.Background(), "tenant-1", "post-42")
		assert.NoError(t, err)
		assert.Equal(t, "post-42", post.ID)
		assert.True(t, post.IsVisible())
		assert.Equal(t, "true", gotHeader.Get(helper.HeaderInternalRequest))
		assert.Equal(t, "tenant-1", gotHeader.Get(helper.HeaderTenantID))
	})

	t.Run("Testcase #2: 404 is authoritative absence", func(t *testing.T) {
		_, err := accessor.FetchPost(context.Background(), "tenant-1", "gone")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Testcase #3: server failure is transient, not absence", func(t *testing.T) {
		_, err := accessor.FetchPost(context.Background(), "tenant-1", "broken")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Testcase #4: response without entity id rejected", func(t *testing.T) {
		_, err := accessor.FetchPost(context.Background(), "tenant-1", "weird")
		assert.Error(t, err)
	})
}
