package searchengine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blogdesk/search-service/shared"
)

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name   string
		params SearchParams
		want   string
	}{
		{
			name:   "Testcase #1: tenant and visibility scope always injected",
			params: SearchParams{TenantID: "t1"},
			want:   `tenantId = "t1" AND status = "published"`,
		},
		{
			name:   "Testcase #2: category filter ANDed after the scope",
			params: SearchParams{TenantID: "t1", Category: "news"},
			want:   `tenantId = "t1" AND status = "published" AND categorySlug = "news"`,
		},
		{
			name:   "Testcase #3: category and tag filter",
			params: SearchParams{TenantID: "t1", Category: "news", Tag: "go"},
			want:   `tenantId = "t1" AND status = "published" AND categorySlug = "news" AND tags = "go"`,
		},
		{
			name:   "Testcase #4: another tenant can never share a scope",
			params: SearchParams{TenantID: "t2"},
			want:   `tenantId = "t2" AND status = "published"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildFilter(tt.params))
		})
	}
}

func TestBuildSort(t *testing.T) {
	assert.Nil(t, BuildSort(SearchParams{}), "omitted sort falls back to engine ranking")
	assert.Nil(t, BuildSort(SearchParams{SortBy: SortRelevance}))
	assert.Equal(t, []string{"publishedAt:desc"}, BuildSort(SearchParams{SortBy: "publishedAt"}))
	assert.Equal(t, []string{"viewCount:asc"}, BuildSort(SearchParams{SortBy: "viewCount", SortOrder: "asc"}))
	assert.Equal(t, []string{"likeCount:desc"}, BuildSort(SearchParams{SortBy: "likeCount", SortOrder: "bogus"}))
	assert.Nil(t, BuildSort(SearchParams{SortBy: "secretField"}), "field outside the whitelist falls back to relevance")
}

func TestSearchRejectsPaginationBeyondCap(t *testing.T) {
	engine := &Engine{maxTotalHits: 100}

	_, err := engine.Search(context.Background(), SearchParams{TenantID: "t1", Page: 11, Limit: 10})
	assert.ErrorIs(t, err, shared.ErrPaginationOutOfRange)

	_, err = engine.Search(context.Background(), SearchParams{TenantID: "t1", Page: 6, Limit: 20})
	assert.ErrorIs(t, err, shared.ErrPaginationOutOfRange)
}

func TestSearchRequiresTenant(t *testing.T) {
	engine := &Engine{maxTotalHits: 100}

	_, err := engine.Search(context.Background(), SearchParams{Query: "hello"})
	assert.ErrorIs(t, err, shared.ErrTenantUnresolved)
}
