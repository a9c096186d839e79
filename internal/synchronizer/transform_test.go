package synchronizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/blogdesk/search-service/shared"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "Testcase #1: nested tags",
			markup: "<article><h1>Hello</h1><p>World <strong>bold</strong></p></article>",
			want:   "Hello World bold",
		},
		{
			name:   "Testcase #2: entities and whitespace runs",
			markup: "Fish &amp; Chips\n\n\t <br/>   recipe",
			want:   "Fish & Chips recipe",
		},
		{
			name:   "Testcase #3: script and style blocks dropped entirely",
			markup: "<style>p{color:red}</style><p>visible</p><script>alert('x')</script>",
			want:   "visible",
		},
		{
			name:   "Testcase #4: plain text untouched",
			markup: "already plain",
			want:   "already plain",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkup(tt.markup))
		})
	}
}

func TestTransformPost(t *testing.T) {
	publishedAt := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	post := &shared.Post{
		ID:          "post-42",
		TenantID:    "t1",
		Title:       "Hello",
		Excerpt:     "<p>Short &quot;intro&quot;</p>",
		Content:     "<h1>Hello</h1><p>Body text</p>",
		Status:      shared.PostStatusPublished,
		Visibility:  shared.PostVisibilityPublic,
		Author:      shared.PostAuthor{ID: "a1", Name: "Ada"},
		Category:    shared.PostCategory{ID: "c1", Name: "News", Slug: "news"},
		Tags:        []string{"go", "search"},
		PublishedAt: &publishedAt,
		ViewCount:   7,
		LikeCount:   3,
	}

	doc := TransformPost(post)

	assert.Equal(t, "post-42", doc.ID)
	assert.Equal(t, "t1", doc.TenantID)
	assert.Equal(t, `Short "intro"`, doc.Excerpt)
	assert.Equal(t, "Hello Body text", doc.Content)
	assert.Equal(t, "Ada", doc.AuthorName)
	assert.Equal(t, "News", doc.CategoryName)
	assert.Equal(t, "news", doc.CategorySlug)
	assert.Equal(t, publishedAt.Unix(), doc.PublishedAt)
	assert.Equal(t, int64(7), doc.ViewCount)
}

func TestTransformPostNilFields(t *testing.T) {
	doc := TransformPost(&shared.Post{ID: "post-1", TenantID: "t1"})
	assert.Zero(t, doc.PublishedAt)
	assert.NotNil(t, doc.Tags)
	assert.Empty(t, doc.Tags)
}
