package shared

import "time"

// Post status and visibility values as stored by the content service
const (
	PostStatusPublished  = "published"
	PostVisibilityPublic = "public"
)

// PostAuthor relational author field, denormalized at transform time
type PostAuthor struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
}

// PostCategory relational category field, denormalized at transform time
type PostCategory struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
	Slug string `json:"slug" bson:"slug"`
}

// Post canonical entity representation from the owning content service.
// Always refetched from the source of truth, never reconstructed from events.
type Post struct {
	ID          string       `json:"id" bson:"_id"`
	TenantID    string       `json:"tenantId" bson:"tenantId"`
	Title       string       `json:"title" bson:"title"`
	Slug        string       `json:"slug" bson:"slug"`
	Excerpt     string       `json:"excerpt" bson:"excerpt"`
	Content     string       `json:"content" bson:"content"`
	Status      string       `json:"status" bson:"status"`
	Visibility  string       `json:"visibility" bson:"visibility"`
	Author      PostAuthor   `json:"author" bson:"author"`
	Category    PostCategory `json:"category" bson:"category"`
	Tags        []string     `json:"tags" bson:"tags"`
	PublishedAt *time.Time   `json:"publishedAt" bson:"publishedAt"`
	ViewCount   int64        `json:"viewCount" bson:"viewCount"`
	LikeCount   int64        `json:"likeCount" bson:"likeCount"`
	CreatedAt   time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// IsVisible report whether the post may appear in public search results
func (p *Post) IsVisible() bool {
	return p.Status == PostStatusPublished && p.Visibility == PostVisibilityPublic
}
