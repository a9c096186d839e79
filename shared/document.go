package shared

// IndexDocument denormalized search projection of a canonical post.
// Primary key equals the canonical entity id, so upsert and delete stay
// idempotent regardless of delivery multiplicity. Fully derivable from the
// primary store, disposable and reconstructable via full reindex.
type IndexDocument struct {
	ID           string   `json:"id"`
	TenantID     string   `json:"tenantId"`
	Title        string   `json:"title"`
	Excerpt      string   `json:"excerpt"`
	Content      string   `json:"content"`
	AuthorName   string   `json:"authorName"`
	CategoryName string   `json:"categoryName"`
	CategorySlug string   `json:"categorySlug"`
	Tags         []string `json:"tags"`
	Status       string   `json:"status"`
	PublishedAt  int64    `json:"publishedAt"`
	ViewCount    int64    `json:"viewCount"`
	LikeCount    int64    `json:"likeCount"`
}
