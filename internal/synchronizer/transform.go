package synchronizer

import (
	"html"
	"regexp"
	"strings"

	"github.com/blogdesk/search-service/shared"
)

var (
	blockPattern      = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tagPattern        = regexp.MustCompile(`(?s)<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripMarkup reduce body markup to plain text: tags removed, entities
// unescaped, whitespace runs collapsed
func StripMarkup(markup string) string {
	text := blockPattern.ReplaceAllString(markup, " ")
	text = tagPattern.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// TransformPost project a canonical post into its index document.
// Relational fields are denormalized here, the index cannot join.
func TransformPost(post *shared.Post) shared.IndexDocument {
	doc := shared.IndexDocument{
		ID:           post.ID,
		TenantID:     post.TenantID,
		Title:        post.Title,
		Excerpt:      StripMarkup(post.Excerpt),
		Content:      StripMarkup(post.Content),
		AuthorName:   post.Author.Name,
		CategoryName: post.Category.Name,
		CategorySlug: post.Category.Slug,
		Tags:         post.Tags,
		Status:       post.Status,
		ViewCount:    post.ViewCount,
		LikeCount:    post.LikeCount,
	}
	if post.PublishedAt != nil {
		doc.PublishedAt = post.PublishedAt.Unix()
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	return doc
}
