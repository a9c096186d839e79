package searchengine

import (
	"fmt"
	"strings"

	"github.com/blogdesk/search-service/helper"
	"github.com/blogdesk/search-service/shared"
)

// SortRelevance pseudo field, orders by the index engine ranking function
const SortRelevance = "relevance"

// SortableFields whitelist for the search surface
var SortableFields = []string{SortRelevance, "publishedAt", "viewCount", "likeCount"}

// SearchParams tenant scoped search input
type SearchParams struct {
	TenantID  string
	Query     string
	Page      int
	Limit     int
	Category  string
	Tag       string
	SortBy    string
	SortOrder string
}

// BuildFilter compose the index filter expression. The tenant scope and the
// public visibility filter are always injected and ANDed with caller filters,
// a tenant can never retrieve another tenant's or any private document.
func BuildFilter(params SearchParams) string {
	filters := []string{
		fmt.Sprintf("tenantId = %q", params.TenantID),
		fmt.Sprintf("status = %q", shared.PostStatusPublished),
	}
	if params.Category != "" {
		filters = append(filters, fmt.Sprintf("categorySlug = %q", params.Category))
	}
	if params.Tag != "" {
		filters = append(filters, fmt.Sprintf("tags = %q", params.Tag))
	}
	return strings.Join(filters, " AND ")
}

// BuildSort empty result means the engine ranking function decides the order.
// A sort field outside the whitelist falls back to relevance instead of leaking
// an arbitrary attribute into the sort expression.
func BuildSort(params SearchParams) []string {
	if params.SortBy == "" || params.SortBy == SortRelevance || !helper.StringInSlice(params.SortBy, SortableFields) {
		return nil
	}
	order := strings.ToLower(params.SortOrder)
	if order != "asc" {
		order = "desc"
	}
	return []string{params.SortBy + ":" + order}
}
