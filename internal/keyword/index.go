// Package keyword provides the full-text prefilter for blog posts.
package keyword

import (
	"context"

	"github.com/hyperjump/hubsearch/internal/models"
)

// BlogIndex defines full-text indexing of blog posts keyed by slug.
type BlogIndex interface {
	Index(ctx context.Context, post *models.BlogPost) error
	Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error)
	Delete(ctx context.Context, slug string) error
	// DocCount returns the total number of posts in the index.
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	ID    string
	Score float64
}
