package keyword

import (
	"context"
	"fmt"

	"github.com/hyperjump/hubsearch/internal/models"
)

// PostLoader loads full blog posts by slug, preserving the requested order.
type PostLoader interface {
	GetBlogPosts(ctx context.Context, slugs []string) ([]*models.BlogPost, error)
}

// BlogCatalog answers blog searches with an index prefilter followed by a
// load of the matching posts.
type BlogCatalog struct {
	index  BlogIndex
	loader PostLoader
	limit  int
}

// NewBlogCatalog returns a catalog. limit <= 0 uses DefaultSearchLimit.
func NewBlogCatalog(index BlogIndex, loader PostLoader, limit int) *BlogCatalog {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &BlogCatalog{index: index, loader: loader, limit: limit}
}

// SearchBlogPosts returns the posts whose text loosely matches query.
func (c *BlogCatalog) SearchBlogPosts(ctx context.Context, query string) ([]*models.BlogPost, error) {
	hits, err := c.index.Search(ctx, query, c.limit)
	if err != nil {
		return nil, fmt.Errorf("blog index search: %w", err)
	}
	if len(hits) == 0 {
		return []*models.BlogPost{}, nil
	}
	slugs := make([]string, len(hits))
	for i, h := range hits {
		slugs[i] = h.ID
	}
	posts, err := c.loader.GetBlogPosts(ctx, slugs)
	if err != nil {
		return nil, fmt.Errorf("load blog posts: %w", err)
	}
	return posts, nil
}
