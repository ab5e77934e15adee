package search

import (
	"context"

	"github.com/hyperjump/hubsearch/internal/models"
)

// Source is one searchable content collection.
// Search returns only candidates with a positive score; an empty query yields no results.
type Source interface {
	Type() models.ResultType
	Search(ctx context.Context, query, locale string) ([]*models.SearchResult, error)
}

// ToolCatalog lists every reviewed tool.
type ToolCatalog interface {
	ListTools(ctx context.Context) ([]*models.Tool, error)
}

// RepoProvider returns the tracked GitHub repositories with live stats.
type RepoProvider interface {
	Repositories(ctx context.Context) ([]*models.Repository, error)
}

// BlogCatalog returns blog posts loosely matching query.
type BlogCatalog interface {
	SearchBlogPosts(ctx context.Context, query string) ([]*models.BlogPost, error)
}

// localizedPath prefixes an internal route with the locale segment for Chinese.
func localizedPath(locale, path string) string {
	if models.IsChinese(locale) {
		return "/zh" + path
	}
	return path
}
