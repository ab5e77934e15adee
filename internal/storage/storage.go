// Package storage persists the content catalog: tools, blog posts and news.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/hubsearch/internal/models"
)

// ErrNotFound is returned when a catalog entry does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines catalog persistence operations.
type Storage interface {
	// Tool operations
	UpsertTool(ctx context.Context, tool *models.Tool) error
	GetTool(ctx context.Context, id string) (*models.Tool, error)
	ListTools(ctx context.Context) ([]*models.Tool, error)
	DeleteTool(ctx context.Context, id string) error

	// Blog operations
	UpsertBlogPost(ctx context.Context, post *models.BlogPost) error
	GetBlogPost(ctx context.Context, slug string) (*models.BlogPost, error)
	GetBlogPosts(ctx context.Context, slugs []string) ([]*models.BlogPost, error)
	ListBlogPosts(ctx context.Context) ([]*models.BlogPost, error)
	DeleteBlogPost(ctx context.Context, slug string) error

	// News operations
	ReplaceNews(ctx context.Context, items []*models.NewsItem) error
	ListNews(ctx context.Context, limit int) ([]*models.NewsItem, error)

	// Stats
	Counts(ctx context.Context) (*Counts, error)

	Close() error
}

// Counts is the number of entries per catalog table.
type Counts struct {
	Tools     int64 `json:"tools"`
	BlogPosts int64 `json:"blog_posts"`
	News      int64 `json:"news"`
}
