package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/hubsearch/internal/models"
	"github.com/hyperjump/hubsearch/internal/ranking"
)

// BlogSource searches blog posts. The catalog prefilters by query and every
// returned post is scored again here.
type BlogSource struct {
	catalog BlogCatalog
	boosts  ranking.Boosts
}

func NewBlogSource(catalog BlogCatalog, boosts *ranking.Boosts) *BlogSource {
	return &BlogSource{catalog: catalog, boosts: resolveBoosts(boosts)}
}

func (s *BlogSource) Type() models.ResultType { return models.TypeBlog }

func (s *BlogSource) Search(ctx context.Context, query, locale string) ([]*models.SearchResult, error) {
	query = strings.TrimSpace(query)
	results := []*models.SearchResult{}
	if query == "" {
		return results, nil
	}
	posts, err := s.catalog.SearchBlogPosts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search blog posts: %w", err)
	}
	b := s.boosts
	for _, post := range posts {
		score := ranking.NewFieldScorer(query).
			Add(post.Title, b.Title).
			Add(post.Description, b.Description).
			Add(post.Author, b.Author).
			Add(post.Category, b.Category).
			AddEach(post.Tags, b.Tag).
			Add(post.Content, b.Content).
			Total()
		if score <= 0 {
			continue
		}
		results = append(results, &models.SearchResult{
			ID:          post.Slug,
			Title:       post.Title,
			Description: post.Description,
			Content:     post.Content,
			URL:         localizedPath(locale, "/blog/"+post.Slug),
			Type:        models.TypeBlog,
			Category:    post.Category,
			Tags:        copyTags(post.Tags),
			Author:      post.Author,
			CreatedAt:   post.PublishedAt,
			UpdatedAt:   post.UpdatedAt,
			Score:       score,
			Thumbnail:   post.CoverImage,
		})
	}
	return results, nil
}
