package search

import (
	"context"
	"strings"

	"github.com/hyperjump/hubsearch/internal/models"
	"github.com/hyperjump/hubsearch/internal/ranking"
)

// NewsSource searches an already loaded list of news items.
type NewsSource struct {
	items  []*models.NewsItem
	boosts ranking.Boosts
}

// NewNewsSource returns a source over items. A nil boosts uses the defaults.
func NewNewsSource(items []*models.NewsItem, boosts *ranking.Boosts) *NewsSource {
	return &NewsSource{items: items, boosts: resolveBoosts(boosts)}
}

func (s *NewsSource) Type() models.ResultType { return models.TypeNews }

func (s *NewsSource) Search(_ context.Context, query, locale string) ([]*models.SearchResult, error) {
	query = strings.TrimSpace(query)
	results := []*models.SearchResult{}
	if query == "" {
		return results, nil
	}
	b := s.boosts
	for _, item := range s.items {
		if item == nil {
			continue
		}
		score := ranking.NewFieldScorer(query).
			Add(item.Title, b.Title).
			Add(item.Description, b.Description).
			Add(item.Author, b.Author).
			AddEach(item.Tags, b.Tag).
			Total()
		if score <= 0 {
			continue
		}
		results = append(results, &models.SearchResult{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			Content:     item.Content,
			URL:         localizedPath(locale, "/news/"+item.ID),
			Type:        models.TypeNews,
			Category:    item.Category,
			Tags:        copyTags(item.Tags),
			Author:      item.Author,
			CreatedAt:   item.PublishedAt,
			Score:       score,
			Thumbnail:   item.ImageURL,
		})
	}
	return results, nil
}

func resolveBoosts(b *ranking.Boosts) ranking.Boosts {
	if b == nil {
		return *ranking.DefaultBoosts()
	}
	out := *b
	out.ApplyDefaults()
	return out
}

// copyTags returns a non-nil copy of s; results never share a slice with
// cached entities.
func copyTags(s []string) []string {
	return append([]string{}, s...)
}
