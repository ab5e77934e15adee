package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/hubsearch/internal/models"
	"github.com/hyperjump/hubsearch/internal/ranking"
)

// ToolSource searches the tool review catalog.
type ToolSource struct {
	catalog ToolCatalog
	boosts  ranking.Boosts
}

func NewToolSource(catalog ToolCatalog, boosts *ranking.Boosts) *ToolSource {
	return &ToolSource{catalog: catalog, boosts: resolveBoosts(boosts)}
}

func (s *ToolSource) Type() models.ResultType { return models.TypeTools }

func (s *ToolSource) Search(ctx context.Context, query, locale string) ([]*models.SearchResult, error) {
	query = strings.TrimSpace(query)
	results := []*models.SearchResult{}
	if query == "" {
		return results, nil
	}
	tools, err := s.catalog.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	b := s.boosts
	for _, tool := range tools {
		score := ranking.NewFieldScorer(query).
			Add(tool.Name, b.Title).
			Add(tool.Description, b.Description).
			Add(tool.Developer, b.Developer).
			Add(tool.Category, b.Category).
			AddEach(tool.Features, b.Feature).
			AddEach(tool.Tags, b.Tag).
			AddEach(tool.Pros, b.Pro).
			AddEach(tool.Cons, b.Con).
			Total()
		if score <= 0 {
			continue
		}
		results = append(results, &models.SearchResult{
			ID:          tool.ID,
			Title:       tool.Name,
			Description: tool.Description,
			URL:         localizedPath(locale, "/tools/"+tool.ID),
			Type:        models.TypeTools,
			Category:    tool.Category,
			Tags:        copyTags(tool.Tags),
			Author:      tool.Developer,
			CreatedAt:   tool.CreatedAt,
			UpdatedAt:   tool.UpdatedAt,
			Score:       score,
			Thumbnail:   tool.Logo,
			Metadata:    &models.ResultMetadata{Rating: tool.Rating},
		})
	}
	return results, nil
}
