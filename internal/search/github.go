package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperjump/hubsearch/internal/models"
	"github.com/hyperjump/hubsearch/internal/ranking"
)

// GitHubSource searches tracked repositories. Result URLs point at github.com.
type GitHubSource struct {
	repos  RepoProvider
	boosts ranking.Boosts
}

func NewGitHubSource(repos RepoProvider, boosts *ranking.Boosts) *GitHubSource {
	return &GitHubSource{repos: repos, boosts: resolveBoosts(boosts)}
}

func (s *GitHubSource) Type() models.ResultType { return models.TypeGitHub }

func (s *GitHubSource) Search(ctx context.Context, query, _ string) ([]*models.SearchResult, error) {
	query = strings.TrimSpace(query)
	results := []*models.SearchResult{}
	if query == "" {
		return results, nil
	}
	repos, err := s.repos.Repositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repositories: %w", err)
	}
	b := s.boosts
	for _, repo := range repos {
		score := ranking.NewFieldScorer(query).
			Add(repo.Name, b.RepoName).
			Add(repo.Description, b.Description).
			Add(repo.Language, b.Language).
			AddEach(repo.Topics, b.Topic).
			Total()
		if score <= 0 {
			continue
		}
		title := repo.FullName
		if title == "" {
			title = repo.Name
		}
		results = append(results, &models.SearchResult{
			ID:          strconv.FormatInt(repo.ID, 10),
			Title:       title,
			Description: repo.Description,
			URL:         repo.HTMLURL,
			Type:        models.TypeGitHub,
			Category:    repo.Language,
			Tags:        copyTags(repo.Topics),
			Author:      repo.Owner,
			CreatedAt:   repo.CreatedAt,
			UpdatedAt:   repo.UpdatedAt,
			Score:       score,
			Thumbnail:   repo.OwnerAvatar,
			Metadata: &models.ResultMetadata{
				StarCount:   repo.Stars,
				ForkCount:   repo.Forks,
				IssueCount:  repo.OpenIssues,
				HealthScore: repo.HealthScore,
			},
		})
	}
	return results, nil
}
