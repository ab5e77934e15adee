package models

import (
	"fmt"
	"time"
)

// ResultType identifies which source produced a search result.
type ResultType string

const (
	TypeNews   ResultType = "news"
	TypeTools  ResultType = "tools"
	TypeFAQ    ResultType = "faq"
	TypeGitHub ResultType = "github"
	TypeBlog   ResultType = "blog"
	// TypeAll is only valid in SearchOptions; it selects every source.
	TypeAll ResultType = "all"
)

// ResultTypes lists the concrete result types in fan-out order.
var ResultTypes = []ResultType{TypeNews, TypeTools, TypeFAQ, TypeGitHub, TypeBlog}

// ParseResultType parses s into a ResultType. Empty means TypeAll.
func ParseResultType(s string) (ResultType, error) {
	switch ResultType(s) {
	case "":
		return TypeAll, nil
	case TypeAll, TypeNews, TypeTools, TypeFAQ, TypeGitHub, TypeBlog:
		return ResultType(s), nil
	}
	return "", fmt.Errorf("unknown result type: %q", s)
}

// Matches reports whether a source of type t should run for the requested type.
func (t ResultType) Matches(requested ResultType) bool {
	return requested == TypeAll || requested == "" || requested == t
}

// ResultMetadata holds numeric facets used for display and the rating sort.
type ResultMetadata struct {
	Rating      float64 `json:"rating,omitempty"`
	StarCount   int     `json:"star_count,omitempty"`
	ForkCount   int     `json:"fork_count,omitempty"`
	IssueCount  int     `json:"issue_count,omitempty"`
	HealthScore float64 `json:"health_score,omitempty"`
}

// SearchResult is a single hit from any source.
type SearchResult struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Content     string          `json:"content,omitempty"`
	URL         string          `json:"url"`
	Type        ResultType      `json:"type"`
	Category    string          `json:"category,omitempty"`
	Tags        []string        `json:"tags"`
	Author      string          `json:"author,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
	Score       float64         `json:"score"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	Metadata    *ResultMetadata `json:"metadata,omitempty"`
}

// RecencyTime returns UpdatedAt when set, otherwise CreatedAt.
func (r *SearchResult) RecencyTime() time.Time {
	if r.UpdatedAt != nil && !r.UpdatedAt.IsZero() {
		return *r.UpdatedAt
	}
	return r.CreatedAt
}

// Rating returns the rating facet, or 0 when there is none.
func (r *SearchResult) Rating() float64 {
	if r.Metadata == nil {
		return 0
	}
	return r.Metadata.Rating
}

// SearchResponse is the response envelope for an aggregated search.
type SearchResponse struct {
	Results     []*SearchResult `json:"results"`
	Total       int             `json:"total"`
	HasMore     bool            `json:"has_more"`
	Query       string          `json:"query"`
	Suggestions []string        `json:"suggestions"`
	QueryTime   int64           `json:"query_time_ms"`
	// FailedSources lists sources whose adapter failed during this search.
	// Their results are missing but the rest of the response is intact.
	FailedSources []ResultType `json:"failed_sources,omitempty"`
}

// EmptyResponse returns a response with no results for query.
func EmptyResponse(query string) *SearchResponse {
	return &SearchResponse{
		Results:     []*SearchResult{},
		Query:       query,
		Suggestions: []string{},
	}
}
