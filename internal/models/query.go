package models

import (
	"fmt"
	"strings"
)

// SortBy selects the ordering of the merged result set.
type SortBy string

const (
	SortRelevance    SortBy = "relevance"
	SortLatest       SortBy = "latest"
	SortOldest       SortBy = "oldest"
	SortRating       SortBy = "rating"
	SortAlphabetical SortBy = "alphabetical"
)

// ParseSortBy parses s into a SortBy. Empty means SortRelevance.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(s) {
	case "":
		return SortRelevance, nil
	case SortRelevance, SortLatest, SortOldest, SortRating, SortAlphabetical:
		return SortBy(s), nil
	}
	return "", fmt.Errorf("unknown sort order: %q", s)
}

const (
	// DefaultLimit is the page size used when none is given.
	DefaultLimit = 20
	// MaxLimit caps the page size.
	MaxLimit = 100
)

// SearchOptions is an aggregated search request.
type SearchOptions struct {
	Query  string     `json:"query"`
	Type   ResultType `json:"type,omitempty"`
	SortBy SortBy     `json:"sort_by,omitempty"`
	Limit  int        `json:"limit,omitempty"`
	Offset int        `json:"offset,omitempty"`
}

// Normalize trims the query and fills defaults for type, sort order and paging.
// defaultLimit and maxLimit fall back to DefaultLimit and MaxLimit when not positive.
// Unknown type or sort values are rejected.
func (o *SearchOptions) Normalize(defaultLimit, maxLimit int) error {
	o.Query = strings.TrimSpace(o.Query)

	t, err := ParseResultType(string(o.Type))
	if err != nil {
		return err
	}
	o.Type = t
	s, err := ParseSortBy(string(o.SortBy))
	if err != nil {
		return err
	}
	o.SortBy = s

	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if o.Limit <= 0 {
		o.Limit = defaultLimit
	}
	if o.Limit > maxLimit {
		o.Limit = maxLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return nil
}
