package search

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hyperjump/hubsearch/internal/models"
)

// SortResults orders results in place. The sort is stable, so ties keep
// source order. Titles are compared with the collation rules of locale.
func SortResults(results []*models.SearchResult, sortBy models.SortBy, locale string) {
	switch sortBy {
	case models.SortLatest:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].RecencyTime().After(results[j].RecencyTime())
		})
	case models.SortOldest:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].RecencyTime().Before(results[j].RecencyTime())
		})
	case models.SortRating:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Rating() > results[j].Rating()
		})
	case models.SortAlphabetical:
		c := collate.New(collationTag(locale))
		sort.SliceStable(results, func(i, j int) bool {
			return c.CompareString(results[i].Title, results[j].Title) < 0
		})
	default:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}
}

func collationTag(locale string) language.Tag {
	if locale == "" {
		return language.English
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	return tag
}
