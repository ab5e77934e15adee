package ranking

import (
	"strings"
	"unicode/utf8"
)

// Bonus values for the relevance heuristic. They stack: an exact match also
// counts as a substring match and as a token match.
const (
	ExactMatchBonus      = 100.0
	SubstringMatchBonus  = 50.0
	TokenContainsBonus   = 20.0
	TokenContainedBonus  = 10.0
	minQueryTokenLength  = 2
	minContainedTokenLen = 3
)

// Score returns the relevance of text for query, multiplied by boost.
// Returns 0 when either string is empty. Comparison is case-insensitive.
func Score(query, text string, boost float64) float64 {
	if query == "" || text == "" {
		return 0
	}
	q := strings.ToLower(query)
	t := strings.ToLower(text)

	var score float64
	if q == t {
		score += ExactMatchBonus
	}
	if strings.Contains(t, q) {
		score += SubstringMatchBonus
	}

	textTokens := strings.Fields(t)
	for _, qt := range strings.Fields(q) {
		if utf8.RuneCountInString(qt) < minQueryTokenLength {
			continue
		}
		for _, tt := range textTokens {
			if strings.Contains(tt, qt) {
				score += TokenContainsBonus
			} else if strings.Contains(qt, tt) && utf8.RuneCountInString(tt) >= minContainedTokenLen {
				score += TokenContainedBonus
			}
		}
	}
	return score * boost
}

// FieldScorer accumulates the score of one candidate across its fields.
type FieldScorer struct {
	query string
	total float64
}

// NewFieldScorer returns a scorer for query.
func NewFieldScorer(query string) *FieldScorer {
	return &FieldScorer{query: query}
}

// Add scores text with boost and adds it to the total.
func (f *FieldScorer) Add(text string, boost float64) *FieldScorer {
	f.total += Score(f.query, text, boost)
	return f
}

// AddEach scores every element of texts with boost.
func (f *FieldScorer) AddEach(texts []string, boost float64) *FieldScorer {
	for _, t := range texts {
		f.total += Score(f.query, t, boost)
	}
	return f
}

// Total returns the accumulated score.
func (f *FieldScorer) Total() float64 {
	return f.total
}
