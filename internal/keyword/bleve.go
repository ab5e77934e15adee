package keyword

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/hubsearch/internal/models"
)

const (
	// DefaultSearchLimit is the hit limit used when Search is called with limit <= 0.
	DefaultSearchLimit = 1000

	// blogAnalyzer splits on whitespace and lowercases, keeping stop words.
	// Its tokens are the words the relevance scorer compares against.
	blogAnalyzer = "blog_text"

	// minContainedTermRunes is the shortest indexed word the scorer credits
	// when it appears inside a query word.
	minContainedTermRunes = 3
	// maxSubstringTermRunes caps the query words expanded into substrings;
	// longer words make the prefilter match every post.
	maxSubstringTermRunes = 32
)

// blogFields are the indexed text fields of a post.
var blogFields = []string{"title", "description", "content", "author", "category", "tags"}

// blogDocument is the indexed form of a blog post.
type blogDocument struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Author      string   `json:"author"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// BleveIndex implements BlogIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

var _ BlogIndex = (*BleveIndex)(nil)

// NewBleveIndex creates or opens a Bleve index at path.
// An existing index is reused unless it was built with a different analyzer,
// in which case it is recreated empty. An empty path creates an in-memory index.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im, err := newBlogMapping()
	if err != nil {
		return nil, err
	}

	if path == "" {
		index, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		if current, ok := index.Mapping().(*mapping.IndexMappingImpl); ok && current.DefaultAnalyzer == blogAnalyzer {
			return &BleveIndex{index: index}, nil
		}
		_ = index.Close()
		if err := os.RemoveAll(path); err != nil {
			return nil, fmt.Errorf("failed to remove outdated Bleve index: %w", err)
		}
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

func newBlogMapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(blogAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     whitespace.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register blog analyzer: %w", err)
	}
	im.DefaultAnalyzer = blogAnalyzer

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = blogAnalyzer
	for _, field := range blogFields {
		docMapping.AddFieldMappingsAt(field, textFieldMapping)
	}
	im.AddDocumentMapping("post", docMapping)
	im.DefaultType = "post"
	im.DefaultMapping = docMapping
	return im, nil
}

// Index indexes post under its slug, replacing any earlier version.
func (b *BleveIndex) Index(_ context.Context, post *models.BlogPost) error {
	return b.index.Index(post.Slug, blogDocument{
		Title:       post.Title,
		Description: post.Description,
		Content:     post.Content,
		Author:      post.Author,
		Category:    post.Category,
		Tags:        post.Tags,
	})
}

// Search returns candidate posts for query, ordered by Bleve score.
// Every post the relevance scorer gives a positive score is a candidate:
// a query word inside an indexed word, an indexed word of at least three
// runes inside a query word, or the whole query inside a field.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	q := buildPrefilterQuery(query)
	if q == nil {
		return []*KeywordResult{}, nil
	}
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*KeywordResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &KeywordResult{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// tokenizeQuery splits query into lowercase words, as the analyzer does.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// wildcardLiteral makes term safe inside a wildcard pattern. Wildcard
// characters cannot be escaped, so each becomes '?', which still matches it.
var wildcardLiteral = strings.NewReplacer("*", "?")

// buildPrefilterQuery ORs a substring wildcard per query word with an exact
// term query for every substring of at least minContainedTermRunes runes.
// A query word longer than maxSubstringTermRunes matches every post.
// Returns nil for a blank query.
func buildPrefilterQuery(query string) blevequery.Query {
	terms := tokenizeQuery(query)
	if len(terms) == 0 {
		return nil
	}
	var queries []blevequery.Query
	seen := make(map[string]bool)
	for _, term := range terms {
		if utf8.RuneCountInString(term) > maxSubstringTermRunes {
			return bleve.NewMatchAllQuery()
		}
		queries = append(queries, bleve.NewWildcardQuery("*"+wildcardLiteral.Replace(term)+"*"))
		for _, sub := range substrings(term, minContainedTermRunes) {
			if seen[sub] {
				continue
			}
			seen[sub] = true
			queries = append(queries, bleve.NewTermQuery(sub))
		}
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// substrings returns every substring of s with at least minRunes runes.
func substrings(s string, minRunes int) []string {
	runes := []rune(s)
	var out []string
	for i := 0; i < len(runes); i++ {
		for j := i + minRunes; j <= len(runes); j++ {
			out = append(out, string(runes[i:j]))
		}
	}
	return out
}

// Delete removes a post from the index.
func (b *BleveIndex) Delete(_ context.Context, slug string) error {
	return b.index.Delete(slug)
}

// DocCount returns the total number of posts in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
