package search

import (
	"strings"

	"github.com/hyperjump/hubsearch/internal/models"
)

const (
	// MaxSuggestions caps the suggestions returned with a response.
	MaxSuggestions = 5
	// suggestionWindow is how many top results feed suggestions.
	suggestionWindow = 10
)

var (
	popularTermsEn = []string{
		"Gemini CLI",
		"AI coding assistant",
		"MCP servers",
		"extensions",
		"installation",
		"API key",
		"code generation",
		"terminal",
		"Google AI",
		"open source",
		"prompt engineering",
	}
	popularTermsZh = []string{
		"Gemini CLI",
		"AI 编程助手",
		"MCP 服务器",
		"扩展",
		"安装教程",
		"API 密钥",
		"代码生成",
		"终端",
		"谷歌 AI",
		"开源",
		"提示词工程",
	}
)

// PopularSearchTerms returns the popular search terms for locale.
func PopularSearchTerms(locale string) []string {
	src := popularTermsEn
	if models.IsChinese(locale) {
		src = popularTermsZh
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// GenerateSuggestions derives related terms from the top sorted results and
// the popular terms of locale. Terms keep discovery order without duplicates.
func GenerateSuggestions(query string, sorted []*models.SearchResult, locale string) []string {
	lowerQuery := strings.ToLower(strings.TrimSpace(query))
	suggestions := []string{}
	if lowerQuery == "" {
		return suggestions
	}
	seen := make(map[string]struct{})
	add := func(term string) {
		if term == "" {
			return
		}
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		suggestions = append(suggestions, term)
	}

	top := sorted
	if len(top) > suggestionWindow {
		top = top[:suggestionWindow]
	}
	for _, r := range top {
		for _, tag := range r.Tags {
			lowerTag := strings.ToLower(tag)
			if strings.Contains(lowerTag, lowerQuery) || strings.Contains(lowerQuery, lowerTag) {
				add(tag)
			}
		}
		add(r.Category)
	}
	for _, term := range PopularSearchTerms(locale) {
		if strings.Contains(strings.ToLower(term), lowerQuery) {
			add(term)
		}
	}

	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	return suggestions
}
