// Package models defines the hub's content entities and the search request/response types.
package models

import (
	"strings"
	"time"
)

// NewsItem is a news article about the CLI, already transformed from its upstream feed.
type NewsItem struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Content     string    `json:"content,omitempty" yaml:"content"`
	URL         string    `json:"url" yaml:"url"`
	ImageURL    string    `json:"image_url,omitempty" yaml:"image_url"`
	Source      string    `json:"source,omitempty" yaml:"source"`
	Author      string    `json:"author,omitempty" yaml:"author"`
	Category    string    `json:"category,omitempty" yaml:"category"`
	Tags        []string  `json:"tags" yaml:"tags"`
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`
}

// Tool is a reviewed tool in the hub's catalog.
type Tool struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Developer   string     `json:"developer" yaml:"developer"`
	Category    string     `json:"category" yaml:"category"`
	Features    []string   `json:"features" yaml:"features"`
	Tags        []string   `json:"tags" yaml:"tags"`
	Pros        []string   `json:"pros" yaml:"pros"`
	Cons        []string   `json:"cons" yaml:"cons"`
	Rating      float64    `json:"rating" yaml:"rating"`
	Logo        string     `json:"logo,omitempty" yaml:"logo"`
	Website     string     `json:"website,omitempty" yaml:"website"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" yaml:"updated_at"`
}

// BilingualText holds an English and a Chinese variant of the same string.
type BilingualText struct {
	En string `json:"en" yaml:"en"`
	Zh string `json:"zh" yaml:"zh"`
}

// Resolve returns the variant for locale. Any "zh" locale (zh, zh-CN, zh_TW)
// selects Zh when it is non-empty; everything else selects En.
func (b BilingualText) Resolve(locale string) string {
	if IsChinese(locale) && b.Zh != "" {
		return b.Zh
	}
	return b.En
}

// IsChinese reports whether locale is a Chinese locale.
func IsChinese(locale string) bool {
	l := strings.ToLower(locale)
	return l == "zh" || strings.HasPrefix(l, "zh-") || strings.HasPrefix(l, "zh_")
}

// FAQItem is a frequently asked question.
type FAQItem struct {
	ID       string        `json:"id"`
	Question BilingualText `json:"question"`
	Answer   BilingualText `json:"answer"`
	Category string        `json:"category,omitempty"`
	Tags     []string      `json:"tags"`
}

// Repository is a GitHub repository with live stats.
type Repository struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	FullName    string     `json:"full_name"`
	Owner       string     `json:"owner"`
	OwnerAvatar string     `json:"owner_avatar,omitempty"`
	Description string     `json:"description"`
	Language    string     `json:"language,omitempty"`
	Topics      []string   `json:"topics"`
	HTMLURL     string     `json:"html_url"`
	Stars       int        `json:"stars"`
	Forks       int        `json:"forks"`
	OpenIssues  int        `json:"open_issues"`
	HealthScore float64    `json:"health_score"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	PushedAt    *time.Time `json:"pushed_at,omitempty"`
}

// BlogPost is a hub blog post.
type BlogPost struct {
	Slug        string     `json:"slug" yaml:"slug"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Content     string     `json:"content" yaml:"-"`
	Author      string     `json:"author" yaml:"author"`
	Category    string     `json:"category" yaml:"category"`
	Tags        []string   `json:"tags" yaml:"tags"`
	CoverImage  string     `json:"cover_image,omitempty" yaml:"cover_image"`
	PublishedAt time.Time  `json:"published_at" yaml:"published_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" yaml:"updated_at"`
}
