// Package content loads the site content directory into the catalog and blog index.
//
// Layout:
//
//	tools.yaml | tools.yml | tools.xlsx   tool reviews
//	news.yaml  | news.yml                 fallback news
//	blog/*.md                             posts with YAML front matter
package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hyperjump/hubsearch/internal/keyword"
	"github.com/hyperjump/hubsearch/internal/models"
)

// BlogDir is the content subdirectory holding blog posts.
const BlogDir = "blog"

// DefaultBlogExtensions are the blog post file extensions loaded when none are configured.
var DefaultBlogExtensions = []string{".md", ".markdown"}

// Catalog is the write side of the content store.
type Catalog interface {
	UpsertTool(ctx context.Context, tool *models.Tool) error
	UpsertBlogPost(ctx context.Context, post *models.BlogPost) error
	DeleteBlogPost(ctx context.Context, slug string) error
	ReplaceNews(ctx context.Context, items []*models.NewsItem) error
}

// Stats counts what a load wrote.
type Stats struct {
	Tools     int
	BlogPosts int
	News      int
	Failed    int
}

// Loader reads content files and writes them to the catalog and blog index.
type Loader struct {
	dir        string
	catalog    Catalog
	index      keyword.BlogIndex
	extensions []string
	logger     *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader logger.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithBlogExtensions sets the file extensions treated as blog posts.
func WithBlogExtensions(exts []string) Option {
	return func(ld *Loader) {
		if len(exts) > 0 {
			ld.extensions = exts
		}
	}
}

// NewLoader returns a loader for dir. index may be nil.
func NewLoader(dir string, catalog Catalog, index keyword.BlogIndex, opts ...Option) *Loader {
	l := &Loader{
		dir:        dir,
		catalog:    catalog,
		index:      index,
		extensions: DefaultBlogExtensions,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir returns the content directory.
func (l *Loader) Dir() string { return l.dir }

type fileKind int

const (
	kindNone fileKind = iota
	kindToolsYAML
	kindToolsXLSX
	kindNews
	kindBlog
)

func (l *Loader) kindOf(path string) fileKind {
	rel, err := filepath.Rel(l.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return kindNone
	}
	rel = filepath.ToSlash(rel)
	switch strings.ToLower(rel) {
	case "tools.yaml", "tools.yml":
		return kindToolsYAML
	case "tools.xlsx":
		return kindToolsXLSX
	case "news.yaml", "news.yml":
		return kindNews
	}
	if filepath.ToSlash(filepath.Dir(rel)) == BlogDir && matchExtension(rel, l.extensions) {
		return kindBlog
	}
	return kindNone
}

// Handles reports whether path is a content file the loader understands.
func (l *Loader) Handles(path string) bool {
	return l.kindOf(path) != kindNone
}

// LoadAll loads every content file under the directory. A file that fails to
// parse is logged and counted; the rest still load.
func (l *Loader) LoadAll(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	if _, err := os.Stat(l.dir); err != nil {
		return nil, fmt.Errorf("content directory: %w", err)
	}
	err := filepath.WalkDir(l.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !l.Handles(path) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		n, loadErr := l.load(ctx, path)
		if loadErr != nil {
			stats.Failed++
			l.logger.Warn("failed to load content file", zap.String("path", path), zap.Error(loadErr))
			return nil
		}
		switch l.kindOf(path) {
		case kindToolsYAML, kindToolsXLSX:
			stats.Tools += n
		case kindNews:
			stats.News += n
		case kindBlog:
			stats.BlogPosts += n
		}
		return nil
	})
	if err != nil {
		return stats, err
	}
	l.logger.Info("content loaded",
		zap.Int("tools", stats.Tools),
		zap.Int("blog_posts", stats.BlogPosts),
		zap.Int("news", stats.News),
		zap.Int("failed", stats.Failed))
	return stats, nil
}

// LoadFile loads a single content file.
func (l *Loader) LoadFile(ctx context.Context, path string) error {
	_, err := l.load(ctx, path)
	return err
}

func (l *Loader) load(ctx context.Context, path string) (int, error) {
	switch l.kindOf(path) {
	case kindToolsYAML:
		tools, err := ParseToolsYAML(path)
		if err != nil {
			return 0, err
		}
		return l.storeTools(ctx, tools)
	case kindToolsXLSX:
		tools, err := ParseToolsXLSX(path)
		if err != nil {
			return 0, err
		}
		return l.storeTools(ctx, tools)
	case kindNews:
		items, err := ParseNewsYAML(path)
		if err != nil {
			return 0, err
		}
		if err := l.catalog.ReplaceNews(ctx, items); err != nil {
			return 0, fmt.Errorf("store news: %w", err)
		}
		return len(items), nil
	case kindBlog:
		post, err := ParseBlogPost(path)
		if err != nil {
			return 0, err
		}
		if err := l.catalog.UpsertBlogPost(ctx, post); err != nil {
			return 0, fmt.Errorf("store blog post %s: %w", post.Slug, err)
		}
		if l.index != nil {
			if err := l.index.Index(ctx, post); err != nil {
				return 0, fmt.Errorf("index blog post %s: %w", post.Slug, err)
			}
		}
		return 1, nil
	}
	return 0, fmt.Errorf("unsupported content file: %s", path)
}

func (l *Loader) storeTools(ctx context.Context, tools []*models.Tool) (int, error) {
	for _, tool := range tools {
		if err := l.catalog.UpsertTool(ctx, tool); err != nil {
			return 0, fmt.Errorf("store tool %s: %w", tool.ID, err)
		}
	}
	return len(tools), nil
}

// RemoveFile reacts to a deleted content file. Removing a blog post file
// deletes the post; other files keep their last loaded content.
func (l *Loader) RemoveFile(ctx context.Context, path string) error {
	if l.kindOf(path) != kindBlog {
		return nil
	}
	slug := SlugFromPath(path)
	var errs []error
	if err := l.catalog.DeleteBlogPost(ctx, slug); err != nil {
		errs = append(errs, fmt.Errorf("delete blog post %s: %w", slug, err))
	}
	if l.index != nil {
		if err := l.index.Delete(ctx, slug); err != nil {
			errs = append(errs, fmt.Errorf("unindex blog post %s: %w", slug, err))
		}
	}
	return errors.Join(errs...)
}

// ParseToolsYAML reads a YAML list of tools.
func ParseToolsYAML(path string) ([]*models.Tool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tools []*models.Tool
	if err := yaml.Unmarshal(data, &tools); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return normalizeTools(tools), nil
}

func normalizeTools(tools []*models.Tool) []*models.Tool {
	out := make([]*models.Tool, 0, len(tools))
	for _, t := range tools {
		if t == nil || strings.TrimSpace(t.Name) == "" {
			continue
		}
		if t.ID == "" {
			t.ID = Slugify(t.Name)
		}
		out = append(out, t)
	}
	return out
}

// ParseNewsYAML reads a YAML list of news items. Items without an ID get a
// stable one derived from their URL, or their title when there is no URL.
func ParseNewsYAML(path string) ([]*models.NewsItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []*models.NewsItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	out := make([]*models.NewsItem, 0, len(items))
	for _, item := range items {
		if item == nil || strings.TrimSpace(item.Title) == "" {
			continue
		}
		if item.ID == "" {
			key := item.URL
			if key == "" {
				key = item.Title
			}
			item.ID = NewsID(key)
		}
		if item.Tags == nil {
			item.Tags = []string{}
		}
		out = append(out, item)
	}
	return out, nil
}

// NewsID returns the deterministic ID for a news article key.
func NewsID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// ParseBlogPost reads a Markdown post with YAML front matter. The slug
// defaults to the file name and the title to the first heading.
func ParseBlogPost(path string) (*models.BlogPost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var post models.BlogPost
	body, err := decodeFrontMatter(data, &post)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	post.Content = strings.TrimSpace(body)
	if post.Slug == "" {
		post.Slug = SlugFromPath(path)
	}
	if post.Title == "" {
		post.Title = firstHeading(post.Content)
	}
	if post.Title == "" {
		return nil, fmt.Errorf("%s: missing title", filepath.Base(path))
	}
	if post.PublishedAt.IsZero() {
		if info, err := os.Stat(path); err == nil {
			post.PublishedAt = info.ModTime().UTC().Truncate(time.Second)
		}
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	return &post, nil
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

// SlugFromPath returns the file name of path without its extension.
func SlugFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
// A name with no ASCII letters or digits gets a stable hash-derived slug.
func Slugify(s string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(s)).String()[:8]
	}
	return slug
}

func matchExtension(path string, extensions []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}
