package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/hubsearch/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

var _ Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist. ":memory:" opens a private in-memory database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS tools (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		developer TEXT,
		category TEXT,
		features TEXT,
		tags TEXT,
		pros TEXT,
		cons TEXT,
		rating REAL DEFAULT 0,
		logo TEXT,
		website TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS blog_posts (
		slug TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		content TEXT,
		author TEXT,
		category TEXT,
		tags TEXT,
		cover_image TEXT,
		published_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_blog_posts_published_at ON blog_posts(published_at);

	CREATE TABLE IF NOT EXISTS news (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		content TEXT,
		url TEXT,
		image_url TEXT,
		source TEXT,
		author TEXT,
		category TEXT,
		tags TEXT,
		published_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_news_published_at ON news(published_at);
	`
	_, err := db.Exec(schema)
	return err
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to marshal list: %w", err)
	}
	return string(data), nil
}

func decodeList(raw string) []string {
	out := []string{}
	if raw == "" {
		return out
	}
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

type scanner interface {
	Scan(dest ...any) error
}

// UpsertTool inserts or replaces a tool.
func (s *SQLiteStorage) UpsertTool(ctx context.Context, tool *models.Tool) error {
	lists := make([]string, 4)
	for i, l := range [][]string{tool.Features, tool.Tags, tool.Pros, tool.Cons} {
		encoded, err := encodeList(l)
		if err != nil {
			return err
		}
		lists[i] = encoded
	}
	if tool.CreatedAt.IsZero() {
		tool.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tools (id, name, description, developer, category, features, tags, pros, cons, rating, logo, website, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tool.ID, tool.Name, tool.Description, tool.Developer, tool.Category,
		lists[0], lists[1], lists[2], lists[3],
		tool.Rating, tool.Logo, tool.Website, tool.CreatedAt, nullTime(tool.UpdatedAt),
	)
	return err
}

const toolColumns = `id, name, description, developer, category, features, tags, pros, cons, rating, logo, website, created_at, updated_at`

func scanTool(row scanner) (*models.Tool, error) {
	var (
		tool                        models.Tool
		features, tags, pros, cons  string
		description, developer, cat sql.NullString
		logo, website               sql.NullString
		updatedAt                   sql.NullTime
	)
	if err := row.Scan(&tool.ID, &tool.Name, &description, &developer, &cat,
		&features, &tags, &pros, &cons, &tool.Rating, &logo, &website, &tool.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	tool.Description = description.String
	tool.Developer = developer.String
	tool.Category = cat.String
	tool.Logo = logo.String
	tool.Website = website.String
	tool.Features = decodeList(features)
	tool.Tags = decodeList(tags)
	tool.Pros = decodeList(pros)
	tool.Cons = decodeList(cons)
	tool.UpdatedAt = timePtr(updatedAt)
	return &tool, nil
}

// GetTool returns a tool by ID.
func (s *SQLiteStorage) GetTool(ctx context.Context, id string) (*models.Tool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+toolColumns+` FROM tools WHERE id = ?`, id)
	tool, err := scanTool(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tool %s: %w", id, ErrNotFound)
	}
	return tool, err
}

// ListTools returns every tool ordered by name.
func (s *SQLiteStorage) ListTools(ctx context.Context) ([]*models.Tool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+toolColumns+` FROM tools ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tools := []*models.Tool{}
	for rows.Next() {
		tool, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		tools = append(tools, tool)
	}
	return tools, rows.Err()
}

// DeleteTool removes a tool by ID.
func (s *SQLiteStorage) DeleteTool(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tools WHERE id = ?`, id)
	return err
}

// UpsertBlogPost inserts or replaces a blog post.
func (s *SQLiteStorage) UpsertBlogPost(ctx context.Context, post *models.BlogPost) error {
	tags, err := encodeList(post.Tags)
	if err != nil {
		return err
	}
	if post.PublishedAt.IsZero() {
		post.PublishedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO blog_posts (slug, title, description, content, author, category, tags, cover_image, published_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.Slug, post.Title, post.Description, post.Content, post.Author, post.Category,
		tags, post.CoverImage, post.PublishedAt, nullTime(post.UpdatedAt),
	)
	return err
}

const blogColumns = `slug, title, description, content, author, category, tags, cover_image, published_at, updated_at`

func scanBlogPost(row scanner) (*models.BlogPost, error) {
	var (
		post                              models.BlogPost
		description, content, author, cat sql.NullString
		tags, cover                       sql.NullString
		updatedAt                         sql.NullTime
	)
	if err := row.Scan(&post.Slug, &post.Title, &description, &content, &author, &cat,
		&tags, &cover, &post.PublishedAt, &updatedAt); err != nil {
		return nil, err
	}
	post.Description = description.String
	post.Content = content.String
	post.Author = author.String
	post.Category = cat.String
	post.Tags = decodeList(tags.String)
	post.CoverImage = cover.String
	post.UpdatedAt = timePtr(updatedAt)
	return &post, nil
}

// GetBlogPost returns a blog post by slug.
func (s *SQLiteStorage) GetBlogPost(ctx context.Context, slug string) (*models.BlogPost, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blog_posts WHERE slug = ?`, slug)
	post, err := scanBlogPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("blog post %s: %w", slug, ErrNotFound)
	}
	return post, err
}

// GetBlogPosts returns the posts for slugs in the given order. Unknown slugs are skipped.
func (s *SQLiteStorage) GetBlogPosts(ctx context.Context, slugs []string) ([]*models.BlogPost, error) {
	posts := []*models.BlogPost{}
	if len(slugs) == 0 {
		return posts, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(slugs)), ",")
	args := make([]any, len(slugs))
	for i, slug := range slugs {
		args[i] = slug
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+blogColumns+` FROM blog_posts WHERE slug IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bySlug := make(map[string]*models.BlogPost, len(slugs))
	for rows.Next() {
		post, err := scanBlogPost(rows)
		if err != nil {
			return nil, err
		}
		bySlug[post.Slug] = post
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, slug := range slugs {
		if post, ok := bySlug[slug]; ok {
			posts = append(posts, post)
			delete(bySlug, slug)
		}
	}
	return posts, nil
}

// ListBlogPosts returns every blog post, newest first.
func (s *SQLiteStorage) ListBlogPosts(ctx context.Context) ([]*models.BlogPost, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+blogColumns+` FROM blog_posts ORDER BY published_at DESC, slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*models.BlogPost{}
	for rows.Next() {
		post, err := scanBlogPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// DeleteBlogPost removes a blog post by slug.
func (s *SQLiteStorage) DeleteBlogPost(ctx context.Context, slug string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE slug = ?`, slug)
	return err
}

// ReplaceNews replaces the stored news with items in a single transaction.
func (s *SQLiteStorage) ReplaceNews(ctx context.Context, items []*models.NewsItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM news`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO news (id, title, description, content, url, image_url, source, author, category, tags, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		tags, err := encodeList(item.Tags)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, item.ID, item.Title, item.Description, item.Content, item.URL,
			item.ImageURL, item.Source, item.Author, item.Category, tags, item.PublishedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListNews returns stored news, newest first. A limit <= 0 returns everything.
func (s *SQLiteStorage) ListNews(ctx context.Context, limit int) ([]*models.NewsItem, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, content, url, image_url, source, author, category, tags, published_at
		 FROM news ORDER BY published_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.NewsItem{}
	for rows.Next() {
		var (
			item                                     models.NewsItem
			description, content, url, image, source sql.NullString
			author, cat, tags                        sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Title, &description, &content, &url, &image,
			&source, &author, &cat, &tags, &item.PublishedAt); err != nil {
			return nil, err
		}
		item.Description = description.String
		item.Content = content.String
		item.URL = url.String
		item.ImageURL = image.String
		item.Source = source.String
		item.Author = author.String
		item.Category = cat.String
		item.Tags = decodeList(tags.String)
		items = append(items, &item)
	}
	return items, rows.Err()
}

// Counts returns the number of entries in each catalog table.
func (s *SQLiteStorage) Counts(ctx context.Context) (*Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM tools), (SELECT COUNT(*) FROM blog_posts), (SELECT COUNT(*) FROM news)`,
	).Scan(&c.Tools, &c.BlogPosts, &c.News)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
