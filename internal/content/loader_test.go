package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/hubsearch/internal/keyword"
	"github.com/hyperjump/hubsearch/internal/storage"
)

const toolsYAML = `
- id: aider
  name: Aider
  description: AI pair programming in your terminal
  developer: Paul Gauthier
  category: pair programming
  features: [git integration]
  tags: [cli, open source]
  rating: 4.3
  created_at: 2024-05-01T00:00:00Z
- name: Continue Dev
  rating: 4.0
- description: entry without a name is skipped
`

const newsYAML = `
- title: Gemini CLI 2.0 Released
  url: https://example.com/gemini-2
  tags: [release, gemini]
  published_at: 2025-07-01T00:00:00Z
- id: fixed
  title: Extensions marketplace opens
  published_at: 2025-08-01T00:00:00Z
`

const blogPost = `---
title: Writing MCP servers
description: A walkthrough
author: Sam
category: tutorial
tags: [mcp, extensions]
published_at: 2025-06-10
---

# Writing MCP servers

Start with the SDK.
`

func writeContent(t *testing.T, dir, rel, data string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func newTestLoader(t *testing.T, dir string) (*Loader, *storage.SQLiteStorage, *keyword.BleveIndex) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	index, err := keyword.NewBleveIndex("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return NewLoader(dir, store, index), store, index
}

func TestLoader_LoadAll(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "tools.yaml", toolsYAML)
	writeContent(t, dir, "news.yaml", newsYAML)
	writeContent(t, dir, "blog/mcp-servers.md", blogPost)
	writeContent(t, dir, "blog/broken.md", "---\ntitle: [unclosed\n---\nbody")
	writeContent(t, dir, "blog/notes.txt", "ignored")

	loader, store, index := newTestLoader(t, dir)
	ctx := context.Background()

	stats, err := loader.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Tools)
	assert.Equal(t, 2, stats.News)
	assert.Equal(t, 1, stats.BlogPosts)
	assert.Equal(t, 1, stats.Failed)

	tools, err := store.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 2)
	assert.Equal(t, "aider", tools[0].ID)
	assert.Equal(t, "continue-dev", tools[1].ID)

	news, err := store.ListNews(ctx, 0)
	require.NoError(t, err)
	require.Len(t, news, 2)
	assert.Equal(t, "fixed", news[0].ID)
	assert.Equal(t, NewsID("https://example.com/gemini-2"), news[1].ID)

	post, err := store.GetBlogPost(ctx, "mcp-servers")
	require.NoError(t, err)
	assert.Equal(t, "Writing MCP servers", post.Title)
	assert.Equal(t, []string{"mcp", "extensions"}, post.Tags)
	assert.True(t, post.PublishedAt.Equal(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)))
	assert.Contains(t, post.Content, "Start with the SDK.")

	hits, err := index.Search(ctx, "walkthrough", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "mcp-servers", hits[0].ID)
}

func TestLoader_RemoveBlogFile(t *testing.T) {
	dir := t.TempDir()
	path := writeContent(t, dir, "blog/mcp-servers.md", blogPost)
	loader, store, index := newTestLoader(t, dir)
	ctx := context.Background()

	require.NoError(t, loader.LoadFile(ctx, path))
	require.NoError(t, loader.RemoveFile(ctx, path))

	_, err := store.GetBlogPost(ctx, "mcp-servers")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	n, err := index.DocCount()
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, loader.RemoveFile(ctx, filepath.Join(dir, "tools.yaml")))
}

func TestLoader_Handles(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(dir, nil, nil, WithBlogExtensions([]string{"md"}))
	tests := []struct {
		rel  string
		want bool
	}{
		{"tools.yaml", true},
		{"tools.yml", true},
		{"tools.xlsx", true},
		{"news.yaml", true},
		{"blog/post.md", true},
		{"blog/post.markdown", false},
		{"blog/nested/post.md", false},
		{"post.md", false},
		{"other.yaml", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, loader.Handles(filepath.Join(dir, tt.rel)), tt.rel)
	}
	assert.False(t, loader.Handles(filepath.Join(filepath.Dir(dir), "tools.yaml")))
}

func TestLoader_MissingDirectory(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "missing"), nil, nil)
	_, err := loader.LoadAll(context.Background())
	assert.Error(t, err)
}

func TestParseBlogPost_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeContent(t, dir, "blog/no-front-matter.md", "# Sandbox mode\n\nRun tools in a container.\n")

	post, err := ParseBlogPost(path)
	require.NoError(t, err)
	assert.Equal(t, "no-front-matter", post.Slug)
	assert.Equal(t, "Sandbox mode", post.Title)
	assert.False(t, post.PublishedAt.IsZero())
	assert.NotNil(t, post.Tags)

	empty := writeContent(t, dir, "blog/empty.md", "no heading here")
	_, err = ParseBlogPost(empty)
	assert.Error(t, err)
}

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantFront string
		wantBody  string
		wantOK    bool
	}{
		{"basic", "---\ntitle: x\n---\nbody\n", "title: x", "body\n", true},
		{"crlf and bom", "\ufeff---\r\ntitle: x\r\n---\r\n\r\nbody", "title: x", "body", true},
		{"no front matter", "body only", "", "body only", false},
		{"unterminated", "---\ntitle: x\nbody", "", "---\ntitle: x\nbody", false},
		{"empty body", "---\ntitle: x\n---", "title: x", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			front, body, ok := splitFrontMatter([]byte(tt.in))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantFront, string(front))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestParseToolsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Name", "Developer", "Features", "Rating", "Created_At"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Codex CLI", "OpenAI", "sandbox; approvals ;", "4.1", "2025-04-16"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"", "nobody"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tools, err := ParseToolsXLSX(path)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	tool := tools[0]
	assert.Equal(t, "codex-cli", tool.ID)
	assert.Equal(t, "OpenAI", tool.Developer)
	assert.Equal(t, []string{"sandbox", "approvals"}, tool.Features)
	assert.Equal(t, 4.1, tool.Rating)
	assert.True(t, tool.CreatedAt.Equal(time.Date(2025, 4, 16, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, []string{}, tool.Tags)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "gemini-cli-2-0", Slugify("Gemini CLI 2.0"))
	assert.Equal(t, "cline-dev", Slugify("  Cline -- Dev! "))
	zh := Slugify("通义灵码")
	assert.Len(t, zh, 8)
	assert.Equal(t, zh, Slugify("通义灵码"))
}
