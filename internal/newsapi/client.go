// Package newsapi fetches news articles about the CLI from NewsAPI.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/hubsearch/internal/cache"
	"github.com/hyperjump/hubsearch/internal/models"
)

const (
	DefaultBaseURL  = "https://newsapi.org"
	DefaultQuery    = `"gemini cli" OR "gemini-cli"`
	DefaultLanguage = "en"
	DefaultPageSize = 20
	DefaultTimeout  = 10 * time.Second
	DefaultCacheTTL = 30 * time.Minute

	cacheKey = "everything"
)

// ErrNoAPIKey is returned by Fetch when no API key is configured.
var ErrNoAPIKey = errors.New("newsapi: no API key configured")

// Fallback supplies stored news when the API is unavailable.
type Fallback interface {
	ListNews(ctx context.Context, limit int) ([]*models.NewsItem, error)
}

// Config holds the request parameters.
type Config struct {
	APIKey   string
	BaseURL  string
	Query    string
	Language string
	PageSize int
	Timeout  time.Duration
	CacheTTL time.Duration
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Query == "" {
		c.Query = DefaultQuery
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.PageSize <= 0 || c.PageSize > 100 {
		c.PageSize = DefaultPageSize
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
}

// Client is a cached NewsAPI client.
type Client struct {
	cfg      Config
	http     *http.Client
	cache    cache.Cache[[]*models.NewsItem]
	fallback Fallback
	logger   *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCache replaces the article cache.
func WithCache(c cache.Cache[[]*models.NewsItem]) Option {
	return func(cl *Client) {
		if c != nil {
			cl.cache = c
		}
	}
}

// WithFallback sets where News reads when the API cannot be used.
func WithFallback(f Fallback) Option {
	return func(cl *Client) { cl.fallback = f }
}

// WithHTTPClient replaces the HTTP client. Its timeout is left as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(cl *Client) {
		if hc != nil {
			cl.http = hc
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// NewClient returns a client for cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.applyDefaults()
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		cache:  cache.New[[]*models.NewsItem](4),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// News returns the current articles. It serves cached articles when fresh,
// fetches otherwise, and falls back to stored news when there is no API key
// or the fetch fails. The error is non-nil only when every option failed.
func (c *Client) News(ctx context.Context) ([]*models.NewsItem, error) {
	if items, ok := c.cache.Get(cacheKey); ok {
		return items, nil
	}
	items, err := c.Fetch(ctx)
	if err == nil {
		c.cache.Set(cacheKey, items, c.cfg.CacheTTL)
		return items, nil
	}
	if !errors.Is(err, ErrNoAPIKey) {
		c.logger.Warn("news fetch failed, using stored news", zap.Error(err))
	}
	if c.fallback == nil {
		if errors.Is(err, ErrNoAPIKey) {
			return []*models.NewsItem{}, nil
		}
		return nil, err
	}
	stored, ferr := c.fallback.ListNews(ctx, c.cfg.PageSize)
	if ferr != nil {
		return nil, errors.Join(err, fmt.Errorf("load stored news: %w", ferr))
	}
	return stored, nil
}

// Fetch requests articles from the API, bypassing the cache.
func (c *Client) Fetch(ctx context.Context) ([]*models.NewsItem, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("q", c.cfg.Query)
	params.Set("language", c.cfg.Language)
	params.Set("pageSize", strconv.Itoa(c.cfg.PageSize))
	params.Set("sortBy", "publishedAt")
	params.Set("apiKey", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v2/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build news request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read news response: %w", err)
	}

	var payload response
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode news response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || payload.Status != "ok" {
		return nil, &APIError{StatusCode: resp.StatusCode, Code: payload.Code, Message: payload.Message}
	}

	items := Transform(payload.Articles)
	c.logger.Debug("fetched news", zap.Int("articles", len(payload.Articles)), zap.Int("kept", len(items)))
	return items, nil
}

// APIError is an error response from NewsAPI.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("newsapi: %d %s: %s", e.StatusCode, e.Code, e.Message)
}
