// Package github fetches live statistics for the tracked GitHub repositories.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/hyperjump/hubsearch/internal/cache"
	"github.com/hyperjump/hubsearch/internal/models"
)

const (
	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultCacheTTL is how long fetched repository stats are reused.
	DefaultCacheTTL = 10 * time.Minute
)

// DefaultRepositories are tracked when none are configured.
var DefaultRepositories = []string{"google-gemini/gemini-cli"}

// Client returns repository stats, caching each repository for the cache TTL.
type Client struct {
	gh          *gh.Client
	repos       []string
	rateLimiter *RateLimiter
	cache       cache.Cache[*models.Repository]
	ttl         time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCache replaces the repository cache.
func WithCache(c cache.Cache[*models.Repository]) Option {
	return func(cl *Client) {
		if c != nil {
			cl.cache = c
		}
	}
}

// WithCacheTTL sets how long fetched stats are cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(cl *Client) {
		if ttl > 0 {
			cl.ttl = ttl
		}
	}
}

// WithRateLimit sets the proactive request rate.
func WithRateLimit(perSecond float64) Option {
	return func(cl *Client) { cl.rateLimiter = NewRateLimiter(perSecond) }
}

// WithClock sets the time source used for health scores.
func WithClock(now func() time.Time) Option {
	return func(cl *Client) {
		if now != nil {
			cl.now = now
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

// NewClient creates a client for repos ("owner/name"). An empty token uses
// unauthenticated requests; an empty baseURL uses api.github.com.
func NewClient(token, baseURL string, repos []string, opts ...Option) (*Client, error) {
	if len(repos) == 0 {
		repos = DefaultRepositories
	}
	for _, r := range repos {
		if _, _, err := splitRepo(r); err != nil {
			return nil, err
		}
	}

	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(context.Background(), ts)
	} else {
		hc = &http.Client{}
	}
	hc.Timeout = DefaultTimeout

	client := gh.NewClient(hc)
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL: %w", err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		client.BaseURL = u
	}

	c := &Client{
		gh:          client,
		repos:       repos,
		rateLimiter: NewRateLimiter(DefaultRequestRate),
		cache:       cache.New[*models.Repository](0),
		ttl:         DefaultCacheTTL,
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func splitRepo(fullName string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepository, fullName)
	}
	return owner, name, nil
}

// Repositories returns stats for every tracked repository. A repository that
// fails to load is logged and skipped; an error is returned only when none load.
func (c *Client) Repositories(ctx context.Context) ([]*models.Repository, error) {
	repos := make([]*models.Repository, 0, len(c.repos))
	var errs []error
	for _, fullName := range c.repos {
		repo, err := c.Repository(ctx, fullName)
		if err != nil {
			c.logger.Warn("failed to fetch repository", zap.String("repo", fullName), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		repos = append(repos, repo)
	}
	if len(repos) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return repos, nil
}

// Repository returns stats for one "owner/name" repository.
func (c *Client) Repository(ctx context.Context, fullName string) (*models.Repository, error) {
	key := strings.ToLower(fullName)
	if repo, ok := c.cache.Get(key); ok {
		return repo, nil
	}
	owner, name, err := splitRepo(fullName)
	if err != nil {
		return nil, err
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	r, resp, err := c.gh.Repositories.Get(ctx, owner, name)
	if resp != nil {
		c.rateLimiter.UpdateFromResponse(resp.Response)
	}
	if err != nil {
		return nil, c.wrapError(err, "get repository "+fullName)
	}

	repo := c.convert(r)
	c.cache.Set(key, repo, c.ttl)
	c.logger.Debug("fetched repository", zap.String("repo", fullName), zap.Int("stars", repo.Stars))
	return repo, nil
}

func (c *Client) convert(r *gh.Repository) *models.Repository {
	repo := &models.Repository{
		ID:          r.GetID(),
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		Owner:       r.GetOwner().GetLogin(),
		OwnerAvatar: r.GetOwner().GetAvatarURL(),
		Description: r.GetDescription(),
		Language:    r.GetLanguage(),
		Topics:      r.Topics,
		HTMLURL:     r.GetHTMLURL(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		OpenIssues:  r.GetOpenIssuesCount(),
		CreatedAt:   r.GetCreatedAt().Time,
	}
	if repo.Topics == nil {
		repo.Topics = []string{}
	}
	if t := r.GetUpdatedAt().Time; !t.IsZero() {
		repo.UpdatedAt = &t
	}
	pushed := r.GetPushedAt().Time
	if !pushed.IsZero() {
		repo.PushedAt = &pushed
	}
	repo.HealthScore = HealthScore(HealthInput{
		Stars:          repo.Stars,
		Forks:          repo.Forks,
		OpenIssues:     repo.OpenIssues,
		PushedAt:       pushed,
		HasDescription: repo.Description != "",
		HasLicense:     r.GetLicense() != nil,
	}, c.now())
	return repo
}

// wrapError converts go-github errors to this package's error types.
func (c *Client) wrapError(err error, operation string) error {
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{ResetAt: rateLimitErr.Rate.Reset.Time, Remaining: rateLimitErr.Rate.Remaining}
	}
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return fmt.Errorf("%s: %w", operation, &APIError{StatusCode: ghErr.Response.StatusCode, Message: ghErr.Message})
	}
	return fmt.Errorf("%s: %w", operation, err)
}
