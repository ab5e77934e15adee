// Package server provides the HTTP API for the hub search.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/hubsearch/internal/config"
	"github.com/hyperjump/hubsearch/internal/history"
	"github.com/hyperjump/hubsearch/internal/models"
	"github.com/hyperjump/hubsearch/internal/search"
	"github.com/hyperjump/hubsearch/internal/storage"
)

// NewsProvider returns the current news articles.
type NewsProvider interface {
	News(ctx context.Context) ([]*models.NewsItem, error)
}

// Sizer reports the number of entries held by a cache.
type Sizer interface {
	Len() int
}

// Server is the HTTP server for the search API.
type Server struct {
	engine       *search.Engine
	news         NewsProvider
	storage      storage.Storage
	historyStore history.KeyValueStore
	config       *config.Config
	caches       map[string]Sizer
	logger       *zap.Logger
	startedAt    time.Time
	server       *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithCache reports c's size under name in the status endpoint.
func WithCache(name string, c Sizer) Option {
	return func(s *Server) {
		if c != nil {
			s.caches[name] = c
		}
	}
}

// NewServer creates a server with the given dependencies. news, store and
// historyStore may be nil; the matching features then degrade to empty results.
func NewServer(
	engine *search.Engine,
	news NewsProvider,
	store storage.Storage,
	historyStore history.KeyValueStore,
	cfg *config.Config,
	logger *zap.Logger,
	opts ...Option,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		engine:       engine,
		news:         news,
		storage:      store,
		historyStore: historyStore,
		config:       cfg,
		caches:       make(map[string]Sizer),
		logger:       logger,
		startedAt:    time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.handleSearchGet)
		r.Post("/search", s.handleSearch)
		r.Get("/search/popular", s.handlePopular)
		r.Get("/history", s.handleHistoryList)
		r.Post("/history", s.handleHistoryAdd)
		r.Delete("/history", s.handleHistoryClear)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
