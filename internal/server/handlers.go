package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/hubsearch/internal/history"
	"github.com/hyperjump/hubsearch/internal/models"
	"github.com/hyperjump/hubsearch/internal/search"
	"github.com/hyperjump/hubsearch/internal/storage"
)

// ClientIDHeader selects a per-client search history.
const ClientIDHeader = "X-Client-ID"

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type searchRequest struct {
	models.SearchOptions
	Locale string `json:"locale,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.search(w, r, req)
}

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := searchRequest{
		SearchOptions: models.SearchOptions{
			Query:  q.Get("q"),
			Type:   models.ResultType(q.Get("type")),
			SortBy: models.SortBy(q.Get("sort")),
		},
		Locale: q.Get("locale"),
	}
	var err error
	if req.Limit, err = intParam(q.Get("limit")); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if req.Offset, err = intParam(q.Get("offset")); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	s.search(w, r, req)
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, req searchRequest) {
	ctx := r.Context()
	s.logger.Debug("search request",
		zap.String("query", req.Query),
		zap.String("type", string(req.Type)),
		zap.String("locale", req.Locale))

	var news []*models.NewsItem
	newsFailed := false
	if s.news != nil && models.TypeNews.Matches(req.Type) {
		var err error
		news, err = s.news.News(ctx)
		if err != nil {
			s.logger.Warn("news unavailable", zap.Error(err))
			newsFailed = true
		}
	}

	response, err := s.engine.SearchAll(ctx, req.SearchOptions, news, req.Locale)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if newsFailed && response.Query != "" {
		response.FailedSources = append([]models.ResultType{models.TypeNews}, response.FailedSources...)
	}
	if response.Query != "" {
		s.historyFor(r).Save(response.Query)
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	locale := r.URL.Query().Get("locale")
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"terms": search.PopularSearchTerms(locale)})
}

// historyFor returns the search history of the requesting client.
func (s *Server) historyFor(r *http.Request) *history.History {
	ns := r.Header.Get(ClientIDHeader)
	if !clientIDPattern.MatchString(ns) {
		ns = ""
	}
	return history.New(s.historyStore, history.WithNamespace(ns), history.WithLogger(s.logger))
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"queries": s.historyFor(r).Get()})
}

func (s *Server) handleHistoryAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h := s.historyFor(r)
	h.Save(body.Query)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"queries": h.Get()})
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	s.historyFor(r).Clear()
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
	}

	sources := []models.ResultType{models.TypeNews}
	for _, t := range models.ResultTypes {
		if _, ok := s.engine.Source(t); ok {
			sources = append(sources, t)
		}
	}
	resp["sources"] = sources

	if s.storage != nil {
		counts, err := s.storage.Counts(r.Context())
		if err != nil {
			s.logger.Error("status: count catalog failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["catalog"] = counts
	}

	caches := make(map[string]int, len(s.caches))
	for name, c := range s.caches {
		caches[name] = c.Len()
	}
	resp["caches"] = caches

	paths := map[string]string{
		"database":   s.config.Storage.DatabasePath,
		"blog_index": s.config.Storage.BlogIndexPath,
		"history":    s.config.Storage.HistoryPath,
	}
	if usage, total, err := storage.DiskUsage(paths); err == nil {
		resp["disk_usage"] = usage
		resp["disk_usage_bytes"] = total
	} else {
		s.logger.Debug("status: disk usage failed", zap.Error(err))
	}

	resp["config"] = map[string]interface{}{
		"default_limit":   s.config.Search.DefaultLimit,
		"max_limit":       s.config.Search.MaxLimit,
		"pool_size":       s.config.Search.PoolSize,
		"content_dir":     s.config.Content.Directory,
		"github_repos":    s.config.GitHub.Repositories,
		"github_auth":     s.config.GitHub.Token != "",
		"news_configured": s.config.News.APIKey != "",
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
