package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"devpulse/pkg/domain"
	"devpulse/pkg/query"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// articlesResponse keeps "articles" a JSON array even when empty.
type articlesResponse struct {
	Articles []domain.Article `json:"articles"`
	HasMore  bool             `json:"hasMore"`
}

type searchResponse struct {
	Articles []domain.Article `json:"articles"`
	HasMore  bool             `json:"hasMore"`
	Total    int64            `json:"total"`
	Keywords []string         `json:"keywords"`
}

type ingestResponse struct {
	Message  string         `json:"message"`
	Inserted int            `json:"inserted"`
	Modified int            `json:"modified"`
	Total    int            `json:"total"`
	Sources  map[string]int `json:"sources,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// handleListArticles serves one page of the user's feed.
func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	page, err := parsePagination(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid pagination", Details: err.Error()})
		return
	}

	q := r.URL.Query()
	res, err := s.opts.Engine.Query(r.Context(), query.Request{
		Source: q.Get("source"),
		Preferences: domain.UserPreferences{
			Sources: splitParam(q.Get("preferredSources")),
			Tags:    splitParam(q.Get("preferredTags")),
		},
		Page: page,
	})
	if err != nil {
		s.queryFailed(w, "Failed to fetch articles", err)
		return
	}

	writeJSON(w, http.StatusOK, articlesResponse{Articles: nonNil(res.Items), HasMore: res.HasMore})
}

// handleIngest triggers an ingestion run. The run is detached from the
// request context so a disconnecting client cannot abort it halfway.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.opts.IngestTimeout)
	defer cancel()

	result, err := s.opts.Ingester.Ingest(ctx)
	if err != nil {
		s.logger.Error("ingestion failed", "error", err)
		partial := result
		var ingestErr *domain.IngestionError
		if errors.As(err, &ingestErr) {
			partial = ingestErr.Result
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":    "Failed to update articles",
			"details":  err.Error(),
			"inserted": partial.Inserted,
			"modified": partial.Updated,
			"total":    partial.Total,
		})
		return
	}

	message := "Articles updated successfully"
	if result.Total == 0 {
		message = "No articles fetched from any source"
	}
	writeJSON(w, http.StatusOK, ingestResponse{
		Message:  message,
		Inserted: result.Inserted,
		Modified: result.Updated,
		Total:    result.Total,
		Sources:  result.Sources,
	})
}

// handleSearch runs a keyword search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"articles": []domain.Article{},
			"total":    0,
			"message":  "No search query provided.",
		})
		return
	}

	page, err := parsePagination(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid pagination", Details: err.Error()})
		return
	}

	res, err := s.opts.Engine.Query(r.Context(), query.Request{
		Source: r.URL.Query().Get("source"),
		Page:   page,
		Search: q,
	})
	if err != nil {
		s.queryFailed(w, "Failed to perform search", err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Articles: nonNil(res.Items),
		HasMore:  res.HasMore,
		Total:    res.Total,
		Keywords: nonNil(res.Keywords),
	})
}

// handleStats reports store-wide counts.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.opts.Engine.Stats(r.Context(), s.opts.Sources, s.now())
	if err != nil {
		s.queryFailed(w, "Failed to fetch stats", err)
		return
	}
	stats.Recent = nonNil(stats.Recent)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		if err := s.opts.Health(r.Context()); err != nil {
			s.logger.Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "unhealthy", Details: err.Error()})
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) queryFailed(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, domain.ErrInvalidPagination) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid pagination", Details: err.Error()})
		return
	}
	s.logger.Error(message, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: message, Details: err.Error()})
}

// parsePagination reads offset and limit. Missing values take defaults;
// negative or non-numeric values are rejected and limit is capped.
func parsePagination(r *http.Request) (domain.Pagination, error) {
	q := r.URL.Query()
	page := domain.Pagination{Offset: 0, Limit: defaultPageSize}

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page, fmt.Errorf("%w: offset must be a non-negative integer", domain.ErrInvalidPagination)
		}
		page.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page, fmt.Errorf("%w: limit must be a non-negative integer", domain.ErrInvalidPagination)
		}
		if n == 0 {
			n = defaultPageSize
		}
		page.Limit = min(n, maxPageSize)
	}
	return page, nil
}

// splitParam parses a comma-separated query parameter.
func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
