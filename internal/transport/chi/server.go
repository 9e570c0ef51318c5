// Package chi exposes the query engine over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docquery/internal/domain"
	reindexuc "github.com/kailas-cloud/docquery/internal/usecase/reindex"
	searchuc "github.com/kailas-cloud/docquery/internal/usecase/search"
)

// Pinger checks document store connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LLMReadiness reports adapter availability for the health endpoint.
type LLMReadiness interface {
	IsReady() bool
}

// Server holds the HTTP handlers.
type Server struct {
	search  *searchuc.Service
	reindex *reindexuc.Service
	store   Pinger
	llm     LLMReadiness
	logger  *zap.Logger
}

// NewServer creates the API server.
func NewServer(
	search *searchuc.Service,
	reindex *reindexuc.Service,
	store Pinger,
	llm LLMReadiness,
	logger *zap.Logger,
) *Server {
	return &Server{search: search, reindex: reindex, store: store, llm: llm, logger: logger}
}

// Routes mounts all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/search", s.handleSearch)
	r.Post("/v1/reindex", s.handleReindexStart)
	r.Get("/v1/reindex", s.handleReindexProgress)
	r.Get("/v1/audit/recent", s.handleAuditRecent)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

type searchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	result, err := s.search.Search(r.Context(), req.Query)
	if err != nil {
		// The result carries the safe message; the error picks the status.
		writeJSON(w, statusFor(err), result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReindexStart(w http.ResponseWriter, r *http.Request) {
	started := s.reindex.Start()
	status := http.StatusAccepted
	if !started {
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]any{
		"started":  started,
		"progress": s.reindex.Progress(),
	})
}

func (s *Server) handleReindexProgress(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.reindex.Progress())
}

func (s *Server) handleAuditRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": s.search.RecentAudit(limit),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("health: store unreachable", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unhealthy",
			"store":  "unreachable",
		})
		return
	}

	// The LLM is optional; its absence degrades analysis, not health.
	llmStatus := "ready"
	if !s.llm.IsReady() {
		llmStatus = "unavailable"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"store":  "ok",
		"llm":    llmStatus,
	})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSecurity):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
