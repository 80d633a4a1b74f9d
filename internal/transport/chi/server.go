package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/paperscout-ai/paperscout/internal/domain"
	"github.com/paperscout-ai/paperscout/internal/domain/content"
	"github.com/paperscout-ai/paperscout/internal/domain/search/query"
	"github.com/paperscout-ai/paperscout/internal/domain/timerange"
	domtrend "github.com/paperscout-ai/paperscout/internal/domain/trending"
	healthuc "github.com/paperscout-ai/paperscout/internal/usecase/health"
	rankuc "github.com/paperscout-ai/paperscout/internal/usecase/rank"
)

// Error codes returned in JSON error bodies.
const (
	codeBadRequest             = "bad_request"
	codeValidationFailed       = "validation_failed"
	codeNotFound               = "not_found"
	codeInvalidContentType     = "invalid_content_type"
	codeEmbeddingProviderError = "embedding_provider_error"
	codeInternalError          = "internal_error"
)

// Consumer interfaces for the usecases this server drives (ISP).
type searchService interface {
	Search(ctx context.Context, q *query.Query, now time.Time) ([]content.Record, error)
}

type trendingService interface {
	Trending(ctx context.Context, typ content.Type, w domtrend.Window, platform string) ([]content.Record, error)
	TrendingAll(ctx context.Context, w domtrend.Window, platform string) (map[content.Type][]content.Record, error)
}

type rankService interface {
	RankOf(ctx context.Context, typ content.Type, id, creator string) (rankuc.Position, error)
}

type ingestService interface {
	Ingest(ctx context.Context, rec *content.Record) error
}

type healthService interface {
	Check(ctx context.Context) healthuc.Report
}

// SearchOptions bounds the search endpoint.
type SearchOptions struct {
	// MaxMatchCount caps the per-request matchCount; 0 falls back to the
	// built-in cap.
	MaxMatchCount int
}

// TrendingOptions bounds the trending endpoints.
type TrendingOptions struct {
	WindowDays   int
	DefaultLimit int
	MaxLimit     int
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the search, trending, rank and ingest HTTP API.
type Server struct {
	search        searchService
	trending      trendingService
	rank          rankService
	ingest        ingestService
	health        healthService
	searchOpts    SearchOptions
	trendingOpts  TrendingOptions
	logger        *zap.Logger
	now           func() time.Time
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search searchService,
	trending trendingService,
	rank rankService,
	ingest ingestService,
	health healthService,
	searchOpts SearchOptions,
	trendingOpts TrendingOptions,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:       search,
		trending:     trending,
		rank:         rank,
		ingest:       ingest,
		health:       health,
		searchOpts:   searchOpts,
		trendingOpts: trendingOpts,
		logger:       logger,
		now:          time.Now,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidContentType, http.StatusBadRequest, codeInvalidContentType),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProviderError),
	}
	return s
}

// RegisterRoutes mounts every handler on the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/trending", s.handleTrendingAll)
		r.Get("/trending/{contentType}", s.handleTrending)
		r.Get("/rank/{contentType}/{id}", s.handleRank)
		r.Put("/records/{contentType}/{id}", s.handleUpsertRecord)
	})
}

// handleSearch handles POST /api/v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	// An unrecognized timeRange token widens to allTime, it never fails
	// the request.
	q, err := query.New(
		req.Query, req.SimilarityThreshold, req.MatchCount,
		s.searchOpts.MaxMatchCount, timerange.Parse(req.TimeRange),
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	results, err := s.search.Search(r.Context(), &q, s.now())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Items: recordsToResponse(results),
		Total: len(results),
	})
}

// handleTrendingAll handles GET /api/v1/trending.
func (s *Server) handleTrendingAll(w http.ResponseWriter, r *http.Request) {
	window, platform, ok := s.trendingWindowFromQuery(w, r)
	if !ok {
		return
	}

	results, err := s.trending.TrendingAll(r.Context(), window, platform)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := trendingAllResponse{
		ReferenceDate: window.Reference(),
		Items:         make(map[string][]recordResponse, len(results)),
	}
	for typ, records := range results {
		resp.Items[string(typ)] = recordsToResponse(records)
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleTrending handles GET /api/v1/trending/{contentType}.
func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	typ, err := content.ParseType(chi.URLParam(r, "contentType"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	window, platform, ok := s.trendingWindowFromQuery(w, r)
	if !ok {
		return
	}

	records, err := s.trending.Trending(r.Context(), typ, window, platform)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trendingResponse{
		ContentType:   string(typ),
		ReferenceDate: window.Reference(),
		Items:         recordsToResponse(records),
	})
}

// handleRank handles GET /api/v1/rank/{contentType}/{id}.
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	typ, err := content.ParseType(chi.URLParam(r, "contentType"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	creator := r.URL.Query().Get("creator")

	pos, err := s.rank.RankOf(r.Context(), typ, id, creator)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rankResponse{
		ContentType: string(typ),
		ID:          id,
		Ordinal:     pos.Ordinal,
		GroupSize:   pos.GroupSize,
	})
}

// handleUpsertRecord handles PUT /api/v1/records/{contentType}/{id}.
func (s *Server) handleUpsertRecord(w http.ResponseWriter, r *http.Request) {
	typ, err := content.ParseType(chi.URLParam(r, "contentType"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	id := chi.URLParam(r, "id")

	var req upsertRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rec, err := content.New(
		id, typ, req.ExternalID, req.Title, req.Creator, req.Platform,
		req.Score, req.PublishedAt,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if err := s.ingest.Ingest(r.Context(), &rec); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToResponse(&rec))
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: report.Checks,
	})
}

// handleMetrics handles GET /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// trendingWindowFromQuery builds the trailing window from ?date, ?limit
// and ?platform. Reports false after writing an error response.
func (s *Server) trendingWindowFromQuery(
	w http.ResponseWriter, r *http.Request,
) (domtrend.Window, string, bool) {
	reference := s.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid date: "+raw)
			return domtrend.Window{}, "", false
		}
		reference = parsed
	}

	limit := s.trendingOpts.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be a positive integer")
			return domtrend.Window{}, "", false
		}
		limit = parsed
	}
	if limit > s.trendingOpts.MaxLimit {
		limit = s.trendingOpts.MaxLimit
	}

	platform := r.URL.Query().Get("platform")

	return domtrend.NewWindow(reference, s.trendingOpts.WindowDays, limit), platform, true
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidContentType,
		domain.ErrInvalidRequest,
		domain.ErrEmbeddingProviderError,
		domain.ErrRetrieval,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
