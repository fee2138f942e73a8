package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lapmatch/internal/domain"
	"github.com/kailas-cloud/lapmatch/internal/domain/preference"
	"github.com/kailas-cloud/lapmatch/internal/domain/recommendation"
	"github.com/kailas-cloud/lapmatch/internal/logger"
	catalogc "github.com/kailas-cloud/lapmatch/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/lapmatch/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/lapmatch/internal/usecase/recommend"
	"github.com/kailas-cloud/lapmatch/internal/version"
)

const maxBodyBytes = 1 << 20

const internalErrorBody = `{"code":"` + CodeInternal + `","message":"internal error"}` + "\n"

// Error codes returned in ErrorResponse.
const (
	CodeBadRequest       = "bad_request"
	CodeNotFound         = "not_found"
	CodeCatalogNotLoaded = "catalog_not_loaded"
	CodeConfiguration    = "configuration_error"
	CodeInternal         = "internal_error"
)

// ErrorResponse is the body of every non-recommendation error.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the recommendation and catalog APIs.
type Server struct {
	recommend     *recommenduc.Service
	catalog       *catalogc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	recommend *recommenduc.Service,
	catalog *catalogc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recommend: recommend,
		catalog:   catalog,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrCatalogNotLoaded, http.StatusServiceUnavailable, CodeCatalogNotLoaded),
		sentinelHandler(domain.ErrConfiguration, http.StatusUnprocessableEntity, CodeConfiguration),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recommendations", s.Recommend)
		r.Get("/catalog", s.CatalogStats)
		r.Post("/catalog/reload", s.ReloadCatalog)
		r.Get("/catalog/items/{id}", s.GetItem)
	})
}

// Recommend handles POST /api/v1/recommendations. ?relaxed=true skips
// straight to the relaxed pass.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	p, err := preference.Decode(body)
	if err != nil {
		logger.FromContext(r.Context()).Debug("Rejected preference", zap.Error(err))
		s.respond(w, r, http.StatusBadRequest, recommendation.Invalid(err.Error()))
		return
	}

	run := s.recommend.Recommend
	if relaxed, _ := strconv.ParseBool(r.URL.Query().Get("relaxed")); relaxed {
		run = s.recommend.RecommendRelaxed
	}
	res, err := run(r.Context(), p)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			s.respond(w, r, http.StatusBadRequest, res)
			return
		}
		s.handleDomainError(w, err)
		return
	}
	s.respond(w, r, http.StatusOK, res)
}

// CatalogStats handles GET /api/v1/catalog.
func (s *Server) CatalogStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.catalog.Stats()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.respond(w, r, http.StatusOK, stats)
}

// ReloadCatalog handles POST /api/v1/catalog/reload.
func (s *Server) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	stats, err := s.catalog.Load(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.respond(w, r, http.StatusOK, stats)
}

// GetItem handles GET /api/v1/catalog/items/{id}.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	it, err := s.catalog.Item(chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.respond(w, r, http.StatusOK, recommenduc.Describe(&it))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	s.respond(w, r, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Version: version.String(),
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// respond writes v as JSON and logs when it cannot be encoded.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	if err := writeJSON(w, status, v); err != nil {
		logger.FromContext(r.Context()).Error("Failed to encode response", zap.Error(err))
	}
}

// writeJSON buffers the encoded body. A value that cannot be encoded is
// answered with a 500 and the error is returned.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, internalErrorBody)
		return fmt.Errorf("encode response: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	_ = writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrCatalogNotLoaded,
		domain.ErrConfiguration,
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

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
