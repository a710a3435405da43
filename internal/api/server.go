// Package api exposes the HTTP interface for the analysis service.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pagefactor/pagefactor/internal/analysis"
	"github.com/pagefactor/pagefactor/internal/breaker"
	"github.com/pagefactor/pagefactor/internal/dispatcher"
	"github.com/pagefactor/pagefactor/internal/store"
)

// Server wires HTTP handlers to the dispatcher, run store, and breakers.
type Server struct {
	router     chi.Router
	repo       store.RunRepository
	dispatcher *dispatcher.Dispatcher
	breakers   *breaker.Registry
	idGen      analysis.IDGenerator
	clock      analysis.Clock
	logger     *zap.Logger
}

// NewServer constructs a Server with middleware and routes. registry may be
// nil to disable the metrics endpoint.
func NewServer(
	repo store.RunRepository,
	dispatcher *dispatcher.Dispatcher,
	breakers *breaker.Registry,
	idGen analysis.IDGenerator,
	clock analysis.Clock,
	registry *prometheus.Registry,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		repo:       repo,
		dispatcher: dispatcher,
		breakers:   breakers,
		idGen:      idGen,
		clock:      clock,
		logger:     logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/analyses", func(r chi.Router) {
			r.Post("/", s.submitAnalysis)
			r.Get("/", s.listAnalyses)
			r.Route("/{run_id}", func(r chi.Router) {
				r.Get("/", s.getAnalysis)
				r.Get("/factors", s.getAnalysisFactors)
			})
		})
		r.Post("/breaker/reset", s.resetBreakers)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type submitRequest struct {
	URL string `json:"url"`
}

func (s *Server) submitAnalysis(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := validatePageURL(req.URL); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	runID, err := s.idGen.NewID()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "generate run id failed")
		return
	}
	parsed, err := uuid.Parse(runID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "generate run id failed")
		return
	}

	now := s.clock.Now()
	if err := s.repo.UpsertRunStart(r.Context(), parsed, req.URL, now); err != nil {
		s.writeError(w, http.StatusInternalServerError, "create run failed")
		return
	}

	queueCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	job := analysis.Job{RunID: runID, URL: req.URL, Submitted: now}
	if err := s.dispatcher.Enqueue(queueCtx, job); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		s.writeError(w, status, err.Error())
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]string{"run_id": runID})
}

func (s *Server) listAnalyses(w http.ResponseWriter, r *http.Request) {
	var status *store.RunStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed := store.RunStatus(raw)
		switch parsed {
		case store.RunRunning, store.RunSuccess, store.RunError:
			status = &parsed
		default:
			s.writeError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
	}
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	runs, err := s.repo.ListRuns(r.Context(), status, limit, offset)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	out := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunResponse(run))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": out})
}

func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}
	run, err := s.repo.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "run not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "get run failed")
		return
	}
	s.writeJSON(w, http.StatusOK, toRunResponse(run))
}

func (s *Server) getAnalysisFactors(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}
	if _, err := s.repo.GetRun(r.Context(), runID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "run not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "get run failed")
		return
	}
	rows, err := s.repo.ListRunFactors(r.Context(), runID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "list factors failed")
		return
	}
	out := make([]factorResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toFactorResponse(row))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"run_id": runID.String(), "factors": out})
}

type breakerResetRequest struct {
	FactorID string `json:"factor_id"`
}

func (s *Server) resetBreakers(w http.ResponseWriter, r *http.Request) {
	var req breakerResetRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}
	if req.FactorID == "" {
		s.breakers.ResetAll()
		s.writeJSON(w, http.StatusOK, map[string]string{"reset": "all"})
		return
	}
	s.breakers.Reset(req.FactorID)
	s.writeJSON(w, http.StatusOK, map[string]string{"reset": req.FactorID})
}

func (s *Server) parseRunID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "run_id")
	runID, err := uuid.Parse(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid run id")
		return uuid.UUID{}, false
	}
	return runID, true
}

func validatePageURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("url required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return errors.New("invalid url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("url must use http or https")
	}
	if parsed.Host == "" {
		return errors.New("url must be absolute")
	}
	return nil
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

type runResponse struct {
	RunID        string     `json:"run_id"`
	URL          string     `json:"url"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	OverallScore *int       `json:"overall_score,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
}

func toRunResponse(run store.Run) runResponse {
	return runResponse{
		RunID:        run.ID.String(),
		URL:          run.URL,
		Status:       string(run.Status),
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		OverallScore: run.OverallScore,
		ErrorMessage: run.ErrorMessage,
	}
}

type factorResponse struct {
	FactorID         string   `json:"factor_id"`
	FactorName       string   `json:"factor_name"`
	Pillar           string   `json:"pillar"`
	Phase            string   `json:"phase"`
	Score            int      `json:"score"`
	Confidence       int      `json:"confidence"`
	Weight           float64  `json:"weight"`
	Evidence         []string `json:"evidence"`
	Recommendations  []string `json:"recommendations"`
	ProcessingTimeMs int64    `json:"processing_time_ms"`
}

func toFactorResponse(row store.FactorRow) factorResponse {
	return factorResponse{
		FactorID:         row.FactorID,
		FactorName:       row.FactorName,
		Pillar:           row.Pillar,
		Phase:            row.Phase,
		Score:            row.Score,
		Confidence:       row.Confidence,
		Weight:           row.Weight,
		Evidence:         row.Evidence,
		Recommendations:  row.Recommendations,
		ProcessingTimeMs: row.ProcessingTimeMs,
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		conn, buf, err := h.Hijack()
		if err != nil {
			return nil, nil, fmt.Errorf("hijack connection: %w", err)
		}
		return conn, buf, nil
	}
	return nil, nil, errors.New("hijacker not supported")
}

type requestIDKey struct{}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
