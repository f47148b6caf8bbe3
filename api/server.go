// Package api - Thin HTTP layer over the estimate engine
// The API is ONLY responsible for: input validation, engine orchestration,
// persistence and serialization. It never computes costs.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"construction-cost/adapters/storage"
	"construction-cost/core/estimate"
	"construction-cost/core/types"
	"construction-cost/internal/errors"
	"construction-cost/internal/logging"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// Server is the API server
type Server struct {
	engine  *estimate.Engine
	store   storage.Store
	mux     *http.ServeMux
	version string
	logger  *zap.Logger
	now     func() time.Time
}

// NewServer creates a new API server
func NewServer(engine *estimate.Engine, store storage.Store, version string, logger *zap.Logger) *Server {
	s := &Server{
		engine:  engine,
		store:   store,
		mux:     http.NewServeMux(),
		version: version,
		logger:  logging.Component(logger, "api"),
		now:     time.Now,
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /estimates", s.handleCreate)
	s.mux.HandleFunc("GET /estimates", s.handleList)
	s.mux.HandleFunc("GET /estimates/{id}", s.handleGet)
	s.mux.HandleFunc("POST /estimates/{id}/status", s.handleStatus)
	s.mux.HandleFunc("POST /estimates/{id}/revise", s.handleRevise)
	s.mux.HandleFunc("GET /estimates/{id}/compare/{other}", s.handleCompare)
	s.mux.HandleFunc("GET /projects/{id}/estimates/latest", s.handleLatest)

	// Supporting endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// handleCreate handles POST /estimates
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	project, ok := s.decodeProject(w, r)
	if !ok {
		return
	}

	est, err := s.engine.Generate(r.Context(), project)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.saveAndRespond(w, r.Context(), est, http.StatusCreated)
}

// handleList handles GET /estimates
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &storage.ListFilter{ProjectID: q.Get("project_id")}
	if status := q.Get("status"); status != "" {
		parsed, err := estimate.ParseStatus(status)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		filter.Status = parsed
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				s.writeFailure(w, errors.Input("invalid "+name+": "+v))
				return
			}
			*dst = n
		}
	}

	results, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	now := s.now()
	summaries := make([]SummaryResponse, 0, len(results))
	for _, res := range results {
		summaries = append(summaries, newSummaryResponse(res, now))
	}
	s.writeJSON(w, map[string]interface{}{
		"estimates": summaries,
		"count":     len(summaries),
	}, http.StatusOK)
}

// handleGet handles GET /estimates/{id}
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	stored, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, newEstimateResponse(stored, s.now()), http.StatusOK)
}

// handleStatus handles POST /estimates/{id}/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !s.decode(w, r, &req) {
		return
	}
	to, err := estimate.ParseStatus(req.Status)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	stored, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	next, err := estimate.Transition(stored.Estimate, to, s.now())
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	s.logger.Info("estimate status changed",
		zap.String("estimate_id", next.ID),
		zap.String("from", string(stored.Status)),
		zap.String("to", string(next.Status)),
	)
	s.saveAndRespond(w, r.Context(), next, http.StatusOK)
}

// handleRevise handles POST /estimates/{id}/revise
func (s *Server) handleRevise(w http.ResponseWriter, r *http.Request) {
	project, ok := s.decodeProject(w, r)
	if !ok {
		return
	}

	previous, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	next, err := s.engine.Revise(r.Context(), previous.Estimate, project)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.saveAndRespond(w, r.Context(), next, http.StatusCreated)
}

// handleCompare handles GET /estimates/{id}/compare/{other}
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	result, err := s.store.Compare(r.Context(), r.PathValue("id"), r.PathValue("other"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, result, http.StatusOK)
}

// handleLatest handles GET /projects/{id}/estimates/latest
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	stored, err := s.store.GetLatest(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, newEstimateResponse(stored, s.now()), http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"rates":   s.engine.Rates().Current().Name,
		"time":    s.now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "construction-cost",
		"api_version": "v1",
	}, http.StatusOK)
}

func (s *Server) saveAndRespond(w http.ResponseWriter, ctx context.Context, est *types.Estimate, status int) {
	stored, err := s.store.Save(ctx, est)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, newEstimateResponse(stored, s.now()), status)
}

func (s *Server) decodeProject(w http.ResponseWriter, r *http.Request) (*types.Project, bool) {
	var raw types.Project
	if !s.decode(w, r, &raw) {
		return nil, false
	}
	project, err := normalizeProject(raw)
	if err != nil {
		s.writeFailure(w, err)
		return nil, false
	}
	return project, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, ErrorResponse{Error: ErrorBody{Code: code, Message: message}}, status)
}

// writeFailure maps a typed error to a status code
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	errType := errors.TypeOf(err)
	status := http.StatusInternalServerError
	switch errType {
	case errors.TypeInput:
		status = http.StatusBadRequest
	case errors.TypeNotFound:
		status = http.StatusNotFound
	case errors.TypeTransition:
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.writeError(w, string(errType), err.Error(), status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := s.now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Debug("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)),
	)
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
