package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/antoniostano/kyra/internal/config"
	"github.com/antoniostano/kyra/internal/kyra"
	"github.com/antoniostano/kyra/internal/observability"
)

// Pipeline is the request-handling surface of the conversation orchestrator.
type Pipeline interface {
	Chat(ctx context.Context, userID, message string) (string, error)
	Scan(ctx context.Context, pageURL string) (string, error)
}

type Server struct {
	cfg      config.Config
	pipeline Pipeline
	metrics  *observability.Metrics
}

func New(cfg config.Config, pipeline Pipeline, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		pipeline: pipeline,
		metrics:  metrics,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleAlive)
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	r.Post("/chat", s.handleChat)
	// Kept from the original single-file deployment so old clients keep working.
	r.Post("/kyra", s.handleChat)
	r.Post("/scan", s.handleScan)

	return r
}

func (s *Server) handleAlive(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Kyra backend is running."))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"memory_window": s.cfg.MemoryWindow,
		"memory_store":  s.storeMode(),
	})
}

func (s *Server) storeMode() string {
	if s.cfg.DatabaseURL == "" {
		return "in-memory"
	}
	return "postgres"
}

func (s *Server) handlePerfLatency(w http.ResponseWriter, _ *http.Request) {
	if s.metrics == nil {
		respondJSON(w, http.StatusOK, observability.StageSnapshot{})
		return
	}
	respondJSON(w, http.StatusOK, s.metrics.SnapshotStages())
}

type chatRequest struct {
	User    string `json:"user"`
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type scanRequest struct {
	URL string `json:"url"`
}

type scanResponse struct {
	Analysis string `json:"analysis"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	// A body that never parses carries no message either way.
	decodeJSON(r, &req)

	reply, err := s.pipeline.Chat(r.Context(), req.User, req.Message)
	if err != nil {
		s.respondPipelineError(w, "chat", "Kyra thinking failed", err)
		return
	}

	s.metrics.CountRequest("chat", "ok")
	respondJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	decodeJSON(r, &req)

	analysis, err := s.pipeline.Scan(r.Context(), req.URL)
	if err != nil {
		s.respondPipelineError(w, "scan", "Website scan failed", err)
		return
	}

	s.metrics.CountRequest("scan", "ok")
	respondJSON(w, http.StatusOK, scanResponse{Analysis: analysis})
}

// respondPipelineError maps validation failures to their own message and
// collapses everything else to the route's generic message. Internal
// causes are logged, never sent to the caller.
func (s *Server) respondPipelineError(w http.ResponseWriter, route, generic string, err error) {
	var verr *kyra.ValidationError
	if errors.As(err, &verr) {
		s.metrics.CountRequest(route, "invalid")
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message})
		return
	}

	log.Printf("%s pipeline failed: %v", route, err)
	s.metrics.CountRequest(route, "error")
	respondJSON(w, http.StatusInternalServerError, errorResponse{Error: generic})
}

// decodeJSON best-effort fills out from the request body. A body that is
// empty or does not parse carries no usable fields; validation downstream
// reports the missing field either way.
func decodeJSON(r *http.Request, out any) {
	if r.Body == nil {
		return
	}
	defer r.Body.Close()
	_ = json.NewDecoder(r.Body).Decode(out)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
